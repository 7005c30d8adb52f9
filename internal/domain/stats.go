package domain

import (
	"math"
	"sort"
	"time"
)

// Summary is the administrative rollup over identities and listings.
type Summary struct {
	TotalUsers               int
	ActiveUsers              int
	TotalListings            int
	DraftListings            int
	PublishedListings        int
	ArchivedListings         int
	AvgMinutesDraftToPublish *float64
}

// TimelinePoint is the cumulative count up to and including Date (UTC, YYYY-MM-DD).
type TimelinePoint struct {
	Date  string
	Count int
}

type Timeline struct {
	Users             []TimelinePoint
	Listings          []TimelinePoint
	PublishedListings []TimelinePoint
}

// BuildSummary counts users and listings by status and averages the draft-to-publish delay.
// The average only covers PUBLISHED listings with a publication time and is nil when there are none.
func BuildSummary(users []*User, listings []*Listing) Summary {
	s := Summary{TotalUsers: len(users), TotalListings: len(listings)}
	for _, u := range users {
		if u.IsActive() {
			s.ActiveUsers++
		}
	}

	var totalMinutes float64
	var delays int
	for _, l := range listings {
		switch l.Status {
		case StatusDraft:
			s.DraftListings++
		case StatusPublished:
			s.PublishedListings++
			if l.PublishedAt != nil {
				totalMinutes += l.PublishedAt.Sub(l.CreatedAt).Minutes()
				delays++
			}
		case StatusArchived:
			s.ArchivedListings++
		}
	}
	if delays > 0 {
		// Midpoints go to the even digit: 2.25 becomes 2.2, 2.75 becomes 2.8.
		avg := math.RoundToEven(totalMinutes/float64(delays)*10) / 10
		s.AvgMinutesDraftToPublish = &avg
	}
	return s
}

// BuildTimeline buckets creation and publication times per UTC day.
func BuildTimeline(users []*User, listings []*Listing) Timeline {
	userTimes := make([]time.Time, 0, len(users))
	for _, u := range users {
		userTimes = append(userTimes, u.CreatedAt)
	}
	listingTimes := make([]time.Time, 0, len(listings))
	var publishedTimes []time.Time
	for _, l := range listings {
		listingTimes = append(listingTimes, l.CreatedAt)
		if l.PublishedAt != nil {
			publishedTimes = append(publishedTimes, *l.PublishedAt)
		}
	}
	return Timeline{
		Users:             CumulativeByDay(userTimes),
		Listings:          CumulativeByDay(listingTimes),
		PublishedListings: CumulativeByDay(publishedTimes),
	}
}

// CumulativeByDay returns ascending per-day running totals. Days without events are omitted.
func CumulativeByDay(times []time.Time) []TimelinePoint {
	daily := make(map[string]int)
	for _, t := range times {
		daily[t.UTC().Format(time.DateOnly)]++
	}
	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)

	points := make([]TimelinePoint, 0, len(days))
	total := 0
	for _, d := range days {
		total += daily[d]
		points = append(points, TimelinePoint{Date: d, Count: total})
	}
	return points
}
