package usecase

import (
	"context"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"go.uber.org/zap"
)

// StatsUsecase computes administrative rollups over users and listings.
type StatsUsecase struct {
	users    domain.UserRepository
	listings domain.ListingRepository
	logger   *logger.Logger
}

func NewStatsUsecase(users domain.UserRepository, listings domain.ListingRepository, log *logger.Logger) *StatsUsecase {
	return &StatsUsecase{users: users, listings: listings, logger: log.Named("StatsUsecase")}
}

func (uc *StatsUsecase) Summary(ctx context.Context, actor domain.Actor) (*domain.Summary, error) {
	ctx, span := tracer.Start(ctx, "StatsUsecase.Summary")
	defer span.End()

	users, listings, err := uc.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	s := domain.BuildSummary(users, listings)
	return &s, nil
}

func (uc *StatsUsecase) Timeline(ctx context.Context, actor domain.Actor) (*domain.Timeline, error) {
	ctx, span := tracer.Start(ctx, "StatsUsecase.Timeline")
	defer span.End()

	users, listings, err := uc.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	tl := domain.BuildTimeline(users, listings)
	return &tl, nil
}

func (uc *StatsUsecase) load(ctx context.Context, actor domain.Actor) ([]*domain.User, []*domain.Listing, error) {
	if err := requireAdmin(actor); err != nil {
		uc.logger.Warn("Stats access refused", zap.String("actor_id", actor.UserID))
		return nil, nil, err
	}
	users, err := uc.users.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list users", zap.Error(err))
		return nil, nil, upstream("list users", err)
	}
	listings, err := uc.listings.List(ctx, domain.ListingFilter{})
	if err != nil {
		uc.logger.Error("Failed to list listings", zap.Error(err))
		return nil, nil, upstream("list listings", err)
	}
	return users, listings, nil
}

func requireAdmin(actor domain.Actor) error {
	if !actor.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !actor.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}
