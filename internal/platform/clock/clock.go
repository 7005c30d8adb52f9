// Package clock abstracts time and identifier generation so usecases stay deterministic in tests.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval.
type Clock interface {
	Now() time.Time
}

// Real returns the current UTC time.
type Real struct{}

func (Real) Now() time.Time { return time.Now().UTC() }

// IDGenerator abstracts unique ID generation.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.New().String() }

// Stub returns a settable time. Safe for concurrent use.
type Stub struct {
	mu  sync.Mutex
	now time.Time
}

// NewStub creates a Stub set to t.
func NewStub(t time.Time) *Stub {
	return &Stub{now: t}
}

// Fixed returns a Stub set to 2024-01-15 10:30:00 UTC.
func Fixed() *Stub {
	return NewStub(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *Stub) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Stub) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SequentialIDs returns "<prefix>-1", "<prefix>-2", and so on.
type SequentialIDs struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

func NewSequentialIDs(prefix string) *SequentialIDs {
	return &SequentialIDs{prefix: prefix}
}

func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
