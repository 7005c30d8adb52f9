package middleware

import (
	"context"

	"github.com/Yzairi/CDA/internal/domain"
)

// ContextKey is a private type for context keys to avoid collisions.
type ContextKey string

const (
	// ActorCtxKey holds the domain.Actor asserted by a verified bearer token.
	ActorCtxKey = ContextKey("actor")
)

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ActorCtxKey, actor)
}

// ActorFromContext returns the authenticated actor, or the zero Actor for anonymous requests.
func ActorFromContext(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(ActorCtxKey).(domain.Actor)
	return actor
}
