package middleware

import (
	"context"
	"time"

	appcontext "github.com/SeakMengs/SignFlow/internal/app_context"
)

// RateLimiter decides per client key. *ratelimiter.FixedWindowRateLimiter
// satisfies it.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration)
}

type Middleware struct {
	rateLimiter RateLimiter
	app         *appcontext.Application
}

// NewMiddleware builds the shared middleware. A nil rateLimiter disables rate limiting.
func NewMiddleware(app *appcontext.Application, rateLimiter RateLimiter) *Middleware {
	return &Middleware{app: app, rateLimiter: rateLimiter}
}
