package capability

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimit blocks each call until limiter grants a token. A wait that is cut
// short by the context is reported as the context error.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next Provider) Provider {
		return ProviderFunc(func(ctx context.Context, req ProviderRequest) (string, error) {
			if err := limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return "", fmt.Errorf("waiting for rate limiter: %w", ctxErr)
				}
				return "", fmt.Errorf("waiting for rate limiter: %w", err)
			}
			return next.Complete(ctx, req)
		})
	}
}
