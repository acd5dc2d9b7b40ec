package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimitedProvider wraps another Provider with a shared token-bucket
// limiter. Batch runs process many files concurrently against one API key;
// the limiter keeps the aggregate request rate under the account ceiling.
type rateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// RateLimited wraps p so every Complete call first waits for a limiter token.
// A nil limiter returns p unchanged.
func RateLimited(p Provider, limiter *rate.Limiter) Provider {
	if limiter == nil {
		return p
	}
	return &rateLimitedProvider{inner: p, limiter: limiter}
}

func (p *rateLimitedProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	return p.inner.Complete(ctx, req)
}
