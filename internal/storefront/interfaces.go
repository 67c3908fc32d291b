package storefront

import (
	"context"
	"time"
)

// Fetcher performs a single HTTP GET and returns the body plus metadata.
// Non-2xx responses are returned with a nil error.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Limiter enforces the per-domain request floor.
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// Pauser sleeps between retry attempts.
type Pauser interface {
	Pause(ctx context.Context, delay time.Duration) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
