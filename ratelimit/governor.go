// Package ratelimit enforces per-identity request quotas over fixed windows.
package ratelimit

import (
	"context"
	"errors"
	"search-gateway/domain"
	"search-gateway/port"
	"time"
)

// Governor admits or rejects requests per identity. Every call counts,
// including rejected ones. A window admits at most limit calls, so two
// adjacent windows can admit up to 2*limit calls around their boundary.
type Governor struct {
	store port.CounterStore
}

func NewGovernor(store port.CounterStore) *Governor {
	return &Governor{store: store}
}

// CounterKey is the store key holding an identity's counter.
func CounterKey(identity string) string {
	return "user:" + identity + ":requests"
}

// Admit increments the identity's counter and reports whether it is still
// within limit. Store failures are returned, never turned into a decision.
func (g *Governor) Admit(ctx context.Context, identity string, limit int64, window time.Duration) (bool, error) {
	if limit <= 0 {
		return false, domain.NewValidationError("limit", "rate limit must be positive")
	}
	if window <= 0 {
		return false, domain.NewValidationError("window", "rate limit window must be positive")
	}

	count, err := g.store.IncrWithExpiry(ctx, CounterKey(identity), window)
	if err != nil {
		var upstream *domain.UpstreamUnavailableError
		if errors.As(err, &upstream) {
			return false, err
		}
		return false, domain.NewStoreUnavailable("Admit", err)
	}

	return count <= limit, nil
}
