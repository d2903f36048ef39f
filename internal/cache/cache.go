package cache

import (
	"context"
	"time"
)

// KeyPrefix namespaces every dashboard entry so Invalidate can drop them all.
const KeyPrefix = "inventra:dashboard:"

// DashboardCache stores JSON-serializable dashboard read models.
type DashboardCache interface {
	// Get decodes the entry at key into dest and reports whether it existed.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Invalidate drops every dashboard entry.
	Invalidate(ctx context.Context) error
}

type NoopDashboardCache struct{}

func (NoopDashboardCache) Get(_ context.Context, _ string, _ any) (bool, error) {
	return false, nil
}

func (NoopDashboardCache) Set(_ context.Context, _ string, _ any, _ time.Duration) error {
	return nil
}

func (NoopDashboardCache) Invalidate(_ context.Context) error {
	return nil
}
