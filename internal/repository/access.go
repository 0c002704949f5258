package repository

import (
	"context"

	"dashboard-gate/internal/domain"
)

// AccessRepository defines persistence operations for dashboard access grants.
type AccessRepository interface {
	Init(ctx context.Context) error
	// Upsert atomically inserts or replaces the grant for the
	// (UserID, DashboardID) pair.
	Upsert(ctx context.Context, grant *domain.AccessGrant) error
	// Get returns the grant for the pair, or (nil, nil) when no grant
	// has been recorded.
	Get(ctx context.Context, userID int64, dashboardID string) (*domain.AccessGrant, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.AccessGrant, error)
}
