package service

import (
	"context"
	"errors"

	"dashboard-gate/internal/domain"
	"dashboard-gate/internal/repository"
)

// AccessService resolves and mutates per-user dashboard access grants.
// Authorization of the caller is the responsibility of the HTTP layer;
// this service only validates well-formedness.
type AccessService interface {
	GetAccess(ctx context.Context, userID int64) (map[string]bool, error)
	SetAccess(ctx context.Context, userID int64, dashboardID string, canAccess bool) error
	CheckAccess(ctx context.Context, userID int64, dashboardID string) (bool, error)
}

type accessService struct {
	grants repository.AccessRepository
}

func NewAccessService(grants repository.AccessRepository) AccessService {
	return &accessService{grants: grants}
}

// GetAccess returns exactly the grants on record for the user. Dashboards
// never granted are absent from the map; consumers must treat absence as
// deny.
func (s *accessService) GetAccess(ctx context.Context, userID int64) (map[string]bool, error) {
	if userID <= 0 {
		return nil, errors.New("user id is required")
	}

	grants, err := s.grants.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	access := make(map[string]bool, len(grants))
	for _, grant := range grants {
		access[grant.DashboardID] = grant.CanAccess
	}
	return access, nil
}

func (s *accessService) SetAccess(ctx context.Context, userID int64, dashboardID string, canAccess bool) error {
	if userID <= 0 {
		return errors.New("user id is required")
	}
	if dashboardID == "" {
		return errors.New("dashboard id is required")
	}

	return s.grants.Upsert(ctx, &domain.AccessGrant{
		UserID:      userID,
		DashboardID: dashboardID,
		CanAccess:   canAccess,
	})
}

// CheckAccess is default-deny: true only when a grant row exists and its
// flag is set.
func (s *accessService) CheckAccess(ctx context.Context, userID int64, dashboardID string) (bool, error) {
	if userID <= 0 || dashboardID == "" {
		return false, nil
	}

	grant, err := s.grants.Get(ctx, userID, dashboardID)
	if err != nil {
		return false, err
	}
	return grant != nil && grant.CanAccess, nil
}
