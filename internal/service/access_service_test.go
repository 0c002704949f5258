package service

import (
	"context"
	"testing"

	"dashboard-gate/internal/domain"
)

type stubAccessRepo struct {
	grants map[int64]map[string]bool
}

func newStubAccessRepo() *stubAccessRepo {
	return &stubAccessRepo{grants: make(map[int64]map[string]bool)}
}

func (s *stubAccessRepo) Init(ctx context.Context) error { return nil }

func (s *stubAccessRepo) Upsert(ctx context.Context, grant *domain.AccessGrant) error {
	if s.grants[grant.UserID] == nil {
		s.grants[grant.UserID] = make(map[string]bool)
	}
	s.grants[grant.UserID][grant.DashboardID] = grant.CanAccess
	return nil
}

func (s *stubAccessRepo) Get(ctx context.Context, userID int64, dashboardID string) (*domain.AccessGrant, error) {
	if byDash, ok := s.grants[userID]; ok {
		if canAccess, ok := byDash[dashboardID]; ok {
			return &domain.AccessGrant{UserID: userID, DashboardID: dashboardID, CanAccess: canAccess}, nil
		}
	}
	return nil, nil
}

func (s *stubAccessRepo) ListByUser(ctx context.Context, userID int64) ([]domain.AccessGrant, error) {
	var grants []domain.AccessGrant
	for dashboardID, canAccess := range s.grants[userID] {
		grants = append(grants, domain.AccessGrant{UserID: userID, DashboardID: dashboardID, CanAccess: canAccess})
	}
	return grants, nil
}

func TestCheckAccessDefaultDeny(t *testing.T) {
	svc := NewAccessService(newStubAccessRepo())
	ctx := context.Background()

	allowed, err := svc.CheckAccess(ctx, 2, "sales")
	if err != nil {
		t.Fatalf("check access: %v", err)
	}
	if allowed {
		t.Fatalf("expected deny when no grant exists")
	}
}

func TestSetAccessToggling(t *testing.T) {
	svc := NewAccessService(newStubAccessRepo())
	ctx := context.Background()

	if err := svc.SetAccess(ctx, 2, "hr", true); err != nil {
		t.Fatalf("set access: %v", err)
	}
	if allowed, _ := svc.CheckAccess(ctx, 2, "hr"); !allowed {
		t.Fatalf("expected access after granting")
	}

	if err := svc.SetAccess(ctx, 2, "hr", false); err != nil {
		t.Fatalf("revoke access: %v", err)
	}
	if allowed, _ := svc.CheckAccess(ctx, 2, "hr"); allowed {
		t.Fatalf("expected deny after revoking")
	}

	// an explicit-false row still denies, same as no row
	access, err := svc.GetAccess(ctx, 2)
	if err != nil {
		t.Fatalf("get access: %v", err)
	}
	if canAccess, ok := access["hr"]; !ok || canAccess {
		t.Fatalf("expected explicit false entry, got %+v", access)
	}
}

func TestGetAccessOmitsUnknownDashboards(t *testing.T) {
	svc := NewAccessService(newStubAccessRepo())
	ctx := context.Background()

	if err := svc.SetAccess(ctx, 2, "sales", true); err != nil {
		t.Fatalf("set access: %v", err)
	}

	access, err := svc.GetAccess(ctx, 2)
	if err != nil {
		t.Fatalf("get access: %v", err)
	}
	if len(access) != 1 || !access["sales"] {
		t.Fatalf("unexpected access map: %+v", access)
	}
	if _, ok := access["finance"]; ok {
		t.Fatalf("expected never-granted dashboard to be absent")
	}
}

func TestSetAccessValidation(t *testing.T) {
	svc := NewAccessService(newStubAccessRepo())
	ctx := context.Background()

	if err := svc.SetAccess(ctx, 0, "sales", true); err == nil {
		t.Fatalf("expected error for missing user id")
	}
	if err := svc.SetAccess(ctx, 2, "", true); err == nil {
		t.Fatalf("expected error for missing dashboard id")
	}
}
