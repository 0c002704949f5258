package sqlite

import (
	"context"
	"testing"

	"dashboard-gate/internal/domain"
	"dashboard-gate/internal/repository"
)

// newAccessFixture opens an in-memory database with both tables created
// and two non-manager users seeded; grants reference users by id.
func newAccessFixture(t *testing.T, name string) (repository.AccessRepository, map[string]int64) {
	t.Helper()

	db, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	users := NewUserRepository(db)
	if err := users.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	grants := NewAccessRepository(db)
	if err := grants.Init(ctx); err != nil {
		t.Fatalf("init grants: %v", err)
	}

	ids := make(map[string]int64)
	for _, username := range []string{"john", "jane"} {
		id, err := users.Create(ctx, &domain.User{
			Username:     username,
			PasswordHash: "digest",
			DisplayName:  username,
		})
		if err != nil {
			t.Fatalf("create %s: %v", username, err)
		}
		ids[username] = id
	}
	return grants, ids
}

func TestAccessRepositoryDefaultDeny(t *testing.T) {
	repo, ids := newAccessFixture(t, "accessrepo_deny")
	ctx := context.Background()

	grant, err := repo.Get(ctx, ids["john"], "sales")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if grant != nil {
		t.Fatalf("expected nil grant for absent row, got %+v", grant)
	}

	grants, err := repo.ListByUser(ctx, ids["john"])
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(grants) != 0 {
		t.Fatalf("expected no grants, got %+v", grants)
	}
}

func TestAccessRepositoryUpsert(t *testing.T) {
	repo, ids := newAccessFixture(t, "accessrepo_upsert")
	ctx := context.Background()
	john := ids["john"]

	if err := repo.Upsert(ctx, &domain.AccessGrant{UserID: john, DashboardID: "hr", CanAccess: true}); err != nil {
		t.Fatalf("upsert insert: %v", err)
	}

	grant, err := repo.Get(ctx, john, "hr")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if grant == nil || !grant.CanAccess {
		t.Fatalf("expected granted access, got %+v", grant)
	}

	// writing the same pair again replaces, never duplicates
	if err := repo.Upsert(ctx, &domain.AccessGrant{UserID: john, DashboardID: "hr", CanAccess: false}); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}

	grant, err = repo.Get(ctx, john, "hr")
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if grant == nil || grant.CanAccess {
		t.Fatalf("expected revoked access, got %+v", grant)
	}

	grants, err := repo.ListByUser(ctx, john)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("expected a single row for the pair, got %+v", grants)
	}
}

func TestAccessRepositoryUpsertIdempotent(t *testing.T) {
	repo, ids := newAccessFixture(t, "accessrepo_idem")
	ctx := context.Background()
	jane := ids["jane"]

	for i := 0; i < 3; i++ {
		if err := repo.Upsert(ctx, &domain.AccessGrant{UserID: jane, DashboardID: "finance", CanAccess: true}); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	grants, err := repo.ListByUser(ctx, jane)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(grants) != 1 || !grants[0].CanAccess {
		t.Fatalf("expected one granted row, got %+v", grants)
	}
}

func TestAccessRepositoryListByUserScoped(t *testing.T) {
	repo, ids := newAccessFixture(t, "accessrepo_scope")
	ctx := context.Background()

	seed := []domain.AccessGrant{
		{UserID: ids["john"], DashboardID: "sales", CanAccess: true},
		{UserID: ids["john"], DashboardID: "hr", CanAccess: false},
		{UserID: ids["jane"], DashboardID: "hr", CanAccess: true},
	}
	for i := range seed {
		if err := repo.Upsert(ctx, &seed[i]); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	grants, err := repo.ListByUser(ctx, ids["john"])
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("expected 2 grants for john, got %+v", grants)
	}
	for _, grant := range grants {
		if grant.UserID != ids["john"] {
			t.Fatalf("grant for wrong user: %+v", grant)
		}
	}
}
