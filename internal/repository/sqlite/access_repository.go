package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dashboard-gate/internal/domain"
	"dashboard-gate/internal/repository"
)

const createAccessTable = `
CREATE TABLE IF NOT EXISTS user_dashboard_access (
	user_id INTEGER NOT NULL,
	dashboard_id TEXT NOT NULL,
	can_access BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (user_id, dashboard_id),
	FOREIGN KEY (user_id) REFERENCES users (id)
);
`

type AccessRepository struct {
	db *sql.DB
}

func NewAccessRepository(db *sql.DB) repository.AccessRepository {
	return &AccessRepository{db: db}
}

func (r *AccessRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAccessTable); err != nil {
		return fmt.Errorf("create access table: %w", err)
	}
	return nil
}

// Upsert is a single atomic statement so concurrent toggles of the same
// pair resolve last-write-wins without a read-modify-write race.
func (r *AccessRepository) Upsert(ctx context.Context, grant *domain.AccessGrant) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO user_dashboard_access (user_id, dashboard_id, can_access)
VALUES (?, ?, ?)
ON CONFLICT (user_id, dashboard_id) DO UPDATE SET can_access = excluded.can_access`,
		grant.UserID,
		grant.DashboardID,
		grant.CanAccess,
	)
	if err != nil {
		return fmt.Errorf("upsert access grant: %w", err)
	}
	return nil
}

func (r *AccessRepository) Get(ctx context.Context, userID int64, dashboardID string) (*domain.AccessGrant, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, dashboard_id, can_access
FROM user_dashboard_access
WHERE user_id = ? AND dashboard_id = ?`,
		userID,
		dashboardID,
	)

	var grant domain.AccessGrant
	if err := row.Scan(&grant.UserID, &grant.DashboardID, &grant.CanAccess); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan access grant: %w", err)
	}
	return &grant, nil
}

func (r *AccessRepository) ListByUser(ctx context.Context, userID int64) ([]domain.AccessGrant, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id, dashboard_id, can_access
FROM user_dashboard_access
WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list access grants: %w", err)
	}
	defer rows.Close()

	var grants []domain.AccessGrant
	for rows.Next() {
		var grant domain.AccessGrant
		if err := rows.Scan(&grant.UserID, &grant.DashboardID, &grant.CanAccess); err != nil {
			return nil, fmt.Errorf("scan access grant: %w", err)
		}
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access grants: %w", err)
	}
	return grants, nil
}
