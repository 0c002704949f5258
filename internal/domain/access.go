package domain

// AccessGrant records whether a user may open a specific dashboard.
// At most one grant exists per (UserID, DashboardID); a missing grant
// means no access.
type AccessGrant struct {
	UserID      int64
	DashboardID string
	CanAccess   bool
}
