package domain

// User represents an account known to the system.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	DisplayName  string
	IsManager    bool
}
