// Package staff holds back-office accounts: administrators and the
// read-only leadership role that consumes reports.
package staff

import "time"

type Staff struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	// Role is "admin" or "leader".
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
