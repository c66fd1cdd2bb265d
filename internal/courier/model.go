package courier

import "time"

type Courier struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	// Inactive couriers keep their history but can no longer log in.
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCourierRequest payload.
// swagger:model CreateCourierRequest
type CreateCourierRequest struct {
	Name     string `json:"name"     example:"Kurir 1"`
	Email    string `json:"email"    example:"kurir1@example.com"`
	Password string `json:"password"`
	Phone    string `json:"phone"    example:"081234567890"`
}
