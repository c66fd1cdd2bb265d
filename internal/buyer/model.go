package buyer

import "time"

type Buyer struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	SubdistrictID string    `json:"subdistrict_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RegisterRequest payload for buyer self-registration.
// swagger:model RegisterBuyerRequest
type RegisterRequest struct {
	Name          string `json:"name"           example:"Maria Seran"`
	Email         string `json:"email"          example:"maria@example.com"`
	Password      string `json:"password"`
	Phone         string `json:"phone"          example:"081234567890"`
	Address       string `json:"address"`
	SubdistrictID string `json:"subdistrict_id"`
}

// LoginRequest payload.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
