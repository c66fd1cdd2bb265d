package complaint

import "time"

// Complaint is filed by a buyer, optionally against a specific invoice.
type Complaint struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyer_id"`
	InvoiceID string    `json:"invoice_id,omitempty"`
	Body      string    `json:"body"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	BuyerName string    `json:"buyer_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateComplaintRequest payload.
// swagger:model CreateComplaintRequest
type CreateComplaintRequest struct {
	InvoiceID string `json:"invoice_id"`
	Body      string `json:"body"      example:"Paket diterima dalam keadaan rusak"`
	PhotoURL  string `json:"photo_url"`
}
