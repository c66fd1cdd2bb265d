package invoice

// CreateInvoiceRequest payload for a new shipment invoice.
// swagger:model CreateInvoiceRequest
type CreateInvoiceRequest struct {
	BuyerID   string `json:"buyer_id"`
	VendorID  string `json:"vendor_id"`
	CourierID string `json:"courier_id"`
	Weight    string `json:"weight"  example:"12.50"`
	Parcels   int    `json:"parcels" example:"3"`
}

// AddLineItemRequest payload.
// swagger:model AddLineItemRequest
type AddLineItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity" example:"2"`
}

// UpdateLineItemRequest payload.
// swagger:model UpdateLineItemRequest
type UpdateLineItemRequest struct {
	Quantity int `json:"quantity" example:"3"`
}

// UpdateStatusRequest payload. ProofURL is optional; couriers attach it when
// completing a delivery.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status   string `json:"status"    example:"completed"`
	ProofURL string `json:"proof_url" example:"/uploads/faktur/123.jpg"`
}

// UpdateHeaderRequest payload; empty fields keep their current value and a
// negative parcel count means "unchanged".
// swagger:model UpdateHeaderRequest
type UpdateHeaderRequest struct {
	CourierID string `json:"courier_id"`
	Weight    string `json:"weight"`
	Parcels   int    `json:"parcels"`
}
