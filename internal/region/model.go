package region

// District is the upper level of the delivery-area hierarchy.
type District struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subdistrict belongs to exactly one district and carries the postal code
// used on shipping labels.
type Subdistrict struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PostalCode string `json:"postal_code"`
	DistrictID string `json:"district_id"`
	// DistrictName is joined for display, never written back.
	DistrictName string `json:"district_name,omitempty"`
}

// CreateDistrictRequest payload.
// swagger:model CreateDistrictRequest
type CreateDistrictRequest struct {
	Name string `json:"name" example:"Kupang Tengah"`
}

// CreateSubdistrictRequest payload.
// swagger:model CreateSubdistrictRequest
type CreateSubdistrictRequest struct {
	Name       string `json:"name"        example:"Oebobo"`
	PostalCode string `json:"postal_code" example:"85111"`
	DistrictID string `json:"district_id"`
}
