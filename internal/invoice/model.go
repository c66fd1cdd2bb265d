package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Invoice is the shipment aggregate. Total is a cached derived value: after
// every committed line-item mutation it equals the sum of line-item
// subtotals, "0.00" when there are none.
type Invoice struct {
	ID       string `json:"id"`
	BuyerID  string `json:"buyer_id"`
	VendorID string `json:"vendor_id"`
	// CourierID is empty while the shipment is unassigned.
	CourierID string `json:"courier_id,omitempty"`
	Status    Status `json:"status"`
	// Weight and Total are NUMERIC -> string
	Weight    string    `json:"weight"`
	Parcels   int       `json:"parcels"`
	ProofURL  string    `json:"proof_url,omitempty"`
	Total     string    `json:"total"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LineItem is one product-and-quantity entry of an invoice. UnitPrice and
// ProductName are joined from the product at read time; the subtotal is
// derived, never stored.
type LineItem struct {
	ID          string `json:"id"`
	InvoiceID   string `json:"invoice_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	ProductName string `json:"product_name,omitempty"`
	UnitPrice   string `json:"unit_price"`
}

// Subtotal returns unit price times quantity at scale 2.
func (li LineItem) Subtotal() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(li.UnitPrice)
	if err != nil {
		return decimal.Zero, err
	}
	return price.Mul(decimal.NewFromInt(int64(li.Quantity))), nil
}

// SumSubtotals is the recalculation itself: an order-independent sum of the
// line-item subtotals rendered at scale 2. All arithmetic stays in
// fixed-point decimals; an empty slice sums to "0.00".
func SumSubtotals(items []LineItem) (string, error) {
	total := decimal.Zero
	for _, li := range items {
		sub, err := li.Subtotal()
		if err != nil {
			return "", err
		}
		total = total.Add(sub)
	}
	return total.StringFixed(2), nil
}
