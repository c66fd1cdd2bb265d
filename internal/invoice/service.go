package invoice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Hendrasetiawanolybunga/tplogistik/internal/auth"
)

// Service is the application surface of the invoice aggregate. Every call
// takes the acting user explicitly; the guard rules live here, the atomic
// mutation + recalculation lives in the Repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func normalizeWeight(s string) (string, error) {
	if s == "" {
		return "0.00", nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return "", validationf("invalid weight %q", s)
	}
	return d.StringFixed(2), nil
}

// Create opens a new invoice in processing with no line items and total 0.
// Buyer and vendor are fixed for the invoice's lifetime.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req CreateInvoiceRequest) (*Invoice, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, fmt.Errorf("%w: only administrators create invoices", ErrPermission)
	}
	if req.BuyerID == "" || req.VendorID == "" {
		return nil, validationf("buyer and vendor are required")
	}
	if req.Parcels < 0 {
		return nil, validationf("parcel count cannot be negative")
	}
	weight, err := normalizeWeight(req.Weight)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		ID:        uuid.NewString(),
		BuyerID:   req.BuyerID,
		VendorID:  req.VendorID,
		CourierID: req.CourierID,
		Status:    StatusProcessing,
		Weight:    weight,
		Parcels:   req.Parcels,
		Total:     "0.00",
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	created, _, err := s.repo.GetByID(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns the invoice with its line items. Couriers and buyers only see
// their own invoices; staff see everything.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id string) (*Invoice, []LineItem, error) {
	inv, items, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	switch actor.Role {
	case auth.RoleAdmin, auth.RoleLeader:
	case auth.RoleCourier:
		if inv.CourierID != actor.ID {
			return nil, nil, fmt.Errorf("%w: invoice is not assigned to this courier", ErrPermission)
		}
	case auth.RoleBuyer:
		if inv.BuyerID != actor.ID {
			return nil, nil, fmt.Errorf("%w: invoice belongs to another buyer", ErrPermission)
		}
	default:
		return nil, nil, ErrPermission
	}
	return inv, items, nil
}

// List narrows the query to what the actor may see before delegating.
func (s *Service) List(ctx context.Context, actor auth.Actor, q ListQuery) ([]Invoice, error) {
	switch actor.Role {
	case auth.RoleAdmin, auth.RoleLeader:
	case auth.RoleCourier:
		q.CourierID = actor.ID
	case auth.RoleBuyer:
		q.BuyerID = actor.ID
	default:
		return nil, ErrPermission
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, validationf("unknown status %q", q.Status)
	}
	return s.repo.List(ctx, q)
}

// AddLineItem creates a line item and recomputes the invoice total in the
// same transaction. Only administrators edit line items, and only while the
// invoice is processing.
func (s *Service) AddLineItem(ctx context.Context, actor auth.Actor, invoiceID, productID string, quantity int) (*Invoice, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, fmt.Errorf("%w: only administrators edit line items", ErrPermission)
	}
	if quantity <= 0 {
		return nil, validationf("quantity must be positive, got %d", quantity)
	}
	if productID == "" {
		return nil, validationf("product is required")
	}
	li := &LineItem{
		ID:        uuid.NewString(),
		InvoiceID: invoiceID,
		ProductID: productID,
		Quantity:  quantity,
	}
	return s.repo.AddLineItem(ctx, invoiceID, li)
}

// UpdateLineItem changes a quantity and recomputes the owning invoice total.
func (s *Service) UpdateLineItem(ctx context.Context, actor auth.Actor, lineItemID string, quantity int) (*Invoice, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, fmt.Errorf("%w: only administrators edit line items", ErrPermission)
	}
	if quantity <= 0 {
		return nil, validationf("quantity must be positive, got %d", quantity)
	}
	return s.repo.UpdateLineItem(ctx, lineItemID, quantity)
}

// RemoveLineItem deletes a line item and recomputes the owning invoice
// total; removing the last item drives the total to 0.00.
func (s *Service) RemoveLineItem(ctx context.Context, actor auth.Actor, lineItemID string) (*Invoice, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, fmt.Errorf("%w: only administrators edit line items", ErrPermission)
	}
	return s.repo.RemoveLineItem(ctx, lineItemID)
}

// Recalculate resums the line items into the cached total. Idempotent:
// with no intervening mutation the second call leaves the total unchanged.
func (s *Service) Recalculate(ctx context.Context, actor auth.Actor, invoiceID string) (*Invoice, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, fmt.Errorf("%w: only administrators recalculate totals", ErrPermission)
	}
	return s.repo.RecalculateTotal(ctx, invoiceID)
}

// UpdateStatus moves a processing invoice to completed or cancelled. The
// assigned courier may do this (optionally attaching proof of delivery);
// administrators may do it for any invoice. Completed and cancelled are
// terminal.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, invoiceID string, req UpdateStatusRequest) (*Invoice, error) {
	status := Status(req.Status)
	if status != StatusCompleted && status != StatusCancelled {
		return nil, validationf("status must be completed or cancelled, got %q", req.Status)
	}

	switch actor.Role {
	case auth.RoleAdmin:
		return s.repo.UpdateStatus(ctx, invoiceID, status, req.ProofURL, "")
	case auth.RoleCourier:
		// The repository re-checks the assignment under the row lock.
		return s.repo.UpdateStatus(ctx, invoiceID, status, req.ProofURL, actor.ID)
	default:
		return nil, fmt.Errorf("%w: role %s cannot change invoice status", ErrPermission, actor.Role)
	}
}

// UpdateHeader edits courier assignment, weight and parcel count. Admin
// only, and only while processing; buyer and vendor are immutable.
func (s *Service) UpdateHeader(ctx context.Context, actor auth.Actor, invoiceID string, req UpdateHeaderRequest) (*Invoice, error) {
	if actor.Role != auth.RoleAdmin {
		return nil, fmt.Errorf("%w: only administrators edit invoice headers", ErrPermission)
	}
	weight := ""
	if req.Weight != "" {
		w, err := normalizeWeight(req.Weight)
		if err != nil {
			return nil, err
		}
		weight = w
	}
	parcels := req.Parcels
	if parcels == 0 {
		parcels = -1 // unchanged
	}
	return s.repo.UpdateHeader(ctx, invoiceID, req.CourierID, weight, parcels)
}

// Delete removes the invoice and all of its line items.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, invoiceID string) error {
	if actor.Role != auth.RoleAdmin {
		return fmt.Errorf("%w: only administrators delete invoices", ErrPermission)
	}
	ok, err := s.repo.Delete(ctx, invoiceID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
