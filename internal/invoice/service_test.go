package invoice

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hendrasetiawanolybunga/tplogistik/internal/auth"
)

// memRepo implements Repository in memory with the same atomicity contract
// as the Postgres implementation: one mutex serializes mutation + recalc.
type memRepo struct {
	mu       sync.Mutex
	invoices map[string]*Invoice
	items    map[string]*LineItem
	prices   map[string]string
	names    map[string]string
}

func newMemRepo() *memRepo {
	return &memRepo{
		invoices: make(map[string]*Invoice),
		items:    make(map[string]*LineItem),
		prices:   make(map[string]string),
		names:    make(map[string]string),
	}
}

func (m *memRepo) addProduct(price string) string {
	id := uuid.NewString()
	m.prices[id] = price
	m.names[id] = "Produk " + id[:8]
	return id
}

func (m *memRepo) itemsOf(invoiceID string) []LineItem {
	var out []LineItem
	for _, li := range m.items {
		if li.InvoiceID != invoiceID {
			continue
		}
		cp := *li
		cp.UnitPrice = m.prices[li.ProductID]
		cp.ProductName = m.names[li.ProductID]
		out = append(out, cp)
	}
	return out
}

func (m *memRepo) recalcLocked(invoiceID string) error {
	total, err := SumSubtotals(m.itemsOf(invoiceID))
	if err != nil {
		return err
	}
	m.invoices[invoiceID].Total = total
	return nil
}

func (m *memRepo) Create(ctx context.Context, inv *Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.invoices[inv.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*Invoice, []LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	cp := *inv
	return &cp, m.itemsOf(id), nil
}

func (m *memRepo) GetLineItem(ctx context.Context, id string) (*LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	li, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *li
	cp.UnitPrice = m.prices[li.ProductID]
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, q ListQuery) ([]Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Invoice
	for _, inv := range m.invoices {
		if q.Status != "" && inv.Status != q.Status {
			continue
		}
		if q.CourierID != "" && inv.CourierID != q.CourierID {
			continue
		}
		if q.BuyerID != "" && inv.BuyerID != q.BuyerID {
			continue
		}
		out = append(out, *inv)
	}
	return out, nil
}

func (m *memRepo) AddLineItem(ctx context.Context, invoiceID string, li *LineItem) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[invoiceID]
	if !ok {
		return nil, ErrNotFound
	}
	if inv.Status.Terminal() {
		return nil, ErrInvoiceClosed
	}
	if _, ok := m.prices[li.ProductID]; !ok {
		return nil, validationf("unknown product %s", li.ProductID)
	}
	cp := *li
	m.items[li.ID] = &cp
	if err := m.recalcLocked(invoiceID); err != nil {
		return nil, err
	}
	out := *inv
	return &out, nil
}

func (m *memRepo) UpdateLineItem(ctx context.Context, lineItemID string, quantity int) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	li, ok := m.items[lineItemID]
	if !ok {
		return nil, ErrNotFound
	}
	inv, ok := m.invoices[li.InvoiceID]
	if !ok {
		return nil, ErrNotFound
	}
	if inv.Status.Terminal() {
		return nil, ErrInvoiceClosed
	}
	li.Quantity = quantity
	if err := m.recalcLocked(li.InvoiceID); err != nil {
		return nil, err
	}
	out := *inv
	return &out, nil
}

func (m *memRepo) RemoveLineItem(ctx context.Context, lineItemID string) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	li, ok := m.items[lineItemID]
	if !ok {
		return nil, ErrNotFound
	}
	inv, ok := m.invoices[li.InvoiceID]
	if !ok {
		return nil, ErrNotFound
	}
	if inv.Status.Terminal() {
		return nil, ErrInvoiceClosed
	}
	delete(m.items, lineItemID)
	if err := m.recalcLocked(li.InvoiceID); err != nil {
		return nil, err
	}
	out := *inv
	return &out, nil
}

func (m *memRepo) RecalculateTotal(ctx context.Context, invoiceID string) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[invoiceID]
	if !ok {
		return nil, ErrNotFound
	}
	if inv.Status.Terminal() {
		return nil, ErrInvoiceClosed
	}
	if err := m.recalcLocked(invoiceID); err != nil {
		return nil, err
	}
	out := *inv
	return &out, nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, id string, status Status, proofURL, requiredCourier string) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	if inv.Status.Terminal() {
		return nil, ErrInvoiceClosed
	}
	if requiredCourier != "" && inv.CourierID != requiredCourier {
		return nil, fmt.Errorf("%w: invoice is not assigned to this courier", ErrPermission)
	}
	inv.Status = status
	if proofURL != "" {
		inv.ProofURL = proofURL
	}
	out := *inv
	return &out, nil
}

func (m *memRepo) UpdateHeader(ctx context.Context, id string, courierID, weight string, parcels int) (*Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[id]
	if !ok {
		return nil, ErrNotFound
	}
	if inv.Status.Terminal() {
		return nil, ErrInvoiceClosed
	}
	if courierID != "" {
		inv.CourierID = courierID
	}
	if weight != "" {
		inv.Weight = weight
	}
	if parcels >= 0 {
		inv.Parcels = parcels
	}
	out := *inv
	return &out, nil
}

func (m *memRepo) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[id]; !ok {
		return false, nil
	}
	delete(m.invoices, id)
	for liID, li := range m.items {
		if li.InvoiceID == id {
			delete(m.items, liID)
		}
	}
	return true, nil
}

var (
	admin = auth.Actor{ID: uuid.NewString(), Role: auth.RoleAdmin}
)

func newTestInvoice(t *testing.T, repo *memRepo, svc *Service, courierID string) *Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), admin, CreateInvoiceRequest{
		BuyerID:   uuid.NewString(),
		VendorID:  uuid.NewString(),
		CourierID: courierID,
		Weight:    "10.00",
		Parcels:   1,
	})
	require.NoError(t, err)
	return inv
}

func TestAddLineItemComputesExactTotal(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")

	p1 := repo.addProduct("25000.00")
	p2 := repo.addProduct("15000.00")

	_, err := svc.AddLineItem(context.Background(), admin, inv.ID, p1, 2)
	require.NoError(t, err)
	got, err := svc.AddLineItem(context.Background(), admin, inv.ID, p2, 1)
	require.NoError(t, err)

	assert.Equal(t, "65000.00", got.Total)
}

func TestAddLineItemRejectsNonPositiveQuantity(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")
	p := repo.addProduct("10000.00")

	for _, qty := range []int{0, -3} {
		_, err := svc.AddLineItem(context.Background(), admin, inv.ID, p, qty)
		assert.ErrorIs(t, err, ErrValidation, "qty=%d", qty)
	}

	cur, _, err := svc.Get(context.Background(), admin, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", cur.Total, "failed add must not change the total")
}

func TestAddLineItemRejectsUnknownProduct(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")

	_, err := svc.AddLineItem(context.Background(), admin, inv.ID, uuid.NewString(), 1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateLineItemRecalculates(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")
	p := repo.addProduct("2500.50")

	_, err := svc.AddLineItem(context.Background(), admin, inv.ID, p, 1)
	require.NoError(t, err)

	_, items, err := svc.Get(context.Background(), admin, inv.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got, err := svc.UpdateLineItem(context.Background(), admin, items[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "7501.50", got.Total)
}

func TestRemoveLastLineItemDrivesTotalToZero(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")
	p := repo.addProduct("99999.99")

	_, err := svc.AddLineItem(context.Background(), admin, inv.ID, p, 7)
	require.NoError(t, err)

	_, items, err := svc.Get(context.Background(), admin, inv.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got, err := svc.RemoveLineItem(context.Background(), admin, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", got.Total)
}

func TestRemoveMissingLineItem(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	_, err := svc.RemoveLineItem(context.Background(), admin, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")
	p := repo.addProduct("12345.67")

	_, err := svc.AddLineItem(context.Background(), admin, inv.ID, p, 2)
	require.NoError(t, err)

	first, err := svc.Recalculate(context.Background(), admin, inv.ID)
	require.NoError(t, err)
	second, err := svc.Recalculate(context.Background(), admin, inv.ID)
	require.NoError(t, err)

	assert.Equal(t, "24691.34", first.Total)
	assert.Equal(t, first.Total, second.Total)
}

func TestRecalculateReadsLivePrices(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")
	p := repo.addProduct("10000.00")

	got, err := svc.AddLineItem(context.Background(), admin, inv.ID, p, 2)
	require.NoError(t, err)
	require.Equal(t, "20000.00", got.Total)

	// Catalog price edits flow into the next recalculation.
	repo.mu.Lock()
	repo.prices[p] = "11000.00"
	repo.mu.Unlock()

	got, err = svc.Recalculate(context.Background(), admin, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "22000.00", got.Total)
}

func TestConcurrentAddsBothReflected(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")
	p1 := repo.addProduct("10000.00")
	p2 := repo.addProduct("20000.00")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.AddLineItem(context.Background(), admin, inv.ID, p1, 1)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.AddLineItem(context.Background(), admin, inv.ID, p2, 1)
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	cur, _, err := svc.Get(context.Background(), admin, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "30000.00", cur.Total, "neither concurrent add may be lost")
}

func TestCourierStatusPermissions(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	courierID := uuid.NewString()
	mine := auth.Actor{ID: courierID, Role: auth.RoleCourier}
	other := auth.Actor{ID: uuid.NewString(), Role: auth.RoleCourier}

	inv := newTestInvoice(t, repo, svc, courierID)

	// A courier may not touch anything but status and proof.
	_, err := svc.AddLineItem(context.Background(), mine, inv.ID, uuid.NewString(), 1)
	assert.ErrorIs(t, err, ErrPermission)
	_, err = svc.UpdateHeader(context.Background(), mine, inv.ID, UpdateHeaderRequest{Weight: "5.00"})
	assert.ErrorIs(t, err, ErrPermission)

	// Another courier may not complete this shipment.
	_, err = svc.UpdateStatus(context.Background(), other, inv.ID, UpdateStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrPermission)

	// The assigned courier may, attaching proof.
	got, err := svc.UpdateStatus(context.Background(), mine, inv.ID, UpdateStatusRequest{
		Status: "completed", ProofURL: "/uploads/faktur/abc.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "/uploads/faktur/abc.jpg", got.ProofURL)
}

func TestTerminalStatesRejectMutation(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")
	p := repo.addProduct("10000.00")

	_, err := svc.UpdateStatus(context.Background(), admin, inv.ID, UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	_, err = svc.AddLineItem(context.Background(), admin, inv.ID, p, 1)
	assert.ErrorIs(t, err, ErrPermission)
	_, err = svc.UpdateStatus(context.Background(), admin, inv.ID, UpdateStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrPermission)
	_, err = svc.UpdateHeader(context.Background(), admin, inv.ID, UpdateHeaderRequest{Parcels: 5})
	assert.ErrorIs(t, err, ErrPermission)
}

func TestStatusTargetValidation(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")

	for _, bad := range []string{"processing", "shipped", ""} {
		_, err := svc.UpdateStatus(context.Background(), admin, inv.ID, UpdateStatusRequest{Status: bad})
		assert.ErrorIs(t, err, ErrValidation, "status=%q", bad)
	}
}

func TestListScopedByRole(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	courierID := uuid.NewString()
	newTestInvoice(t, repo, svc, courierID)
	newTestInvoice(t, repo, svc, "")

	all, err := svc.List(context.Background(), admin, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(context.Background(), auth.Actor{ID: courierID, Role: auth.RoleCourier}, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestDeleteCascades(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	inv := newTestInvoice(t, repo, svc, "")
	p := repo.addProduct("500.00")

	_, err := svc.AddLineItem(context.Background(), admin, inv.ID, p, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), admin, inv.ID))
	_, _, err = svc.Get(context.Background(), admin, inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, repo.items, "line items go with the invoice")
}

func TestSumSubtotalsEmpty(t *testing.T) {
	total, err := SumSubtotals(nil)
	require.NoError(t, err)
	assert.Equal(t, "0.00", total)
}
