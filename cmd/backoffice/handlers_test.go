package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Hendrasetiawanolybunga/tplogistik/internal/auth"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/buyer"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/config"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/httpx"
	inv "github.com/Hendrasetiawanolybunga/tplogistik/internal/invoice"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/region"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/report"
)

//
// ---------- STUBS & FAKES ----------
//

// asActor injects the acting user the way the auth middleware would.
func asActor(actor auth.Actor) gin.HandlerFunc {
	return func(c *gin.Context) { httpx.SetActor(c, actor) }
}

// stubBuyerRepo keeps at most one buyer in memory.
type stubBuyerRepo struct {
	last *buyer.Buyer
}

func (s *stubBuyerRepo) Create(ctx context.Context, b *buyer.Buyer) error {
	if s.last != nil && s.last.Email == b.Email {
		return buyer.ErrAlreadyExist
	}
	cp := *b
	s.last = &cp
	return nil
}

func (s *stubBuyerRepo) GetByID(ctx context.Context, id string) (*buyer.Buyer, error) {
	if s.last == nil || s.last.ID != id {
		return nil, buyer.ErrNotFound
	}
	return s.last, nil
}

func (s *stubBuyerRepo) GetByEmail(ctx context.Context, email string) (*buyer.Buyer, error) {
	if s.last == nil || s.last.Email != email {
		return nil, buyer.ErrNotFound
	}
	return s.last, nil
}

func (s *stubBuyerRepo) List(ctx context.Context, q buyer.Query) ([]buyer.Buyer, error) {
	if s.last == nil {
		return []buyer.Buyer{}, nil
	}
	return []buyer.Buyer{*s.last}, nil
}

func (s *stubBuyerRepo) Update(ctx context.Context, b *buyer.Buyer, updatePassword bool) error {
	return nil
}

func (s *stubBuyerRepo) Delete(ctx context.Context, id string) (bool, error) {
	if s.last == nil || s.last.ID != id {
		return false, nil
	}
	s.last = nil
	return true, nil
}

// stubRegionRepo answers GetSubdistrict for exactly one known id.
type stubRegionRepo struct {
	region.Repository
	subdistrictID string
}

func (s *stubRegionRepo) GetSubdistrict(ctx context.Context, id string) (*region.Subdistrict, error) {
	if id != s.subdistrictID {
		return nil, region.ErrNotFound
	}
	return &region.Subdistrict{ID: id, Name: "Oebobo"}, nil
}

// stubInvoiceRepo keeps one invoice and its items; recalculation mirrors the
// real repository's contract.
type stubInvoiceRepo struct {
	inv   *inv.Invoice
	items []inv.LineItem
}

func (s *stubInvoiceRepo) recalc() {
	total, err := inv.SumSubtotals(s.items)
	if err == nil {
		s.inv.Total = total
	}
}

func (s *stubInvoiceRepo) Create(ctx context.Context, i *inv.Invoice) error {
	cp := *i
	s.inv = &cp
	s.items = nil
	return nil
}

func (s *stubInvoiceRepo) GetByID(ctx context.Context, id string) (*inv.Invoice, []inv.LineItem, error) {
	if s.inv == nil || s.inv.ID != id {
		return nil, nil, inv.ErrNotFound
	}
	return s.inv, s.items, nil
}

func (s *stubInvoiceRepo) GetLineItem(ctx context.Context, id string) (*inv.LineItem, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, inv.ErrNotFound
}

func (s *stubInvoiceRepo) List(ctx context.Context, q inv.ListQuery) ([]inv.Invoice, error) {
	if s.inv == nil {
		return []inv.Invoice{}, nil
	}
	if q.CourierID != "" && s.inv.CourierID != q.CourierID {
		return []inv.Invoice{}, nil
	}
	if q.BuyerID != "" && s.inv.BuyerID != q.BuyerID {
		return []inv.Invoice{}, nil
	}
	return []inv.Invoice{*s.inv}, nil
}

func (s *stubInvoiceRepo) AddLineItem(ctx context.Context, invoiceID string, li *inv.LineItem) (*inv.Invoice, error) {
	if s.inv == nil || s.inv.ID != invoiceID {
		return nil, inv.ErrNotFound
	}
	if s.inv.Status.Terminal() {
		return nil, inv.ErrInvoiceClosed
	}
	s.items = append(s.items, *li)
	s.recalc()
	return s.inv, nil
}

func (s *stubInvoiceRepo) UpdateLineItem(ctx context.Context, lineItemID string, quantity int) (*inv.Invoice, error) {
	for i := range s.items {
		if s.items[i].ID == lineItemID {
			if s.inv.Status.Terminal() {
				return nil, inv.ErrInvoiceClosed
			}
			s.items[i].Quantity = quantity
			s.recalc()
			return s.inv, nil
		}
	}
	return nil, inv.ErrNotFound
}

func (s *stubInvoiceRepo) RemoveLineItem(ctx context.Context, lineItemID string) (*inv.Invoice, error) {
	for i := range s.items {
		if s.items[i].ID == lineItemID {
			if s.inv.Status.Terminal() {
				return nil, inv.ErrInvoiceClosed
			}
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.recalc()
			return s.inv, nil
		}
	}
	return nil, inv.ErrNotFound
}

func (s *stubInvoiceRepo) RecalculateTotal(ctx context.Context, invoiceID string) (*inv.Invoice, error) {
	if s.inv == nil || s.inv.ID != invoiceID {
		return nil, inv.ErrNotFound
	}
	s.recalc()
	return s.inv, nil
}

func (s *stubInvoiceRepo) UpdateStatus(ctx context.Context, id string, status inv.Status, proofURL, requiredCourier string) (*inv.Invoice, error) {
	if s.inv == nil || s.inv.ID != id {
		return nil, inv.ErrNotFound
	}
	if s.inv.Status.Terminal() {
		return nil, inv.ErrInvoiceClosed
	}
	if requiredCourier != "" && s.inv.CourierID != requiredCourier {
		return nil, fmt.Errorf("%w: invoice is not assigned to this courier", inv.ErrPermission)
	}
	s.inv.Status = status
	if proofURL != "" {
		s.inv.ProofURL = proofURL
	}
	return s.inv, nil
}

func (s *stubInvoiceRepo) UpdateHeader(ctx context.Context, id string, courierID, weight string, parcels int) (*inv.Invoice, error) {
	if s.inv == nil || s.inv.ID != id {
		return nil, inv.ErrNotFound
	}
	if s.inv.Status.Terminal() {
		return nil, inv.ErrInvoiceClosed
	}
	if courierID != "" {
		s.inv.CourierID = courierID
	}
	if weight != "" {
		s.inv.Weight = weight
	}
	if parcels >= 0 {
		s.inv.Parcels = parcels
	}
	return s.inv, nil
}

func (s *stubInvoiceRepo) Delete(ctx context.Context, id string) (bool, error) {
	if s.inv == nil || s.inv.ID != id {
		return false, nil
	}
	s.inv = nil
	s.items = nil
	return true, nil
}

// stubReportSource returns canned rows.
type stubReportSource struct{}

func (stubReportSource) InvoiceRows(ctx context.Context) ([]report.InvoiceRow, error) {
	return []report.InvoiceRow{
		{BuyerName: "Maria Seran", VendorName: "UD Sinar Timur", CourierName: "-",
			Status: "processing", Total: "65000.00", ItemsSummary: "Beras 25kg (2)"},
	}, nil
}

func (stubReportSource) SubdistrictRanking(ctx context.Context) ([]report.SubdistrictRow, error) {
	return []report.SubdistrictRow{
		{Name: "Oebobo", DistrictName: "Kupang Tengah", PostalCode: "85111", Shipments: 4},
	}, nil
}

func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
}

func doJSON(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

//
// ---------- TESTS ----------
//

func TestRegisterBuyer_HappyPath(t *testing.T) {
	t.Parallel()

	subID := uuid.NewString()
	buyers := &stubBuyerRepo{}
	regions := &stubRegionRepo{subdistrictID: subID}

	r := gin.New()
	r.POST("/auth/buyers/register", registerBuyerHandler(buyers, regions))

	body := fmt.Sprintf(`{"name":"Maria Seran","email":"maria@example.com","password":"rahasia","subdistrict_id":%q}`, subID)
	w := doJSON(r, http.MethodPost, "/auth/buyers/register", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if buyers.last == nil {
		t.Fatalf("buyer was not persisted")
	}
	if buyers.last.PasswordHash == "rahasia" || buyers.last.PasswordHash == "" {
		t.Fatalf("password must be stored hashed, got %q", buyers.last.PasswordHash)
	}
	// the hash must never leak through the JSON body
	if bytes.Contains(w.Body.Bytes(), []byte(buyers.last.PasswordHash)) {
		t.Fatalf("password hash leaked in response: %s", w.Body.String())
	}
}

func TestRegisterBuyer_UnknownSubdistrict(t *testing.T) {
	t.Parallel()

	buyers := &stubBuyerRepo{}
	regions := &stubRegionRepo{subdistrictID: uuid.NewString()}

	r := gin.New()
	r.POST("/auth/buyers/register", registerBuyerHandler(buyers, regions))

	body := fmt.Sprintf(`{"name":"X","email":"x@example.com","password":"p","subdistrict_id":%q}`, uuid.NewString())
	w := doJSON(r, http.MethodPost, "/auth/buyers/register", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func TestRegisterBuyer_DuplicateEmail(t *testing.T) {
	t.Parallel()

	subID := uuid.NewString()
	buyers := &stubBuyerRepo{}
	regions := &stubRegionRepo{subdistrictID: subID}

	r := gin.New()
	r.POST("/auth/buyers/register", registerBuyerHandler(buyers, regions))

	body := fmt.Sprintf(`{"name":"Maria","email":"maria@example.com","password":"p","subdistrict_id":%q}`, subID)
	if w := doJSON(r, http.MethodPost, "/auth/buyers/register", body); w.Code != http.StatusCreated {
		t.Fatalf("first register: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodPost, "/auth/buyers/register", body); w.Code != http.StatusConflict {
		t.Fatalf("second register: status=%d body=%s (expected 409)", w.Code, w.Body.String())
	}
}

func TestLoginBuyer(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("rahasia")
	if err != nil {
		t.Fatal(err)
	}
	buyers := &stubBuyerRepo{last: &buyer.Buyer{
		ID: uuid.NewString(), Name: "Maria", Email: "maria@example.com", PasswordHash: hash,
	}}
	cfg := testConfig()

	r := gin.New()
	r.POST("/auth/buyers/login", loginBuyerHandler(buyers, cfg))

	w := doJSON(r, http.MethodPost, "/auth/buyers/login", `{"email":"maria@example.com","password":"salah"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status=%d (expected 401)", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/auth/buyers/login", `{"email":"maria@example.com","password":"rahasia"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token == "" || resp.Role != auth.RoleBuyer {
		t.Fatalf("unexpected token response: %+v", resp)
	}
	actor, err := auth.ParseToken(resp.Token, cfg.JWTSecret)
	if err != nil || actor.ID != buyers.last.ID {
		t.Fatalf("token does not parse back to the buyer: %v %+v", err, actor)
	}
}

func TestCreateInvoice_AdminOnly(t *testing.T) {
	t.Parallel()

	svc := inv.NewService(&stubInvoiceRepo{})

	r := gin.New()
	r.POST("/invoices", asActor(auth.Actor{ID: uuid.NewString(), Role: auth.RoleBuyer}), createInvoiceHandler(svc))

	body := fmt.Sprintf(`{"buyer_id":%q,"vendor_id":%q}`, uuid.NewString(), uuid.NewString())
	w := doJSON(r, http.MethodPost, "/invoices", body)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status=%d body=%s (expected 403)", w.Code, w.Body.String())
	}
}

func TestInvoiceLineItemFlow(t *testing.T) {
	t.Parallel()

	repo := &stubInvoiceRepo{}
	svc := inv.NewService(repo)
	admin := auth.Actor{ID: uuid.NewString(), Role: auth.RoleAdmin}

	r := gin.New()
	withAdmin := asActor(admin)
	r.POST("/invoices", withAdmin, createInvoiceHandler(svc))
	r.POST("/invoices/:id/items", withAdmin, addLineItemHandler(svc))
	r.PUT("/invoices/:id/items/:item_id", withAdmin, updateLineItemHandler(svc))
	r.GET("/invoices/:id", withAdmin, getInvoiceHandler(svc))

	body := fmt.Sprintf(`{"buyer_id":%q,"vendor_id":%q,"weight":"12.5"}`, uuid.NewString(), uuid.NewString())
	w := doJSON(r, http.MethodPost, "/invoices", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status=%d body=%s", w.Code, w.Body.String())
	}
	var created inv.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if created.Total != "0.00" || created.Weight != "12.50" {
		t.Fatalf("new invoice: total=%q weight=%q", created.Total, created.Weight)
	}

	// the stub has no product table, so plant the unit price directly
	w = doJSON(r, http.MethodPost, "/invoices/"+created.ID+"/items",
		fmt.Sprintf(`{"product_id":%q,"quantity":2}`, uuid.NewString()))
	if w.Code != http.StatusCreated {
		t.Fatalf("add item: status=%d body=%s", w.Code, w.Body.String())
	}
	repo.items[0].UnitPrice = "25000.00"
	repo.recalc()

	w = doJSON(r, http.MethodPut, "/invoices/"+created.ID+"/items/"+repo.items[0].ID, `{"quantity":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update item: status=%d body=%s", w.Code, w.Body.String())
	}
	var after inv.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &after); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if after.Total != "75000.00" {
		t.Fatalf("total=%q, expected 75000.00", after.Total)
	}

	w = doJSON(r, http.MethodPut, "/invoices/"+created.ID+"/items/"+repo.items[0].ID, `{"quantity":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero quantity: status=%d (expected 400)", w.Code)
	}
}

func TestUpdateInvoiceStatus_CourierAssignment(t *testing.T) {
	t.Parallel()

	courierID := uuid.NewString()
	repo := &stubInvoiceRepo{inv: &inv.Invoice{
		ID: uuid.NewString(), BuyerID: uuid.NewString(), VendorID: uuid.NewString(),
		CourierID: courierID, Status: inv.StatusProcessing, Total: "0.00",
	}}
	svc := inv.NewService(repo)

	other := gin.New()
	other.PUT("/invoices/:id/status",
		asActor(auth.Actor{ID: uuid.NewString(), Role: auth.RoleCourier}),
		updateInvoiceStatusHandler(svc))
	w := doJSON(other, http.MethodPut, "/invoices/"+repo.inv.ID+"/status", `{"status":"completed"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("unassigned courier: status=%d body=%s (expected 403)", w.Code, w.Body.String())
	}

	assigned := gin.New()
	assigned.PUT("/invoices/:id/status",
		asActor(auth.Actor{ID: courierID, Role: auth.RoleCourier}),
		updateInvoiceStatusHandler(svc))
	w = doJSON(assigned, http.MethodPut, "/invoices/"+repo.inv.ID+"/status",
		`{"status":"completed","proof_url":"/uploads/faktur/1.jpg"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("assigned courier: status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.inv.Status != inv.StatusCompleted || repo.inv.ProofURL == "" {
		t.Fatalf("invoice not completed with proof: %+v", repo.inv)
	}

	// completed is terminal
	w = doJSON(assigned, http.MethodPut, "/invoices/"+repo.inv.ID+"/status", `{"status":"cancelled"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("terminal transition: status=%d (expected 403)", w.Code)
	}
}

func TestUpdateInvoiceStatus_InvalidTarget(t *testing.T) {
	t.Parallel()

	repo := &stubInvoiceRepo{inv: &inv.Invoice{
		ID: uuid.NewString(), Status: inv.StatusProcessing, Total: "0.00",
	}}
	svc := inv.NewService(repo)

	r := gin.New()
	r.PUT("/invoices/:id/status",
		asActor(auth.Actor{ID: uuid.NewString(), Role: auth.RoleAdmin}),
		updateInvoiceStatusHandler(svc))

	w := doJSON(r, http.MethodPut, "/invoices/"+repo.inv.ID+"/status", `{"status":"processing"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s (expected 400)", w.Code, w.Body.String())
	}
}

func TestGetInvoice_NotFound(t *testing.T) {
	t.Parallel()

	svc := inv.NewService(&stubInvoiceRepo{})

	r := gin.New()
	r.GET("/invoices/:id",
		asActor(auth.Actor{ID: uuid.NewString(), Role: auth.RoleAdmin}),
		getInvoiceHandler(svc))

	w := doJSON(r, http.MethodGet, "/invoices/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s (expected 404)", w.Code, w.Body.String())
	}
}

func TestInvoiceReportHandler(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/reports/invoices.pdf", invoiceReportHandler(stubReportSource{}))

	w := doJSON(r, http.MethodGet, "/reports/invoices.pdf", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content-type=%q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a PDF document")
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}
