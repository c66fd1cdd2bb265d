package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hendrasetiawanolybunga/tplogistik/internal/auth"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/buyer"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/catalog"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/complaint"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/config"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/courier"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/invoice"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/region"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/staff"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/vendor"
)

// Seeds a development database with demo accounts and sample data.
// Refuses to run twice: if any district exists the database is considered
// already seeded.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	regions := region.NewPGRepo(pool)
	if existing, err := regions.ListDistricts(ctx, region.Query{Limit: 1}); err != nil {
		log.Fatalf("check existing data: %v", err)
	} else if len(existing) > 0 {
		log.Println("database already seeded, nothing to do")
		return
	}

	mustHash := func(pw string) string {
		h, err := auth.HashPassword(pw)
		if err != nil {
			log.Fatalf("hash: %v", err)
		}
		return h
	}

	// staff accounts
	staffRepo := staff.NewPGRepo(pool)
	admin := &staff.Staff{
		ID: uuid.NewString(), Username: "admin", Email: "admin@example.com",
		PasswordHash: mustHash("admin123"), Role: "admin",
	}
	leader := &staff.Staff{
		ID: uuid.NewString(), Username: "pimpinan", Email: "pimpinan@example.com",
		PasswordHash: mustHash("pimpinan123"), Role: "leader",
	}
	for _, s := range []*staff.Staff{admin, leader} {
		if err := staffRepo.Create(ctx, s); err != nil {
			log.Fatalf("staff %s: %v", s.Username, err)
		}
	}

	// courier account
	courierRepo := courier.NewPGRepo(pool)
	kurir := &courier.Courier{
		ID: uuid.NewString(), Name: "Kurir 1", Email: "kurir@example.com",
		PasswordHash: mustHash("kurir123"), Phone: "081234567000", Active: true,
	}
	if err := courierRepo.Create(ctx, kurir); err != nil {
		log.Fatalf("courier: %v", err)
	}

	// delivery areas
	kecOebobo := &region.District{ID: uuid.NewString(), Name: "Oebobo"}
	kecKelapaLima := &region.District{ID: uuid.NewString(), Name: "Kelapa Lima"}
	for _, d := range []*region.District{kecOebobo, kecKelapaLima} {
		if err := regions.CreateDistrict(ctx, d); err != nil {
			log.Fatalf("district %s: %v", d.Name, err)
		}
	}
	kelOebufu := &region.Subdistrict{ID: uuid.NewString(), Name: "Oebufu", PostalCode: "85111", DistrictID: kecOebobo.ID}
	kelFatululi := &region.Subdistrict{ID: uuid.NewString(), Name: "Fatululi", PostalCode: "85112", DistrictID: kecOebobo.ID}
	kelNamosain := &region.Subdistrict{ID: uuid.NewString(), Name: "Namosain", PostalCode: "85113", DistrictID: kecKelapaLima.ID}
	for _, s := range []*region.Subdistrict{kelOebufu, kelFatululi, kelNamosain} {
		if err := regions.CreateSubdistrict(ctx, s); err != nil {
			log.Fatalf("subdistrict %s: %v", s.Name, err)
		}
	}

	// buyers
	buyerRepo := buyer.NewPGRepo(pool)
	verel := &buyer.Buyer{
		ID: uuid.NewString(), Name: "Verel", Email: "verel@example.com",
		PasswordHash: mustHash("verel123"), Phone: "081234567890",
		Address: "Jl. Perintis", SubdistrictID: kelOebufu.ID,
	}
	andi := &buyer.Buyer{
		ID: uuid.NewString(), Name: "Andi", Email: "andi@example.com",
		PasswordHash: mustHash("andi123"), Phone: "081298765432",
		Address: "Jl. Cakra", SubdistrictID: kelFatululi.ID,
	}
	for _, b := range []*buyer.Buyer{verel, andi} {
		if err := buyerRepo.Create(ctx, b); err != nil {
			log.Fatalf("buyer %s: %v", b.Name, err)
		}
	}

	// vendors
	vendorRepo := vendor.NewPGRepo(pool)
	rejeki := &vendor.Vendor{
		ID: uuid.NewString(), Name: "CV Sumber Rejeki", Email: "cv@rejeki.com",
		Address: "Jl. Sam Ratulangi", Phone: "08111222333",
	}
	warisan := &vendor.Vendor{
		ID: uuid.NewString(), Name: "PT Warisan Enak", Email: "info@warisanenak.com",
		Address: "Jl. Eltari", Phone: "08199887766",
	}
	for _, v := range []*vendor.Vendor{rejeki, warisan} {
		if err := vendorRepo.Create(ctx, v); err != nil {
			log.Fatalf("vendor %s: %v", v.Name, err)
		}
	}

	// catalog
	catalogRepo := catalog.NewPGRepo(pool)
	minuman := &catalog.Category{ID: uuid.NewString(), Name: "Minuman"}
	makanan := &catalog.Category{ID: uuid.NewString(), Name: "Makanan"}
	for _, cat := range []*catalog.Category{minuman, makanan} {
		if err := catalogRepo.CreateCategory(ctx, cat); err != nil {
			log.Fatalf("category %s: %v", cat.Name, err)
		}
	}
	susuJahe := &catalog.Product{ID: uuid.NewString(), Name: "Susu Jahe", Price: "25000.00", CategoryID: minuman.ID}
	susuKedelai := &catalog.Product{ID: uuid.NewString(), Name: "Susu Kedelai", Price: "20000.00", CategoryID: minuman.ID}
	keripik := &catalog.Product{ID: uuid.NewString(), Name: "Keripik Pisang", Price: "15000.00", CategoryID: makanan.ID}
	for _, p := range []*catalog.Product{susuJahe, susuKedelai, keripik} {
		if err := catalogRepo.CreateProduct(ctx, p); err != nil {
			log.Fatalf("product %s: %v", p.Name, err)
		}
	}

	// sample invoices go through the service so the totals are derived, not
	// hand-written
	svc := invoice.NewService(invoice.NewPGRepo(pool))
	actor := auth.Actor{ID: admin.ID, Role: auth.RoleAdmin}
	samples := []struct {
		buyerID, vendorID string
		weight            string
		parcels           int
	}{
		{verel.ID, rejeki.ID, "2.50", 1},
		{andi.ID, warisan.ID, "4.00", 2},
		{verel.ID, warisan.ID, "1.25", 1},
	}
	for _, s := range samples {
		created, err := svc.Create(ctx, actor, invoice.CreateInvoiceRequest{
			BuyerID: s.buyerID, VendorID: s.vendorID, CourierID: kurir.ID,
			Weight: s.weight, Parcels: s.parcels,
		})
		if err != nil {
			log.Fatalf("invoice: %v", err)
		}
		if _, err := svc.AddLineItem(ctx, actor, created.ID, susuJahe.ID, 2); err != nil {
			log.Fatalf("line item: %v", err)
		}
		if _, err := svc.AddLineItem(ctx, actor, created.ID, susuKedelai.ID, 1); err != nil {
			log.Fatalf("line item: %v", err)
		}
	}

	// complaints
	complaintRepo := complaint.NewPGRepo(pool)
	keluhan := []*complaint.Complaint{
		{ID: uuid.NewString(), BuyerID: verel.ID, Body: "Produk tidak sesuai pesanan"},
		{ID: uuid.NewString(), BuyerID: andi.ID, Body: "Pengiriman terlambat"},
	}
	for _, k := range keluhan {
		if err := complaintRepo.Create(ctx, k); err != nil {
			log.Fatalf("complaint: %v", err)
		}
	}

	log.Println("seed complete: admin/admin123, pimpinan/pimpinan123, kurir@example.com/kurir123")
}
