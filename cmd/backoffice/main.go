package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Hendrasetiawanolybunga/tplogistik/internal/auth"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/buyer"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/catalog"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/complaint"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/config"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/courier"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/httpx"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/invoice"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/region"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/report"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/staff"
	"github.com/Hendrasetiawanolybunga/tplogistik/internal/vendor"
)

func main() {
	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	deps := &deps{
		cfg:        cfg,
		regions:    region.NewPGRepo(pool),
		buyers:     buyer.NewPGRepo(pool),
		vendors:    vendor.NewPGRepo(pool),
		catalogs:   catalog.NewPGRepo(pool),
		couriers:   courier.NewPGRepo(pool),
		staff:      staff.NewPGRepo(pool),
		complaints: complaint.NewPGRepo(pool),
		invoices:   invoice.NewService(invoice.NewPGRepo(pool)),
		reports:    report.NewPGSource(pool),
	}

	r := newRouter(deps)
	log.Printf("backoffice listening on %s", cfg.HTTPAddr)
	log.Fatal(r.Run(cfg.HTTPAddr))
}

func newRouter(d *deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })

	r.POST("/auth/buyers/register", registerBuyerHandler(d.buyers, d.regions))
	r.POST("/auth/buyers/login", loginBuyerHandler(d.buyers, d.cfg))
	r.POST("/auth/couriers/login", loginCourierHandler(d.couriers, d.cfg))
	r.POST("/auth/staff/login", loginStaffHandler(d.staff, d.cfg))

	authn := httpx.Auth(d.cfg.JWTSecret)
	adminOnly := httpx.RequireRole(auth.RoleAdmin)
	staffOnly := httpx.RequireRole(auth.RoleAdmin, auth.RoleLeader)

	admin := r.Group("/", authn, adminOnly)
	{
		admin.POST("/districts", createDistrictHandler(d.regions))
		admin.GET("/districts", listDistrictsHandler(d.regions))
		admin.PUT("/districts/:id", updateDistrictHandler(d.regions))
		admin.DELETE("/districts/:id", deleteDistrictHandler(d.regions))

		admin.POST("/subdistricts", createSubdistrictHandler(d.regions))
		admin.GET("/subdistricts", listSubdistrictsHandler(d.regions))
		admin.PUT("/subdistricts/:id", updateSubdistrictHandler(d.regions))
		admin.DELETE("/subdistricts/:id", deleteSubdistrictHandler(d.regions))

		admin.GET("/buyers", listBuyersHandler(d.buyers))
		admin.GET("/buyers/:id", getBuyerHandler(d.buyers))
		admin.DELETE("/buyers/:id", deleteBuyerHandler(d.buyers))

		admin.POST("/vendors", createVendorHandler(d.vendors))
		admin.GET("/vendors", listVendorsHandler(d.vendors))
		admin.GET("/vendors/:id", getVendorHandler(d.vendors))
		admin.PUT("/vendors/:id", updateVendorHandler(d.vendors))
		admin.DELETE("/vendors/:id", deleteVendorHandler(d.vendors))

		admin.POST("/categories", createCategoryHandler(d.catalogs))
		admin.GET("/categories", listCategoriesHandler(d.catalogs))
		admin.PUT("/categories/:id", updateCategoryHandler(d.catalogs))
		admin.DELETE("/categories/:id", deleteCategoryHandler(d.catalogs))

		admin.POST("/products", createProductHandler(d.catalogs))
		admin.GET("/products", listProductsHandler(d.catalogs))
		admin.GET("/products/:id", getProductHandler(d.catalogs))
		admin.PUT("/products/:id", updateProductHandler(d.catalogs))
		admin.DELETE("/products/:id", deleteProductHandler(d.catalogs))

		admin.POST("/couriers", createCourierHandler(d.couriers))
		admin.GET("/couriers", listCouriersHandler(d.couriers))
		admin.PUT("/couriers/:id", updateCourierHandler(d.couriers))
		admin.PUT("/couriers/:id/active", setCourierActiveHandler(d.couriers))
		admin.DELETE("/couriers/:id", deleteCourierHandler(d.couriers))

		admin.POST("/invoices", createInvoiceHandler(d.invoices))
		admin.PUT("/invoices/:id", updateInvoiceHeaderHandler(d.invoices))
		admin.DELETE("/invoices/:id", deleteInvoiceHandler(d.invoices))
		admin.POST("/invoices/:id/items", addLineItemHandler(d.invoices))
		admin.PUT("/invoices/:id/items/:item_id", updateLineItemHandler(d.invoices))
		admin.DELETE("/invoices/:id/items/:item_id", removeLineItemHandler(d.invoices))
		admin.POST("/invoices/:id/recalculate", recalculateInvoiceHandler(d.invoices))

		admin.DELETE("/complaints/:id", deleteComplaintHandler(d.complaints))
	}

	// Invoice reads and status updates are shared surfaces: the service
	// scopes results to the actor's role.
	shared := r.Group("/", authn)
	{
		shared.GET("/invoices", listInvoicesHandler(d.invoices))
		shared.GET("/invoices/:id", getInvoiceHandler(d.invoices))
		shared.PUT("/invoices/:id/status", updateInvoiceStatusHandler(d.invoices))

		shared.POST("/complaints", createComplaintHandler(d.complaints))
		shared.GET("/complaints", listComplaintsHandler(d.complaints))
	}

	reports := r.Group("/reports", authn, staffOnly)
	{
		reports.GET("/invoices.pdf", invoiceReportHandler(d.reports))
		reports.GET("/subdistricts.pdf", subdistrictReportHandler(d.reports))
	}

	return r
}
