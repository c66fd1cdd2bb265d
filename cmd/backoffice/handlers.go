package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

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

type deps struct {
	cfg        config.Config
	regions    region.Repository
	buyers     buyer.Repository
	vendors    vendor.Repository
	catalogs   catalog.Repository
	couriers   courier.Repository
	staff      staff.Repository
	complaints complaint.Repository
	invoices   *invoice.Service
	reports    report.Source
}

func pageParams(c *gin.Context) (q string, limit, offset int) {
	q = c.Query("q")
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return
}

func actorFrom(c *gin.Context) (auth.Actor, bool) {
	actor, ok := httpx.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
	}
	return actor, ok
}

// writeInvoiceErr maps the invoice error taxonomy onto HTTP statuses.
func writeInvoiceErr(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, invoice.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, invoice.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, invoice.ErrPermission):
		code = http.StatusForbidden
	case errors.Is(err, invoice.ErrConflict):
		code = http.StatusConflict
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
