package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hendrasetiawanolybunga/tplogistik/internal/report"
)

func invoiceReportHandler(src report.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := src.InvoiceRows(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out, err := report.InvoiceReport(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="laporan_faktur.pdf"`)
		c.Data(http.StatusOK, "application/pdf", out)
	}
}

func subdistrictReportHandler(src report.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := src.SubdistrictRanking(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		out, err := report.SubdistrictReport(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="laporan_kelurahan.pdf"`)
		c.Data(http.StatusOK, "application/pdf", out)
	}
}
