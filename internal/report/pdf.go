// Package report renders the back-office PDF exports.
package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

const companyName = "Trio Prima Logistik"

func title(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, text, "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, headers []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(31, 78, 121)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, cells []string, fill bool) {
	pdf.SetFillColor(245, 245, 245)
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", fill, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf) {
	pdf.Ln(14)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Mengetahui,", "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Pimpinan "+companyName, "", 1, "R", false, 0, "")
	pdf.Ln(16)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "................................................", "", 1, "R", false, 0, "")
}

// InvoiceReport renders the invoice listing as a landscape A4 PDF.
func InvoiceReport(rows []InvoiceRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()
	title(pdf, "LAPORAN DATA FAKTUR TRIO PRIMA LOGISTIK")

	widths := []float64{12, 42, 42, 40, 28, 32, 77}
	tableHeader(pdf, widths, []string{"No", "Pembeli", "Vendor", "Kurir", "Status", "Total", "Barang"})
	for i, r := range rows {
		tableRow(pdf, widths, []string{
			strconv.Itoa(i + 1),
			r.BuyerName,
			r.VendorName,
			r.CourierName,
			r.Status,
			"Rp " + r.Total,
			r.ItemsSummary,
		}, i%2 == 1)
	}

	signatureBlock(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice report: %w", err)
	}
	return buf.Bytes(), nil
}

// SubdistrictReport renders the shipment ranking per subdistrict.
func SubdistrictReport(rows []SubdistrictRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()
	title(pdf, "LAPORAN DATA KELURAHAN TRIO PRIMA LOGISTIK")

	widths := []float64{14, 56, 56, 26, 30}
	tableHeader(pdf, widths, []string{"No", "Kelurahan", "Kecamatan", "Kode Pos", "Pengiriman"})
	for i, r := range rows {
		tableRow(pdf, widths, []string{
			strconv.Itoa(i + 1),
			r.Name,
			r.DistrictName,
			r.PostalCode,
			strconv.Itoa(r.Shipments),
		}, i%2 == 1)
	}

	signatureBlock(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render subdistrict report: %w", err)
	}
	return buf.Bytes(), nil
}
