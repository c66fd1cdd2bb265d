package report

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InvoiceRow is one line of the invoice report.
type InvoiceRow struct {
	BuyerName   string
	VendorName  string
	CourierName string
	Status      string
	Total       string
	// ItemsSummary lists "name (qty)" pairs, comma separated.
	ItemsSummary string
}

// SubdistrictRow is one line of the shipment-ranking report.
type SubdistrictRow struct {
	Name         string
	DistrictName string
	PostalCode   string
	Shipments    int
}

// Source supplies report data; the PDF builders are pure over these rows.
type Source interface {
	InvoiceRows(ctx context.Context) ([]InvoiceRow, error)
	SubdistrictRanking(ctx context.Context) ([]SubdistrictRow, error)
}

type PGSource struct{ db *pgxpool.Pool }

func NewPGSource(db *pgxpool.Pool) *PGSource { return &PGSource{db: db} }

func (s *PGSource) InvoiceRows(ctx context.Context) ([]InvoiceRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT b.name, v.name, COALESCE(c.name, '-'), i.status, i.total::text,
		       COALESCE((
		           SELECT string_agg(p.name || ' (' || li.quantity || ')', ', ' ORDER BY li.position)
		           FROM invoice_line_items li JOIN products p ON p.id = li.product_id
		           WHERE li.invoice_id = i.id
		       ), '')
		FROM invoices i
		JOIN buyers b ON b.id = i.buyer_id
		JOIN vendors v ON v.id = i.vendor_id
		LEFT JOIN couriers c ON c.id = i.courier_id
		ORDER BY i.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InvoiceRow
	for rows.Next() {
		var r InvoiceRow
		if err := rows.Scan(&r.BuyerName, &r.VendorName, &r.CourierName, &r.Status, &r.Total, &r.ItemsSummary); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGSource) SubdistrictRanking(ctx context.Context) ([]SubdistrictRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT sd.name, d.name, sd.postal_code, COUNT(i.id) AS shipments
		FROM subdistricts sd
		JOIN districts d ON d.id = sd.district_id
		JOIN buyers b ON b.subdistrict_id = sd.id
		JOIN invoices i ON i.buyer_id = b.id
		GROUP BY sd.id, sd.name, d.name, sd.postal_code
		HAVING COUNT(i.id) > 0
		ORDER BY shipments DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SubdistrictRow
	for rows.Next() {
		var r SubdistrictRow
		if err := rows.Scan(&r.Name, &r.DistrictName, &r.PostalCode, &r.Shipments); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
