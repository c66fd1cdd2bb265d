package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ListQuery struct {
	Status    Status
	CourierID string
	BuyerID   string
	Limit     int
	Offset    int
}

// Repository persists invoices and their line items. Every mutating
// line-item method is atomic: it locks the invoice row, applies the change,
// re-reads the line items and writes the recomputed total inside one
// transaction, so no reader ever observes a total that disagrees with the
// committed line items.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, []LineItem, error)
	GetLineItem(ctx context.Context, id string) (*LineItem, error)
	List(ctx context.Context, q ListQuery) ([]Invoice, error)
	AddLineItem(ctx context.Context, invoiceID string, li *LineItem) (*Invoice, error)
	UpdateLineItem(ctx context.Context, lineItemID string, quantity int) (*Invoice, error)
	RemoveLineItem(ctx context.Context, lineItemID string) (*Invoice, error)
	RecalculateTotal(ctx context.Context, invoiceID string) (*Invoice, error)
	// UpdateStatus applies a transition out of processing. requiredCourier,
	// when non-empty, makes the update conditional on that courier still
	// being assigned, closing the gap between the guard's read and the write.
	UpdateStatus(ctx context.Context, id string, status Status, proofURL, requiredCourier string) (*Invoice, error)
	UpdateHeader(ctx context.Context, id string, courierID, weight string, parcels int) (*Invoice, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const invoiceCols = `
	i.id, i.buyer_id, i.vendor_id, COALESCE(i.courier_id::text,''), i.status,
	i.weight::text, i.parcels, i.proof_url, i.total::text, i.created_at, i.updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.BuyerID, &inv.VendorID, &inv.CourierID, &inv.Status,
		&inv.Weight, &inv.Parcels, &inv.ProofURL, &inv.Total, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *PGRepo) Create(ctx context.Context, inv *Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO invoices (id, buyer_id, vendor_id, courier_id, status, weight, parcels, proof_url, total, created_at, updated_at)
		VALUES ($1,$2,$3,NULLIF($4,'')::uuid,$5,$6,$7,'','0.00',NOW(),NOW())
	`, inv.ID, inv.BuyerID, inv.VendorID, inv.CourierID, inv.Status, inv.Weight, inv.Parcels)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Invoice, []LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	inv, err := scanInvoice(r.db.QueryRow(ctx, `
		SELECT `+invoiceCols+` FROM invoices i WHERE i.id=$1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT li.id, li.invoice_id, li.product_id, li.quantity, p.name, p.price::text
		FROM invoice_line_items li JOIN products p ON p.id = li.product_id
		WHERE li.invoice_id=$1
		ORDER BY li.position
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.ProductID, &li.Quantity, &li.ProductName, &li.UnitPrice); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		items = append(items, li)
	}
	return inv, items, rows.Err()
}

func (r *PGRepo) GetLineItem(ctx context.Context, id string) (*LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var li LineItem
	err := r.db.QueryRow(ctx, `
		SELECT li.id, li.invoice_id, li.product_id, li.quantity, p.name, p.price::text
		FROM invoice_line_items li JOIN products p ON p.id = li.product_id
		WHERE li.id=$1
	`, id).Scan(&li.ID, &li.InvoiceID, &li.ProductID, &li.Quantity, &li.ProductName, &li.UnitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &li, nil
}

func (r *PGRepo) List(ctx context.Context, q ListQuery) ([]Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+invoiceCols+` FROM invoices i
		WHERE ($1 = '' OR i.status = $1)
		  AND ($2 = '' OR i.courier_id = $2::uuid)
		  AND ($3 = '' OR i.buyer_id = $3::uuid)
		ORDER BY i.created_at DESC LIMIT $4 OFFSET $5
	`, string(q.Status), q.CourierID, q.BuyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.BuyerID, &inv.VendorID, &inv.CourierID, &inv.Status,
			&inv.Weight, &inv.Parcels, &inv.ProofURL, &inv.Total, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// lockInvoice takes the row lock that serializes all mutations of one
// invoice. Cross-invoice operations never contend.
func lockInvoice(ctx context.Context, tx pgx.Tx, id string) (Status, error) {
	var status Status
	err := tx.QueryRow(ctx, `
		SELECT status FROM invoices WHERE id=$1 FOR UPDATE
	`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return status, nil
}

// recalcLocked re-reads the line items under the lock held by tx, sums the
// subtotals in decimal arithmetic and writes the total back. It must only be
// called after lockInvoice.
func recalcLocked(ctx context.Context, tx pgx.Tx, invoiceID string) error {
	rows, err := tx.Query(ctx, `
		SELECT li.id, li.invoice_id, li.product_id, li.quantity, p.name, p.price::text
		FROM invoice_line_items li JOIN products p ON p.id = li.product_id
		WHERE li.invoice_id=$1
	`, invoiceID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	var items []LineItem
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(&li.ID, &li.InvoiceID, &li.ProductID, &li.Quantity, &li.ProductName, &li.UnitPrice); err != nil {
			rows.Close()
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
		items = append(items, li)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	total, err := SumSubtotals(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE invoices SET total=$2, updated_at=NOW() WHERE id=$1
	`, invoiceID, total); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (r *PGRepo) fetchLocked(ctx context.Context, tx pgx.Tx, invoiceID string) (*Invoice, error) {
	inv, err := scanInvoice(tx.QueryRow(ctx, `
		SELECT `+invoiceCols+` FROM invoices i WHERE i.id=$1
	`, invoiceID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return inv, nil
}

func (r *PGRepo) AddLineItem(ctx context.Context, invoiceID string, li *LineItem) (*Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, err := lockInvoice(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if status.Terminal() {
		return nil, ErrInvoiceClosed
	}

	// The product must resolve; its current price is what recalculation reads.
	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)
	`, li.ProductID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !exists {
		return nil, validationf("unknown product %s", li.ProductID)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO invoice_line_items (id, invoice_id, product_id, quantity, position)
		VALUES ($1,$2,$3,$4,
			(SELECT COALESCE(MAX(position),0)+1 FROM invoice_line_items WHERE invoice_id=$2))
	`, li.ID, invoiceID, li.ProductID, li.Quantity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := recalcLocked(ctx, tx, invoiceID); err != nil {
		return nil, err
	}
	inv, err := r.fetchLocked(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return inv, nil
}

func (r *PGRepo) UpdateLineItem(ctx context.Context, lineItemID string, quantity int) (*Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invoiceID, err := owningInvoice(ctx, tx, lineItemID)
	if err != nil {
		return nil, err
	}
	status, err := lockInvoice(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if status.Terminal() {
		return nil, ErrInvoiceClosed
	}

	tag, err := tx.Exec(ctx, `
		UPDATE invoice_line_items SET quantity=$2 WHERE id=$1
	`, lineItemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	// The item can vanish between the unlocked read and the lock.
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := recalcLocked(ctx, tx, invoiceID); err != nil {
		return nil, err
	}
	inv, err := r.fetchLocked(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return inv, nil
}

func (r *PGRepo) RemoveLineItem(ctx context.Context, lineItemID string) (*Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	invoiceID, err := owningInvoice(ctx, tx, lineItemID)
	if err != nil {
		return nil, err
	}
	// If the invoice was deleted concurrently the lock read reports
	// ErrNotFound; the cascade already removed the item.
	status, err := lockInvoice(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if status.Terminal() {
		return nil, ErrInvoiceClosed
	}

	tag, err := tx.Exec(ctx, `DELETE FROM invoice_line_items WHERE id=$1`, lineItemID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if err := recalcLocked(ctx, tx, invoiceID); err != nil {
		return nil, err
	}
	inv, err := r.fetchLocked(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return inv, nil
}

func owningInvoice(ctx context.Context, tx pgx.Tx, lineItemID string) (string, error) {
	var invoiceID string
	err := tx.QueryRow(ctx, `
		SELECT invoice_id FROM invoice_line_items WHERE id=$1
	`, lineItemID).Scan(&invoiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return invoiceID, nil
}

func (r *PGRepo) RecalculateTotal(ctx context.Context, invoiceID string) (*Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, err := lockInvoice(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if status.Terminal() {
		return nil, ErrInvoiceClosed
	}
	if err := recalcLocked(ctx, tx, invoiceID); err != nil {
		return nil, err
	}
	inv, err := r.fetchLocked(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return inv, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status, proofURL, requiredCourier string) (*Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := lockInvoice(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if cur.Terminal() {
		return nil, ErrInvoiceClosed
	}
	if requiredCourier != "" {
		var assigned string
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(courier_id::text,'') FROM invoices WHERE id=$1
		`, id).Scan(&assigned); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		if assigned != requiredCourier {
			return nil, fmt.Errorf("%w: invoice is not assigned to this courier", ErrPermission)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invoices
		SET status=$2, proof_url=COALESCE(NULLIF($3,''), proof_url), updated_at=NOW()
		WHERE id=$1
	`, id, status, proofURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	inv, err := r.fetchLocked(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return inv, nil
}

func (r *PGRepo) UpdateHeader(ctx context.Context, id string, courierID, weight string, parcels int) (*Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	status, err := lockInvoice(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if status.Terminal() {
		return nil, ErrInvoiceClosed
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invoices
		SET courier_id = COALESCE(NULLIF($2,'')::uuid, courier_id),
		    weight = COALESCE(NULLIF($3,'')::numeric, weight),
		    parcels = CASE WHEN $4 >= 0 THEN $4 ELSE parcels END,
		    updated_at = NOW()
		WHERE id=$1
	`, id, courierID, weight, parcels); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	inv, err := r.fetchLocked(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return inv, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Line items go with the invoice (ON DELETE CASCADE).
	cmd, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return cmd.RowsAffected() > 0, nil
}
