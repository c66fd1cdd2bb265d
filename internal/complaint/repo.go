package complaint

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("complaint not found")
)

type Query struct {
	BuyerID string
	Limit   int
	Offset  int
}

type Repository interface {
	Create(ctx context.Context, c *Complaint) error
	GetByID(ctx context.Context, id string) (*Complaint, error)
	List(ctx context.Context, q Query) ([]Complaint, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, c *Complaint) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO complaints (id, buyer_id, invoice_id, body, photo_url, created_at)
		VALUES ($1,$2,NULLIF($3,'')::uuid,$4,$5,NOW())
	`, c.ID, c.BuyerID, c.InvoiceID, c.Body, c.PhotoURL)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Complaint, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Complaint
	err := r.db.QueryRow(ctx, `
		SELECT k.id, k.buyer_id, COALESCE(k.invoice_id::text,''), k.body, k.photo_url, b.name, k.created_at
		FROM complaints k JOIN buyers b ON b.id = k.buyer_id
		WHERE k.id=$1
	`, id).Scan(&c.ID, &c.BuyerID, &c.InvoiceID, &c.Body, &c.PhotoURL, &c.BuyerName, &c.CreatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Complaint, error) {
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
		SELECT k.id, k.buyer_id, COALESCE(k.invoice_id::text,''), k.body, k.photo_url, b.name, k.created_at
		FROM complaints k JOIN buyers b ON b.id = k.buyer_id
		WHERE ($1 = '' OR k.buyer_id = $1::uuid)
		ORDER BY k.created_at DESC LIMIT $2 OFFSET $3
	`, q.BuyerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Complaint
	for rows.Next() {
		var c Complaint
		if err := rows.Scan(&c.ID, &c.BuyerID, &c.InvoiceID, &c.Body, &c.PhotoURL, &c.BuyerName, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
