package buyer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("buyer not found")
	ErrAlreadyExist = errors.New("buyer already exists")
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, b *Buyer) error
	GetByID(ctx context.Context, id string) (*Buyer, error)
	GetByEmail(ctx context.Context, email string) (*Buyer, error)
	List(ctx context.Context, q Query) ([]Buyer, error)
	Update(ctx context.Context, b *Buyer, updatePassword bool) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, b *Buyer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO buyers (id, name, email, password_hash, phone, address, subdistrict_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
	`, b.ID, b.Name, b.Email, b.PasswordHash, b.Phone, b.Address, b.SubdistrictID)
	if err != nil {
		// UNIQUE(email) is the only constraint callers can trip here
		return ErrAlreadyExist
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Buyer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b Buyer
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, phone, address, subdistrict_id, created_at, updated_at
		FROM buyers WHERE id=$1
	`, id).Scan(&b.ID, &b.Name, &b.Email, &b.PasswordHash, &b.Phone, &b.Address, &b.SubdistrictID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*Buyer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b Buyer
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, phone, address, subdistrict_id, created_at, updated_at
		FROM buyers WHERE email=$1
	`, email).Scan(&b.ID, &b.Name, &b.Email, &b.PasswordHash, &b.Phone, &b.Address, &b.SubdistrictID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Buyer, error) {
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
	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, password_hash, phone, address, subdistrict_id, created_at, updated_at
		FROM buyers
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR phone ILIKE '%'||$1||'%' OR address ILIKE '%'||$1||'%')
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Buyer
	for rows.Next() {
		var b Buyer
		if err := rows.Scan(&b.ID, &b.Name, &b.Email, &b.PasswordHash, &b.Phone, &b.Address, &b.SubdistrictID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, b *Buyer, updatePassword bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if updatePassword {
		_, err := r.db.Exec(ctx, `
			UPDATE buyers
			SET name = COALESCE(NULLIF($2,''), name),
			    email = COALESCE(NULLIF($3,''), email),
			    phone = COALESCE(NULLIF($4,''), phone),
			    address = COALESCE(NULLIF($5,''), address),
			    subdistrict_id = COALESCE(NULLIF($6,'')::uuid, subdistrict_id),
			    password_hash = $7,
			    updated_at = NOW()
			WHERE id = $1
		`, b.ID, b.Name, b.Email, b.Phone, b.Address, b.SubdistrictID, b.PasswordHash)
		return err
	}

	_, err := r.db.Exec(ctx, `
		UPDATE buyers
		SET name = COALESCE(NULLIF($2,''), name),
		    email = COALESCE(NULLIF($3,''), email),
		    phone = COALESCE(NULLIF($4,''), phone),
		    address = COALESCE(NULLIF($5,''), address),
		    subdistrict_id = COALESCE(NULLIF($6,'')::uuid, subdistrict_id),
		    updated_at = NOW()
		WHERE id = $1
	`, b.ID, b.Name, b.Email, b.Phone, b.Address, b.SubdistrictID)
	return err
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM buyers WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
