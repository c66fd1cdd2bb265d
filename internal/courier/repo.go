package courier

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("courier not found")
	ErrAlreadyExist = errors.New("courier already exists")
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, c *Courier) error
	GetByID(ctx context.Context, id string) (*Courier, error)
	GetByEmail(ctx context.Context, email string) (*Courier, error)
	List(ctx context.Context, q Query) ([]Courier, error)
	Update(ctx context.Context, c *Courier, updatePassword bool) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, c *Courier) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO couriers (id, name, email, password_hash, phone, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
	`, c.ID, c.Name, c.Email, c.PasswordHash, c.Phone, c.Active)
	if err != nil {
		return ErrAlreadyExist
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Courier, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Courier
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, phone, active, created_at, updated_at
		FROM couriers WHERE id=$1
	`, id).Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Phone, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*Courier, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Courier
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, phone, active, created_at, updated_at
		FROM couriers WHERE email=$1
	`, email).Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Phone, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Courier, error) {
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
		SELECT id, name, email, password_hash, phone, active, created_at, updated_at
		FROM couriers
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR email ILIKE '%'||$1||'%')
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Courier
	for rows.Next() {
		var c Courier
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Phone, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, c *Courier, updatePassword bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if updatePassword {
		_, err := r.db.Exec(ctx, `
			UPDATE couriers
			SET name = COALESCE(NULLIF($2,''), name),
			    email = COALESCE(NULLIF($3,''), email),
			    phone = COALESCE(NULLIF($4,''), phone),
			    password_hash = $5,
			    updated_at = NOW()
			WHERE id = $1
		`, c.ID, c.Name, c.Email, c.Phone, c.PasswordHash)
		return err
	}

	_, err := r.db.Exec(ctx, `
		UPDATE couriers
		SET name = COALESCE(NULLIF($2,''), name),
		    email = COALESCE(NULLIF($3,''), email),
		    phone = COALESCE(NULLIF($4,''), phone),
		    updated_at = NOW()
		WHERE id = $1
	`, c.ID, c.Name, c.Email, c.Phone)
	return err
}

func (r *PGRepo) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE couriers SET active = $2, updated_at = NOW() WHERE id = $1
	`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM couriers WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
