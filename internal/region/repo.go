package region

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("region not found")
)

type Query struct {
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	CreateDistrict(ctx context.Context, d *District) error
	GetDistrict(ctx context.Context, id string) (*District, error)
	ListDistricts(ctx context.Context, q Query) ([]District, error)
	UpdateDistrict(ctx context.Context, d *District) error
	DeleteDistrict(ctx context.Context, id string) (bool, error)

	CreateSubdistrict(ctx context.Context, s *Subdistrict) error
	GetSubdistrict(ctx context.Context, id string) (*Subdistrict, error)
	ListSubdistricts(ctx context.Context, q Query) ([]Subdistrict, error)
	UpdateSubdistrict(ctx context.Context, s *Subdistrict) error
	DeleteSubdistrict(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (r *PGRepo) CreateDistrict(ctx context.Context, d *District) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO districts (id, name) VALUES ($1,$2)
	`, d.ID, d.Name)
	return err
}

func (r *PGRepo) GetDistrict(ctx context.Context, id string) (*District, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d District
	err := r.db.QueryRow(ctx, `
		SELECT id, name FROM districts WHERE id=$1
	`, id).Scan(&d.ID, &d.Name)
	if err != nil {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *PGRepo) ListDistricts(ctx context.Context, q Query) ([]District, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset := clampPage(q.Limit, q.Offset)
	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT id, name FROM districts
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%')
		ORDER BY name LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateDistrict(ctx context.Context, d *District) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE districts SET name = COALESCE(NULLIF($2,''), name) WHERE id = $1
	`, d.ID, d.Name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteDistrict(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM districts WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) CreateSubdistrict(ctx context.Context, s *Subdistrict) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO subdistricts (id, name, postal_code, district_id)
		VALUES ($1,$2,$3,$4)
	`, s.ID, s.Name, s.PostalCode, s.DistrictID)
	return err
}

func (r *PGRepo) GetSubdistrict(ctx context.Context, id string) (*Subdistrict, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s Subdistrict
	err := r.db.QueryRow(ctx, `
		SELECT s.id, s.name, s.postal_code, s.district_id, d.name
		FROM subdistricts s JOIN districts d ON d.id = s.district_id
		WHERE s.id=$1
	`, id).Scan(&s.ID, &s.Name, &s.PostalCode, &s.DistrictID, &s.DistrictName)
	if err != nil {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *PGRepo) ListSubdistricts(ctx context.Context, q Query) ([]Subdistrict, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset := clampPage(q.Limit, q.Offset)
	search := strings.TrimSpace(q.Q)

	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.name, s.postal_code, s.district_id, d.name
		FROM subdistricts s JOIN districts d ON d.id = s.district_id
		WHERE ($1 = '' OR s.name ILIKE '%'||$1||'%' OR s.postal_code ILIKE '%'||$1||'%')
		ORDER BY s.name LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Subdistrict
	for rows.Next() {
		var s Subdistrict
		if err := rows.Scan(&s.ID, &s.Name, &s.PostalCode, &s.DistrictID, &s.DistrictName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateSubdistrict(ctx context.Context, s *Subdistrict) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE subdistricts
		SET name = COALESCE(NULLIF($2,''), name),
		    postal_code = COALESCE(NULLIF($3,''), postal_code),
		    district_id = COALESCE(NULLIF($4,'')::uuid, district_id)
		WHERE id = $1
	`, s.ID, s.Name, s.PostalCode, s.DistrictID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteSubdistrict(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM subdistricts WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
