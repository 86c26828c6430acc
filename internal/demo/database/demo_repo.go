package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	db "github.com/demoforge/demoforge/internal/database"
	"github.com/demoforge/demoforge/internal/demo/model"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("database not configured")

type Repo struct {
	DB *db.Database
}

func NewRepo(d *db.Database) *Repo { return &Repo{DB: d} }

// CreateDemo inserts a tenant. When the website_url already has an active
// row the existing record is returned with created=false; a soft-deleted
// row is reactivated in place so the site can be onboarded again.
func (r *Repo) CreateDemo(ctx context.Context, d *model.Demo) (created bool, out *model.Demo, err error) {
	if r.DB == nil {
		return false, nil, ErrNotConfigured
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	const q = `
	INSERT INTO demos (id, website_url, business_name, industry, city, region, contact_email, contact_phone, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	ON CONFLICT (website_url) DO NOTHING`
	res, err := r.DB.ExecContext(ctx, q, d.ID, d.WebsiteURL, d.BusinessName, d.Industry,
		d.City, d.Region, d.ContactEmail, d.ContactPhone, model.StatusActive)
	if err != nil {
		return false, nil, fmt.Errorf("create demo: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		stored, err := r.GetDemo(ctx, d.ID)
		if err != nil {
			return true, d, nil
		}
		return true, stored, nil
	}
	existing, err := r.GetDemoByWebsite(ctx, d.WebsiteURL)
	if err != nil {
		return false, nil, err
	}
	if existing != nil && existing.Status == model.StatusDeleted {
		const revive = `UPDATE demos SET status = $2 WHERE id = $1`
		if _, err := r.DB.ExecContext(ctx, revive, existing.ID, model.StatusActive); err != nil {
			return false, nil, fmt.Errorf("reactivate demo: %w", err)
		}
		existing.Status = model.StatusActive
		return true, existing, nil
	}
	return false, existing, nil
}

func (r *Repo) GetDemo(ctx context.Context, id string) (*model.Demo, error) {
	if r.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, website_url, business_name, industry, city, region, contact_email, contact_phone, status, created_at
	FROM demos WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, id))
}

func (r *Repo) GetDemoByWebsite(ctx context.Context, websiteURL string) (*model.Demo, error) {
	if r.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, website_url, business_name, industry, city, region, contact_email, contact_phone, status, created_at
	FROM demos WHERE website_url = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, websiteURL))
}

func (r *Repo) ListDemos(ctx context.Context, limit int) ([]model.Demo, error) {
	if r.DB == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	const q = `
	SELECT id, website_url, business_name, industry, city, region, contact_email, contact_phone, status, created_at
	FROM demos WHERE status <> 'deleted' ORDER BY created_at DESC LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list demos: %w", err)
	}
	defer rows.Close()
	var out []model.Demo
	for rows.Next() {
		var d model.Demo
		if err := rows.Scan(&d.ID, &d.WebsiteURL, &d.BusinessName, &d.Industry, &d.City, &d.Region,
			&d.ContactEmail, &d.ContactPhone, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan demo: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDemo soft-deletes; monitoring history stays queryable.
func (r *Repo) DeleteDemo(ctx context.Context, id string) error {
	if r.DB == nil {
		return ErrNotConfigured
	}
	const q = `UPDATE demos SET status = 'deleted' WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete demo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *Repo) scanOne(row *sql.Row) (*model.Demo, error) {
	var d model.Demo
	if err := row.Scan(&d.ID, &d.WebsiteURL, &d.BusinessName, &d.Industry, &d.City, &d.Region,
		&d.ContactEmail, &d.ContactPhone, &d.Status, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get demo: %w", err)
	}
	return &d, nil
}
