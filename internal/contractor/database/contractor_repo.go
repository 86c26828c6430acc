package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	db "github.com/demoforge/demoforge/internal/database"
	"github.com/demoforge/demoforge/internal/contractor/model"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("database not configured")

type Repo struct {
	DB *db.Database
}

func NewRepo(d *db.Database) *Repo { return &Repo{DB: d} }

func (r *Repo) UpsertProfile(ctx context.Context, p *model.ContractorProfile) error {
	if r.DB == nil {
		return ErrNotConfigured
	}
	const q = `
	INSERT INTO contractor_profiles (demo_id, company_name, trade, license_number, service_area, contact_email, contact_phone, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	ON CONFLICT (demo_id) DO UPDATE SET
		company_name = EXCLUDED.company_name,
		trade = EXCLUDED.trade,
		license_number = EXCLUDED.license_number,
		service_area = EXCLUDED.service_area,
		contact_email = EXCLUDED.contact_email,
		contact_phone = EXCLUDED.contact_phone,
		updated_at = NOW()`
	_, err := r.DB.ExecContext(ctx, q, p.DemoID, p.CompanyName, p.Trade, p.LicenseNumber,
		p.ServiceArea, p.ContactEmail, p.ContactPhone)
	if err != nil {
		return fmt.Errorf("upsert contractor profile: %w", err)
	}
	return nil
}

func (r *Repo) GetProfile(ctx context.Context, demoID string) (*model.ContractorProfile, error) {
	if r.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT demo_id, company_name, trade, license_number, service_area, contact_email, contact_phone, created_at, updated_at
	FROM contractor_profiles WHERE demo_id = $1`
	row := r.DB.QueryRowContext(ctx, q, demoID)
	var p model.ContractorProfile
	if err := row.Scan(&p.DemoID, &p.CompanyName, &p.Trade, &p.LicenseNumber, &p.ServiceArea,
		&p.ContactEmail, &p.ContactPhone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contractor profile: %w", err)
	}
	return &p, nil
}

// ListEnabledIntegrations returns every enabled integration across tenants
// for the sync scheduler.
func (r *Repo) ListEnabledIntegrations(ctx context.Context) ([]model.Integration, error) {
	if r.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, demo_id, kind, base_url, api_key, is_enabled, COALESCE(last_sync, 'epoch'::timestamptz)
	FROM contractor_integrations WHERE is_enabled = TRUE`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()
	var out []model.Integration
	for rows.Next() {
		var it model.Integration
		if err := rows.Scan(&it.ID, &it.DemoID, &it.Kind, &it.BaseURL, &it.APIKey, &it.IsEnabled, &it.LastSync); err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpsertIntegration connects or reconfigures one external system for a
// tenant; one row per (demo, kind).
func (r *Repo) UpsertIntegration(ctx context.Context, it *model.Integration) error {
	if r.DB == nil {
		return ErrNotConfigured
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	const q = `
	INSERT INTO contractor_integrations (id, demo_id, kind, base_url, api_key, is_enabled)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (demo_id, kind) DO UPDATE SET
		base_url = EXCLUDED.base_url,
		api_key = EXCLUDED.api_key,
		is_enabled = EXCLUDED.is_enabled`
	_, err := r.DB.ExecContext(ctx, q, it.ID, it.DemoID, it.Kind, it.BaseURL, it.APIKey, it.IsEnabled)
	if err != nil {
		return fmt.Errorf("upsert integration: %w", err)
	}
	return nil
}

// ListIntegrationsByDemo returns a tenant's integrations, enabled or not.
func (r *Repo) ListIntegrationsByDemo(ctx context.Context, demoID string) ([]model.Integration, error) {
	if r.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, demo_id, kind, base_url, api_key, is_enabled, COALESCE(last_sync, 'epoch'::timestamptz)
	FROM contractor_integrations WHERE demo_id = $1 ORDER BY kind ASC`
	rows, err := r.DB.QueryContext(ctx, q, demoID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	defer rows.Close()
	var out []model.Integration
	for rows.Next() {
		var it model.Integration
		if err := rows.Scan(&it.ID, &it.DemoID, &it.Kind, &it.BaseURL, &it.APIKey, &it.IsEnabled, &it.LastSync); err != nil {
			return nil, fmt.Errorf("scan integration: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteIntegration(ctx context.Context, demoID, kind string) error {
	if r.DB == nil {
		return ErrNotConfigured
	}
	const q = `DELETE FROM contractor_integrations WHERE demo_id = $1 AND kind = $2`
	_, err := r.DB.ExecContext(ctx, q, demoID, kind)
	if err != nil {
		return fmt.Errorf("delete integration: %w", err)
	}
	return nil
}

func (r *Repo) TouchIntegrationSync(ctx context.Context, id string) error {
	if r.DB == nil {
		return ErrNotConfigured
	}
	const q = `UPDATE contractor_integrations SET last_sync = NOW() WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, q, id)
	return err
}

// InsertStats appends one normalized integration pull.
func (r *Repo) InsertStats(ctx context.Context, s *model.IntegrationStats) error {
	if r.DB == nil {
		return ErrNotConfigured
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	const q = `
	INSERT INTO contractor_integration_stats (id, demo_id, kind, leads, jobs_analyzed, failed_jobs, synced_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, q, s.ID, s.DemoID, s.Kind, s.Leads, s.JobsAnalyzed, s.FailedJobs, s.SyncedAt)
	if err != nil {
		return fmt.Errorf("insert integration stats: %w", err)
	}
	return nil
}

// LatestStats returns the newest pull of one kind for a tenant, or nil.
func (r *Repo) LatestStats(ctx context.Context, demoID, kind string) (*model.IntegrationStats, error) {
	if r.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, demo_id, kind, leads, jobs_analyzed, failed_jobs, synced_at
	FROM contractor_integration_stats
	WHERE demo_id = $1 AND kind = $2
	ORDER BY synced_at DESC LIMIT 1`
	row := r.DB.QueryRowContext(ctx, q, demoID, kind)
	var s model.IntegrationStats
	if err := row.Scan(&s.ID, &s.DemoID, &s.Kind, &s.Leads, &s.JobsAnalyzed, &s.FailedJobs, &s.SyncedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest integration stats: %w", err)
	}
	return &s, nil
}
