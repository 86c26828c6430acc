package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/google/uuid"
)

// UpsertAlertConfig creates or replaces the tenant's config for one alert
// type. The (demo_id, alert_type) unique index enforces at most one config
// per type per tenant.
func (s *Store) UpsertAlertConfig(ctx context.Context, cfg *model.AlertConfig) error {
	if s.DB == nil {
		return ErrNotConfigured
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	thresholdJSON, _ := json.Marshal(cfg.Threshold)
	channelsJSON, _ := json.Marshal(cfg.Channels)
	const q = `
	INSERT INTO contractor_alert_configs (id, demo_id, alert_type, is_enabled, check_frequency, threshold_config, notification_channels, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, NOW(), NOW())
	ON CONFLICT (demo_id, alert_type) DO UPDATE SET
		is_enabled = EXCLUDED.is_enabled,
		check_frequency = EXCLUDED.check_frequency,
		threshold_config = EXCLUDED.threshold_config,
		notification_channels = EXCLUDED.notification_channels,
		updated_at = NOW()
	`
	_, err := s.DB.ExecContext(ctx, q, cfg.ID, cfg.DemoID, cfg.AlertType, cfg.IsEnabled,
		cfg.CheckFrequency, string(thresholdJSON), string(channelsJSON))
	if err != nil {
		return fmt.Errorf("upsert alert config: %w", err)
	}
	return nil
}

// SeedAlertConfig inserts a config only when the tenant has none for the
// type yet; used by the bootstrap path.
func (s *Store) SeedAlertConfig(ctx context.Context, cfg *model.AlertConfig) error {
	if s.DB == nil {
		return ErrNotConfigured
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	thresholdJSON, _ := json.Marshal(cfg.Threshold)
	channelsJSON, _ := json.Marshal(cfg.Channels)
	const q = `
	INSERT INTO contractor_alert_configs (id, demo_id, alert_type, is_enabled, check_frequency, threshold_config, notification_channels, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, NOW(), NOW())
	ON CONFLICT (demo_id, alert_type) DO NOTHING
	`
	_, err := s.DB.ExecContext(ctx, q, cfg.ID, cfg.DemoID, cfg.AlertType, cfg.IsEnabled,
		cfg.CheckFrequency, string(thresholdJSON), string(channelsJSON))
	if err != nil {
		return fmt.Errorf("seed alert config: %w", err)
	}
	return nil
}

func (s *Store) ListAlertConfigs(ctx context.Context, demoID string) ([]model.AlertConfig, error) {
	if s.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, demo_id, alert_type, is_enabled, check_frequency, threshold_config, notification_channels, created_at, updated_at
	FROM contractor_alert_configs
	WHERE demo_id = $1
	ORDER BY alert_type ASC`
	rows, err := s.DB.QueryContext(ctx, q, demoID)
	if err != nil {
		return nil, fmt.Errorf("list alert configs: %w", err)
	}
	defer rows.Close()
	return scanConfigs(rows)
}

// ListEnabledConfigsByFrequency returns every enabled config matching the
// current run frequency for one tenant.
func (s *Store) ListEnabledConfigsByFrequency(ctx context.Context, demoID string, freq model.CheckFrequency) ([]model.AlertConfig, error) {
	if s.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, demo_id, alert_type, is_enabled, check_frequency, threshold_config, notification_channels, created_at, updated_at
	FROM contractor_alert_configs
	WHERE demo_id = $1 AND is_enabled = TRUE AND check_frequency = $2`
	rows, err := s.DB.QueryContext(ctx, q, demoID, freq)
	if err != nil {
		return nil, fmt.Errorf("list enabled configs: %w", err)
	}
	defer rows.Close()
	return scanConfigs(rows)
}

// ListDemoIDsWithEnabledConfigs returns the tenant ids eligible for a run at
// the given frequency.
func (s *Store) ListDemoIDsWithEnabledConfigs(ctx context.Context, freq model.CheckFrequency) ([]string, error) {
	if s.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT DISTINCT demo_id FROM contractor_alert_configs
	WHERE is_enabled = TRUE AND check_frequency = $1`
	rows, err := s.DB.QueryContext(ctx, q, freq)
	if err != nil {
		return nil, fmt.Errorf("list eligible demos: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) DeleteAlertConfig(ctx context.Context, demoID string, t model.AlertType) error {
	if s.DB == nil {
		return ErrNotConfigured
	}
	const q = `DELETE FROM contractor_alert_configs WHERE demo_id = $1 AND alert_type = $2`
	_, err := s.DB.ExecContext(ctx, q, demoID, t)
	if err != nil {
		return fmt.Errorf("delete alert config: %w", err)
	}
	return nil
}

func scanConfigs(rows *sql.Rows) ([]model.AlertConfig, error) {
	var out []model.AlertConfig
	for rows.Next() {
		var (
			cfg           model.AlertConfig
			thresholdJSON string
			channelsJSON  string
			createdAt     time.Time
			updatedAt     time.Time
		)
		if err := rows.Scan(&cfg.ID, &cfg.DemoID, &cfg.AlertType, &cfg.IsEnabled, &cfg.CheckFrequency,
			&thresholdJSON, &channelsJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan alert config: %w", err)
		}
		_ = json.Unmarshal([]byte(thresholdJSON), &cfg.Threshold)
		_ = json.Unmarshal([]byte(channelsJSON), &cfg.Channels)
		cfg.CreatedAt = createdAt
		cfg.UpdatedAt = updatedAt
		out = append(out, cfg)
	}
	return out, rows.Err()
}
