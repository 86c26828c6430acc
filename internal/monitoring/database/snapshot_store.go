package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/google/uuid"
)

// InsertSnapshot appends one immutable observation. Snapshots are never
// updated or deleted.
func (s *Store) InsertSnapshot(ctx context.Context, snap *model.MonitoringSnapshot) error {
	if s.DB == nil {
		return ErrNotConfigured
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	const q = `
	INSERT INTO contractor_monitoring_snapshots (id, demo_id, category, data, captured_at)
	VALUES ($1, $2, $3, $4::jsonb, $5)`
	_, err := s.DB.ExecContext(ctx, q, snap.ID, snap.DemoID, snap.Category, string(snap.Data), snap.CapturedAt)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for one tenant+category,
// or nil when none exists yet.
func (s *Store) LatestSnapshot(ctx context.Context, demoID string, cat model.Category) (*model.MonitoringSnapshot, error) {
	if s.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, demo_id, category, data::text, captured_at
	FROM contractor_monitoring_snapshots
	WHERE demo_id = $1 AND category = $2
	ORDER BY captured_at DESC
	LIMIT 1`
	row := s.DB.QueryRowContext(ctx, q, demoID, cat)
	var snap model.MonitoringSnapshot
	var data string
	if err := row.Scan(&snap.ID, &snap.DemoID, &snap.Category, &data, &snap.CapturedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	snap.Data = []byte(data)
	return &snap, nil
}

// RecentSnapshots returns up to limit snapshots for one tenant+category,
// newest first.
func (s *Store) RecentSnapshots(ctx context.Context, demoID string, cat model.Category, limit int) ([]model.MonitoringSnapshot, error) {
	if s.DB == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = 10
	}
	const q = `
	SELECT id, demo_id, category, data::text, captured_at
	FROM contractor_monitoring_snapshots
	WHERE demo_id = $1 AND category = $2
	ORDER BY captured_at DESC
	LIMIT $3`
	rows, err := s.DB.QueryContext(ctx, q, demoID, cat, limit)
	if err != nil {
		return nil, fmt.Errorf("recent snapshots: %w", err)
	}
	defer rows.Close()
	var out []model.MonitoringSnapshot
	for rows.Next() {
		var snap model.MonitoringSnapshot
		var data string
		if err := rows.Scan(&snap.ID, &snap.DemoID, &snap.Category, &data, &snap.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Data = []byte(data)
		out = append(out, snap)
	}
	return out, rows.Err()
}
