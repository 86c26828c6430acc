package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/google/uuid"
)

// InsertAlert persists a new alert. The dedup_key unique index makes the
// insert idempotent per (demo, alert type, period); a replayed run reports
// created=false instead of double-firing.
func (s *Store) InsertAlert(ctx context.Context, a *model.ContractorAlert) (created bool, err error) {
	if s.DB == nil {
		return false, ErrNotConfigured
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	actionsJSON, _ := json.Marshal(a.RecommendedActions)
	const q = `
	INSERT INTO contractor_alerts (id, demo_id, config_id, alert_type, severity, title, message, detected_data, recommended_actions, status, dedup_key, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10, $11, NOW())
	ON CONFLICT (dedup_key) DO NOTHING`
	res, err := s.DB.ExecContext(ctx, q, a.ID, a.DemoID, a.ConfigID, a.AlertType, a.Severity,
		a.Title, a.Message, string(a.DetectedData), string(actionsJSON), a.Status, a.DedupKey)
	if err != nil {
		return false, fmt.Errorf("insert alert: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) GetAlert(ctx context.Context, id string) (*model.ContractorAlert, error) {
	if s.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, demo_id, config_id, alert_type, severity, title, message, detected_data::text, recommended_actions::text, status, dedup_key, created_at, acknowledged_at, resolved_at, dismissed_at
	FROM contractor_alerts WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, q, id)
	a, err := scanAlertRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

// ListAlerts returns a tenant's alerts, newest first, optionally filtered by
// status.
func (s *Store) ListAlerts(ctx context.Context, demoID string, status model.AlertStatus, limit int) ([]model.ContractorAlert, error) {
	if s.DB == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := `
	SELECT id, demo_id, config_id, alert_type, severity, title, message, detected_data::text, recommended_actions::text, status, dedup_key, created_at, acknowledged_at, resolved_at, dismissed_at
	FROM contractor_alerts WHERE demo_id = $1`
	args := []any{demoID}
	if status != "" {
		q += " AND status = $" + strconv.Itoa(len(args)+1)
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	var out []model.ContractorAlert
	for rows.Next() {
		a, err := scanAlertRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateAlertStatus transitions the alert lifecycle and stamps the matching
// timestamp column. detected_data is never touched.
func (s *Store) UpdateAlertStatus(ctx context.Context, id string, status model.AlertStatus, at time.Time) error {
	if s.DB == nil {
		return ErrNotConfigured
	}
	var col string
	switch status {
	case model.StatusAcknowledged:
		col = "acknowledged_at"
	case model.StatusResolved:
		col = "resolved_at"
	case model.StatusDismissed:
		col = "dismissed_at"
	default:
		return fmt.Errorf("invalid target status: %s", status)
	}
	q := fmt.Sprintf(`UPDATE contractor_alerts SET status = $1, %s = $2 WHERE id = $3`, col)
	res, err := s.DB.ExecContext(ctx, q, status, at, id)
	if err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// InsertNotification appends one delivery receipt.
func (s *Store) InsertNotification(ctx context.Context, n *model.NotificationSent) error {
	if s.DB == nil {
		return ErrNotConfigured
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	const q = `
	INSERT INTO contractor_alert_notifications (id, alert_id, channel, success, error, sent_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, q, n.ID, n.AlertID, n.Channel, n.Success, n.Error, n.SentAt)
	if err != nil {
		return fmt.Errorf("insert notification receipt: %w", err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, alertID string) ([]model.NotificationSent, error) {
	if s.DB == nil {
		return nil, ErrNotConfigured
	}
	const q = `
	SELECT id, alert_id, channel, success, error, sent_at
	FROM contractor_alert_notifications WHERE alert_id = $1 ORDER BY sent_at ASC`
	rows, err := s.DB.QueryContext(ctx, q, alertID)
	if err != nil {
		return nil, fmt.Errorf("list notification receipts: %w", err)
	}
	defer rows.Close()
	var out []model.NotificationSent
	for rows.Next() {
		var n model.NotificationSent
		var errMsg sql.NullString
		if err := rows.Scan(&n.ID, &n.AlertID, &n.Channel, &n.Success, &errMsg, &n.SentAt); err != nil {
			return nil, fmt.Errorf("scan notification receipt: %w", err)
		}
		n.Error = errMsg.String
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanAlertRow(scan func(dest ...any) error) (*model.ContractorAlert, error) {
	var (
		a           model.ContractorAlert
		configID    sql.NullString
		detected    string
		actionsJSON string
	)
	if err := scan(&a.ID, &a.DemoID, &configID, &a.AlertType, &a.Severity, &a.Title, &a.Message,
		&detected, &actionsJSON, &a.Status, &a.DedupKey, &a.CreatedAt,
		&a.AcknowledgedAt, &a.ResolvedAt, &a.DismissedAt); err != nil {
		return nil, err
	}
	if configID.Valid {
		a.ConfigID = &configID.String
	}
	a.DetectedData = []byte(detected)
	_ = json.Unmarshal([]byte(actionsJSON), &a.RecommendedActions)
	return &a, nil
}
