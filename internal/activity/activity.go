// Package activity records tenant-scoped events to the activity log, with
// an optional Kafka mirror for downstream consumers. Recording is strictly
// best-effort: no caller ever fails because an event could not be written.
package activity

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	db "github.com/demoforge/demoforge/internal/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Event is one activity log entry.
type Event struct {
	ID        string          `json:"id"`
	DemoID    string          `json:"demo_id"`
	Action    string          `json:"action"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Logger struct {
	db     *db.Database
	writer *kafka.Writer
}

// New builds the logger. brokers is comma separated; empty disables the
// Kafka mirror and events only land in the database.
func New(d *db.Database, brokers, topic string) *Logger {
	l := &Logger{db: d}
	if brokers != "" {
		l.writer = &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(brokers, ",")...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 100 * time.Millisecond,
			Async:        true,
		}
	}
	return l
}

// Record persists one event and mirrors it to Kafka when configured.
// Failures are logged and swallowed.
func (l *Logger) Record(ctx context.Context, demoID, action string, detail any) {
	if l == nil {
		return
	}
	ev := Event{
		ID:        uuid.NewString(),
		DemoID:    demoID,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}
	if detail != nil {
		if data, err := json.Marshal(detail); err == nil {
			ev.Detail = data
		}
	}

	if l.db != nil {
		const q = `
		INSERT INTO activity_log (id, demo_id, action, detail, created_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)`
		detailArg := "null"
		if ev.Detail != nil {
			detailArg = string(ev.Detail)
		}
		if _, err := l.db.ExecContext(ctx, q, ev.ID, ev.DemoID, ev.Action, detailArg, ev.CreatedAt); err != nil {
			log.Warn().Err(err).Str("action", action).Msg("activity log insert failed")
		}
	}

	if l.writer != nil {
		payload, _ := json.Marshal(ev)
		if err := l.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(demoID),
			Value: payload,
		}); err != nil {
			log.Warn().Err(err).Str("action", action).Msg("activity event publish failed")
		}
	}
}

// List returns a tenant's recent events, newest first.
func (l *Logger) List(ctx context.Context, demoID string, limit int) ([]Event, error) {
	if l == nil || l.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const q = `
	SELECT id, demo_id, action, detail::text, created_at
	FROM activity_log WHERE demo_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := l.db.QueryContext(ctx, q, demoID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var (
			ev     Event
			detail string
		)
		if err := rows.Scan(&ev.ID, &ev.DemoID, &ev.Action, &detail, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if detail != "" && detail != "null" {
			ev.Detail = []byte(detail)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Close flushes the Kafka writer.
func (l *Logger) Close() error {
	if l != nil && l.writer != nil {
		return l.writer.Close()
	}
	return nil
}
