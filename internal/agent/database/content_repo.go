package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/demoforge/demoforge/internal/agent/model"
	db "github.com/demoforge/demoforge/internal/database"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("database not configured")

type Repo struct {
	DB *db.Database
}

func NewRepo(d *db.Database) *Repo { return &Repo{DB: d} }

// InsertContent persists one tool output. Append-only; regeneration adds a
// new row rather than replacing the old one.
func (r *Repo) InsertContent(ctx context.Context, gc *model.GeneratedContent) error {
	if r.DB == nil {
		return ErrNotConfigured
	}
	if gc.ID == "" {
		gc.ID = uuid.NewString()
	}
	const q = `
	INSERT INTO generated_content (id, demo_id, tool, content, model, created_at)
	VALUES ($1, $2, $3, $4::jsonb, $5, NOW())`
	_, err := r.DB.ExecContext(ctx, q, gc.ID, gc.DemoID, gc.Tool, string(gc.Content), gc.Model)
	if err != nil {
		return fmt.Errorf("insert generated content: %w", err)
	}
	return nil
}

// ListContent returns a tenant's generated content, newest first,
// optionally filtered by tool.
func (r *Repo) ListContent(ctx context.Context, demoID string, tool model.ToolKind, limit int) ([]model.GeneratedContent, error) {
	if r.DB == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := `
	SELECT id, demo_id, tool, content::text, model, created_at
	FROM generated_content WHERE demo_id = $1`
	args := []any{demoID}
	if tool != "" {
		q += " AND tool = $2"
		args = append(args, tool)
	}
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list generated content: %w", err)
	}
	defer rows.Close()
	var out []model.GeneratedContent
	for rows.Next() {
		var (
			gc      model.GeneratedContent
			content string
		)
		if err := rows.Scan(&gc.ID, &gc.DemoID, &gc.Tool, &content, &gc.Model, &gc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generated content: %w", err)
		}
		gc.Content = []byte(content)
		out = append(out, gc)
	}
	return out, rows.Err()
}
