// Package database holds the monitoring stores. All stores share the thin
// sql wrapper and tolerate a nil database by returning ErrNotConfigured,
// which the API layer surfaces as SERVICE_UNAVAILABLE.
package database

import (
	"errors"

	db "github.com/demoforge/demoforge/internal/database"
)

var ErrNotConfigured = errors.New("database not configured")

type Store struct {
	DB *db.Database
}

func NewStore(d *db.Database) *Store { return &Store{DB: d} }
