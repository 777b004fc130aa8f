// pkg/datastore/embedded.go

package datastore

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Embedded provisions a local SQLite file. No external process is involved
// and provisioning completes in milliseconds.
type Embedded struct {
	Root string
}

var embeddedSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		display_name TEXT,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		expires_at TEXT NOT NULL
	)`,
}

func (e *Embedded) Provision(rc *forge_io.RuntimeContext) (*Config, error) {
	logger := otelzap.Ctx(rc.Ctx)

	dir := filepath.Join(e.Root, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("Could not create data directory, emitting placeholder config", zap.Error(err))
		return Placeholder(StrategyEmbedded, "data directory could not be created: "+err.Error()), nil
	}

	path := filepath.Join(dir, "app.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Placeholder(StrategyEmbedded, "sqlite open failed: "+err.Error()), nil
	}
	defer db.Close()

	for _, stmt := range embeddedSchema {
		if _, err := db.ExecContext(rc.Ctx, stmt); err != nil {
			logger.Warn("Schema statement failed, file store left partially initialized", zap.Error(err))
			return Placeholder(StrategyEmbedded, "schema apply failed: "+err.Error()), nil
		}
	}

	logger.Info("Embedded file store ready", zap.String("path", path))
	return &Config{
		Strategy:         StrategyEmbedded,
		ConnectionString: "file:" + path,
	}, nil
}
