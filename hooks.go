package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// HooksConfig lists SQL files executed against a PostgreSQL target around a
// migration run. Typical use: disabling triggers before the run and cleaning
// up orphans after it.
type HooksConfig struct {
	BeforeMigration []string `toml:"before_migration"`
	AfterMigration  []string `toml:"after_migration"`
}

// runSQLHooks reads each SQL file and executes every statement in order.
// Paths are resolved relative to the config file.
func runSQLHooks(ctx context.Context, pool *pgxpool.Pool, cfg *HubConfig, files []string, phase string, log *zap.Logger) error {
	if len(files) == 0 {
		return nil
	}
	log.Info("running hooks", zap.String("phase", phase), zap.Int("files", len(files)))

	for _, f := range files {
		data, err := os.ReadFile(cfg.resolvePath(f))
		if err != nil {
			return fmt.Errorf("hook %s: read %s: %w", phase, f, err)
		}

		stmts := splitStatements(string(data))
		log.Debug("executing hook file", zap.String("file", f), zap.Int("statements", len(stmts)))
		for i, stmt := range stmts {
			if _, err := pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("hook %s: %s: statement %d: %w", phase, f, i+1, err)
			}
		}
	}
	return nil
}

// splitStatements splits SQL text on semicolons, ignoring empty entries
// and content inside single-quoted strings.
func splitStatements(sql string) []string {
	var stmts []string
	var current strings.Builder
	inQuote := false

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' && !inQuote:
			inQuote = true
			current.WriteByte(c)
		case c == '\'' && inQuote:
			// Handle escaped quotes ('')
			if i+1 < len(sql) && sql[i+1] == '\'' {
				current.WriteByte(c)
				current.WriteByte(c)
				i++
			} else {
				inQuote = false
				current.WriteByte(c)
			}
		case c == ';' && !inQuote:
			s := strings.TrimSpace(current.String())
			if s != "" {
				stmts = append(stmts, s)
			}
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	// Trailing statement without semicolon
	if s := strings.TrimSpace(current.String()); s != "" {
		stmts = append(stmts, s)
	}

	return stmts
}
