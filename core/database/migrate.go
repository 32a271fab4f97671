package database

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"venue-booking/core/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies embedded migrations in file-name order, each at most once.
func Migrate(ctx context.Context, db IDatabase) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`); err != nil {
		return err
	}

	for _, f := range files {
		var applied bool
		if err := db.GetContext(ctx, &applied, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, f); err != nil {
			return err
		}
		if applied {
			continue
		}

		body, err := migrations.ReadFile("migrations/" + f)
		if err != nil {
			return err
		}
		if err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, f); err != nil {
			return err
		}
		logger.Info("Migration applied", "version", f)
	}

	return nil
}
