// migrate-history copies recorded generation runs from a SQLite history
// database into PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-history \
//	    -sqlite data/terraingen.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user terraingen \
//	    -pg-password terraingen \
//	    -pg-database terraingen
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lawnchairsociety/terraingen/internal/database"
	"github.com/lawnchairsociety/terraingen/internal/logger"
)

const batchSize = 500

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate-history: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("migrate-history", flag.ContinueOnError)
	fs.SetOutput(stdout)

	pg := database.DefaultPostgresConfig()
	sqlitePath := fs.String("sqlite", "data/terraingen.db", "Path to SQLite history database")
	fs.StringVar(&pg.Host, "pg-host", pg.Host, "PostgreSQL host")
	fs.IntVar(&pg.Port, "pg-port", pg.Port, "PostgreSQL port")
	fs.StringVar(&pg.User, "pg-user", pg.User, "PostgreSQL user")
	fs.StringVar(&pg.Password, "pg-password", pg.Password, "PostgreSQL password")
	fs.StringVar(&pg.Database, "pg-database", pg.Database, "PostgreSQL database name")
	fs.StringVar(&pg.SSLMode, "pg-sslmode", pg.SSLMode, "PostgreSQL SSL mode")
	dryRun := fs.Bool("dry-run", false, "Count runs without writing them")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger.SetOutput(stdout, "INFO")

	if _, err := os.Stat(*sqlitePath); err != nil {
		return fmt.Errorf("sqlite database: %w", err)
	}
	src, err := database.Open(database.DefaultConfig(*sqlitePath))
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer src.Close()

	var dst *database.Database
	if !*dryRun {
		logger.Info("Opening PostgreSQL database", "user", pg.User, "host", pg.Host, "port", pg.Port, "database", pg.Database)
		dst, err = database.Open(database.Config{Driver: "postgres", Postgres: pg})
		if err != nil {
			return fmt.Errorf("failed to open postgres database: %w", err)
		}
		defer dst.Close()
	}

	copied, skipped, err := copyRuns(src, dst)
	if err != nil {
		return err
	}
	logger.Info("Migration complete", "copied", copied, "skipped", skipped, "dry_run", *dryRun)
	return nil
}

// copyRuns pages through src in id order. With a nil dst it only counts.
func copyRuns(src, dst *database.Database) (copied, skipped int, err error) {
	var lastID int64
	for {
		runs, err := src.RunsAfter(lastID, batchSize)
		if err != nil {
			return copied, skipped, err
		}
		if len(runs) == 0 {
			break
		}
		for i := range runs {
			lastID = runs[i].ID
			if dst == nil {
				copied++
				continue
			}
			inserted, err := dst.ImportRun(&runs[i])
			if err != nil {
				return copied, skipped, err
			}
			if inserted {
				copied++
			} else {
				skipped++
			}
		}
		logger.Debug("Copied batch", "last_id", lastID, "copied", copied)
	}

	if dst != nil {
		if err := dst.SyncRunSequence(); err != nil {
			return copied, skipped, err
		}
	}
	return copied, skipped, nil
}
