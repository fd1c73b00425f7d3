package database

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"
)

// getPostgresTestConfig returns PostgreSQL config if available, nil otherwise.
// Set these environment variables to run PostgreSQL tests:
//
//	TERRAINGEN_TEST_POSTGRES=1
//	TERRAINGEN_TEST_POSTGRES_HOST (default: localhost)
//	TERRAINGEN_TEST_POSTGRES_PORT (default: 5432)
//	TERRAINGEN_TEST_POSTGRES_USER (default: terraingen)
//	TERRAINGEN_TEST_POSTGRES_PASSWORD (default: terraingen)
//	TERRAINGEN_TEST_POSTGRES_DATABASE (default: terraingen_test)
func getPostgresTestConfig() *Config {
	if os.Getenv("TERRAINGEN_TEST_POSTGRES") == "" {
		return nil
	}

	envOr := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	port := 5432
	if portStr := os.Getenv("TERRAINGEN_TEST_POSTGRES_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &port)
	}

	return &Config{
		Driver: "postgres",
		Postgres: PostgresConfig{
			Host:            envOr("TERRAINGEN_TEST_POSTGRES_HOST", "localhost"),
			Port:            port,
			User:            envOr("TERRAINGEN_TEST_POSTGRES_USER", "terraingen"),
			Password:        envOr("TERRAINGEN_TEST_POSTGRES_PASSWORD", "terraingen"),
			Database:        envOr("TERRAINGEN_TEST_POSTGRES_DATABASE", "terraingen_test"),
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 1 * time.Minute,
		},
	}
}

// setupPostgresTestDB skips unless PostgreSQL is configured, then opens it
// with an empty runs table.
func setupPostgresTestDB(t *testing.T) (*Database, *Config) {
	cfg := getPostgresTestConfig()
	if cfg == nil {
		t.Skip("Skipping PostgreSQL test: TERRAINGEN_TEST_POSTGRES not set")
	}

	db, err := Open(*cfg)
	if err != nil {
		t.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	if _, err := db.db.Exec("DELETE FROM runs"); err != nil {
		t.Fatalf("Failed to clear runs: %v", err)
	}

	t.Cleanup(func() {
		db.db.Exec("DELETE FROM runs")
		db.Close()
	})
	return db, cfg
}

func TestPostgres_ConnectionPoolSettings(t *testing.T) {
	db, cfg := setupPostgresTestDB(t)

	stats := db.db.Stats()
	if stats.MaxOpenConnections != cfg.Postgres.MaxOpenConns {
		t.Errorf("MaxOpenConnections = %d, want %d", stats.MaxOpenConnections, cfg.Postgres.MaxOpenConns)
	}
}

func TestPostgres_RecordAndQuery(t *testing.T) {
	db, _ := setupPostgresTestDB(t)

	id, err := db.RecordRun(&Run{Strategy: "wfc", Width: 8, Height: 8, Seed: 12345, Success: true, Attempts: 1})
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("RecordRun id = %d, want > 0", id)
	}

	runs, err := db.RunsBySeed(12345)
	if err != nil {
		t.Fatalf("RunsBySeed failed: %v", err)
	}
	if len(runs) != 1 || !runs[0].Success {
		t.Errorf("RunsBySeed = %+v, want one successful run", runs)
	}
}

func TestPostgres_ConcurrentWrites(t *testing.T) {
	db, _ := setupPostgresTestDB(t)

	const workers = 8
	const writesPerWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*writesPerWorker)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < writesPerWorker; j++ {
				seed := int64(workerID*100 + j)
				if _, err := db.RecordRun(&Run{Strategy: "simplex", Width: 4, Height: 4, Seed: seed}); err != nil {
					errs <- fmt.Errorf("worker %d: %v", workerID, err)
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	count, err := db.CountRuns()
	if err != nil {
		t.Fatalf("CountRuns failed: %v", err)
	}
	if count != workers*writesPerWorker {
		t.Errorf("CountRuns() = %d, want %d", count, workers*writesPerWorker)
	}
}
