// Package main provides the fleet report entry point.
// Reads the stored voyage snapshot and renders the markdown and CSV
// reports. A missing snapshot is not an error: the command prints a
// warning and exits cleanly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"portsync/internal/reporting"
	"portsync/internal/storage"
	chstore "portsync/internal/storage/clickhouse"
	"portsync/internal/storage/csvfile"
	"portsync/internal/storage/migrations"
	pgstore "portsync/internal/storage/postgres"
)

func main() {
	// Missing .env file is fine; system env vars take precedence
	_ = godotenv.Load()

	csvPath := flag.String("csv", envOr("PORTSYNC_SNAPSHOT", "port_traffic.csv"), "Snapshot CSV path")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (overrides --csv)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (overrides --csv)")
	outputDir := flag.String("output-dir", envOr("PORTSYNC_OUTPUT_DIR", "output"), "Output directory for generated files")
	flag.Parse()

	ctx := context.Background()

	store, cleanup, err := selectStore(ctx, *csvPath, *postgresDSN, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	report, err := reporting.NewGenerator(store).Generate(ctx)
	if err != nil {
		// An absent or empty snapshot degrades to the empty state
		if errors.Is(err, storage.ErrNoSnapshot) {
			fmt.Println("Warning: no snapshot available; nothing to report.")
			fmt.Println("Run the generate command first to produce one.")
			return
		}
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	mdPath := filepath.Join(*outputDir, fmt.Sprintf("fleet_report_%s.md", report.SnapshotVersion))
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}

	csvOutPath := filepath.Join(*outputDir, fmt.Sprintf("fleet_report_%s.csv", report.SnapshotVersion))
	if err := os.WriteFile(csvOutPath, []byte(reporting.RenderCSV(report)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report CSV: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Fleet report generated (%d voyages, snapshot %s):\n", report.TotalVoyages, report.SnapshotVersion)
	fmt.Printf("  - %s\n", mdPath)
	fmt.Printf("  - %s\n", csvOutPath)
}

// selectStore picks the snapshot backend: postgres when its DSN is set,
// then clickhouse, then the CSV file.
func selectStore(ctx context.Context, csvPath, postgresDSN, clickhouseDSN string) (storage.VoyageSnapshotStore, func(), error) {
	if postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
		return pgstore.NewVoyageSnapshotStore(pool), pool.Close, nil
	}

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		return chstore.NewVoyageSnapshotStore(conn), func() { conn.Close() }, nil
	}

	return csvfile.NewVoyageSnapshotStore(csvPath), func() {}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
