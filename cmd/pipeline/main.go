// Package main provides the end-to-end pipeline entry point.
// Executes: generate -> derive -> store -> verify -> report, and exits
// non-zero when post-write verification fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"portsync/internal/domain"
	"portsync/internal/pipeline"
	"portsync/internal/storage"
	chstore "portsync/internal/storage/clickhouse"
	"portsync/internal/storage/csvfile"
	"portsync/internal/storage/memory"
	"portsync/internal/storage/migrations"
	pgstore "portsync/internal/storage/postgres"
	"portsync/internal/verification"
)

func main() {
	// Missing .env file is fine; system env vars take precedence
	_ = godotenv.Load()

	defaults := domain.DefaultTariff()

	count := flag.Int("count", envOrInt("PORTSYNC_COUNT", 100), "Number of voyages to generate")
	seed := flag.Int64("seed", envOrInt64("PORTSYNC_SEED", 42), "Random seed")
	outputDir := flag.String("output-dir", envOr("PORTSYNC_OUTPUT_DIR", "output"), "Output directory for generated files")
	snapshot := flag.String("snapshot", envOr("PORTSYNC_SNAPSHOT", "port_traffic.csv"), "Snapshot CSV path")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (overrides --snapshot)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (overrides --snapshot)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (no snapshot artifact)")
	demurrageRate := flag.Float64("demurrage-rate", defaults.DemurrageRatePerDay, "Demurrage rate per waiting day (USD)")
	fuelPrice := flag.Float64("fuel-price", defaults.FuelPricePerTon, "Fuel price per ton (USD)")
	verbose := flag.Bool("verbose", false, "Print per-vessel verification divergences")
	flag.Parse()

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	store, cleanup, err := selectStore(ctx, *snapshot, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	tariff := defaults
	tariff.DemurrageRatePerDay = *demurrageRate
	tariff.FuelPricePerTon = *fuelPrice

	p := pipeline.New(store, *count, *seed, *outputDir).WithTariff(tariff)

	result, err := p.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running pipeline: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Pipeline Run ===")
	fmt.Printf("Voyages:          %d\n", result.VoyageCount)
	fmt.Printf("Batch:            %s\n", result.BatchID[:12])
	fmt.Printf("Snapshot version: %s\n", result.SnapshotVersion)
	fmt.Printf("Output files:\n")
	fmt.Printf("  - %s\n", result.ReportPath)
	fmt.Printf("  - %s\n", result.SnapshotCSVPath)

	printCheck("Stored snapshot", result.StoredCheck, *verbose)
	printCheck("Determinism", result.DeterminismCheck, *verbose)

	if !result.Verified() {
		fmt.Fprintln(os.Stderr, "Verification FAILED")
		os.Exit(1)
	}
	fmt.Println("Verification passed")
}

// printCheck summarizes one verification report.
func printCheck(name string, report *verification.VerificationReport, verbose bool) {
	status := "OK"
	if !report.Passed() {
		status = "FAILED"
	}
	fmt.Printf("%s check: %s (%d/%d matched)\n", name, status, report.MatchedVoyages, report.TotalVoyages)
	if report.CountMismatch {
		fmt.Println("  count mismatch between expected and stored voyages")
	}
	if !verbose {
		return
	}
	for _, r := range report.Results {
		if r.Match {
			continue
		}
		for _, d := range r.Divergences {
			fmt.Printf("  %s %s: expected %v, got %v\n", r.VesselID, d.Field, d.Expected, d.Actual)
		}
	}
}

// selectStore picks the snapshot backend: memory when requested, postgres
// when its DSN is set, then clickhouse, then the CSV file.
func selectStore(ctx context.Context, snapshot, postgresDSN, clickhouseDSN string, useMemory bool) (storage.VoyageSnapshotStore, func(), error) {
	if useMemory {
		return memory.NewVoyageSnapshotStore(), func() {}, nil
	}

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

	return csvfile.NewVoyageSnapshotStore(snapshot), func() {}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
