// Package main provides the snapshot generation entry point.
// Generates a synthetic voyage batch, derives cost metrics, and replaces
// the stored snapshot in every configured backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"portsync/internal/costmodel"
	"portsync/internal/domain"
	"portsync/internal/generator"
	"portsync/internal/idhash"
	"portsync/internal/storage"
	chstore "portsync/internal/storage/clickhouse"
	"portsync/internal/storage/csvfile"
	"portsync/internal/storage/migrations"
	pgstore "portsync/internal/storage/postgres"
)

func main() {
	// Missing .env file is fine; system env vars take precedence
	_ = godotenv.Load()

	defaults := domain.DefaultTariff()

	count := flag.Int("count", envOrInt("PORTSYNC_COUNT", 100), "Number of voyages to generate")
	seed := flag.Int64("seed", envOrInt64("PORTSYNC_SEED", 42), "Random seed")
	out := flag.String("out", envOr("PORTSYNC_SNAPSHOT", "port_traffic.csv"), "Snapshot CSV path")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (optional extra backend)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional extra backend)")
	demurrageRate := flag.Float64("demurrage-rate", defaults.DemurrageRatePerDay, "Demurrage rate per waiting day (USD)")
	fuelPrice := flag.Float64("fuel-price", defaults.FuelPricePerTon, "Fuel price per ton (USD)")
	flag.Parse()

	ctx := context.Background()

	tariff := defaults
	tariff.DemurrageRatePerDay = *demurrageRate
	tariff.FuelPricePerTon = *fuelPrice
	if err := tariff.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// One reference time for generation and the batch ID
	generatedAt := time.Now().UTC()
	gen := generator.New().WithClock(func() time.Time { return generatedAt })

	raw, err := gen.Generate(*count, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	enriched := costmodel.New(tariff).DeriveBatch(raw)

	// The CSV snapshot is always written; database backends are opt-in
	type target struct {
		name  string
		store storage.VoyageSnapshotStore
	}
	targets := []target{{name: *out, store: csvfile.NewVoyageSnapshotStore(*out)}}

	if *postgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to postgres: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Error running postgres migrations: %v\n", err)
			os.Exit(1)
		}
		targets = append(targets, target{name: "postgres", store: pgstore.NewVoyageSnapshotStore(pool)})
	}

	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running clickhouse migrations: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		targets = append(targets, target{name: "clickhouse", store: chstore.NewVoyageSnapshotStore(conn)})
	}

	for _, t := range targets {
		if err := t.store.Replace(ctx, enriched); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot to %s: %v\n", t.name, err)
			os.Exit(1)
		}
	}

	batchID := idhash.ComputeBatchID(*seed, *count, generatedAt)
	version := idhash.ComputeSnapshotVersion(csvfile.Encode(enriched))

	fmt.Printf("Generated %d voyages (seed %d, batch %s)\n", len(enriched), *seed, batchID[:12])
	fmt.Printf("Snapshot version: %s\n", version)
	for _, t := range targets {
		fmt.Printf("  - %s\n", t.name)
	}
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
