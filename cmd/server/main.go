// Package main provides the PortSync API server:
// - Snapshot refresh (scheduled): regenerates the voyage snapshot on a ticker
// - HTTP API: snapshot, fleet summary, top voyages, speed recommendations
// - Push: WebSocket broadcast of snapshot-updated events
// - Observability: health, status, Prometheus metrics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"portsync/internal/costmodel"
	"portsync/internal/domain"
	"portsync/internal/fleet"
	"portsync/internal/generator"
	"portsync/internal/idhash"
	"portsync/internal/observability"
	"portsync/internal/push"
	"portsync/internal/recommendation"
	"portsync/internal/storage"
	chstore "portsync/internal/storage/clickhouse"
	"portsync/internal/storage/csvfile"
	"portsync/internal/storage/memory"
	"portsync/internal/storage/migrations"
	pgstore "portsync/internal/storage/postgres"
)

// Server holds all components of the API service.
type Server struct {
	// Configuration
	count           int
	seed            int64
	refreshInterval time.Duration
	tariff          domain.Tariff
	verbose         bool

	// Components
	store  storage.VoyageSnapshotStore
	engine *recommendation.Engine
	hub    *push.Hub
	logger *log.Logger

	// State
	mu                  sync.Mutex
	started             time.Time
	snapshotVersion     string
	snapshotGeneratedAt time.Time
	voyageCount         int
	refreshes           int
	refreshRunning      bool
}

func main() {
	// Missing .env file is fine; system env vars take precedence
	_ = godotenv.Load()

	defaults := domain.DefaultTariff()

	addr := flag.String("addr", envOr("PORTSYNC_ADDR", ":8080"), "HTTP listen address")
	count := flag.Int("count", envOrInt("PORTSYNC_COUNT", 100), "Number of voyages per snapshot")
	seed := flag.Int64("seed", envOrInt64("PORTSYNC_SEED", 42), "Random seed")
	refreshInterval := flag.Duration("refresh-interval", 15*time.Minute, "Snapshot refresh interval (0 disables)")
	snapshot := flag.String("snapshot", "", "Snapshot CSV path (defaults to in-memory storage)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string (overrides --snapshot)")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (overrides --snapshot)")
	demurrageRate := flag.Float64("demurrage-rate", defaults.DemurrageRatePerDay, "Demurrage rate per waiting day (USD)")
	fuelPrice := flag.Float64("fuel-price", defaults.FuelPricePerTon, "Fuel price per ton (USD)")
	verbose := flag.Bool("verbose", false, "Verbose logging")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	tariff := defaults
	tariff.DemurrageRatePerDay = *demurrageRate
	tariff.FuelPricePerTon = *fuelPrice
	if err := tariff.Validate(); err != nil {
		logger.Fatalf("Invalid tariff: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	store, cleanup, err := selectStore(ctx, *snapshot, *postgresDSN, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Failed to create store: %v", err)
	}
	defer cleanup()

	server := &Server{
		count:           *count,
		seed:            *seed,
		refreshInterval: *refreshInterval,
		tariff:          tariff,
		verbose:         *verbose,
		store:           store,
		engine:          recommendation.NewEngine(tariff),
		hub:             push.NewHub(logger),
		logger:          logger,
		started:         time.Now().UTC(),
	}

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	if err := server.Run(ctx, *addr); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}
	close(done)

	logger.Println("Shutdown complete")
}

// selectStore picks the snapshot backend: postgres when its DSN is set,
// then clickhouse, then the CSV file when a path is given, else memory.
func selectStore(ctx context.Context, snapshot, postgresDSN, clickhouseDSN string) (storage.VoyageSnapshotStore, func(), error) {
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

	if snapshot != "" {
		return csvfile.NewVoyageSnapshotStore(snapshot), func() {}, nil
	}

	return memory.NewVoyageSnapshotStore(), func() {}, nil
}

// Run starts the refresh scheduler and the HTTP server, and blocks until
// the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	// Refresh once on start so the API has data immediately
	s.refresh(ctx)

	go s.runRefreshScheduler(ctx)
	go s.runAgeUpdater(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.instrument("/health", s.handleHealth))
	mux.HandleFunc("/status", s.instrument("/status", s.handleStatus))
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/api/voyages", s.instrument("/api/voyages", s.handleVoyages))
	mux.HandleFunc("/api/summary", s.instrument("/api/summary", s.handleSummary))
	mux.HandleFunc("/api/top", s.instrument("/api/top", s.handleTop))
	mux.HandleFunc("/api/recommendation", s.instrument("/api/recommendation", s.handleRecommendation))
	// Not instrumented: the upgrader needs the raw ResponseWriter
	mux.HandleFunc("/ws", s.hub.HandleWS)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.hub.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runRefreshScheduler regenerates the snapshot on a ticker.
func (s *Server) runRefreshScheduler(ctx context.Context) {
	if s.refreshInterval <= 0 {
		s.logger.Println("Snapshot refresh disabled")
		return
	}
	s.logger.Printf("Snapshot refresh every %v", s.refreshInterval)

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// runAgeUpdater keeps the snapshot age gauge current between refreshes.
func (s *Server) runAgeUpdater(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			generatedAt := s.snapshotGeneratedAt
			s.mu.Unlock()
			if !generatedAt.IsZero() {
				observability.UpdateSnapshotAge(time.Since(generatedAt).Seconds())
			}
		}
	}
}

// refresh regenerates the snapshot, stores it, and broadcasts the update.
func (s *Server) refresh(ctx context.Context) {
	s.mu.Lock()
	if s.refreshRunning {
		s.mu.Unlock()
		s.logger.Println("Refresh already running, skipping...")
		return
	}
	s.refreshRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshRunning = false
		s.mu.Unlock()
	}()

	start := time.Now()
	generatedAt := start.UTC()
	gen := generator.New().WithClock(func() time.Time { return generatedAt })

	raw, err := gen.Generate(s.count, s.seed)
	if err != nil {
		s.logger.Printf("Refresh error: %v", err)
		observability.RecordPipelineRun("error", time.Since(start).Seconds())
		return
	}

	deriveStart := time.Now()
	enriched := costmodel.New(s.tariff).DeriveBatch(raw)
	observability.ObserveDeriveDuration(time.Since(deriveStart).Seconds())

	if err := s.store.Replace(ctx, enriched); err != nil {
		s.logger.Printf("Refresh error: replace snapshot: %v", err)
		observability.RecordPipelineRun("error", time.Since(start).Seconds())
		return
	}

	summary, err := fleet.Summarize(enriched)
	if err != nil {
		s.logger.Printf("Refresh error: summarize: %v", err)
		observability.RecordPipelineRun("error", time.Since(start).Seconds())
		return
	}
	version := idhash.ComputeSnapshotVersion(csvfile.Encode(enriched))

	s.mu.Lock()
	s.snapshotVersion = version
	s.snapshotGeneratedAt = generatedAt
	s.voyageCount = len(enriched)
	s.refreshes++
	s.mu.Unlock()

	observability.RecordSnapshotGenerated(len(enriched))
	observability.UpdateSnapshotAge(0)
	observability.RecordPipelineRun("success", time.Since(start).Seconds())

	s.hub.Broadcast(push.SnapshotEvent{
		Type:            push.EventTypeSnapshotUpdated,
		SnapshotVersion: version,
		VoyageCount:     len(enriched),
		GeneratedAt:     generatedAt,
		Summary:         summary,
	})

	if s.verbose {
		s.logger.Printf("Refreshed snapshot %s in %v (%d voyages, %d clients notified)",
			version, time.Since(start), len(enriched), s.hub.ClientCount())
	} else {
		s.logger.Printf("Refreshed snapshot %s (%d voyages)", version, len(enriched))
	}
}

// statusWriter captures the response code for request metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument wraps a handler with request counting and timing.
func (s *Server) instrument(path string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		h(sw, r)
		observability.RecordHTTPRequest(path, strconv.Itoa(sw.status), time.Since(start).Seconds())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status              string    `json:"status"`
	Uptime              string    `json:"uptime"`
	SnapshotVersion     string    `json:"snapshot_version,omitempty"`
	SnapshotGeneratedAt time.Time `json:"snapshot_generated_at,omitempty"`
	SnapshotAgeSeconds  float64   `json:"snapshot_age_seconds"`
	VoyageCount         int       `json:"voyage_count"`
	Refreshes           int       `json:"refreshes"`
	RefreshInterval     string    `json:"refresh_interval"`
	ConnectedClients    int       `json:"connected_clients"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:              "running",
		Uptime:              time.Since(s.started).String(),
		SnapshotVersion:     s.snapshotVersion,
		SnapshotGeneratedAt: s.snapshotGeneratedAt,
		VoyageCount:         s.voyageCount,
		Refreshes:           s.refreshes,
		RefreshInterval:     s.refreshInterval.String(),
	}
	if !s.snapshotGeneratedAt.IsZero() {
		resp.SnapshotAgeSeconds = time.Since(s.snapshotGeneratedAt).Seconds()
	}
	s.mu.Unlock()
	resp.ConnectedClients = s.hub.ClientCount()

	writeJSON(w, http.StatusOK, resp)
}

// voyageJSON is the API shape of one enriched voyage.
type voyageJSON struct {
	VesselID             string  `json:"vessel_id"`
	ArrivalDate          string  `json:"arrival_date"`
	QueueSize            int     `json:"queue_size"`
	WaitingDays          float64 `json:"waiting_days"`
	ActualSpeedKnots     float64 `json:"actual_speed_knots"`
	FuelConsumedTons     int     `json:"fuel_consumed_tons"`
	OptimalSpeedKnots    float64 `json:"optimal_speed_knots"`
	DemurrageCost        float64 `json:"demurrage_cost"`
	TotalFuelCost        float64 `json:"total_fuel_cost"`
	PotentialFuelSavings float64 `json:"potential_fuel_savings_usd"`
	ActualTotalCost      float64 `json:"actual_total_cost"`
	OptimizedTotalCost   float64 `json:"optimized_total_cost"`
	CostBand             string  `json:"cost_band"`
}

// voyagesResponse is the JSON response for /api/voyages and /api/top.
type voyagesResponse struct {
	Available bool         `json:"available"`
	Count     int          `json:"count"`
	Voyages   []voyageJSON `json:"voyages"`
}

func toVoyageJSON(v domain.EnrichedVoyage) voyageJSON {
	return voyageJSON{
		VesselID:             v.VesselID,
		ArrivalDate:          v.ArrivalDate.Format("2006-01-02"),
		QueueSize:            v.QueueSize,
		WaitingDays:          v.WaitingDays,
		ActualSpeedKnots:     v.ActualSpeedKnots,
		FuelConsumedTons:     v.FuelConsumedTons,
		OptimalSpeedKnots:    v.OptimalSpeedKnots,
		DemurrageCost:        v.DemurrageCost,
		TotalFuelCost:        v.TotalFuelCost,
		PotentialFuelSavings: v.PotentialFuelSavings,
		ActualTotalCost:      v.ActualTotalCost,
		OptimizedTotalCost:   v.OptimizedTotalCost,
		CostBand:             string(domain.CostBandFor(v.DemurrageCost)),
	}
}

func (s *Server) handleVoyages(w http.ResponseWriter, r *http.Request) {
	voyages, err := s.store.List(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNoSnapshot) {
			writeJSON(w, http.StatusOK, voyagesResponse{Available: false, Voyages: []voyageJSON{}})
			return
		}
		s.logger.Printf("List voyages: %v", err)
		writeJSONError(w, "snapshot read failed", http.StatusInternalServerError)
		return
	}

	out := make([]voyageJSON, len(voyages))
	for i, v := range voyages {
		out[i] = toVoyageJSON(v)
	}
	writeJSON(w, http.StatusOK, voyagesResponse{Available: true, Count: len(out), Voyages: out})
}

// summaryResponse is the JSON response for /api/summary.
type summaryResponse struct {
	Available             bool    `json:"available"`
	TotalVoyages          int     `json:"total_voyages"`
	VesselsWaited         int     `json:"vessels_waited"`
	TotalDemurrage        float64 `json:"total_demurrage_cost"`
	TotalFuelCost         float64 `json:"total_fuel_cost"`
	TotalPotentialSavings float64 `json:"total_potential_savings"`
	EfficiencyScore       float64 `json:"efficiency_score"`
	EfficiencyBand        string  `json:"efficiency_band,omitempty"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	voyages, err := s.store.List(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNoSnapshot) {
			writeJSON(w, http.StatusOK, summaryResponse{Available: false})
			return
		}
		s.logger.Printf("List voyages: %v", err)
		writeJSONError(w, "snapshot read failed", http.StatusInternalServerError)
		return
	}

	summary, err := fleet.Summarize(voyages)
	if err != nil {
		if errors.Is(err, fleet.ErrNoVoyages) {
			writeJSON(w, http.StatusOK, summaryResponse{Available: false})
			return
		}
		s.logger.Printf("Summarize: %v", err)
		writeJSONError(w, "summary failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		Available:             true,
		TotalVoyages:          summary.TotalVoyages,
		VesselsWaited:         summary.VesselsWaited,
		TotalDemurrage:        summary.TotalDemurrage,
		TotalFuelCost:         summary.TotalFuelCost,
		TotalPotentialSavings: summary.TotalPotentialSavings,
		EfficiencyScore:       summary.EfficiencyScore,
		EfficiencyBand:        string(summary.EfficiencyBand),
	})
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSONError(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	voyages, err := s.store.List(r.Context())
	if err != nil {
		if errors.Is(err, storage.ErrNoSnapshot) {
			writeJSON(w, http.StatusOK, voyagesResponse{Available: false, Voyages: []voyageJSON{}})
			return
		}
		s.logger.Printf("List voyages: %v", err)
		writeJSONError(w, "snapshot read failed", http.StatusInternalServerError)
		return
	}

	top := fleet.TopByActualCost(voyages, n)
	out := make([]voyageJSON, len(top))
	for i, v := range top {
		out[i] = toVoyageJSON(v)
	}
	writeJSON(w, http.StatusOK, voyagesResponse{Available: true, Count: len(out), Voyages: out})
}

// recommendationResponse is the JSON response for /api/recommendation.
type recommendationResponse struct {
	Decision          string  `json:"decision"`
	SpeedFactor       float64 `json:"speed_factor"`
	DaysAtSea         float64 `json:"days_at_sea"`
	EstimatedFuelCost float64 `json:"estimated_fuel_cost"`
	EstimatedSavings  float64 `json:"estimated_savings"`
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	distanceNM, err := strconv.ParseFloat(r.URL.Query().Get("distance_nm"), 64)
	if err != nil {
		writeJSONError(w, "distance_nm must be a number", http.StatusBadRequest)
		return
	}
	queue, err := strconv.Atoi(r.URL.Query().Get("queue"))
	if err != nil {
		writeJSONError(w, "queue must be an integer", http.StatusBadRequest)
		return
	}

	rec, err := s.engine.Recommend(distanceNM, queue)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Printf("Recommend: %v", err)
		writeJSONError(w, "recommendation failed", http.StatusInternalServerError)
		return
	}

	observability.RecordRecommendation(rec.Decision.String())
	writeJSON(w, http.StatusOK, recommendationResponse{
		Decision:          rec.Decision.String(),
		SpeedFactor:       rec.SpeedFactor,
		DaysAtSea:         rec.DaysAtSea,
		EstimatedFuelCost: rec.EstimatedFuelCost,
		EstimatedSavings:  rec.EstimatedSavings,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q,"status":%d}`, message, status)
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
