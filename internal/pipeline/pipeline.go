// Package pipeline orchestrates the single-pass batch flow: generate a
// voyage batch, derive cost metrics, replace the stored snapshot, verify
// the write, and render the fleet report files.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"portsync/internal/costmodel"
	"portsync/internal/domain"
	"portsync/internal/generator"
	"portsync/internal/idhash"
	"portsync/internal/reporting"
	"portsync/internal/storage"
	"portsync/internal/verification"
)

// Pipeline wires the generation, derivation, storage, verification, and
// reporting stages behind a single Run.
type Pipeline struct {
	store     storage.VoyageSnapshotStore
	tariff    domain.Tariff
	count     int
	seed      int64
	outputDir string
	clock     func() time.Time
}

// New creates a pipeline writing report files under outputDir.
func New(store storage.VoyageSnapshotStore, count int, seed int64, outputDir string) *Pipeline {
	return &Pipeline{
		store:     store,
		tariff:    domain.DefaultTariff(),
		count:     count,
		seed:      seed,
		outputDir: outputDir,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithTariff overrides the default tariff.
func (p *Pipeline) WithTariff(tariff domain.Tariff) *Pipeline {
	p.tariff = tariff
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	return p
}

// RunResult records what a pipeline run produced.
type RunResult struct {
	BatchID          string
	SnapshotVersion  string
	VoyageCount      int
	GeneratedAt      time.Time
	StoredCheck      *verification.VerificationReport
	DeterminismCheck *verification.VerificationReport
	ReportPath       string
	SnapshotCSVPath  string
}

// Verified reports whether both post-write integrity checks passed.
func (r *RunResult) Verified() bool {
	return r.StoredCheck.Passed() && r.DeterminismCheck.Passed()
}

// Run executes the full pipeline and writes output files:
// - fleet_report_<version>.md
// - fleet_report_<version>.csv
//
// Verification failures are recorded in the result, not returned as
// errors; callers decide how to treat them.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	if err := p.tariff.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return nil, err
	}

	// One reference time for the whole run, so the determinism check
	// regenerates over the same arrival window.
	runAt := p.clock()
	clock := func() time.Time { return runAt }

	// 1. Generate the raw batch.
	gen := generator.New().WithClock(clock)
	raw, err := gen.Generate(p.count, p.seed)
	if err != nil {
		return nil, err
	}

	// 2. Derive cost metrics.
	enriched := costmodel.New(p.tariff).DeriveBatch(raw)

	// 3. Replace the stored snapshot.
	if err := p.store.Replace(ctx, enriched); err != nil {
		return nil, fmt.Errorf("replace snapshot: %w", err)
	}

	// 4. Verify the stored snapshot round-trips the in-memory batch.
	storedCheck, err := verification.NewSnapshotVerifier(p.store).VerifyStored(ctx, enriched)
	if err != nil {
		return nil, fmt.Errorf("verify stored snapshot: %w", err)
	}

	// 5. Regenerate from the same seed and confirm the raw batch is identical.
	regenerated, err := gen.Generate(p.count, p.seed)
	if err != nil {
		return nil, err
	}
	determinismCheck := verification.VerifyRegenerated(raw, regenerated)

	// 6. Render the fleet report files, named by snapshot version.
	report, err := reporting.NewGenerator(p.store).WithClock(clock).Generate(ctx)
	if err != nil {
		return nil, err
	}

	reportPath := filepath.Join(p.outputDir, fmt.Sprintf("fleet_report_%s.md", report.SnapshotVersion))
	if err := os.WriteFile(reportPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		return nil, err
	}

	csvPath := filepath.Join(p.outputDir, fmt.Sprintf("fleet_report_%s.csv", report.SnapshotVersion))
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report)), 0644); err != nil {
		return nil, err
	}

	return &RunResult{
		BatchID:          idhash.ComputeBatchID(p.seed, p.count, runAt),
		SnapshotVersion:  report.SnapshotVersion,
		VoyageCount:      len(enriched),
		GeneratedAt:      runAt,
		StoredCheck:      storedCheck,
		DeterminismCheck: determinismCheck,
		ReportPath:       reportPath,
		SnapshotCSVPath:  csvPath,
	}, nil
}
