package generator

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"portsync/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestGenerate_Determinism(t *testing.T) {
	gen := New().WithClock(fixedClock)

	first, err := gen.Generate(100, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	second, err := gen.Generate(100, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Same seed produced different batches")
	}
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	gen := New().WithClock(fixedClock)

	first, err := gen.Generate(100, 1)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	second, err := gen.Generate(100, 2)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if reflect.DeepEqual(first, second) {
		t.Error("Different seeds produced identical batches")
	}
}

func TestGenerate_VesselIDs(t *testing.T) {
	gen := New().WithClock(fixedClock)

	records, err := gen.Generate(100, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(records) != 100 {
		t.Fatalf("Expected 100 records, got %d", len(records))
	}

	if records[0].VesselID != "TANKER-001" {
		t.Errorf("Expected first vessel TANKER-001, got %s", records[0].VesselID)
	}
	if records[99].VesselID != "TANKER-100" {
		t.Errorf("Expected last vessel TANKER-100, got %s", records[99].VesselID)
	}

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.VesselID]; dup {
			t.Fatalf("Duplicate vessel ID %s", r.VesselID)
		}
		seen[r.VesselID] = struct{}{}
	}
}

func TestGenerate_ArrivalDatesSortedWithinWindow(t *testing.T) {
	gen := New().WithClock(fixedClock)

	records, err := gen.Generate(100, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	ref := fixedClock()
	windowStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -domain.ArrivalWindowDays)

	for i, r := range records {
		if r.ArrivalDate.Before(windowStart) {
			t.Errorf("Record %d arrival %v before window start %v", i, r.ArrivalDate, windowStart)
		}
		if !r.ArrivalDate.Before(ref) {
			t.Errorf("Record %d arrival %v not before reference time %v", i, r.ArrivalDate, ref)
		}
		if i > 0 && r.ArrivalDate.Before(records[i-1].ArrivalDate) {
			t.Errorf("Arrival dates not sorted at index %d", i)
		}
	}
}

func TestGenerate_QueueWaitingInvariant(t *testing.T) {
	gen := New().WithClock(fixedClock)

	records, err := gen.Generate(500, 7)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, r := range records {
		if r.QueueSize == 0 && r.WaitingDays != 0 {
			t.Errorf("%s: queue 0 but waiting %v", r.VesselID, r.WaitingDays)
		}
		if r.QueueSize > 0 && (r.WaitingDays < 1.0 || r.WaitingDays > 4.0) {
			t.Errorf("%s: waiting %v outside [1.0, 4.0]", r.VesselID, r.WaitingDays)
		}
	}
}

func TestGenerate_FieldRanges(t *testing.T) {
	gen := New().WithClock(fixedClock)

	records, err := gen.Generate(500, 7)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, r := range records {
		if r.QueueSize < 0 || r.QueueSize > domain.MaxQueueSize {
			t.Errorf("%s: queue size %d out of range", r.VesselID, r.QueueSize)
		}
		if r.FuelConsumedTons < minFuelTons || r.FuelConsumedTons > maxFuelTons {
			t.Errorf("%s: fuel %d outside [%d, %d]", r.VesselID, r.FuelConsumedTons, minFuelTons, maxFuelTons)
		}
	}
}

func TestGenerate_Rounding(t *testing.T) {
	gen := New().WithClock(fixedClock)

	records, err := gen.Generate(500, 7)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, r := range records {
		if diff := math.Abs(r.WaitingDays*100 - math.Round(r.WaitingDays*100)); diff > 1e-9 {
			t.Errorf("%s: waiting days %v not rounded to 2dp", r.VesselID, r.WaitingDays)
		}
		if diff := math.Abs(r.ActualSpeedKnots*10 - math.Round(r.ActualSpeedKnots*10)); diff > 1e-9 {
			t.Errorf("%s: speed %v not rounded to 1dp", r.VesselID, r.ActualSpeedKnots)
		}
	}
}

func TestGenerate_QueueDistribution(t *testing.T) {
	gen := New().WithClock(fixedClock)

	records, err := gen.Generate(10000, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	counts := make([]int, domain.MaxQueueSize+1)
	for _, r := range records {
		counts[r.QueueSize]++
	}

	// Loose bounds: each weight should be reproduced within a few points
	// over 10k samples.
	for size, want := range domain.QueueSizeWeights {
		got := float64(counts[size]) / float64(len(records))
		if math.Abs(got-want) > 0.03 {
			t.Errorf("Queue size %d frequency %.3f too far from weight %.2f", size, got, want)
		}
	}
}

func TestGenerate_InvalidCount(t *testing.T) {
	gen := New().WithClock(fixedClock)

	for _, count := range []int{0, -1, -100} {
		_, err := gen.Generate(count, 42)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for count %d, got %v", count, err)
		}
	}
}
