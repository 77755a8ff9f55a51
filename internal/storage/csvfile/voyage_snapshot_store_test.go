package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"portsync/internal/domain"
	"portsync/internal/storage"
)

func testVoyage() domain.EnrichedVoyage {
	return domain.EnrichedVoyage{
		VesselID:             "TANKER-001",
		ArrivalDate:          time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		QueueSize:            3,
		WaitingDays:          2.0,
		ActualSpeedKnots:     14.0,
		FuelConsumedTons:     600,
		OptimalSpeedKnots:    10.5,
		DemurrageCost:        60000,
		TotalFuelCost:        360000,
		PotentialFuelSavings: 108000,
		ActualTotalCost:      420000,
		OptimizedTotalCost:   252000,
	}
}

func TestEncode_CanonicalFormat(t *testing.T) {
	got := string(Encode([]domain.EnrichedVoyage{testVoyage()}))

	want := Header + "\n" +
		"TANKER-001,2025-03-15,3,2.00,14.0,600,10.5,60000.00,360000.00,108000.00\n"
	if got != want {
		t.Errorf("Canonical encoding mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestVoyageSnapshotStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port_traffic.csv")
	store := NewVoyageSnapshotStore(path)
	ctx := context.Background()

	want := testVoyage()
	if err := store.Replace(ctx, []domain.EnrichedVoyage{want}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 voyage, got %d", len(got))
	}

	// Every persisted field survives at its serialized precision, and the
	// total-cost fields are rebuilt from the persisted columns.
	v := got[0]
	if v.VesselID != want.VesselID {
		t.Errorf("VesselID: got %s, want %s", v.VesselID, want.VesselID)
	}
	if !v.ArrivalDate.Equal(want.ArrivalDate) {
		t.Errorf("ArrivalDate: got %v, want %v", v.ArrivalDate, want.ArrivalDate)
	}
	if v.QueueSize != want.QueueSize {
		t.Errorf("QueueSize: got %d, want %d", v.QueueSize, want.QueueSize)
	}
	if v.WaitingDays != want.WaitingDays {
		t.Errorf("WaitingDays: got %f, want %f", v.WaitingDays, want.WaitingDays)
	}
	if v.ActualSpeedKnots != want.ActualSpeedKnots {
		t.Errorf("ActualSpeedKnots: got %f, want %f", v.ActualSpeedKnots, want.ActualSpeedKnots)
	}
	if v.FuelConsumedTons != want.FuelConsumedTons {
		t.Errorf("FuelConsumedTons: got %d, want %d", v.FuelConsumedTons, want.FuelConsumedTons)
	}
	if v.OptimalSpeedKnots != want.OptimalSpeedKnots {
		t.Errorf("OptimalSpeedKnots: got %f, want %f", v.OptimalSpeedKnots, want.OptimalSpeedKnots)
	}
	if v.DemurrageCost != want.DemurrageCost {
		t.Errorf("DemurrageCost: got %f, want %f", v.DemurrageCost, want.DemurrageCost)
	}
	if v.TotalFuelCost != want.TotalFuelCost {
		t.Errorf("TotalFuelCost: got %f, want %f", v.TotalFuelCost, want.TotalFuelCost)
	}
	if v.PotentialFuelSavings != want.PotentialFuelSavings {
		t.Errorf("PotentialFuelSavings: got %f, want %f", v.PotentialFuelSavings, want.PotentialFuelSavings)
	}
	if v.ActualTotalCost != want.ActualTotalCost {
		t.Errorf("ActualTotalCost: got %f, want %f", v.ActualTotalCost, want.ActualTotalCost)
	}
	if v.OptimizedTotalCost != want.OptimizedTotalCost {
		t.Errorf("OptimizedTotalCost: got %f, want %f", v.OptimizedTotalCost, want.OptimizedTotalCost)
	}
}

func TestVoyageSnapshotStore_MissingFile(t *testing.T) {
	store := NewVoyageSnapshotStore(filepath.Join(t.TempDir(), "missing.csv"))
	ctx := context.Background()

	_, err := store.List(ctx)
	if !errors.Is(err, storage.ErrNoSnapshot) {
		t.Errorf("Expected ErrNoSnapshot from List, got %v", err)
	}

	_, err = store.Count(ctx)
	if !errors.Is(err, storage.ErrNoSnapshot) {
		t.Errorf("Expected ErrNoSnapshot from Count, got %v", err)
	}
}

func TestVoyageSnapshotStore_HeaderOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port_traffic.csv")
	store := NewVoyageSnapshotStore(path)
	ctx := context.Background()

	if err := store.Replace(ctx, nil); err != nil {
		t.Fatalf("Replace with empty batch failed: %v", err)
	}

	_, err := store.List(ctx)
	if !errors.Is(err, storage.ErrNoSnapshot) {
		t.Errorf("Expected ErrNoSnapshot for header-only file, got %v", err)
	}
}

func TestVoyageSnapshotStore_ReplaceIsWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port_traffic.csv")
	store := NewVoyageSnapshotStore(path)
	ctx := context.Background()

	big := make([]domain.EnrichedVoyage, 3)
	for i := range big {
		big[i] = testVoyage()
		big[i].VesselID = "TANKER-00" + string(rune('1'+i))
		big[i].ArrivalDate = big[i].ArrivalDate.AddDate(0, 0, i)
	}
	if err := store.Replace(ctx, big); err != nil {
		t.Fatalf("First replace failed: %v", err)
	}

	small := []domain.EnrichedVoyage{testVoyage()}
	if err := store.Replace(ctx, small); err != nil {
		t.Fatalf("Second replace failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 voyage after replace, got %d", count)
	}
}

func TestVoyageSnapshotStore_ListSortsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port_traffic.csv")
	ctx := context.Background()

	later := testVoyage()
	later.VesselID = "TANKER-002"
	later.ArrivalDate = later.ArrivalDate.AddDate(0, 0, 10)
	earlier := testVoyage()

	// File written out of order, as a hand-edited snapshot might be.
	data := Encode([]domain.EnrichedVoyage{later, earlier})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := NewVoyageSnapshotStore(path).List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got[0].VesselID != "TANKER-001" || got[1].VesselID != "TANKER-002" {
		t.Errorf("Expected arrival-date order, got %s then %s", got[0].VesselID, got[1].VesselID)
	}
}

func TestVoyageSnapshotStore_MalformedRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port_traffic.csv")
	ctx := context.Background()

	content := Header + "\n" +
		"TANKER-001,2025-03-15,3,2.00,14.0,600,10.5,60000.00,360000.00,108000.00\n" +
		"TANKER-002,2025-03-16,bogus,2.00,14.0,600,10.5,60000.00,360000.00,108000.00\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := NewVoyageSnapshotStore(path).List(ctx)
	if err == nil {
		t.Fatal("Expected error for malformed row, got nil")
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Errorf("Expected error to name row 2, got %v", err)
	}
}

func TestVoyageSnapshotStore_UnexpectedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port_traffic.csv")
	ctx := context.Background()

	content := "Vessel,Date\nTANKER-001,2025-03-15\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := NewVoyageSnapshotStore(path).List(ctx)
	if err == nil {
		t.Fatal("Expected error for unexpected header, got nil")
	}
}

func TestVoyageSnapshotStore_InvalidInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "port_traffic.csv")
	store := NewVoyageSnapshotStore(path)
	ctx := context.Background()

	bad := testVoyage()
	bad.VesselID = ""
	err := store.Replace(ctx, []domain.EnrichedVoyage{bad})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty vessel ID, got %v", err)
	}

	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("Rejected batch must not create the snapshot file")
	}
}
