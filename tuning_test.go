package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTuningParses(t *testing.T) {
	tuning := defaultTuning()

	if tuning.Flight.TravelBaseSpeed != 10 {
		t.Fatalf("travel base speed = %v, want 10", tuning.Flight.TravelBaseSpeed)
	}
	if tuning.Flight.SolarSailMultiplier != 0.05 {
		t.Fatalf("solar sail multiplier = %v, want 0.05", tuning.Flight.SolarSailMultiplier)
	}
	if tuning.Universe.SectorSize != 500 {
		t.Fatalf("sector size = %v, want 500", tuning.Universe.SectorSize)
	}
	if tuning.Universe.MaxSystemsPerSector != 3 {
		t.Fatalf("max systems per sector = %v, want 3", tuning.Universe.MaxSystemsPerSector)
	}
	if tuning.Replication.MetalCost != 500 || tuning.Replication.PlutoniumCost != 300 {
		t.Fatalf("replication cost = %v/%v, want 500/300", tuning.Replication.MetalCost, tuning.Replication.PlutoniumCost)
	}
}

func TestLoadTuningMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	override := "flight:\n  travel_base_speed: 25.0\nmining:\n  base_rate: 4.0\n"
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	tuning, err := loadTuning(path)
	if err != nil {
		t.Fatalf("loadTuning: %v", err)
	}
	if tuning.Flight.TravelBaseSpeed != 25 {
		t.Fatalf("override not applied: %v", tuning.Flight.TravelBaseSpeed)
	}
	if tuning.Mining.BaseRate != 4 {
		t.Fatalf("override not applied: %v", tuning.Mining.BaseRate)
	}
	// Fields absent from the override keep their defaults.
	if tuning.Flight.FuelRatePerUnit != 0.2 {
		t.Fatalf("unset field lost its default: %v", tuning.Flight.FuelRatePerUnit)
	}
}

func TestLoadTuningMissingFileErrors(t *testing.T) {
	if _, err := loadTuning(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing tuning file should error")
	}
}

func TestLoadTuningEmptyPathUsesDefaults(t *testing.T) {
	tuning, err := loadTuning("")
	if err != nil {
		t.Fatalf("loadTuning(\"\"): %v", err)
	}
	if tuning != defaultTuning() {
		t.Fatal("empty path should return the embedded defaults")
	}
}
