package main

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultTuningYAML []byte

// simTuning carries every numeric knob the simulation consumes. The embedded
// defaults are authoritative; a tuning file overrides individual fields.
type simTuning struct {
	Flight      flightTuning      `yaml:"flight"`
	Mining      miningTuning      `yaml:"mining"`
	Science     scienceTuning     `yaml:"science"`
	Universe    universeTuning    `yaml:"universe"`
	Behavior    behaviorTuning    `yaml:"behavior"`
	Replication replicationTuning `yaml:"replication"`
}

type flightTuning struct {
	TravelBaseSpeed     float64 `yaml:"travel_base_speed"`
	ExploreBaseSpeed    float64 `yaml:"explore_base_speed"`
	SolarSailMultiplier float64 `yaml:"solar_sail_multiplier"`
	FuelRatePerUnit     float64 `yaml:"fuel_rate_per_unit"`
	TurnFuelRate        float64 `yaml:"turn_fuel_rate"`
	AutoDockRadius      float64 `yaml:"auto_dock_radius"`
	SafetyMarginFuel    float64 `yaml:"safety_margin_fuel"`
}

type miningTuning struct {
	BaseRate float64 `yaml:"base_rate"`
}

type scienceTuning struct {
	ResearchRateBase     float64 `yaml:"research_rate_base"`
	RelayCostMetal       float64 `yaml:"relay_cost_metal"`
	RelayUnlockScience   float64 `yaml:"relay_unlock_science"`
	MaterialityThreshold float64 `yaml:"materiality_threshold"`
}

type universeTuning struct {
	SectorSize            float64 `yaml:"sector_size"`
	MaxSystemsPerSector   int     `yaml:"max_systems_per_sector"`
	RichnessDistanceScale float64 `yaml:"richness_distance_scale"`
	RichnessCap           float64 `yaml:"richness_cap"`
	NoiseScale            float64 `yaml:"noise_scale"`
}

type behaviorTuning struct {
	MiningBatchSize         float64 `yaml:"mining_batch_size"`
	FocusMetalThreshold     float64 `yaml:"focus_metal_threshold"`
	FocusPlutoniumThreshold float64 `yaml:"focus_plutonium_threshold"`
}

type replicationTuning struct {
	MetalCost            float64 `yaml:"metal_cost"`
	PlutoniumCost        float64 `yaml:"plutonium_cost"`
	BuildTimeSeconds     float64 `yaml:"build_time_seconds"`
	CooldownSeconds      float64 `yaml:"cooldown_seconds"`
	SiteMinCombinedYield float64 `yaml:"site_min_combined_yield"`
}

// defaultTuning parses the embedded defaults. The embedded document is part
// of the build, so a parse failure is a programming error.
func defaultTuning() simTuning {
	var tuning simTuning
	if err := yaml.Unmarshal(defaultTuningYAML, &tuning); err != nil {
		panic(fmt.Sprintf("embedded tuning defaults are malformed: %v", err))
	}
	return tuning
}

// loadTuning reads a tuning override file on top of the embedded defaults.
// Zero-valued fields in the override keep their default.
func loadTuning(path string) (simTuning, error) {
	tuning := defaultTuning()
	if path == "" {
		return tuning, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tuning, fmt.Errorf("read tuning file: %w", err)
	}
	override := simTuning{}
	if err := yaml.Unmarshal(data, &override); err != nil {
		return tuning, fmt.Errorf("parse tuning file: %w", err)
	}
	tuning.merge(override)
	return tuning, nil
}

func (t *simTuning) merge(override simTuning) {
	mergeFloat(&t.Flight.TravelBaseSpeed, override.Flight.TravelBaseSpeed)
	mergeFloat(&t.Flight.ExploreBaseSpeed, override.Flight.ExploreBaseSpeed)
	mergeFloat(&t.Flight.SolarSailMultiplier, override.Flight.SolarSailMultiplier)
	mergeFloat(&t.Flight.FuelRatePerUnit, override.Flight.FuelRatePerUnit)
	mergeFloat(&t.Flight.TurnFuelRate, override.Flight.TurnFuelRate)
	mergeFloat(&t.Flight.AutoDockRadius, override.Flight.AutoDockRadius)
	mergeFloat(&t.Flight.SafetyMarginFuel, override.Flight.SafetyMarginFuel)
	mergeFloat(&t.Mining.BaseRate, override.Mining.BaseRate)
	mergeFloat(&t.Science.ResearchRateBase, override.Science.ResearchRateBase)
	mergeFloat(&t.Science.RelayCostMetal, override.Science.RelayCostMetal)
	mergeFloat(&t.Science.RelayUnlockScience, override.Science.RelayUnlockScience)
	mergeFloat(&t.Science.MaterialityThreshold, override.Science.MaterialityThreshold)
	mergeFloat(&t.Universe.SectorSize, override.Universe.SectorSize)
	if override.Universe.MaxSystemsPerSector > 0 {
		t.Universe.MaxSystemsPerSector = override.Universe.MaxSystemsPerSector
	}
	mergeFloat(&t.Universe.RichnessDistanceScale, override.Universe.RichnessDistanceScale)
	mergeFloat(&t.Universe.RichnessCap, override.Universe.RichnessCap)
	mergeFloat(&t.Universe.NoiseScale, override.Universe.NoiseScale)
	mergeFloat(&t.Behavior.MiningBatchSize, override.Behavior.MiningBatchSize)
	mergeFloat(&t.Behavior.FocusMetalThreshold, override.Behavior.FocusMetalThreshold)
	mergeFloat(&t.Behavior.FocusPlutoniumThreshold, override.Behavior.FocusPlutoniumThreshold)
	mergeFloat(&t.Replication.MetalCost, override.Replication.MetalCost)
	mergeFloat(&t.Replication.PlutoniumCost, override.Replication.PlutoniumCost)
	mergeFloat(&t.Replication.BuildTimeSeconds, override.Replication.BuildTimeSeconds)
	mergeFloat(&t.Replication.CooldownSeconds, override.Replication.CooldownSeconds)
	mergeFloat(&t.Replication.SiteMinCombinedYield, override.Replication.SiteMinCombinedYield)
}

func mergeFloat(dst *float64, value float64) {
	if value > 0 {
		*dst = value
	}
}
