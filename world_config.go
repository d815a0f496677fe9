package main

import "strings"

// worldConfig captures the toggles used when constructing a world.
type worldConfig struct {
	Seed           string `json:"seed"`
	InitialProbes  int    `json:"initialProbes"`
	TuningPath     string `json:"tuningPath,omitempty"`
	NamingEndpoint string `json:"namingEndpoint,omitempty"`
	SnapshotPath   string `json:"snapshotPath,omitempty"`
	MetricsPath    string `json:"metricsPath,omitempty"`
}

// normalized returns a config with defaults applied.
func (cfg worldConfig) normalized() worldConfig {
	normalized := cfg
	normalized.Seed = strings.TrimSpace(normalized.Seed)
	if normalized.Seed == "" {
		normalized.Seed = defaultWorldSeed
	}
	if normalized.InitialProbes <= 0 {
		normalized.InitialProbes = 1
	}
	return normalized
}

// defaultWorldConfig seeds a single pioneer probe with the default seed.
func defaultWorldConfig() worldConfig {
	return worldConfig{
		Seed:          defaultWorldSeed,
		InitialProbes: 1,
	}
}
