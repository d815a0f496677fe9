package main

// SolarSystem is the broadcast-facing view of a star system. Identity and
// position are fixed at generation; only visibility, yields, science, lore,
// and relay presence mutate afterwards.
type SolarSystem struct {
	ID      string  `json:"id"`
	Ordinal uint64  `json:"ordinal"`
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`

	Discovered bool `json:"discovered"`
	Visited    bool `json:"visited"`
	Analyzed   bool `json:"analyzed"`

	// Resources holds the static 0–100 abundance rating per resource.
	Resources ResourceStock `json:"resources"`
	// Yield holds the depletable remaining stock per resource.
	Yield ResourceStock `json:"yield"`

	ScienceRemaining float64 `json:"scienceRemaining"`
	ScienceTotal     float64 `json:"scienceTotal"`

	Lore     string `json:"lore,omitempty"`
	HasRelay bool   `json:"hasRelay"`
}

// systemState wraps the broadcast view with server-side bookkeeping.
type systemState struct {
	SolarSystem

	version uint64
}

func (s *systemState) snapshot() SolarSystem {
	return s.SolarSystem
}
