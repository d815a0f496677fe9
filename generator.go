package main

import (
	"context"
	"fmt"
	"math"

	"starseeder/server/logging"
	"starseeder/server/logging/expedition"
)

// sectorKey addresses one fixed-size square partition of the universe.
type sectorKey struct {
	X int
	Y int
}

// sectorFor maps a continuous position onto its sector key.
func (w *World) sectorFor(x, y float64) sectorKey {
	size := w.tuning.Universe.SectorSize
	return sectorKey{
		X: int(math.Floor(x / size)),
		Y: int(math.Floor(y / size)),
	}
}

// ensureSectorAt triggers lazy generation for the sector containing the
// given position. Membership in the generated set is the sole gate; each key
// is generated at most once, no matter how it was reached.
func (w *World) ensureSectorAt(x, y float64) {
	w.ensureSector(w.sectorFor(x, y))
}

// ensureSector populates a sector the first time any probe's position enters
// it. The call is idempotent per key and deterministic for a given world
// seed.
func (w *World) ensureSector(key sectorKey) {
	if w == nil || w.sectors[key] {
		return
	}
	w.markSectorGenerated(key)

	rng := newDeterministicRNG(w.seed, fmt.Sprintf("sector:%d:%d", key.X, key.Y))
	count := rng.Intn(w.tuning.Universe.MaxSystemsPerSector + 1)

	size := w.tuning.Universe.SectorSize
	minX := float64(key.X) * size
	minY := float64(key.Y) * size

	for i := 0; i < count; i++ {
		x := minX + rng.Float64()*size
		y := minY + rng.Float64()*size
		sys := w.generateSystem(x, y, rng.Float64())
		w.addSystem(sys)
		w.journal.AppendPatch(Patch{
			Kind:     PatchSystemSpawned,
			EntityID: sys.ID,
			Payload:  SystemSpawnedPayload{System: sys.snapshot()},
		})
	}

	if w.telemetry != nil {
		w.telemetry.RecordSectorGenerated(count)
	}
	expedition.SectorGenerated(context.Background(), w.publisher, w.currentTick, expedition.SectorGeneratedPayload{
		SectorX: key.X,
		SectorY: key.Y,
		Systems: count,
	})
}

// generateSystem creates one undiscovered system at the given position.
// Abundance follows the noise field so neighbouring systems share character;
// yields and science scale with a capped function of distance from the
// universe origin.
func (w *World) generateSystem(x, y float64, scienceRoll float64) *systemState {
	noiseScale := w.tuning.Universe.NoiseScale
	metalAbundance := clampAbundance(100 * w.noise.Eval2(x/noiseScale, y/noiseScale))
	plutoniumAbundance := clampAbundance(100 * w.noise.Eval2((x+noiseScale)/noiseScale, (y-noiseScale)/noiseScale))

	richness := w.distanceRichness(x, y)

	id := w.mintSystemID()
	return &systemState{
		SolarSystem: SolarSystem{
			ID:        id,
			Ordinal:   w.nextSystemOrdinal,
			Name:      fmt.Sprintf("XS-%04d", w.nextSystemOrdinal),
			X:         x,
			Y:         y,
			Resources: ResourceStock{Metal: metalAbundance, Plutonium: plutoniumAbundance},
			Yield: ResourceStock{
				Metal:     math.Floor(metalAbundance * 20 * richness),
				Plutonium: math.Floor(plutoniumAbundance * 10 * richness),
			},
			ScienceRemaining: math.Floor(scienceRoll * 100 * richness),
			ScienceTotal:     math.Floor(scienceRoll * 100 * richness),
		},
	}
}

// distanceRichness scales system wealth with distance from the origin,
// capped so the frontier does not grow without bound.
func (w *World) distanceRichness(x, y float64) float64 {
	distance := math.Hypot(x, y)
	richness := 1 + distance/w.tuning.Universe.RichnessDistanceScale
	if limit := w.tuning.Universe.RichnessCap; richness > limit {
		richness = limit
	}
	return richness
}

func clampAbundance(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return math.Round(value)
}

// passiveScan marks every system within scan range of the given position as
// discovered. Runs against interpolated positions while traveling and
// exploring.
func (w *World) passiveScan(probe *probeState, x, y float64) {
	for _, sys := range w.orderedSystems() {
		if sys.Discovered {
			continue
		}
		if distanceBetween(x, y, sys.X, sys.Y) <= probe.Stats.ScanRange {
			w.MarkSystemDiscovered(sys.ID)
		}
	}
}

func probeRef(probeID string) logging.EntityRef {
	return logging.EntityRef{ID: probeID, Kind: logging.EntityKindProbe}
}

func systemRef(systemID string) logging.EntityRef {
	return logging.EntityRef{ID: systemID, Kind: logging.EntityKindSystem}
}
