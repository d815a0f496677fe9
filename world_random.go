package main

import (
	"hash/fnv"
	"math/rand"
)

// seedHash folds a world seed and a label into a deterministic 64-bit seed.
func seedHash(seed, label string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	h.Write([]byte{':'})
	h.Write([]byte(label))
	return int64(h.Sum64())
}

// newDeterministicRNG builds a labeled generator so independent subsystems
// draw from distinct, reproducible streams.
func newDeterministicRNG(seed, label string) *rand.Rand {
	return rand.New(rand.NewSource(seedHash(seed, label)))
}

func (w *World) randomFloat() float64 {
	if w != nil && w.rng != nil {
		return w.rng.Float64()
	}
	return rand.Float64()
}

func (w *World) randomRange(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + w.randomFloat()*(max-min)
}
