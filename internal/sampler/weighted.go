// Package sampler draws categorical and per-review attributes from configured
// percentage distributions.
package sampler

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// Weighted draws labels with probability weight/Σweights.
// It holds no state between draws; randomness comes from the caller's rng.
type Weighted[L cmp.Ordered] struct {
	labels     []L
	cumulative []float64
	total      float64
	fallback   L
}

// NewWeighted builds a sampler over weights. Negative weights count as zero.
// Labels are sorted so a seeded rng reproduces the same sequence regardless
// of map iteration order. fallback is returned when no label carries weight.
func NewWeighted[L cmp.Ordered](weights map[L]float64, fallback L) *Weighted[L] {
	labels := make([]L, 0, len(weights))
	for l := range weights {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	w := &Weighted[L]{fallback: fallback}
	for _, l := range labels {
		weight := weights[l]
		if weight <= 0 {
			continue
		}
		w.total += weight
		w.labels = append(w.labels, l)
		w.cumulative = append(w.cumulative, w.total)
	}
	return w
}

// Sample draws one label.
func (w *Weighted[L]) Sample(rng *rand.Rand) L {
	if w.total <= 0 {
		return w.fallback
	}
	r := rng.Float64() * w.total
	i, _ := slices.BinarySearchFunc(w.cumulative, r, func(c, target float64) int {
		if c <= target {
			return -1
		}
		return 1
	})
	if i >= len(w.labels) {
		i = len(w.labels) - 1
	}
	return w.labels[i]
}

// Labels returns the labels that can be drawn, in draw order.
func (w *Weighted[L]) Labels() []L {
	return slices.Clone(w.labels)
}

// Chance returns true with probability percent/100.
func Chance(rng *rand.Rand, percent float64) bool {
	return rng.Float64()*100 < percent
}

// Pick returns a uniformly chosen element of items. items must not be empty.
func Pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// NewRand returns a PCG-backed rng. A zero seed draws a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
