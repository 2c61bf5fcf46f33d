// Package sequtil holds the small pure sequence helpers the quiz session
// needs at boot: random permutation and first-occurrence deduplication.
package sequtil

import "math/rand"

// Shuffle returns a uniformly random permutation of items using the given
// source. The input slice is not mutated.
func Shuffle[T any](rnd *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	// Fisher-Yates
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// DistinctByID keeps the first occurrence of each ID, preserving the
// relative order of first occurrences. The input slice is not mutated.
func DistinctByID[T any, K comparable](items []T, id func(T) K) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := id(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
