package store

import "math/rand"

// SampleIndices draws min(n, len(pool)) distinct elements of pool in random
// order. It runs a partial Fisher–Yates shuffle over a copy of pool: at step i
// one of the not-yet-drawn candidates is picked uniformly and swapped into
// place, so every draw terminates and no element repeats. pool is not modified.
func SampleIndices(rng *rand.Rand, pool []int, n int) []int {
	candidates := append([]int(nil), pool...)
	if n > len(candidates) {
		n = len(candidates)
	}
	if n <= 0 {
		return []int{}
	}

	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:n:n]
}

// IndexRange returns [0, n).
func IndexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
