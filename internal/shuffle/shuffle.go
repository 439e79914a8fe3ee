package shuffle

import (
	"math/rand"
	"time"
)

// Source is the randomness a shuffle draws from. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// NewSource returns a seeded source. A zero seed uses the wall clock.
func NewSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Shuffle permutes s in place with a backward Fisher–Yates pass.
func Shuffle[T any](rng Source, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// Shuffled returns a shuffled copy and leaves s untouched.
func Shuffled[T any](rng Source, s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	Shuffle(rng, out)
	return out
}

// Order returns a random arrangement of 0..n-1.
func Order(rng Source, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	Shuffle(rng, out)
	return out
}
