package util

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
)

// QuerySeed returns a stable 64-bit seed for a query.
// Case and surrounding whitespace do not change the seed.
func QuerySeed(query string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	return h.Sum64()
}

// SeededRand returns a deterministic PCG stream for the seed
func SeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
