package game

import (
	"math/rand"
	"time"
)

// NewRNG returns the random source for a session and the seed it used.
// A seed of 0 means a time-based seed is generated, which is returned so
// the run can be reproduced.
func NewRNG(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}
