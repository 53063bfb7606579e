package population

import (
	"time"

	"golang.org/x/exp/rand"
)

// NewRand returns the generator owned by one synthesis run. A nil seed draws
// one from the clock; the chosen seed is returned so the run can be repeated.
func NewRand(seed *uint64) (*rand.Rand, uint64) {
	s := uint64(time.Now().UnixNano())
	if seed != nil {
		s = *seed
	}
	return rand.New(rand.NewSource(s)), s
}
