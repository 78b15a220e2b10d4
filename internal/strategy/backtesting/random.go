package backtesting

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/ports"
)

// NewRandFactory returns a factory that hands each run its own PCG source.
// With a non-zero seed every run gets an identically seeded source, which makes
// runs reproducible. With seed 0 sources are seeded from the clock and a counter.
func NewRandFactory(seed uint64) ports.RandFactory {
	if seed != 0 {
		return func() ports.Rand {
			return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		}
	}
	var counter atomic.Uint64
	return func() ports.Rand {
		n := counter.Add(1)
		return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), n))
	}
}
