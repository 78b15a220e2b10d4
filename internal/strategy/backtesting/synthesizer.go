package backtesting

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
)

// DefaultBarInterval is the step between synthesized bars.
const DefaultBarInterval = 5 * time.Minute

// DefaultMaxBars caps a single synthesized series when the caller passes no limit.
const DefaultMaxBars = 1_000_000

// cancelCheckEvery is how many bars are produced between context checks.
const cancelCheckEvery = 4096

// Instrument seeds. JPY-quoted pairs trade around 150 with wider moves;
// everything else is treated like EURUSD.
const (
	jpyBasePrice      = 150.0
	jpyVolatility     = 0.5
	defaultBasePrice  = 1.1000
	defaultVolatility = 0.0005
)

// InstrumentProfile returns the seed price and per-bar volatility for a symbol.
func InstrumentProfile(symbol string) (basePrice, volatility float64) {
	if strings.Contains(strings.ToUpper(symbol), "JPY") {
		return jpyBasePrice, jpyVolatility
	}
	return defaultBasePrice, defaultVolatility
}

// SynthesizeBars generates a random-walk OHLC series for symbol covering [start, end)
// at the given interval. A zero interval means DefaultBarInterval. Only bars whose
// whole interval fits inside the range are produced.
//
// start == end (or any span shorter than one interval) yields an empty series.
// start after end fails with ports.ErrInvalidRange. A range holding more than
// maxBars bars fails with a ValidationError on endDate; maxBars <= 0 means
// DefaultMaxBars. Cancelling ctx stops generation with ports.ErrContextCanceled.
func SynthesizeBars(ctx context.Context, rng ports.Rand, symbol string, start, end time.Time, interval time.Duration, maxBars int) ([]domain.Bar, error) {
	if interval == 0 {
		interval = DefaultBarInterval
	}
	if maxBars <= 0 {
		maxBars = DefaultMaxBars
	}
	var invalid []string
	if strings.TrimSpace(symbol) == "" {
		invalid = append(invalid, "symbol")
	}
	if interval < 0 {
		invalid = append(invalid, "interval")
	}
	if len(invalid) > 0 {
		return nil, ports.NewValidationError(invalid...)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ports.ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	// end.Sub saturates at ~292 years, so the limit is checked against
	// start+span before any division.
	if end.After(start.Add(maxSpan(interval, maxBars))) {
		return nil, fmt.Errorf("%w: range holds more than %d bars of %s", ports.NewValidationError("endDate"), maxBars, interval)
	}

	count := int(end.Sub(start) / interval)
	bars := make([]domain.Bar, 0, count)

	lastClose, volatility := InstrumentProfile(symbol)
	for i := 0; i < count; i++ {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("%w: bar synthesis stopped after %d bars: %w", ports.ErrContextCanceled, i, err)
			}
		}
		openPrice := lastClose
		closePrice := openPrice + (rng.Float64()*2-1)*volatility
		high := math.Max(openPrice, closePrice) + rng.Float64()*volatility*0.5
		low := math.Min(openPrice, closePrice) - rng.Float64()*volatility*0.5

		bars = append(bars, domain.Bar{
			Time:       start.Add(time.Duration(i) * interval),
			Open:       openPrice,
			High:       high,
			Low:        low,
			Close:      closePrice,
			TickVolume: int64(100 + rng.IntN(1000)),
			Spread:     int64(5 + rng.IntN(20)),
			RealVolume: 0,
		})
		lastClose = closePrice
	}
	return bars, nil
}

// maxSpan is interval*maxBars, clamped to the largest Duration.
func maxSpan(interval time.Duration, maxBars int) time.Duration {
	if int64(maxBars) > math.MaxInt64/int64(interval) {
		return time.Duration(math.MaxInt64)
	}
	return interval * time.Duration(maxBars)
}
