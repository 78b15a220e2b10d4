package domain

import "time"

// Bar represents a single OHLC candlestick for a fixed interval.
type Bar struct {
	Time       time.Time `json:"time"`        // Start time of the interval
	Open       float64   `json:"open"`        // Opening price
	High       float64   `json:"high"`        // Highest price
	Low        float64   `json:"low"`         // Lowest price
	Close      float64   `json:"close"`       // Closing price
	TickVolume int64     `json:"tick_volume"` // Number of ticks in the interval
	Spread     int64     `json:"spread"`      // Spread in points
	RealVolume int64     `json:"real_volume"` // Exchange volume (always 0 for synthesized bars)
}
