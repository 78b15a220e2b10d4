package domain

import "time"

// SimulatedTrade is one entry of a backtest trade ledger.
type SimulatedTrade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Side       OrderSide `json:"type"`
	OpenPrice  float64   `json:"openPrice"`
	ClosePrice float64   `json:"closePrice"`
	Volume     float64   `json:"volume"` // Lots
	Profit     float64   `json:"profit"`
	OpenTime   time.Time `json:"openTime"`
	CloseTime  time.Time `json:"closeTime"`
}

// IsWin reports whether the trade closed with a positive profit.
func (t SimulatedTrade) IsWin() bool {
	return t.Profit > 0
}

// Trade statuses.
const (
	TradeStatusOpen   = "open"
	TradeStatusClosed = "closed"
)

// Trade represents an order executed on the (mock) terminal by the signal pipeline.
type Trade struct {
	ID         string     `json:"id"`
	StrategyID string     `json:"strategyId,omitempty"`
	Symbol     string     `json:"symbol"`
	Side       OrderSide  `json:"type"`
	Volume     float64    `json:"volume"`
	OpenPrice  float64    `json:"openPrice"`
	Confidence float64    `json:"confidence"`
	Status     string     `json:"status"` // "open" or "closed"
	OpenTime   time.Time  `json:"openTime"`
	CloseTime  *time.Time `json:"closeTime,omitempty"`
	Profit     float64    `json:"profit"`
}
