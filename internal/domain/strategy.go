package domain

import "time"

// Strategy is a user-defined trading strategy stored by the dashboard.
// Code is kept verbatim and never interpreted.
type Strategy struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Symbol      string    `json:"symbol"`
	Timeframe   string    `json:"timeframe"`
	Code        string    `json:"code"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StrategyInfo is the subset of a strategy the backtest engine needs.
type StrategyInfo struct {
	ID   string
	Name string
}
