package domain

import "time"

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// Direction returns +1 for BUY and -1 for SELL.
func (s OrderSide) Direction() float64 {
	if s == Sell {
		return -1
	}
	return 1
}

// ConnectionState represents the state of the terminal connection.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnected    ConnectionState = "connected"
)

// AccountInfo describes the (mock) terminal account.
type AccountInfo struct {
	Login    string  `json:"login"`
	Server   string  `json:"server"`
	Currency string  `json:"currency"`
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Leverage int     `json:"leverage"`
}

// ConnectionStatus is a snapshot of the terminal connection.
type ConnectionStatus struct {
	State       ConnectionState `json:"state"`
	Account     *AccountInfo    `json:"account,omitempty"`
	ConnectedAt time.Time       `json:"connectedAt,omitzero"`
}

// Signal is the outcome of evaluating the indicator strategy on recent bars.
type Signal struct {
	Symbol    string    `json:"symbol"`
	Side      OrderSide `json:"type,omitempty"` // Empty when there is no signal
	Price     float64   `json:"price"`
	FastMA    float64   `json:"fastMa"`
	SlowMA    float64   `json:"slowMa"`
	RSI       float64   `json:"rsi"`
	ATR       float64   `json:"atr"`
	Crossover bool      `json:"crossover"` // Fast and slow MA crossed on the latest bar
	Reason    string    `json:"reason"`
	Generated time.Time `json:"generatedAt"`
}

// HasSignal reports whether the evaluation produced a tradable direction.
func (s Signal) HasSignal() bool {
	return s.Side != ""
}

// Decision is the outcome of the confidence gate for a signal.
type Decision struct {
	Signal     Signal  `json:"signal"`
	Confidence float64 `json:"confidence"`
	Threshold  float64 `json:"threshold"`
	Approved   bool    `json:"approved"`
	Executed   bool    `json:"executed"`
	Trade      *Trade  `json:"trade,omitempty"`
	Reason     string  `json:"reason"`
}
