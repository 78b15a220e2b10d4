package domain

import "time"

// JournalEntryType classifies journal entries.
type JournalEntryType string

const (
	JournalInfo     JournalEntryType = "info"
	JournalTrade    JournalEntryType = "trade"
	JournalSignal   JournalEntryType = "signal"
	JournalError    JournalEntryType = "error"
	JournalBacktest JournalEntryType = "backtest"
)

// JournalEntry is one line of the activity journal shown on the dashboard.
type JournalEntry struct {
	ID        string           `json:"id"`
	Type      JournalEntryType `json:"type"`
	Message   string           `json:"message"`
	Symbol    string           `json:"symbol,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Settings holds the user-tunable trading configuration.
type Settings struct {
	RiskPercent         float64 `json:"riskPercent"` // Percent of balance risked per trade
	MaxOpenTrades       int     `json:"maxOpenTrades"`
	MLEnabled           bool    `json:"mlEnabled"`
	ConfidenceThreshold float64 `json:"confidenceThreshold"`
	DefaultSymbol       string  `json:"defaultSymbol"`
	DefaultTimeframe    string  `json:"defaultTimeframe"`
}

// DefaultSettings returns the settings used until the user saves their own.
func DefaultSettings() Settings {
	return Settings{
		RiskPercent:         1.0,
		MaxOpenTrades:       5,
		MLEnabled:           true,
		ConfidenceThreshold: 0.55,
		DefaultSymbol:       "EURUSD",
		DefaultTimeframe:    "H1",
	}
}
