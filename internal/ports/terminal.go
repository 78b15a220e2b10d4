package ports

import (
	"context"

	"github.com/Rigaud3000/StarTrader/internal/domain"
)

// OrderResponse represents the essential details returned after placing an order.
type OrderResponse struct {
	OrderID string           // Terminal's order ticket
	Symbol  string           // Symbol for the order
	Side    domain.OrderSide // BUY or SELL
	Volume  float64          // Lots filled
	Price   float64          // Fill price
}

// Terminal defines the interface for the MetaTrader-5 style broker connection.
// The only implementation is a mock; nothing here reaches a real terminal.
type Terminal interface {
	// Connect logs into the terminal account.
	Connect(ctx context.Context, login, server string) (*domain.AccountInfo, error)
	// Disconnect closes the session. Disconnecting twice is not an error.
	Disconnect(ctx context.Context) error
	// Status returns the current connection snapshot.
	Status(ctx context.Context) domain.ConnectionStatus
	// AccountInfo returns the account details; ErrNotConnected if disconnected.
	AccountInfo(ctx context.Context) (*domain.AccountInfo, error)
	// PlaceMarketOrder fills a market order at the given price.
	PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, volume, price float64) (*OrderResponse, error)
}
