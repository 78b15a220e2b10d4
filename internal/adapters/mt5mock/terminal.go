// Package mt5mock simulates a MetaTrader 5 terminal session in memory.
package mt5mock

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/shopspring/decimal"
)

const firstTicket = 100001

// Config holds configuration for the mock terminal.
type Config struct {
	InitialBalance float64
	Currency       string
	Leverage       int
	ContractSize   float64 // Units per lot, used for margin
	Logger         ports.Logger
}

// Terminal implements ports.Terminal without any network access.
type Terminal struct {
	cfg    Config
	logger ports.Logger
	now    func() time.Time

	mu          sync.Mutex
	connected   bool
	login       string
	server      string
	connectedAt time.Time
	balance     decimal.Decimal
	usedMargin  decimal.Decimal
	nextTicket  int64
}

var _ ports.Terminal = (*Terminal)(nil)

// New creates a disconnected mock terminal.
func New(cfg Config) (*Terminal, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for MT5 mock terminal")
	}
	if cfg.InitialBalance <= 0 {
		cfg.InitialBalance = 10000
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if cfg.Leverage <= 0 {
		cfg.Leverage = 100
	}
	if cfg.ContractSize <= 0 {
		cfg.ContractSize = 100_000
	}
	return &Terminal{
		cfg:        cfg,
		logger:     cfg.Logger,
		now:        time.Now,
		balance:    decimal.NewFromFloat(cfg.InitialBalance),
		nextTicket: firstTicket,
	}, nil
}

// Connect opens a session. Login and server must be non-empty.
func (t *Terminal) Connect(ctx context.Context, login, server string) (*domain.AccountInfo, error) {
	var invalid []string
	if strings.TrimSpace(login) == "" {
		invalid = append(invalid, "login")
	}
	if strings.TrimSpace(server) == "" {
		invalid = append(invalid, "server")
	}
	if len(invalid) > 0 {
		return nil, ports.NewValidationError(invalid...)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.connected {
		return nil, fmt.Errorf("%w as %s@%s", ports.ErrAlreadyConnected, t.login, t.server)
	}
	t.connected = true
	t.login = login
	t.server = server
	t.connectedAt = t.now().UTC()
	t.logger.Info(ctx, "MT5 mock terminal connected", map[string]interface{}{"login": login, "server": server})
	return t.accountLocked(), nil
}

// Disconnect closes the session. Disconnecting twice is not an error.
func (t *Terminal) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil
	}
	t.connected = false
	t.connectedAt = time.Time{}
	t.logger.Info(ctx, "MT5 mock terminal disconnected", map[string]interface{}{"login": t.login})
	return nil
}

// Status returns the current connection snapshot.
func (t *Terminal) Status(ctx context.Context) domain.ConnectionStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return domain.ConnectionStatus{State: domain.StateDisconnected}
	}
	return domain.ConnectionStatus{
		State:       domain.StateConnected,
		Account:     t.accountLocked(),
		ConnectedAt: t.connectedAt,
	}
}

// AccountInfo returns the account details.
func (t *Terminal) AccountInfo(ctx context.Context) (*domain.AccountInfo, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil, ports.ErrNotConnected
	}
	return t.accountLocked(), nil
}

// PlaceMarketOrder fills immediately at price if the free margin covers the order.
func (t *Terminal) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, volume, price float64) (*ports.OrderResponse, error) {
	if side != domain.Buy && side != domain.Sell {
		return nil, fmt.Errorf("%w: unknown side %q", ports.ErrOrderRejected, side)
	}
	if strings.TrimSpace(symbol) == "" || volume <= 0 || price <= 0 {
		return nil, fmt.Errorf("%w: symbol, volume and price are required", ports.ErrOrderRejected)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected {
		return nil, ports.ErrNotConnected
	}

	margin := decimal.NewFromFloat(volume).
		Mul(decimal.NewFromFloat(t.cfg.ContractSize)).
		Mul(decimal.NewFromFloat(price)).
		Div(decimal.NewFromInt(int64(t.cfg.Leverage)))
	free := t.balance.Sub(t.usedMargin)
	if margin.GreaterThan(free) {
		t.logger.Warn(ctx, "MT5 mock order rejected: insufficient margin", map[string]interface{}{
			"symbol": symbol, "required": margin.StringFixed(2), "free": free.StringFixed(2),
		})
		return nil, fmt.Errorf("%w: margin %s exceeds free margin %s", ports.ErrOrderRejected, margin.StringFixed(2), free.StringFixed(2))
	}
	t.usedMargin = t.usedMargin.Add(margin)

	ticket := t.nextTicket
	t.nextTicket++

	resp := &ports.OrderResponse{
		OrderID: strconv.FormatInt(ticket, 10),
		Symbol:  symbol,
		Side:    side,
		Volume:  volume,
		Price:   price,
	}
	t.logger.Info(ctx, "MT5 mock order filled", map[string]interface{}{
		"ticket": resp.OrderID, "symbol": symbol, "side": string(side), "volume": volume, "price": price,
	})
	return resp, nil
}

func (t *Terminal) accountLocked() *domain.AccountInfo {
	balance := t.balance.Round(2).InexactFloat64()
	return &domain.AccountInfo{
		Login:    t.login,
		Server:   t.server,
		Currency: t.cfg.Currency,
		Balance:  balance,
		Equity:   balance,
		Leverage: t.cfg.Leverage,
	}
}
