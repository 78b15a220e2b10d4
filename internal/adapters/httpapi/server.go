// Package httpapi exposes the trading service as a JSON API for the dashboard.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/Rigaud3000/StarTrader/internal/strategy/sweep"
)

// Service is the subset of the application service the API calls.
type Service interface {
	RunBacktest(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestResult, error)
	GetBacktest(ctx context.Context, backtestID string) (*domain.BacktestResult, error)
	ListBacktests(ctx context.Context, strategyID string) ([]*domain.BacktestResult, error)
	SweepBacktest(ctx context.Context, req domain.BacktestRequest, runs int, seed uint64) (*sweep.Report, error)
	SynthesizeBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	CreateStrategy(ctx context.Context, st *domain.Strategy) error
	GetStrategy(ctx context.Context, strategyID string) (*domain.Strategy, error)
	ListStrategies(ctx context.Context) ([]*domain.Strategy, error)
	UpdateStrategy(ctx context.Context, strategyID string, changes *domain.Strategy) (*domain.Strategy, error)
	DeleteStrategy(ctx context.Context, strategyID string) error

	Journal(ctx context.Context, limit int) ([]*domain.JournalEntry, error)
	Trades(ctx context.Context, limit int) ([]*domain.Trade, error)
	GetSettings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error

	ConnectTerminal(ctx context.Context, login, server string) (*domain.AccountInfo, error)
	DisconnectTerminal(ctx context.Context) error
	TerminalStatus(ctx context.Context) domain.ConnectionStatus

	EvaluateSignal(ctx context.Context, symbol string) (*domain.Decision, error)
}

// Server routes HTTP requests to the service.
type Server struct {
	svc     Service
	logger  ports.Logger
	handler http.Handler
	started time.Time
}

// NewServer builds the router and its middleware chain.
func NewServer(svc Service, logger ports.Logger) *Server {
	s := &Server{svc: svc, logger: logger, started: time.Now()}
	s.handler = s.withRequestID(s.withRecover(s.routes()))
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/strategies", s.handleListStrategies)
	mux.HandleFunc("POST /api/strategies", s.handleCreateStrategy)
	mux.HandleFunc("GET /api/strategies/{id}", s.handleGetStrategy)
	mux.HandleFunc("PUT /api/strategies/{id}", s.handleUpdateStrategy)
	mux.HandleFunc("DELETE /api/strategies/{id}", s.handleDeleteStrategy)

	mux.HandleFunc("POST /api/backtests", s.handleRunBacktest)
	mux.HandleFunc("POST /api/backtests/sweep", s.handleSweepBacktest)
	mux.HandleFunc("GET /api/backtests", s.handleListBacktests)
	mux.HandleFunc("GET /api/backtests/{id}", s.handleGetBacktest)
	mux.HandleFunc("GET /api/bars", s.handleBars)

	mux.HandleFunc("GET /api/journal", s.handleJournal)
	mux.HandleFunc("GET /api/trades", s.handleTrades)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleSaveSettings)

	mux.HandleFunc("POST /api/mt5/connect", s.handleConnect)
	mux.HandleFunc("POST /api/mt5/disconnect", s.handleDisconnect)
	mux.HandleFunc("GET /api/mt5/status", s.handleStatus)

	mux.HandleFunc("POST /api/signals/evaluate", s.handleEvaluateSignal)
	return mux
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info(ctx, "HTTP API listening", map[string]interface{}{"addr": ln.Addr().String()})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "Shutting down HTTP API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
