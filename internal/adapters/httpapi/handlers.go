package httpapi

import (
	"net/http"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/ports"
	"github.com/Rigaud3000/StarTrader/internal/strategy/backtesting"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.svc.TerminalStatus(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"uptimeSec": int64(time.Since(s.started).Seconds()),
		"terminal":  status.State,
	})
}

// --- Strategies ---

type strategyBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Symbol      string `json:"symbol"`
	Timeframe   string `json:"timeframe"`
	Code        string `json:"code"`
	Active      bool   `json:"active"`
}

func (b strategyBody) toDomain() *domain.Strategy {
	return &domain.Strategy{
		Name:        b.Name,
		Description: b.Description,
		Symbol:      b.Symbol,
		Timeframe:   b.Timeframe,
		Code:        b.Code,
		Active:      b.Active,
	}
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListStrategies(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var body strategyBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	st := body.toDomain()
	if err := s.svc.CreateStrategy(r.Context(), st); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.GetStrategy(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpdateStrategy(w http.ResponseWriter, r *http.Request) {
	var body strategyBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := s.svc.UpdateStrategy(r.Context(), r.PathValue("id"), body.toDomain())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteStrategy(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Backtests ---

type backtestBody struct {
	StrategyID     string  `json:"strategyId"`
	Symbol         string  `json:"symbol"`
	Timeframe      string  `json:"timeframe"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	InitialBalance float64 `json:"initialBalance"`
}

// toRequest converts the body. A date that does not parse stays zero, so the
// returned ValidationError lists it alongside every other offending field.
func (b backtestBody) toRequest() (domain.BacktestRequest, error) {
	req := domain.BacktestRequest{
		StrategyID:     b.StrategyID,
		Symbol:         b.Symbol,
		Timeframe:      b.Timeframe,
		InitialBalance: b.InitialBalance,
	}
	req.StartDate, _ = domain.ParseDate(b.StartDate)
	req.EndDate, _ = domain.ParseDate(b.EndDate)
	if err := backtesting.ValidateRequest(req); err != nil {
		return req, err
	}
	return req, nil
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var body backtestBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.svc.RunBacktest(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type sweepBody struct {
	backtestBody
	Runs int    `json:"runs"`
	Seed uint64 `json:"seed"`
}

func (s *Server) handleSweepBacktest(w http.ResponseWriter, r *http.Request) {
	var body sweepBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.svc.SweepBacktest(r.Context(), req, body.Runs, body.Seed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListBacktests(r.Context(), r.URL.Query().Get("strategyId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.GetBacktest(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var bad []string
	start, err := domain.ParseDate(q.Get("start"))
	if err != nil || start.IsZero() {
		bad = append(bad, "start")
	}
	end, err := domain.ParseDate(q.Get("end"))
	if err != nil || end.IsZero() {
		bad = append(bad, "end")
	}
	if len(bad) > 0 {
		s.writeError(w, r, ports.NewValidationError(bad...))
		return
	}

	bars, err := s.svc.SynthesizeBars(r.Context(), q.Get("symbol"), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bars)
}

// --- Journal, trades, settings ---

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.svc.Journal(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	trades, err := s.svc.Trades(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.GetSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := decodeJSON(w, r, &settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.SaveSettings(r.Context(), settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// --- MT5 ---

type connectBody struct {
	Login  string `json:"login"`
	Server string `json:"server"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var body connectBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.svc.ConnectTerminal(r.Context(), body.Login, body.Server); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.TerminalStatus(r.Context()))
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DisconnectTerminal(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.TerminalStatus(r.Context()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.TerminalStatus(r.Context()))
}

// --- Signals ---

type signalBody struct {
	Symbol string `json:"symbol"`
}

func (s *Server) handleEvaluateSignal(w http.ResponseWriter, r *http.Request) {
	var body signalBody
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	decision, err := s.svc.EvaluateSignal(r.Context(), body.Symbol)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}
