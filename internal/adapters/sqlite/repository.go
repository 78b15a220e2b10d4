package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Rigaud3000/StarTrader/internal/domain"
	"github.com/Rigaud3000/StarTrader/internal/id"
	"github.com/Rigaud3000/StarTrader/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout is fixed width so that TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Repository implements ports.Store using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
	now    func() time.Time
}

var _ ports.Store = (*Repository)(nil)

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/startrader.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger, now: time.Now}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS strategies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		symbol TEXT NOT NULL DEFAULT '',
		timeframe TEXT NOT NULL DEFAULT '',
		code TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS backtests (
		id TEXT PRIMARY KEY,
		strategy_id TEXT NOT NULL,
		strategy_name TEXT NOT NULL,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		initial_balance REAL NOT NULL,
		final_balance REAL NOT NULL,
		total_trades INTEGER NOT NULL,
		winning_trades INTEGER NOT NULL,
		losing_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		total_profit REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		sharpe_ratio REAL NOT NULL,
		profit_factor REAL NOT NULL,
		stats TEXT NOT NULL DEFAULT '{}', -- JSON object
		equity_curve TEXT NOT NULL, -- JSON array
		trades TEXT NOT NULL,       -- JSON array
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS journal (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		symbol TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		strategy_id TEXT NOT NULL DEFAULT '',
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		volume REAL NOT NULL,
		open_price REAL NOT NULL,
		confidence REAL NOT NULL,
		status TEXT NOT NULL,
		open_time TEXT NOT NULL,
		close_time TEXT NULL,
		profit REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL -- JSON object
	);

	CREATE INDEX IF NOT EXISTS idx_backtests_strategy_created ON backtests (strategy_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_journal_created ON journal (created_at);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades (status);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	// Databases created before trade stats were stored lack the column.
	return r.ensureColumn(ctx, "backtests", "stats", `TEXT NOT NULL DEFAULT '{}'`)
}

// ensureColumn adds column to table when it is missing.
func (r *Repository) ensureColumn(ctx context.Context, table, column, decl string) error {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to inspect table %s: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	rows.Close()

	if _, err := r.db.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, decl)); err != nil {
		return fmt.Errorf("failed to add column %s.%s: %w", table, column, err)
	}
	r.logger.Info(ctx, "Database column added", map[string]interface{}{"table": table, "column": column})
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// --- StrategyRepository Implementation ---

// Create saves a new strategy, assigning its ID and timestamps.
func (r *Repository) Create(ctx context.Context, s *domain.Strategy) error {
	const query = `
	INSERT INTO strategies (id, name, description, symbol, timeframe, code, active, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := r.now().UTC()
	newID := id.At(now)
	_, err := r.db.ExecContext(ctx, query,
		newID, s.Name, s.Description, s.Symbol, s.Timeframe, s.Code, s.Active, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("%w: failed to insert strategy %q: %w", ports.ErrUpdateFailed, s.Name, err)
	}
	s.ID = newID
	s.CreatedAt = now
	s.UpdatedAt = now
	r.logger.Debug(ctx, "Strategy created", map[string]interface{}{"strategyID": s.ID, "name": s.Name})
	return nil
}

// Update modifies an existing strategy based on its ID.
func (r *Repository) Update(ctx context.Context, s *domain.Strategy) error {
	const query = `
	UPDATE strategies
	SET name = ?, description = ?, symbol = ?, timeframe = ?, code = ?, active = ?, updated_at = ?
	WHERE id = ?`

	now := r.now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		s.Name, s.Description, s.Symbol, s.Timeframe, s.Code, s.Active, formatTime(now), s.ID)
	if err != nil {
		return fmt.Errorf("%w: failed to update strategy ID %s: %w", ports.ErrUpdateFailed, s.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for update strategy ID %s: %w", s.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("strategy ID %s not found for update: %w", s.ID, ports.ErrNotFound)
	}
	s.UpdatedAt = now
	r.logger.Debug(ctx, "Strategy updated", map[string]interface{}{"strategyID": s.ID})
	return nil
}

// Delete removes a strategy. Backtests that reference it are kept.
func (r *Repository) Delete(ctx context.Context, strategyID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM strategies WHERE id = ?`, strategyID)
	if err != nil {
		return fmt.Errorf("%w: strategy ID %s: %w", ports.ErrDeleteFailed, strategyID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete strategy ID %s: %w", strategyID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("strategy ID %s not found for delete: %w", strategyID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Strategy deleted", map[string]interface{}{"strategyID": strategyID})
	return nil
}

const strategyColumns = `id, name, description, symbol, timeframe, code, active, created_at, updated_at`

// FindByID retrieves a strategy by its ID.
func (r *Repository) FindByID(ctx context.Context, strategyID string) (*domain.Strategy, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+strategyColumns+` FROM strategies WHERE id = ?`, strategyID)
	s, err := scanStrategy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Strategy not found by ID", map[string]interface{}{"strategyID": strategyID})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("%w: strategy ID %s: %w", ports.ErrQueryFailed, strategyID, err)
	}
	return s, nil
}

// FindAll retrieves all strategies, oldest first.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Strategy, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+strategyColumns+` FROM strategies ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: all strategies: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	strategies := make([]*domain.Strategy, 0)
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy during FindAll: %w", err)
		}
		strategies = append(strategies, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strategy rows: %w", err)
	}
	return strategies, nil
}

// --- BacktestRepository Implementation ---

// CreateBacktest saves a result, assigning its ID and CreatedAt.
// The equity curve and trade ledger are stored as JSON.
func (r *Repository) CreateBacktest(ctx context.Context, res *domain.BacktestResult) error {
	const query = `
	INSERT INTO backtests (id, strategy_id, strategy_name, symbol, timeframe, start_date, end_date,
	                       initial_balance, final_balance, total_trades, winning_trades, losing_trades,
	                       win_rate, total_profit, max_drawdown, sharpe_ratio, profit_factor,
	                       stats, equity_curve, trades, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stats, err := json.Marshal(res.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode trade stats: %w", err)
	}
	curve, err := json.Marshal(nonNil(res.EquityCurve))
	if err != nil {
		return fmt.Errorf("failed to encode equity curve: %w", err)
	}
	trades, err := json.Marshal(nonNil(res.Trades))
	if err != nil {
		return fmt.Errorf("failed to encode trade ledger: %w", err)
	}

	now := r.now().UTC()
	newID := id.At(now)
	_, err = r.db.ExecContext(ctx, query,
		newID, res.StrategyID, res.StrategyName, res.Symbol, res.Timeframe,
		formatTime(res.StartDate), formatTime(res.EndDate),
		res.InitialBalance, res.FinalBalance, res.TotalTrades, res.WinningTrades, res.LosingTrades,
		res.WinRate, res.TotalProfit, res.MaxDrawdown, res.SharpeRatio, res.ProfitFactor,
		string(stats), string(curve), string(trades), formatTime(now))
	if err != nil {
		return fmt.Errorf("%w: failed to insert backtest for strategy %s: %w", ports.ErrUpdateFailed, res.StrategyID, err)
	}
	res.ID = newID
	res.CreatedAt = now
	r.logger.Debug(ctx, "Backtest stored", map[string]interface{}{"backtestID": res.ID, "strategyID": res.StrategyID})
	return nil
}

const backtestColumns = `id, strategy_id, strategy_name, symbol, timeframe, start_date, end_date,
	initial_balance, final_balance, total_trades, winning_trades, losing_trades,
	win_rate, total_profit, max_drawdown, sharpe_ratio, profit_factor, stats, equity_curve, trades, created_at`

// FindBacktestByID retrieves a backtest result by its ID.
func (r *Repository) FindBacktestByID(ctx context.Context, backtestID string) (*domain.BacktestResult, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+backtestColumns+` FROM backtests WHERE id = ?`, backtestID)
	res, err := scanBacktest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: backtest ID %s: %w", ports.ErrQueryFailed, backtestID, err)
	}
	return res, nil
}

// FindBacktests retrieves all backtest results, newest first.
func (r *Repository) FindBacktests(ctx context.Context) ([]*domain.BacktestResult, error) {
	return r.queryBacktests(ctx, `SELECT `+backtestColumns+` FROM backtests ORDER BY created_at DESC, id DESC`)
}

// FindBacktestsByStrategy retrieves the results of one strategy, newest first.
func (r *Repository) FindBacktestsByStrategy(ctx context.Context, strategyID string) ([]*domain.BacktestResult, error) {
	return r.queryBacktests(ctx,
		`SELECT `+backtestColumns+` FROM backtests WHERE strategy_id = ? ORDER BY created_at DESC, id DESC`, strategyID)
}

func (r *Repository) queryBacktests(ctx context.Context, query string, args ...interface{}) ([]*domain.BacktestResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: backtests: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	results := make([]*domain.BacktestResult, 0)
	for rows.Next() {
		res, err := scanBacktest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backtest: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating backtest rows: %w", err)
	}
	return results, nil
}

// --- JournalRepository Implementation ---

// AddEntry saves a journal entry, assigning its ID and CreatedAt.
func (r *Repository) AddEntry(ctx context.Context, e *domain.JournalEntry) error {
	now := r.now().UTC()
	newID := id.At(now)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO journal (id, type, message, symbol, created_at) VALUES (?, ?, ?, ?, ?)`,
		newID, string(e.Type), e.Message, e.Symbol, formatTime(now))
	if err != nil {
		return fmt.Errorf("%w: failed to insert journal entry: %w", ports.ErrUpdateFailed, err)
	}
	e.ID = newID
	e.CreatedAt = now
	return nil
}

// RecentEntries returns up to limit entries, newest first.
func (r *Repository) RecentEntries(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, message, symbol, created_at FROM journal ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: journal: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	entries := make([]*domain.JournalEntry, 0)
	for rows.Next() {
		e := &domain.JournalEntry{}
		var entryType, createdAt string
		if err := rows.Scan(&e.ID, &entryType, &e.Message, &e.Symbol, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Type = domain.JournalEntryType(entryType)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal rows: %w", err)
	}
	return entries, nil
}

// --- TradeRepository Implementation ---

// CreateTrade saves a new trade record, assigning its ID.
func (r *Repository) CreateTrade(ctx context.Context, t *domain.Trade) error {
	const query = `
	INSERT INTO trades (id, strategy_id, symbol, side, volume, open_price, confidence, status, open_time, close_time, profit)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if t.OpenTime.IsZero() {
		t.OpenTime = r.now().UTC()
	}
	var closeTime sql.NullString
	if t.CloseTime != nil {
		closeTime = sql.NullString{String: formatTime(*t.CloseTime), Valid: true}
	}

	newID := id.At(t.OpenTime)
	_, err := r.db.ExecContext(ctx, query,
		newID, t.StrategyID, t.Symbol, string(t.Side), t.Volume, t.OpenPrice, t.Confidence, t.Status,
		formatTime(t.OpenTime), closeTime, t.Profit)
	if err != nil {
		return fmt.Errorf("%w: failed to insert trade for symbol %s: %w", ports.ErrUpdateFailed, t.Symbol, err)
	}
	t.ID = newID
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": t.ID, "symbol": t.Symbol, "side": string(t.Side)})
	return nil
}

// FindTrades returns up to limit trades, newest first.
func (r *Repository) FindTrades(ctx context.Context, limit int) ([]*domain.Trade, error) {
	const query = `
	SELECT id, strategy_id, symbol, side, volume, open_price, confidence, status, open_time, close_time, profit
	FROM trades ORDER BY open_time DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: trades: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// CountOpenTrades counts trades with status "open".
func (r *Repository) CountOpenTrades(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades WHERE status = ?`, domain.TradeStatusOpen).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: count open trades: %w", ports.ErrQueryFailed, err)
	}
	return count, nil
}

// --- SettingsRepository Implementation ---

// GetSettings returns the stored settings or the defaults.
func (r *Repository) GetSettings(ctx context.Context) (domain.Settings, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM settings WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("%w: settings: %w", ports.ErrQueryFailed, err)
	}
	settings := domain.DefaultSettings()
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the stored settings.
func (r *Repository) SaveSettings(ctx context.Context, s domain.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO settings (id, data) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data`, string(data))
	if err != nil {
		return fmt.Errorf("%w: settings: %w", ports.ErrUpdateFailed, err)
	}
	return nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStrategy(s scanner) (*domain.Strategy, error) {
	st := &domain.Strategy{}
	var createdAt, updatedAt string
	err := s.Scan(&st.ID, &st.Name, &st.Description, &st.Symbol, &st.Timeframe, &st.Code, &st.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	if st.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if st.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return st, nil
}

func scanBacktest(s scanner) (*domain.BacktestResult, error) {
	res := &domain.BacktestResult{}
	var startDate, endDate, stats, curve, trades, createdAt string
	err := s.Scan(
		&res.ID, &res.StrategyID, &res.StrategyName, &res.Symbol, &res.Timeframe, &startDate, &endDate,
		&res.InitialBalance, &res.FinalBalance, &res.TotalTrades, &res.WinningTrades, &res.LosingTrades,
		&res.WinRate, &res.TotalProfit, &res.MaxDrawdown, &res.SharpeRatio, &res.ProfitFactor,
		&stats, &curve, &trades, &createdAt)
	if err != nil {
		return nil, err
	}
	if res.StartDate, err = parseTime(startDate); err != nil {
		return nil, err
	}
	if res.EndDate, err = parseTime(endDate); err != nil {
		return nil, err
	}
	if res.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stats), &res.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode trade stats of backtest %s: %w", res.ID, err)
	}
	if err := json.Unmarshal([]byte(curve), &res.EquityCurve); err != nil {
		return nil, fmt.Errorf("failed to decode equity curve of backtest %s: %w", res.ID, err)
	}
	if err := json.Unmarshal([]byte(trades), &res.Trades); err != nil {
		return nil, fmt.Errorf("failed to decode trades of backtest %s: %w", res.ID, err)
	}
	return res, nil
}

func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var side, openTime string
	var closeTime sql.NullString
	err := s.Scan(&t.ID, &t.StrategyID, &t.Symbol, &side, &t.Volume, &t.OpenPrice, &t.Confidence, &t.Status,
		&openTime, &closeTime, &t.Profit)
	if err != nil {
		return nil, err
	}
	t.Side = domain.OrderSide(side)
	if t.OpenTime, err = parseTime(openTime); err != nil {
		return nil, err
	}
	if closeTime.Valid {
		ct, err := parseTime(closeTime.String)
		if err != nil {
			return nil, err
		}
		t.CloseTime = &ct
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
