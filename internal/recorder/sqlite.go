package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

// SQLiteRecorder persists results to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger arbor.ILogger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger arbor.ILogger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = arbor.NewLogger()
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("SQLite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticker_stats (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id             TEXT,
			symbol             TEXT NOT NULL,
			industry           TEXT NOT NULL,
			period_end         TEXT NOT NULL,
			pe_ratio           REAL,
			revenue_growth_qoq REAL,
			net_income_ttm     REAL,
			debt_ratio         REAL,
			created_at         INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticker_stats_symbol ON ticker_stats(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_ticker_stats_industry ON ticker_stats(industry)`,
		`CREATE INDEX IF NOT EXISTS idx_ticker_stats_period_end ON ticker_stats(period_end)`,

		`CREATE TABLE IF NOT EXISTS industry_aggregations (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			industry           TEXT NOT NULL UNIQUE,
			avg_pe_ratio       REAL,
			avg_revenue_growth REAL,
			total_revenue      REAL,
			created_at         INTEGER NOT NULL,
			updated_at         INTEGER NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", head(s, 40), err)
		}
	}
	return nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

const insertTicker = `INSERT INTO ticker_stats
	(run_id, symbol, industry, period_end, pe_ratio, revenue_growth_qoq, net_income_ttm, debt_ratio, created_at)
	VALUES (?,?,?,?,?,?,?,?,?)`

const selectTicker = `SELECT id, run_id, symbol, industry, period_end,
	pe_ratio, revenue_growth_qoq, net_income_ttm, debt_ratio, created_at
	FROM ticker_stats`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTickerRow(ctx context.Context, db execer, t *model.TickerResult, now time.Time) error {
	res, err := db.ExecContext(ctx, insertTicker,
		t.RunID, t.Symbol, t.Industry, t.PeriodEnd.Format(model.DateLayout),
		t.PERatio, t.RevenueGrowthQoQ, t.NetIncomeTTM, t.DebtRatio,
		now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert ticker %s: %w", t.Symbol, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		t.ID = id
	}
	t.CreatedAt = now
	return nil
}

func (r *SQLiteRecorder) SaveTicker(ctx context.Context, t *model.TickerResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return insertTickerRow(ctx, r.db, t, time.Now().UTC().Truncate(time.Second))
}

func (r *SQLiteRecorder) BulkSaveTickers(ctx context.Context, tickers []model.TickerResult) error {
	if len(tickers) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)
	for i := range tickers {
		if err := insertTickerRow(ctx, tx, &tickers[i], now); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tickers: %w", err)
	}
	r.logger.Debug().Int("rows", len(tickers)).Msg("Ticker results saved")
	return nil
}

func (r *SQLiteRecorder) GetAllTickers(ctx context.Context) ([]model.TickerResult, error) {
	rows, err := r.db.QueryContext(ctx, selectTicker+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	var out []model.TickerResult
	for rows.Next() {
		t, err := scanTicker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) GetTickerBySymbol(ctx context.Context, symbol string) (*model.TickerResult, error) {
	row := r.db.QueryRowContext(ctx, selectTicker+` WHERE symbol = ? ORDER BY id DESC LIMIT 1`, symbol)
	t, err := scanTicker(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTicker(s scanner) (*model.TickerResult, error) {
	var (
		t         model.TickerResult
		runID     sql.NullString
		periodEnd string
		createdAt int64
	)
	err := s.Scan(&t.ID, &runID, &t.Symbol, &t.Industry, &periodEnd,
		&t.PERatio, &t.RevenueGrowthQoQ, &t.NetIncomeTTM, &t.DebtRatio, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan ticker: %w", err)
	}
	t.RunID = runID.String
	if t.PeriodEnd, err = time.Parse(model.DateLayout, periodEnd); err != nil {
		return nil, fmt.Errorf("parse period_end %q: %w", periodEnd, err)
	}
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &t, nil
}

func (r *SQLiteRecorder) SaveOrUpdateIndustryAggregate(ctx context.Context, agg *model.IndustryAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)

	var (
		id        int64
		createdAt int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, created_at FROM industry_aggregations WHERE industry = ?`, agg.Industry,
	).Scan(&id, &createdAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `INSERT INTO industry_aggregations
			(industry, avg_pe_ratio, avg_revenue_growth, total_revenue, created_at, updated_at)
			VALUES (?,?,?,?,?,?)`,
			agg.Industry, agg.AvgPERatio, agg.AvgRevenueGrowth, agg.TotalRevenue, now.Unix(), now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert aggregate %s: %w", agg.Industry, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert aggregate %s: %w", agg.Industry, err)
		}
		createdAt = now.Unix()
	case err != nil:
		return fmt.Errorf("lookup aggregate %s: %w", agg.Industry, err)
	default:
		if _, err := tx.ExecContext(ctx, `UPDATE industry_aggregations
			SET avg_pe_ratio = ?, avg_revenue_growth = ?, total_revenue = ?, updated_at = ?
			WHERE id = ?`,
			agg.AvgPERatio, agg.AvgRevenueGrowth, agg.TotalRevenue, now.Unix(), id,
		); err != nil {
			return fmt.Errorf("update aggregate %s: %w", agg.Industry, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit aggregate %s: %w", agg.Industry, err)
	}
	agg.ID = id
	agg.CreatedAt = time.Unix(createdAt, 0).UTC()
	agg.UpdatedAt = now
	return nil
}

const selectAggregate = `SELECT id, industry, avg_pe_ratio, avg_revenue_growth, total_revenue, created_at, updated_at
	FROM industry_aggregations`

func (r *SQLiteRecorder) GetAllIndustryAggregates(ctx context.Context) ([]model.IndustryAggregate, error) {
	rows, err := r.db.QueryContext(ctx, selectAggregate+` ORDER BY industry`)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer rows.Close()

	var out []model.IndustryAggregate
	for rows.Next() {
		a, err := scanAggregate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) GetIndustryAggregateByName(ctx context.Context, industry string) (*model.IndustryAggregate, error) {
	a, err := scanAggregate(r.db.QueryRowContext(ctx, selectAggregate+` WHERE industry = ?`, industry))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

func scanAggregate(s scanner) (*model.IndustryAggregate, error) {
	var (
		a                    model.IndustryAggregate
		createdAt, updatedAt int64
	)
	err := s.Scan(&a.ID, &a.Industry, &a.AvgPERatio, &a.AvgRevenueGrowth, &a.TotalRevenue, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan aggregate: %w", err)
	}
	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	a.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &a, nil
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("Closing SQLite recorder")
	return r.db.Close()
}

var _ Recorder = (*SQLiteRecorder)(nil)
