package collector

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/guregu/null/v6"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

// MockQuarter is one canned statement period. Period is "Q1".."Q4" or "FY".
type MockQuarter struct {
	Period    string
	End       time.Time
	Revenue   null.Float
	NetIncome null.Float
	EPS       null.Float
}

// MockBalance is one canned balance sheet period.
type MockBalance struct {
	Period      string
	End         time.Time
	TotalDebt   null.Float
	TotalEquity null.Float
}

// MockCompany describes a symbol served by MockFetcher.
type MockCompany struct {
	Industry   string
	NoProfile  bool
	Income     []MockQuarter
	Balance    []MockBalance
	Closes     []null.Float // newest first, one per trading day ending at AsOf
	AsOf       time.Time
	Delay      time.Duration
	ProfileErr error
	FetchErr   error
}

// MockFetcher returns controllable fixed data for development and testing.
// Payloads are rendered in the same shapes the Fiindo API returns.
type MockFetcher struct {
	Symbols   []string
	Companies map[string]MockCompany
	ListErr   error

	mu    sync.Mutex
	calls map[string]map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) ListSymbols(_ context.Context) ([]string, error) {
	m.record("", "symbols")
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if m.Symbols != nil {
		return append([]string(nil), m.Symbols...), nil
	}
	symbols := make([]string, 0, len(m.Companies))
	for s := range m.Companies {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (m *MockFetcher) GetProfile(ctx context.Context, symbol string) (json.RawMessage, error) {
	m.record(symbol, "profile")
	c, err := m.company(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if c.ProfileErr != nil {
		return nil, c.ProfileErr
	}
	profile := []map[string]any{}
	if !c.NoProfile {
		profile = append(profile, map[string]any{"symbol": symbol, "industry": c.Industry})
	}
	return json.Marshal(map[string]any{
		"symbol":       symbol,
		"fundamentals": map[string]any{"profile": map[string]any{"data": profile}},
	})
}

func (m *MockFetcher) GetFinancialStatement(ctx context.Context, symbol, statement string) (json.RawMessage, error) {
	if err := ValidateStatement(statement); err != nil {
		return nil, err
	}
	m.record(symbol, statement)
	c, err := m.company(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}

	var rows []map[string]any
	switch statement {
	case StatementIncome:
		for _, q := range c.Income {
			row := statementRow(symbol, q.Period, q.End)
			putFloat(row, "revenue", q.Revenue)
			putFloat(row, "netIncome", q.NetIncome)
			putFloat(row, "eps", q.EPS)
			rows = append(rows, row)
		}
	case StatementBalanceSheet:
		for _, b := range c.Balance {
			row := statementRow(symbol, b.Period, b.End)
			putFloat(row, "totalDebt", b.TotalDebt)
			putFloat(row, "totalEquity", b.TotalEquity)
			rows = append(rows, row)
		}
	}
	return json.Marshal(map[string]any{
		"fundamentals": map[string]any{
			"financials": map[string]any{
				statement: map[string]any{"data": rows},
			},
		},
	})
}

func (m *MockFetcher) GetEndOfDayPrices(ctx context.Context, symbol string) (json.RawMessage, error) {
	m.record(symbol, "eod")
	c, err := m.company(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if c.FetchErr != nil {
		return nil, c.FetchErr
	}
	asOf := c.AsOf
	if asOf.IsZero() {
		asOf = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	}
	rows := make([]map[string]any, 0, len(c.Closes))
	for i, cl := range c.Closes {
		row := map[string]any{"date": asOf.AddDate(0, 0, -i).Format(model.DateLayout)}
		putFloat(row, "close", cl)
		rows = append(rows, row)
	}
	return json.Marshal(map[string]any{"stockprice": map[string]any{"data": rows}})
}

// Calls returns how many requests of the given kind were made for symbol.
// Kinds are "profile", "eod" and the statement names.
func (m *MockFetcher) Calls(symbol, kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol][kind]
}

// FinancialCalls returns the number of statement and price requests for symbol.
func (m *MockFetcher) FinancialCalls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for kind, c := range m.calls[symbol] {
		if kind != "profile" {
			n += c
		}
	}
	return n
}

func (m *MockFetcher) record(symbol, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]map[string]int)
	}
	if m.calls[symbol] == nil {
		m.calls[symbol] = make(map[string]int)
	}
	m.calls[symbol][kind]++
}

func (m *MockFetcher) company(ctx context.Context, symbol string) (MockCompany, error) {
	c, ok := m.Companies[symbol]
	if !ok {
		return MockCompany{}, &UpstreamError{Endpoint: "/api/v1/general/" + symbol, StatusCode: 404, Message: "symbol not found"}
	}
	if c.Delay > 0 {
		select {
		case <-time.After(c.Delay):
		case <-ctx.Done():
			return MockCompany{}, &UpstreamError{Endpoint: symbol, Err: ctx.Err()}
		}
	}
	return c, nil
}

func statementRow(symbol, period string, end time.Time) map[string]any {
	return map[string]any{
		"symbol":       symbol,
		"period":       period,
		"date":         end.Format(model.DateLayout),
		"calendarYear": end.Year(),
	}
}

func putFloat(row map[string]any, key string, v null.Float) {
	if v.Valid {
		row[key] = v.Float64
	}
}
