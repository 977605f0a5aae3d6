package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/collector"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/recorder"
)

const (
	industryX = "Software - Application"
	industryY = "Oil & Gas"
	industryZ = "Banks - Diversified"
)

var industries = []string{industryZ, industryX, "Consumer Electronics"}

func nf(v float64) null.Float { return null.FloatFrom(v) }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// company yields pe=close/eps, growth=(rev-100)/100, ttm=4*q, debt=debt/100.
func company(industry string, close, eps, rev, q, debt float64) collector.MockCompany {
	return collector.MockCompany{
		Industry: industry,
		Income: []collector.MockQuarter{
			{Period: "Q4", End: date(2024, 12, 31), Revenue: nf(rev), NetIncome: nf(q), EPS: nf(eps)},
			{Period: "Q3", End: date(2024, 9, 30), Revenue: nf(100), NetIncome: nf(q)},
			{Period: "Q2", End: date(2024, 6, 30), Revenue: nf(90), NetIncome: nf(q)},
			{Period: "Q1", End: date(2024, 3, 31), Revenue: nf(80), NetIncome: nf(q)},
		},
		Balance: []collector.MockBalance{
			{Period: "FY", End: date(2024, 12, 31), TotalDebt: nf(debt), TotalEquity: nf(100)},
		},
		Closes: []null.Float{nf(close)},
	}
}

func newStore(t *testing.T) *recorder.SQLiteRecorder {
	t.Helper()
	r, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "etl.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRun_EndToEndScenario(t *testing.T) {
	fetcher := &collector.MockFetcher{
		Symbols: []string{"A", "B", "C"},
		Companies: map[string]collector.MockCompany{
			"A": company(industryX, 50, 5, 120, 10, 50),
			"B": company(industryY, 50, 5, 120, 10, 50),
			"C": {ProfileErr: &collector.UpstreamError{Endpoint: "/api/v1/general/C", StatusCode: 502}},
		},
	}
	store := newStore(t)
	ctx := context.Background()

	summary, err := New(fetcher, store, Options{Industries: industries, Workers: 4}, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TickersProcessed)
	assert.Equal(t, 1, summary.IndustriesProcessed)
	assert.Equal(t, 3, summary.SymbolsFetched)
	assert.Equal(t, 1, summary.Filtered)
	assert.Equal(t, 1, summary.UpstreamErrors)
	assert.Zero(t, summary.Failed)
	assert.NotEmpty(t, summary.RunID)

	tickers, err := store.GetAllTickers(ctx)
	require.NoError(t, err)
	require.Len(t, tickers, 1)
	a := tickers[0]
	assert.Equal(t, "A", a.Symbol)
	assert.Equal(t, industryX, a.Industry)
	assert.Equal(t, summary.RunID, a.RunID)
	assert.Equal(t, date(2024, 12, 31), a.PeriodEnd)
	assert.Equal(t, nf(10), a.PERatio)
	assert.InDelta(t, 0.2, a.RevenueGrowthQoQ.Float64, 1e-12)
	assert.Equal(t, nf(40), a.NetIncomeTTM)
	assert.Equal(t, nf(0.5), a.DebtRatio)

	aggs, err := store.GetAllIndustryAggregates(ctx)
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, industryX, aggs[0].Industry)
	assert.Equal(t, nf(10), aggs[0].AvgPERatio)
	assert.InDelta(t, 0.2, aggs[0].AvgRevenueGrowth.Float64, 1e-12)
	assert.Equal(t, nf(40), aggs[0].TotalRevenue)

	// filtered symbol never reaches the financial endpoints
	assert.Zero(t, fetcher.FinancialCalls("B"))
}

func TestRun_NothingProcessed(t *testing.T) {
	fetcher := &collector.MockFetcher{Companies: map[string]collector.MockCompany{
		"B": company(industryY, 50, 5, 120, 10, 50),
	}}
	store := newStore(t)

	summary, err := New(fetcher, store, Options{Industries: industries}, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TickersProcessed)
	assert.Zero(t, summary.IndustriesProcessed)

	aggs, err := store.GetAllIndustryAggregates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, aggs)
}

func TestRun_RerunUpdatesAggregateInPlace(t *testing.T) {
	fetcher := &collector.MockFetcher{Companies: map[string]collector.MockCompany{
		"A": company(industryX, 50, 5, 120, 10, 50),
	}}
	store := newStore(t)
	ctx := context.Background()
	p := New(fetcher, store, Options{Industries: industries}, nil)

	_, err := p.Run(ctx)
	require.NoError(t, err)
	first, err := store.GetIndustryAggregateByName(ctx, industryX)
	require.NoError(t, err)

	fetcher.Companies["A"] = company(industryX, 60, 5, 120, 10, 50)
	_, err = p.Run(ctx)
	require.NoError(t, err)

	second, err := store.GetIndustryAggregateByName(ctx, industryX)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, nf(12), second.AvgPERatio)

	tickers, err := store.GetAllTickers(ctx)
	require.NoError(t, err)
	assert.Len(t, tickers, 2)
}

type snapshot struct {
	tickers []model.TickerResult
	aggs    []model.IndustryAggregate
}

func runWithDelays(t *testing.T, delays map[string]time.Duration) snapshot {
	t.Helper()
	companies := map[string]collector.MockCompany{
		"AA": company(industryX, 10, 2, 110, 1.1, 10),
		"BB": company(industryX, 33, 3, 95, 2.7, 25),
		"CC": company(industryX, 7, 0, 130, 0.3, 0),
		"DD": company(industryZ, 21, 7, 100, 9.9, 80),
		"EE": company(industryZ, 45, -3, 60, -4.4, 15),
		"FF": company(industryZ, 12, 4, 101, 0.1, 33),
	}
	for sym, d := range delays {
		c := companies[sym]
		c.Delay = d
		companies[sym] = c
	}
	store := newStore(t)
	ctx := context.Background()
	_, err := New(&collector.MockFetcher{Companies: companies}, store, Options{Industries: industries, Workers: 6}, nil).Run(ctx)
	require.NoError(t, err)

	tickers, err := store.GetAllTickers(ctx)
	require.NoError(t, err)
	for i := range tickers {
		tickers[i].ID, tickers[i].RunID, tickers[i].CreatedAt = 0, "", time.Time{}
	}
	aggs, err := store.GetAllIndustryAggregates(ctx)
	require.NoError(t, err)
	for i := range aggs {
		aggs[i].ID, aggs[i].CreatedAt, aggs[i].UpdatedAt = 0, time.Time{}, time.Time{}
	}
	return snapshot{tickers: tickers, aggs: aggs}
}

func TestRun_CompletionOrderDoesNotChangeOutput(t *testing.T) {
	ms := time.Millisecond
	forward := runWithDelays(t, map[string]time.Duration{"AA": 5 * ms, "BB": 10 * ms, "CC": 15 * ms, "DD": 20 * ms, "EE": 25 * ms, "FF": 30 * ms})
	reverse := runWithDelays(t, map[string]time.Duration{"AA": 30 * ms, "BB": 25 * ms, "CC": 20 * ms, "DD": 15 * ms, "EE": 10 * ms, "FF": 5 * ms})
	mixed := runWithDelays(t, map[string]time.Duration{"AA": 20 * ms, "BB": 5 * ms, "CC": 30 * ms, "DD": 10 * ms, "EE": 25 * ms, "FF": 15 * ms})

	require.Len(t, forward.tickers, 6)
	require.Len(t, forward.aggs, 2)
	assert.Equal(t, forward, reverse)
	assert.Equal(t, forward, mixed)
}

type inFlightFetcher struct {
	*collector.MockFetcher
	current, peak int32
}

func (f *inFlightFetcher) GetProfile(ctx context.Context, symbol string) (json.RawMessage, error) {
	n := atomic.AddInt32(&f.current, 1)
	defer atomic.AddInt32(&f.current, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return f.MockFetcher.GetProfile(ctx, symbol)
}

func TestRun_WorkerPoolIsBounded(t *testing.T) {
	companies := make(map[string]collector.MockCompany)
	for _, s := range []string{"S01", "S02", "S03", "S04", "S05", "S06", "S07", "S08", "S09", "S10", "S11", "S12"} {
		companies[s] = company(industryY, 1, 1, 1, 1, 1)
	}
	f := &inFlightFetcher{MockFetcher: &collector.MockFetcher{Companies: companies}}

	summary, err := New(f, recorder.NewNoopRecorder(), Options{Industries: industries, Workers: 3}, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, summary.Filtered)
	assert.LessOrEqual(t, atomic.LoadInt32(&f.peak), int32(3))
	assert.Greater(t, atomic.LoadInt32(&f.peak), int32(0))
}

func TestRun_CancelledRunLeavesStoreUntouched(t *testing.T) {
	companies := make(map[string]collector.MockCompany)
	for _, s := range []string{"A1", "A2", "A3", "A4"} {
		c := company(industryX, 50, 5, 120, 10, 50)
		c.Delay = 200 * time.Millisecond
		companies[s] = c
	}
	store := newStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(&collector.MockFetcher{Companies: companies}, store, Options{Industries: industries, Workers: 2}, nil).Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	tickers, err := store.GetAllTickers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tickers)
	aggs, err := store.GetAllIndustryAggregates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, aggs)
}

func TestRun_ListSymbolsFailureAborts(t *testing.T) {
	boom := &collector.UpstreamError{Endpoint: "/api/v1/symbols", StatusCode: 500}
	_, err := New(&collector.MockFetcher{ListErr: boom}, recorder.NewNoopRecorder(), Options{Industries: industries}, nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, collector.IsUpstream(err))
}

type failingRecorder struct {
	recorder.NoopRecorder
	bulkErr, aggErr error
	bulkCalls       int
}

func (f *failingRecorder) BulkSaveTickers(_ context.Context, tickers []model.TickerResult) error {
	f.bulkCalls++
	return f.bulkErr
}

func (f *failingRecorder) SaveOrUpdateIndustryAggregate(_ context.Context, _ *model.IndustryAggregate) error {
	return f.aggErr
}

func TestRun_StoreErrorsPropagate(t *testing.T) {
	fetcher := &collector.MockFetcher{Companies: map[string]collector.MockCompany{
		"A": company(industryX, 50, 5, 120, 10, 50),
	}}
	diskFull := errors.New("disk full")

	rec := &failingRecorder{bulkErr: diskFull}
	_, err := New(fetcher, rec, Options{Industries: industries}, nil).Run(context.Background())
	require.ErrorIs(t, err, diskFull)
	assert.Equal(t, 1, rec.bulkCalls)

	rec = &failingRecorder{aggErr: diskFull}
	_, err = New(fetcher, rec, Options{Industries: industries}, nil).Run(context.Background())
	require.ErrorIs(t, err, diskFull)
}
