package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc, opts ...FetcherOption) *FiindoFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]FetcherOption{WithRetryInterval(time.Millisecond), WithRateLimit(0)}, opts...)
	return NewFiindoFetcher(srv.URL, "first.last", "", opts...)
}

func TestFiindoFetcher_ListSymbols(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/symbols", r.URL.Path)
		assert.Equal(t, "Bearer first.last", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"symbols": ["AAPL.L", "MSFT.L"]}`))
	})

	symbols, err := f.ListSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL.L", "MSFT.L"}, symbols)
}

func TestFiindoFetcher_ListSymbolsBadShape(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	})

	_, err := f.ListSymbols(context.Background())
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
}

func TestFiindoFetcher_GetFinancialStatementPath(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/financials/AAPL.L/balance_sheet_statement", r.URL.Path)
		w.Write([]byte(`{"fundamentals": {}}`))
	})

	raw, err := f.GetFinancialStatement(context.Background(), "AAPL.L", StatementBalanceSheet)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fundamentals": {}}`, string(raw))
}

func TestFiindoFetcher_InvalidStatementMakesNoRequest(t *testing.T) {
	var hits int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})

	_, err := f.GetFinancialStatement(context.Background(), "AAPL.L", "dividends")
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, IsUpstream(err))
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestFiindoFetcher_NonObjectResponse(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1, 2, 3]`))
	})

	_, err := f.GetProfile(context.Background(), "AAPL.L")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "/api/v1/general/AAPL.L", ue.Endpoint)
}

func TestFiindoFetcher_InvalidJSON(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := f.GetEndOfDayPrices(context.Background(), "AAPL.L")
	assert.True(t, IsUpstream(err))
}

func TestFiindoFetcher_ClientErrorNotRetried(t *testing.T) {
	var hits int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := f.GetProfile(context.Background(), "AAPL.L")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFiindoFetcher_RetriesTransientStatus(t *testing.T) {
	var hits int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"stockprice": {"data": []}}`))
	}, WithRetries(3))

	_, err := f.GetEndOfDayPrices(context.Background(), "AAPL.L")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFiindoFetcher_RetriesExhausted(t *testing.T) {
	var hits int32
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithRetries(2))

	_, err := f.GetProfile(context.Background(), "AAPL.L")
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFiindoFetcher_CancelledContext(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.GetProfile(ctx, "AAPL.L")
	require.Error(t, err)
	assert.True(t, IsUpstream(err))
}
