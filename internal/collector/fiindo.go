package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ternarybob/arbor"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL       = "https://api.test.fiindo.com"
	DefaultTimeout       = 10 * time.Second
	DefaultRetries       = 3
	DefaultRateLimit     = 10
	DefaultRetryInterval = 500 * time.Millisecond
)

// FetcherOption configures a FiindoFetcher.
type FetcherOption func(*FiindoFetcher)

// WithLogger sets the logger.
func WithLogger(logger arbor.ILogger) FetcherOption {
	return func(f *FiindoFetcher) {
		f.logger = logger
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) FetcherOption {
	return func(f *FiindoFetcher) {
		f.Client.Timeout = timeout
	}
}

// WithRetries sets how many times a transient failure is retried.
func WithRetries(retries int) FetcherOption {
	return func(f *FiindoFetcher) {
		f.Retries = retries
	}
}

// WithRetryInterval sets the initial backoff between retries.
func WithRetryInterval(d time.Duration) FetcherOption {
	return func(f *FiindoFetcher) {
		f.retryInterval = d
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables the limit.
func WithRateLimit(requestsPerSecond int) FetcherOption {
	return func(f *FiindoFetcher) {
		if requestsPerSecond <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// FiindoFetcher implements Fetcher using the Fiindo REST API.
type FiindoFetcher struct {
	BaseURL string
	Auth    string
	Client  *http.Client
	Retries int

	retryInterval time.Duration
	limiter       *rate.Limiter
	logger        arbor.ILogger
}

// NewFiindoFetcher creates a new fetcher with optional proxy support.
func NewFiindoFetcher(baseURL, auth, proxyURL string, opts ...FetcherOption) *FiindoFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	f := &FiindoFetcher{
		BaseURL: baseURL,
		Auth:    auth,
		Client: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		Retries:       DefaultRetries,
		retryInterval: DefaultRetryInterval,
		limiter:       rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:        arbor.NewLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FiindoFetcher) Name() string { return "fiindo" }

// ListSymbols returns the symbol universe.
func (f *FiindoFetcher) ListSymbols(ctx context.Context) ([]string, error) {
	const path = "/api/v1/symbols"
	body, err := f.get(ctx, path)
	if err != nil {
		return nil, err
	}
	list := gjson.GetBytes(body, "symbols")
	if !list.IsArray() {
		return nil, &UpstreamError{Endpoint: path, Message: "unexpected symbols response format"}
	}
	items := list.Array()
	symbols := make([]string, 0, len(items))
	for _, s := range items {
		symbols = append(symbols, s.String())
	}
	return symbols, nil
}

// GetProfile returns the raw general information payload for a symbol.
func (f *FiindoFetcher) GetProfile(ctx context.Context, symbol string) (json.RawMessage, error) {
	return f.getObject(ctx, "/api/v1/general/"+url.PathEscape(symbol))
}

// GetFinancialStatement returns the raw statement payload for a symbol.
func (f *FiindoFetcher) GetFinancialStatement(ctx context.Context, symbol, statement string) (json.RawMessage, error) {
	if err := ValidateStatement(statement); err != nil {
		return nil, err
	}
	return f.getObject(ctx, fmt.Sprintf("/api/v1/financials/%s/%s", url.PathEscape(symbol), statement))
}

// GetEndOfDayPrices returns the raw end-of-day price payload for a symbol.
func (f *FiindoFetcher) GetEndOfDayPrices(ctx context.Context, symbol string) (json.RawMessage, error) {
	return f.getObject(ctx, "/api/v1/eod/"+url.PathEscape(symbol))
}

func (f *FiindoFetcher) getObject(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := f.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if !gjson.ParseBytes(body).IsObject() {
		return nil, &UpstreamError{Endpoint: path, Message: "expected a JSON object"}
	}
	return body, nil
}

// get performs a rate-limited GET with retries on transient failures.
func (f *FiindoFetcher) get(ctx context.Context, path string) (json.RawMessage, error) {
	var body []byte
	attempt := 0

	op := func() error {
		attempt++
		b, err := f.do(ctx, path)
		if err != nil {
			var ue *UpstreamError
			if errors.As(err, &ue) && !retryable(ue) {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			f.logger.Debug().Str("path", path).Int("attempt", attempt).Err(err).Msg("Fiindo request failed")
			return err
		}
		body = b
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.retryInterval
	policy.MaxElapsedTime = 0
	retries := f.Retries
	if retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx)

	if err := backoff.Retry(op, b); err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) {
			return nil, err
		}
		return nil, &UpstreamError{Endpoint: path, Err: err}
	}
	return body, nil
}

func (f *FiindoFetcher) do(ctx context.Context, path string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &UpstreamError{Endpoint: path, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, Err: err}
	}
	if f.Auth != "" {
		req.Header.Set("Authorization", "Bearer "+f.Auth)
	}
	req.Header.Set("Accept", "application/json")

	f.logger.Debug().Str("path", path).Msg("Fiindo API request")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Endpoint: path, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Endpoint: path, StatusCode: resp.StatusCode, Message: string(body)}
	}
	if !gjson.ValidBytes(body) {
		return nil, &UpstreamError{Endpoint: path, StatusCode: resp.StatusCode, Message: "invalid JSON response"}
	}
	return body, nil
}

// retryable reports whether a failed request may succeed on another attempt.
func retryable(e *UpstreamError) bool {
	switch e.StatusCode {
	case 0:
		return e.Err != nil
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
