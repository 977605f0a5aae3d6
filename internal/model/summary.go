package model

import "time"

// RunSummary reports what a single ETL invocation did.
type RunSummary struct {
	RunID               string    `json:"run_id"`
	SymbolsFetched      int       `json:"symbols_fetched"`
	TickersProcessed    int       `json:"tickers_processed"`
	IndustriesProcessed int       `json:"industries_processed"`
	Filtered            int       `json:"filtered"`
	UpstreamErrors      int       `json:"upstream_errors"`
	Failed              int       `json:"failed"`
	DryRun              bool      `json:"dry_run"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
}

// Duration returns the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
