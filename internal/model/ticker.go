package model

import (
	"time"

	"github.com/guregu/null/v6"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// TickerResult holds the computed ratios for one symbol in one run.
type TickerResult struct {
	ID               int64
	RunID            string
	Symbol           string
	Industry         string
	PeriodEnd        time.Time
	PERatio          null.Float
	RevenueGrowthQoQ null.Float
	NetIncomeTTM     null.Float
	DebtRatio        null.Float
	CreatedAt        time.Time
}

// IndustryAggregate holds the per-industry rollup. Industry is the unique key.
type IndustryAggregate struct {
	ID               int64
	Industry         string
	AvgPERatio       null.Float
	AvgRevenueGrowth null.Float
	TotalRevenue     null.Float
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
