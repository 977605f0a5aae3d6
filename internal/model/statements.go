package model

import (
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// Period labels used by the statements API.
const (
	PeriodFiscalYear = "FY"
	quarterPrefix    = "Q"
)

// IsQuarterPeriod reports whether the label names a fiscal quarter (Q1..Q4).
func IsQuarterPeriod(period string) bool {
	return strings.HasPrefix(period, quarterPrefix)
}

// IncomeStatement is one normalized income statement record.
type IncomeStatement struct {
	Symbol       string
	Period       string
	PeriodEnd    time.Time
	CalendarYear int
	Revenue      null.Float
	NetIncome    null.Float
	EPS          null.Float
}

func (s IncomeStatement) SortDate() time.Time { return s.PeriodEnd }
func (s IncomeStatement) IsQuarter() bool     { return IsQuarterPeriod(s.Period) }
func (s IncomeStatement) IsAnnual() bool      { return s.Period == PeriodFiscalYear }

// BalanceSheet is one normalized balance sheet record.
type BalanceSheet struct {
	Symbol           string
	Period           string
	PeriodEnd        time.Time
	CalendarYear     int
	TotalAssets      null.Float
	TotalLiabilities null.Float
	TotalDebt        null.Float
	TotalEquity      null.Float
}

func (s BalanceSheet) SortDate() time.Time { return s.PeriodEnd }
func (s BalanceSheet) IsQuarter() bool     { return IsQuarterPeriod(s.Period) }
func (s BalanceSheet) IsAnnual() bool      { return s.Period == PeriodFiscalYear }
