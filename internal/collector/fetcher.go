package collector

import (
	"context"
	"encoding/json"
	"fmt"
)

// Statement kinds served by the financials endpoint.
const (
	StatementIncome       = "income_statement"
	StatementBalanceSheet = "balance_sheet_statement"
	StatementCashFlow     = "cash_flow_statement"
)

// Fetcher defines the interface for fetching market data. Implementations
// must be safe for concurrent use.
type Fetcher interface {
	ListSymbols(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, symbol string) (json.RawMessage, error)
	GetFinancialStatement(ctx context.Context, symbol, statement string) (json.RawMessage, error)
	GetEndOfDayPrices(ctx context.Context, symbol string) (json.RawMessage, error)
	Name() string
}

// ValidateStatement rejects statement kinds the API does not serve.
func ValidateStatement(statement string) error {
	switch statement {
	case StatementIncome, StatementBalanceSheet, StatementCashFlow:
		return nil
	}
	return fmt.Errorf("%w: unknown statement %q", ErrInvalidArgument, statement)
}
