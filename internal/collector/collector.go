package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/guregu/null/v6"
	"github.com/ternarybob/arbor"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/calculator"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/series"
)

// Processor turns one symbol into a TickerResult: it filters by industry,
// fetches statements and prices, normalizes them and computes the ratios.
type Processor struct {
	Fetcher Fetcher
	allowed map[string]struct{}
	logger  arbor.ILogger
}

// NewProcessor creates a Processor restricted to the given industries.
// Industry matching is exact and case-sensitive.
func NewProcessor(fetcher Fetcher, industries []string, logger arbor.ILogger) *Processor {
	allowed := make(map[string]struct{}, len(industries))
	for _, ind := range industries {
		allowed[ind] = struct{}{}
	}
	if logger == nil {
		logger = arbor.NewLogger()
	}
	return &Processor{Fetcher: fetcher, allowed: allowed, logger: logger}
}

// Allowed reports whether the industry is on the allow-list.
func (p *Processor) Allowed(industry string) bool {
	_, ok := p.allowed[industry]
	return ok
}

// Process handles a single symbol. It never panics and never returns an
// error; failures are reported through the outcome kind.
func (p *Processor) Process(ctx context.Context, symbol string) (out model.SymbolOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = p.fail(symbol, out.Industry, fmt.Errorf("panic: %v", r))
		}
	}()

	raw, err := p.Fetcher.GetProfile(ctx, symbol)
	if err != nil {
		return p.fail(symbol, "", fmt.Errorf("get profile: %w", err))
	}

	industry, ok := series.Industry(raw)
	if !ok || !p.Allowed(industry) {
		p.logger.Debug().Str("symbol", symbol).Str("industry", industry).Msg("Skipping symbol outside industry allow-list")
		return model.SymbolOutcome{Symbol: symbol, Kind: model.OutcomeFiltered, Industry: industry}
	}

	result, err := p.compute(ctx, symbol, industry)
	if err != nil {
		return p.fail(symbol, industry, err)
	}
	return model.SymbolOutcome{Symbol: symbol, Kind: model.OutcomeProcessed, Industry: industry, Result: result}
}

func (p *Processor) compute(ctx context.Context, symbol, industry string) (*model.TickerResult, error) {
	incomeRaw, err := p.Fetcher.GetFinancialStatement(ctx, symbol, StatementIncome)
	if err != nil {
		return nil, fmt.Errorf("get income statement: %w", err)
	}
	balanceRaw, err := p.Fetcher.GetFinancialStatement(ctx, symbol, StatementBalanceSheet)
	if err != nil {
		return nil, fmt.Errorf("get balance sheet: %w", err)
	}
	eodRaw, err := p.Fetcher.GetEndOfDayPrices(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get eod prices: %w", err)
	}

	income, err := series.ParseIncomeStatements(incomeRaw)
	if err != nil {
		return nil, fmt.Errorf("normalize income statement: %w", err)
	}
	balance, err := series.ParseBalanceSheets(balanceRaw)
	if err != nil {
		return nil, fmt.Errorf("normalize balance sheet: %w", err)
	}
	prices, err := series.ParseEODPrices(symbol, eodRaw)
	if err != nil {
		return nil, fmt.Errorf("normalize eod prices: %w", err)
	}

	lastQ := income.LatestQuarter()
	prevQ := income.PreviousQuarter()
	lastFY := balance.LatestYear()
	switch {
	case lastQ == nil:
		return nil, fmt.Errorf("%w: no quarterly income statement", ErrIncompleteHistory)
	case prevQ == nil:
		return nil, fmt.Errorf("%w: no previous quarter", ErrIncompleteHistory)
	case lastFY == nil:
		return nil, fmt.Errorf("%w: no annual balance sheet", ErrIncompleteHistory)
	}

	quarters := income.LastNQuarters(calculator.TTMQuarters)
	netIncomes := make([]null.Float, len(quarters))
	for i, q := range quarters {
		netIncomes[i] = q.NetIncome
	}

	return &model.TickerResult{
		Symbol:           symbol,
		Industry:         industry,
		PeriodEnd:        lastQ.PeriodEnd,
		PERatio:          calculator.CalculatePERatio(prices.LatestClose(), lastQ.EPS),
		RevenueGrowthQoQ: calculator.CalculateRevenueGrowth(lastQ.Revenue, prevQ.Revenue),
		NetIncomeTTM:     calculator.CalculateNetIncomeTTM(netIncomes),
		DebtRatio:        calculator.CalculateDebtRatio(lastFY.TotalDebt, lastFY.TotalEquity),
	}, nil
}

func (p *Processor) fail(symbol, industry string, err error) model.SymbolOutcome {
	kind := model.OutcomeFailed
	if IsUpstream(err) && !errors.Is(err, ErrInvalidArgument) {
		kind = model.OutcomeUpstreamError
		p.logger.Warn().Str("symbol", symbol).Err(err).Msg("API error for symbol")
	} else {
		p.logger.Error().Str("symbol", symbol).Err(err).Msg("Failed processing symbol")
	}
	return model.SymbolOutcome{Symbol: symbol, Kind: kind, Industry: industry, Err: err}
}
