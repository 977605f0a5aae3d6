package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

// FormatRunSummary formats a run summary for the terminal.
func FormatRunSummary(s *model.RunSummary) string {
	var b strings.Builder
	title := "ETL run"
	if s.DryRun {
		title += " (dry run)"
	}
	b.WriteString(fmt.Sprintf("%s %s | %s\n\n", title, s.RunID, s.StartedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Symbols fetched:      %d\n", s.SymbolsFetched))
	b.WriteString(fmt.Sprintf("Tickers processed:    %d\n", s.TickersProcessed))
	b.WriteString(fmt.Sprintf("Industries processed: %d\n", s.IndustriesProcessed))
	b.WriteString(fmt.Sprintf("Filtered out:         %d\n", s.Filtered))
	if s.UpstreamErrors > 0 || s.Failed > 0 {
		b.WriteString(fmt.Sprintf("Upstream errors:      %d\n", s.UpstreamErrors))
		b.WriteString(fmt.Sprintf("Failed:               %d\n", s.Failed))
	}
	b.WriteString(fmt.Sprintf("Duration:             %s\n", s.Duration().Round(time.Millisecond)))
	return b.String()
}

// FormatTickers formats ticker rows as a fixed-width table.
func FormatTickers(tickers []model.TickerResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-12s %-28s %-10s %12s %12s %18s %10s\n",
		"SYMBOL", "INDUSTRY", "PERIOD", "P/E", "REV QoQ", "NET INCOME TTM", "D/E"))
	for _, t := range tickers {
		b.WriteString(fmt.Sprintf("%-12s %-28s %-10s %12s %12s %18s %10s\n",
			t.Symbol, t.Industry, t.PeriodEnd.Format(model.DateLayout),
			formatFloat(t.PERatio, "%.2f"),
			formatPercent(t.RevenueGrowthQoQ),
			formatFloat(t.NetIncomeTTM, "%.0f"),
			formatFloat(t.DebtRatio, "%.2f"),
		))
	}
	return b.String()
}

// FormatIndustryAggregates formats aggregate rows as a fixed-width table.
func FormatIndustryAggregates(aggs []model.IndustryAggregate) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-28s %12s %12s %18s %-16s\n", "INDUSTRY", "AVG P/E", "AVG REV QoQ", "TOTAL NET INCOME", "UPDATED"))
	for _, a := range aggs {
		b.WriteString(fmt.Sprintf("%-28s %12s %12s %18s %-16s\n",
			a.Industry,
			formatFloat(a.AvgPERatio, "%.2f"),
			formatPercent(a.AvgRevenueGrowth),
			formatFloat(a.TotalRevenue, "%.0f"),
			a.UpdatedAt.Format("2006-01-02 15:04"),
		))
	}
	return b.String()
}

func formatFloat(v null.Float, format string) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf(format, v.Float64)
}

func formatPercent(v null.Float) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", v.Float64*100)
}
