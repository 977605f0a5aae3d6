package calculator

import (
	"github.com/guregu/null/v6"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

// IndustryMetrics is the rollup computed over one industry's ticker results.
type IndustryMetrics struct {
	AvgPERatio       null.Float
	AvgRevenueGrowth null.Float
	TotalRevenue     null.Float
}

// AggregateIndustry averages the non-null P/E ratios and revenue growth values
// and sums TTM net income with unknown values counted as zero.
//
// An empty input yields all-null metrics. A non-empty input always yields a
// total, even when every TTM value is null (total 0).
func AggregateIndustry(results []model.TickerResult) IndustryMetrics {
	if len(results) == 0 {
		return IndustryMetrics{}
	}

	var (
		peSum, growthSum     float64
		peCount, growthCount int
		total                float64
	)
	for _, r := range results {
		if r.PERatio.Valid {
			peSum += r.PERatio.Float64
			peCount++
		}
		if r.RevenueGrowthQoQ.Valid {
			growthSum += r.RevenueGrowthQoQ.Float64
			growthCount++
		}
		total += r.NetIncomeTTM.ValueOrZero()
	}

	m := IndustryMetrics{TotalRevenue: null.FloatFrom(total)}
	if peCount > 0 {
		m.AvgPERatio = null.FloatFrom(peSum / float64(peCount))
	}
	if growthCount > 0 {
		m.AvgRevenueGrowth = null.FloatFrom(growthSum / float64(growthCount))
	}
	return m
}
