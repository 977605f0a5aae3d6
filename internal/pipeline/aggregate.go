package pipeline

import (
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/calculator"
	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/model"
)

// BuildAggregates groups results by industry and computes one aggregate per
// industry in the given order. Industries without results are skipped.
func BuildAggregates(industries []string, results []model.TickerResult) []model.IndustryAggregate {
	byIndustry := make(map[string][]model.TickerResult, len(industries))
	for _, r := range results {
		byIndustry[r.Industry] = append(byIndustry[r.Industry], r)
	}

	out := make([]model.IndustryAggregate, 0, len(industries))
	for _, industry := range industries {
		members := byIndustry[industry]
		if len(members) == 0 {
			continue
		}
		sortBySymbol(members)
		m := calculator.AggregateIndustry(members)
		out = append(out, model.IndustryAggregate{
			Industry:         industry,
			AvgPERatio:       m.AvgPERatio,
			AvgRevenueGrowth: m.AvgRevenueGrowth,
			TotalRevenue:     m.TotalRevenue,
		})
	}
	return out
}
