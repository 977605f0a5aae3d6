package main

import (
	"time"

	"github.com/guregu/null/v6"

	"github.com/AlexanderGr-dev/fiindo-recruitment-challange/internal/collector"
)

// sampleFetcher serves a small fixed universe for local runs without API access.
func sampleFetcher() *collector.MockFetcher {
	q := func(period string, y int, m time.Month, d int, rev, ni, eps float64) collector.MockQuarter {
		return collector.MockQuarter{
			Period: period, End: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			Revenue: null.FloatFrom(rev), NetIncome: null.FloatFrom(ni), EPS: null.FloatFrom(eps),
		}
	}
	fy := func(y int, debt, equity float64) collector.MockBalance {
		return collector.MockBalance{
			Period: "FY", End: time.Date(y, 12, 31, 0, 0, 0, 0, time.UTC),
			TotalDebt: null.FloatFrom(debt), TotalEquity: null.FloatFrom(equity),
		}
	}
	closes := func(vs ...float64) []null.Float {
		out := make([]null.Float, len(vs))
		for i, v := range vs {
			out[i] = null.FloatFrom(v)
		}
		return out
	}

	return &collector.MockFetcher{Companies: map[string]collector.MockCompany{
		"AAPL.L": {
			Industry: "Consumer Electronics",
			Income: []collector.MockQuarter{
				q("Q4", 2024, 12, 31, 124.3e9, 36.3e9, 2.40),
				q("Q3", 2024, 9, 28, 94.9e9, 14.7e9, 0.97),
				q("Q2", 2024, 6, 29, 85.8e9, 21.4e9, 1.40),
				q("Q1", 2024, 3, 30, 90.8e9, 23.6e9, 1.53),
			},
			Balance: []collector.MockBalance{fy(2024, 106.6e9, 56.9e9)},
			Closes:  closes(243.9, 250.4, 255.6),
		},
		"MSFT.L": {
			Industry: "Software - Application",
			Income: []collector.MockQuarter{
				q("Q4", 2024, 12, 31, 69.6e9, 24.1e9, 3.23),
				q("Q3", 2024, 9, 30, 65.6e9, 24.7e9, 3.30),
				q("Q2", 2024, 6, 30, 64.7e9, 22.0e9, 2.95),
				q("Q1", 2024, 3, 31, 61.9e9, 21.9e9, 2.94),
			},
			Balance: []collector.MockBalance{fy(2024, 67.1e9, 268.5e9)},
			Closes:  closes(421.5, 424.8),
		},
		"JPM.L": {
			Industry: "Banks - Diversified",
			Income: []collector.MockQuarter{
				q("Q4", 2024, 12, 31, 43.7e9, 14.0e9, 4.81),
				q("Q3", 2024, 9, 30, 43.3e9, 12.9e9, 4.37),
			},
			Balance: []collector.MockBalance{fy(2024, 0, 344.8e9)},
			Closes:  closes(239.7),
		},
		"XOM.L": {Industry: "Oil & Gas Integrated"},
	}}
}
