package calculator

import (
	"github.com/guregu/null/v6"
)

// TTMQuarters is the number of quarters summed into a trailing-twelve-month figure.
const TTMQuarters = 4

// CalculatePERatio returns price / eps. It is null when eps is null or zero,
// or when the price itself is unknown.
func CalculatePERatio(price, eps null.Float) null.Float {
	return divide(price, eps)
}

// CalculateRevenueGrowth returns (current - previous) / previous.
// It is null when previous is null or zero, or when current is unknown.
func CalculateRevenueGrowth(current, previous null.Float) null.Float {
	if !current.Valid || !nonZero(previous) {
		return null.Float{}
	}
	return null.FloatFrom((current.Float64 - previous.Float64) / previous.Float64)
}

// CalculateNetIncomeTTM sums exactly four quarterly net income values.
// Fewer or more values, or any unknown quarter, yield null.
func CalculateNetIncomeTTM(quarters []null.Float) null.Float {
	if len(quarters) != TTMQuarters {
		return null.Float{}
	}
	sum := 0.0
	for _, q := range quarters {
		if !q.Valid {
			return null.Float{}
		}
		sum += q.Float64
	}
	return null.FloatFrom(sum)
}

// CalculateDebtRatio returns debt / equity. It is null when equity is null or
// zero, or when debt is unknown.
func CalculateDebtRatio(debt, equity null.Float) null.Float {
	return divide(debt, equity)
}

func divide(numerator, denominator null.Float) null.Float {
	if !numerator.Valid || !nonZero(denominator) {
		return null.Float{}
	}
	return null.FloatFrom(numerator.Float64 / denominator.Float64)
}

func nonZero(v null.Float) bool {
	return v.Valid && v.Float64 != 0
}
