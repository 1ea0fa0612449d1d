package schedule

import (
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeProgress sums the paid rows of a schedule against the obligation total.
// Over-payment is not an error: remaining is clamped at zero and the percentage may exceed 100.
func ComputeProgress(total decimal.Decimal, payments []models.Payment) models.Progress {
	paid := decimal.Zero
	for _, p := range payments {
		if p.OK {
			paid = paid.Add(p.Amount)
		}
	}
	return progressOf(total, paid)
}

func progressOf(total, paid decimal.Decimal) models.Progress {
	remaining := total.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	pct := 0.0
	if total.IsPositive() && paid.IsPositive() {
		pct = paid.Mul(hundred).Div(total).InexactFloat64()
	}
	return models.Progress{PaidTotal: paid, Remaining: remaining, ProgressPct: pct}
}

// View attaches derived progress to an obligation.
func View(o models.Obligation) models.ObligationView {
	return models.ObligationView{Obligation: o, Progress: ComputeProgress(o.Total, o.Payments)}
}

// Views is View over a list.
func Views(obligations []models.Obligation) []models.ObligationView {
	out := make([]models.ObligationView, len(obligations))
	for i, o := range obligations {
		out[i] = View(o)
	}
	return out
}
