package schedule

import (
	"cmp"
	"slices"

	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

func currencyOf(o models.Obligation) string {
	if o.Currency == "" {
		return models.DefaultCurrency
	}
	return o.Currency
}

// NextMonth returns the month after p unless it would be later than the month of today.
func NextMonth(p date.YearMonth, today date.Date) (date.YearMonth, bool) {
	next := p.Next()
	if next.After(date.MonthOf(today)) {
		return date.YearMonth{}, false
	}
	return next, true
}

type rollup map[string]*models.PaidRollup

func (r rollup) add(currency string, amount decimal.Decimal) {
	cur, ok := r[currency]
	if !ok {
		cur = &models.PaidRollup{Currency: currency, Amount: decimal.Zero}
		r[currency] = cur
	}
	cur.Count++
	cur.Amount = cur.Amount.Add(amount)
}

func (r rollup) list() []models.PaidRollup {
	out := make([]models.PaidRollup, 0, len(r))
	for _, v := range r {
		out = append(out, *v)
	}
	slices.SortFunc(out, func(a, b models.PaidRollup) int { return cmp.Compare(a.Currency, b.Currency) })
	return out
}

// paidIn adds every paid row dated within p to r and returns the obligation's own count and amount.
func paidIn(o models.Obligation, p date.YearMonth, r rollup) (int, decimal.Decimal) {
	count, amount := 0, decimal.Zero
	for _, pay := range o.Payments {
		if !pay.OK || pay.Date == nil || !p.Contains(*pay.Date) {
			continue
		}
		count++
		amount = amount.Add(pay.Amount)
		r.add(currencyOf(o), pay.Amount)
	}
	return count, amount
}

// balances snapshots the current position per currency.
func balances(obligations []models.Obligation) []models.Balance {
	type acc struct{ total, paid, remaining decimal.Decimal }
	by := map[string]*acc{}
	for _, o := range obligations {
		c := currencyOf(o)
		a, ok := by[c]
		if !ok {
			a = &acc{decimal.Zero, decimal.Zero, decimal.Zero}
			by[c] = a
		}
		pr := ComputeProgress(o.Total, o.Payments)
		a.total = a.total.Add(o.Total)
		a.paid = a.paid.Add(pr.PaidTotal)
		a.remaining = a.remaining.Add(pr.Remaining)
	}
	out := make([]models.Balance, 0, len(by))
	for c, a := range by {
		pr := progressOf(a.total, a.paid)
		// per-obligation clamping: an over-paid loan does not offset another one
		pr.Remaining = a.remaining
		out = append(out, models.Balance{Currency: c, Total: a.total, Progress: pr})
	}
	slices.SortFunc(out, func(a, b models.Balance) int { return cmp.Compare(a.Currency, b.Currency) })
	return out
}

// MonthlySummary rolls up the payments marked paid within p, alongside the current balances.
// Months later than the month of today are rejected.
func MonthlySummary(obligations []models.Obligation, p date.YearMonth, today date.Date) (models.MonthSummary, error) {
	if p.After(date.MonthOf(today)) {
		return models.MonthSummary{}, Validationf("month %s is in the future", p)
	}
	r := rollup{}
	lines := make([]models.SummaryLine, 0, len(obligations))
	for _, o := range obligations {
		count, amount := paidIn(o, p, r)
		lines = append(lines, models.SummaryLine{
			ObligationID: o.ID,
			Title:        o.Title,
			Currency:     currencyOf(o),
			PaidCount:    count,
			PaidAmount:   amount,
			Progress:     ComputeProgress(o.Total, o.Payments),
		})
	}
	s := models.MonthSummary{
		Period:   p,
		Paid:     r.list(),
		Balances: balances(obligations),
		Lines:    lines,
		Prev:     p.Prev(),
	}
	if next, ok := NextMonth(p, today); ok {
		s.Next = &next
	}
	return s, nil
}

// YearlySummary rolls up each month of year up to the current one.
func YearlySummary(obligations []models.Obligation, year int, today date.Date) (models.YearSummary, error) {
	if year > today.Year() {
		return models.YearSummary{}, Validationf("year %d is in the future", year)
	}
	current := date.MonthOf(today)
	total := rollup{}
	months := make([]models.MonthPaid, 0, 12)
	for p := (date.YearMonth{Year: year, Month: 1}); p.Year == year; p = p.Next() {
		m := models.MonthPaid{Period: p, Paid: []models.PaidRollup{}}
		if !p.After(current) {
			r := rollup{}
			for _, o := range obligations {
				paidIn(o, p, r)
				paidIn(o, p, total)
			}
			m.Paid = r.list()
		}
		months = append(months, m)
	}
	return models.YearSummary{
		Year:     year,
		Months:   months,
		Paid:     total.list(),
		Balances: balances(obligations),
	}, nil
}
