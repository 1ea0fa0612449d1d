package schedule

import (
	"cmp"
	"slices"

	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
)

// AutoFill assigns dates and amounts to a schedule from the obligation terms.
//
// The row with the lowest sequence number is the anchor: it keeps its own date when it has
// one, otherwise it falls due one month after the start date. Every following row, in
// sequence order, falls due one month after the row before it, on the due day clamped to the
// month length. Rows without an amount get the monthly installment. Paid flags and notes are
// kept. The input is not modified and the result has the same length and row order.
func AutoFill(o models.Obligation, payments []models.Payment) ([]models.Payment, error) {
	if o.StartDate == nil || !o.Monthly.IsPositive() {
		return nil, &ValidationError{Msg: "missing start date or monthly amount"}
	}
	if o.DueDay < 1 || o.DueDay > 31 {
		return nil, Validationf("due day %d is outside 1-31", o.DueDay)
	}

	out := models.ClonePayments(payments)
	order := make([]int, len(out))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(out[a].N, out[b].N) })

	var prev date.Date
	for k, i := range order {
		var due date.Date
		switch {
		case k > 0:
			due = prev.AddMonthsClamped(1, o.DueDay)
		case out[i].Date != nil:
			due = *out[i].Date
		default:
			due = o.StartDate.AddMonthsClamped(1, o.DueDay)
		}
		out[i].Date = due.Ptr()
		if out[i].Amount.IsZero() {
			out[i].Amount = o.Monthly
		}
		prev = due
	}
	return out, nil
}
