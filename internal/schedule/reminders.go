package schedule

import (
	"cmp"
	"slices"

	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
)

// Classify returns the urgency tier for a payment due in daysUntil days.
func Classify(daysUntil int) models.Tier {
	switch {
	case daysUntil <= 1:
		return models.TierUrgent
	case daysUntil <= 3:
		return models.TierWarning
	default:
		return models.TierInfo
	}
}

func upcoming(o models.Obligation, p models.Payment, today date.Date) models.UpcomingPayment {
	days := p.Date.Sub(today)
	tier := Classify(days)
	currency := o.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return models.UpcomingPayment{
		ObligationID: o.ID,
		UserID:       o.UserID,
		Title:        o.Title,
		N:            p.N,
		Date:         *p.Date,
		Amount:       p.Amount,
		Currency:     currency,
		DaysUntil:    days,
		Tier:         tier,
		IsUrgent:     tier == models.TierUrgent,
		IsWarning:    tier == models.TierWarning,
	}
}

func compareUpcoming(a, b models.UpcomingPayment) int {
	return cmp.Or(
		cmp.Compare(a.DaysUntil, b.DaysUntil),
		cmp.Compare(a.ObligationID, b.ObligationID),
		cmp.Compare(a.N, b.N),
	)
}

// Scan returns every unpaid dated payment of every obligation with its distance from today,
// overdue rows included (negative DaysUntil). Paid rows and rows without a date are skipped.
func Scan(obligations []models.Obligation, today date.Date) []models.UpcomingPayment {
	var out []models.UpcomingPayment
	for _, o := range obligations {
		for _, p := range o.Payments {
			if p.OK || p.Date == nil {
				continue
			}
			out = append(out, upcoming(o, p, today))
		}
	}
	slices.SortStableFunc(out, compareUpcoming)
	return out
}

// earliest keeps, for each obligation, the first scanned row accepted by keep.
func earliest(obligations []models.Obligation, today date.Date, keep func(days int) bool) []models.UpcomingPayment {
	out := []models.UpcomingPayment{}
	for _, o := range obligations {
		var best *models.UpcomingPayment
		for _, p := range o.Payments {
			if p.OK || p.Date == nil {
				continue
			}
			u := upcoming(o, p, today)
			if !keep(u.DaysUntil) {
				continue
			}
			if best == nil || compareUpcoming(u, *best) < 0 {
				best = &u
			}
		}
		if best != nil {
			out = append(out, *best)
		}
	}
	slices.SortStableFunc(out, compareUpcoming)
	return out
}

// GetUpcoming returns the earliest unpaid payment per obligation that falls due between today
// and today+windowDays inclusive, soonest first, ties broken by obligation id.
func GetUpcoming(obligations []models.Obligation, today date.Date, windowDays int) []models.UpcomingPayment {
	return earliest(obligations, today, func(days int) bool {
		return days >= 0 && days <= windowDays
	})
}

// Overdue returns the earliest unpaid payment per obligation whose due date has passed,
// most overdue first.
func Overdue(obligations []models.Obligation, today date.Date) []models.UpcomingPayment {
	return earliest(obligations, today, func(days int) bool { return days < 0 })
}
