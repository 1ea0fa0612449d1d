package models

import (
	"slices"

	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/shopspring/decimal"
)

func init() {
	// amounts travel as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultCurrency is used when an obligation does not name one.
const DefaultCurrency = "RUB"

// Obligation represents a tracked loan or credit with its payment schedule
type Obligation struct {
	ID          int64           `json:"id,omitempty"`
	UserID      int64           `json:"-"`
	Title       string          `json:"title"`
	Total       decimal.Decimal `json:"total"`
	Monthly     decimal.Decimal `json:"monthly"`
	Rate        float64         `json:"rate"`
	DueDay      int             `json:"dueDay"`
	StartDate   *date.Date      `json:"startDate,omitempty"`
	NextPayment *date.Date      `json:"nextPayment,omitempty"`
	CloseDate   *date.Date      `json:"closeDate,omitempty"`
	Status      Status          `json:"status"`
	Currency    string          `json:"currency"`
	Payments    []Payment       `json:"payments"`
}

// Payment is one installment of an obligation schedule. N identifies it within the schedule.
type Payment struct {
	N      int             `json:"n"`
	OK     bool            `json:"ok"`
	Date   *date.Date      `json:"date,omitempty"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// Clone returns a copy of p that shares no memory with it.
func (p Payment) Clone() Payment {
	if p.Date != nil {
		p.Date = p.Date.Ptr()
	}
	return p
}

// ClonePayments deep-copies a schedule. A nil schedule becomes an empty one.
func ClonePayments(ps []Payment) []Payment {
	out := make([]Payment, len(ps))
	for i, p := range ps {
		out[i] = p.Clone()
	}
	return out
}

// Clone returns a deep copy of the obligation.
func (o Obligation) Clone() Obligation {
	for _, d := range []**date.Date{&o.StartDate, &o.NextPayment, &o.CloseDate} {
		if *d != nil {
			*d = (*d).Ptr()
		}
	}
	o.Payments = ClonePayments(o.Payments)
	return o
}

// MaxN returns the highest sequence number in the schedule, 0 when empty.
func MaxN(ps []Payment) int {
	n := 0
	for _, p := range ps {
		n = max(n, p.N)
	}
	return n
}

// IndexOf returns the position of the payment with sequence number n, or -1.
func IndexOf(ps []Payment, n int) int {
	return slices.IndexFunc(ps, func(p Payment) bool { return p.N == n })
}

// Progress is derived from a schedule; it is never stored.
type Progress struct {
	PaidTotal   decimal.Decimal `json:"paidTotal"`
	Remaining   decimal.Decimal `json:"remaining"`
	ProgressPct float64         `json:"progressPct"`
}

// ObligationView is an obligation together with its derived progress, as returned to clients.
type ObligationView struct {
	Obligation
	Progress
}
