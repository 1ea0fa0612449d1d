package models

import (
	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/shopspring/decimal"
)

// PaidRollup counts the payments made in a period in one currency.
type PaidRollup struct {
	Currency string          `json:"currency"`
	Count    int             `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
}

// Balance is the current principal position in one currency.
type Balance struct {
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
	Progress
}

// SummaryLine is one obligation's contribution to a period summary.
type SummaryLine struct {
	ObligationID int64           `json:"obligationId"`
	Title        string          `json:"title"`
	Currency     string          `json:"currency"`
	PaidCount    int             `json:"paidCount"`
	PaidAmount   decimal.Decimal `json:"paidAmount"`
	Progress
}

// MonthSummary is the review banner for one month. Balances and progress describe the
// schedules as they are now; only the paid rollups are restricted to the month.
type MonthSummary struct {
	Period   date.YearMonth  `json:"period"`
	Paid     []PaidRollup    `json:"paid"`
	Balances []Balance       `json:"balances"`
	Lines    []SummaryLine   `json:"lines"`
	Prev     date.YearMonth  `json:"prev"`
	Next     *date.YearMonth `json:"next,omitempty"`
}

// MonthPaid is the paid rollup of one month inside a yearly summary.
type MonthPaid struct {
	Period date.YearMonth `json:"period"`
	Paid   []PaidRollup   `json:"paid"`
}

// YearSummary rolls up a calendar year month by month.
type YearSummary struct {
	Year     int          `json:"year"`
	Months   []MonthPaid  `json:"months"`
	Paid     []PaidRollup `json:"paid"`
	Balances []Balance    `json:"balances"`
}
