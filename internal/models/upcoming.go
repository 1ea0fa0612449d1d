package models

import (
	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/shopspring/decimal"
)

// Tier is the urgency class of an upcoming payment.
type Tier string

const (
	TierUrgent  Tier = "urgent"
	TierWarning Tier = "warning"
	TierInfo    Tier = "info"
)

// UpcomingPayment is one unpaid dated installment as seen from a given day.
type UpcomingPayment struct {
	ObligationID int64           `json:"obligationId"`
	UserID       int64           `json:"-"`
	Title        string          `json:"title"`
	N            int             `json:"n"`
	Date         date.Date       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	DaysUntil    int             `json:"daysUntil"`
	Tier         Tier            `json:"tier"`
	IsUrgent     bool            `json:"isUrgent"`
	IsWarning    bool            `json:"isWarning"`
}

// Overdue reports whether the due date has already passed.
func (u UpcomingPayment) Overdue() bool { return u.DaysUntil < 0 }
