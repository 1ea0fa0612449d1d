package schedule

import (
	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/shopspring/decimal"
)

func d(s string) *date.Date { return date.MustParse(s).Ptr() }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func loan(id int64, start string, dueDay int, monthly int64) models.Obligation {
	o := models.Obligation{
		ID:       id,
		Title:    "loan",
		Total:    dec(120000),
		Monthly:  dec(monthly),
		DueDay:   dueDay,
		Status:   models.StatusActive,
		Currency: "RUB",
	}
	if start != "" {
		o.StartDate = d(start)
	}
	return o
}

func rows(n int) []models.Payment {
	out := make([]models.Payment, n)
	for i := range out {
		out[i] = models.Payment{N: i + 1}
	}
	return out
}

func dates(ps []models.Payment) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		if p.Date != nil {
			out[i] = p.Date.String()
		}
	}
	return out
}
