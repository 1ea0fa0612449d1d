package date

import (
	"fmt"
	"time"
)

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month containing d.
func MonthOf(d Date) YearMonth { return YearMonth{d.y, d.m} }

// NewYearMonth validates month and returns the period.
func NewYearMonth(year int, month int) (YearMonth, error) {
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("invalid month %d", month)
	}
	if year < 1 || year > 9999 {
		return YearMonth{}, fmt.Errorf("invalid year %d", year)
	}
	return YearMonth{year, time.Month(month)}, nil
}

// First returns the first day of the month.
func (p YearMonth) First() Date { return Date{p.Year, p.Month, 1} }

// Last returns the last day of the month.
func (p YearMonth) Last() Date { return Date{p.Year, p.Month, DaysIn(p.Year, p.Month)} }

// Contains reports whether d falls within the month.
func (p YearMonth) Contains(d Date) bool { return d.y == p.Year && d.m == p.Month }

// Prev returns the previous month.
func (p YearMonth) Prev() YearMonth { return MonthOf(p.First().AddMonthsClamped(-1, 1)) }

// Next returns the following month.
func (p YearMonth) Next() YearMonth { return MonthOf(p.First().AddMonthsClamped(1, 1)) }

// After reports whether p is later than x.
func (p YearMonth) After(x YearMonth) bool {
	return p.Year > x.Year || (p.Year == x.Year && p.Month > x.Month)
}

// String formats the month as YYYY-MM.
func (p YearMonth) String() string { return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month)) }
