package service

import (
	"context"
	"time"

	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/schedule"
	"github.com/sirupsen/logrus"
)

// MaxWindowDays bounds the look-ahead of the upcoming feed.
const MaxWindowDays = 366

// feedObligations loads the user's obligations, falling back to the poller snapshot
// when the repository fails.
func (s *Service) feedObligations(ctx context.Context, userID int64) ([]models.Obligation, error) {
	list, err := s.repo.ListObligations(ctx, userID)
	if err == nil {
		return list, nil
	}
	if s.cache != nil {
		if cached, ok := s.cache.Snapshot(userID); ok {
			s.log.WithFields(logrus.Fields{
				"user_id":     userID,
				"snapshot_at": s.cache.RefreshedAt().Format(time.RFC3339),
			}).Warnf("Serving reminder feed from snapshot: %v", err)
			return cached, nil
		}
	}
	return nil, storageErr("list obligations", err)
}

// Upcoming returns the next unpaid payment of each obligation due within windowDays.
// A negative windowDays selects the configured default.
func (s *Service) Upcoming(ctx context.Context, userID int64, windowDays int) ([]models.UpcomingPayment, error) {
	if windowDays < 0 {
		windowDays = s.config.ReminderWindowDays
	}
	if windowDays > MaxWindowDays {
		return nil, schedule.Validationf("window must be within 0-%d days, got %d", MaxWindowDays, windowDays)
	}
	list, err := s.feedObligations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return schedule.GetUpcoming(list, s.today(), windowDays), nil
}

// Overdue returns the earliest overdue unpaid payment of each obligation.
func (s *Service) Overdue(ctx context.Context, userID int64) ([]models.UpcomingPayment, error) {
	list, err := s.feedObligations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return schedule.Overdue(list, s.today()), nil
}

// MonthlySummary aggregates the user's payments for one month. A zero year selects the current month.
func (s *Service) MonthlySummary(ctx context.Context, userID int64, year, month int) (models.MonthSummary, error) {
	today := s.today()
	p := date.MonthOf(today)
	if year != 0 || month != 0 {
		var err error
		if p, err = date.NewYearMonth(year, month); err != nil {
			return models.MonthSummary{}, schedule.Validationf("%v", err)
		}
	}
	list, err := s.repo.ListObligations(ctx, userID)
	if err != nil {
		return models.MonthSummary{}, storageErr("list obligations", err)
	}
	return schedule.MonthlySummary(list, p, today)
}

// YearlySummary aggregates the user's payments month by month. A zero year selects the current year.
func (s *Service) YearlySummary(ctx context.Context, userID int64, year int) (models.YearSummary, error) {
	today := s.today()
	if year == 0 {
		year = today.Year()
	}
	if _, err := date.NewYearMonth(year, 1); err != nil {
		return models.YearSummary{}, schedule.Validationf("%v", err)
	}
	list, err := s.repo.ListObligations(ctx, userID)
	if err != nil {
		return models.YearSummary{}, storageErr("list obligations", err)
	}
	return schedule.YearlySummary(list, year, today)
}
