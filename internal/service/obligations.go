package service

import (
	"context"
	"strings"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/schedule"
	"github.com/Rhymond/go-money"
)

// normalize validates o in place and fills defaults.
func (s *Service) normalize(o *models.Obligation) error {
	o.Title = strings.TrimSpace(o.Title)
	if o.Title == "" {
		return schedule.Validationf("title is required")
	}
	if o.Total.IsNegative() {
		return schedule.Validationf("total must not be negative")
	}
	if o.Monthly.IsNegative() {
		return schedule.Validationf("monthly must not be negative")
	}
	if o.Rate < 0 {
		return schedule.Validationf("rate must not be negative")
	}
	if o.DueDay < 1 || o.DueDay > 31 {
		return schedule.Validationf("dueDay must be within 1-31, got %d", o.DueDay)
	}
	if o.Status == "" {
		o.Status = models.StatusActive
	}
	if !o.Status.Valid() {
		return schedule.Validationf("unknown status %q", o.Status)
	}

	o.Currency = strings.ToUpper(strings.TrimSpace(o.Currency))
	if o.Currency == "" {
		o.Currency = s.config.DefaultCurrency
	}
	if money.GetCurrency(o.Currency) == nil {
		return schedule.Validationf("unknown currency %q", o.Currency)
	}

	if o.Payments == nil {
		o.Payments = []models.Payment{}
	}
	return validatePayments(o.Payments)
}

func validatePayments(payments []models.Payment) error {
	seen := make(map[int]bool, len(payments))
	for _, p := range payments {
		if p.N < 1 {
			return schedule.Validationf("payment number must be positive, got %d", p.N)
		}
		if seen[p.N] {
			return schedule.Validationf("duplicate payment number %d", p.N)
		}
		seen[p.N] = true
		if p.Amount.IsNegative() {
			return schedule.Validationf("payment %d: amount must not be negative", p.N)
		}
	}
	return nil
}

// ListObligations returns the user's obligations with derived progress.
func (s *Service) ListObligations(ctx context.Context, userID int64) ([]models.ObligationView, error) {
	list, err := s.repo.ListObligations(ctx, userID)
	if err != nil {
		return nil, storageErr("list obligations", err)
	}
	return schedule.Views(list), nil
}

// GetObligation returns one obligation with derived progress.
func (s *Service) GetObligation(ctx context.Context, userID, id int64) (models.ObligationView, error) {
	o, err := s.repo.GetObligation(ctx, userID, id)
	if err != nil {
		return models.ObligationView{}, storageErr("get obligation", err)
	}
	return schedule.View(*o), nil
}

// CreateObligation validates and stores a new obligation owned by userID.
func (s *Service) CreateObligation(ctx context.Context, userID int64, o models.Obligation) (models.ObligationView, error) {
	o = o.Clone()
	o.ID = 0
	o.UserID = userID
	if err := s.normalize(&o); err != nil {
		return models.ObligationView{}, err
	}
	if err := s.repo.CreateObligation(ctx, &o); err != nil {
		return models.ObligationView{}, storageErr("create obligation", err)
	}
	s.log.WithField("user_id", userID).Infof("Obligation created: %d %q", o.ID, o.Title)
	return schedule.View(o), nil
}

// UpdateObligation replaces the terms of an obligation. A nil schedule keeps the stored one.
func (s *Service) UpdateObligation(ctx context.Context, userID, id int64, o models.Obligation) (models.ObligationView, error) {
	keepSchedule := o.Payments == nil
	o = o.Clone()
	o.ID = id
	o.UserID = userID
	if keepSchedule {
		cur, err := s.repo.GetObligation(ctx, userID, id)
		if err != nil {
			return models.ObligationView{}, storageErr("get obligation", err)
		}
		o.Payments = cur.Payments
	}
	if err := s.normalize(&o); err != nil {
		return models.ObligationView{}, err
	}
	if err := s.repo.ReplaceObligation(ctx, &o); err != nil {
		return models.ObligationView{}, storageErr("replace obligation", err)
	}
	s.log.WithField("user_id", userID).Infof("Obligation updated: %d", id)
	if s.buffer.Editing(id) {
		s.buffer.Rebase(o)
		s.log.WithField("obligation_id", id).Info("Open working copy now uses the updated terms")
	}
	return schedule.View(o), nil
}

// DeleteObligation removes the obligation and discards any working copy of its schedule.
func (s *Service) DeleteObligation(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteObligation(ctx, userID, id); err != nil {
		return storageErr("delete obligation", err)
	}
	s.buffer.Cancel(id)
	s.log.WithField("user_id", userID).Infof("Obligation deleted: %d", id)
	return nil
}
