package service

import (
	"context"
	"errors"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/Dan9191/finance-tracker/internal/repository"
	"github.com/Dan9191/finance-tracker/internal/schedule"
	"github.com/sirupsen/logrus"
)

// scheduleStore saves a working copy through the repository. Only the schedule comes from
// the copy; the stored terms are kept. On success o holds what was stored.
type scheduleStore struct {
	repo Repository
}

func (st scheduleStore) ReplaceObligation(ctx context.Context, o *models.Obligation) error {
	if err := validatePayments(o.Payments); err != nil {
		return err
	}
	cur, err := st.repo.GetObligation(ctx, o.UserID, o.ID)
	if err == nil {
		cur.Payments = o.Payments
		err = st.repo.ReplaceObligation(ctx, cur)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return schedule.NotFoundf("obligation %d", o.ID)
	}
	if err != nil {
		return err
	}
	*o = *cur
	return nil
}

func (s *Service) warnMissing(userID, id int64, err error) error {
	var nf *schedule.NotFoundError
	if errors.As(err, &nf) {
		s.log.WithFields(logrus.Fields{"user_id": userID, "obligation_id": id}).Warn(err.Error())
	}
	return err
}

// owned fails with NotFoundError unless userID has a working copy of obligation id.
func (s *Service) owned(userID, id int64) error {
	o, err := s.buffer.Obligation(id)
	if err == nil && o.UserID != userID {
		err = schedule.NotFoundf("edit session for obligation %d", id)
	}
	return s.warnMissing(userID, id, err)
}

// StartEdit opens a working copy of the stored schedule, discarding any previous one.
func (s *Service) StartEdit(ctx context.Context, userID, id int64) (models.ObligationView, error) {
	o, err := s.repo.GetObligation(ctx, userID, id)
	if err != nil {
		return models.ObligationView{}, s.warnMissing(userID, id, storageErr("get obligation", err))
	}
	s.buffer.Start(*o)
	return schedule.View(*o), nil
}

// EditDraft returns the obligation as it would be saved, with progress over the working copy.
func (s *Service) EditDraft(userID, id int64) (models.ObligationView, error) {
	if err := s.owned(userID, id); err != nil {
		return models.ObligationView{}, err
	}
	o, err := s.buffer.Obligation(id)
	if err != nil {
		return models.ObligationView{}, err
	}
	return schedule.View(o), nil
}

// CancelEdit discards the working copy.
func (s *Service) CancelEdit(userID, id int64) error {
	if err := s.owned(userID, id); err != nil {
		return err
	}
	s.buffer.Cancel(id)
	return nil
}

// AppendPayment adds a new row to the working copy.
func (s *Service) AppendPayment(userID, id int64) (models.Payment, error) {
	if err := s.owned(userID, id); err != nil {
		return models.Payment{}, err
	}
	return s.buffer.Append(id)
}

// RemovePayment deletes row n from the working copy.
func (s *Service) RemovePayment(userID, id int64, n int) error {
	if err := s.owned(userID, id); err != nil {
		return err
	}
	return s.warnMissing(userID, id, s.buffer.Remove(id, n))
}

// UpdatePayment changes fields of row n in the working copy.
func (s *Service) UpdatePayment(userID, id int64, n int, patch schedule.PaymentPatch) (models.Payment, error) {
	if err := s.owned(userID, id); err != nil {
		return models.Payment{}, err
	}
	p, err := s.buffer.Update(id, n, patch)
	return p, s.warnMissing(userID, id, err)
}

// AutoFill regenerates dates and default amounts of the working copy.
func (s *Service) AutoFill(userID, id int64) ([]models.Payment, error) {
	if err := s.owned(userID, id); err != nil {
		return nil, err
	}
	return s.buffer.AutoFill(id)
}

// SaveEdit replaces the stored schedule with the working copy. On failure the copy is kept.
func (s *Service) SaveEdit(ctx context.Context, userID, id int64) (models.ObligationView, error) {
	if err := s.owned(userID, id); err != nil {
		return models.ObligationView{}, err
	}
	o, err := s.buffer.Save(ctx, id, scheduleStore{repo: s.repo})
	if err != nil {
		var te *schedule.TransientIOError
		if errors.As(err, &te) {
			s.log.WithField("obligation_id", id).Errorf("Schedule save failed, working copy kept: %v", err)
		}
		return models.ObligationView{}, s.warnMissing(userID, id, err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "obligation_id": id}).
		Infof("Schedule saved: %d payments", len(o.Payments))
	return schedule.View(o), nil
}
