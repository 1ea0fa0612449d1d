package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dan9191/finance-tracker/internal/date"
	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

var obligationCols = []string{"id", "user_id", "title", "total", "monthly", "rate", "due_day",
	"start_date", "next_payment", "close_date", "status", "currency"}

func TestListObligations(t *testing.T) {
	repo, mock := newMock(t)
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM bank.obligations WHERE user_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(obligationCols).
			AddRow(1, 7, "Mortgage", "120000.00", "10000.00", 9.5, 15, start, nil, nil, "active", "RUB").
			AddRow(2, 7, "Car", "5000.00", "500.00", 0.0, 1, nil, nil, nil, "closed", "USD"))
	mock.ExpectQuery(`FROM bank.obligation_payments`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"obligation_id", "n", "ok", "due_date", "amount", "note"}).
			AddRow(1, 1, true, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), "10000.00", "").
			AddRow(1, 2, false, nil, "10000.00", "later"))

	got, err := repo.ListObligations(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Mortgage", got[0].Title)
	assert.Equal(t, "120000", got[0].Total.String())
	assert.Equal(t, "2024-01-15", got[0].StartDate.String())
	require.Len(t, got[0].Payments, 2)
	assert.Equal(t, "2024-02-15", got[0].Payments[0].Date.String())
	assert.Nil(t, got[0].Payments[1].Date)
	assert.Equal(t, "later", got[0].Payments[1].Note)
	assert.Empty(t, got[1].Payments)
	assert.Nil(t, got[1].StartDate)
	assert.Equal(t, models.StatusClosed, got[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetObligationNotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`FROM bank.obligations WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(3), int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetObligation(context.Background(), 7, 3)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceObligation(t *testing.T) {
	o := &models.Obligation{
		ID: 1, UserID: 7, Title: "Mortgage", Total: decimal.NewFromInt(120000), Monthly: decimal.NewFromInt(10000),
		DueDay: 15, Status: models.StatusActive, Currency: "RUB",
		Payments: []models.Payment{
			{N: 1, OK: true, Date: date.MustParse("2024-02-15").Ptr(), Amount: decimal.NewFromInt(10000)},
			{N: 3, Amount: decimal.NewFromInt(10000)},
		},
	}

	t.Run("swaps the schedule in one transaction", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE bank.obligations`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM bank.obligation_payments WHERE obligation_id = \$1`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 4))
		prep := mock.ExpectPrepare(`INSERT INTO bank.obligation_payments`)
		prep.ExpectExec().WithArgs(int64(1), 0, 1, true, sqlmock.AnyArg(), sqlmock.AnyArg(), "").
			WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().WithArgs(int64(1), 1, 3, false, nil, sqlmock.AnyArg(), "").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.ReplaceObligation(context.Background(), o))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing obligation rolls back", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE bank.obligations`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.ReplaceObligation(context.Background(), o)

		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed insert rolls back", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE bank.obligations`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM bank.obligation_payments`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectPrepare(`INSERT INTO bank.obligation_payments`).
			ExpectExec().WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := repo.ReplaceObligation(context.Background(), o)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert payment 1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO bank.users`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.CreateUser(context.Background(), &models.User{Email: "a@b.c"})

	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestDeleteObligation(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM bank.obligations`).WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM bank.obligations`).WithArgs(int64(1), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteObligation(context.Background(), 7, 1))
	assert.ErrorIs(t, repo.DeleteObligation(context.Background(), 7, 1), ErrNotFound)
}

func TestMemoryOwnership(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	o := &models.Obligation{UserID: 1, Title: "Loan"}
	require.NoError(t, m.CreateObligation(ctx, o))
	require.NotZero(t, o.ID)

	_, err := m.GetObligation(ctx, 2, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	other := o.Clone()
	other.UserID = 2
	assert.ErrorIs(t, m.ReplaceObligation(ctx, &other), ErrNotFound)
	assert.ErrorIs(t, m.DeleteObligation(ctx, 2, o.ID), ErrNotFound)

	got, err := m.GetObligation(ctx, 1, o.ID)
	require.NoError(t, err)
	got.Payments = append(got.Payments, models.Payment{N: 1})
	stored, _ := m.GetObligation(ctx, 1, o.ID)
	assert.Empty(t, stored.Payments)
}
