package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	saved   []models.Obligation
	failErr error
}

func (s *fakeStore) ReplaceObligation(_ context.Context, o *models.Obligation) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.saved = append(s.saved, o.Clone())
	return nil
}

func withSchedule(id int64) models.Obligation {
	o := loan(id, "2024-01-15", 15, 5000)
	o.Payments = []models.Payment{
		{N: 1, OK: true, Date: d("2024-02-15"), Amount: dec(5000)},
		{N: 4, Date: d("2024-03-15"), Amount: dec(5000)},
	}
	return o
}

func TestEditBufferStartIsACopy(t *testing.T) {
	b := NewEditBuffer()
	o := withSchedule(1)

	b.Start(o)
	_, err := b.Update(1, 1, PaymentPatch{Note: ptr("changed"), ClearDate: true})
	require.NoError(t, err)

	assert.Equal(t, "", o.Payments[0].Note)
	assert.Equal(t, "2024-02-15", o.Payments[0].Date.String())
}

func TestEditBufferAppend(t *testing.T) {
	b := NewEditBuffer()
	b.Start(withSchedule(1))

	row, err := b.Append(1)

	require.NoError(t, err)
	assert.Equal(t, 5, row.N)
	assert.False(t, row.OK)
	assert.Nil(t, row.Date)
	assert.Equal(t, "5000", row.Amount.String())

	ps, _ := b.Payments(1)
	assert.Len(t, ps, 3)
}

func TestEditBufferRemoveAndUpdate(t *testing.T) {
	b := NewEditBuffer()
	b.Start(withSchedule(1))

	require.NoError(t, b.Remove(1, 4))
	ps, _ := b.Payments(1)
	require.Len(t, ps, 1)

	row, err := b.Update(1, 1, PaymentPatch{OK: ptr(false), Amount: ptr(dec(4200)), Date: d("2024-02-20")})
	require.NoError(t, err)
	assert.False(t, row.OK)
	assert.Equal(t, "4200", row.Amount.String())
	assert.Equal(t, "2024-02-20", row.Date.String())

	_, err = b.Update(1, 1, PaymentPatch{Amount: ptr(dec(-1))})
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestEditBufferNotFound(t *testing.T) {
	b := NewEditBuffer()
	b.Start(withSchedule(1))
	var nf *NotFoundError

	assert.True(t, errors.As(b.Remove(1, 99), &nf))
	_, err := b.Update(1, 99, PaymentPatch{})
	assert.True(t, errors.As(err, &nf))
	_, err = b.Append(2)
	assert.True(t, errors.As(err, &nf))
	_, err = b.Save(context.Background(), 2, &fakeStore{})
	assert.True(t, errors.As(err, &nf))

	ps, _ := b.Payments(1)
	assert.Len(t, ps, 2)
}

func TestEditBufferIsolation(t *testing.T) {
	b := NewEditBuffer()
	a, other := withSchedule(1), withSchedule(2)
	b.Start(a)
	b.Start(other)

	_, err := b.Append(1)
	require.NoError(t, err)
	require.NoError(t, b.Remove(1, 1))

	psB, _ := b.Payments(2)
	assert.Equal(t, other.Payments, psB)
	assert.Len(t, other.Payments, 2)

	b.Cancel(1)
	assert.False(t, b.Editing(1))
	assert.True(t, b.Editing(2))
}

func TestEditBufferAutoFill(t *testing.T) {
	b := NewEditBuffer()
	o := loan(1, "2024-01-15", 15, 5000)
	b.Start(o)
	for i := 0; i < 3; i++ {
		_, err := b.Append(1)
		require.NoError(t, err)
	}

	got, err := b.AutoFill(1)

	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-15", "2024-03-15", "2024-04-15"}, dates(got))

	b.Start(loan(2, "", 15, 5000))
	_, err = b.Append(2)
	require.NoError(t, err)
	_, err = b.AutoFill(2)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	ps, _ := b.Payments(2)
	assert.Nil(t, ps[0].Date)
}

func TestEditBufferRebase(t *testing.T) {
	b := NewEditBuffer()
	b.Start(loan(1, "2024-01-15", 15, 5000))
	_, err := b.Append(1)
	require.NoError(t, err)

	updated := loan(1, "2024-03-10", 10, 8000)
	updated.Title = "Renamed"
	b.Rebase(updated)
	b.Rebase(loan(2, "2024-01-01", 1, 1))

	o, err := b.Obligation(1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", o.Title)
	assert.Len(t, o.Payments, 1)
	assert.False(t, b.Editing(2))

	filled, err := b.AutoFill(1)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-10", filled[0].Date.String())
}

func TestEditBufferSave(t *testing.T) {
	t.Run("replaces the schedule and clears the entry", func(t *testing.T) {
		b := NewEditBuffer()
		store := &fakeStore{}
		b.Start(withSchedule(1))
		_, _ = b.Append(1)

		saved, err := b.Save(context.Background(), 1, store)

		require.NoError(t, err)
		assert.Len(t, saved.Payments, 3)
		require.Len(t, store.saved, 1)
		assert.Equal(t, int64(1), store.saved[0].ID)
		assert.False(t, b.Editing(1))
	})

	t.Run("failed save keeps the buffer for a retry", func(t *testing.T) {
		b := NewEditBuffer()
		store := &fakeStore{failErr: errors.New("connection refused")}
		b.Start(withSchedule(1))
		_, _ = b.Append(1)
		before, _ := b.Payments(1)

		_, err := b.Save(context.Background(), 1, store)

		var tio *TransientIOError
		require.True(t, errors.As(err, &tio))
		assert.Contains(t, err.Error(), "connection refused")
		after, _ := b.Payments(1)
		assert.Equal(t, before, after)

		store.failErr = nil
		saved, err := b.Save(context.Background(), 1, store)
		require.NoError(t, err)
		assert.Equal(t, before, saved.Payments)
		assert.False(t, b.Editing(1))
	})

	t.Run("not found from the store is passed through", func(t *testing.T) {
		b := NewEditBuffer()
		b.Start(withSchedule(1))

		_, err := b.Save(context.Background(), 1, &fakeStore{failErr: NotFoundf("obligation 1")})

		var nf *NotFoundError
		assert.True(t, errors.As(err, &nf))
		assert.True(t, b.Editing(1))
	})
}

func ptr[T any](v T) *T { return &v }
