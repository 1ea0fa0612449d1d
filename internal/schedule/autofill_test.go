package schedule

import (
	"errors"
	"testing"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoFill(t *testing.T) {
	t.Run("fills dates one month apart from the start date", func(t *testing.T) {
		o := loan(1, "2024-01-15", 15, 5000)

		got, err := AutoFill(o, rows(3))

		require.NoError(t, err)
		assert.Equal(t, []string{"2024-02-15", "2024-03-15", "2024-04-15"}, dates(got))
		for _, p := range got {
			assert.Equal(t, "5000", p.Amount.String())
		}
	})

	t.Run("clamps the due day to short months", func(t *testing.T) {
		o := loan(1, "2023-12-31", 31, 1000)

		got, err := AutoFill(o, rows(4))

		require.NoError(t, err)
		assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}, dates(got))
	})

	t.Run("keeps the first row date as anchor", func(t *testing.T) {
		o := loan(1, "2024-01-15", 20, 1000)
		in := rows(3)
		in[0].Date = d("2024-05-03")
		in[1].Date = d("2030-01-01")

		got, err := AutoFill(o, in)

		require.NoError(t, err)
		assert.Equal(t, []string{"2024-05-03", "2024-06-20", "2024-07-20"}, dates(got))
	})

	t.Run("keeps amounts, flags and notes", func(t *testing.T) {
		o := loan(1, "2024-01-15", 15, 5000)
		in := rows(2)
		in[0].OK = true
		in[0].Note = "early"
		in[1].Amount = dec(7000)

		got, err := AutoFill(o, in)

		require.NoError(t, err)
		assert.True(t, got[0].OK)
		assert.Equal(t, "early", got[0].Note)
		assert.Equal(t, "5000", got[0].Amount.String())
		assert.Equal(t, "7000", got[1].Amount.String())
	})

	t.Run("chains in sequence order and keeps row positions", func(t *testing.T) {
		o := loan(1, "2024-01-10", 10, 100)
		in := []models.Payment{{N: 3}, {N: 1}, {N: 2}}

		got, err := AutoFill(o, in)

		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, []int{got[0].N, got[1].N, got[2].N})
		assert.Equal(t, []string{"2024-04-10", "2024-02-10", "2024-03-10"}, dates(got))
	})

	t.Run("does not modify its input", func(t *testing.T) {
		o := loan(1, "2024-01-15", 15, 5000)
		in := rows(2)

		_, err := AutoFill(o, in)

		require.NoError(t, err)
		assert.Nil(t, in[0].Date)
		assert.True(t, in[1].Amount.IsZero())
	})

	t.Run("empty schedule is a no-op", func(t *testing.T) {
		got, err := AutoFill(loan(1, "2024-01-15", 15, 5000), nil)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects missing terms", func(t *testing.T) {
		for _, o := range []models.Obligation{
			loan(1, "", 15, 5000),
			loan(1, "2024-01-15", 15, 0),
		} {
			_, err := AutoFill(o, rows(1))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, "missing start date or monthly amount", ve.Msg)
		}
	})

	t.Run("rejects an out of range due day", func(t *testing.T) {
		_, err := AutoFill(loan(1, "2024-01-15", 32, 5000), rows(1))
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve))
	})
}

func TestAutoFillIdempotent(t *testing.T) {
	cases := []models.Obligation{
		loan(1, "2024-01-15", 15, 5000),
		loan(2, "2023-01-31", 31, 999),
		loan(3, "2024-11-29", 29, 1),
	}
	for _, o := range cases {
		in := rows(14)
		in[5].Date = d("2020-01-01")
		in[7].Amount = dec(3)

		once, err := AutoFill(o, in)
		require.NoError(t, err)
		twice, err := AutoFill(o, once)
		require.NoError(t, err)

		assert.Equal(t, once, twice)
		assert.Len(t, once, len(in))
		for i := range in {
			assert.Equal(t, in[i].N, once[i].N)
		}
	}
}
