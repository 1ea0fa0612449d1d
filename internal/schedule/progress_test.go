package schedule

import (
	"testing"

	"github.com/Dan9191/finance-tracker/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	t.Run("half paid", func(t *testing.T) {
		ps := rows(12)
		for i := 0; i < 6; i++ {
			ps[i].OK = true
			ps[i].Amount = dec(10000)
		}
		for i := 6; i < 12; i++ {
			ps[i].Amount = dec(10000)
		}

		got := ComputeProgress(dec(120000), ps)

		assert.Equal(t, "60000", got.PaidTotal.String())
		assert.Equal(t, "60000", got.Remaining.String())
		assert.Equal(t, 50.0, got.ProgressPct)
	})

	t.Run("empty schedule", func(t *testing.T) {
		got := ComputeProgress(dec(5000), []models.Payment{})

		assert.True(t, got.PaidTotal.IsZero())
		assert.Equal(t, "5000", got.Remaining.String())
		assert.Zero(t, got.ProgressPct)
	})

	t.Run("zero total", func(t *testing.T) {
		got := ComputeProgress(dec(0), []models.Payment{{N: 1, OK: true, Amount: dec(10)}})

		assert.Equal(t, "10", got.PaidTotal.String())
		assert.True(t, got.Remaining.IsZero())
		assert.Zero(t, got.ProgressPct)
	})

	t.Run("over-paid clamps remaining", func(t *testing.T) {
		got := ComputeProgress(dec(100), []models.Payment{
			{N: 1, OK: true, Amount: dec(80)},
			{N: 2, OK: true, Amount: dec(70)},
		})

		assert.Equal(t, "150", got.PaidTotal.String())
		assert.True(t, got.Remaining.IsZero())
		assert.Equal(t, 150.0, got.ProgressPct)
	})

	t.Run("paid rows without a date still count", func(t *testing.T) {
		got := ComputeProgress(dec(1000), []models.Payment{{N: 1, OK: true, Amount: dec(250)}})

		assert.Equal(t, 25.0, got.ProgressPct)
	})
}

func TestRemainingInvariant(t *testing.T) {
	for _, paid := range []int64{0, 1, 999, 1000, 1001, 50000} {
		total := dec(1000)
		got := ComputeProgress(total, []models.Payment{{N: 1, OK: true, Amount: dec(paid)}})

		want := total.Sub(dec(paid))
		if want.IsNegative() {
			want = dec(0)
		}
		assert.True(t, want.Equal(got.Remaining), "paid %d", paid)
		assert.GreaterOrEqual(t, got.ProgressPct, 0.0)
	}
}
