package finance

import (
	"testing"

	"github.com/TrekLedger/trek-ledger-backend/pkg/valueobjects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount float64) valueobjects.Money {
	t.Helper()
	m, err := valueobjects.NewPositiveMoney(amount)
	require.NoError(t, err)
	return m
}

func TestSplitAdvanceDefaultReserve(t *testing.T) {
	split, err := SplitAdvance(mustMoney(t, 10000), 0.60)
	require.NoError(t, err)

	assert.Equal(t, float64(6000), split.TripReserveAmount)
	assert.Equal(t, float64(2000), split.OperatingAmount)
	assert.Equal(t, float64(2000), split.BusinessAmount)
}

func TestSplitAdvanceSumsExactly(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		reservePct float64
	}{
		{"round numbers", 10000, 0.60},
		{"odd amount", 9999.99, 0.60},
		{"uneven percentage", 10000, 0.33},
		{"tiny amount", 0.03, 0.50},
		{"full reserve", 5000, 1.0},
		{"no reserve", 5000, 0},
		{"awkward fraction", 777.77, 0.45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := SplitAdvance(mustMoney(t, tt.amount), tt.reservePct)
			require.NoError(t, err)

			sum := split.TripReserveAmount + split.OperatingAmount + split.BusinessAmount
			assert.InDelta(t, tt.amount, sum, 1e-9)
			assert.GreaterOrEqual(t, split.TripReserveAmount, float64(0))
			assert.GreaterOrEqual(t, split.OperatingAmount, float64(0))
			assert.GreaterOrEqual(t, split.BusinessAmount, float64(0))
			// operating and business differ by at most one rounding cent
			assert.InDelta(t, split.OperatingAmount, split.BusinessAmount, 0.01)
		})
	}
}

func TestSplitAdvanceIsDeterministic(t *testing.T) {
	// The same two inputs must produce identical output: the split backs both
	// the live form preview and the persisted payment row.
	first, err := SplitAdvance(mustMoney(t, 12345.67), 0.55)
	require.NoError(t, err)
	second, err := SplitAdvance(mustMoney(t, 12345.67), 0.55)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplitAdvanceRejectsBadPercentage(t *testing.T) {
	_, err := SplitAdvance(mustMoney(t, 1000), -0.1)
	assert.Error(t, err)

	_, err = SplitAdvance(mustMoney(t, 1000), 1.5)
	assert.Error(t, err)
}
