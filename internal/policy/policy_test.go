package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplitReconcilesExactly(t *testing.T) {
	totals := []int64{0, 1, 9, 10, 99, 100_000, 1_000_001}
	for _, total := range totals {
		commission, net := Split(total)
		require.Equal(t, total, commission+net, "split of %d leaks", total)
		require.GreaterOrEqual(t, commission, int64(0))
		require.GreaterOrEqual(t, net, int64(0))
	}
}

func TestSplitRoundsHalfUp(t *testing.T) {
	// 10% of 15 is 1.5, which rounds up to 2.
	commission, net := Split(15)
	require.Equal(t, int64(2), commission)
	require.Equal(t, int64(13), net)

	// 10% of 14 is 1.4, which rounds down to 1.
	commission, net = Split(14)
	require.Equal(t, int64(1), commission)
	require.Equal(t, int64(13), net)

	commission, net = Split(50_000)
	require.Equal(t, int64(5_000), commission)
	require.Equal(t, int64(45_000), net)
}

func TestValidateLeadTimeBoundary(t *testing.T) {
	now := time.Date(2026, time.March, 2, 10, 30, 0, 0, time.UTC)

	// Exactly three calendar days out is accepted regardless of the
	// time of day.
	require.NoError(t, ValidateLeadTime(now, time.Date(2026, time.March, 5, 0, 1, 0, 0, time.UTC)))
	require.NoError(t, ValidateLeadTime(now, time.Date(2026, time.March, 5, 23, 59, 0, 0, time.UTC)))

	// Two calendar days out is one day short, even at 23:00.
	err := ValidateLeadTime(now, time.Date(2026, time.March, 4, 23, 0, 0, 0, time.UTC))
	var lt *LeadTimeError
	require.True(t, errors.As(err, &lt))
	require.Equal(t, 1, lt.DaysShort)

	// Same-day and past starts are short by the full window.
	err = ValidateLeadTime(now, now.Add(2*time.Hour))
	require.True(t, errors.As(err, &lt))
	require.Equal(t, 3, lt.DaysShort)
}
