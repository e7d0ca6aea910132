package tippool_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tippool-engine/tippool"
)

func defaultTolerance() decimal.Decimal {
	return tippool.DefaultConfig().ReconcileTolerance
}

func TestReconcile_ExactMatch(t *testing.T) {
	// GIVEN: Entered hours summing to exactly 40
	// WHEN: Reconciling against a declared 40h00m
	// THEN: Match with zero delta

	entered := hoursMap(map[string]float64{"alice": 30, "bob": 10})
	result := tippool.Reconcile(entered, 40, 0, defaultTolerance())

	assert.True(t, result.Match)
	assert.True(t, result.Delta.IsZero(), "delta should be zero, got %v", result.Delta)
	assert.True(t, result.Summed.Equal(decimal.NewFromInt(40)))
	assert.True(t, result.Declared.Equal(decimal.NewFromInt(40)))
}

func TestReconcile_Mismatch(t *testing.T) {
	// GIVEN: Entered hours summing to 40
	// WHEN: Reconciling against a declared 42h00m
	// THEN: Mismatch with a 2.0 hour discrepancy

	entered := hoursMap(map[string]float64{"alice": 30, "bob": 10})
	result := tippool.Reconcile(entered, 42, 0, defaultTolerance())

	assert.False(t, result.Match)
	assert.True(t, result.Delta.Abs().Equal(decimal.NewFromInt(2)),
		"expected |delta| = 2.0, got %v", result.Delta)
}

func TestReconcile_WithinTolerance(t *testing.T) {
	// GIVEN: Entered hours summing to 40
	// WHEN: Reconciling against 40h05m (40.0833.. hours)
	// THEN: The 0.1h tolerance absorbs the minute-rounding difference

	entered := hoursMap(map[string]float64{"alice": 30, "bob": 10})
	result := tippool.Reconcile(entered, 40, 5, defaultTolerance())

	assert.True(t, result.Match, "5 minutes should sit inside the 0.1h tolerance")
}

func TestReconcile_ToleranceIsExclusive(t *testing.T) {
	// GIVEN: A delta of exactly 6 minutes (0.1 hours)
	// WHEN: Reconciling with the default 0.1 tolerance
	// THEN: Mismatch - match requires strictly less than the tolerance

	entered := hoursMap(map[string]float64{"alice": 40})
	result := tippool.Reconcile(entered, 40, 6, defaultTolerance())

	assert.False(t, result.Match)
}

func TestReconcile_DeltaIsSigned(t *testing.T) {
	// GIVEN: The same 2 hour discrepancy in both directions
	// WHEN: Reconciling
	// THEN: Delta carries the sign (summed − declared) with equal magnitude

	over := tippool.Reconcile(hoursMap(map[string]float64{"a": 42}), 40, 0, defaultTolerance())
	under := tippool.Reconcile(hoursMap(map[string]float64{"a": 38}), 40, 0, defaultTolerance())

	require.True(t, over.Delta.IsPositive())
	require.True(t, under.Delta.IsNegative())
	assert.True(t, over.Delta.Abs().Equal(under.Delta.Abs()))
	assert.Equal(t, over.Match, under.Match, "classification must not depend on direction")
}

func TestReconcile_EmptyEntries(t *testing.T) {
	// No hours entered yet but a declared total typed in: flagged, not error.
	result := tippool.Reconcile(nil, 12, 30, defaultTolerance())

	assert.False(t, result.Match)
	assert.True(t, result.Summed.IsZero())
	assert.True(t, result.Declared.Equal(decimal.RequireFromString("12.5")))
}

func TestHoursFromHM_MinuteClamping(t *testing.T) {
	cases := []struct {
		name           string
		hours, minutes int
		want           string
	}{
		{"half hour", 2, 30, "2.5"},
		{"minutes above range clamp to 59", 2, 75, "2.9833333333333333"},
		{"negative minutes clamp to 0", 2, -10, "2"},
		{"zero", 0, 0, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tippool.HoursFromHM(tc.hours, tc.minutes)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"expected %s, got %v", tc.want, got)
		})
	}
}
