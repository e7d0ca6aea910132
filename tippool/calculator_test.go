package tippool_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/warp/tippool-engine/tippool"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func entries(vs ...float64) [tippool.DaysInWeek]tippool.Money {
	var out [tippool.DaysInWeek]tippool.Money
	for i, v := range vs {
		out[i] = tippool.NewMoney(v)
	}
	return out
}

func hoursMap(pairs map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(pairs))
	for id, h := range pairs {
		out[id] = decimal.NewFromFloat(h)
	}
	return out
}

func feeRate(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// approxEqual checks two decimals within a currency-rounding tolerance.
func approxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(decimal.RequireFromString("0.01"))
}

const testWeek = tippool.WeekKey("2025-03-03")

// =============================================================================
// WORKED EXAMPLE
// =============================================================================

func TestDistribute_WorkedExample(t *testing.T) {
	// GIVEN: Cash 385 total, card 730 total, 3% fee
	// WHEN: Distributing over Alice 30h / Bob 10h
	// THEN: Pool is 1093.10 and splits 819.83 / 273.28 (cent-rounded)

	calc, err := tippool.Distribute(tippool.DistributionInput{
		Week:    testWeek,
		Cash:    entries(50, 60, 40, 70, 55, 65, 45),
		Card:    entries(100, 120, 90, 110, 95, 130, 85),
		FeeRate: feeRate("0.03"),
		Hours:   hoursMap(map[string]float64{"alice": 30, "bob": 10}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !calc.CashTotal.Value.Equal(decimal.NewFromInt(385)) {
		t.Errorf("cash total: expected 385, got %v", calc.CashTotal)
	}
	if !calc.CardTotal.Value.Equal(decimal.NewFromInt(730)) {
		t.Errorf("card total: expected 730, got %v", calc.CardTotal)
	}
	if !calc.CardAfterFee.Cents().Equal(decimal.RequireFromString("708.10")) {
		t.Errorf("card after fee: expected 708.10, got %v", calc.CardAfterFee.Cents())
	}
	if !calc.Pool.Cents().Equal(decimal.RequireFromString("1093.10")) {
		t.Errorf("pool: expected 1093.10, got %v", calc.Pool.Cents())
	}

	if len(calc.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(calc.Lines))
	}
	// Lines are sorted by employee id: alice, bob.
	if !approxEqual(calc.Lines[0].Payout.Value, decimal.RequireFromString("819.83")) {
		t.Errorf("alice payout: expected ~819.83, got %v", calc.Lines[0].Payout.Cents())
	}
	if !approxEqual(calc.Lines[1].Payout.Value, decimal.RequireFromString("273.28")) {
		t.Errorf("bob payout: expected ~273.28, got %v", calc.Lines[1].Payout.Cents())
	}
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestDistribute_PoolConservation(t *testing.T) {
	// GIVEN: Any valid entries and hours
	// WHEN: Distributing
	// THEN: The payout lines sum back to the pool within rounding tolerance

	cases := []struct {
		name  string
		cash  [tippool.DaysInWeek]tippool.Money
		card  [tippool.DaysInWeek]tippool.Money
		fee   string
		hours map[string]float64
	}{
		{
			name:  "three employees, uneven hours",
			cash:  entries(50, 60, 40, 70, 55, 65, 45),
			card:  entries(100, 120, 90, 110, 95, 130, 85),
			fee:   "0.03",
			hours: map[string]float64{"a": 30, "b": 10, "c": 7.25},
		},
		{
			name:  "fractional cents everywhere",
			cash:  entries(10.01, 0.99, 33.33, 0, 0.01, 12.5, 7.77),
			card:  entries(99.99, 0, 0.03, 250.75, 18.18, 0, 5),
			fee:   "0.029",
			hours: map[string]float64{"a": 11.5, "b": 3.25, "c": 40, "d": 0.5},
		},
		{
			name:  "single employee takes the whole pool",
			cash:  entries(1, 2, 3, 4, 5, 6, 7),
			card:  entries(7, 6, 5, 4, 3, 2, 1),
			fee:   "0.1",
			hours: map[string]float64{"solo": 13},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calc, err := tippool.Distribute(tippool.DistributionInput{
				Week:    testWeek,
				Cash:    tc.cash,
				Card:    tc.card,
				FeeRate: feeRate(tc.fee),
				Hours:   hoursMap(tc.hours),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			sum := decimal.Zero
			for _, line := range calc.Lines {
				sum = sum.Add(line.Payout.Value)
			}
			if !approxEqual(sum, calc.Pool.Value) {
				t.Errorf("payouts sum %v does not reconstruct pool %v", sum, calc.Pool.Value)
			}
		})
	}
}

func TestDistribute_ZeroHours_RateIsZero(t *testing.T) {
	// GIVEN: Tips collected but all hours are zero
	// WHEN: Distributing
	// THEN: Rate is 0, no division error, every payout is 0

	calc, err := tippool.Distribute(tippool.DistributionInput{
		Week:    testWeek,
		Cash:    entries(50, 60, 40, 70, 55, 65, 45),
		Card:    entries(100, 120, 90, 110, 95, 130, 85),
		FeeRate: feeRate("0.03"),
		Hours:   hoursMap(map[string]float64{"alice": 0, "bob": 0}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !calc.HourlyRate.IsZero() {
		t.Errorf("expected zero rate, got %v", calc.HourlyRate)
	}
	for _, line := range calc.Lines {
		if !line.Payout.IsZero() {
			t.Errorf("expected zero payout for %s, got %v", line.EmployeeID, line.Payout)
		}
	}
}

func TestDistribute_NoEmployees(t *testing.T) {
	calc, err := tippool.Distribute(tippool.DistributionInput{
		Week:    testWeek,
		Cash:    entries(10, 10, 10, 10, 10, 10, 10),
		Card:    entries(0, 0, 0, 0, 0, 0, 0),
		FeeRate: feeRate("0.03"),
		Hours:   nil,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !calc.HourlyRate.IsZero() || len(calc.Lines) != 0 {
		t.Errorf("expected zero rate and no lines, got rate=%v lines=%d", calc.HourlyRate, len(calc.Lines))
	}
}

func TestDistribute_FeeMonotonicity(t *testing.T) {
	// GIVEN: A fixed positive card total
	// WHEN: Raising the fee rate
	// THEN: cardAfterFee and the pool strictly decrease

	input := func(fee string) tippool.DistributionInput {
		return tippool.DistributionInput{
			Week:    testWeek,
			Cash:    entries(50, 60, 40, 70, 55, 65, 45),
			Card:    entries(100, 120, 90, 110, 95, 130, 85),
			FeeRate: feeRate(fee),
			Hours:   hoursMap(map[string]float64{"a": 10}),
		}
	}

	prev, err := tippool.Distribute(input("0"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, fee := range []string{"0.01", "0.03", "0.1", "0.5", "0.99"} {
		calc, err := tippool.Distribute(input(fee))
		if err != nil {
			t.Fatalf("fee %s: unexpected error: %v", fee, err)
		}
		if !calc.CardAfterFee.LessThan(prev.CardAfterFee) {
			t.Errorf("fee %s: cardAfterFee %v did not decrease from %v", fee, calc.CardAfterFee, prev.CardAfterFee)
		}
		if !calc.Pool.LessThan(prev.Pool) {
			t.Errorf("fee %s: pool %v did not decrease from %v", fee, calc.Pool, prev.Pool)
		}
		prev = calc
	}
}

// =============================================================================
// CONTRACT VIOLATIONS
// =============================================================================

func TestDistribute_NegativeEntry_Rejected(t *testing.T) {
	// GIVEN: A negative cash entry on Wednesday
	// WHEN: Distributing
	// THEN: Rejected with a field-identifying error, not clamped

	_, err := tippool.Distribute(tippool.DistributionInput{
		Week:    testWeek,
		Cash:    entries(50, 60, -40, 70, 55, 65, 45),
		Card:    entries(0, 0, 0, 0, 0, 0, 0),
		FeeRate: feeRate("0.03"),
		Hours:   hoursMap(map[string]float64{"a": 1}),
	})
	if !errors.Is(err, tippool.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}

	var fieldErr *tippool.FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %T", err)
	}
	if fieldErr.Field != "cash_entries" || fieldErr.Index != int(tippool.Wednesday) {
		t.Errorf("expected cash_entries[Wednesday], got %s[%d]", fieldErr.Field, fieldErr.Index)
	}
}

func TestDistribute_NegativeHours_Rejected(t *testing.T) {
	_, err := tippool.Distribute(tippool.DistributionInput{
		Week:    testWeek,
		Cash:    entries(0, 0, 0, 0, 0, 0, 0),
		Card:    entries(0, 0, 0, 0, 0, 0, 0),
		FeeRate: feeRate("0.03"),
		Hours:   hoursMap(map[string]float64{"a": -5}),
	})
	if !errors.Is(err, tippool.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestDistribute_BadFeeRate_Rejected(t *testing.T) {
	for _, fee := range []string{"-0.01", "1", "1.5"} {
		_, err := tippool.Distribute(tippool.DistributionInput{
			Week:    testWeek,
			FeeRate: feeRate(fee),
		})
		if !errors.Is(err, tippool.ErrBadFeeRate) {
			t.Errorf("fee %s: expected ErrBadFeeRate, got %v", fee, err)
		}
	}
}

func TestEntriesFromStrings_WrongLength_Rejected(t *testing.T) {
	// GIVEN: Six entries instead of seven
	// WHEN: Converting at the slice boundary
	// THEN: ErrBadEntryCount naming the field

	_, err := tippool.EntriesFromStrings("cash_entries", []string{"1", "2", "3", "4", "5", "6"})
	if !errors.Is(err, tippool.ErrBadEntryCount) {
		t.Fatalf("expected ErrBadEntryCount, got %v", err)
	}
	if !tippool.IsClientError(err) {
		t.Error("bad entry count should classify as a client error")
	}
}

func TestEntriesFromStrings_NegativeValue_Rejected(t *testing.T) {
	_, err := tippool.EntriesFromStrings("cc_entries", []string{"1", "2", "-3", "4", "5", "6", "7"})
	if !errors.Is(err, tippool.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}
