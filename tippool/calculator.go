/*
calculator.go - Payout distribution

PURPOSE:
  Pure computation: (cash entries, card entries, fee rate, hours map) → a
  PayoutCalculation. No I/O, no clock, no store access. The HTTP layer and
  the historical aggregator both call into this single implementation so a
  replayed week computes exactly what the live screen showed.

THE ARITHMETIC:
  cardAfterFee = cardTotal × (1 − feeRate)
  pool         = cashTotal + cardAfterFee
  rate         = pool / Σ hours        (0 when Σ hours is 0, not an error)
  payout[e]    = hours[e] × rate       (full precision; round at display)

CONTRACT:
  - Sequences must have exactly 7 entries (enforced at the slice boundary)
  - Negative entries and negative hours are rejected, never clamped
  - Fee rate must be in [0, 1)

SEE ALSO:
  - types.go: PayoutCalculation
  - aggregate.go: Replays this across week ranges
*/
package tippool

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT VALIDATION
// =============================================================================

// EntriesFromStrings converts a caller-supplied slice of decimal strings
// into a fixed seven-entry sequence. Wrong length or a negative value is a
// contract violation identifying the offending field and position.
func EntriesFromStrings(field string, vs []string) ([DaysInWeek]Money, error) {
	var entries [DaysInWeek]Money
	if len(vs) != DaysInWeek {
		return entries, &FieldError{Field: field, Index: -1, Value: "", Err: ErrBadEntryCount}
	}
	for i, v := range vs {
		m, err := ParseMoney(v)
		if err != nil {
			return entries, &FieldError{Field: field, Index: i, Value: v, Err: err}
		}
		if m.IsNegative() {
			return entries, &FieldError{Field: field, Index: i, Value: v, Err: ErrNegativeAmount}
		}
		entries[i] = m
	}
	return entries, nil
}

func validateEntries(field string, entries [DaysInWeek]Money) error {
	for i, e := range entries {
		if e.IsNegative() {
			return &FieldError{Field: field, Index: i, Value: e.String(), Err: ErrNegativeAmount}
		}
	}
	return nil
}

// =============================================================================
// DISTRIBUTION
// =============================================================================

// DistributionInput carries everything the calculator needs. Hours is keyed
// by employee id; zero-hour employees are legal and receive a zero payout.
type DistributionInput struct {
	Week    WeekKey
	Cash    [DaysInWeek]Money
	Card    [DaysInWeek]Money
	FeeRate decimal.Decimal
	Hours   map[string]decimal.Decimal
}

// Distribute computes the week's payout. Pure: no side effects.
func Distribute(in DistributionInput) (*PayoutCalculation, error) {
	if in.FeeRate.IsNegative() || in.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, &FieldError{Field: "fee_rate", Index: -1, Value: in.FeeRate.String(), Err: ErrBadFeeRate}
	}
	if err := validateEntries("cash_entries", in.Cash); err != nil {
		return nil, err
	}
	if err := validateEntries("cc_entries", in.Card); err != nil {
		return nil, err
	}

	totalHours := decimal.Zero
	for id, h := range in.Hours {
		if h.IsNegative() {
			return nil, &FieldError{Field: "hours", Index: -1, Value: id + "=" + h.String(), Err: ErrNegativeAmount}
		}
		totalHours = totalHours.Add(h)
	}

	cashTotal := SumMoney(in.Cash[:])
	cardTotal := SumMoney(in.Card[:])
	cardAfterFee := cardTotal.ApplyFee(in.FeeRate)
	pool := cashTotal.Add(cardAfterFee)

	// Zero team hours is a valid state, not an error: the rate is defined
	// as zero and every line pays zero.
	rate := decimal.Zero
	if totalHours.IsPositive() {
		rate = pool.Value.Div(totalHours)
	}

	// Deterministic line order for stable reports.
	ids := make([]string, 0, len(in.Hours))
	for id := range in.Hours {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]PayoutLine, 0, len(ids))
	for _, id := range ids {
		h := in.Hours[id]
		lines = append(lines, PayoutLine{
			EmployeeID: id,
			Hours:      h,
			Payout:     Money{Value: h.Mul(rate)},
		})
	}

	return &PayoutCalculation{
		Week:         in.Week,
		WeekLabel:    in.Week.Label(),
		CashTotal:    cashTotal,
		CardTotal:    cardTotal,
		FeeRate:      in.FeeRate,
		CardAfterFee: cardAfterFee,
		Pool:         pool,
		TotalHours:   totalHours,
		HourlyRate:   rate,
		Lines:        lines,
	}, nil
}

// DistributeRecord runs the calculator over a stored weekly record.
func DistributeRecord(rec *WeeklyTipRecord, feeRate decimal.Decimal, hours map[string]decimal.Decimal) (*PayoutCalculation, error) {
	return Distribute(DistributionInput{
		Week:    rec.Week,
		Cash:    rec.Cash,
		Card:    rec.Card,
		FeeRate: feeRate,
		Hours:   hours,
	})
}
