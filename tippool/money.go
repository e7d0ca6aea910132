/*
Package tippool implements the tip pool distribution and reconciliation engine.

PURPOSE:
  Turns raw weekly tip intake (cash and card, one value per day) and
  per-employee hour entries into a proportional, auditable payout, and
  reconciles entered hours against an independently declared total.

KEY CONCEPTS IN THIS FILE (money.go):
  - Money: A fixed-point currency amount
  - FeeRate: Flat percentage deducted from card tips

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors.
     Rounding to cents happens only at the presentation boundary.
  2. Purity: The calculator and reconciler are pure functions; only the
     store adapters perform I/O.
  3. Explicit keys: Records are keyed by tenant + canonical week, never
     by implicit position or insertion order.

USAGE:
  pool := tippool.NewMoney(385).Add(tippool.NewMoney(730).ApplyFee(rate))

SEE ALSO:
  - week.go: Week keys and the weekday enumeration
  - calculator.go: Payout distribution
  - store.go: Persistence interfaces
*/
package tippool

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Fixed-point currency amount
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money    { return Money{Value: decimal.NewFromFloat(value)} }
func NewMoneyFromInt(value int) Money { return Money{Value: decimal.NewFromInt(int64(value))} }
func ZeroMoney() Money                { return Money{Value: decimal.Zero} }

// ParseMoney parses a decimal string such as "42.50".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Value: d}, nil
}

func (m Money) Add(b Money) Money           { return Money{Value: m.Value.Add(b.Value)} }
func (m Money) Sub(b Money) Money           { return Money{Value: m.Value.Sub(b.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Neg() Money                  { return Money{Value: m.Value.Neg()} }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) Equal(b Money) bool          { return m.Value.Equal(b.Value) }
func (m Money) GreaterThan(b Money) bool    { return m.Value.GreaterThan(b.Value) }
func (m Money) LessThan(b Money) bool       { return m.Value.LessThan(b.Value) }

// String returns the full-precision decimal representation.
// Use Cents for display rounding.
func (m Money) String() string { return m.Value.String() }

// Cents rounds to currency precision. Presentation only; internal
// computation always carries full precision so per-employee rounding
// does not compound across the team.
func (m Money) Cents() decimal.Decimal { return m.Value.Round(2) }

// Float64 returns the rounded display value for DTOs.
func (m Money) Float64() float64 {
	f, _ := m.Cents().Float64()
	return f
}

// ApplyFee deducts a flat percentage fee: m × (1 − rate).
// One flat rate on the weekly total; not tiered, not per-transaction.
func (m Money) ApplyFee(rate decimal.Decimal) Money {
	return Money{Value: m.Value.Mul(decimal.NewFromInt(1).Sub(rate))}
}

// SumMoney adds a sequence of amounts.
func SumMoney(vs []Money) Money {
	total := decimal.Zero
	for _, v := range vs {
		total = total.Add(v.Value)
	}
	return Money{Value: total}
}
