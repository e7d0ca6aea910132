/*
reconcile.go - Hours reconciliation

PURPOSE:
  Compares the sum of itemized per-employee hour entries against a total
  declared independently (typed in from a printed time-clock summary). The
  result is advisory: it flags a discrepancy for the operator but never
  blocks saving hours.

TOLERANCE:
  Minute-level entry rounds; a 0.1 hour (6 minute) tolerance absorbs that.
  The tolerance is injected (Config.ReconcileTolerance), not hard-coded.
*/
package tippool

import (
	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// HoursFromHM converts separate hour/minute components to decimal hours.
// Minutes are clamped to [0, 59] before conversion; the hour component is
// taken as-is.
func HoursFromHM(hours, minutes int) decimal.Decimal {
	if minutes < 0 {
		minutes = 0
	}
	if minutes > 59 {
		minutes = 59
	}
	return decimal.NewFromInt(int64(hours)).
		Add(decimal.NewFromInt(int64(minutes)).Div(minutesPerHour))
}

// SumHours totals an entered-hours map.
func SumHours(entered map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, h := range entered {
		total = total.Add(h)
	}
	return total
}

// Reconcile classifies summed vs declared hours as match or mismatch.
// Delta is signed (summed − declared); match is |delta| < tolerance.
func Reconcile(entered map[string]decimal.Decimal, declaredHours, declaredMinutes int, tolerance decimal.Decimal) ReconciliationResult {
	summed := SumHours(entered)
	declared := HoursFromHM(declaredHours, declaredMinutes)
	delta := summed.Sub(declared)

	return ReconciliationResult{
		Match:    delta.Abs().LessThan(tolerance),
		Summed:   summed,
		Declared: declared,
		Delta:    delta,
	}
}
