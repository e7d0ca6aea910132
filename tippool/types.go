/*
types.go - Records and derived result types

PURPOSE:
  Defines the two persisted record types (weekly tips, per-employee hours),
  the employee identity the engine consumes, and the derived value objects
  the engine returns (payout calculation, reconciliation result, historical
  aggregate). Derived types are never persisted; they are recomputed from
  records on demand.

KEY INVARIANTS:
  - Exactly one WeeklyTipRecord per (tenant, week)
  - Exactly one EmployeeHoursRecord per (tenant, employee, week)
  - Both per-day sequences always have length 7, zero-filled, never null
  - Sum of per-employee payouts reconstructs the pool within rounding

SEE ALSO:
  - calculator.go: Produces PayoutCalculation
  - reconcile.go: Produces ReconciliationResult
  - aggregate.go: Produces HistoricalAggregate
*/
package tippool

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE - Identity supplied by the (external) directory
// =============================================================================

// Employee is never hard-deleted. Deactivation flips Active so historical
// hours stay attributable by name.
type Employee struct {
	ID       string
	TenantID string
	Name     string
	Active   bool
}

// =============================================================================
// PERSISTED RECORDS
// =============================================================================

// WeeklyTipRecord holds one week of daily cash and card tip intake.
// Uniqueness key: (TenantID, Week). Saves are full-record upserts.
type WeeklyTipRecord struct {
	TenantID string
	Week     WeekKey
	Cash     [DaysInWeek]Money
	Card     [DaysInWeek]Money

	// Version is the optimistic concurrency stamp. A save must carry the
	// version it loaded (0 for a new record); a mismatch is rejected with
	// ErrVersionConflict instead of silently overwriting.
	Version int64
}

// EmptyWeeklyTipRecord is what a load miss translates to: seven zero
// entries per sequence, never a null that propagates into arithmetic.
func EmptyWeeklyTipRecord(tenantID string, week WeekKey) *WeeklyTipRecord {
	rec := &WeeklyTipRecord{TenantID: tenantID, Week: week}
	for d := 0; d < DaysInWeek; d++ {
		rec.Cash[d] = ZeroMoney()
		rec.Card[d] = ZeroMoney()
	}
	return rec
}

// CashTotal sums the seven cash entries.
func (r *WeeklyTipRecord) CashTotal() Money { return SumMoney(r.Cash[:]) }

// CardTotal sums the seven card entries.
func (r *WeeklyTipRecord) CardTotal() Money { return SumMoney(r.Card[:]) }

// EmployeeHoursRecord holds one employee's hours for one week.
// Uniqueness key: (TenantID, EmployeeID, Week). Deletion is an explicit
// operator action, distinct from zeroing.
type EmployeeHoursRecord struct {
	TenantID   string
	EmployeeID string
	Week       WeekKey
	Hours      decimal.Decimal
	Version    int64
}

// =============================================================================
// DERIVED - Payout calculation
// =============================================================================

// PayoutLine is one employee's share of a week's pool, at full precision.
type PayoutLine struct {
	EmployeeID string
	Hours      decimal.Decimal
	Payout     Money
}

// PayoutCalculation is the full distribution for one week.
type PayoutCalculation struct {
	Week         WeekKey
	WeekLabel    string
	CashTotal    Money
	CardTotal    Money
	FeeRate      decimal.Decimal
	CardAfterFee Money
	Pool         Money
	TotalHours   decimal.Decimal
	HourlyRate   decimal.Decimal
	Lines        []PayoutLine
}

// =============================================================================
// DERIVED - Hours reconciliation
// =============================================================================

// ReconciliationResult compares summed itemized hours against an
// independently declared total. Advisory only: a mismatch never blocks a
// save, it is surfaced for operator judgment.
type ReconciliationResult struct {
	Match    bool
	Summed   decimal.Decimal
	Declared decimal.Decimal
	Delta    decimal.Decimal // Summed − Declared, signed
}

// =============================================================================
// DERIVED - Historical aggregate
// =============================================================================

type AggregateMode string

const (
	ModeTeam       AggregateMode = "team"
	ModeIndividual AggregateMode = "individual"
)

// WeekBreakdown is one week's replayed calculation within a range.
type WeekBreakdown struct {
	Week WeekKey
	Calc *PayoutCalculation
}

// EmployeeTotal accumulates one employee's lifetime hours and payout
// across every week in the range (team mode).
type EmployeeTotal struct {
	EmployeeID string
	Name       string
	Active     bool
	Hours      decimal.Decimal
	Payout     Money
}

// TrendPoint is one week of a single employee's trend (individual mode).
type TrendPoint struct {
	Week       WeekKey
	Hours      decimal.Decimal
	HourlyRate decimal.Decimal
	Payout     Money
	Running    Money // running payout total through this week
}

// HistoricalAggregate is the report structure consumed verbatim by an
// external formatting collaborator.
type HistoricalAggregate struct {
	TenantID string
	From     WeekKey
	To       WeekKey
	Mode     AggregateMode

	// Empty is the distinct no-data condition: no weekly tip records exist
	// in the range. Callers must not render it as a zero-filled report.
	Empty bool

	Weeks  []WeekBreakdown
	Totals []EmployeeTotal // team mode

	// Individual mode only.
	Employee    *Employee
	Trend       []TrendPoint
	TotalHours  decimal.Decimal
	TotalPayout Money
}
