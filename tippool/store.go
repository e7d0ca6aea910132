/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  Defines the boundary between the engine and the tenant-scoped record
  store. The engine only issues keyed upserts, keyed loads, and inclusive
  week-range queries; row-level tenant isolation is the store's problem.

UPSERT CONTRACT:
  Saves are versioned full-record replaces, not field merges. Every record
  carries the Version it was loaded with (0 = new); the store rejects a
  stale stamp with ErrVersionConflict instead of last-write-wins. The hours
  upsert is a single atomic insert-or-update keyed on the natural composite
  key - there is no separate existence check to race against.

LOAD-MISS CONTRACT:
  LoadWeek returns (nil, nil) on a miss. Callers translate that into seven
  zero-valued entries via EmptyWeeklyTipRecord, never a null that reaches
  arithmetic.

IMPLEMENTATIONS:
  - store/sqlite: production adapter
  - tippool/store: in-memory, for tests and dev

SEE ALSO:
  - aggregate.go: Issues the range queries
*/
package tippool

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TIP STORE - One WeeklyTipRecord per (tenant, week)
// =============================================================================

type TipStore interface {
	// LoadWeek returns the record for (tenant, week), or (nil, nil) when
	// absent.
	LoadWeek(ctx context.Context, tenantID string, week WeekKey) (*WeeklyTipRecord, error)

	// SaveWeek upserts a full record keyed on (tenant, week). rec.Version
	// must match the stored stamp (0 inserts). Returns the new version.
	SaveWeek(ctx context.Context, rec *WeeklyTipRecord) (int64, error)

	// LoadWeekRange returns all records with week key in [from, to],
	// ordered by week key ascending.
	LoadWeekRange(ctx context.Context, tenantID string, from, to WeekKey) ([]*WeeklyTipRecord, error)
}

// =============================================================================
// HOURS STORE - One EmployeeHoursRecord per (tenant, employee, week)
// =============================================================================

type HoursStore interface {
	// UpsertHours atomically inserts or updates the record for
	// (tenant, employee, week). Version semantics as SaveWeek.
	UpsertHours(ctx context.Context, rec *EmployeeHoursRecord) (int64, error)

	// DeleteHours removes an entry. Distinct from zeroing: a deleted
	// employee simply has no row for that week.
	DeleteHours(ctx context.Context, tenantID, employeeID string, week WeekKey) error

	// LoadWeekHours returns the week's hours keyed by employee id.
	LoadWeekHours(ctx context.Context, tenantID string, week WeekKey) (map[string]decimal.Decimal, error)

	// LoadHoursRange returns all hour records with week key in [from, to],
	// ordered by week key ascending.
	LoadHoursRange(ctx context.Context, tenantID string, from, to WeekKey) ([]*EmployeeHoursRecord, error)
}

// =============================================================================
// EMPLOYEE DIRECTORY - Identity resolution, including deactivated names
// =============================================================================

// EmployeeDirectory is the minimal slice of the (external) directory the
// engine needs: resolving ids to names for reports. Deactivation never
// deletes rows, so historical hours stay attributable.
type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error)
	ListEmployees(ctx context.Context, tenantID string) ([]*Employee, error)
	SaveEmployee(ctx context.Context, emp *Employee) error
	DeactivateEmployee(ctx context.Context, tenantID, employeeID string) error
}

// Store is the full persistence surface the engine is wired against.
type Store interface {
	TipStore
	HoursStore
	EmployeeDirectory
}
