/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements tippool.Store (tip records, hour records, employee directory)
  using SQLite. In production, the same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  tippool.TipStore:          One weekly tip record per (tenant, week)
  tippool.HoursStore:        One hours record per (tenant, employee, week)
  tippool.EmployeeDirectory: Identity resolution incl. deactivated employees

KEY TABLES:
  weekly_tips:    Per-day cash/card sequences as JSON decimal-string arrays
  employee_hours: One decimal hour count per row
  employees:      Tenant-scoped directory with soft deactivation

CONCURRENCY:
  Saves are optimistic: every row carries a version stamp, and a write must
  present the version it loaded (0 = expect absent). A stale stamp affects
  zero rows and is surfaced as tippool.ErrVersionConflict - the store never
  silently last-write-wins. The hours upsert is a single statement keyed on
  the natural composite UNIQUE constraint; there is no check-then-act read
  for concurrent writers to race.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/tippool.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - tippool/store.go: Interface definitions and contracts
  - tippool/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/tippool-engine/tippool"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Weekly tip records: one row per (tenant, week)
	CREATE TABLE IF NOT EXISTS weekly_tips (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		week_key TEXT NOT NULL,
		cash_json TEXT NOT NULL,
		card_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(tenant_id, week_key)
	);

	-- Range queries filter by tenant and inclusive week interval (hot path)
	CREATE INDEX IF NOT EXISTS idx_weekly_tips_tenant_week
		ON weekly_tips(tenant_id, week_key);

	-- Hour entries: one row per (tenant, employee, week)
	CREATE TABLE IF NOT EXISTS employee_hours (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		week_key TEXT NOT NULL,
		hours TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(tenant_id, employee_id, week_key)
	);

	CREATE INDEX IF NOT EXISTS idx_employee_hours_tenant_week
		ON employee_hours(tenant_id, week_key);
	CREATE INDEX IF NOT EXISTS idx_employee_hours_employee
		ON employee_hours(tenant_id, employee_id, week_key);

	-- Employees: soft deactivation only, history stays attributable
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT NOT NULL,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		PRIMARY KEY (tenant_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_employees_tenant
		ON employees(tenant_id, name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TIP STORE (tippool.TipStore interface)
// =============================================================================

// LoadWeek returns the tip record for (tenant, week), or (nil, nil) when absent.
func (s *Store) LoadWeek(ctx context.Context, tenantID string, week tippool.WeekKey) (*tippool.WeeklyTipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT tenant_id, week_key, cash_json, card_json, version
		FROM weekly_tips
		WHERE tenant_id = ? AND week_key = ?
	`, tenantID, string(week))

	rec, err := scanWeeklyTips(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load week %s for tenant %s: %w", week, tenantID, err)
	}
	return rec, nil
}

// SaveWeek upserts the record, guarded by its version stamp.
func (s *Store) SaveWeek(ctx context.Context, rec *tippool.WeeklyTipRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cashJSON, cardJSON, err := marshalEntries(rec)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC().Format(time.RFC3339)

	if rec.Version == 0 {
		// Expect absent: insert, and treat a key collision as a conflict
		// (someone else created the week first).
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO weekly_tips (id, tenant_id, week_key, cash_json, card_json, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT(tenant_id, week_key) DO NOTHING
		`, uuid.NewString(), rec.TenantID, string(rec.Week), cashJSON, cardJSON, now, now)
		if err != nil {
			return 0, fmt.Errorf("save week %s for tenant %s: %w", rec.Week, rec.TenantID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, &tippool.VersionConflictError{TenantID: rec.TenantID, Key: "week " + string(rec.Week), Expected: 0}
		}
		return 1, nil
	}

	// Full-record replace, only if the caller's stamp is still current.
	res, err := s.db.ExecContext(ctx, `
		UPDATE weekly_tips
		SET cash_json = ?, card_json = ?, version = version + 1, updated_at = ?
		WHERE tenant_id = ? AND week_key = ? AND version = ?
	`, cashJSON, cardJSON, now, rec.TenantID, string(rec.Week), rec.Version)
	if err != nil {
		return 0, fmt.Errorf("save week %s for tenant %s: %w", rec.Week, rec.TenantID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, &tippool.VersionConflictError{TenantID: rec.TenantID, Key: "week " + string(rec.Week), Expected: rec.Version}
	}
	return rec.Version + 1, nil
}

// LoadWeekRange returns all tip records in [from, to], week key ascending.
func (s *Store) LoadWeekRange(ctx context.Context, tenantID string, from, to tippool.WeekKey) ([]*tippool.WeeklyTipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT tenant_id, week_key, cash_json, card_json, version
		FROM weekly_tips
		WHERE tenant_id = ? AND week_key >= ? AND week_key <= ?
		ORDER BY week_key ASC
	`, tenantID, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("load week range %s..%s for tenant %s: %w", from, to, tenantID, err)
	}
	defer rows.Close()

	var records []*tippool.WeeklyTipRecord
	for rows.Next() {
		rec, err := scanWeeklyTips(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWeeklyTips(row rowScanner) (*tippool.WeeklyTipRecord, error) {
	var (
		rec      tippool.WeeklyTipRecord
		week     string
		cashJSON string
		cardJSON string
	)
	if err := row.Scan(&rec.TenantID, &week, &cashJSON, &cardJSON, &rec.Version); err != nil {
		return nil, err
	}
	rec.Week = tippool.WeekKey(week)

	cash, err := unmarshalEntries("cash_entries", cashJSON)
	if err != nil {
		return nil, err
	}
	card, err := unmarshalEntries("cc_entries", cardJSON)
	if err != nil {
		return nil, err
	}
	rec.Cash = cash
	rec.Card = card
	return &rec, nil
}

func marshalEntries(rec *tippool.WeeklyTipRecord) (string, string, error) {
	toStrings := func(entries [tippool.DaysInWeek]tippool.Money) []string {
		out := make([]string, tippool.DaysInWeek)
		for i, e := range entries {
			out[i] = e.String()
		}
		return out
	}
	cash, err := json.Marshal(toStrings(rec.Cash))
	if err != nil {
		return "", "", err
	}
	card, err := json.Marshal(toStrings(rec.Card))
	if err != nil {
		return "", "", err
	}
	return string(cash), string(card), nil
}

func unmarshalEntries(field, raw string) ([tippool.DaysInWeek]tippool.Money, error) {
	var vs []string
	if err := json.Unmarshal([]byte(raw), &vs); err != nil {
		return [tippool.DaysInWeek]tippool.Money{}, fmt.Errorf("corrupt %s column: %w", field, err)
	}
	return tippool.EntriesFromStrings(field, vs)
}

// =============================================================================
// HOURS STORE (tippool.HoursStore interface)
// =============================================================================

// UpsertHours inserts or updates in a single atomic statement.
func (s *Store) UpsertHours(ctx context.Context, rec *tippool.EmployeeHoursRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	conflictKey := "employee " + rec.EmployeeID + " week " + string(rec.Week)

	if rec.Version == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO employee_hours (id, tenant_id, employee_id, week_key, hours, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT(tenant_id, employee_id, week_key) DO NOTHING
		`, uuid.NewString(), rec.TenantID, rec.EmployeeID, string(rec.Week), rec.Hours.String(), now, now)
		if err != nil {
			return 0, fmt.Errorf("upsert hours for tenant %s, %s: %w", rec.TenantID, conflictKey, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, &tippool.VersionConflictError{TenantID: rec.TenantID, Key: conflictKey, Expected: 0}
		}
		return 1, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE employee_hours
		SET hours = ?, version = version + 1, updated_at = ?
		WHERE tenant_id = ? AND employee_id = ? AND week_key = ? AND version = ?
	`, rec.Hours.String(), now, rec.TenantID, rec.EmployeeID, string(rec.Week), rec.Version)
	if err != nil {
		return 0, fmt.Errorf("upsert hours for tenant %s, %s: %w", rec.TenantID, conflictKey, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, &tippool.VersionConflictError{TenantID: rec.TenantID, Key: conflictKey, Expected: rec.Version}
	}
	return rec.Version + 1, nil
}

// DeleteHours removes an hours row. Idempotent: deleting an absent row is ok.
func (s *Store) DeleteHours(ctx context.Context, tenantID, employeeID string, week tippool.WeekKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM employee_hours
		WHERE tenant_id = ? AND employee_id = ? AND week_key = ?
	`, tenantID, employeeID, string(week))
	if err != nil {
		return fmt.Errorf("delete hours for tenant %s, employee %s, week %s: %w", tenantID, employeeID, week, err)
	}
	return nil
}

// LoadWeekHours returns one week's hours keyed by employee id.
func (s *Store) LoadWeekHours(ctx context.Context, tenantID string, week tippool.WeekKey) (map[string]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, hours
		FROM employee_hours
		WHERE tenant_id = ? AND week_key = ?
	`, tenantID, string(week))
	if err != nil {
		return nil, fmt.Errorf("load hours for tenant %s, week %s: %w", tenantID, week, err)
	}
	defer rows.Close()

	result := make(map[string]decimal.Decimal)
	for rows.Next() {
		var employeeID, hours string
		if err := rows.Scan(&employeeID, &hours); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(hours)
		if err != nil {
			return nil, fmt.Errorf("corrupt hours for employee %s: %w", employeeID, err)
		}
		result[employeeID] = d
	}
	return result, rows.Err()
}

// LoadHoursRange returns all hour records in [from, to], week key ascending.
func (s *Store) LoadHoursRange(ctx context.Context, tenantID string, from, to tippool.WeekKey) ([]*tippool.EmployeeHoursRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT tenant_id, employee_id, week_key, hours, version
		FROM employee_hours
		WHERE tenant_id = ? AND week_key >= ? AND week_key <= ?
		ORDER BY week_key ASC, employee_id ASC
	`, tenantID, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("load hours range %s..%s for tenant %s: %w", from, to, tenantID, err)
	}
	defer rows.Close()

	var records []*tippool.EmployeeHoursRecord
	for rows.Next() {
		var (
			rec   tippool.EmployeeHoursRecord
			week  string
			hours string
		)
		if err := rows.Scan(&rec.TenantID, &rec.EmployeeID, &week, &hours, &rec.Version); err != nil {
			return nil, err
		}
		rec.Week = tippool.WeekKey(week)
		d, err := decimal.NewFromString(hours)
		if err != nil {
			return nil, fmt.Errorf("corrupt hours for employee %s: %w", rec.EmployeeID, err)
		}
		rec.Hours = d
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// =============================================================================
// EMPLOYEE DIRECTORY (tippool.EmployeeDirectory interface)
// =============================================================================

// GetEmployee returns an employee, or (nil, nil) when absent.
func (s *Store) GetEmployee(ctx context.Context, tenantID, employeeID string) (*tippool.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		emp    tippool.Employee
		active int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, active
		FROM employees
		WHERE tenant_id = ? AND id = ?
	`, tenantID, employeeID).Scan(&emp.ID, &emp.TenantID, &emp.Name, &active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get employee %s for tenant %s: %w", employeeID, tenantID, err)
	}
	emp.Active = active != 0
	return &emp, nil
}

// ListEmployees returns every employee, active or not, ordered by name.
func (s *Store) ListEmployees(ctx context.Context, tenantID string) ([]*tippool.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, active
		FROM employees
		WHERE tenant_id = ?
		ORDER BY name ASC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list employees for tenant %s: %w", tenantID, err)
	}
	defer rows.Close()

	var emps []*tippool.Employee
	for rows.Next() {
		var (
			emp    tippool.Employee
			active int
		)
		if err := rows.Scan(&emp.ID, &emp.TenantID, &emp.Name, &active); err != nil {
			return nil, err
		}
		emp.Active = active != 0
		emps = append(emps, &emp)
	}
	return emps, rows.Err()
}

// SaveEmployee creates or updates an employee record.
func (s *Store) SaveEmployee(ctx context.Context, emp *tippool.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, tenant_id, name, active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, id) DO UPDATE SET
			name = excluded.name,
			active = excluded.active
	`, emp.ID, emp.TenantID, emp.Name, boolToInt(emp.Active), now)
	if err != nil {
		return fmt.Errorf("save employee %s for tenant %s: %w", emp.ID, emp.TenantID, err)
	}
	return nil
}

// DeactivateEmployee flips the active flag. Hours rows are untouched.
func (s *Store) DeactivateEmployee(ctx context.Context, tenantID, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE employees SET active = 0 WHERE tenant_id = ? AND id = ?
	`, tenantID, employeeID)
	if err != nil {
		return fmt.Errorf("deactivate employee %s for tenant %s: %w", employeeID, tenantID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("tenant %s employee %s: %w", tenantID, employeeID, tippool.ErrEmployeeNotFound)
	}
	return nil
}

// Helper functions

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
