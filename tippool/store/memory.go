// Package store provides an in-memory Store implementation (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/tippool-engine/tippool"
)

// =============================================================================
// MEMORY STORE - In-memory implementation of tippool.Store
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	tips  map[tipKey]*tippool.WeeklyTipRecord
	hours map[hoursKey]*tippool.EmployeeHoursRecord
	emps  map[empKey]*tippool.Employee
}

type tipKey struct {
	TenantID string
	Week     tippool.WeekKey
}

type hoursKey struct {
	TenantID   string
	EmployeeID string
	Week       tippool.WeekKey
}

type empKey struct {
	TenantID   string
	EmployeeID string
}

func NewMemory() *Memory {
	return &Memory{
		tips:  make(map[tipKey]*tippool.WeeklyTipRecord),
		hours: make(map[hoursKey]*tippool.EmployeeHoursRecord),
		emps:  make(map[empKey]*tippool.Employee),
	}
}

// =============================================================================
// TIP STORE
// =============================================================================

func (m *Memory) LoadWeek(_ context.Context, tenantID string, week tippool.WeekKey) (*tippool.WeeklyTipRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.tips[tipKey{TenantID: tenantID, Week: week}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) SaveWeek(_ context.Context, rec *tippool.WeeklyTipRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := tipKey{TenantID: rec.TenantID, Week: rec.Week}
	current := int64(0)
	if existing, ok := m.tips[k]; ok {
		current = existing.Version
	}
	if rec.Version != current {
		return 0, &tippool.VersionConflictError{
			TenantID: rec.TenantID,
			Key:      "week " + string(rec.Week),
			Expected: rec.Version,
		}
	}

	cp := *rec
	cp.Version = current + 1
	m.tips[k] = &cp
	return cp.Version, nil
}

func (m *Memory) LoadWeekRange(ctx context.Context, tenantID string, from, to tippool.WeekKey) ([]*tippool.WeeklyTipRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []*tippool.WeeklyTipRecord
	for k, rec := range m.tips {
		if k.TenantID == tenantID && !k.Week.Before(from) && !k.Week.After(to) {
			cp := *rec
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Week < result[j].Week })
	return result, nil
}

// =============================================================================
// HOURS STORE
// =============================================================================

func (m *Memory) UpsertHours(_ context.Context, rec *tippool.EmployeeHoursRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := hoursKey{TenantID: rec.TenantID, EmployeeID: rec.EmployeeID, Week: rec.Week}
	current := int64(0)
	if existing, ok := m.hours[k]; ok {
		current = existing.Version
	}
	if rec.Version != current {
		return 0, &tippool.VersionConflictError{
			TenantID: rec.TenantID,
			Key:      "employee " + rec.EmployeeID + " week " + string(rec.Week),
			Expected: rec.Version,
		}
	}

	cp := *rec
	cp.Version = current + 1
	m.hours[k] = &cp
	return cp.Version, nil
}

func (m *Memory) DeleteHours(_ context.Context, tenantID, employeeID string, week tippool.WeekKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.hours, hoursKey{TenantID: tenantID, EmployeeID: employeeID, Week: week})
	return nil
}

func (m *Memory) LoadWeekHours(_ context.Context, tenantID string, week tippool.WeekKey) (map[string]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]decimal.Decimal)
	for k, rec := range m.hours {
		if k.TenantID == tenantID && k.Week == week {
			result[k.EmployeeID] = rec.Hours
		}
	}
	return result, nil
}

func (m *Memory) LoadHoursRange(ctx context.Context, tenantID string, from, to tippool.WeekKey) ([]*tippool.EmployeeHoursRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []*tippool.EmployeeHoursRecord
	for k, rec := range m.hours {
		if k.TenantID == tenantID && !k.Week.Before(from) && !k.Week.After(to) {
			cp := *rec
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Week != result[j].Week {
			return result[i].Week < result[j].Week
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result, nil
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, tenantID, employeeID string) (*tippool.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.emps[empKey{TenantID: tenantID, EmployeeID: employeeID}]
	if !ok {
		return nil, nil
	}
	cp := *emp
	return &cp, nil
}

func (m *Memory) ListEmployees(_ context.Context, tenantID string) ([]*tippool.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*tippool.Employee
	for k, emp := range m.emps {
		if k.TenantID == tenantID {
			cp := *emp
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *Memory) SaveEmployee(_ context.Context, emp *tippool.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *emp
	m.emps[empKey{TenantID: emp.TenantID, EmployeeID: emp.ID}] = &cp
	return nil
}

func (m *Memory) DeactivateEmployee(_ context.Context, tenantID, employeeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	emp, ok := m.emps[empKey{TenantID: tenantID, EmployeeID: employeeID}]
	if !ok {
		return tippool.ErrEmployeeNotFound
	}
	emp.Active = false
	return nil
}

// SlowStore wraps Memory and blocks range queries until the context is
// done. Used by tests to exercise the aggregation timeout path.
type SlowStore struct {
	*Memory
}

func (s *SlowStore) LoadWeekRange(ctx context.Context, tenantID string, from, to tippool.WeekKey) ([]*tippool.WeeklyTipRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *SlowStore) LoadHoursRange(ctx context.Context, tenantID string, from, to tippool.WeekKey) ([]*tippool.EmployeeHoursRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
