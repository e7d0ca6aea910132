package sqlite

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tippool-engine/tippool"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord(tenant string, week tippool.WeekKey) *tippool.WeeklyTipRecord {
	rec := tippool.EmptyWeeklyTipRecord(tenant, week)
	for d := 0; d < tippool.DaysInWeek; d++ {
		rec.Cash[d] = tippool.NewMoney(float64(10 + d))
		rec.Card[d] = tippool.NewMoney(float64(20 + d))
	}
	return rec
}

// =============================================================================
// WEEKLY TIPS
// =============================================================================

func TestSaveWeek_RoundTrip(t *testing.T) {
	// GIVEN: A fresh store
	// WHEN: Saving a new week and loading it back
	// THEN: Entries and version survive intact

	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("t1", "2025-03-03")
	rec.Cash[int(tippool.Friday)] = tippool.Money{Value: decimal.RequireFromString("12.345")}

	version, err := s.SaveWeek(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	loaded, err := s.LoadWeek(ctx, "t1", "2025-03-03")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(1), loaded.Version)
	for d := 0; d < tippool.DaysInWeek; d++ {
		assert.True(t, loaded.Cash[d].Equal(rec.Cash[d]), "cash day %d", d)
		assert.True(t, loaded.Card[d].Equal(rec.Card[d]), "card day %d", d)
	}
}

func TestLoadWeek_Missing(t *testing.T) {
	// An absent week is (nil, nil), not an error: callers serve zeroes.
	s := newTestStore(t)

	loaded, err := s.LoadWeek(context.Background(), "t1", "2025-03-03")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveWeek_VersionedUpdate(t *testing.T) {
	// GIVEN: A saved week at version 1
	// WHEN: Saving again with the current stamp
	// THEN: The record is replaced and the version advances

	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("t1", "2025-03-03")
	_, err := s.SaveWeek(ctx, rec)
	require.NoError(t, err)

	rec.Version = 1
	rec.Cash[int(tippool.Monday)] = tippool.NewMoney(99)
	version, err := s.SaveWeek(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	loaded, err := s.LoadWeek(ctx, "t1", "2025-03-03")
	require.NoError(t, err)
	assert.True(t, loaded.Cash[int(tippool.Monday)].Equal(tippool.NewMoney(99)))
	assert.Equal(t, int64(2), loaded.Version)
}

func TestSaveWeek_StaleVersionRejected(t *testing.T) {
	// GIVEN: Two writers who both loaded version 1
	// WHEN: The second writer saves after the first advanced the row to 2
	// THEN: The stale save affects zero rows and surfaces a conflict

	s := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("t1", "2025-03-03")
	_, err := s.SaveWeek(ctx, rec)
	require.NoError(t, err)

	first := testRecord("t1", "2025-03-03")
	first.Version = 1
	_, err = s.SaveWeek(ctx, first)
	require.NoError(t, err)

	second := testRecord("t1", "2025-03-03")
	second.Version = 1
	_, err = s.SaveWeek(ctx, second)
	require.Error(t, err)
	assert.True(t, tippool.IsConflict(err))

	// The stored record still reflects the first writer's save.
	loaded, err := s.LoadWeek(ctx, "t1", "2025-03-03")
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
}

func TestSaveWeek_DuplicateInsertRejected(t *testing.T) {
	// Version 0 means expect-absent; a second create loses, never overwrites.
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveWeek(ctx, testRecord("t1", "2025-03-03"))
	require.NoError(t, err)

	_, err = s.SaveWeek(ctx, testRecord("t1", "2025-03-03"))
	require.Error(t, err)
	assert.ErrorIs(t, err, tippool.ErrVersionConflict)

	// Still exactly one row for the key.
	records, err := s.LoadWeekRange(ctx, "t1", "2025-03-03", "2025-03-03")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestLoadWeekRange_OrderedAndBounded(t *testing.T) {
	// GIVEN: Four saved weeks
	// WHEN: Loading an inclusive sub-range
	// THEN: Only in-range weeks return, ascending by week key

	s := newTestStore(t)
	ctx := context.Background()

	for _, wk := range []tippool.WeekKey{"2025-03-17", "2025-03-03", "2025-03-24", "2025-03-10"} {
		_, err := s.SaveWeek(ctx, testRecord("t1", wk))
		require.NoError(t, err)
	}

	records, err := s.LoadWeekRange(ctx, "t1", "2025-03-03", "2025-03-17")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, tippool.WeekKey("2025-03-03"), records[0].Week)
	assert.Equal(t, tippool.WeekKey("2025-03-10"), records[1].Week)
	assert.Equal(t, tippool.WeekKey("2025-03-17"), records[2].Week)
}

func TestSaveWeek_TenantIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveWeek(ctx, testRecord("t1", "2025-03-03"))
	require.NoError(t, err)
	// Same week key under a different tenant is an independent row.
	_, err = s.SaveWeek(ctx, testRecord("t2", "2025-03-03"))
	require.NoError(t, err)

	records, err := s.LoadWeekRange(ctx, "t2", "2025-01-06", "2025-12-29")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "t2", records[0].TenantID)
}

// =============================================================================
// EMPLOYEE HOURS
// =============================================================================

func hoursRecord(tenant, emp string, week tippool.WeekKey, hours string, version int64) *tippool.EmployeeHoursRecord {
	return &tippool.EmployeeHoursRecord{
		TenantID:   tenant,
		EmployeeID: emp,
		Week:       week,
		Hours:      decimal.RequireFromString(hours),
		Version:    version,
	}
}

func TestUpsertHours_InsertThenUpdate(t *testing.T) {
	// GIVEN: No hours row for (t1, alice, week)
	// WHEN: Inserting at version 0, then updating at version 1
	// THEN: One row, latest hours, version 2

	s := newTestStore(t)
	ctx := context.Background()

	version, err := s.UpsertHours(ctx, hoursRecord("t1", "alice", "2025-03-03", "30", 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	version, err = s.UpsertHours(ctx, hoursRecord("t1", "alice", "2025-03-03", "32.5", 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	week, err := s.LoadWeekHours(ctx, "t1", "2025-03-03")
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.True(t, week["alice"].Equal(decimal.RequireFromString("32.5")))
}

func TestUpsertHours_StaleVersionRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertHours(ctx, hoursRecord("t1", "alice", "2025-03-03", "30", 0))
	require.NoError(t, err)

	// Re-create and stale update both conflict.
	_, err = s.UpsertHours(ctx, hoursRecord("t1", "alice", "2025-03-03", "31", 0))
	assert.True(t, tippool.IsConflict(err))

	_, err = s.UpsertHours(ctx, hoursRecord("t1", "alice", "2025-03-03", "31", 5))
	assert.True(t, tippool.IsConflict(err))

	week, err := s.LoadWeekHours(ctx, "t1", "2025-03-03")
	require.NoError(t, err)
	assert.True(t, week["alice"].Equal(decimal.NewFromInt(30)), "losing writes must not land")
}

func TestDeleteHours_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertHours(ctx, hoursRecord("t1", "alice", "2025-03-03", "30", 0))
	require.NoError(t, err)

	require.NoError(t, s.DeleteHours(ctx, "t1", "alice", "2025-03-03"))
	// Deleting again is not an error.
	require.NoError(t, s.DeleteHours(ctx, "t1", "alice", "2025-03-03"))

	week, err := s.LoadWeekHours(ctx, "t1", "2025-03-03")
	require.NoError(t, err)
	assert.Empty(t, week)

	// The key is free again for a fresh insert at version 0.
	version, err := s.UpsertHours(ctx, hoursRecord("t1", "alice", "2025-03-03", "12", 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestLoadHoursRange_Ordering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []*tippool.EmployeeHoursRecord{
		hoursRecord("t1", "bob", "2025-03-10", "15", 0),
		hoursRecord("t1", "alice", "2025-03-10", "20", 0),
		hoursRecord("t1", "alice", "2025-03-03", "30", 0),
	}
	for _, rec := range seed {
		_, err := s.UpsertHours(ctx, rec)
		require.NoError(t, err)
	}

	records, err := s.LoadHoursRange(ctx, "t1", "2025-03-03", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Week ascending, then employee id within a week.
	assert.Equal(t, "alice", records[0].EmployeeID)
	assert.Equal(t, tippool.WeekKey("2025-03-03"), records[0].Week)
	assert.Equal(t, "alice", records[1].EmployeeID)
	assert.Equal(t, "bob", records[2].EmployeeID)
}

// =============================================================================
// EMPLOYEE DIRECTORY
// =============================================================================

func TestEmployeeDirectory_Lifecycle(t *testing.T) {
	// GIVEN: A saved employee
	// WHEN: Deactivating them
	// THEN: They stay listed and resolvable, flagged inactive

	s := newTestStore(t)
	ctx := context.Background()

	emp := &tippool.Employee{ID: "alice", TenantID: "t1", Name: "Alice Moreau", Active: true}
	require.NoError(t, s.SaveEmployee(ctx, emp))

	require.NoError(t, s.DeactivateEmployee(ctx, "t1", "alice"))

	loaded, err := s.GetEmployee(ctx, "t1", "alice")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Alice Moreau", loaded.Name)
	assert.False(t, loaded.Active)

	listed, err := s.ListEmployees(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, listed, 1, "deactivation is soft; history stays attributable")
}

func TestGetEmployee_Missing(t *testing.T) {
	s := newTestStore(t)

	loaded, err := s.GetEmployee(context.Background(), "t1", "nobody")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDeactivateEmployee_Missing(t *testing.T) {
	s := newTestStore(t)

	err := s.DeactivateEmployee(context.Background(), "t1", "nobody")
	assert.ErrorIs(t, err, tippool.ErrEmployeeNotFound)
}

func TestSaveEmployee_UpsertsName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveEmployee(ctx, &tippool.Employee{ID: "alice", TenantID: "t1", Name: "Alice", Active: true}))
	require.NoError(t, s.SaveEmployee(ctx, &tippool.Employee{ID: "alice", TenantID: "t1", Name: "Alice Moreau", Active: true}))

	loaded, err := s.GetEmployee(ctx, "t1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice Moreau", loaded.Name)

	listed, err := s.ListEmployees(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
