/*
aggregate.go - Historical aggregation across a week range

PURPOSE:
  Replays the payout calculator over every week in an inclusive range and
  folds the results into a report: team mode (per-week pools plus lifetime
  per-employee totals) or individual mode (one employee's week-by-week
  trend with a running total).

FETCH MODEL:
  The tip range and hours range are independent queries with no ordering
  dependency, so they run concurrently. A join barrier waits for both;
  either failure (or the shared deadline expiring) abandons the whole
  aggregation. Fail-closed: a financial report is never built from half
  the data.

EMPTY RANGE:
  No tip records in range is a distinct, reported condition (Empty=true),
  not a zero-filled report and not an error.

SEE ALSO:
  - calculator.go: The per-week computation being replayed
  - store.go: The range-query contracts
*/
package tippool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Aggregator wires the calculator to the store's range queries.
type Aggregator struct {
	Tips      TipStore
	Hours     HoursStore
	Directory EmployeeDirectory
	Config    Config
}

func NewAggregator(store Store, cfg Config) *Aggregator {
	return &Aggregator{Tips: store, Hours: store, Directory: store, Config: cfg}
}

// Aggregate builds the report for [from, to]. employeeID is required for
// ModeIndividual and ignored for ModeTeam.
func (a *Aggregator) Aggregate(ctx context.Context, tenantID string, from, to WeekKey, mode AggregateMode, employeeID string) (*HistoricalAggregate, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("aggregate %s..%s: %w", from, to, ErrInvalidRange)
	}
	if mode == ModeIndividual && employeeID == "" {
		return nil, ErrEmployeeRequired
	}

	tips, hours, err := a.fetchRange(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	agg := &HistoricalAggregate{
		TenantID: tenantID,
		From:     from,
		To:       to,
		Mode:     mode,
	}
	if len(tips) == 0 {
		agg.Empty = true
		return agg, nil
	}

	hoursByWeek := groupHoursByWeek(hours)

	switch mode {
	case ModeIndividual:
		return agg, a.fillIndividual(ctx, agg, tips, hoursByWeek, employeeID)
	default:
		return agg, a.fillTeam(ctx, agg, tips, hoursByWeek)
	}
}

// fetchRange runs both range queries concurrently under one deadline and
// joins on both completing. Both succeed or the aggregation fails.
func (a *Aggregator) fetchRange(ctx context.Context, tenantID string, from, to WeekKey) ([]*WeeklyTipRecord, []*EmployeeHoursRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Config.QueryTimeout)
	defer cancel()

	var (
		wg      sync.WaitGroup
		tips    []*WeeklyTipRecord
		hours   []*EmployeeHoursRecord
		tipsErr error
		hrsErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		tips, tipsErr = a.Tips.LoadWeekRange(ctx, tenantID, from, to)
	}()
	go func() {
		defer wg.Done()
		hours, hrsErr = a.Hours.LoadHoursRange(ctx, tenantID, from, to)
	}()
	wg.Wait()

	if err := errors.Join(tipsErr, hrsErr); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("aggregate tenant %s weeks %s..%s: %w", tenantID, from, to, ErrStoreTimeout)
		}
		return nil, nil, fmt.Errorf("aggregate tenant %s weeks %s..%s: %w", tenantID, from, to, err)
	}
	return tips, hours, nil
}

func groupHoursByWeek(records []*EmployeeHoursRecord) map[WeekKey]map[string]decimal.Decimal {
	byWeek := make(map[WeekKey]map[string]decimal.Decimal)
	for _, r := range records {
		wk := byWeek[r.Week]
		if wk == nil {
			wk = make(map[string]decimal.Decimal)
			byWeek[r.Week] = wk
		}
		wk[r.EmployeeID] = r.Hours
	}
	return byWeek
}

// =============================================================================
// TEAM MODE
// =============================================================================

func (a *Aggregator) fillTeam(ctx context.Context, agg *HistoricalAggregate, tips []*WeeklyTipRecord, hoursByWeek map[WeekKey]map[string]decimal.Decimal) error {
	totals := make(map[string]*EmployeeTotal)

	for _, rec := range tips {
		calc, err := DistributeRecord(rec, a.Config.FeeRate, hoursByWeek[rec.Week])
		if err != nil {
			return fmt.Errorf("week %s: %w", rec.Week, err)
		}
		agg.Weeks = append(agg.Weeks, WeekBreakdown{Week: rec.Week, Calc: calc})

		for _, line := range calc.Lines {
			t := totals[line.EmployeeID]
			if t == nil {
				t = &EmployeeTotal{EmployeeID: line.EmployeeID}
				totals[line.EmployeeID] = t
			}
			t.Hours = t.Hours.Add(line.Hours)
			t.Payout = t.Payout.Add(line.Payout)
		}
	}

	if err := a.resolveNames(ctx, agg.TenantID, totals); err != nil {
		return err
	}

	for _, t := range totals {
		agg.Totals = append(agg.Totals, *t)
	}
	sort.Slice(agg.Totals, func(i, j int) bool {
		if agg.Totals[i].Name != agg.Totals[j].Name {
			return agg.Totals[i].Name < agg.Totals[j].Name
		}
		return agg.Totals[i].EmployeeID < agg.Totals[j].EmployeeID
	})
	return nil
}

// resolveNames maps employee ids to display names, including deactivated
// employees; their history stays attributable. An id with no directory row
// falls back to the id itself rather than dropping the money from the report.
func (a *Aggregator) resolveNames(ctx context.Context, tenantID string, totals map[string]*EmployeeTotal) error {
	emps, err := a.Directory.ListEmployees(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("resolve names tenant %s: %w", tenantID, err)
	}
	byID := make(map[string]*Employee, len(emps))
	for _, e := range emps {
		byID[e.ID] = e
	}
	for id, t := range totals {
		if e, ok := byID[id]; ok {
			t.Name = e.Name
			t.Active = e.Active
		} else {
			t.Name = id
		}
	}
	return nil
}

// =============================================================================
// INDIVIDUAL MODE
// =============================================================================

// fillIndividual builds one employee's trend. The full hours range is still
// needed: the hourly rate divides each week's pool by the whole team's
// hours, not the one employee's.
func (a *Aggregator) fillIndividual(ctx context.Context, agg *HistoricalAggregate, tips []*WeeklyTipRecord, hoursByWeek map[WeekKey]map[string]decimal.Decimal, employeeID string) error {
	emp, err := a.Directory.GetEmployee(ctx, agg.TenantID, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return fmt.Errorf("tenant %s employee %s: %w", agg.TenantID, employeeID, ErrEmployeeNotFound)
	}
	agg.Employee = emp

	running := ZeroMoney()
	for _, rec := range tips {
		weekHours := hoursByWeek[rec.Week]
		h, worked := weekHours[employeeID]
		if !worked {
			continue
		}

		calc, err := DistributeRecord(rec, a.Config.FeeRate, weekHours)
		if err != nil {
			return fmt.Errorf("week %s: %w", rec.Week, err)
		}

		payout := Money{Value: h.Mul(calc.HourlyRate)}
		running = running.Add(payout)
		agg.Trend = append(agg.Trend, TrendPoint{
			Week:       rec.Week,
			Hours:      h,
			HourlyRate: calc.HourlyRate,
			Payout:     payout,
			Running:    running,
		})
		agg.TotalHours = agg.TotalHours.Add(h)
	}
	agg.TotalPayout = running
	return nil
}
