/*
seed.go - Demo dataset loader

PURPOSE:
  Populates the caller's tenant with a small, deterministic dataset so the
  API is explorable against an empty database: four employees (one
  deactivated) and three consecutive weeks of tips and hours.

DEV ONLY:
  Seeding re-runs are versioned saves like any other write; re-seeding an
  already-seeded tenant returns a conflict rather than silently doubling
  data.
*/
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/tippool-engine/tippool"
)

type seedEmployee struct {
	id, name string
	active   bool
}

var seedEmployees = []seedEmployee{
	{"emp-alice", "Alice Moreau", true},
	{"emp-bob", "Bob Tanner", true},
	{"emp-carla", "Carla Diaz", true},
	{"emp-dmitri", "Dmitri Volkov", false}, // worked week 1, then left
}

// Seed loads the demo dataset for the caller's tenant.
// POST /api/seed
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant := TenantID(ctx)

	for _, e := range seedEmployees {
		emp := &tippool.Employee{ID: e.id, TenantID: tenant, Name: e.name, Active: e.active}
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to seed employees", err)
			return
		}
	}

	week := tippool.WeekKeyOf(time.Now().UTC().AddDate(0, 0, -21))
	weeks := []tippool.WeekKey{week, week.Next(), week.Next().Next()}

	cash := [][]float64{
		{50, 60, 40, 70, 55, 65, 45},
		{45, 55, 50, 60, 70, 80, 40},
		{60, 50, 55, 65, 45, 75, 50},
	}
	card := [][]float64{
		{100, 120, 90, 110, 95, 130, 85},
		{90, 100, 110, 120, 105, 140, 95},
		{110, 95, 100, 115, 90, 150, 105},
	}
	hours := []map[string]float64{
		{"emp-alice": 30, "emp-bob": 10, "emp-carla": 22, "emp-dmitri": 8},
		{"emp-alice": 28, "emp-bob": 14, "emp-carla": 20},
		{"emp-alice": 32, "emp-bob": 12, "emp-carla": 24},
	}

	for i, wk := range weeks {
		rec := tippool.EmptyWeeklyTipRecord(tenant, wk)
		for d := 0; d < tippool.DaysInWeek; d++ {
			rec.Cash[d] = tippool.NewMoney(cash[i][d])
			rec.Card[d] = tippool.NewMoney(card[i][d])
		}
		if _, err := h.Store.SaveWeek(ctx, rec); err != nil {
			writeError(w, statusFor(err), fmt.Sprintf("Failed to seed week %s", wk), err)
			return
		}

		for id, hrs := range hours[i] {
			hr := &tippool.EmployeeHoursRecord{
				TenantID:   tenant,
				EmployeeID: id,
				Week:       wk,
				Hours:      decimal.NewFromFloat(hrs),
			}
			if _, err := h.Store.UpsertHours(ctx, hr); err != nil {
				writeError(w, statusFor(err), fmt.Sprintf("Failed to seed hours for week %s", wk), err)
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "seeded",
		"employees": len(seedEmployees),
		"weeks":     []string{string(weeks[0]), string(weeks[1]), string(weeks[2])},
	})
}
