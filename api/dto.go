/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Monetary
  values cross the boundary as decimal strings on the way in (no float
  parsing of money) and as cent-rounded numbers on the way out - rounding
  happens here and nowhere else.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/tippool-engine/tippool"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// WeekTipsDTO is a weekly tip record in API responses. Entries are ordered
// Monday..Sunday; a missing week serves zeroes with version 0.
type WeekTipsDTO struct {
	Week        string    `json:"week"`
	WeekLabel   string    `json:"week_label"`
	CashEntries []float64 `json:"cash_entries"`
	CCEntries   []float64 `json:"cc_entries"`
	Version     int64     `json:"version"`
}

// SaveWeekTipsRequest carries entries as decimal strings, Monday..Sunday.
// Version must echo the loaded record's version (0 for a new week).
type SaveWeekTipsRequest struct {
	CashEntries []string `json:"cash_entries"`
	CCEntries   []string `json:"cc_entries"`
	Version     int64    `json:"version"`
}

// WeekHoursDTO is one employee's hours row within a week.
type WeekHoursDTO struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name,omitempty"`
	Active     bool    `json:"active"`
	Hours      float64 `json:"hours"`
}

// UpsertHoursRequest sets one employee's hours for a week.
type UpsertHoursRequest struct {
	Hours   string `json:"hours"`
	Version int64  `json:"version"`
}

// PayoutRequest asks for a distribution preview. When Hours is nil the
// stored hours for the week are used; entries default to the stored record.
type PayoutRequest struct {
	CashEntries []string          `json:"cash_entries,omitempty"`
	CCEntries   []string          `json:"cc_entries,omitempty"`
	Hours       map[string]string `json:"hours,omitempty"`
}

// PayoutLineDTO is one employee's share, rounded to cents for display.
type PayoutLineDTO struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name,omitempty"`
	Hours      float64 `json:"hours"`
	Payout     float64 `json:"payout"`
}

// PayoutDTO is the full weekly distribution.
type PayoutDTO struct {
	Week         string          `json:"week"`
	WeekLabel    string          `json:"week_label"`
	CashTotal    float64         `json:"cash_total"`
	CCTotal      float64         `json:"cc_total"`
	FeeRate      string          `json:"fee_rate"`
	CCAfterFee   float64         `json:"cc_after_fee"`
	TotalPool    float64         `json:"total_pool"`
	TotalHours   float64         `json:"total_hours"`
	HourlyRate   float64         `json:"hourly_rate"`
	Distribution []PayoutLineDTO `json:"distribution"`
}

// ReconcileRequest compares stored hours against a declared total entered
// as separate hour/minute components.
type ReconcileRequest struct {
	DeclaredHours   int `json:"declared_hours"`
	DeclaredMinutes int `json:"declared_minutes"`
}

// ReconcileDTO is the advisory comparison result.
type ReconcileDTO struct {
	Match    bool    `json:"match"`
	Summed   float64 `json:"summed"`
	Declared float64 `json:"declared"`
	Delta    float64 `json:"delta"`
}

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryWeekDTO is one week's replayed totals within a history report.
type HistoryWeekDTO struct {
	Week       string  `json:"week"`
	WeekLabel  string  `json:"week_label"`
	TotalPool  float64 `json:"total_pool"`
	TotalHours float64 `json:"total_hours"`
	HourlyRate float64 `json:"hourly_rate"`
}

// HistoryTotalDTO is one employee's lifetime totals across the range.
type HistoryTotalDTO struct {
	EmployeeID string  `json:"employee_id"`
	Name       string  `json:"name"`
	Active     bool    `json:"active"`
	Hours      float64 `json:"hours"`
	Payout     float64 `json:"payout"`
}

// TrendPointDTO is one week of an individual trend.
type TrendPointDTO struct {
	Week       string  `json:"week"`
	Hours      float64 `json:"hours"`
	HourlyRate float64 `json:"hourly_rate"`
	Payout     float64 `json:"payout"`
	Running    float64 `json:"running_total"`
}

// HistoryDTO is the aggregate report. Empty=true signals "no weekly
// records in range" as a distinct condition, not a zero-filled report.
type HistoryDTO struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Mode  string `json:"mode"`
	Empty bool   `json:"empty"`

	Weeks  []HistoryWeekDTO  `json:"weeks,omitempty"`
	Totals []HistoryTotalDTO `json:"totals,omitempty"`

	Employee    *EmployeeDTO    `json:"employee,omitempty"`
	Trend       []TrendPointDTO `json:"trend,omitempty"`
	TotalHours  float64         `json:"total_hours,omitempty"`
	TotalPayout float64         `json:"total_payout,omitempty"`
}

// SaveResultDTO acknowledges a versioned save.
type SaveResultDTO struct {
	Version int64 `json:"version"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func entriesToFloats(entries [tippool.DaysInWeek]tippool.Money) []float64 {
	out := make([]float64, tippool.DaysInWeek)
	for i, e := range entries {
		out[i] = e.Float64()
	}
	return out
}

func toWeekTipsDTO(rec *tippool.WeeklyTipRecord) WeekTipsDTO {
	return WeekTipsDTO{
		Week:        string(rec.Week),
		WeekLabel:   rec.Week.Label(),
		CashEntries: entriesToFloats(rec.Cash),
		CCEntries:   entriesToFloats(rec.Card),
		Version:     rec.Version,
	}
}

func toPayoutDTO(calc *tippool.PayoutCalculation, names map[string]string) PayoutDTO {
	hours, _ := calc.TotalHours.Float64()
	rate, _ := calc.HourlyRate.Round(4).Float64()

	lines := make([]PayoutLineDTO, len(calc.Lines))
	for i, l := range calc.Lines {
		h, _ := l.Hours.Float64()
		lines[i] = PayoutLineDTO{
			EmployeeID: l.EmployeeID,
			Name:       names[l.EmployeeID],
			Hours:      h,
			Payout:     l.Payout.Float64(),
		}
	}

	return PayoutDTO{
		Week:         string(calc.Week),
		WeekLabel:    calc.WeekLabel,
		CashTotal:    calc.CashTotal.Float64(),
		CCTotal:      calc.CardTotal.Float64(),
		FeeRate:      calc.FeeRate.String(),
		CCAfterFee:   calc.CardAfterFee.Float64(),
		TotalPool:    calc.Pool.Float64(),
		TotalHours:   hours,
		HourlyRate:   rate,
		Distribution: lines,
	}
}

func toHistoryDTO(agg *tippool.HistoricalAggregate) HistoryDTO {
	dto := HistoryDTO{
		From:  string(agg.From),
		To:    string(agg.To),
		Mode:  string(agg.Mode),
		Empty: agg.Empty,
	}
	if agg.Empty {
		return dto
	}

	for _, w := range agg.Weeks {
		hours, _ := w.Calc.TotalHours.Float64()
		rate, _ := w.Calc.HourlyRate.Round(4).Float64()
		dto.Weeks = append(dto.Weeks, HistoryWeekDTO{
			Week:       string(w.Week),
			WeekLabel:  w.Calc.WeekLabel,
			TotalPool:  w.Calc.Pool.Float64(),
			TotalHours: hours,
			HourlyRate: rate,
		})
	}

	for _, t := range agg.Totals {
		hours, _ := t.Hours.Float64()
		dto.Totals = append(dto.Totals, HistoryTotalDTO{
			EmployeeID: t.EmployeeID,
			Name:       t.Name,
			Active:     t.Active,
			Hours:      hours,
			Payout:     t.Payout.Float64(),
		})
	}

	if agg.Employee != nil {
		dto.Employee = &EmployeeDTO{ID: agg.Employee.ID, Name: agg.Employee.Name, Active: agg.Employee.Active}
		for _, p := range agg.Trend {
			hours, _ := p.Hours.Float64()
			rate, _ := p.HourlyRate.Round(4).Float64()
			dto.Trend = append(dto.Trend, TrendPointDTO{
				Week:       string(p.Week),
				Hours:      hours,
				HourlyRate: rate,
				Payout:     p.Payout.Float64(),
				Running:    p.Running.Float64(),
			})
		}
		totalHours, _ := agg.TotalHours.Float64()
		dto.TotalHours = totalHours
		dto.TotalPayout = agg.TotalPayout.Float64()
	}
	return dto
}
