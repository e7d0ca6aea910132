/*
handlers.go - HTTP API handlers for the tip pool engine

PURPOSE:
  Exposes the engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic. The calculator and
  reconciler run synchronously on in-memory data; the store is touched
  only on explicit loads and saves.

ENDPOINTS:
  Weeks:
    GET    /api/weeks/{week}/tips               Load tip record (zeroes on miss)
    PUT    /api/weeks/{week}/tips               Versioned full-record upsert
    GET    /api/weeks/{week}/hours              Week's hours with names
    PUT    /api/weeks/{week}/hours/{employeeID} Upsert one employee's hours
    DELETE /api/weeks/{week}/hours/{employeeID} Delete an hours entry
    POST   /api/weeks/{week}/payout             Compute distribution (no writes)
    POST   /api/weeks/{week}/reconcile          Summed vs declared hours

  History:
    GET    /api/history?start=&end=&mode=&employee_id=

  Employees:
    GET    /api/employees                       List (active and inactive)
    POST   /api/employees                       Create
    POST   /api/employees/{id}/deactivate       Soft-deactivate

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Contract violations (bad sequence length, negative amounts)
  - 404: Unknown employee
  - 409: Stale version stamp (reload and retry)
  - 503: Store timeout (retryable)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/tippool-engine/tippool"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      tippool.Store
	Config     tippool.Config
	Aggregator *tippool.Aggregator
}

// NewHandler creates a new handler with the given store and config.
func NewHandler(store tippool.Store, cfg tippool.Config) *Handler {
	return &Handler{
		Store:      store,
		Config:     cfg,
		Aggregator: tippool.NewAggregator(store, cfg),
	}
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// WEEKLY TIP HANDLERS
// =============================================================================

// GetWeekTips returns the weekly tip record, zero-filled when absent.
func (h *Handler) GetWeekTips(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}

	rec, err := h.Store.LoadWeek(r.Context(), tenant, week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load week", err)
		return
	}
	if rec == nil {
		rec = tippool.EmptyWeeklyTipRecord(tenant, week)
	}

	writeJSON(w, http.StatusOK, toWeekTipsDTO(rec))
}

// SaveWeekTips upserts the full record for the week.
func (h *Handler) SaveWeekTips(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}

	var req SaveWeekTipsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cash, err := tippool.EntriesFromStrings("cash_entries", req.CashEntries)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cash entries", err)
		return
	}
	card, err := tippool.EntriesFromStrings("cc_entries", req.CCEntries)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credit-card entries", err)
		return
	}

	rec := &tippool.WeeklyTipRecord{
		TenantID: tenant,
		Week:     week,
		Cash:     cash,
		Card:     card,
		Version:  req.Version,
	}

	version, err := h.Store.SaveWeek(r.Context(), rec)
	if err != nil {
		writeError(w, statusFor(err), "Failed to save week", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResultDTO{Version: version})
}

// =============================================================================
// HOURS HANDLERS
// =============================================================================

// GetWeekHours returns the week's hour entries with names resolved,
// including deactivated employees.
func (h *Handler) GetWeekHours(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}

	hours, err := h.Store.LoadWeekHours(r.Context(), tenant, week)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load hours", err)
		return
	}
	names, active, err := h.employeeNames(r, tenant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve employees", err)
		return
	}

	dtos := make([]WeekHoursDTO, 0, len(hours))
	for id, hrs := range hours {
		f, _ := hrs.Float64()
		name := names[id]
		if name == "" {
			name = id
		}
		dtos = append(dtos, WeekHoursDTO{EmployeeID: id, Name: name, Active: active[id], Hours: f})
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Name < dtos[j].Name })

	writeJSON(w, http.StatusOK, dtos)
}

// UpsertHours sets one employee's hours for the week.
func (h *Handler) UpsertHours(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")

	var req UpsertHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hours, err := decimal.NewFromString(req.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours value", err)
		return
	}
	if hours.IsNegative() {
		writeError(w, http.StatusBadRequest, "Hours must be non-negative", tippool.ErrNegativeAmount)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), tenant, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", tippool.ErrEmployeeNotFound)
		return
	}

	rec := &tippool.EmployeeHoursRecord{
		TenantID:   tenant,
		EmployeeID: employeeID,
		Week:       week,
		Hours:      hours,
		Version:    req.Version,
	}
	version, err := h.Store.UpsertHours(r.Context(), rec)
	if err != nil {
		writeError(w, statusFor(err), "Failed to save hours", err)
		return
	}
	writeJSON(w, http.StatusOK, SaveResultDTO{Version: version})
}

// DeleteHours removes an employee's entry for the week. Distinct from
// zeroing: the row is gone.
func (h *Handler) DeleteHours(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}
	employeeID := chi.URLParam(r, "employeeID")

	if err := h.Store.DeleteHours(r.Context(), tenant, employeeID, week); err != nil {
		writeError(w, statusFor(err), "Failed to delete hours", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PAYOUT & RECONCILIATION HANDLERS
// =============================================================================

// ComputePayout runs the calculator. Pure: no writes. Entries and hours in
// the body override the stored values, so the screen can preview unsaved
// edits; omitted fields fall back to what is stored.
func (h *Handler) ComputePayout(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}

	var req PayoutRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	input := tippool.DistributionInput{Week: week, FeeRate: h.Config.FeeRate}

	if req.CashEntries != nil || req.CCEntries != nil {
		cash, err := tippool.EntriesFromStrings("cash_entries", req.CashEntries)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid cash entries", err)
			return
		}
		card, err := tippool.EntriesFromStrings("cc_entries", req.CCEntries)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid credit-card entries", err)
			return
		}
		input.Cash = cash
		input.Card = card
	} else {
		rec, err := h.Store.LoadWeek(r.Context(), tenant, week)
		if err != nil {
			writeError(w, statusFor(err), "Failed to load week", err)
			return
		}
		if rec == nil {
			rec = tippool.EmptyWeeklyTipRecord(tenant, week)
		}
		input.Cash = rec.Cash
		input.Card = rec.Card
	}

	if req.Hours != nil {
		hours := make(map[string]decimal.Decimal, len(req.Hours))
		for id, v := range req.Hours {
			d, err := decimal.NewFromString(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid hours for "+id, err)
				return
			}
			hours[id] = d
		}
		input.Hours = hours
	} else {
		hours, err := h.Store.LoadWeekHours(r.Context(), tenant, week)
		if err != nil {
			writeError(w, statusFor(err), "Failed to load hours", err)
			return
		}
		input.Hours = hours
	}

	calc, err := tippool.Distribute(input)
	if err != nil {
		writeError(w, statusFor(err), "Failed to compute payout", err)
		return
	}

	names, _, err := h.employeeNames(r, tenant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve employees", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayoutDTO(calc, names))
}

// ReconcileHours compares the week's summed hours against a declared
// total. Advisory: a mismatch is a 200 with match=false, never an error.
func (h *Handler) ReconcileHours(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())
	week, ok := h.weekParam(w, r)
	if !ok {
		return
	}

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hours, err := h.Store.LoadWeekHours(r.Context(), tenant, week)
	if err != nil {
		writeError(w, statusFor(err), "Failed to load hours", err)
		return
	}

	result := tippool.Reconcile(hours, req.DeclaredHours, req.DeclaredMinutes, h.Config.ReconcileTolerance)
	summed, _ := result.Summed.Float64()
	declared, _ := result.Declared.Float64()
	delta, _ := result.Delta.Round(4).Float64()
	writeJSON(w, http.StatusOK, ReconcileDTO{
		Match:    result.Match,
		Summed:   summed,
		Declared: declared,
		Delta:    delta,
	})
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// GetHistory returns a team or individual aggregate over a week range.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())

	start, err := tippool.ParseWeekKey(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start week", err)
		return
	}
	end, err := tippool.ParseWeekKey(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end week", err)
		return
	}

	mode := tippool.AggregateMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = tippool.ModeTeam
	}
	if mode != tippool.ModeTeam && mode != tippool.ModeIndividual {
		writeError(w, http.StatusBadRequest, "Mode must be team or individual", nil)
		return
	}

	agg, err := h.Aggregator.Aggregate(r.Context(), tenant, start, end, mode, r.URL.Query().Get("employee_id"))
	if err != nil {
		writeError(w, statusFor(err), "Failed to build history", err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryDTO(agg))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns the tenant's directory, deactivated included.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())

	emps, err := h.Store.ListEmployees(r.Context(), tenant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(emps))
	for i, e := range emps {
		dtos[i] = EmployeeDTO{ID: e.ID, Name: e.Name, Active: e.Active}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee adds an employee to the tenant's directory.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Employee id and name are required", nil)
		return
	}

	emp := &tippool.Employee{ID: req.ID, TenantID: tenant, Name: req.Name, Active: true}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, EmployeeDTO{ID: emp.ID, Name: emp.Name, Active: true})
}

// DeactivateEmployee soft-deactivates; historical hours stay attributable.
func (h *Handler) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	tenant := TenantID(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Store.DeactivateEmployee(r.Context(), tenant, id); err != nil {
		writeError(w, statusFor(err), "Failed to deactivate employee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) weekParam(w http.ResponseWriter, r *http.Request) (tippool.WeekKey, bool) {
	week, err := tippool.ParseWeekKey(chi.URLParam(r, "week"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week key (use the Monday date, YYYY-MM-DD)", err)
		return "", false
	}
	return week, true
}

func (h *Handler) employeeNames(r *http.Request, tenant string) (map[string]string, map[string]bool, error) {
	emps, err := h.Store.ListEmployees(r.Context(), tenant)
	if err != nil {
		return nil, nil, err
	}
	names := make(map[string]string, len(emps))
	active := make(map[string]bool, len(emps))
	for _, e := range emps {
		names[e.ID] = e.Name
		active[e.ID] = e.Active
	}
	return names, active, nil
}

func statusFor(err error) int {
	switch {
	case tippool.IsClientError(err):
		return http.StatusBadRequest
	case tippool.IsConflict(err):
		return http.StatusConflict
	case tippool.IsNotFound(err):
		return http.StatusNotFound
	case tippool.IsRetryable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
