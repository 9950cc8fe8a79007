/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Periods:
    GET  /api/periods/resolve            Resolve (mode, anchor) to interval
    GET  /api/periods/navigate           Shift the anchor

  Reference data:
    GET/POST /api/employees              Profiles
    GET/PUT  /api/employees/{id}
    GET/POST /api/entries                Time entries
    GET/POST /api/tasks                  Task directory
    GET/PUT  /api/policy                 Firm sick leave policy

  Payroll runs:
    POST /api/payroll/runs               Compute a run (Draft)
    GET  /api/payroll/runs/{id}
    PUT  /api/payroll/runs/{id}/sick-override/{employeeID}
    POST /api/payroll/runs/{id}/approve  Commit balances (once)
    POST /api/payroll/runs/{id}/lock
    POST /api/payroll/runs/{id}/unlock
    GET  /api/payroll/runs/{id}/export.csv
    GET  /api/payroll/runs/{id}/payslips/{employeeID}
    GET  /api/payroll/runs/{id}/audit

ERROR HANDLING:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Invalid approval transition, frozen overrides
  - 500: Store errors

RUN SESSIONS:
  Runs live in memory for the server's lifetime, keyed by run ID. The
  committed side effects (balances, audit trail) are in the store; a
  restarted server simply starts new Draft runs, matching the reference
  behavior of per-session approval state.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/approval"
	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/timesheet"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the handlers need from persistence. Both
// store/sqlite and store/memory satisfy it.
type Store interface {
	payroll.ProfileStore
	payroll.PolicyStore
	timesheet.EntryStore
	timesheet.TaskStore
	approval.AuditLog

	// Billable is the billability predicate handed to the aggregator.
	Billable(id engine.TaskID) bool
}

// runSession pairs a run with the aggregate it was computed from and the
// employee selection it was created with. Recomputes reuse the selection:
// a run's scope is fixed at creation.
type runSession struct {
	run      *approval.Run
	agg      timesheet.Aggregate
	selected []string
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         Store
	PolicyFactory *factory.PolicyFactory

	mu   sync.RWMutex
	runs map[string]*runSession
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store) *Handler {
	return &Handler{
		Store:         store,
		PolicyFactory: factory.NewPolicyFactory(),
		runs:          make(map[string]*runSession),
	}
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ResolvePeriod resolves (mode, anchor) to a concrete interval.
// GET /api/periods/resolve?mode=week&anchor=2026-03-04
func (h *Handler) ResolvePeriod(w http.ResponseWriter, r *http.Request) {
	mode, anchor, ok := h.periodParams(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(mode, anchor))
}

// NavigatePeriod shifts the anchor and resolves the new period.
// GET /api/periods/navigate?mode=week&anchor=2026-03-04&op=next
func (h *Handler) NavigatePeriod(w http.ResponseWriter, r *http.Request) {
	mode, anchor, ok := h.periodParams(w, r)
	if !ok {
		return
	}
	op, err := engine.ParseNavOp(r.URL.Query().Get("op"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid navigation operation", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(mode, engine.Navigate(mode, anchor, op)))
}

func (h *Handler) periodParams(w http.ResponseWriter, r *http.Request) (engine.ViewMode, engine.Date, bool) {
	mode, err := engine.ParseViewMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid view mode", err)
		return "", engine.Date{}, false
	}
	anchor := engine.Today()
	if s := r.URL.Query().Get("anchor"); s != "" {
		anchor, err = engine.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid anchor date (use YYYY-MM-DD)", err)
			return "", engine.Date{}, false
		}
	}
	return mode, anchor, true
}

func toPeriodDTO(mode engine.ViewMode, anchor engine.Date) PeriodDTO {
	period := engine.Resolve(mode, anchor)
	return PeriodDTO{
		Mode:        string(mode),
		Anchor:      anchor.String(),
		Start:       period.Start.String(),
		End:         period.End.String(),
		WorkingDays: period.WorkingDays(),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employee profiles.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.ListProfiles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(profiles))
	for i, p := range profiles {
		dtos[i] = toEmployeeDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single profile.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	p, err := h.Store.Profile(r.Context(), id)
	if errors.Is(err, payroll.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "Employee not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(p))
}

// SaveEmployee creates or replaces a profile.
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var dto EmployeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if id := chi.URLParam(r, "id"); id != "" {
		dto.ID = id
	}
	if dto.ID == "" {
		writeError(w, http.StatusBadRequest, "Employee id is required", nil)
		return
	}
	p, err := dto.ToProfile()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee profile", err)
		return
	}
	if err := h.Store.SaveProfile(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(p))
}

// =============================================================================
// ENTRY AND TASK HANDLERS
// =============================================================================

// ListEntries returns entries in a date range.
// GET /api/entries?from=2026-03-02&to=2026-03-08
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	from, err := engine.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := engine.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}
	entries, err := h.Store.EntriesInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list entries", err)
		return
	}
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEntry records a time entry.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var dto EntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	entry, err := dto.ToEntry()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry (start must be RFC3339)", err)
		return
	}
	if err := h.Store.AppendEntry(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// ListTasks returns the task directory.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Store.Tasks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = toTaskDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveTask creates or replaces a task.
func (h *Handler) SaveTask(w http.ResponseWriter, r *http.Request) {
	var dto TaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if dto.ID == "" {
		writeError(w, http.StatusBadRequest, "Task id is required", nil)
		return
	}
	if err := h.Store.SaveTask(r.Context(), dto.ToTask()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save task", err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// GetPolicy returns the firm sick leave policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.Store.SickLeavePolicy(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load policy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToJSON(policy))
}

// PutPolicy replaces the firm sick leave policy.
func (h *Handler) PutPolicy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	policy, err := h.PolicyFactory.ParsePolicy(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy", err)
		return
	}
	if err := h.Store.SaveSickLeavePolicy(r.Context(), policy); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save policy", err)
		return
	}
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToJSON(policy))
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// CreateRun computes a new payroll run in Draft state.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	mode, err := engine.ParseViewMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid view mode", err)
		return
	}
	anchor := engine.Today()
	if req.Anchor != "" {
		anchor, err = engine.ParseDate(req.Anchor)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid anchor date (use YYYY-MM-DD)", err)
			return
		}
	}
	period := engine.Resolve(mode, anchor)

	policy, err := h.Store.SickLeavePolicy(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load policy", err)
		return
	}

	profiles, err := h.selectProfiles(r, req.EmployeeIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load employees", err)
		return
	}

	entries, err := h.Store.EntriesInRange(r.Context(), period.Start, period.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load entries", err)
		return
	}
	agg := timesheet.AggregateEntries(entries, period, h.Store, h.Store.Billable)

	run := approval.NewRun(mode, period, policy)
	run.Compute(profiles, agg)

	h.mu.Lock()
	h.runs[run.ID] = &runSession{run: run, agg: agg, selected: req.EmployeeIDs}
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, h.toRunDTO(run, agg, anchor))
}

func (h *Handler) selectProfiles(r *http.Request, ids []string) ([]*payroll.EmployeeProfile, error) {
	if len(ids) == 0 {
		return h.Store.ListProfiles(r.Context())
	}
	var out []*payroll.EmployeeProfile
	for _, id := range ids {
		p, err := h.Store.Profile(r.Context(), engine.EmployeeID(id))
		if errors.Is(err, payroll.ErrProfileNotFound) {
			// Selection of an unknown employee surfaces as a skip, not a
			// hard failure: the run still renders.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// GetRun renders a run session.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, h.toRunDTO(sess.run, sess.agg, sess.run.Period.Start))
}

// SetSickOverride edits the sick-hours override for one employee and
// recomputes the run.
func (h *Handler) SetSickOverride(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	employeeID := engine.EmployeeID(chi.URLParam(r, "employeeID"))
	if err := sess.run.SetSickOverride(employeeID, decimal.NewFromFloat(req.Hours)); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, approval.ErrRunNotEditable) {
			status = http.StatusConflict
		}
		writeError(w, status, "Failed to set override", err)
		return
	}

	profiles, err := h.selectProfiles(r, sess.selected)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load employees", err)
		return
	}
	sess.run.Compute(profiles, sess.agg)

	writeJSON(w, http.StatusOK, h.toRunDTO(sess.run, sess.agg, sess.run.Period.Start))
}

// ApproveRun commits the run's balance changes.
func (h *Handler) ApproveRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		actor = "manager"
	}

	entries, err := sess.run.Approve(r.Context(), h.Store, actor)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, approval.ErrInvalidTransition) {
			status = http.StatusConflict
		}
		if errors.Is(err, approval.ErrNoProfileStore) || errors.Is(err, approval.ErrRunNotComputed) {
			status = http.StatusBadRequest
		}
		writeError(w, status, "Approval failed", err)
		return
	}

	if err := h.Store.AppendApprovals(r.Context(), entries); err != nil {
		// Balances are committed; a failed audit write is reported but
		// does not undo the approval.
		writeError(w, http.StatusInternalServerError, "Approved, but audit log write failed", err)
		return
	}

	writeJSON(w, http.StatusOK, h.toRunDTO(sess.run, sess.agg, sess.run.Period.Start))
}

// LockRun freezes an approved run.
func (h *Handler) LockRun(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(run *approval.Run) error { return run.Lock() })
}

// UnlockRun reverses the lock gate.
func (h *Handler) UnlockRun(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(run *approval.Run) error { return run.Unlock() })
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(*approval.Run) error) {
	sess, ok := h.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	if err := fn(sess.run); err != nil {
		writeError(w, http.StatusConflict, "Invalid transition", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toRunDTO(sess.run, sess.agg, sess.run.Period.Start))
}

// ExportCSV streams the payroll report for a run.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	res := sess.run.LastResult()
	if res == nil {
		writeError(w, http.StatusBadRequest, "Run has not been computed", nil)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=payroll_%s_%s.csv", sess.run.Period.Start, sess.run.Period.End))
	if err := export.WritePayroll(w, sess.agg, res.Summaries); err != nil {
		writeError(w, http.StatusInternalServerError, "Export failed", err)
	}
}

// Payslip streams a PDF payslip for one employee in a run.
func (h *Handler) Payslip(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Run not found", nil)
		return
	}
	res := sess.run.LastResult()
	if res == nil {
		writeError(w, http.StatusBadRequest, "Run has not been computed", nil)
		return
	}
	summary, ok := res.Summary(engine.EmployeeID(chi.URLParam(r, "employeeID")))
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not in run", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	if err := export.WritePayslipPDF(w, summary, sess.run.Period); err != nil {
		writeError(w, http.StatusInternalServerError, "Payslip rendering failed", err)
	}
}

// RunAudit returns the approval audit trail for a run.
func (h *Handler) RunAudit(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	entries, err := h.Store.ApprovalsForRun(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load audit trail", err)
		return
	}
	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toAuditEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) session(id string) (*runSession, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sess, ok := h.runs[id]
	return sess, ok
}

func (h *Handler) toRunDTO(run *approval.Run, agg timesheet.Aggregate, anchor engine.Date) RunDTO {
	dto := RunDTO{
		ID:    run.ID,
		State: string(run.State()),
		Period: PeriodDTO{
			Mode:        string(run.Mode),
			Anchor:      anchor.String(),
			Start:       run.Period.Start.String(),
			End:         run.Period.End.String(),
			WorkingDays: run.Period.WorkingDays(),
		},
	}
	res := run.LastResult()
	if res == nil {
		return dto
	}
	dto.Summaries = make([]SummaryDTO, len(res.Summaries))
	for i, s := range res.Summaries {
		dto.Summaries[i] = toSummaryDTO(s)
	}
	dto.Totals = toTotalsDTO(res.Totals)
	for _, id := range res.Skipped {
		dto.Skipped = append(dto.Skipped, string(id))
	}
	for _, d := range res.Diagnostics {
		dto.Diagnostics = append(dto.Diagnostics, DiagnosticDTO{
			EntryID: d.EntryID,
			TaskID:  string(d.TaskID),
			Reason:  string(d.Reason),
		})
	}
	return dto
}

// =============================================================================
// HELPERS
// =============================================================================

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
