/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	firm data for testing and demos. Each scenario creates employee
	profiles, a task directory, a week of time entries, and a firm sick
	leave policy that together exercise specific payroll behavior.

AVAILABLE SCENARIOS:

	small-firm:     Two hourly employees, one salaried, per-hour accrual
	overtime-week:  One hourly employee logging past the weekly threshold

HOW SCENARIOS WORK:
 1. Create the firm sick leave policy
 2. Create employee profiles
 3. Create tasks linking employees to clients
 4. Append time entries for the current week

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "small-firm"}

NOTE:

	Scenarios seed data on top of whatever is in the store. Only use in
	development/demo environments.

SEE ALSO:
  - handlers.go: Shared writeJSON/writeError helpers
  - factory/policy.go: Policy JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/timesheet"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var scenarios = []ScenarioDTO{
	{
		ID:          "small-firm",
		Name:        "Small Firm",
		Description: "Two hourly employees and one salaried, per-hour sick accrual",
	},
	{
		ID:          "overtime-week",
		Name:        "Overtime Week",
		Description: "One hourly employee logging past the 40-hour threshold",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario seeds the store with one scenario's data.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "small-firm":
		err = h.loadSmallFirmScenario(r.Context())
	case "overtime-week":
		err = h.loadOvertimeWeekScenario(r.Context())
	default:
		writeError(w, http.StatusNotFound, "Unknown scenario", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadSmallFirmScenario(ctx context.Context) error {
	policy := payroll.SickLeavePolicy{
		Method: payroll.AccrualPerHour,
		Rate:   decimal.NewFromInt(30),
	}
	maxAccrual := decimal.NewFromInt(48)
	policy.MaxAccrual = &maxAccrual
	if err := h.Store.SaveSickLeavePolicy(ctx, policy); err != nil {
		return err
	}

	otRate := 45.0
	profiles := []*payroll.EmployeeProfile{
		{
			ID:               "emp-alice",
			Name:             "Alice Moreau",
			Employment:       payroll.Hourly,
			HourlyRate:       decimal.NewFromInt(30),
			OvertimeEnabled:  true,
			HoursPerWeek:     decimal.NewFromInt(40),
			SickLeaveBalance: decimal.NewFromInt(16),
		},
		{
			ID:               "emp-bruno",
			Name:             "Bruno Keller",
			Employment:       payroll.Hourly,
			HourlyRate:       decimal.NewFromInt(28),
			OvertimeEnabled:  false,
			HoursPerWeek:     decimal.NewFromInt(40),
			SickLeaveBalance: decimal.NewFromInt(8),
		},
		{
			ID:               "emp-carla",
			Name:             "Carla Diaz",
			Employment:       payroll.Salaried,
			HourlyRate:       decimal.NewFromInt(50),
			OvertimeEnabled:  false,
			HoursPerWeek:     decimal.NewFromInt(40),
			SickLeaveBalance: decimal.NewFromInt(24),
		},
	}
	salary := decimal.NewFromInt(104000)
	profiles[2].AnnualSalary = &salary
	overtimeRate := decimal.NewFromFloat(otRate)
	profiles[0].OvertimeRate = &overtimeRate

	for _, p := range profiles {
		if err := h.Store.SaveProfile(ctx, p); err != nil {
			return err
		}
	}

	tasks := []timesheet.Task{
		{ID: "task-acme-audit", EmployeeID: "emp-alice", ClientID: "acme", Completed: true},
		{ID: "task-acme-books", EmployeeID: "emp-bruno", ClientID: "acme", Completed: true},
		{ID: "task-globex-tax", EmployeeID: "emp-carla", ClientID: "globex", Completed: true},
		{ID: "task-internal", EmployeeID: "emp-alice", ClientID: "internal", Completed: false},
	}
	for _, t := range tasks {
		if err := h.Store.SaveTask(ctx, t); err != nil {
			return err
		}
	}

	return h.seedWeek(ctx, map[string][]float64{
		"task-acme-audit": {8, 8, 8, 8, 6},
		"task-acme-books": {7, 7, 8, 8, 7},
		"task-globex-tax": {8, 8, 8, 8, 8},
		"task-internal":   {0, 0, 2, 0, 0},
	})
}

func (h *Handler) loadOvertimeWeekScenario(ctx context.Context) error {
	policy := payroll.SickLeavePolicy{
		Method: payroll.AccrualPerPayPeriod,
		Rate:   decimal.NewFromInt(2),
	}
	if err := h.Store.SaveSickLeavePolicy(ctx, policy); err != nil {
		return err
	}

	p := &payroll.EmployeeProfile{
		ID:               "emp-dmitri",
		Name:             "Dmitri Volkov",
		Employment:       payroll.Hourly,
		HourlyRate:       decimal.NewFromInt(35),
		OvertimeEnabled:  true,
		HoursPerWeek:     decimal.NewFromInt(40),
		SickLeaveBalance: decimal.NewFromInt(4),
	}
	if err := h.Store.SaveProfile(ctx, p); err != nil {
		return err
	}

	task := timesheet.Task{ID: "task-initech-close", EmployeeID: "emp-dmitri", ClientID: "initech", Completed: true}
	if err := h.Store.SaveTask(ctx, task); err != nil {
		return err
	}

	return h.seedWeek(ctx, map[string][]float64{
		"task-initech-close": {9, 10, 9, 9, 10},
	})
}

// seedWeek appends Monday-to-Friday entries for the current ISO week.
// hoursByTask maps a task ID to five daily hour values.
func (h *Handler) seedWeek(ctx context.Context, hoursByTask map[string][]float64) error {
	monday := engine.StartOfISOWeek(engine.Today())
	for taskID, days := range hoursByTask {
		for i, hours := range days {
			if hours == 0 {
				continue
			}
			day := monday.AddDays(i)
			entry := timesheet.Entry{
				ID:              "seed-" + taskID + "-" + day.String(),
				TaskID:          engine.TaskID(taskID),
				Start:           time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC),
				DurationSeconds: int64(hours * 3600),
			}
			if err := h.Store.AppendEntry(ctx, entry); err != nil {
				return err
			}
		}
	}
	return nil
}
