/*
handlers.go - HTTP API handlers for the dispatch settlement system

PURPOSE:
  Exposes reference-data management, activity recording, and on-demand
  settlement computation via REST. Handles HTTP request/response, JSON
  serialization, and delegates the arithmetic to the settlement engine.

ENDPOINTS:
  Instructors:
    GET    /api/instructors                       List
    POST   /api/instructors                       Register
    GET    /api/instructors/{id}                  Get
    GET    /api/instructors/{id}/activities       Activities in a range
    GET    /api/instructors/{id}/settlements/daily?date=YYYY-MM-DD
    GET    /api/instructors/{id}/settlements/monthly?month=YYYY-MM

  Institutions:
    GET    /api/institutions                      List
    POST   /api/institutions                      Register
    GET    /api/institutions/{id}                 Get

  Activities:
    POST   /api/activities                        Record an activity

  Configuration:
    GET/PUT /api/distances                        Distance matrix
    GET/PUT /api/fee-schedule                     Rate configuration

  Scenarios:
    GET    /api/scenarios                         List demo scenarios
    POST   /api/scenarios/load                    Load a demo scenario
    POST   /api/scenarios/reset                   Clear the database

REQUEST FLOW:
  1. Parse and validate input (go-playground/validator)
  2. Load reference-data snapshots from the store
  3. Call the settlement engine
  4. Serialize response

ERROR HANDLING:
  - 400: Validation errors, caller-contract violations
  - 404: Missing entity, or a month with no activity data
  - 500: Store failures
  Settlement computation itself never 500s on reference-data gaps: the
  engine degrades softly and reports warnings inside the settlement body.

SEE ALSO:
  - dto.go: Request/response structures
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/edudispatch/settlement-engine/factory"
	"github.com/edudispatch/settlement-engine/settlement"
	"github.com/edudispatch/settlement-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.ScheduleFactory

	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:    store,
		Factory:  factory.NewScheduleFactory(),
		validate: validator.New(),
	}
}

// =============================================================================
// INSTRUCTOR HANDLERS
// =============================================================================

// ListInstructors returns all instructors.
func (h *Handler) ListInstructors(w http.ResponseWriter, r *http.Request) {
	instructors, err := h.Store.ListInstructors(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list instructors", err)
		return
	}

	dtos := make([]InstructorDTO, len(instructors))
	for i, in := range instructors {
		dtos[i] = toInstructorDTO(in)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateInstructor registers an instructor.
func (h *Handler) CreateInstructor(w http.ResponseWriter, r *http.Request) {
	var req CreateInstructorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	in := settlement.Instructor{
		ID:       settlement.InstructorID(req.ID),
		Name:     req.Name,
		HomeCity: settlement.City(req.HomeCity),
	}
	if err := h.Store.CreateInstructor(r.Context(), in); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create instructor", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInstructorDTO(in))
}

// GetInstructor returns a single instructor.
func (h *Handler) GetInstructor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	in, err := h.Store.GetInstructor(r.Context(), settlement.InstructorID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get instructor", err)
		return
	}
	if in == nil {
		writeError(w, http.StatusNotFound, "Instructor not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toInstructorDTO(*in))
}

// ListInstructorActivities returns one instructor's activities in a range.
// GET /api/instructors/{id}/activities?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) ListInstructorActivities(w http.ResponseWriter, r *http.Request) {
	id := settlement.InstructorID(chi.URLParam(r, "id"))

	from, err := settlement.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'from' date", err)
		return
	}
	to, err := settlement.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'to' date", err)
		return
	}

	activities, err := h.Store.ListActivities(r.Context(), id, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}

	dtos := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		dtos[i] = toActivityDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// INSTITUTION HANDLERS
// =============================================================================

// ListInstitutions returns all institutions.
func (h *Handler) ListInstitutions(w http.ResponseWriter, r *http.Request) {
	institutions, err := h.Store.ListInstitutions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list institutions", err)
		return
	}

	dtos := make([]InstitutionDTO, len(institutions))
	for i, in := range institutions {
		dtos[i] = toInstitutionDTO(in)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateInstitution registers an institution.
func (h *Handler) CreateInstitution(w http.ResponseWriter, r *http.Request) {
	var req CreateInstitutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	in := settlement.Institution{
		ID:        settlement.InstitutionID(req.ID),
		Name:      req.Name,
		City:      settlement.City(req.City),
		Level:     settlement.Level(req.Level),
		IsRemote:  req.IsRemote,
		IsSpecial: req.IsSpecial,
	}
	if err := h.Store.CreateInstitution(r.Context(), in); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create institution", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInstitutionDTO(in))
}

// GetInstitution returns a single institution.
func (h *Handler) GetInstitution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	in, err := h.Store.GetInstitution(r.Context(), settlement.InstitutionID(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get institution", err)
		return
	}
	if in == nil {
		writeError(w, http.StatusNotFound, "Institution not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toInstitutionDTO(*in))
}

// =============================================================================
// ACTIVITY HANDLERS
// =============================================================================

// CreateActivity records a class or event activity.
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	date, err := settlement.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	var activity settlement.Activity
	switch settlement.ActivityKind(req.Kind) {
	case settlement.KindClass:
		activity = settlement.NewClassActivity(
			settlement.ActivityID(req.ID),
			settlement.InstructorID(req.InstructorID),
			date,
			settlement.ClassDetail{
				Status:             settlement.Status(req.Status),
				Role:               settlement.Role(req.Role),
				InstitutionID:      settlement.InstitutionID(req.InstitutionID),
				Sessions:           req.Sessions,
				Students:           req.Students,
				HasAssistant:       req.HasAssistant,
				EquipmentTransport: req.EquipmentTransport,
			})
	case settlement.KindEvent:
		activity = settlement.NewEventActivity(
			settlement.ActivityID(req.ID),
			settlement.InstructorID(req.InstructorID),
			date,
			settlement.EventDetail{
				Status:             settlement.Status(req.Status),
				Hours:              req.Hours,
				EquipmentTransport: req.EquipmentTransport,
			})
	}

	if err := h.Store.CreateActivity(r.Context(), activity); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create activity", err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityDTO(activity))
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// GetDailySettlement computes one instructor's settlement for one date.
// GET /api/instructors/{id}/settlements/daily?date=YYYY-MM-DD
func (h *Handler) GetDailySettlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := settlement.InstructorID(chi.URLParam(r, "id"))

	date, err := settlement.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	instructor, err := h.Store.GetInstructor(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get instructor", err)
		return
	}
	if instructor == nil {
		writeError(w, http.StatusNotFound, "Instructor not found", nil)
		return
	}

	calc, err := h.newCalculator(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load reference data", err)
		return
	}

	activities, err := h.Store.ListActivities(ctx, id, date, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}

	daily, err := calc.ComputeDaily(*instructor, date, activities)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Settlement computation rejected input", err)
		return
	}
	writeJSON(w, http.StatusOK, daily)
}

// GetMonthlySettlement computes one instructor's statement for one month.
// GET /api/instructors/{id}/settlements/monthly?month=YYYY-MM
func (h *Handler) GetMonthlySettlement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := settlement.InstructorID(chi.URLParam(r, "id"))

	month, err := settlement.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	instructor, err := h.Store.GetInstructor(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get instructor", err)
		return
	}
	if instructor == nil {
		writeError(w, http.StatusNotFound, "Instructor not found", nil)
		return
	}

	calc, err := h.newCalculator(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load reference data", err)
		return
	}

	days := month.Days()
	first, last := days[0], days[len(days)-1]
	activities, err := h.Store.ListActivities(ctx, id, first, last)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}
	if len(activities) == 0 {
		writeError(w, http.StatusNotFound, "No activity data for this month", nil)
		return
	}

	// Group by date, preserving recorded order within each day.
	byDate := make(map[settlement.Date][]settlement.Activity)
	var dates []settlement.Date
	for _, a := range activities {
		if _, seen := byDate[a.Date]; !seen {
			dates = append(dates, a.Date)
		}
		byDate[a.Date] = append(byDate[a.Date], a)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var dailies []settlement.DailySettlement
	for _, d := range dates {
		daily, err := calc.ComputeDaily(*instructor, d, byDate[d])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Settlement computation rejected input", err)
			return
		}
		dailies = append(dailies, *daily)
	}

	agg := settlement.MonthlyAggregator{Schedule: calc.Schedule}
	monthly, err := agg.ComputeMonthly(dailies)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Monthly aggregation rejected input", err)
		return
	}
	writeJSON(w, http.StatusOK, monthly)
}

// newCalculator loads reference-data snapshots for one computation batch.
func (h *Handler) newCalculator(r *http.Request) (*settlement.DailyCalculator, error) {
	ctx := r.Context()

	dir, err := h.Store.LoadDirectory(ctx)
	if err != nil {
		return nil, err
	}
	matrix, err := h.Store.LoadDistanceMatrix(ctx)
	if err != nil {
		return nil, err
	}
	schedule, err := h.loadSchedule(r)
	if err != nil {
		return nil, err
	}

	return &settlement.DailyCalculator{
		Schedule:     schedule,
		Institutions: dir,
		Distances:    matrix,
	}, nil
}

// loadSchedule returns the stored fee schedule, or the defaults when none
// has been configured yet.
func (h *Handler) loadSchedule(r *http.Request) (*settlement.FeeSchedule, error) {
	cfg, err := h.Store.LoadFeeSchedule(r.Context())
	if err != nil {
		return nil, err
	}
	if cfg == "" {
		return settlement.DefaultFeeSchedule(), nil
	}
	return h.Factory.ParseSchedule(cfg)
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// GetDistances returns the stored matrix entries.
func (h *Handler) GetDistances(w http.ResponseWriter, r *http.Request) {
	matrix, err := h.Store.LoadDistanceMatrix(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load distances", err)
		return
	}
	writeJSON(w, http.StatusOK, matrix.Pairs())
}

// ReplaceDistances replaces the matrix wholesale.
func (h *Handler) ReplaceDistances(w http.ResponseWriter, r *http.Request) {
	var req ReplaceDistancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	entries := make([]settlement.DistanceEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = settlement.DistanceEntry{
			CityA: settlement.City(e.CityA),
			CityB: settlement.City(e.CityB),
			Km:    e.Km,
		}
	}
	if err := h.Store.ReplaceDistances(r.Context(), entries); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to replace distances", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"entries": len(entries)})
}

// GetFeeSchedule returns the active rate configuration.
func (h *Handler) GetFeeSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.loadSchedule(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load fee schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.ToJSON(schedule))
}

// PutFeeSchedule validates and stores a new rate configuration.
func (h *Handler) PutFeeSchedule(w http.ResponseWriter, r *http.Request) {
	var sj factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Validate before persisting; a broken schedule must never go live.
	if _, err := h.Factory.FromJSON(sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fee schedule", err)
		return
	}

	raw, err := json.Marshal(sj)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize schedule", err)
		return
	}
	if err := h.Store.SaveFeeSchedule(r.Context(), string(raw)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save fee schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, sj)
}

// =============================================================================
// RESPONSE HELPERS
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
