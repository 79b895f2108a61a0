/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates instructors,
	institutions, distance entries, and a month of activities that
	exercise specific settlement rules.

AVAILABLE SCENARIOS:

	basic-month:   One instructor, mixed weekday/weekend classes across
	               three institutions, one event, one cancelled class
	equipment-cap: Enough equipment-transport days in one month to trip
	               the monthly cap

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create instructors and institutions
 3. Load the distance matrix
 4. Record a month of activities

NOTE:

	Scenarios reset the database. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: Settlement endpoints that read this data
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/edudispatch/settlement-engine/settlement"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "basic-month",
		Name:        "Basic Month",
		Description: "One instructor, three institutions, weekend and cancelled classes, one event",
	},
	{
		ID:          "equipment-cap",
		Name:        "Equipment Cap",
		Description: "Eleven equipment-transport days in one month, tripping the monthly cap",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "basic-month":
		err = loadBasicMonth(ctx, h)
	case "equipment-cap":
		err = loadEquipmentCap(ctx, h)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SHARED REFERENCE DATA
// =============================================================================

func seedReferenceData(ctx context.Context, h *Handler) error {
	instructors := []settlement.Instructor{
		{ID: "inst-kim", Name: "김지은", HomeCity: "Suwon"},
		{ID: "inst-lee", Name: "이민호", HomeCity: "Seoul"},
	}
	for _, in := range instructors {
		if err := h.Store.CreateInstructor(ctx, in); err != nil {
			return err
		}
	}

	institutions := []settlement.Institution{
		{ID: "sch-suwon-elem", Name: "수원중앙초등학교", City: "Suwon", Level: settlement.LevelElementary},
		{ID: "sch-hwaseong-mid", Name: "화성송산중학교", City: "Hwaseong", Level: settlement.LevelMiddle, IsSpecial: true},
		{ID: "sch-yeoju-high", Name: "여주가남고등학교", City: "Yeoju", Level: settlement.LevelHigh, IsRemote: true},
		{ID: "sch-seoul-elem", Name: "서울난곡초등학교", City: "Seoul", Level: settlement.LevelElementary},
	}
	for _, in := range institutions {
		if err := h.Store.CreateInstitution(ctx, in); err != nil {
			return err
		}
	}

	distances := []settlement.DistanceEntry{
		{CityA: "Suwon", CityB: "Seoul", Km: 34},
		{CityA: "Suwon", CityB: "Hwaseong", Km: 22},
		{CityA: "Suwon", CityB: "Yeoju", Km: 58},
		{CityA: "Seoul", CityB: "Hwaseong", Km: 48},
		{CityA: "Seoul", CityB: "Yeoju", Km: 75},
		{CityA: "Hwaseong", CityB: "Yeoju", Km: 70},
	}
	return h.Store.ReplaceDistances(ctx, distances)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadBasicMonth records a representative month for 김지은: weekday classes
// in her home city, a special-education class in Hwaseong, a remote-site
// high school in Yeoju, a Saturday class, one cancelled class, one event.
func loadBasicMonth(ctx context.Context, h *Handler) error {
	if err := seedReferenceData(ctx, h); err != nil {
		return err
	}

	instructor := settlement.InstructorID("inst-kim")
	date := func(day int) settlement.Date { return settlement.NewDate(2025, time.June, day) }

	activities := []settlement.Activity{
		// Monday June 2: two classes in the home city, no travel allowance.
		settlement.NewClassActivity("act-001", instructor, date(2), settlement.ClassDetail{
			Status: settlement.StatusCompleted, Role: settlement.RoleMain,
			InstitutionID: "sch-suwon-elem", Sessions: 2, Students: 22, HasAssistant: true,
		}),
		settlement.NewClassActivity("act-002", instructor, date(2), settlement.ClassDetail{
			Status: settlement.StatusCompleted, Role: settlement.RoleMain,
			InstitutionID: "sch-suwon-elem", Sessions: 2, Students: 18, HasAssistant: false,
		}),
		// Wednesday June 4: special-education site with equipment transport.
		settlement.NewClassActivity("act-003", instructor, date(4), settlement.ClassDetail{
			Status: settlement.StatusCompleted, Role: settlement.RoleMain,
			InstitutionID: "sch-hwaseong-mid", Sessions: 3, Students: 8, HasAssistant: true,
			EquipmentTransport: true,
		}),
		// Friday June 6: remote high school, 116 km round trip.
		settlement.NewClassActivity("act-004", instructor, date(6), settlement.ClassDetail{
			Status: settlement.StatusCompleted, Role: settlement.RoleMain,
			InstitutionID: "sch-yeoju-high", Sessions: 4, Students: 25, HasAssistant: false,
		}),
		// Saturday June 7: weekend allowance.
		settlement.NewClassActivity("act-005", instructor, date(7), settlement.ClassDetail{
			Status: settlement.StatusCompleted, Role: settlement.RoleAssistant,
			InstitutionID: "sch-seoul-elem", Sessions: 2, Students: 20, HasAssistant: false,
		}),
		// Tuesday June 10: cancelled, preview only.
		settlement.NewClassActivity("act-006", instructor, date(10), settlement.ClassDetail{
			Status: settlement.StatusCancelled, Role: settlement.RoleMain,
			InstitutionID: "sch-suwon-elem", Sessions: 2, Students: 20, HasAssistant: true,
		}),
		// Thursday June 12: program event.
		settlement.NewEventActivity("act-007", instructor, date(12), settlement.EventDetail{
			Status: settlement.StatusCompleted, Hours: 3,
		}),
	}

	for _, a := range activities {
		if err := h.Store.CreateActivity(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// loadEquipmentCap records eleven equipment-transport teaching days in one
// month: 11 x 30,000 = 330,000 raw, clamped to the 300,000 monthly cap.
func loadEquipmentCap(ctx context.Context, h *Handler) error {
	if err := seedReferenceData(ctx, h); err != nil {
		return err
	}

	instructor := settlement.InstructorID("inst-lee")
	for i := 0; i < 11; i++ {
		a := settlement.NewClassActivity(
			settlement.ActivityID(fmt.Sprintf("act-cap-%02d", i+1)),
			instructor,
			settlement.NewDate(2025, time.June, 2+i),
			settlement.ClassDetail{
				Status: settlement.StatusCompleted, Role: settlement.RoleMain,
				InstitutionID: "sch-seoul-elem", Sessions: 2, Students: 20, HasAssistant: true,
				EquipmentTransport: true,
			})
		if err := h.Store.CreateActivity(ctx, a); err != nil {
			return err
		}
	}
	return nil
}
