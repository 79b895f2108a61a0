/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Reference-data types
  get DTOs so the API contract can evolve independently of the domain
  structs. Settlement results are serialized directly - the engine's
  DailySettlement/MonthlySettlement are designed as JSON-safe value
  objects and the breakdown IS the contract.

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  the validator before touching the store.

SEE ALSO:
  - handlers.go: Uses these types
  - settlement/daily.go, settlement/monthly.go: Serialized directly
*/
package api

import (
	"github.com/edudispatch/settlement-engine/settlement"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// InstructorDTO represents an instructor in API responses.
type InstructorDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HomeCity string `json:"home_city"`
}

// CreateInstructorRequest is the request to register an instructor.
type CreateInstructorRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	HomeCity string `json:"home_city" validate:"required"`
}

// InstitutionDTO represents an institution in API responses.
type InstitutionDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	City      string `json:"city"`
	Level     string `json:"level"`
	IsRemote  bool   `json:"is_remote"`
	IsSpecial bool   `json:"is_special"`
}

// CreateInstitutionRequest is the request to register an institution.
type CreateInstitutionRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	City      string `json:"city" validate:"required"`
	Level     string `json:"level" validate:"required,oneof=ELEMENTARY MIDDLE HIGH"`
	IsRemote  bool   `json:"is_remote"`
	IsSpecial bool   `json:"is_special"`
}

// CreateActivityRequest records one activity. Kind selects which of the
// class/event field groups is read.
type CreateActivityRequest struct {
	ID           string `json:"id"`
	InstructorID string `json:"instructor_id" validate:"required"`
	Date         string `json:"date" validate:"required"`
	Kind         string `json:"kind" validate:"required,oneof=class event"`

	// Class fields.
	Status             string `json:"status"`
	Role               string `json:"role"`
	InstitutionID      string `json:"institution_id"`
	Sessions           int    `json:"sessions"`
	Students           int    `json:"students"`
	HasAssistant       bool   `json:"has_assistant"`
	EquipmentTransport bool   `json:"equipment_transport"`

	// Event fields.
	Hours int `json:"hours"`
}

// ActivityDTO represents an activity in API responses.
type ActivityDTO struct {
	ID                 string `json:"id"`
	InstructorID       string `json:"instructor_id"`
	Date               string `json:"date"`
	Kind               string `json:"kind"`
	Status             string `json:"status"`
	Role               string `json:"role,omitempty"`
	InstitutionID      string `json:"institution_id,omitempty"`
	Sessions           int    `json:"sessions,omitempty"`
	Students           int    `json:"students,omitempty"`
	HasAssistant       bool   `json:"has_assistant,omitempty"`
	Hours              int    `json:"hours,omitempty"`
	EquipmentTransport bool   `json:"equipment_transport"`
}

// ReplaceDistancesRequest replaces the whole distance matrix.
type ReplaceDistancesRequest struct {
	Entries []DistanceEntryDTO `json:"entries" validate:"required,dive"`
}

// DistanceEntryDTO is one undirected matrix entry; the store writes both
// directions.
type DistanceEntryDTO struct {
	CityA string  `json:"city_a" validate:"required"`
	CityB string  `json:"city_b" validate:"required"`
	Km    float64 `json:"km" validate:"gte=0"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
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

func toInstructorDTO(in settlement.Instructor) InstructorDTO {
	return InstructorDTO{ID: string(in.ID), Name: in.Name, HomeCity: string(in.HomeCity)}
}

func toInstitutionDTO(in settlement.Institution) InstitutionDTO {
	return InstitutionDTO{
		ID: string(in.ID), Name: in.Name, City: string(in.City),
		Level: string(in.Level), IsRemote: in.IsRemote, IsSpecial: in.IsSpecial,
	}
}

func toActivityDTO(a settlement.Activity) ActivityDTO {
	dto := ActivityDTO{
		ID:           string(a.ID),
		InstructorID: string(a.InstructorID),
		Date:         a.Date.String(),
		Kind:         string(a.Kind),
	}
	switch a.Kind {
	case settlement.KindClass:
		dto.Status = string(a.Class.Status)
		dto.Role = string(a.Class.Role)
		dto.InstitutionID = string(a.Class.InstitutionID)
		dto.Sessions = a.Class.Sessions
		dto.Students = a.Class.Students
		dto.HasAssistant = a.Class.HasAssistant
		dto.EquipmentTransport = a.Class.EquipmentTransport
	case settlement.KindEvent:
		dto.Status = string(a.Event.Status)
		dto.Hours = a.Event.Hours
		dto.EquipmentTransport = a.Event.EquipmentTransport
	}
	return dto
}
