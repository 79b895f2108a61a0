/*
Package factory provides JSON to Go fee-schedule conversion.

PURPOSE:
  Converts JSON fee-schedule definitions into settlement.FeeSchedule
  values. Rates, brackets, and caps are configuration, not code - program
  administrators adjust them in JSON, and the factory builds and validates
  the proper Go structs.

JSON SCHEMA:
  {
    "base_fees": [
      {"role": "MAIN", "level": "ELEMENTARY", "amount": 40000},
      ...all six (role, level) cells...
    ],
    "allowances": {
      "remote": 10000,
      "special_ed": 10000,
      "weekend": 10000,
      "understaffed": 5000,
      "understaffed_threshold": 15
    },
    "travel_brackets": [
      {"min_km": 50, "amount": 10000},
      {"min_km": 70, "amount": 15000}
    ],
    "event_hourly_rate": 20000,
    "equipment": {"per_day": 30000, "monthly_cap": 300000}
  }

VALIDATION:
  The factory rejects schedules that violate the structural invariants:
  missing fee cells, MAIN not above ASSISTANT, fees not rising with level,
  brackets out of order.

SEE ALSO:
  - settlement/fees.go: FeeSchedule type and Validate
  - api/handlers.go: PUT /api/fee-schedule uses this factory
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/edudispatch/settlement-engine/settlement"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a fee schedule.
type ScheduleJSON struct {
	BaseFees       []BaseFeeJSON  `json:"base_fees"`
	Allowances     AllowancesJSON `json:"allowances"`
	TravelBrackets []BracketJSON  `json:"travel_brackets"`
	EventHourly    int64          `json:"event_hourly_rate"`
	Equipment      EquipmentJSON  `json:"equipment"`
}

// BaseFeeJSON is one cell of the (role, level) base-fee table.
type BaseFeeJSON struct {
	Role   string `json:"role"`
	Level  string `json:"level"`
	Amount int64  `json:"amount"`
}

// AllowancesJSON carries the four per-session allowance rates.
type AllowancesJSON struct {
	Remote                int64 `json:"remote"`
	SpecialEd             int64 `json:"special_ed"`
	Weekend               int64 `json:"weekend"`
	Understaffed          int64 `json:"understaffed"`
	UnderstaffedThreshold int   `json:"understaffed_threshold"`
}

// BracketJSON is one travel-allowance step.
type BracketJSON struct {
	MinKm  float64 `json:"min_km"`
	Amount int64   `json:"amount"`
}

// EquipmentJSON carries the equipment-transport stipend and its cap.
type EquipmentJSON struct {
	PerDay     int64 `json:"per_day"`
	MonthlyCap int64 `json:"monthly_cap"`
}

// =============================================================================
// FEE SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts JSON fee schedules to validated Go structs.
type ScheduleFactory struct{}

func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// ParseSchedule parses a JSON string into a validated FeeSchedule.
func (f *ScheduleFactory) ParseSchedule(jsonStr string) (*settlement.FeeSchedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse fee schedule JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts ScheduleJSON to a validated FeeSchedule.
func (f *ScheduleFactory) FromJSON(sj ScheduleJSON) (*settlement.FeeSchedule, error) {
	schedule := &settlement.FeeSchedule{
		BaseFees:                 make(map[settlement.FeeKey]settlement.Money, len(sj.BaseFees)),
		RemoteAllowance:          settlement.Won(sj.Allowances.Remote),
		SpecialEdAllowance:       settlement.Won(sj.Allowances.SpecialEd),
		WeekendAllowance:         settlement.Won(sj.Allowances.Weekend),
		UnderstaffedAllowance:    settlement.Won(sj.Allowances.Understaffed),
		UnderstaffedThreshold:    sj.Allowances.UnderstaffedThreshold,
		EventHourlyRate:          settlement.Won(sj.EventHourly),
		EquipmentTransportPerDay: settlement.Won(sj.Equipment.PerDay),
		EquipmentMonthlyCap:      settlement.Won(sj.Equipment.MonthlyCap),
	}

	for _, cell := range sj.BaseFees {
		role, err := parseRole(cell.Role)
		if err != nil {
			return nil, err
		}
		level, err := parseLevel(cell.Level)
		if err != nil {
			return nil, err
		}
		schedule.BaseFees[settlement.FeeKey{Role: role, Level: level}] = settlement.Won(cell.Amount)
	}

	for _, b := range sj.TravelBrackets {
		schedule.TravelBrackets = append(schedule.TravelBrackets, settlement.TravelBracket{
			MinKm:  b.MinKm,
			Amount: settlement.Won(b.Amount),
		})
	}

	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return schedule, nil
}

// ToJSON converts a FeeSchedule back to its JSON representation, for the
// admin API's GET endpoint.
func (f *ScheduleFactory) ToJSON(s *settlement.FeeSchedule) ScheduleJSON {
	sj := ScheduleJSON{
		Allowances: AllowancesJSON{
			Remote:                s.RemoteAllowance.Int64(),
			SpecialEd:             s.SpecialEdAllowance.Int64(),
			Weekend:               s.WeekendAllowance.Int64(),
			Understaffed:          s.UnderstaffedAllowance.Int64(),
			UnderstaffedThreshold: s.UnderstaffedThreshold,
		},
		EventHourly: s.EventHourlyRate.Int64(),
		Equipment: EquipmentJSON{
			PerDay:     s.EquipmentTransportPerDay.Int64(),
			MonthlyCap: s.EquipmentMonthlyCap.Int64(),
		},
	}
	for _, role := range []settlement.Role{settlement.RoleMain, settlement.RoleAssistant} {
		for _, level := range []settlement.Level{settlement.LevelElementary, settlement.LevelMiddle, settlement.LevelHigh} {
			if fee, ok := s.BaseFee(role, level); ok {
				sj.BaseFees = append(sj.BaseFees, BaseFeeJSON{
					Role: string(role), Level: string(level), Amount: fee.Int64(),
				})
			}
		}
	}
	for _, b := range s.TravelBrackets {
		sj.TravelBrackets = append(sj.TravelBrackets, BracketJSON{MinKm: b.MinKm, Amount: b.Amount.Int64()})
	}
	return sj
}

func parseRole(s string) (settlement.Role, error) {
	switch settlement.Role(s) {
	case settlement.RoleMain, settlement.RoleAssistant:
		return settlement.Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func parseLevel(s string) (settlement.Level, error) {
	switch settlement.Level(s) {
	case settlement.LevelElementary, settlement.LevelMiddle, settlement.LevelHigh:
		return settlement.Level(s), nil
	}
	return "", fmt.Errorf("unknown level %q", s)
}
