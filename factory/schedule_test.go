package factory_test

import (
	"errors"
	"testing"

	"github.com/edudispatch/settlement-engine/factory"
	"github.com/edudispatch/settlement-engine/settlement"
)

const validScheduleJSON = `{
	"base_fees": [
		{"role": "MAIN", "level": "ELEMENTARY", "amount": 40000},
		{"role": "MAIN", "level": "MIDDLE", "amount": 45000},
		{"role": "MAIN", "level": "HIGH", "amount": 50000},
		{"role": "ASSISTANT", "level": "ELEMENTARY", "amount": 30000},
		{"role": "ASSISTANT", "level": "MIDDLE", "amount": 33000},
		{"role": "ASSISTANT", "level": "HIGH", "amount": 36000}
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
		{"min_km": 70, "amount": 15000},
		{"min_km": 90, "amount": 20000},
		{"min_km": 110, "amount": 25000},
		{"min_km": 130, "amount": 30000}
	],
	"event_hourly_rate": 20000,
	"equipment": {"per_day": 30000, "monthly_cap": 300000}
}`

func TestParseSchedule_Valid(t *testing.T) {
	// GIVEN: A complete, well-formed schedule definition
	// WHEN: Parsing
	// THEN: Every rate lands where the engine reads it

	f := factory.NewScheduleFactory()
	schedule, err := f.ParseSchedule(validScheduleJSON)
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}

	fee, ok := schedule.BaseFee(settlement.RoleMain, settlement.LevelHigh)
	if !ok || fee.Int64() != 50000 {
		t.Errorf("MAIN/HIGH fee = %v (ok=%v), want 50000", fee, ok)
	}
	if schedule.UnderstaffedThreshold != 15 {
		t.Errorf("threshold = %d, want 15", schedule.UnderstaffedThreshold)
	}
	if got := schedule.TravelAllowance(75); got.Int64() != 15000 {
		t.Errorf("TravelAllowance(75) = %d, want 15000", got.Int64())
	}
	if schedule.EquipmentMonthlyCap.Int64() != 300000 {
		t.Errorf("equipment cap = %d, want 300000", schedule.EquipmentMonthlyCap.Int64())
	}
}

func TestParseSchedule_RejectsMissingCell(t *testing.T) {
	// GIVEN: A schedule with only five of the six fee cells
	f := factory.NewScheduleFactory()
	incomplete := `{
		"base_fees": [
			{"role": "MAIN", "level": "ELEMENTARY", "amount": 40000},
			{"role": "MAIN", "level": "MIDDLE", "amount": 45000},
			{"role": "MAIN", "level": "HIGH", "amount": 50000},
			{"role": "ASSISTANT", "level": "ELEMENTARY", "amount": 30000},
			{"role": "ASSISTANT", "level": "MIDDLE", "amount": 33000}
		],
		"allowances": {"remote": 10000, "special_ed": 10000, "weekend": 10000, "understaffed": 5000, "understaffed_threshold": 15},
		"travel_brackets": [{"min_km": 50, "amount": 10000}],
		"event_hourly_rate": 20000,
		"equipment": {"per_day": 30000, "monthly_cap": 300000}
	}`

	_, err := f.ParseSchedule(incomplete)
	if !errors.Is(err, settlement.ErrInvalidSchedule) {
		t.Fatalf("err = %v, want ErrInvalidSchedule", err)
	}
}

func TestParseSchedule_RejectsUnknownRole(t *testing.T) {
	f := factory.NewScheduleFactory()
	_, err := f.ParseSchedule(`{
		"base_fees": [{"role": "LEAD", "level": "ELEMENTARY", "amount": 40000}]
	}`)
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseSchedule_RejectsUnsortedBrackets(t *testing.T) {
	f := factory.NewScheduleFactory()
	swapped := `{
		"base_fees": [
			{"role": "MAIN", "level": "ELEMENTARY", "amount": 40000},
			{"role": "MAIN", "level": "MIDDLE", "amount": 45000},
			{"role": "MAIN", "level": "HIGH", "amount": 50000},
			{"role": "ASSISTANT", "level": "ELEMENTARY", "amount": 30000},
			{"role": "ASSISTANT", "level": "MIDDLE", "amount": 33000},
			{"role": "ASSISTANT", "level": "HIGH", "amount": 36000}
		],
		"allowances": {"remote": 10000, "special_ed": 10000, "weekend": 10000, "understaffed": 5000, "understaffed_threshold": 15},
		"travel_brackets": [
			{"min_km": 90, "amount": 20000},
			{"min_km": 50, "amount": 10000}
		],
		"event_hourly_rate": 20000,
		"equipment": {"per_day": 30000, "monthly_cap": 300000}
	}`

	_, err := f.ParseSchedule(swapped)
	if !errors.Is(err, settlement.ErrInvalidSchedule) {
		t.Fatalf("err = %v, want ErrInvalidSchedule", err)
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	// GIVEN: The default schedule
	// WHEN: Converting to JSON and back
	// THEN: The rebuilt schedule agrees on every rate the engine reads

	f := factory.NewScheduleFactory()
	original := settlement.DefaultFeeSchedule()

	rebuilt, err := f.FromJSON(f.ToJSON(original))
	if err != nil {
		t.Fatalf("round trip failed validation: %v", err)
	}

	for _, role := range []settlement.Role{settlement.RoleMain, settlement.RoleAssistant} {
		for _, level := range []settlement.Level{settlement.LevelElementary, settlement.LevelMiddle, settlement.LevelHigh} {
			want, _ := original.BaseFee(role, level)
			got, ok := rebuilt.BaseFee(role, level)
			if !ok || !got.Equal(want) {
				t.Errorf("fee (%s,%s) = %v, want %v", role, level, got, want)
			}
		}
	}
	for _, km := range []float64{0, 50, 75, 130, 200} {
		if !rebuilt.TravelAllowance(km).Equal(original.TravelAllowance(km)) {
			t.Errorf("TravelAllowance(%v) diverged after round trip", km)
		}
	}
	if !rebuilt.EquipmentMonthlyCap.Equal(original.EquipmentMonthlyCap) {
		t.Error("equipment cap diverged after round trip")
	}
}
