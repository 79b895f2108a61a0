/*
fees.go - Declarative fee schedule

PURPOSE:
  Holds every rate the engine applies as DATA: the (role, level) base-fee
  table, the four allowance rates, the travel-distance bracket list, the
  event hourly rate, the equipment-transport stipend and its monthly cap,
  and the withholding tax rates. Adding a level or a bracket is a data
  change, not a logic change.

TRAVEL BRACKETS:
  A flat-step function of total daily kilometers, closed below and open
  above: [50,70) pays tier 1, [70,90) tier 2, and so on. Below the first
  threshold pays nothing; this is a commute-minimum reimbursement policy,
  not a per-kilometer rate.

TAX RATES:
  The statutory 3% income + 0.3% local income withholding is applied as a
  combined 3.3% at the monthly level. All three constants live HERE and
  only here; the statement detail view re-uses the same split rather than
  re-deriving it, so the two figures cannot drift.

SEE ALSO:
  - factory/schedule.go: JSON -> FeeSchedule with validation
  - allowance.go: Reads the allowance rates
  - monthly.go: Reads cap and tax rates
*/
package settlement

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TAX RATES - Single source of truth
// =============================================================================

var (
	// TaxRateIncome is the statutory income withholding rate (3%).
	TaxRateIncome = decimal.RequireFromString("0.03")

	// TaxRateLocal is the local income surtax rate (0.3%).
	TaxRateLocal = decimal.RequireFromString("0.003")

	// TaxRateCombined is the rate the monthly aggregator applies (3.3%).
	TaxRateCombined = TaxRateIncome.Add(TaxRateLocal)
)

// =============================================================================
// FEE SCHEDULE
// =============================================================================

// FeeKey addresses one cell of the base-fee table.
type FeeKey struct {
	Role  Role
	Level Level
}

// TravelBracket is one step of the travel-allowance function. A day whose
// total route distance is >= MinKm (and below the next bracket's MinKm)
// pays the flat Amount.
type TravelBracket struct {
	MinKm  float64
	Amount Money
}

// FeeSchedule is the complete rate configuration for the program.
type FeeSchedule struct {
	// BaseFees maps (role, level) to the per-session teaching fee.
	BaseFees map[FeeKey]Money

	// Per-session allowance rates.
	RemoteAllowance      Money
	SpecialEdAllowance   Money
	WeekendAllowance     Money
	UnderstaffedAllowance Money

	// UnderstaffedThreshold is the minimum student count for the
	// understaffed-class allowance.
	UnderstaffedThreshold int

	// TravelBrackets, ascending by MinKm. Distances below the first
	// bracket's MinKm pay nothing.
	TravelBrackets []TravelBracket

	// EventHourlyRate is the flat per-hour rate for event activities.
	EventHourlyRate Money

	// EquipmentTransportPerDay is the flat once-per-day stipend when any
	// activity that day flags equipment transport.
	EquipmentTransportPerDay Money

	// EquipmentMonthlyCap ceilings the summed equipment stipend per month.
	EquipmentMonthlyCap Money
}

// BaseFee looks up the per-session fee for a role at a level.
func (s *FeeSchedule) BaseFee(role Role, level Level) (Money, bool) {
	fee, ok := s.BaseFees[FeeKey{Role: role, Level: level}]
	return fee, ok
}

// TravelAllowance maps a total daily route distance to its flat bracket
// amount. Brackets are closed below, open above.
func (s *FeeSchedule) TravelAllowance(totalKm float64) Money {
	amount := Won(0)
	for _, b := range s.TravelBrackets {
		if totalKm >= b.MinKm {
			amount = b.Amount
		} else {
			break
		}
	}
	return amount
}

// =============================================================================
// VALIDATION
// =============================================================================

var allRoles = []Role{RoleMain, RoleAssistant}
var allLevels = []Level{LevelElementary, LevelMiddle, LevelHigh}

// Validate checks the schedule's structural invariants: every (role, level)
// cell present, MAIN above ASSISTANT at each level, fees rising with level
// within each role, and brackets strictly ascending.
func (s *FeeSchedule) Validate() error {
	for _, role := range allRoles {
		for _, level := range allLevels {
			if _, ok := s.BaseFee(role, level); !ok {
				return &ScheduleError{
					Field:  "base_fees",
					Detail: fmt.Sprintf("missing cell (%s, %s)", role, level),
				}
			}
		}
	}

	for _, level := range allLevels {
		main, _ := s.BaseFee(RoleMain, level)
		assistant, _ := s.BaseFee(RoleAssistant, level)
		if !main.GreaterThan(assistant) {
			return &ScheduleError{
				Field:  "base_fees",
				Detail: fmt.Sprintf("MAIN fee must exceed ASSISTANT fee at %s", level),
			}
		}
	}

	for _, role := range allRoles {
		elem, _ := s.BaseFee(role, LevelElementary)
		mid, _ := s.BaseFee(role, LevelMiddle)
		high, _ := s.BaseFee(role, LevelHigh)
		if !mid.GreaterThan(elem) || !high.GreaterThan(mid) {
			return &ScheduleError{
				Field:  "base_fees",
				Detail: fmt.Sprintf("%s fees must rise ELEMENTARY < MIDDLE < HIGH", role),
			}
		}
	}

	if !sort.SliceIsSorted(s.TravelBrackets, func(i, j int) bool {
		return s.TravelBrackets[i].MinKm < s.TravelBrackets[j].MinKm
	}) {
		return &ScheduleError{Field: "travel_brackets", Detail: "brackets must ascend by min_km"}
	}
	for i := 1; i < len(s.TravelBrackets); i++ {
		if s.TravelBrackets[i].MinKm == s.TravelBrackets[i-1].MinKm {
			return &ScheduleError{Field: "travel_brackets", Detail: "duplicate min_km"}
		}
	}

	if s.UnderstaffedThreshold <= 0 {
		return &ScheduleError{Field: "understaffed_threshold", Detail: "must be positive"}
	}

	return nil
}

// =============================================================================
// DEFAULT SCHEDULE - The program's current rates (KRW)
// =============================================================================

// DefaultFeeSchedule returns the rates currently in force for the program.
func DefaultFeeSchedule() *FeeSchedule {
	return &FeeSchedule{
		BaseFees: map[FeeKey]Money{
			{RoleMain, LevelElementary}:      Won(40000),
			{RoleMain, LevelMiddle}:          Won(45000),
			{RoleMain, LevelHigh}:            Won(50000),
			{RoleAssistant, LevelElementary}: Won(30000),
			{RoleAssistant, LevelMiddle}:     Won(33000),
			{RoleAssistant, LevelHigh}:       Won(36000),
		},
		RemoteAllowance:       Won(10000),
		SpecialEdAllowance:    Won(10000),
		WeekendAllowance:      Won(10000),
		UnderstaffedAllowance: Won(5000),
		UnderstaffedThreshold: 15,
		TravelBrackets: []TravelBracket{
			{MinKm: 50, Amount: Won(10000)},
			{MinKm: 70, Amount: Won(15000)},
			{MinKm: 90, Amount: Won(20000)},
			{MinKm: 110, Amount: Won(25000)},
			{MinKm: 130, Amount: Won(30000)},
		},
		EventHourlyRate:          Won(20000),
		EquipmentTransportPerDay: Won(30000),
		EquipmentMonthlyCap:      Won(300000),
	}
}
