/*
monthly.go - Monthly settlement aggregation

PURPOSE:
  Sums one instructor's daily settlements for one month, applies the
  equipment-transport monthly cap, withholds tax, and produces the net
  payable amount for the statement.

INPUT CONTRACT (fail-fast):
  The input set must be non-empty, single-instructor, single-month. A
  violation is a caller bug - the caller must group before invoking - and
  is rejected with a descriptive error rather than silently producing a
  meaningless statement.

EQUIPMENT CAP:
  The summed equipment stipend is clamped to the monthly ceiling. When
  clamping occurs the statement records both the fact and the clamped-off
  amount, so the instructor can see what the cap removed.

TAX:
  Withheld = floor(gross x 3.3%), the combined income (3%) + local income
  (0.3%) rate applied once at the monthly level. The statement also carries
  the sub-split; the local figure is derived as withheld minus the floored
  income figure so the two presentations always sum to the same won.

SEE ALSO:
  - daily.go: Produces the inputs
  - fees.go: Cap amount and tax rate constants
*/
package settlement

import "fmt"

// =============================================================================
// MONTHLY SETTLEMENT
// =============================================================================

// TaxDetail is the withholding breakdown for one monthly statement.
type TaxDetail struct {
	// IncomeTax is floor(gross x 3%).
	IncomeTax Money `json:"income_tax"`

	// LocalTax is Withheld - IncomeTax, so the split always sums exactly
	// to the combined figure.
	LocalTax Money `json:"local_tax"`

	// Withheld is floor(gross x 3.3%), the amount actually deducted.
	Withheld Money `json:"withheld"`
}

// MonthlySettlement is the derived statement for one (instructor, month).
type MonthlySettlement struct {
	InstructorID InstructorID `json:"instructor_id"`
	Month        Month        `json:"month"`
	DayCount     int          `json:"day_count"`

	// Category totals across all days.
	TeachingBase       Money `json:"teaching_base"`
	RemoteAllowance    Money `json:"remote_allowance"`
	SpecialEdAllowance Money `json:"special_ed_allowance"`
	WeekendAllowance   Money `json:"weekend_allowance"`
	UnderstaffedTotal  Money `json:"understaffed_allowance"`
	TravelAllowance    Money `json:"travel_allowance"`
	EventPay           Money `json:"event_pay"`

	// Equipment transport before and after the monthly cap.
	EquipmentRaw     Money `json:"equipment_raw"`
	Equipment        Money `json:"equipment"`
	CapApplied       bool  `json:"cap_applied"`
	CapReducedAmount Money `json:"cap_reduced_amount"`

	CancelledPreview Money `json:"cancelled_preview"`

	Gross Money     `json:"gross"`
	Tax   TaxDetail `json:"tax"`
	Net   Money     `json:"net"`

	// Dailies are the per-day results the statement drills into.
	Dailies []DailySettlement `json:"dailies"`
}

// =============================================================================
// MONTHLY AGGREGATOR
// =============================================================================

// MonthlyAggregator folds daily settlements into a monthly statement.
type MonthlyAggregator struct {
	Schedule *FeeSchedule
}

// ComputeMonthly aggregates a non-empty, same-instructor, same-month set of
// daily settlements.
func (m *MonthlyAggregator) ComputeMonthly(dailies []DailySettlement) (*MonthlySettlement, error) {
	if len(dailies) == 0 {
		return nil, &InputError{Op: "ComputeMonthly", Detail: "empty input", Err: ErrNoSettlements}
	}

	instructor := dailies[0].InstructorID
	month := dailies[0].Date.Month()
	for _, d := range dailies {
		if d.InstructorID != instructor {
			return nil, &InputError{
				Op:     "ComputeMonthly",
				Detail: fmt.Sprintf("found instructors %s and %s", instructor, d.InstructorID),
				Err:    ErrMixedInstructors,
			}
		}
		if d.Date.Month() != month {
			return nil, &InputError{
				Op:     "ComputeMonthly",
				Detail: fmt.Sprintf("found months %s and %s", month, d.Date.Month()),
				Err:    ErrMixedMonths,
			}
		}
	}

	s := &MonthlySettlement{
		InstructorID: instructor,
		Month:        month,
		DayCount:     len(dailies),
		Dailies:      dailies,
	}
	zero := Won(0)
	s.TeachingBase, s.RemoteAllowance, s.SpecialEdAllowance = zero, zero, zero
	s.WeekendAllowance, s.UnderstaffedTotal, s.TravelAllowance = zero, zero, zero
	s.EventPay, s.EquipmentRaw, s.CancelledPreview = zero, zero, zero

	for _, d := range dailies {
		s.TeachingBase = s.TeachingBase.Add(d.TeachingBase)
		s.RemoteAllowance = s.RemoteAllowance.Add(d.RemoteAllowance)
		s.SpecialEdAllowance = s.SpecialEdAllowance.Add(d.SpecialEdAllowance)
		s.WeekendAllowance = s.WeekendAllowance.Add(d.WeekendAllowance)
		s.UnderstaffedTotal = s.UnderstaffedTotal.Add(d.UnderstaffedTotal)
		s.TravelAllowance = s.TravelAllowance.Add(d.TravelAllowance)
		s.EventPay = s.EventPay.Add(d.EventPay)
		s.EquipmentRaw = s.EquipmentRaw.Add(d.EquipmentAllowance)
		s.CancelledPreview = s.CancelledPreview.Add(d.CancelledPreview)
	}

	// Equipment monthly cap: clamp and record what the cap removed.
	ceiling := m.Schedule.EquipmentMonthlyCap
	if s.EquipmentRaw.GreaterThan(ceiling) {
		s.Equipment = ceiling
		s.CapApplied = true
		s.CapReducedAmount = s.EquipmentRaw.Sub(ceiling)
	} else {
		s.Equipment = s.EquipmentRaw
		s.CapReducedAmount = zero
	}

	s.Gross = s.TeachingBase.
		Add(s.RemoteAllowance).
		Add(s.SpecialEdAllowance).
		Add(s.WeekendAllowance).
		Add(s.UnderstaffedTotal).
		Add(s.TravelAllowance).
		Add(s.Equipment).
		Add(s.EventPay)

	s.Tax = withholding(s.Gross)
	s.Net = s.Gross.Sub(s.Tax.Withheld)

	return s, nil
}

// withholding applies the combined 3.3% rate, then derives the 3%/0.3%
// split such that the parts always sum to the combined figure.
func withholding(gross Money) TaxDetail {
	withheld := gross.MulRate(TaxRateCombined)
	income := gross.MulRate(TaxRateIncome)
	return TaxDetail{
		IncomeTax: income,
		LocalTax:  withheld.Sub(income),
		Withheld:  withheld,
	}
}
