/*
daily.go - Daily settlement calculation

PURPOSE:
  Aggregates one instructor's one calendar day of activities into a gross
  payable amount plus a complete calculation breakdown. This is the central
  computation of the engine.

ALGORITHM:
  1. Partition activities: class vs event, then class into confirmed
     (any status except CANCELLED) vs cancelled.
  2. Build the day's route from confirmed class visits only and map the
     total distance to a travel-allowance bracket. Cancelled visits never
     happened; they contribute no distance.
  3. Per confirmed class: base fee x sessions, plus the four itemized
     allowances.
  4. Per cancelled class: the would-be base amount, exposed as a separate
     preview figure that is excluded from the gross total.
  5. Event pay: hours x flat rate for non-cancelled events.
  6. Equipment transport: one flat per-day amount if ANY non-cancelled
     activity flags it. Day-level, never summed per activity.
  7. Gross = teaching base + allowance categories + travel + equipment +
     event pay.

BREAKDOWN AS OUTPUT:
  The itemized breakdown is part of the result, not a debug option. Every
  figure in the settlement must be traceable to the rule that produced it,
  so the statement can explain itself without re-running the engine.

FAILURE MODEL:
  Missing reference data (institution row, distance pair) degrades softly:
  the affected contribution is zero, a Warning lands on the settlement,
  computation continues. Mixed-instructor or mixed-date input fails fast -
  that is a caller bug.

SEE ALSO:
  - route.go, allowance.go, fees.go: The rules applied here
  - monthly.go: Sums these results with cap and tax
*/
package settlement

import "fmt"

// =============================================================================
// INSTITUTION DIRECTORY - In-memory reference lookup
// =============================================================================

// InstitutionDirectory resolves institutions by id. Implementations must be
// in-memory snapshots: the engine performs no I/O, so callers load
// reference data once per computation batch (see directory.go and the
// sqlite store's LoadDirectory).
type InstitutionDirectory interface {
	Institution(id InstitutionID) (Institution, bool)
}

// =============================================================================
// DAILY SETTLEMENT - Derived, immutable once computed
// =============================================================================

// ClassLine itemizes one class activity's contribution.
type ClassLine struct {
	ActivityID      ActivityID      `json:"activity_id"`
	InstitutionID   InstitutionID   `json:"institution_id"`
	InstitutionName string          `json:"institution_name"`
	City            City            `json:"city"`
	Role            Role            `json:"role"`
	Level           Level           `json:"level"`
	Status          Status          `json:"status"`
	Sessions        int             `json:"sessions"`
	BaseFee         Money           `json:"base_fee"`
	BaseAmount      Money           `json:"base_amount"`
	Allowances      []AllowanceLine `json:"allowances,omitempty"`
	Cancelled       bool            `json:"cancelled"`
}

// EventLine itemizes one event activity's contribution.
type EventLine struct {
	ActivityID ActivityID `json:"activity_id"`
	Status     Status     `json:"status"`
	Hours      int        `json:"hours"`
	HourlyRate Money      `json:"hourly_rate"`
	Amount     Money      `json:"amount"`
	Cancelled  bool       `json:"cancelled"`
}

// TravelDetail explains the day's travel allowance.
type TravelDetail struct {
	Route     Route  `json:"route"`
	Allowance Money  `json:"allowance"`
	Reason    string `json:"reason"`
}

// EquipmentDetail explains the day's equipment-transport stipend.
type EquipmentDetail struct {
	Performed   bool         `json:"performed"`
	Amount      Money        `json:"amount"`
	Reason      string       `json:"reason"`
	ActivityIDs []ActivityID `json:"activity_ids,omitempty"`
}

// DailySettlement is the derived result for one (instructor, date). It is
// immutable once computed and re-derivable from the same activity set.
type DailySettlement struct {
	InstructorID InstructorID `json:"instructor_id"`
	Date         Date         `json:"date"`

	// Payable category totals.
	TeachingBase       Money `json:"teaching_base"`
	RemoteAllowance    Money `json:"remote_allowance"`
	SpecialEdAllowance Money `json:"special_ed_allowance"`
	WeekendAllowance   Money `json:"weekend_allowance"`
	UnderstaffedTotal  Money `json:"understaffed_allowance"`
	TravelAllowance    Money `json:"travel_allowance"`
	EquipmentAllowance Money `json:"equipment_allowance"`
	EventPay           Money `json:"event_pay"`
	Gross              Money `json:"gross"`

	// CancelledPreview is the base pay the cancelled classes would have
	// earned. Informational only; never part of Gross.
	CancelledPreview Money `json:"cancelled_preview"`

	// Full breakdown.
	ClassLines []ClassLine     `json:"class_lines"`
	EventLines []EventLine     `json:"event_lines"`
	Travel     TravelDetail    `json:"travel"`
	Equipment  EquipmentDetail `json:"equipment"`
	Warnings   []Warning       `json:"warnings,omitempty"`
}

// =============================================================================
// DAILY CALCULATOR
// =============================================================================

// DailyCalculator computes daily settlements against a fixed fee schedule,
// institution directory, and distance matrix. All three are read-only;
// the calculator is safe for concurrent use across instructors.
type DailyCalculator struct {
	Schedule     *FeeSchedule
	Institutions InstitutionDirectory
	Distances    *DistanceMatrix
}

// ComputeDaily settles one instructor's one calendar day. The activity
// slice may be empty (a zero settlement with a [home, home] route results)
// and must belong entirely to the given instructor and date.
func (c *DailyCalculator) ComputeDaily(instructor Instructor, date Date, activities []Activity) (*DailySettlement, error) {
	for _, a := range activities {
		if err := a.Validate(); err != nil {
			return nil, &InputError{Op: "ComputeDaily", Detail: err.Error(), Err: ErrInvalidActivity}
		}
		if a.InstructorID != instructor.ID {
			return nil, &InputError{
				Op:     "ComputeDaily",
				Detail: fmt.Sprintf("activity %s belongs to instructor %s, not %s", a.ID, a.InstructorID, instructor.ID),
				Err:    ErrMixedInstructors,
			}
		}
		if !a.Date.Equal(date) {
			return nil, &InputError{
				Op:     "ComputeDaily",
				Detail: fmt.Sprintf("activity %s is dated %s, not %s", a.ID, a.Date, date),
				Err:    ErrMixedDates,
			}
		}
	}

	s := &DailySettlement{InstructorID: instructor.ID, Date: date}
	zero := Won(0)
	s.TeachingBase, s.RemoteAllowance, s.SpecialEdAllowance = zero, zero, zero
	s.WeekendAllowance, s.UnderstaffedTotal, s.EventPay = zero, zero, zero
	s.CancelledPreview = zero

	// 1. Partition: confirmed classes keep input order (it is the visit order).
	var confirmed, cancelled, events []Activity
	for _, a := range activities {
		switch {
		case a.Kind == KindEvent:
			events = append(events, a)
		case a.Cancelled():
			cancelled = append(cancelled, a)
		default:
			confirmed = append(confirmed, a)
		}
	}

	// 2. Route and travel allowance from confirmed visits only.
	var visits []Visit
	for _, a := range confirmed {
		inst, ok := c.Institutions.Institution(a.Class.InstitutionID)
		if !ok {
			continue // warned below when the class line is skipped
		}
		visits = append(visits, Visit{InstitutionID: inst.ID, City: inst.City})
	}
	route := BuildRoute(instructor.HomeCity, visits, c.Distances, &s.Warnings)
	s.TravelAllowance = c.Schedule.TravelAllowance(route.TotalKm)
	s.Travel = TravelDetail{
		Route:     route,
		Allowance: s.TravelAllowance,
		Reason:    c.travelReason(route.TotalKm),
	}

	// 3. Confirmed classes: base fee + itemized allowances.
	for _, a := range confirmed {
		inst, ok := c.Institutions.Institution(a.Class.InstitutionID)
		if !ok {
			s.Warnings = append(s.Warnings, warnMissingInstitution(a.Class.InstitutionID, a.ID))
			continue
		}
		fee, _ := c.Schedule.BaseFee(a.Class.Role, inst.Level)
		baseAmount := fee.MulInt(a.Class.Sessions)
		s.TeachingBase = s.TeachingBase.Add(baseAmount)

		allowances := ClassAllowances(c.Schedule, *a.Class, inst, date)
		for _, line := range allowances {
			switch line.Category {
			case AllowanceRemote:
				s.RemoteAllowance = s.RemoteAllowance.Add(line.Amount)
			case AllowanceSpecialEd:
				s.SpecialEdAllowance = s.SpecialEdAllowance.Add(line.Amount)
			case AllowanceWeekend:
				s.WeekendAllowance = s.WeekendAllowance.Add(line.Amount)
			case AllowanceUnderstaffed:
				s.UnderstaffedTotal = s.UnderstaffedTotal.Add(line.Amount)
			}
		}

		s.ClassLines = append(s.ClassLines, ClassLine{
			ActivityID: a.ID, InstitutionID: inst.ID, InstitutionName: inst.Name,
			City: inst.City, Role: a.Class.Role, Level: inst.Level, Status: a.Class.Status,
			Sessions: a.Class.Sessions, BaseFee: fee, BaseAmount: baseAmount,
			Allowances: allowances,
		})
	}

	// 4. Cancelled classes: would-be base amount, preview only.
	for _, a := range cancelled {
		inst, ok := c.Institutions.Institution(a.Class.InstitutionID)
		if !ok {
			s.Warnings = append(s.Warnings, warnMissingInstitution(a.Class.InstitutionID, a.ID))
			continue
		}
		fee, _ := c.Schedule.BaseFee(a.Class.Role, inst.Level)
		wouldBe := fee.MulInt(a.Class.Sessions)
		s.CancelledPreview = s.CancelledPreview.Add(wouldBe)

		s.ClassLines = append(s.ClassLines, ClassLine{
			ActivityID: a.ID, InstitutionID: inst.ID, InstitutionName: inst.Name,
			City: inst.City, Role: a.Class.Role, Level: inst.Level, Status: a.Class.Status,
			Sessions: a.Class.Sessions, BaseFee: fee, BaseAmount: wouldBe,
			Cancelled: true,
		})
	}

	// 5. Events: flat hourly rate, non-cancelled only. No allowances stack.
	for _, a := range events {
		line := EventLine{
			ActivityID: a.ID, Status: a.Event.Status, Hours: a.Event.Hours,
			HourlyRate: c.Schedule.EventHourlyRate,
		}
		if a.Cancelled() {
			line.Cancelled = true
			line.Amount = Won(0)
		} else {
			line.Amount = c.Schedule.EventHourlyRate.MulInt(a.Event.Hours)
			s.EventPay = s.EventPay.Add(line.Amount)
		}
		s.EventLines = append(s.EventLines, line)
	}

	// 6. Equipment transport: once per day, from non-cancelled activities.
	var equipmentIDs []ActivityID
	for _, a := range activities {
		if !a.Cancelled() && a.EquipmentTransport() {
			equipmentIDs = append(equipmentIDs, a.ID)
		}
	}
	if len(equipmentIDs) > 0 {
		s.EquipmentAllowance = c.Schedule.EquipmentTransportPerDay
		s.Equipment = EquipmentDetail{
			Performed: true, Amount: s.EquipmentAllowance,
			Reason:      "교구 운반 수행 (1일 1회 정액)",
			ActivityIDs: equipmentIDs,
		}
	} else {
		s.EquipmentAllowance = Won(0)
		s.Equipment = EquipmentDetail{Performed: false, Amount: Won(0), Reason: "교구 운반 없음"}
	}

	// 7. Gross total.
	s.Gross = s.TeachingBase.
		Add(s.RemoteAllowance).
		Add(s.SpecialEdAllowance).
		Add(s.WeekendAllowance).
		Add(s.UnderstaffedTotal).
		Add(s.TravelAllowance).
		Add(s.EquipmentAllowance).
		Add(s.EventPay)

	return s, nil
}

// travelReason states which bracket a total distance landed in.
func (c *DailyCalculator) travelReason(totalKm float64) string {
	brackets := c.Schedule.TravelBrackets
	if len(brackets) == 0 || totalKm < brackets[0].MinKm {
		min := 0.0
		if len(brackets) > 0 {
			min = brackets[0].MinKm
		}
		return fmt.Sprintf("총 이동거리 %.1fkm (%.0fkm 미만, 출장비 없음)", totalKm, min)
	}
	for i := len(brackets) - 1; i >= 0; i-- {
		if totalKm >= brackets[i].MinKm {
			if i == len(brackets)-1 {
				return fmt.Sprintf("총 이동거리 %.1fkm (%.0fkm 이상 구간)", totalKm, brackets[i].MinKm)
			}
			return fmt.Sprintf("총 이동거리 %.1fkm (%.0f~%.0fkm 구간)", totalKm, brackets[i].MinKm, brackets[i+1].MinKm)
		}
	}
	return fmt.Sprintf("총 이동거리 %.1fkm", totalKm)
}
