/*
allowance.go - Conditional per-class allowances

PURPOSE:
  Evaluates the four conditional allowances for one confirmed class
  activity. Each allowance is independent and additive: a single class can
  earn all four. Rates are per session; every line is multiplied by the
  activity's session count.

THE FOUR ALLOWANCES:
  remote        institution is a remote/underserved site (도서벽지)
  special_ed    institution is a special-education site (특수학급)
  weekend       activity date is Saturday or Sunday (classes only; events
                have their own flat hourly rate and never stack this)
  understaffed  MAIN role, students >= threshold, no assistant present

AUDITABILITY:
  Every allowance - granted or denied - produces a line with a reason
  string stating WHY, in the program's statement language. The admin UI
  renders these verbatim as row tooltips.

SEE ALSO:
  - fees.go: The rates and the understaffed threshold
  - daily.go: Accumulates lines into category totals
*/
package settlement

import "fmt"

// =============================================================================
// ALLOWANCE LINES
// =============================================================================

// AllowanceCategory names one of the four conditional allowances.
type AllowanceCategory string

const (
	AllowanceRemote       AllowanceCategory = "remote"
	AllowanceSpecialEd    AllowanceCategory = "special_ed"
	AllowanceWeekend      AllowanceCategory = "weekend"
	AllowanceUnderstaffed AllowanceCategory = "understaffed"
)

// AllowanceLine is one evaluated allowance for one class activity. Amount
// is zero when the condition did not hold; the line is still emitted so the
// statement can explain the denial.
type AllowanceLine struct {
	Category   AllowanceCategory `json:"category"`
	PerSession Money             `json:"per_session"`
	Sessions   int               `json:"sessions"`
	Amount     Money             `json:"amount"`
	Reason     string            `json:"reason"`
}

func grantedLine(cat AllowanceCategory, perSession Money, sessions int, reason string) AllowanceLine {
	return AllowanceLine{
		Category: cat, PerSession: perSession, Sessions: sessions,
		Amount: perSession.MulInt(sessions), Reason: reason,
	}
}

func deniedLine(cat AllowanceCategory, sessions int, reason string) AllowanceLine {
	return AllowanceLine{Category: cat, PerSession: Won(0), Sessions: sessions, Amount: Won(0), Reason: reason}
}

// =============================================================================
// ALLOWANCE CALCULATOR
// =============================================================================

// ClassAllowances evaluates all four allowances for one confirmed class
// activity at the given institution on the given date. The caller must
// already have excluded cancelled activities.
func ClassAllowances(schedule *FeeSchedule, class ClassDetail, inst Institution, date Date) []AllowanceLine {
	lines := make([]AllowanceLine, 0, 4)

	if inst.IsRemote {
		lines = append(lines, grantedLine(AllowanceRemote, schedule.RemoteAllowance, class.Sessions, "도서벽지 기관"))
	} else {
		lines = append(lines, deniedLine(AllowanceRemote, class.Sessions, "도서벽지 아님"))
	}

	if inst.IsSpecial {
		lines = append(lines, grantedLine(AllowanceSpecialEd, schedule.SpecialEdAllowance, class.Sessions, "특수학급 운영 기관"))
	} else {
		lines = append(lines, deniedLine(AllowanceSpecialEd, class.Sessions, "특수학급 아님"))
	}

	if date.IsWeekend() {
		lines = append(lines, grantedLine(AllowanceWeekend, schedule.WeekendAllowance, class.Sessions,
			fmt.Sprintf("주말 수업 (%s)", weekdayKorean(date))))
	} else {
		lines = append(lines, deniedLine(AllowanceWeekend, class.Sessions, "평일 수업"))
	}

	lines = append(lines, understaffedLine(schedule, class))

	return lines
}

// understaffedLine applies the three-way gate: MAIN role, student count at
// or above the threshold, and no assistant present. ASSISTANT-role
// activities never qualify regardless of staffing.
func understaffedLine(schedule *FeeSchedule, class ClassDetail) AllowanceLine {
	switch {
	case class.Role != RoleMain:
		return deniedLine(AllowanceUnderstaffed, class.Sessions, "주강사 수업 아님")
	case class.Students < schedule.UnderstaffedThreshold:
		return deniedLine(AllowanceUnderstaffed, class.Sessions,
			fmt.Sprintf("학생 %d명 미만", schedule.UnderstaffedThreshold))
	case class.HasAssistant:
		return deniedLine(AllowanceUnderstaffed, class.Sessions, "보조강사 있음")
	default:
		return grantedLine(AllowanceUnderstaffed, schedule.UnderstaffedAllowance, class.Sessions,
			fmt.Sprintf("학생 %d명 이상 + 보조강사 없음", schedule.UnderstaffedThreshold))
	}
}

func weekdayKorean(d Date) string {
	names := [...]string{"일", "월", "화", "수", "목", "금", "토"}
	return names[int(d.Weekday())]
}
