package settlement_test

import (
	"testing"
	"time"

	"github.com/edudispatch/settlement-engine/settlement"
)

func findLine(t *testing.T, lines []settlement.AllowanceLine, cat settlement.AllowanceCategory) settlement.AllowanceLine {
	t.Helper()
	for _, l := range lines {
		if l.Category == cat {
			return l
		}
	}
	t.Fatalf("no %s line emitted", cat)
	return settlement.AllowanceLine{}
}

func TestClassAllowances_AllFourLinesAlwaysEmitted(t *testing.T) {
	// GIVEN: A plain weekday class with nothing special
	// WHEN: Evaluating allowances
	// THEN: All four lines appear, each zero, each carrying a denial reason

	schedule := settlement.DefaultFeeSchedule()
	class := settlement.ClassDetail{Role: settlement.RoleMain, Sessions: 2, Students: 10, HasAssistant: true}
	inst := settlement.Institution{ID: "sch-1", City: "Suwon", Level: settlement.LevelElementary}
	weekday := settlement.NewDate(2025, time.June, 3) // Tuesday

	lines := settlement.ClassAllowances(schedule, class, inst, weekday)
	if len(lines) != 4 {
		t.Fatalf("got %d allowance lines, want 4", len(lines))
	}
	for _, l := range lines {
		if !l.Amount.IsZero() {
			t.Errorf("%s granted %s, want 0", l.Category, l.Amount)
		}
		if l.Reason == "" {
			t.Errorf("%s line has no reason", l.Category)
		}
	}
}

func TestClassAllowances_RemoteAndSpecialStack(t *testing.T) {
	// GIVEN: A 3-session class at a remote AND special-education institution
	// THEN: Both allowances are granted independently, per session

	schedule := settlement.DefaultFeeSchedule()
	class := settlement.ClassDetail{Role: settlement.RoleAssistant, Sessions: 3, Students: 10}
	inst := settlement.Institution{ID: "sch-1", City: "Yeoju", Level: settlement.LevelHigh, IsRemote: true, IsSpecial: true}
	weekday := settlement.NewDate(2025, time.June, 4)

	lines := settlement.ClassAllowances(schedule, class, inst, weekday)

	remote := findLine(t, lines, settlement.AllowanceRemote)
	if remote.Amount.Int64() != 30000 { // 10,000 x 3 sessions
		t.Errorf("remote allowance = %d, want 30000", remote.Amount.Int64())
	}
	special := findLine(t, lines, settlement.AllowanceSpecialEd)
	if special.Amount.Int64() != 30000 {
		t.Errorf("special-ed allowance = %d, want 30000", special.Amount.Int64())
	}
}

func TestClassAllowances_WeekendByDate(t *testing.T) {
	// GIVEN: The same class on a Saturday and on the following Monday
	// THEN: Only the Saturday run earns the weekend allowance

	schedule := settlement.DefaultFeeSchedule()
	class := settlement.ClassDetail{Role: settlement.RoleMain, Sessions: 2, Students: 10, HasAssistant: true}
	inst := settlement.Institution{ID: "sch-1", City: "Suwon", Level: settlement.LevelElementary}

	saturday := settlement.NewDate(2025, time.June, 7)
	monday := settlement.NewDate(2025, time.June, 9)

	sat := findLine(t, settlement.ClassAllowances(schedule, class, inst, saturday), settlement.AllowanceWeekend)
	if sat.Amount.Int64() != 20000 { // 10,000 x 2 sessions
		t.Errorf("Saturday weekend allowance = %d, want 20000", sat.Amount.Int64())
	}

	mon := findLine(t, settlement.ClassAllowances(schedule, class, inst, monday), settlement.AllowanceWeekend)
	if !mon.Amount.IsZero() {
		t.Errorf("Monday weekend allowance = %d, want 0", mon.Amount.Int64())
	}
}

func TestUnderstaffed_GateMatrix(t *testing.T) {
	// GIVEN: The three-way gate (MAIN role, students >= 15, no assistant)
	// THEN: Only the exact combination grants; each missing leg denies

	schedule := settlement.DefaultFeeSchedule()
	inst := settlement.Institution{ID: "sch-1", City: "Suwon", Level: settlement.LevelElementary}
	weekday := settlement.NewDate(2025, time.June, 3)

	cases := []struct {
		name      string
		role      settlement.Role
		students  int
		assistant bool
		want      int64
	}{
		{"all conditions met", settlement.RoleMain, 15, false, 5000},
		{"well above threshold", settlement.RoleMain, 30, false, 5000},
		{"one below threshold", settlement.RoleMain, 14, false, 0},
		{"assistant present", settlement.RoleMain, 20, true, 0},
		{"assistant role never qualifies", settlement.RoleAssistant, 20, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			class := settlement.ClassDetail{
				Role: tc.role, Sessions: 1, Students: tc.students, HasAssistant: tc.assistant,
			}
			line := findLine(t, settlement.ClassAllowances(schedule, class, inst, weekday), settlement.AllowanceUnderstaffed)
			if line.Amount.Int64() != tc.want {
				t.Errorf("understaffed allowance = %d, want %d", line.Amount.Int64(), tc.want)
			}
		})
	}
}

func TestUnderstaffed_GrantedReasonNamesThreshold(t *testing.T) {
	schedule := settlement.DefaultFeeSchedule()
	inst := settlement.Institution{ID: "sch-1", City: "Suwon", Level: settlement.LevelElementary}
	class := settlement.ClassDetail{Role: settlement.RoleMain, Sessions: 2, Students: 18}

	line := findLine(t,
		settlement.ClassAllowances(schedule, class, inst, settlement.NewDate(2025, time.June, 3)),
		settlement.AllowanceUnderstaffed)

	if line.Amount.Int64() != 10000 { // 5,000 x 2 sessions
		t.Errorf("understaffed allowance = %d, want 10000", line.Amount.Int64())
	}
	if line.Reason != "학생 15명 이상 + 보조강사 없음" {
		t.Errorf("unexpected reason %q", line.Reason)
	}
}
