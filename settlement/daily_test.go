package settlement_test

import (
	"errors"
	"testing"
	"time"

	"github.com/edudispatch/settlement-engine/settlement"
)

// =============================================================================
// TEST FIXTURE - One instructor, a few schools, a small distance matrix
// =============================================================================

var kim = settlement.Instructor{ID: "inst-kim", Name: "김지은", HomeCity: "Suwon"}

func newTestCalculator() *settlement.DailyCalculator {
	dir := settlement.NewMapDirectory()
	dir.AddInstitution(settlement.Institution{
		ID: "sch-suwon", Name: "수원중앙초등학교", City: "Suwon", Level: settlement.LevelElementary,
	})
	dir.AddInstitution(settlement.Institution{
		ID: "sch-wonju", Name: "원주반곡초등학교", City: "Wonju", Level: settlement.LevelElementary,
	})
	dir.AddInstitution(settlement.Institution{
		ID: "sch-yeoju", Name: "여주가남고등학교", City: "Yeoju", Level: settlement.LevelHigh, IsRemote: true,
	})

	matrix := settlement.NewDistanceMatrix()
	matrix.Add("Suwon", "Wonju", 80)
	matrix.Add("Suwon", "Yeoju", 58)
	matrix.Add("Wonju", "Yeoju", 45)

	return &settlement.DailyCalculator{
		Schedule:     settlement.DefaultFeeSchedule(),
		Institutions: dir,
		Distances:    matrix,
	}
}

func class(id string, date settlement.Date, detail settlement.ClassDetail) settlement.Activity {
	if detail.Status == "" {
		detail.Status = settlement.StatusCompleted
	}
	return settlement.NewClassActivity(settlement.ActivityID(id), kim.ID, date, detail)
}

// =============================================================================
// DAILY SETTLEMENT
// =============================================================================

func TestComputeDaily_HomeCityWeekday_BaseOnly(t *testing.T) {
	// GIVEN: A Tuesday class in the instructor's home city: MAIN at an
	//        elementary school, 4 sessions, 20 students, assistant present
	// WHEN: Computing the day
	// THEN: Gross is exactly 4 x 40,000; every allowance category is zero

	calc := newTestCalculator()
	tuesday := settlement.NewDate(2025, time.June, 3)

	s, err := calc.ComputeDaily(kim, tuesday, []settlement.Activity{
		class("act-1", tuesday, settlement.ClassDetail{
			Role: settlement.RoleMain, InstitutionID: "sch-suwon",
			Sessions: 4, Students: 20, HasAssistant: true,
		}),
	})
	if err != nil {
		t.Fatalf("ComputeDaily: %v", err)
	}

	if s.Gross.Int64() != 160000 {
		t.Errorf("gross = %d, want 160000", s.Gross.Int64())
	}
	if s.TeachingBase.Int64() != 160000 {
		t.Errorf("teaching base = %d, want 160000", s.TeachingBase.Int64())
	}
	for name, m := range map[string]settlement.Money{
		"remote":       s.RemoteAllowance,
		"special_ed":   s.SpecialEdAllowance,
		"weekend":      s.WeekendAllowance,
		"understaffed": s.UnderstaffedTotal,
		"travel":       s.TravelAllowance,
		"equipment":    s.EquipmentAllowance,
	} {
		if !m.IsZero() {
			t.Errorf("%s = %d, want 0", name, m.Int64())
		}
	}
	if s.Travel.Route.TotalKm != 0 {
		t.Errorf("route total = %v km, want 0 (home-city day)", s.Travel.Route.TotalKm)
	}
	if len(s.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", s.Warnings)
	}
}

func TestComputeDaily_TravelBracketsOnRouteTotal(t *testing.T) {
	// GIVEN: The home-city class plus a second class 80 km away
	// WHEN: Computing the day
	// THEN: The bracket applies to the route total (0 + 80 + 80 = 160 km),
	//       landing in the top bracket, not the single-leg distance

	calc := newTestCalculator()
	tuesday := settlement.NewDate(2025, time.June, 3)

	s, err := calc.ComputeDaily(kim, tuesday, []settlement.Activity{
		class("act-1", tuesday, settlement.ClassDetail{
			Role: settlement.RoleMain, InstitutionID: "sch-suwon",
			Sessions: 4, Students: 20, HasAssistant: true,
		}),
		class("act-2", tuesday, settlement.ClassDetail{
			Role: settlement.RoleMain, InstitutionID: "sch-wonju",
			Sessions: 2, Students: 10, HasAssistant: true,
		}),
	})
	if err != nil {
		t.Fatalf("ComputeDaily: %v", err)
	}

	if s.Travel.Route.TotalKm != 160 {
		t.Fatalf("route total = %v km, want 160", s.Travel.Route.TotalKm)
	}
	if s.TravelAllowance.Int64() != 30000 {
		t.Errorf("travel allowance = %d, want 30000 (top bracket)", s.TravelAllowance.Int64())
	}
	// 160,000 + 80,000 base + 30,000 travel
	if s.Gross.Int64() != 270000 {
		t.Errorf("gross = %d, want 270000", s.Gross.Int64())
	}
}

func TestComputeDaily_CancelledClass_PreviewOnly(t *testing.T) {
	// GIVEN: One confirmed home-city class and one cancelled class 80 km away
	// THEN: The cancelled class contributes no pay and no route distance,
	//       but its would-be base amount appears as a preview line

	calc := newTestCalculator()
	tuesday := settlement.NewDate(2025, time.June, 3)

	s, err := calc.ComputeDaily(kim, tuesday, []settlement.Activity{
		class("act-1", tuesday, settlement.ClassDetail{
			Role: settlement.RoleMain, InstitutionID: "sch-suwon",
			Sessions: 2, Students: 10, HasAssistant: true,
		}),
		class("act-2", tuesday, settlement.ClassDetail{
			Status: settlement.StatusCancelled,
			Role:   settlement.RoleMain, InstitutionID: "sch-wonju",
			Sessions: 3, Students: 10, HasAssistant: true,
		}),
	})
	if err != nil {
		t.Fatalf("ComputeDaily: %v", err)
	}

	if s.Gross.Int64() != 80000 {
		t.Errorf("gross = %d, want 80000 (cancelled class excluded)", s.Gross.Int64())
	}
	if s.CancelledPreview.Int64() != 120000 {
		t.Errorf("cancelled preview = %d, want 120000", s.CancelledPreview.Int64())
	}
	if s.Travel.Route.TotalKm != 0 {
		t.Errorf("route total = %v km, want 0 (cancelled visit never happened)", s.Travel.Route.TotalKm)
	}

	var preview *settlement.ClassLine
	for i := range s.ClassLines {
		if s.ClassLines[i].ActivityID == "act-2" {
			preview = &s.ClassLines[i]
		}
	}
	if preview == nil {
		t.Fatal("cancelled class missing from breakdown")
	}
	if !preview.Cancelled || preview.BaseAmount.Int64() != 120000 {
		t.Errorf("preview line = %+v, want cancelled with base 120000", preview)
	}
}

func TestComputeDaily_EquipmentOncePerDay(t *testing.T) {
	// GIVEN: Three classes on one day, all flagging equipment transport
	// THEN: The stipend is paid once, not three times

	calc := newTestCalculator()
	tuesday := settlement.NewDate(2025, time.June, 3)

	var activities []settlement.Activity
	for _, id := range []string{"act-1", "act-2", "act-3"} {
		activities = append(activities, class(id, tuesday, settlement.ClassDetail{
			Role: settlement.RoleMain, InstitutionID: "sch-suwon",
			Sessions: 1, Students: 10, HasAssistant: true, EquipmentTransport: true,
		}))
	}

	s, err := calc.ComputeDaily(kim, tuesday, activities)
	if err != nil {
		t.Fatalf("ComputeDaily: %v", err)
	}
	if s.EquipmentAllowance.Int64() != 30000 {
		t.Errorf("equipment = %d, want 30000 regardless of flag count", s.EquipmentAllowance.Int64())
	}
	if !s.Equipment.Performed || len(s.Equipment.ActivityIDs) != 3 {
		t.Errorf("equipment detail = %+v, want performed with all 3 activity ids", s.Equipment)
	}
}

func TestComputeDaily_EquipmentIgnoresCancelled(t *testing.T) {
	// GIVEN: The only equipment-flagged activity on the day is cancelled
	// THEN: No stipend

	calc := newTestCalculator()
	tuesday := settlement.NewDate(2025, time.June, 3)

	s, err := calc.ComputeDaily(kim, tuesday, []settlement.Activity{
		class("act-1", tuesday, settlement.ClassDetail{
			Status: settlement.StatusCancelled,
			Role:   settlement.RoleMain, InstitutionID: "sch-suwon",
			Sessions: 2, Students: 10, EquipmentTransport: true,
		}),
	})
	if err != nil {
		t.Fatalf("ComputeDaily: %v", err)
	}
	if !s.EquipmentAllowance.IsZero() {
		t.Errorf("equipment = %d, want 0", s.EquipmentAllowance.Int64())
	}
	if s.Equipment.Performed {
		t.Error("equipment marked performed on a cancelled-only day")
	}
}

func TestComputeDaily_EventPay_NoAllowancesStack(t *testing.T) {
	// GIVEN: A Saturday with only a 3-hour event
	// THEN: Event pay is hours x flat rate; the weekend allowance does not
	//       apply (it is a class allowance)

	calc := newTestCalculator()
	saturday := settlement.NewDate(2025, time.June, 7)

	s, err := calc.ComputeDaily(kim, saturday, []settlement.Activity{
		settlement.NewEventActivity("act-ev", kim.ID, saturday, settlement.EventDetail{
			Status: settlement.StatusCompleted, Hours: 3,
		}),
	})
	if err != nil {
		t.Fatalf("ComputeDaily: %v", err)
	}

	if s.EventPay.Int64() != 60000 {
		t.Errorf("event pay = %d, want 60000", s.EventPay.Int64())
	}
	if !s.WeekendAllowance.IsZero() {
		t.Errorf("weekend allowance = %d, want 0 for an event-only day", s.WeekendAllowance.Int64())
	}
	if s.Gross.Int64() != 60000 {
		t.Errorf("gross = %d, want 60000", s.Gross.Int64())
	}
}

func TestComputeDaily_EmptyDay(t *testing.T) {
	// GIVEN: No activities
	// THEN: A zero settlement with a [home, home] route, no error

	calc := newTestCalculator()
	s, err := calc.ComputeDaily(kim, settlement.NewDate(2025, time.June, 3), nil)
	if err != nil {
		t.Fatalf("ComputeDaily: %v", err)
	}
	if !s.Gross.IsZero() {
		t.Errorf("gross = %d, want 0", s.Gross.Int64())
	}
	if len(s.Travel.Route.Stops) != 2 {
		t.Errorf("route stops = %v, want [home home]", s.Travel.Route.Stops)
	}
}

func TestComputeDaily_MissingInstitution_WarnsAndSkips(t *testing.T) {
	// GIVEN: A class referencing an institution absent from the directory
	// THEN: The activity contributes nothing; a warning is recorded; no error

	calc := newTestCalculator()
	tuesday := settlement.NewDate(2025, time.June, 3)

	s, err := calc.ComputeDaily(kim, tuesday, []settlement.Activity{
		class("act-1", tuesday, settlement.ClassDetail{
			Role: settlement.RoleMain, InstitutionID: "sch-ghost",
			Sessions: 2, Students: 10,
		}),
	})
	if err != nil {
		t.Fatalf("ComputeDaily: %v", err)
	}
	if !s.Gross.IsZero() {
		t.Errorf("gross = %d, want 0", s.Gross.Int64())
	}
	if len(s.Warnings) != 1 || s.Warnings[0].Code != settlement.WarnMissingInstitution {
		t.Fatalf("warnings = %v, want one missing_institution", s.Warnings)
	}
}

// =============================================================================
// FAIL-FAST INPUT GUARDS
// =============================================================================

func TestComputeDaily_RejectsForeignInstructor(t *testing.T) {
	calc := newTestCalculator()
	tuesday := settlement.NewDate(2025, time.June, 3)

	foreign := settlement.NewClassActivity("act-x", "inst-other", tuesday, settlement.ClassDetail{
		Status: settlement.StatusCompleted, Role: settlement.RoleMain,
		InstitutionID: "sch-suwon", Sessions: 1, Students: 10,
	})

	_, err := calc.ComputeDaily(kim, tuesday, []settlement.Activity{foreign})
	if !errors.Is(err, settlement.ErrMixedInstructors) {
		t.Fatalf("err = %v, want ErrMixedInstructors", err)
	}
}

func TestComputeDaily_RejectsMixedDates(t *testing.T) {
	calc := newTestCalculator()
	tuesday := settlement.NewDate(2025, time.June, 3)
	wednesday := settlement.NewDate(2025, time.June, 4)

	_, err := calc.ComputeDaily(kim, tuesday, []settlement.Activity{
		class("act-1", wednesday, settlement.ClassDetail{
			Role: settlement.RoleMain, InstitutionID: "sch-suwon", Sessions: 1, Students: 10,
		}),
	})
	if !errors.Is(err, settlement.ErrMixedDates) {
		t.Fatalf("err = %v, want ErrMixedDates", err)
	}
}

func TestComputeDaily_RejectsMalformedUnion(t *testing.T) {
	// GIVEN: An activity whose discriminant says class but carries no payload
	calc := newTestCalculator()
	tuesday := settlement.NewDate(2025, time.June, 3)

	broken := settlement.Activity{
		ID: "act-x", InstructorID: kim.ID, Date: tuesday, Kind: settlement.KindClass,
	}
	_, err := calc.ComputeDaily(kim, tuesday, []settlement.Activity{broken})
	if !errors.Is(err, settlement.ErrInvalidActivity) {
		t.Fatalf("err = %v, want ErrInvalidActivity", err)
	}
}
