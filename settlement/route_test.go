package settlement_test

import (
	"testing"

	"github.com/edudispatch/settlement-engine/settlement"
)

func TestBuildRoute_EmptyDay(t *testing.T) {
	// GIVEN: No visits
	// THEN: The route is [home, home] with zero total distance

	var warns []settlement.Warning
	route := settlement.BuildRoute("Suwon", nil, testMatrix(), &warns)

	if len(route.Stops) != 2 || route.Stops[0] != "Suwon" || route.Stops[1] != "Suwon" {
		t.Fatalf("stops = %v, want [Suwon Suwon]", route.Stops)
	}
	if route.TotalKm != 0 {
		t.Errorf("total = %v km, want 0", route.TotalKm)
	}
}

func TestBuildRoute_VisitOrderPreserved(t *testing.T) {
	// GIVEN: Visits to Seoul then Yeoju from a Suwon home
	// WHEN: Building the route
	// THEN: Legs follow input order: Suwon->Seoul->Yeoju->Suwon

	var warns []settlement.Warning
	route := settlement.BuildRoute("Suwon", []settlement.Visit{
		{InstitutionID: "sch-a", City: "Seoul"},
		{InstitutionID: "sch-b", City: "Yeoju"},
	}, testMatrix(), &warns)

	want := []settlement.City{"Suwon", "Seoul", "Yeoju", "Suwon"}
	if len(route.Stops) != len(want) {
		t.Fatalf("stops = %v, want %v", route.Stops, want)
	}
	for i := range want {
		if route.Stops[i] != want[i] {
			t.Fatalf("stops = %v, want %v", route.Stops, want)
		}
	}
	// 34 + 75 + 58
	if route.TotalKm != 167 {
		t.Errorf("total = %v km, want 167", route.TotalKm)
	}
	if len(warns) != 0 {
		t.Errorf("unexpected warnings: %v", warns)
	}
}

func TestBuildRoute_ConsecutiveSameInstitutionCollapses(t *testing.T) {
	// GIVEN: Two back-to-back classes at the same school
	// THEN: One stop; the trip there is counted once

	var warns []settlement.Warning
	route := settlement.BuildRoute("Suwon", []settlement.Visit{
		{InstitutionID: "sch-a", City: "Seoul"},
		{InstitutionID: "sch-a", City: "Seoul"},
	}, testMatrix(), &warns)

	if len(route.Stops) != 3 {
		t.Fatalf("stops = %v, want [Suwon Seoul Suwon]", route.Stops)
	}
	if route.TotalKm != 68 {
		t.Errorf("total = %v km, want 68", route.TotalKm)
	}
}

func TestBuildRoute_SameCityDifferentInstitutions_TwoStops(t *testing.T) {
	// GIVEN: Two different schools in the same city
	// THEN: Both remain stops; their connecting leg is 0 km

	var warns []settlement.Warning
	route := settlement.BuildRoute("Suwon", []settlement.Visit{
		{InstitutionID: "sch-a", City: "Seoul"},
		{InstitutionID: "sch-b", City: "Seoul"},
	}, testMatrix(), &warns)

	if len(route.Stops) != 4 {
		t.Fatalf("stops = %v, want 4 stops", route.Stops)
	}
	// 34 + 0 + 34
	if route.TotalKm != 68 {
		t.Errorf("total = %v km, want 68", route.TotalKm)
	}
	if len(warns) != 0 {
		t.Errorf("same-city leg should not warn: %v", warns)
	}
}

func TestBuildRoute_MissingLegWarnsAndContinues(t *testing.T) {
	// GIVEN: A visit to a city absent from the matrix
	// THEN: Both unresolvable legs count 0 km, warnings recorded, route intact

	var warns []settlement.Warning
	route := settlement.BuildRoute("Suwon", []settlement.Visit{
		{InstitutionID: "sch-a", City: "Busan"},
	}, testMatrix(), &warns)

	if route.TotalKm != 0 {
		t.Errorf("total = %v km, want 0", route.TotalKm)
	}
	if len(warns) != 2 {
		t.Fatalf("got %d warnings, want 2 (one per unresolvable leg)", len(warns))
	}
	for _, w := range warns {
		if w.Code != settlement.WarnMissingDistance {
			t.Errorf("warning code = %s, want %s", w.Code, settlement.WarnMissingDistance)
		}
	}
}
