/*
route.go - Daily travel route construction

PURPOSE:
  Builds the closed loop an instructor travels in one day: home, then each
  visited institution in the order the visits happened, then home again.
  The summed leg distances feed the travel-allowance bracket lookup.

NO OPTIMIZATION:
  Stop order is exactly the input order. The system models the sequence of
  visits that actually occurred, not an optimal tour, so there is no
  shortest-path reordering.

DEDUPLICATION:
  Consecutive visits to the SAME institution collapse into one stop (two
  back-to-back classes at one school is one trip there). Two different
  institutions in the same city remain two stops; their connecting leg is
  simply 0 km.

SEE ALSO:
  - distance.go: Per-leg distance resolution
  - daily.go: Feeds confirmed class visits in, reads TotalKm out
*/
package settlement

// =============================================================================
// VISIT & ROUTE TYPES
// =============================================================================

// Visit is one institution stop on a day's route, in visit order.
type Visit struct {
	InstitutionID InstitutionID
	City          City
}

// Leg is one resolved segment of the route, kept for the audit breakdown.
type Leg struct {
	From City    `json:"from"`
	To   City    `json:"to"`
	Km   float64 `json:"km"`
}

// Route is the resolved closed loop for one day.
type Route struct {
	Stops   []City  `json:"stops"`
	Legs    []Leg   `json:"legs"`
	TotalKm float64 `json:"total_km"`
}

// =============================================================================
// ROUTE BUILDER
// =============================================================================

// BuildRoute constructs the day's closed loop: home -> visits in order ->
// home, collapsing consecutive repeats of the same institution. With no
// visits the route is [home, home] with zero distance.
func BuildRoute(home City, visits []Visit, matrix *DistanceMatrix, warns *[]Warning) Route {
	stops := []City{home}

	var lastInstitution InstitutionID
	for _, v := range visits {
		if v.InstitutionID == lastInstitution && lastInstitution != "" {
			continue
		}
		stops = append(stops, v.City)
		lastInstitution = v.InstitutionID
	}
	stops = append(stops, home)

	route := Route{Stops: stops}
	for i := 0; i < len(stops)-1; i++ {
		km := Distance(stops[i], stops[i+1], matrix, warns)
		route.Legs = append(route.Legs, Leg{From: stops[i], To: stops[i+1], Km: km})
		route.TotalKm += km
	}
	return route
}
