/*
distance.go - City-to-city road distance matrix

PURPOSE:
  Resolves road distances between cities for travel-allowance computation.
  The matrix is plain reference data: loaded once, symmetric by
  construction, immutable for the lifetime of a computation batch.

FAIL-SOFT LOOKUP:
  A missing pair resolves to 0 km and surfaces a Warning instead of an
  error. Travel allowance for unknown distances defaults to zero; aborting
  a whole instructor's settlement over one bad institution record would be
  strictly worse than under-paying one leg and flagging it.

SEE ALSO:
  - route.go: Walks a day's route and sums leg distances
  - fees.go: Maps total kilometers to a bracket amount
*/
package settlement

// =============================================================================
// DISTANCE MATRIX - Symmetric by construction
// =============================================================================

type cityPair struct {
	A, B City
}

// DistanceMatrix holds symmetric city-to-city road distances in kilometers.
// Add stores both directions, so symmetry cannot drift.
type DistanceMatrix struct {
	km map[cityPair]float64
}

func NewDistanceMatrix() *DistanceMatrix {
	return &DistanceMatrix{km: make(map[cityPair]float64)}
}

// Add registers the distance between two cities in both directions.
func (m *DistanceMatrix) Add(a, b City, km float64) {
	m.km[cityPair{a, b}] = km
	m.km[cityPair{b, a}] = km
}

// Lookup returns the distance and whether the pair is known. The same city
// is always 0 km regardless of matrix contents.
func (m *DistanceMatrix) Lookup(a, b City) (float64, bool) {
	if a == b {
		return 0, true
	}
	km, ok := m.km[cityPair{a, b}]
	return km, ok
}

// Pairs returns every stored directed pair (both directions of each entry).
// Used by the store and API to round-trip the matrix.
func (m *DistanceMatrix) Pairs() []DistanceEntry {
	entries := make([]DistanceEntry, 0, len(m.km))
	for p, km := range m.km {
		entries = append(entries, DistanceEntry{CityA: p.A, CityB: p.B, Km: km})
	}
	return entries
}

// DistanceEntry is one directed matrix cell, as persisted and transported.
type DistanceEntry struct {
	CityA City    `json:"city_a"`
	CityB City    `json:"city_b"`
	Km    float64 `json:"km"`
}

// =============================================================================
// RESOLVER - Fail-soft lookup with warning capture
// =============================================================================

// Distance resolves the distance between two cities against the matrix.
// Unknown pairs resolve to 0 km and append a warning to warns. This never
// fails: a configuration gap is a reporting concern, not a halting one.
func Distance(a, b City, matrix *DistanceMatrix, warns *[]Warning) float64 {
	km, ok := matrix.Lookup(a, b)
	if !ok {
		if warns != nil {
			*warns = append(*warns, warnMissingDistance(a, b))
		}
		return 0
	}
	return km
}
