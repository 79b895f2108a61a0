// Package-level in-memory directories. The engine only ever sees immutable
// snapshots of reference data; these map-backed implementations serve
// tests, demo scenarios, and callers that load reference data up front.
package settlement

import "sync"

// =============================================================================
// MAP DIRECTORY - In-memory reference data (tests, scenarios, batch loads)
// =============================================================================

// MapDirectory holds instructors and institutions in memory. Reads are safe
// for concurrent use; populate it before handing it to calculators.
type MapDirectory struct {
	mu           sync.RWMutex
	instructors  map[InstructorID]Instructor
	institutions map[InstitutionID]Institution
}

func NewMapDirectory() *MapDirectory {
	return &MapDirectory{
		instructors:  make(map[InstructorID]Instructor),
		institutions: make(map[InstitutionID]Institution),
	}
}

func (d *MapDirectory) AddInstructor(in Instructor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.instructors[in.ID] = in
}

func (d *MapDirectory) AddInstitution(in Institution) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.institutions[in.ID] = in
}

// Instructor resolves an instructor by id.
func (d *MapDirectory) Instructor(id InstructorID) (Instructor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	in, ok := d.instructors[id]
	return in, ok
}

// Institution implements InstitutionDirectory.
func (d *MapDirectory) Institution(id InstitutionID) (Institution, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	in, ok := d.institutions[id]
	return in, ok
}

var _ InstitutionDirectory = (*MapDirectory)(nil)
