/*
Package sqlite provides a SQLite-backed implementation of the data-access
boundary.

PURPOSE:
  Persists the reference data (instructors, institutions, distance matrix,
  fee schedule) and the activity records the settlement engine computes
  from. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  instructors:    Identity + home city (routing origin)
  institutions:   Identity + city, level, remote/special flags
  activities:     One row per activity; the class/event union flattens into
                  nullable columns guarded by the kind discriminant
  distances:      Directed city-pair distance cells (both directions stored)
  fee_schedules:  The active rate configuration as JSON (single active row)

ACTIVITY ORDER:
  Route construction depends on visit order. Listing preserves insertion
  order within a date (rowid), matching the order activities were recorded.

SNAPSHOT LOADING:
  The engine itself performs no I/O. LoadDirectory and LoadDistanceMatrix
  produce immutable in-memory snapshots that calculators read for the
  lifetime of a computation batch.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/dispatch.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()

SEE ALSO:
  - settlement/directory.go: The in-memory snapshot type
  - api/handlers.go: The store's only caller
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/edudispatch/settlement-engine/settlement"
)

// Store implements persistence for reference data and activities.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS instructors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		home_city TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS institutions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		level TEXT NOT NULL,
		is_remote BOOLEAN NOT NULL DEFAULT FALSE,
		is_special BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- One row per activity. Class and event payloads share the table;
	-- kind decides which nullable columns are meaningful.
	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		instructor_id TEXT NOT NULL,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		role TEXT,
		institution_id TEXT,
		sessions INTEGER,
		students INTEGER,
		has_assistant BOOLEAN,
		hours INTEGER,
		equipment_transport BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Hot path: one instructor's activities in a date range, visit order.
	CREATE INDEX IF NOT EXISTS idx_activities_instructor_date
		ON activities(instructor_id, date);

	-- Directed distance cells; writes store both directions.
	CREATE TABLE IF NOT EXISTS distances (
		city_a TEXT NOT NULL,
		city_b TEXT NOT NULL,
		km REAL NOT NULL,
		PRIMARY KEY (city_a, city_b)
	);

	CREATE TABLE IF NOT EXISTS fee_schedules (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// =============================================================================
// INSTRUCTORS
// =============================================================================

func (s *Store) CreateInstructor(ctx context.Context, in settlement.Instructor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO instructors (id, name, home_city, created_at) VALUES (?, ?, ?, ?)`,
		string(in.ID), in.Name, string(in.HomeCity), now())
	return err
}

func (s *Store) GetInstructor(ctx context.Context, id settlement.InstructorID) (*settlement.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, home_city FROM instructors WHERE id = ?`, string(id))

	var in settlement.Instructor
	var rid, city string
	if err := row.Scan(&rid, &in.Name, &city); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	in.ID = settlement.InstructorID(rid)
	in.HomeCity = settlement.City(city)
	return &in, nil
}

func (s *Store) ListInstructors(ctx context.Context) ([]settlement.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, home_city FROM instructors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.Instructor
	for rows.Next() {
		var in settlement.Instructor
		var id, city string
		if err := rows.Scan(&id, &in.Name, &city); err != nil {
			return nil, err
		}
		in.ID = settlement.InstructorID(id)
		in.HomeCity = settlement.City(city)
		out = append(out, in)
	}
	return out, rows.Err()
}

// =============================================================================
// INSTITUTIONS
// =============================================================================

func (s *Store) CreateInstitution(ctx context.Context, in settlement.Institution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO institutions (id, name, city, level, is_remote, is_special, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(in.ID), in.Name, string(in.City), string(in.Level), in.IsRemote, in.IsSpecial, now())
	return err
}

func (s *Store) GetInstitution(ctx context.Context, id settlement.InstitutionID) (*settlement.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, city, level, is_remote, is_special FROM institutions WHERE id = ?`, string(id))

	in, err := scanInstitution(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return in, nil
}

func (s *Store) ListInstitutions(ctx context.Context) ([]settlement.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, city, level, is_remote, is_special FROM institutions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.Institution
	for rows.Next() {
		in, err := scanInstitution(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

func scanInstitution(scan func(...any) error) (*settlement.Institution, error) {
	var in settlement.Institution
	var id, city, level string
	if err := scan(&id, &in.Name, &city, &level, &in.IsRemote, &in.IsSpecial); err != nil {
		return nil, err
	}
	in.ID = settlement.InstitutionID(id)
	in.City = settlement.City(city)
	in.Level = settlement.Level(level)
	return &in, nil
}

// =============================================================================
// ACTIVITIES
// =============================================================================

func (s *Store) CreateActivity(ctx context.Context, a settlement.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch a.Kind {
	case settlement.KindClass:
		c := a.Class
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO activities
			 (id, instructor_id, date, kind, status, role, institution_id, sessions, students, has_assistant, equipment_transport, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(a.ID), string(a.InstructorID), a.Date.String(), string(a.Kind), string(c.Status),
			string(c.Role), string(c.InstitutionID), c.Sessions, c.Students, c.HasAssistant,
			c.EquipmentTransport, now())
		return err
	case settlement.KindEvent:
		e := a.Event
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO activities
			 (id, instructor_id, date, kind, status, hours, equipment_transport, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			string(a.ID), string(a.InstructorID), a.Date.String(), string(a.Kind), string(e.Status),
			e.Hours, e.EquipmentTransport, now())
		return err
	}
	return settlement.ErrInvalidActivity
}

// ListActivities returns one instructor's activities in [from, to], ordered
// by date then insertion order (the recorded visit order within a day).
func (s *Store) ListActivities(ctx context.Context, instructorID settlement.InstructorID, from, to settlement.Date) ([]settlement.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, instructor_id, date, kind, status, role, institution_id, sessions, students, has_assistant, hours, equipment_transport
		 FROM activities
		 WHERE instructor_id = ? AND date >= ? AND date <= ?
		 ORDER BY date, rowid`,
		string(instructorID), from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanActivity(rows *sql.Rows) (settlement.Activity, error) {
	var (
		id, instructorID, dateStr, kind, status string
		role, institutionID                     sql.NullString
		sessions, students, hours               sql.NullInt64
		hasAssistant                            sql.NullBool
		equipment                               bool
	)
	if err := rows.Scan(&id, &instructorID, &dateStr, &kind, &status,
		&role, &institutionID, &sessions, &students, &hasAssistant, &hours, &equipment); err != nil {
		return settlement.Activity{}, err
	}

	date, err := settlement.ParseDate(dateStr)
	if err != nil {
		return settlement.Activity{}, err
	}

	switch settlement.ActivityKind(kind) {
	case settlement.KindClass:
		return settlement.NewClassActivity(
			settlement.ActivityID(id),
			settlement.InstructorID(instructorID),
			date,
			settlement.ClassDetail{
				Status:             settlement.Status(status),
				Role:               settlement.Role(role.String),
				InstitutionID:      settlement.InstitutionID(institutionID.String),
				Sessions:           int(sessions.Int64),
				Students:           int(students.Int64),
				HasAssistant:       hasAssistant.Bool,
				EquipmentTransport: equipment,
			}), nil
	case settlement.KindEvent:
		return settlement.NewEventActivity(
			settlement.ActivityID(id),
			settlement.InstructorID(instructorID),
			date,
			settlement.EventDetail{
				Status:             settlement.Status(status),
				Hours:              int(hours.Int64),
				EquipmentTransport: equipment,
			}), nil
	}
	return settlement.Activity{}, fmt.Errorf("activity %s: unknown kind %q", id, kind)
}

// =============================================================================
// DISTANCES
// =============================================================================

// ReplaceDistances replaces the whole matrix atomically. Both directions of
// every entry are stored, keeping the table symmetric by construction.
func (s *Store) ReplaceDistances(ctx context.Context, entries []settlement.DistanceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM distances`); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO distances (city_a, city_b, km) VALUES (?, ?, ?)`,
			string(e.CityA), string(e.CityB), e.Km); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO distances (city_a, city_b, km) VALUES (?, ?, ?)`,
			string(e.CityB), string(e.CityA), e.Km); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadDistanceMatrix loads the full matrix as an immutable snapshot.
func (s *Store) LoadDistanceMatrix(ctx context.Context) (*settlement.DistanceMatrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT city_a, city_b, km FROM distances`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matrix := settlement.NewDistanceMatrix()
	for rows.Next() {
		var a, b string
		var km float64
		if err := rows.Scan(&a, &b, &km); err != nil {
			return nil, err
		}
		matrix.Add(settlement.City(a), settlement.City(b), km)
	}
	return matrix, rows.Err()
}

// =============================================================================
// FEE SCHEDULE
// =============================================================================

// SaveFeeSchedule stores the active rate configuration as JSON. Callers
// validate via the factory before saving.
func (s *Store) SaveFeeSchedule(ctx context.Context, configJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fee_schedules (id, config_json, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET config_json = excluded.config_json, updated_at = excluded.updated_at`,
		configJSON, now())
	return err
}

// LoadFeeSchedule returns the stored JSON config, or "" if none was saved.
func (s *Store) LoadFeeSchedule(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `SELECT config_json FROM fee_schedules WHERE id = 1`)
	var cfg string
	if err := row.Scan(&cfg); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return cfg, nil
}

// =============================================================================
// SNAPSHOT LOADING
// =============================================================================

// LoadDirectory loads all instructors and institutions into an in-memory
// directory for a computation batch.
func (s *Store) LoadDirectory(ctx context.Context) (*settlement.MapDirectory, error) {
	dir := settlement.NewMapDirectory()

	instructors, err := s.ListInstructors(ctx)
	if err != nil {
		return nil, err
	}
	for _, in := range instructors {
		dir.AddInstructor(in)
	}

	institutions, err := s.ListInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	for _, in := range institutions {
		dir.AddInstitution(in)
	}
	return dir, nil
}

// Reset clears all data. Used by the demo scenario loader.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, table := range []string{"activities", "instructors", "institutions", "distances", "fee_schedules"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	return nil
}
