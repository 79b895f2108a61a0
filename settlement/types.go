/*
Package settlement implements the instructor settlement engine.

PURPOSE:
  Converts one instructor's raw activity records (classes taught, events
  attended, travel between institutions) into payable amounts. The engine
  applies role-based per-session fees, four conditional allowances, a
  travel-distance bracket table, a day-level equipment-transport stipend,
  a monthly equipment cap, and withholding tax.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: An integer KRW amount (decimal-backed, no subunits)
  - Instructor / Institution: Immutable reference data
  - Activity: Tagged union of class and event records
  - Role / Level / Status enums driving fee lookup

DESIGN PRINCIPLES:
  1. Purity: Settlements are derived fresh from activities on every call;
     there is no mutation, no cache, no shared state.
  2. Precision: Money uses decimal.Decimal so tax arithmetic never sees
     floating-point error.
  3. Auditability: Every computed figure carries an itemized breakdown
     explaining which rule produced it.
  4. Fail-soft on data gaps: A bad reference row degrades one activity's
     contribution, never the whole batch.

SEE ALSO:
  - fees.go: Declarative fee schedule (rates, brackets, tax)
  - daily.go: One instructor, one day -> DailySettlement
  - monthly.go: Days -> MonthlySettlement with cap and tax
*/
package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Integer KRW (no subunits)
// =============================================================================

// Money is an amount of Korean won. The engine only ever produces whole-won
// values; decimal backing keeps rate multiplication exact until the final
// floor.
type Money struct {
	Value decimal.Decimal
}

func Won(n int64) Money {
	return Money{Value: decimal.NewFromInt(n)}
}

func (m Money) Add(o Money) Money        { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money        { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) MulInt(n int) Money       { return Money{Value: m.Value.Mul(decimal.NewFromInt(int64(n)))} }
func (m Money) IsZero() bool             { return m.Value.IsZero() }
func (m Money) IsPositive() bool         { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) Equal(o Money) bool       { return m.Value.Equal(o.Value) }
func (m Money) Int64() int64             { return m.Value.IntPart() }
func (m Money) String() string           { return m.Value.StringFixed(0) }

// MulRate multiplies by a fractional rate and floors to a whole won.
// Used for withholding tax (rates are statutory, flooring is statutory).
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{Value: m.Value.Mul(rate).Floor()}
}

// MarshalJSON emits a bare integer. Settlement values serialize directly
// for display and export; formatting (separators, currency symbol) is a
// presentation concern.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.StringFixed(0)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid money value %s: %w", data, err)
	}
	m.Value = d
	return nil
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type InstructorID string
type InstitutionID string
type ActivityID string

// City is a routing node. Distances are defined between cities, not
// institutions; two institutions in the same city are zero km apart.
type City string

// =============================================================================
// ROLES, LEVELS, STATUSES
// =============================================================================

// Role is the instructor's role on a class activity.
type Role string

const (
	RoleMain      Role = "MAIN"
	RoleAssistant Role = "ASSISTANT"
)

// Level is the institution's school level; it drives the base fee.
type Level string

const (
	LevelElementary Level = "ELEMENTARY"
	LevelMiddle     Level = "MIDDLE"
	LevelHigh       Level = "HIGH"
)

// Status is the lifecycle state of an activity. Only StatusCancelled
// changes settlement behavior: cancelled activities are shown but never
// paid.
type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusOpen      Status = "OPEN"
	StatusAssigned  Status = "ASSIGNED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// =============================================================================
// REFERENCE DATA - Immutable, loaded once per computation batch
// =============================================================================

// Instructor is the routing origin and identity for settlements.
type Instructor struct {
	ID       InstructorID
	Name     string
	HomeCity City
}

// Institution carries the three attributes the fee rules read:
// school level (base fee), remote-site flag, special-education flag.
type Institution struct {
	ID        InstitutionID
	Name      string
	City      City
	Level     Level
	IsRemote  bool
	IsSpecial bool
}

// =============================================================================
// ACTIVITY - Tagged union: class or event
// =============================================================================

// ActivityKind is the explicit discriminant of the Activity union.
type ActivityKind string

const (
	KindClass ActivityKind = "class"
	KindEvent ActivityKind = "event"
)

// Activity is one instructor action on one date. Exactly one of Class or
// Event is set, matching Kind. Use NewClassActivity / NewEventActivity; a
// hand-built Activity should pass Validate before entering the engine.
type Activity struct {
	ID           ActivityID
	InstructorID InstructorID
	Date         Date
	Kind         ActivityKind

	Class *ClassDetail
	Event *EventDetail
}

// ClassDetail is the class-specific payload of an Activity.
type ClassDetail struct {
	Status        Status
	Role          Role
	InstitutionID InstitutionID
	Sessions      int
	Students      int
	HasAssistant  bool

	// EquipmentTransport marks that the instructor hauled program equipment
	// for this activity. Paid once per day regardless of how many
	// activities set it.
	EquipmentTransport bool
}

// EventDetail is the event-specific payload of an Activity. Events are paid
// a flat hourly rate and receive no per-session allowances.
type EventDetail struct {
	Status             Status
	Hours              int
	EquipmentTransport bool
}

func NewClassActivity(id ActivityID, instructor InstructorID, date Date, detail ClassDetail) Activity {
	return Activity{ID: id, InstructorID: instructor, Date: date, Kind: KindClass, Class: &detail}
}

func NewEventActivity(id ActivityID, instructor InstructorID, date Date, detail EventDetail) Activity {
	return Activity{ID: id, InstructorID: instructor, Date: date, Kind: KindEvent, Event: &detail}
}

// Validate checks that the discriminant matches the payload.
func (a Activity) Validate() error {
	switch a.Kind {
	case KindClass:
		if a.Class == nil || a.Event != nil {
			return fmt.Errorf("activity %s: kind=class requires exactly the class payload", a.ID)
		}
	case KindEvent:
		if a.Event == nil || a.Class != nil {
			return fmt.Errorf("activity %s: kind=event requires exactly the event payload", a.ID)
		}
	default:
		return fmt.Errorf("activity %s: unknown kind %q", a.ID, a.Kind)
	}
	return nil
}

// Cancelled reports whether the activity is cancelled. Cancelled activities
// are retained for audit preview but contribute nothing payable.
func (a Activity) Cancelled() bool {
	switch a.Kind {
	case KindClass:
		return a.Class != nil && a.Class.Status == StatusCancelled
	case KindEvent:
		return a.Event != nil && a.Event.Status == StatusCancelled
	}
	return false
}

// EquipmentTransport reports the activity's equipment flag regardless of kind.
func (a Activity) EquipmentTransport() bool {
	switch a.Kind {
	case KindClass:
		return a.Class != nil && a.Class.EquipmentTransport
	case KindEvent:
		return a.Event != nil && a.Event.EquipmentTransport
	}
	return false
}
