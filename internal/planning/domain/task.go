package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/felixgeelhaar/planline/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle        = errors.New("task title must not be empty")
	ErrInvalidDerivation = errors.New("invalid derivation state")
)

// DerivationKind identifies where a task's date comes from.
type DerivationKind string

const (
	// DerivationManual means the date was set by hand and is authoritative.
	DerivationManual DerivationKind = "manual"
	// DerivationSequential means the date is the next business day after
	// the predecessor's anchor date.
	DerivationSequential DerivationKind = "sequential"
	// DerivationLinked means the date is shared with a linked group.
	DerivationLinked DerivationKind = "linked"
)

// Derivation is the tagged scheduling state of a task. The group id only
// exists on the linked kind, so a manual or sequential task can never carry
// group membership. A linked derivation additionally records whether this
// member feeds the group's date from the predecessor chain (at most one
// member of a group does).
type Derivation struct {
	kind    DerivationKind
	group   uuid.UUID
	chained bool
}

// ManualDerivation returns the manual scheduling state.
func ManualDerivation() Derivation {
	return Derivation{kind: DerivationManual}
}

// SequentialDerivation returns the chained-to-predecessor scheduling state.
func SequentialDerivation() Derivation {
	return Derivation{kind: DerivationSequential}
}

// LinkedDerivation returns the linked scheduling state for the given group.
func LinkedDerivation(group uuid.UUID) Derivation {
	return Derivation{kind: DerivationLinked, group: group}
}

// ChainedLinkedDerivation returns a linked state whose member also derives
// the group's date from its predecessor.
func ChainedLinkedDerivation(group uuid.UUID) Derivation {
	return Derivation{kind: DerivationLinked, group: group, chained: true}
}

// NewDerivation validates and builds a derivation from persisted parts.
func NewDerivation(kind DerivationKind, group uuid.UUID, chained bool) (Derivation, error) {
	switch kind {
	case DerivationManual, DerivationSequential:
		if group != uuid.Nil || chained {
			return Derivation{}, ErrInvalidDerivation
		}
		return Derivation{kind: kind}, nil
	case DerivationLinked:
		if group == uuid.Nil {
			return Derivation{}, ErrInvalidDerivation
		}
		return Derivation{kind: kind, group: group, chained: chained}, nil
	default:
		return Derivation{}, ErrInvalidDerivation
	}
}

// Kind returns the derivation kind.
func (d Derivation) Kind() DerivationKind { return d.kind }

// Group returns the linked group id, if any.
func (d Derivation) Group() (uuid.UUID, bool) {
	if d.kind != DerivationLinked {
		return uuid.Nil, false
	}
	return d.group, true
}

// InGroup reports whether the derivation belongs to the given group.
func (d Derivation) InGroup(group uuid.UUID) bool {
	return d.kind == DerivationLinked && d.group == group
}

// DependsOnPrevious reports whether the task's date is derived from its
// predecessor: sequential tasks always, linked tasks only when they carry
// the chain for their group.
func (d Derivation) DependsOnPrevious() bool {
	return d.kind == DerivationSequential || (d.kind == DerivationLinked && d.chained)
}

// Chained reports whether a linked member carries the chain dependency.
func (d Derivation) Chained() bool { return d.chained }

// Task is a scheduled unit of work on the site timeline.
type Task struct {
	sharedDomain.BaseEntity
	title      string
	trade      string
	date       time.Time
	position   int
	derivation Derivation
}

// NewTask creates a task at the given position. Dependent tasks start in
// the sequential state; the schedule walk will derive their date.
func NewTask(title, trade string, date time.Time, position int, dependent bool) (*Task, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}

	derivation := ManualDerivation()
	if dependent {
		derivation = SequentialDerivation()
	}

	return &Task{
		BaseEntity: sharedDomain.NewBaseEntity(),
		title:      title,
		trade:      trade,
		date:       DateOnly(date),
		position:   position,
		derivation: derivation,
	}, nil
}

// Getters
func (t *Task) Title() string          { return t.title }
func (t *Task) Trade() string          { return t.trade }
func (t *Task) Date() time.Time        { return t.date }
func (t *Task) Position() int          { return t.position }
func (t *Task) Derivation() Derivation { return t.derivation }

// DependsOnPrevious reports whether the task's date follows its predecessor.
func (t *Task) DependsOnPrevious() bool { return t.derivation.DependsOnPrevious() }

func (t *Task) setDate(date time.Time) {
	t.date = DateOnly(date)
	t.Touch()
}

func (t *Task) setPosition(position int) {
	if t.position == position {
		return
	}
	t.position = position
	t.Touch()
}

func (t *Task) setDerivation(d Derivation) {
	t.derivation = d
	t.Touch()
}

// Rename updates the task title.
func (t *Task) Rename(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.Touch()
	return nil
}

// RehydrateTask recreates a task from persisted state.
func RehydrateTask(
	id uuid.UUID,
	title, trade string,
	date time.Time,
	position int,
	derivation Derivation,
	createdAt, updatedAt time.Time,
) *Task {
	return &Task{
		BaseEntity: sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		title:      title,
		trade:      trade,
		date:       DateOnly(date),
		position:   position,
		derivation: derivation,
	}
}
