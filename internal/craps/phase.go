package craps

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTotal = errors.New("dice total must be 2..12")

// PlayerID names a seated player.
type PlayerID string

// Phase is the derived table phase.
type Phase int

const (
	PhaseComeOut Phase = iota
	PhasePoint
)

func (p Phase) String() string {
	if p == PhasePoint {
		return "point"
	}
	return "come_out"
}

// PhaseSet is a small bitset of phases.
type PhaseSet uint8

func PhasesOf(ps ...Phase) PhaseSet {
	var s PhaseSet
	for _, p := range ps {
		s |= 1 << p
	}
	return s
}

func (s PhaseSet) Has(p Phase) bool { return s&(1<<p) != 0 }

func (s PhaseSet) String() string {
	var parts []string
	for _, p := range []Phase{PhaseComeOut, PhasePoint} {
		if s.Has(p) {
			parts = append(parts, p.String())
		}
	}
	return strings.Join(parts, "|")
}

// EventKind classifies what a roll did to the phase.
type EventKind int

const (
	EventNoChange EventKind = iota
	EventNaturalWin
	EventCrapsLoss
	EventPointSet
	EventPointMade
	EventSevenOut
)

func (k EventKind) String() string {
	switch k {
	case EventNaturalWin:
		return "natural_win"
	case EventCrapsLoss:
		return "craps_loss"
	case EventPointSet:
		return "point_set"
	case EventPointMade:
		return "point_made"
	case EventSevenOut:
		return "seven_out"
	default:
		return "no_change"
	}
}

// TransitionEvent is what Advance reports for one roll.
type TransitionEvent struct {
	Kind  EventKind
	Total int
	Point int // point set, made, lost, or still standing; 0 on come-out naturals/craps

	ATSProgress    []int // numbers covered for the first time this shooter
	SmallCompleted bool
	TallCompleted  bool
	AllCompleted   bool

	// RotateShooter is set on seven-out. The caller picks the next shooter
	// and calls SetShooter.
	RotateShooter bool
}

const (
	smallMask hitSet = 1<<2 | 1<<3 | 1<<4 | 1<<5 | 1<<6
	tallMask  hitSet = 1<<8 | 1<<9 | 1<<10 | 1<<11 | 1<<12
)

// hitSet holds totals 2..12 as bits.
type hitSet uint16

func (h hitSet) has(n int) bool { return h&(1<<n) != 0 }

func (h hitSet) list() []int {
	var out []int
	for n := 2; n <= 12; n++ {
		if h.has(n) {
			out = append(out, n)
		}
	}
	return out
}

// PhaseState is the per-table state machine: point, shooter and the
// All/Tall/Small progress of the current shooter.
type PhaseState struct {
	point   int
	shooter PlayerID
	hits    hitSet
}

func NewPhaseState(shooter PlayerID) *PhaseState {
	return &PhaseState{shooter: shooter}
}

func (ps *PhaseState) Phase() Phase {
	if ps.point != 0 {
		return PhasePoint
	}
	return PhaseComeOut
}

// Point returns the current point and whether one is set.
func (ps *PhaseState) Point() (int, bool) { return ps.point, ps.point != 0 }
func (ps *PhaseState) PuckOn() bool       { return ps.point != 0 }
func (ps *PhaseState) Shooter() PlayerID  { return ps.shooter }

// SetShooter hands the dice to id and resets shooter-scoped progress.
func (ps *PhaseState) SetShooter(id PlayerID) {
	ps.shooter = id
	ps.hits = 0
}

func (ps *PhaseState) SmallHits() []int { return (ps.hits & smallMask).list() }
func (ps *PhaseState) TallHits() []int  { return (ps.hits & tallMask).list() }

// Completed reports whether the shooter has already covered the set for an
// All, Tall or Small bet.
func (ps *PhaseState) Completed(k Kind) bool { return covers(ps.hits, k) }

// wouldComplete reports whether adding total completes the set for k.
func (ps *PhaseState) wouldComplete(k Kind, total int) bool {
	return covers(ps.hits|1<<total, k)
}

func covers(h hitSet, k Kind) bool {
	switch k {
	case Small:
		return h&smallMask == smallMask
	case Tall:
		return h&tallMask == tallMask
	case All:
		return h&(smallMask|tallMask) == smallMask|tallMask
	}
	return false
}

// Advance moves the state machine past one roll total.
func (ps *PhaseState) Advance(total int) (TransitionEvent, error) {
	if total < 2 || total > 12 {
		return TransitionEvent{}, fmt.Errorf("%w: %d", ErrInvalidTotal, total)
	}
	ev := TransitionEvent{Total: total}

	if total == 7 {
		ps.hits = 0
	} else if !ps.hits.has(total) {
		before := ps.hits
		ps.hits |= 1 << total
		ev.ATSProgress = []int{total}
		ev.SmallCompleted = !covers(before, Small) && covers(ps.hits, Small)
		ev.TallCompleted = !covers(before, Tall) && covers(ps.hits, Tall)
		ev.AllCompleted = !covers(before, All) && covers(ps.hits, All)
	}

	switch {
	case ps.point == 0:
		switch total {
		case 7, 11:
			ev.Kind = EventNaturalWin
		case 2, 3, 12:
			ev.Kind = EventCrapsLoss
		default:
			ps.point = total
			ev.Kind = EventPointSet
			ev.Point = total
		}
	case total == ps.point:
		ev.Kind = EventPointMade
		ev.Point = ps.point
		ps.point = 0
	case total == 7:
		ev.Kind = EventSevenOut
		ev.Point = ps.point
		ev.RotateShooter = true
		ps.point = 0
	default:
		ev.Point = ps.point
	}
	return ev, nil
}

// Snapshot is a read-only copy of the state for callers outside the table.
type Snapshot struct {
	Phase     Phase    `json:"phase"`
	Point     int      `json:"point,omitempty"`
	Shooter   PlayerID `json:"shooter"`
	SmallHits []int    `json:"small_hits,omitempty"`
	TallHits  []int    `json:"tall_hits,omitempty"`
}

func (ps *PhaseState) Snapshot() Snapshot {
	return Snapshot{
		Phase:     ps.Phase(),
		Point:     ps.point,
		Shooter:   ps.shooter,
		SmallHits: ps.SmallHits(),
		TallHits:  ps.TallHits(),
	}
}

// Hits returns the raw ATS bitset (bit n set when total n has been rolled).
func (ps *PhaseState) Hits() uint16 { return uint16(ps.hits) }
