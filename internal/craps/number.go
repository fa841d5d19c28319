package craps

import (
	"errors"
	"fmt"
)

var ErrInvalidDie = errors.New("die value must be 1..6")

// Number is the number a wager is bound to: nothing, a single total, or an
// unordered pair of dice faces. The zero value means "no number".
type Number struct {
	lo, hi int // single: lo=total, hi=0; pair: lo<=hi, both 1..6
}

// NoNumber is the empty Number.
var NoNumber Number

// Single returns a Number holding one total.
func Single(total int) Number { return Number{lo: total} }

// Pair returns an unordered pair; Pair(2,5) == Pair(5,2).
func Pair(a, b int) Number {
	if a > b {
		a, b = b, a
	}
	return Number{lo: a, hi: b}
}

func (n Number) IsZero() bool { return n.lo == 0 && n.hi == 0 }
func (n Number) IsPair() bool { return n.hi != 0 }

// Value returns the single total, or 0 for an empty or paired Number.
func (n Number) Value() int {
	if n.IsPair() {
		return 0
	}
	return n.lo
}

// Faces returns the two faces of a paired Number.
func (n Number) Faces() (int, int) { return n.lo, n.hi }

func (n Number) String() string {
	switch {
	case n.IsZero():
		return "-"
	case n.IsPair():
		return fmt.Sprintf("%d-%d", n.lo, n.hi)
	default:
		return fmt.Sprintf("%d", n.lo)
	}
}

// Roll is one throw of two dice.
type Roll struct {
	D1 int `json:"d1"`
	D2 int `json:"d2"`
}

// NewRoll validates both faces.
func NewRoll(d1, d2 int) (Roll, error) {
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return Roll{}, fmt.Errorf("%w: got (%d,%d)", ErrInvalidDie, d1, d2)
	}
	return Roll{D1: d1, D2: d2}, nil
}

func (r Roll) Total() int   { return r.D1 + r.D2 }
func (r Roll) IsPair() bool { return r.D1 == r.D2 }

// Faces returns the roll as an unordered pair Number.
func (r Roll) Faces() Number { return Pair(r.D1, r.D2) }

func (r Roll) String() string { return fmt.Sprintf("%d-%d", r.D1, r.D2) }
