package sim

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/xtding233/craps-backend/internal/craps"
)

var ErrHistoryExhausted = errors.New("roll history exhausted")

// DiceSource produces rolls for one table. Sources are not shared between
// sessions.
type DiceSource interface {
	Roll() (craps.Roll, error)
}

// crypto dice: default for live-looking sessions
type cryptoDice struct{}

func (cryptoDice) Roll() (craps.Roll, error) {
	return craps.NewRoll(cryptoFace(), cryptoFace())
}

// cryptoFace draws 1..6 without modulo bias; falls back to math/rand/v2 if
// the system source fails.
func cryptoFace() int {
	const limit = (1<<64 - 1) / 6 * 6
	var buf [8]byte
	for {
		if _, err := cryptoRand.Read(buf[:]); err != nil {
			return rand.IntN(6) + 1
		}
		u := binary.BigEndian.Uint64(buf[:])
		if u < limit {
			return int(u%6) + 1
		}
	}
}

func DefaultDice() DiceSource { return cryptoDice{} }

// Replicable dice (Monte Carlo, tests)
type seededDice struct{ r *rand.Rand }

func NewSeededDice(seed uint64) DiceSource {
	return &seededDice{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededDice) Roll() (craps.Roll, error) {
	return craps.NewRoll(s.r.IntN(6)+1, s.r.IntN(6)+1)
}

// ReplayDice plays back a recorded sequence, then reports ErrHistoryExhausted.
type ReplayDice struct {
	rolls []craps.Roll
	pos   int
}

func NewReplayDice(rolls []craps.Roll) *ReplayDice {
	return &ReplayDice{rolls: append([]craps.Roll(nil), rolls...)}
}

func (d *ReplayDice) Roll() (craps.Roll, error) {
	if d.pos >= len(d.rolls) {
		return craps.Roll{}, ErrHistoryExhausted
	}
	r := d.rolls[d.pos]
	d.pos++
	return craps.NewRoll(r.D1, r.D2)
}

// Remaining is the number of rolls not yet played back.
func (d *ReplayDice) Remaining() int { return len(d.rolls) - d.pos }

// RecordingDice remembers every roll handed out by its source.
type RecordingDice struct {
	src DiceSource

	mu    sync.Mutex
	rolls []craps.Roll
}

func NewRecordingDice(src DiceSource) *RecordingDice {
	if src == nil {
		src = DefaultDice()
	}
	return &RecordingDice{src: src}
}

func (d *RecordingDice) Roll() (craps.Roll, error) {
	r, err := d.src.Roll()
	if err != nil {
		return r, err
	}
	d.mu.Lock()
	d.rolls = append(d.rolls, r)
	d.mu.Unlock()
	return r, nil
}

// Rolls returns a copy of what has been recorded so far.
func (d *RecordingDice) Rolls() []craps.Roll {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]craps.Roll(nil), d.rolls...)
}
