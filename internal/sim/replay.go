package sim

import (
	"context"

	"go.uber.org/zap"

	"github.com/xtding233/craps-backend/internal/craps"
)

// Replay re-runs a recorded roll sequence with the given strategies. With
// the same catalog, strategies and rolls the result is identical to the
// original session.
func Replay(ctx context.Context, id string, cat *craps.Catalog, strategies []string, unit, bankroll craps.Money, rolls []craps.Roll, log *zap.Logger) (SessionResult, error) {
	seats, err := Seats(strategies, unit, bankroll)
	if err != nil {
		return SessionResult{}, err
	}
	s, err := NewSession(SessionConfig{
		ID:       id,
		Catalog:  cat,
		Seats:    seats,
		Dice:     NewReplayDice(rolls),
		MaxRolls: len(rolls),
		Logger:   log,
	})
	if err != nil {
		return SessionResult{}, err
	}
	return s.Run(ctx)
}
