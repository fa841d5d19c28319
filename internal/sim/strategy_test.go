package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/craps-backend/internal/craps"
)

func view(t *testing.T, point int, wagers ...craps.Wager) View {
	ps := craps.NewPhaseState("a")
	if point != 0 {
		_, err := ps.Advance(point)
		require.NoError(t, err)
	}
	return View{Player: "a", Balance: 1000, State: ps.Snapshot(), Wagers: wagers, Catalog: testCatalog(t)}
}

func TestPassLineOddsSizesToTableCap(t *testing.T) {
	line := craps.Wager{ID: 3, Kind: craps.PassLine, Amount: 10, Owner: "a", Number: craps.Single(4)}
	reqs := PassLineOdds{Amount: 10, Multiple: 5}.Bets(view(t, 4, line))
	require.Len(t, reqs, 1)
	assert.Equal(t, craps.PassOdds, reqs[0].Kind)
	assert.Equal(t, craps.WagerID(3), reqs[0].Parent)
	assert.Equal(t, craps.Money(30), reqs[0].Amount) // 3x on the 4

	odds := craps.Wager{ID: 4, Kind: craps.PassOdds, Parent: 3, Owner: "a"}
	assert.Empty(t, PassLineOdds{Amount: 10, Multiple: 5}.Bets(view(t, 4, line, odds)))
}

func TestPlace68RoundsToWholePayouts(t *testing.T) {
	reqs := Place68{Amount: 10}.Bets(view(t, 5))
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, craps.Money(12), r.Amount)
	}
	assert.Empty(t, Place68{Amount: 10}.Bets(view(t, 0)))
}

func TestATSSkipsCompletedSets(t *testing.T) {
	ps := craps.NewPhaseState("a")
	for _, total := range []int{2, 3, 4, 5, 6, 6, 4} {
		_, err := ps.Advance(total)
		require.NoError(t, err)
	}
	require.Equal(t, craps.PhaseComeOut, ps.Phase())
	v := View{Player: "a", State: ps.Snapshot(), Catalog: testCatalog(t)}
	reqs := ATS{Amount: 2}.Bets(v)
	var kinds []craps.Kind
	for _, r := range reqs {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []craps.Kind{craps.All, craps.Tall}, kinds)
}

func TestNewStrategy(t *testing.T) {
	for _, name := range StrategyNames() {
		s, err := NewStrategy(name, 10)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name())
	}
	_, err := NewStrategy("nope", 10)
	require.Error(t, err)
	assert.Equal(t, "passline+field", Combined{PassLine{}, Field{}}.Name())
}
