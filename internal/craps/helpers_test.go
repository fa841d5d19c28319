package craps

import (
	"github.com/stretchr/testify/require"
)

const (
	alice PlayerID = "alice"
	bob   PlayerID = "bob"
)

func newTable(t require.TestingT, rules HouseRules) (*Catalog, *Table, *PhaseState) {
	cat, err := NewCatalog(rules)
	require.NoError(t, err)
	tbl := NewTable(cat, nil)
	tbl.Seat(alice, 1000)
	tbl.Seat(bob, 1000)
	return cat, tbl, NewPhaseState(alice)
}

func mustPlace(t require.TestingT, cat *Catalog, tbl *Table, ps *PhaseState, k Kind, amt Money, owner PlayerID, n Number) *Wager {
	w, err := cat.CreateBet(k, amt, owner, n)
	require.NoError(t, err)
	_, err = tbl.Place(w, ps)
	require.NoError(t, err)
	return w
}

func mustOdds(t require.TestingT, cat *Catalog, tbl *Table, ps *PhaseState, k Kind, amt Money, parent *Wager) *Wager {
	w, err := cat.CreateOdds(k, amt, parent.Owner, parent.ID)
	require.NoError(t, err)
	_, err = tbl.Place(w, ps)
	require.NoError(t, err)
	return w
}

// play runs one full roll cycle: resolve, settle, advance.
func play(t require.TestingT, tbl *Table, ps *PhaseState, d1, d2 int) ([]SettledWager, TransitionEvent) {
	r, err := NewRoll(d1, d2)
	require.NoError(t, err)
	resolved, err := tbl.CheckAndResolve(r, ps)
	require.NoError(t, err)
	settled, err := tbl.Settle(resolved)
	require.NoError(t, err)
	ev, err := ps.Advance(r.Total())
	require.NoError(t, err)
	return settled, ev
}

func balance(t require.TestingT, tbl *Table, id PlayerID) Money {
	b, ok := tbl.Balance(id)
	require.True(t, ok)
	return b
}
