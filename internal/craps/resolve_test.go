package craps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func activeBet(t require.TestingT, cat *Catalog, k Kind, amt Money, n Number) *Wager {
	w, err := cat.CreateBet(k, amt, alice, n)
	require.NoError(t, err)
	w.ID = 1
	w.Status = StatusActive
	return w
}

func pointState(t require.TestingT, point int) *PhaseState {
	ps := NewPhaseState(alice)
	if point != 0 {
		_, err := ps.Advance(point)
		require.NoError(t, err)
	}
	return ps
}

func TestResolveSingleRollBets(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)

	cases := []struct {
		name   string
		kind   Kind
		n      Number
		d1, d2 int
		want   Status
	}{
		{"field wins on 2", Field, NoNumber, 1, 1, StatusWon},
		{"field wins on 9", Field, NoNumber, 4, 5, StatusWon},
		{"field loses on 7", Field, NoNumber, 3, 4, StatusLost},
		{"field loses on 8", Field, NoNumber, 2, 6, StatusLost},
		{"yo wins", Proposition, Single(11), 5, 6, StatusWon},
		{"aces loses on 3", Proposition, Single(2), 1, 2, StatusLost},
		{"any seven", AnySeven, NoNumber, 6, 1, StatusWon},
		{"any seven miss", AnySeven, NoNumber, 6, 2, StatusLost},
		{"any craps on 12", AnyCraps, NoNumber, 6, 6, StatusWon},
		{"any craps miss", AnyCraps, NoNumber, 5, 6, StatusLost},
		{"hop reversed faces", Hop, Pair(2, 5), 5, 2, StatusWon},
		{"hop same total other faces", Hop, Pair(2, 5), 3, 4, StatusLost},
		{"hard 8 paired", Hardway, Single(8), 4, 4, StatusWon},
		{"hard 8 easy", Hardway, Single(8), 5, 3, StatusLost},
		{"hard 8 seven", Hardway, Single(8), 5, 2, StatusLost},
		{"hard 8 other", Hardway, Single(8), 3, 3, StatusActive},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := activeBet(t, cat, c.kind, 10, c.n)
			r, err := NewRoll(c.d1, c.d2)
			require.NoError(t, err)
			require.NoError(t, cat.Resolve(w, r, pointState(t, 0)))
			assert.Equal(t, c.want, w.Status)
			if c.want.Terminal() {
				assert.Equal(t, r, w.ResolvedBy)
			}
		})
	}
}

func TestFieldRatioRekeyedOnWin(t *testing.T) {
	rules := DefaultHouseRules()
	rules.Field12 = R(3, 1)
	cat, err := NewCatalog(rules)
	require.NoError(t, err)

	w := activeBet(t, cat, Field, 10, NoNumber)
	require.NoError(t, cat.Resolve(w, Roll{6, 6}, pointState(t, 0)))
	assert.Equal(t, R(3, 1), w.Ratio)

	w = activeBet(t, cat, Field, 10, NoNumber)
	require.NoError(t, cat.Resolve(w, Roll{4, 6}, pointState(t, 0)))
	assert.Equal(t, R(1, 1), w.Ratio)
}

func TestPlaceIsOffOnComeOut(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)
	w := activeBet(t, cat, Place, 12, Single(6))

	require.NoError(t, cat.Resolve(w, Roll{3, 3}, pointState(t, 0)))
	assert.Equal(t, StatusInactive, w.Status)
	require.NoError(t, cat.Resolve(w, Roll{3, 4}, pointState(t, 0)))
	assert.Equal(t, StatusInactive, w.Status)

	require.NoError(t, cat.Resolve(w, Roll{2, 4}, pointState(t, 5)))
	assert.Equal(t, StatusWon, w.Status)
}

func TestLayInvertsPlace(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)

	w := activeBet(t, cat, Lay, 40, Single(4))
	require.NoError(t, cat.Resolve(w, Roll{3, 4}, pointState(t, 6)))
	assert.Equal(t, StatusWon, w.Status)

	w = activeBet(t, cat, Lay, 40, Single(4))
	require.NoError(t, cat.Resolve(w, Roll{1, 3}, pointState(t, 6)))
	assert.Equal(t, StatusLost, w.Status)
}

func TestDontBarredTwelvePushes(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)
	for _, k := range []Kind{DontPass, DontCome} {
		w := activeBet(t, cat, k, 10, NoNumber)
		require.NoError(t, cat.Resolve(w, Roll{6, 6}, pointState(t, 0)))
		assert.Equal(t, StatusPushed, w.Status, k.String())

		w = activeBet(t, cat, k, 10, NoNumber)
		require.NoError(t, cat.Resolve(w, Roll{1, 2}, pointState(t, 0)))
		assert.Equal(t, StatusWon, w.Status, k.String())
	}
}

func TestResolveOddsMirrorsParent(t *testing.T) {
	cases := []struct {
		parent Status
		want   Status
	}{
		{StatusWon, StatusWon},
		{StatusLost, StatusLost},
		{StatusPushed, StatusReturned},
		{StatusReturned, StatusReturned},
		{StatusActive, StatusActive},
	}
	for _, c := range cases {
		parent := &Wager{ID: 1, Kind: PassLine, Status: c.parent}
		odds := &Wager{ID: 2, Kind: PassOdds, Status: StatusActive, Parent: 1}
		require.NoError(t, ResolveOdds(odds, parent, Roll{2, 2}))
		assert.Equal(t, c.want, odds.Status, "parent %s", c.parent)
	}

	orphan := &Wager{ID: 3, Kind: ComeOdds, Status: StatusActive, Parent: 9}
	require.NoError(t, ResolveOdds(orphan, nil, Roll{2, 2}))
	assert.Equal(t, StatusReturned, orphan.Status)

	err := ResolveOdds(&Wager{Kind: Field, Status: StatusActive}, nil, Roll{1, 1})
	require.ErrorIs(t, err, ErrCorruptWager)
}

func TestResolveUnknownKind(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)
	w := &Wager{ID: 7, Kind: Kind(77), Status: StatusActive}
	err = cat.Resolve(w, Roll{1, 1}, pointState(t, 0))
	require.ErrorIs(t, err, ErrUnknownContractBet)
	var re *ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, WagerID(7), re.Wager)

	w = &Wager{ID: 8, Kind: PassOdds, Status: StatusActive}
	require.ErrorIs(t, cat.Resolve(w, Roll{1, 1}, pointState(t, 0)), ErrCorruptWager)
}

// TestResolveLeavesSettledWagersAlone checks that non-active wagers never
// change status, whatever the roll.
func TestResolveLeavesSettledWagersAlone(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)
	kinds := []Kind{PassLine, DontPass, Come, DontCome, Field, Place, Buy, Lay, Hardway,
		Proposition, AnySeven, AnyCraps, Hop, All, Tall, Small}

	rapid.Check(t, func(t *rapid.T) {
		k := rapid.SampledFrom(kinds).Draw(t, "kind")
		st := rapid.SampledFrom([]Status{StatusPending, StatusWon, StatusLost, StatusPushed, StatusReturned}).Draw(t, "status")
		d1 := rapid.IntRange(1, 6).Draw(t, "d1")
		d2 := rapid.IntRange(1, 6).Draw(t, "d2")
		point := rapid.SampledFrom([]int{0, 4, 5, 6, 8, 9, 10}).Draw(t, "point")

		e, _ := cat.entry(k)
		n := NoNumber
		switch e.Arity {
		case AritySingle:
			n = Single(rapid.SampledFrom(e.Numbers).Draw(t, "n"))
		case ArityPair:
			n = Pair(rapid.IntRange(1, 6).Draw(t, "a"), rapid.IntRange(1, 6).Draw(t, "b"))
		}
		w, err := cat.CreateBet(k, 10, alice, n)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		w.Status = st
		before := *w
		if err := cat.Resolve(w, Roll{d1, d2}, pointState(t, point)); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if *w != before {
			t.Fatalf("%s in %s changed: %+v -> %+v", k, st, before, *w)
		}
	})
}

// TestLineBetComeOut checks the come-out rule for every right and wrong line bet.
func TestLineBetComeOut(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		k := rapid.SampledFrom([]Kind{PassLine, Come}).Draw(t, "kind")
		d1 := rapid.IntRange(1, 6).Draw(t, "d1")
		d2 := rapid.IntRange(1, 6).Draw(t, "d2")
		w := activeBet(t, cat, k, 10, NoNumber)
		if err := cat.Resolve(w, Roll{d1, d2}, pointState(t, 0)); err != nil {
			t.Fatalf("resolve: %v", err)
		}
		switch total := d1 + d2; total {
		case 7, 11:
			if w.Status != StatusWon {
				t.Fatalf("%d: want won, got %s", total, w.Status)
			}
		case 2, 3, 12:
			if w.Status != StatusLost {
				t.Fatalf("%d: want lost, got %s", total, w.Status)
			}
		default:
			if w.Status != StatusActive || w.Number != Single(total) {
				t.Fatalf("%d: want active on %d, got %s on %s", total, total, w.Status, w.Number)
			}
		}
	})
}

func TestATSResolution(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)

	ps := NewPhaseState(alice)
	for _, total := range []int{2, 3, 4, 5} {
		_, err := ps.Advance(total)
		require.NoError(t, err)
	}
	small := activeBet(t, cat, Small, 5, NoNumber)
	require.NoError(t, cat.Resolve(small, Roll{4, 4}, ps))
	assert.Equal(t, StatusActive, small.Status)
	require.NoError(t, cat.Resolve(small, Roll{3, 3}, ps))
	assert.Equal(t, StatusWon, small.Status)

	tall := activeBet(t, cat, Tall, 5, NoNumber)
	require.NoError(t, cat.Resolve(tall, Roll{3, 4}, ps))
	assert.Equal(t, StatusLost, tall.Status)
}
