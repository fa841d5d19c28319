package craps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryKindHasAnEntry(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)
	for _, k := range Kinds() {
		e, err := cat.Lookup(k)
		require.NoError(t, err, k.String())
		assert.Equal(t, k, e.Kind)
		assert.NotZero(t, e.Phases, k.String())
	}
	_, err = cat.Lookup(Kind(99))
	require.ErrorIs(t, err, ErrUnknownBetKind)
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("big_red")
	require.ErrorIs(t, err, ErrUnknownBetKind)
}

func TestPayoutFor(t *testing.T) {
	rules := DefaultHouseRules()
	rules.Field12 = R(3, 1)
	cat, err := NewCatalog(rules)
	require.NoError(t, err)

	cases := []struct {
		kind Kind
		n    Number
		want Ratio
	}{
		{PassLine, NoNumber, R(1, 1)},
		{Place, Single(6), R(7, 6)},
		{Place, Single(5), R(7, 5)},
		{Place, Single(10), R(9, 5)},
		{Buy, Single(4), R(2, 1)},
		{Lay, Single(9), R(2, 3)},
		{PassOdds, Single(8), R(6, 5)},
		{DontComeOdds, Single(4), R(1, 2)},
		{Field, Single(2), R(2, 1)},
		{Field, Single(12), R(3, 1)},
		{Field, Single(9), R(1, 1)}, // default
		{Hardway, Single(8), R(9, 1)},
		{Proposition, Single(11), R(15, 1)},
		{Hop, Pair(3, 3), R(30, 1)},
		{Hop, Pair(5, 2), R(15, 1)},
		{Small, NoNumber, R(34, 1)},
	}
	for _, c := range cases {
		got, err := cat.PayoutFor(c.kind, c.n)
		require.NoError(t, err, "%s %s", c.kind, c.n)
		assert.Equal(t, c.want, got, "%s %s", c.kind, c.n)
	}

	_, err = cat.PayoutFor(Place, Single(7))
	require.ErrorIs(t, err, ErrInvalidPayoutLookup)
}

func TestQueries(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)

	assert.True(t, cat.IsContract(PassLine))
	assert.True(t, cat.IsContract(Come))
	assert.False(t, cat.IsContract(DontPass))
	assert.False(t, cat.IsContract(Place))

	k, ok := cat.LinkedKind(PassLine)
	assert.True(t, ok)
	assert.Equal(t, PassOdds, k)
	k, ok = cat.LinkedKind(DontCome)
	assert.True(t, ok)
	assert.Equal(t, DontComeOdds, k)
	_, ok = cat.LinkedKind(Field)
	assert.False(t, ok)

	assert.Equal(t, Money(10), cat.MinimumBet(PassLine, NoNumber))
	assert.Equal(t, Money(12), cat.MinimumBet(Place, Single(6)))
	assert.Equal(t, Money(10), cat.MinimumBet(Place, Single(5)))
	assert.Equal(t, Money(5), cat.MinimumBet(PassOdds, Single(8)))
	assert.Equal(t, Money(2), cat.MinimumBet(PassOdds, Single(9)))
	assert.Equal(t, Money(1), cat.MinimumBet(AnySeven, NoNumber))
}

func TestCatalogIsolatedFromCallers(t *testing.T) {
	rules := DefaultHouseRules()
	cat, err := NewCatalog(rules)
	require.NoError(t, err)

	rules.OddsMultiple[6] = 100
	assert.Equal(t, int64(5), cat.Rules().OddsMultipleFor(6))

	e, err := cat.Lookup(Place)
	require.NoError(t, err)
	e.Payout.ByNumber[Single(6)] = R(1, 1)
	got, err := cat.PayoutFor(Place, Single(6))
	require.NoError(t, err)
	assert.Equal(t, R(7, 6), got)
}

func TestNewCatalogRejectsBadRules(t *testing.T) {
	rules := DefaultHouseRules()
	rules.TableMinimum = 0
	rules.Unit = 0
	rules.Field2 = R(0, 1)
	_, err := NewCatalog(rules)
	require.ErrorIs(t, err, ErrHouseRules)
	assert.Contains(t, err.Error(), "table minimum")
	assert.Contains(t, err.Error(), "unit")
	assert.Contains(t, err.Error(), "field2")
}

func TestCreateBetErrors(t *testing.T) {
	cat, err := NewCatalog(DefaultHouseRules())
	require.NoError(t, err)

	cases := []struct {
		name string
		kind Kind
		n    Number
		want error
	}{
		{"unknown kind", Kind(42), NoNumber, ErrUnknownBetKind},
		{"place needs number", Place, NoNumber, ErrNumberRequired},
		{"place on seven", Place, Single(7), ErrInvalidNumber},
		{"place with pair", Place, Pair(3, 3), ErrWrongArity},
		{"pass line with number", PassLine, Single(6), ErrNumberForbidden},
		{"hop with total", Hop, Single(7), ErrWrongArity},
		{"hop needs pair", Hop, NoNumber, ErrNumberRequired},
		{"hop face out of range", Hop, Pair(0, 3), ErrInvalidNumber},
		{"hardway on five", Hardway, Single(5), ErrInvalidNumber},
		{"odds via CreateBet", PassOdds, NoNumber, ErrParentRequired},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := cat.CreateBet(c.kind, 10, alice, c.n)
			require.ErrorIs(t, err, c.want)
			var ce *CreationError
			require.ErrorAs(t, err, &ce)
		})
	}

	_, err = cat.CreateOdds(PassLine, 10, alice, 1)
	require.ErrorIs(t, err, ErrParentForbidden)
	_, err = cat.CreateOdds(PassOdds, 10, alice, 0)
	require.ErrorIs(t, err, ErrParentRequired)
}

func TestHopPairIsUnordered(t *testing.T) {
	assert.Equal(t, Pair(2, 5), Pair(5, 2))
	assert.Equal(t, "2-5", Pair(5, 2).String())
	assert.Equal(t, 0, Pair(5, 2).Value())
	assert.Equal(t, 6, Single(6).Value())
}
