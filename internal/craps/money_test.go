package craps

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatioApplyTruncates(t *testing.T) {
	got, err := R(7, 6).Apply(10)
	require.NoError(t, err)
	assert.Equal(t, Money(11), got)

	got, err = R(1, 2).Apply(25) // lay 4: 12.5 truncated
	require.NoError(t, err)
	assert.Equal(t, Money(12), got)

	_, err = R(1, 0).Apply(10)
	require.ErrorIs(t, err, ErrZeroDenominator)
	_, err = R(math.MaxInt64, 1).Apply(2)
	require.ErrorIs(t, err, ErrMoneyOverflow)
}

func TestParseRatio(t *testing.T) {
	cases := map[string]Ratio{
		"2:1":     R(2, 1),
		" 7 : 6 ": R(7, 6),
		"34":      R(34, 1),
	}
	for in, want := range cases {
		got, err := ParseRatio(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "x:1", "1:y", "3:0", "3:-1"} {
		_, err := ParseRatio(bad)
		assert.Error(t, err, bad)
	}
}
