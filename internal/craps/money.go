package craps

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrMoneyOverflow   = errors.New("money arithmetic overflows int64")
	ErrZeroDenominator = errors.New("payout ratio denominator must be > 0")
	ErrBadRatio        = errors.New("ratio must look like num:den")
)

// Money is an integer amount of chips. Settlement never uses floats.
type Money int64

// Ratio is a payout expressed as Num:Den, e.g. 7:6 on a place 6.
type Ratio struct {
	Num int64 `json:"num" yaml:"num"`
	Den int64 `json:"den" yaml:"den"`
}

// R is shorthand for Ratio{num, den}.
func R(num, den int64) Ratio { return Ratio{Num: num, Den: den} }

// Even money.
var Even = R(1, 1)

func (r Ratio) IsZero() bool   { return r.Num == 0 && r.Den == 0 }
func (r Ratio) String() string { return fmt.Sprintf("%d:%d", r.Num, r.Den) }

// ParseRatio reads "num:den". A bare integer n means n:1.
func ParseRatio(s string) (Ratio, error) {
	num, den, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		den = "1"
	}
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: %q", ErrBadRatio, s)
	}
	d, err := strconv.ParseInt(strings.TrimSpace(den), 10, 64)
	if err != nil {
		return Ratio{}, fmt.Errorf("%w: %q", ErrBadRatio, s)
	}
	if d <= 0 {
		return Ratio{}, fmt.Errorf("%w: %q", ErrZeroDenominator, s)
	}
	return R(n, d), nil
}

// Apply returns amount*Num/Den, truncated toward zero.
func (r Ratio) Apply(amount Money) (Money, error) {
	if r.Den <= 0 {
		return 0, ErrZeroDenominator
	}
	p, err := mulChecked(int64(amount), r.Num)
	if err != nil {
		return 0, err
	}
	return Money(p / r.Den), nil
}

// percent returns amount*pct/100, truncated.
func percent(amount Money, pct int64) (Money, error) {
	return R(pct, 100).Apply(amount)
}

func mulChecked(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, ErrMoneyOverflow
	}
	c := a * b
	if c/b != a {
		return 0, fmt.Errorf("%w: %d * %d", ErrMoneyOverflow, a, b)
	}
	return c, nil
}

func addChecked(a, b Money) (Money, error) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, fmt.Errorf("%w: %d + %d", ErrMoneyOverflow, a, b)
	}
	return c, nil
}
