package craps

import (
	"errors"
	"fmt"
	"strings"
)

var ErrHouseRules = errors.New("invalid house rules")

// HouseRules are the per-table limits and toggles. A Catalog is built from
// one HouseRules value and carries it for the Table.
type HouseRules struct {
	TableMinimum Money `json:"table_minimum"` // applies to kinds flagged UsesTableMinimum; others start at 1
	TableMaximum Money `json:"table_maximum"`
	Unit         Money `json:"unit"`          // every amount must be a multiple of this

	Field2  Ratio `json:"field_2"`  // field pays on 2
	Field12 Ratio `json:"field_12"` // field pays on 12

	SmallPays Ratio `json:"small_pays"`
	TallPays  Ratio `json:"tall_pays"`
	AllPays   Ratio `json:"all_pays"`

	VigPercent int64 `json:"vig_percent"` // commission on buy (of stake) and lay (of win)

	// LeaveWinningBetsUp keeps non-contract multi-roll winners on the table.
	LeaveWinningBetsUp bool `json:"leave_winning_bets_up"`

	// OddsMultiple caps odds at parent.Amount * multiple, keyed by point.
	OddsMultiple map[int]int64 `json:"odds_multiple"`
}

// DefaultHouseRules is a $10 table with 3-4-5x odds.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		TableMinimum:       10,
		TableMaximum:       5000,
		Unit:               1,
		Field2:             R(2, 1),
		Field12:            R(2, 1),
		SmallPays:          R(34, 1),
		TallPays:           R(34, 1),
		AllPays:            R(175, 1),
		VigPercent:         5,
		LeaveWinningBetsUp: true,
		OddsMultiple:       map[int]int64{4: 3, 5: 4, 6: 5, 8: 5, 9: 4, 10: 3},
	}
}

// OddsMultipleFor returns the odds cap for a point number, 0 if none is set.
func (h HouseRules) OddsMultipleFor(n int) int64 { return h.OddsMultiple[n] }

// Validate reports every problem at once.
func (h HouseRules) Validate() error {
	var errs []string
	if h.TableMinimum < 1 {
		errs = append(errs, "table minimum must be >= 1")
	}
	if h.TableMaximum < h.TableMinimum {
		errs = append(errs, "table maximum must be >= table minimum")
	}
	if h.Unit < 1 {
		errs = append(errs, "unit must be >= 1")
	}
	ratios := []struct {
		name string
		r    Ratio
	}{
		{"field2", h.Field2}, {"field12", h.Field12},
		{"small", h.SmallPays}, {"tall", h.TallPays}, {"all", h.AllPays},
	}
	for _, x := range ratios {
		if x.r.Num <= 0 || x.r.Den <= 0 {
			errs = append(errs, fmt.Sprintf("%s payout must be positive, got %s", x.name, x.r))
		}
	}
	if h.VigPercent < 0 || h.VigPercent >= 100 {
		errs = append(errs, "vig percent must be in [0,100)")
	}
	for n, m := range h.OddsMultiple {
		if !isPointNumber(n) {
			errs = append(errs, fmt.Sprintf("odds multiple keyed by non-point %d", n))
		}
		if m < 0 {
			errs = append(errs, fmt.Sprintf("odds multiple for %d must be >= 0", n))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrHouseRules, strings.Join(errs, "; "))
	}
	return nil
}

func isPointNumber(n int) bool {
	switch n {
	case 4, 5, 6, 8, 9, 10:
		return true
	}
	return false
}
