// resolve.go
package tablecfg

import (
	"fmt"
	"maps"

	"github.com/xtding233/craps-backend/internal/craps"
)

// Overrides carries request or flag overrides applied after the file layers.
type Overrides struct {
	TableMinimum *int64 `json:"table_minimum,omitempty"`
	TableMaximum *int64 `json:"table_maximum,omitempty"`
	Unit         *int64 `json:"unit,omitempty"`
	VigPercent   *int64 `json:"vig_percent,omitempty"`
	LeaveUp      *bool  `json:"leave_up,omitempty"`
	OddsMultiple *int64 `json:"odds_multiple,omitempty"` // same cap on every point
}

type Resolver interface {
	// Returns merged RawConfig and normalized house rules
	Resolve(table, variant string, o Overrides) (RawConfig, craps.HouseRules, error)
}

// Resolve merges default → table → variant → overrides and normalizes the
// result into house rules ready for craps.NewCatalog.
func (l *Loader) Resolve(table, variant string, o Overrides) (RawConfig, craps.HouseRules, error) {
	raw, err := l.LoadMerged(table, variant)
	if err != nil {
		return RawConfig{}, craps.HouseRules{}, err
	}
	raw = applyOverrides(raw, o)
	if err := ValidateRaw(raw); err != nil {
		return raw, craps.HouseRules{}, err
	}
	rules, err := Normalize(raw)
	if err != nil {
		return raw, craps.HouseRules{}, err
	}
	return raw, rules, nil
}

// IsZero reports whether no override is set.
func (o Overrides) IsZero() bool { return o == Overrides{} }

func applyOverrides(raw RawConfig, o Overrides) RawConfig {
	if o.TableMinimum != nil {
		raw.Limits.Minimum = o.TableMinimum
	}
	if o.TableMaximum != nil {
		raw.Limits.Maximum = o.TableMaximum
	}
	if o.Unit != nil {
		raw.Limits.Unit = o.Unit
	}
	if o.VigPercent != nil {
		raw.Vig = &VigConfig{Percent: o.VigPercent}
	}
	if o.LeaveUp != nil {
		raw.Winners = &WinnerConfig{LeaveUp: o.LeaveUp}
	}
	if o.OddsMultiple != nil {
		m := make(map[int]int64, 6)
		for _, n := range []int{4, 5, 6, 8, 9, 10} {
			m[n] = *o.OddsMultiple
		}
		raw.Odds = &OddsConfig{Multiples: m}
	}
	return raw
}

// Normalize turns a merged RawConfig into HouseRules, starting from
// craps.DefaultHouseRules for anything left unset.
func Normalize(raw RawConfig) (craps.HouseRules, error) {
	h := craps.DefaultHouseRules()
	if raw.Limits.Minimum != nil {
		h.TableMinimum = craps.Money(*raw.Limits.Minimum)
	}
	if raw.Limits.Maximum != nil {
		h.TableMaximum = craps.Money(*raw.Limits.Maximum)
	}
	if raw.Limits.Unit != nil {
		h.Unit = craps.Money(*raw.Limits.Unit)
	}

	var ratios []ratioField
	if raw.Field != nil {
		ratios = append(ratios, ratioField{raw.Field.Two, &h.Field2}, ratioField{raw.Field.Twelve, &h.Field12})
	}
	if raw.ATS != nil {
		ratios = append(ratios,
			ratioField{raw.ATS.Small, &h.SmallPays},
			ratioField{raw.ATS.Tall, &h.TallPays},
			ratioField{raw.ATS.All, &h.AllPays})
	}
	for _, r := range ratios {
		if r.src == "" {
			continue
		}
		v, err := craps.ParseRatio(r.src)
		if err != nil {
			return craps.HouseRules{}, err
		}
		*r.dst = v
	}

	if raw.Odds != nil {
		h.OddsMultiple = maps.Clone(raw.Odds.Multiples)
	}
	if raw.Vig != nil && raw.Vig.Percent != nil {
		h.VigPercent = *raw.Vig.Percent
	}
	if raw.Winners != nil && raw.Winners.LeaveUp != nil {
		h.LeaveWinningBetsUp = *raw.Winners.LeaveUp
	}
	if err := h.Validate(); err != nil {
		return craps.HouseRules{}, fmt.Errorf("table %q: %w", raw.Name, err)
	}
	return h, nil
}

type ratioField struct {
	src string
	dst *craps.Ratio
}
