package tablecfg

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/xtding233/craps-backend/internal/craps"
)

var ErrInvalidConfig = errors.New("config validation failed")

// ValidateRaw checks semantic constraints of a RawConfig. Unset fields are
// fine: they fall back to the engine defaults during Normalize.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// limits
	if cfg.Limits.Minimum != nil && *cfg.Limits.Minimum < 1 {
		errs = append(errs, "limits.minimum must be >= 1")
	}
	if cfg.Limits.Maximum != nil && *cfg.Limits.Maximum < 1 {
		errs = append(errs, "limits.maximum must be >= 1")
	}
	if cfg.Limits.Minimum != nil && cfg.Limits.Maximum != nil && *cfg.Limits.Maximum < *cfg.Limits.Minimum {
		errs = append(errs, "limits.maximum must be >= limits.minimum")
	}
	if cfg.Limits.Unit != nil && *cfg.Limits.Unit < 1 {
		errs = append(errs, "limits.unit must be >= 1")
	}

	// payout ratios
	checkRatio := func(name, v string) {
		if v == "" {
			return
		}
		r, err := craps.ParseRatio(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			return
		}
		if r.Num <= 0 {
			errs = append(errs, name+" must pay more than nothing")
		}
	}
	if cfg.Field != nil {
		checkRatio("field.two", cfg.Field.Two)
		checkRatio("field.twelve", cfg.Field.Twelve)
	}
	if cfg.ATS != nil {
		checkRatio("ats.small", cfg.ATS.Small)
		checkRatio("ats.tall", cfg.ATS.Tall)
		checkRatio("ats.all", cfg.ATS.All)
	}

	// odds
	if cfg.Odds != nil {
		points := slices.Sorted(maps.Keys(cfg.Odds.Multiples))
		for _, n := range points {
			switch n {
			case 4, 5, 6, 8, 9, 10:
			default:
				errs = append(errs, fmt.Sprintf("odds.multiples: %d is not a point", n))
			}
			if cfg.Odds.Multiples[n] < 0 {
				errs = append(errs, fmt.Sprintf("odds.multiples[%d] must be >= 0", n))
			}
		}
	}

	// vig
	if cfg.Vig != nil && cfg.Vig.Percent != nil {
		if *cfg.Vig.Percent < 0 || *cfg.Vig.Percent >= 100 {
			errs = append(errs, "vig.percent must be in [0,100)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
