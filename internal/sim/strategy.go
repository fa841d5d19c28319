package sim

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/xtding233/craps-backend/internal/craps"
)

// Request is one bet a strategy wants on the table. Parent is set for odds.
type Request struct {
	Kind   craps.Kind
	Amount craps.Money
	Number craps.Number
	Parent craps.WagerID
}

// View is what a strategy sees before each roll.
type View struct {
	Player  craps.PlayerID
	Balance craps.Money
	State   craps.Snapshot
	Wagers  []craps.Wager // the player's own live wagers
	Catalog *craps.Catalog
}

// Has reports whether the player already has k on n.
func (v View) Has(k craps.Kind, n craps.Number) bool {
	for _, w := range v.Wagers {
		if w.Kind == k && w.Number == n {
			return true
		}
	}
	return false
}

// HasOdds reports whether parent already carries odds.
func (v View) HasOdds(parent craps.WagerID) bool {
	for _, w := range v.Wagers {
		if w.Parent == parent {
			return true
		}
	}
	return false
}

func (v View) comeOut() bool { return v.State.Phase == craps.PhaseComeOut }

// Strategy decides what to bet. It must not keep references to the View.
type Strategy interface {
	Name() string
	Bets(v View) []Request
}

// PassLine bets the line on every come-out.
type PassLine struct{ Amount craps.Money }

func (PassLine) Name() string { return "passline" }
func (s PassLine) Bets(v View) []Request {
	if v.comeOut() && !hasKind(v, craps.PassLine) {
		return []Request{{Kind: craps.PassLine, Amount: s.Amount}}
	}
	return nil
}

// PassLineOdds adds odds up to Multiple times the line bet, capped by the table.
type PassLineOdds struct {
	Amount   craps.Money
	Multiple int64
}

func (PassLineOdds) Name() string { return "passline-odds" }
func (s PassLineOdds) Bets(v View) []Request {
	out := PassLine{Amount: s.Amount}.Bets(v)
	for _, w := range v.Wagers {
		if w.Kind != craps.PassLine || w.Number.IsZero() || v.HasOdds(w.ID) {
			continue
		}
		if r := oddsFor(v, w, s.Multiple); r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// DontPass bets the don't on every come-out.
type DontPass struct{ Amount craps.Money }

func (DontPass) Name() string { return "dontpass" }
func (s DontPass) Bets(v View) []Request {
	if v.comeOut() && !hasKind(v, craps.DontPass) {
		return []Request{{Kind: craps.DontPass, Amount: s.Amount}}
	}
	return nil
}

// ComeOdds keeps one come bet travelling and backs each moved come bet with odds.
type ComeOdds struct {
	Amount   craps.Money
	Multiple int64
}

func (ComeOdds) Name() string { return "come-odds" }
func (s ComeOdds) Bets(v View) []Request {
	var out []Request
	if !v.comeOut() && !v.Has(craps.Come, craps.NoNumber) {
		out = append(out, Request{Kind: craps.Come, Amount: s.Amount})
	}
	for _, w := range v.Wagers {
		if w.Kind != craps.Come || w.Number.IsZero() || v.HasOdds(w.ID) {
			continue
		}
		if r := oddsFor(v, w, s.Multiple); r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// Place68 places the 6 and 8 once a point is on.
type Place68 struct{ Amount craps.Money }

func (Place68) Name() string { return "place68" }
func (s Place68) Bets(v View) []Request {
	return placeNumbers(v, s.Amount, 6, 8)
}

// Field bets the field every roll.
type Field struct{ Amount craps.Money }

func (Field) Name() string { return "field" }
func (s Field) Bets(v View) []Request {
	if v.Has(craps.Field, craps.NoNumber) {
		return nil
	}
	return []Request{{Kind: craps.Field, Amount: s.Amount}}
}

// IronCross covers every total but 7 once a point is on: field plus place 5, 6, 8.
type IronCross struct{ Amount craps.Money }

func (IronCross) Name() string { return "iron-cross" }
func (s IronCross) Bets(v View) []Request {
	if v.comeOut() {
		return nil
	}
	out := placeNumbers(v, s.Amount, 5, 6, 8)
	return append(out, Field{Amount: s.Amount}.Bets(v)...)
}

// ATS plays All, Tall and Small for every new shooter.
type ATS struct{ Amount craps.Money }

func (ATS) Name() string { return "ats" }
func (s ATS) Bets(v View) []Request {
	if !v.comeOut() {
		return nil
	}
	var out []Request
	small := len(v.State.SmallHits) == 5
	tall := len(v.State.TallHits) == 5
	for _, k := range []craps.Kind{craps.All, craps.Tall, craps.Small} {
		if v.Has(k, craps.NoNumber) {
			continue
		}
		if (k == craps.Small && small) || (k == craps.Tall && tall) || (k == craps.All && small && tall) {
			continue
		}
		out = append(out, Request{Kind: k, Amount: s.Amount})
	}
	return out
}

// Combined runs several strategies for one player.
type Combined []Strategy

func (c Combined) Name() string {
	name := ""
	for i, s := range c {
		if i > 0 {
			name += "+"
		}
		name += s.Name()
	}
	return name
}

func (c Combined) Bets(v View) []Request {
	var out []Request
	for _, s := range c {
		out = append(out, s.Bets(v)...)
	}
	return out
}

func hasKind(v View, k craps.Kind) bool {
	for _, w := range v.Wagers {
		if w.Kind == k {
			return true
		}
	}
	return false
}

// oddsFor sizes odds on w at Multiple times its amount, held to the table cap.
func oddsFor(v View, w craps.Wager, multiple int64) *Request {
	linked, ok := v.Catalog.LinkedKind(w.Kind)
	if !ok || multiple <= 0 {
		return nil
	}
	tableCap := v.Catalog.Rules().OddsMultipleFor(w.Number.Value())
	m := min(multiple, tableCap)
	if m <= 0 {
		return nil
	}
	return &Request{Kind: linked, Amount: w.Amount * craps.Money(m), Parent: w.ID}
}

// placeNumbers places each number not already covered, sized up to whole-chip payouts.
func placeNumbers(v View, amount craps.Money, numbers ...int) []Request {
	if v.comeOut() {
		return nil
	}
	var out []Request
	for _, n := range numbers {
		num := craps.Single(n)
		if v.Has(craps.Place, num) {
			continue
		}
		amt := max(amount, v.Catalog.MinimumBet(craps.Place, num))
		if r, err := v.Catalog.PayoutFor(craps.Place, num); err == nil && r.Den > 1 {
			// round up so the payout is not truncated
			if rem := int64(amt) % r.Den; rem != 0 {
				amt += craps.Money(r.Den - rem)
			}
		}
		out = append(out, Request{Kind: craps.Place, Amount: amt, Number: num})
	}
	return out
}

var ErrUnknownStrategy = errors.New("unknown strategy")

var strategies = map[string]func(unit craps.Money) Strategy{
	"passline":      func(u craps.Money) Strategy { return PassLine{Amount: u} },
	"passline-odds": func(u craps.Money) Strategy { return PassLineOdds{Amount: u, Multiple: 2} },
	"dontpass":      func(u craps.Money) Strategy { return DontPass{Amount: u} },
	"come-odds":     func(u craps.Money) Strategy { return ComeOdds{Amount: u, Multiple: 2} },
	"place68":       func(u craps.Money) Strategy { return Place68{Amount: u} },
	"field":         func(u craps.Money) Strategy { return Field{Amount: u} },
	"iron-cross":    func(u craps.Money) Strategy { return IronCross{Amount: u} },
	"ats":           func(u craps.Money) Strategy { return ATS{Amount: max(u/5, 1)} },
}

// StrategyNames lists registered strategies, sorted.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewStrategy builds a fresh strategy by name with unit as its base bet.
func NewStrategy(name string, unit craps.Money) (Strategy, error) {
	f, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownStrategy, name, StrategyNames())
	}
	return f(unit), nil
}

// ownWagers filters a table's wagers down to one player's, keeping order.
func ownWagers(all []craps.Wager, id craps.PlayerID) []craps.Wager {
	return slices.DeleteFunc(all, func(w craps.Wager) bool { return w.Owner != id })
}
