package api

import (
	"strconv"

	"github.com/xtding233/craps-backend/internal/craps"
)

// EntryView is one catalog entry as served to clients.
type EntryView struct {
	Kind         string            `json:"kind"`
	Phases       string            `json:"phases"`
	Contract     bool              `json:"contract,omitempty"`
	OneRoll      bool              `json:"one_roll,omitempty"`
	OffOnComeOut bool              `json:"off_on_come_out,omitempty"`
	StaysUp      bool              `json:"stays_up,omitempty"`
	Odds         string            `json:"odds,omitempty"`   // odds kind that attaches to this bet
	Parent       string            `json:"parent,omitempty"` // for odds kinds
	Barred       []int             `json:"barred,omitempty"`
	Payout       map[string]string `json:"payout"` // number ("*" for any) to ratio
	Minimum      map[string]int64  `json:"minimum"`
}

// CatalogView is a whole catalog with the rules it came from.
type CatalogView struct {
	Table        string        `json:"table,omitempty"`
	Version      string        `json:"version,omitempty"`
	TableMinimum int64         `json:"table_minimum"`
	TableMaximum int64         `json:"table_maximum"`
	Unit         int64         `json:"unit"`
	VigPercent   int64         `json:"vig_percent"`
	LeaveUp      bool          `json:"leave_winning_bets_up"`
	Odds         map[int]int64 `json:"odds_multiple"`
	Entries      []EntryView   `json:"entries"`
}

// RenderCatalog lists every kind in declaration order.
func RenderCatalog(cat *craps.Catalog) CatalogView {
	rules := cat.Rules()
	v := CatalogView{
		TableMinimum: int64(rules.TableMinimum),
		TableMaximum: int64(rules.TableMaximum),
		Unit:         int64(rules.Unit),
		VigPercent:   rules.VigPercent,
		LeaveUp:      rules.LeaveWinningBetsUp,
		Odds:         rules.OddsMultiple,
	}
	for _, k := range craps.Kinds() {
		e, err := cat.Lookup(k)
		if err != nil {
			continue
		}
		ev := EntryView{
			Kind:         k.String(),
			Phases:       e.Phases.String(),
			Contract:     e.Contract,
			OneRoll:      e.OneRoll,
			OffOnComeOut: e.OffOnComeOut,
			StaysUp:      e.StaysUp,
			Barred:       e.Barred,
			Payout:       make(map[string]string),
			Minimum:      make(map[string]int64),
		}
		if e.Linked != craps.KindUnknown {
			ev.Odds = e.Linked.String()
		}
		if e.Parent != craps.KindUnknown {
			ev.Parent = e.Parent.String()
		}
		switch {
		case !e.Payout.Flat.IsZero():
			ev.Payout["*"] = e.Payout.Flat.String()
		default:
			for n, r := range e.Payout.ByNumber {
				ev.Payout[n.String()] = r.String()
			}
			if !e.Payout.Default.IsZero() {
				ev.Payout["*"] = e.Payout.Default.String()
			}
		}
		if e.Arity == craps.AritySingle {
			for _, n := range e.Numbers {
				ev.Minimum[strconv.Itoa(n)] = int64(cat.MinimumBet(k, craps.Single(n)))
			}
		} else {
			ev.Minimum["*"] = int64(cat.MinimumBet(k, craps.NoNumber))
		}
		v.Entries = append(v.Entries, ev)
	}
	return v
}
