package craps

import (
	"fmt"
	"slices"
)

// SettledWager records the money movement for one wager.
type SettledWager struct {
	Wager      Wager // copy taken at settlement, Status is the outcome
	Payout     Money // credited to the owner, net of commission
	Commission Money
	Loss       Money // debited from the owner
	Removed    bool
	Balance    Money // owner balance afterwards
}

// Delta is the owner's balance change.
func (s SettledWager) Delta() Money { return s.Payout - s.Loss }

// Table owns the wagers of one game and the bankrolls of its players. It is
// not safe for concurrent use; one goroutine drives one table.
type Table struct {
	catalog *Catalog
	rules   HouseRules
	obs     Observer

	wagers  []*Wager // placement order; may hold removed wagers until compact
	index   map[WagerID]*Wager
	nextID  WagerID
	players map[PlayerID]Money
	seats   []PlayerID
}

// NewTable creates an empty table. obs may be nil.
func NewTable(cat *Catalog, obs Observer) *Table {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Table{
		catalog: cat,
		rules:   cat.rules,
		obs:     obs,
		index:   make(map[WagerID]*Wager),
		players: make(map[PlayerID]Money),
	}
}

func (t *Table) Catalog() *Catalog { return t.catalog }

// Seat adds a player with a starting bankroll. Re-seating resets the bankroll.
func (t *Table) Seat(id PlayerID, bankroll Money) {
	if _, ok := t.players[id]; !ok {
		t.seats = append(t.seats, id)
	}
	t.players[id] = bankroll
}

// Players returns player IDs in seating order.
func (t *Table) Players() []PlayerID { return slices.Clone(t.seats) }

func (t *Table) Balance(id PlayerID) (Money, bool) {
	b, ok := t.players[id]
	return b, ok
}

// Risk is the total amount id has on the table.
func (t *Table) Risk(id PlayerID) Money {
	var sum Money
	for _, w := range t.live() {
		if w.Owner == id {
			sum += w.Amount
		}
	}
	return sum
}

// Wagers returns copies of the live wagers in placement order.
func (t *Table) Wagers() []Wager {
	live := t.live()
	out := make([]Wager, len(live))
	for i, w := range live {
		out[i] = *w
	}
	return out
}

// Get returns a copy of a live wager.
func (t *Table) Get(id WagerID) (Wager, bool) {
	w, ok := t.index[id]
	if !ok {
		return Wager{}, false
	}
	return *w, true
}

func (t *Table) live() []*Wager {
	out := make([]*Wager, 0, len(t.index))
	for _, w := range t.wagers {
		if _, ok := t.index[w.ID]; ok {
			out = append(out, w)
		}
	}
	return out
}

func (t *Table) lookup(id WagerID) *Wager { return t.index[id] }

// Place validates w against the catalog, house rules and table state, then
// puts it on the table. Checks run in a fixed order so the first failing
// rule is the one reported.
func (t *Table) Place(w *Wager, ps *PhaseState) (WagerID, error) {
	if w.ID != 0 || w.Status != StatusPending {
		return 0, placementErr(ErrAlreadyPlaced, w, "")
	}
	e, err := t.catalog.entry(w.Kind)
	if err != nil {
		return 0, err
	}
	if w.Kind.IsOdds() {
		if w.Parent == 0 {
			return 0, creationErr(ErrParentRequired, w.Kind, "parent id is zero")
		}
	} else {
		if w.Parent != 0 {
			return 0, creationErr(ErrParentForbidden, w.Kind, "only odds attach to a parent")
		}
		if err := e.validNumber(w.Number); err != nil {
			return 0, err
		}
	}
	// the catalog and house rules own these, whatever the caller filled in
	w.Contract = e.Contract
	w.Phases = e.Phases
	w.Unit = t.rules.Unit
	w.Ratio = Ratio{}
	if !w.Kind.IsOdds() {
		if r, err := e.Payout.lookup(w.Kind, w.Number); err == nil {
			w.Ratio = r
		}
	}

	bankroll, ok := t.players[w.Owner]
	if !ok {
		return 0, placementErr(ErrUnknownPlayer, w, "")
	}
	if !e.Phases.Has(ps.Phase()) {
		return 0, placementErr(ErrPhaseNotValid, w, "%s is placed during %s", w.Kind, e.Phases)
	}

	var parent *Wager
	if w.Kind.IsOdds() {
		parent = t.index[w.Parent]
		if parent == nil || parent.Kind != e.Parent {
			return 0, placementErr(ErrMissingParentBet, w, "want %s #%d", e.Parent, w.Parent)
		}
		if parent.Owner != w.Owner {
			return 0, placementErr(ErrOwnershipMismatch, w, "parent belongs to %s", parent.Owner)
		}
		if parent.Number.IsZero() {
			return 0, placementErr(ErrParentNotEstablished, w, "")
		}
	}

	if t.duplicate(w) {
		return 0, placementErr(ErrDuplicateBet, w, "%s on %s", w.Kind, w.Number)
	}
	if w.Kind.IsATS() && ps.Completed(w.Kind) {
		return 0, placementErr(ErrAlreadyCompleted, w, "")
	}

	if parent != nil {
		if w.Amount < 1 {
			return 0, placementErr(ErrBelowMinimum, w, "odds must be > 0")
		}
		limit, err := mulChecked(int64(parent.Amount), t.rules.OddsMultipleFor(parent.Number.Value()))
		if err != nil {
			return 0, err
		}
		if int64(w.Amount) > limit {
			return 0, placementErr(ErrAboveMaximum, w, "odds capped at %d", limit)
		}
	} else {
		floor := Money(1)
		if e.TableMinimum {
			floor = t.rules.TableMinimum
		}
		if w.Amount < floor {
			return 0, placementErr(ErrBelowMinimum, w, "%d < %d", w.Amount, floor)
		}
		if w.Amount > t.rules.TableMaximum {
			return 0, placementErr(ErrAboveMaximum, w, "%d > %d", w.Amount, t.rules.TableMaximum)
		}
	}

	unit := w.Unit
	if w.Amount%unit != 0 {
		return 0, placementErr(ErrInvalidUnitSize, w, "%d is not a multiple of %d", w.Amount, unit)
	}

	if need := t.Risk(w.Owner) + w.Amount; need > bankroll {
		return 0, placementErr(ErrInsufficientFunds, w, "need %d, have %d", need, bankroll)
	}

	if parent != nil {
		w.Number = parent.Number
		r, err := e.Payout.lookup(w.Kind, w.Number)
		if err != nil {
			return 0, err
		}
		w.Ratio = r
	}

	t.nextID++
	w.ID = t.nextID
	w.Status = StatusActive
	if e.OffOnComeOut && ps.Phase() == PhaseComeOut {
		w.Status = StatusInactive
	}
	t.wagers = append(t.wagers, w)
	t.index[w.ID] = w
	return w.ID, nil
}

func (t *Table) duplicate(w *Wager) bool {
	for _, x := range t.live() {
		if x.Owner != w.Owner || x.Kind != w.Kind {
			continue
		}
		if w.Kind.IsOdds() {
			if x.Parent == w.Parent {
				return true
			}
			continue
		}
		if x.Number == w.Number {
			return true
		}
	}
	return false
}

// CheckAndResolve resolves every live wager against roll in two passes:
// non-odds first, then odds. ps must be the state before Advance is called
// for this roll. It returns the wagers that became terminal.
func (t *Table) CheckAndResolve(roll Roll, ps *PhaseState) ([]*Wager, error) {
	var base, odds []*Wager
	for _, w := range t.live() {
		if w.Kind.IsOdds() {
			odds = append(odds, w)
		} else {
			base = append(base, w)
		}
	}
	return resolveRoll(t.catalog, base, odds, roll, ps, t.lookup)
}

// Settle moves money for resolved wagers and removes or retains them.
// Parents are always settled before their odds. A wager already removed is
// skipped, so settling the same slice twice is harmless.
func (t *Table) Settle(resolved []*Wager) ([]SettledWager, error) {
	var out []SettledWager
	for _, w := range resolved {
		s, err := t.settle(w)
		if err != nil {
			return out, err
		}
		out = append(out, s...)
	}

	// anything still terminal, and odds whose parent has gone
	for _, w := range t.live() {
		if w.Kind.IsOdds() && t.index[w.Parent] == nil && !w.Status.Terminal() {
			w.Status = StatusReturned
		}
		if !w.Status.Terminal() {
			continue
		}
		s, err := t.settle(w)
		if err != nil {
			return out, err
		}
		out = append(out, s...)
	}
	t.compact()
	return out, nil
}

func (t *Table) settle(w *Wager) ([]SettledWager, error) {
	if t.index[w.ID] != w {
		return nil, nil
	}
	e, err := t.catalog.entry(w.Kind)
	if err != nil {
		return nil, &ResolutionError{Code: CodeUnknownContractBet, Wager: w.ID, Kind: w.Kind, Message: "settle", Cause: err}
	}

	var s SettledWager
	switch w.Status {
	case StatusLost:
		s.Loss = w.Amount
		if err := t.credit(w.Owner, -w.Amount); err != nil {
			return nil, err
		}
		s.Removed = true

	case StatusWon:
		gross, err := w.Ratio.Apply(w.Amount)
		if err != nil {
			return nil, &ResolutionError{Code: CodeCorruptWager, Wager: w.ID, Kind: w.Kind, Message: "payout", Cause: err}
		}
		switch w.Kind {
		case Buy:
			s.Commission, err = percent(w.Amount, t.rules.VigPercent)
		case Lay:
			s.Commission, err = percent(gross, t.rules.VigPercent)
		}
		if err != nil {
			return nil, err
		}
		s.Payout = max(gross-s.Commission, 0)
		if err := t.credit(w.Owner, s.Payout); err != nil {
			return nil, err
		}
		s.Removed = w.Contract || !e.StaysUp || !t.rules.LeaveWinningBetsUp || w.Kind.IsATS()

	case StatusPushed, StatusReturned:
		s.Removed = true

	default:
		return nil, nil
	}

	s.Wager = *w
	s.Balance = t.players[w.Owner]
	if s.Removed {
		delete(t.index, w.ID)
	} else {
		w.Status = StatusActive
	}
	t.obs.OnSettled(s)
	out := []SettledWager{s}

	// pushes and returns leave children to their own resolution
	if w.Status == StatusPushed || w.Status == StatusReturned || !s.Removed {
		return out, nil
	}
	for _, c := range t.children(w.ID) {
		if !c.Status.Terminal() {
			c.Status = w.Status
			c.ResolvedBy = w.ResolvedBy
		}
		cs, err := t.settle(c)
		if err != nil {
			return out, err
		}
		out = append(out, cs...)
	}
	return out, nil
}

func (t *Table) children(id WagerID) []*Wager {
	var out []*Wager
	for _, w := range t.live() {
		if w.Parent == id {
			out = append(out, w)
		}
	}
	return out
}

func (t *Table) credit(id PlayerID, amt Money) error {
	b, ok := t.players[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, id)
	}
	nb, err := addChecked(b, amt)
	if err != nil {
		return err
	}
	t.players[id] = nb
	return nil
}

// TakeDown returns a non-contract wager to its owner. Odds attached to it
// come down with it.
func (t *Table) TakeDown(id WagerID) ([]SettledWager, error) {
	w, ok := t.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrWagerNotFound, id)
	}
	if w.Contract {
		return nil, fmt.Errorf("%w: %s #%d", ErrContractBet, w.Kind, id)
	}
	w.Status = StatusReturned
	out, err := t.settle(w)
	if err != nil {
		return out, err
	}
	for _, c := range t.children(id) {
		c.Status = StatusReturned
		cs, err := t.settle(c)
		if err != nil {
			return out, err
		}
		out = append(out, cs...)
	}
	t.compact()
	return out, nil
}

func (t *Table) compact() {
	t.wagers = slices.DeleteFunc(t.wagers, func(w *Wager) bool {
		return t.index[w.ID] != w
	})
}
