package craps

import (
	"fmt"
	"maps"
	"slices"
)

// Arity says what kind of Number a bet carries.
type Arity int

const (
	ArityNone Arity = iota
	AritySingle
	ArityPair
)

// PayoutSpec is either a flat ratio or a table keyed by number with a default.
type PayoutSpec struct {
	Flat     Ratio
	ByNumber map[Number]Ratio
	Default  Ratio
}

// Entry is the immutable rule metadata for one Kind.
type Entry struct {
	Kind     Kind
	Phases   PhaseSet // phases in which the bet may be placed
	Arity    Arity
	Numbers  []int // valid totals when Arity == AritySingle
	Payout   PayoutSpec
	Contract bool
	Linked   Kind // odds kind that may attach to this bet
	Parent   Kind // for odds kinds, the kind they attach to
	Barred   []int

	OffOnComeOut bool // stays on the table but does not work on come-out rolls
	OneRoll      bool
	StaysUp      bool // eligible to stay up after a win
	TableMinimum bool // false means the minimum is 1
}

// Catalog maps every Kind to its Entry. It is built once from HouseRules and
// never mutated, so one Catalog can be shared by any number of tables.
type Catalog struct {
	rules   HouseRules
	entries map[Kind]*Entry
}

// NewCatalog validates rules and builds the rules table.
func NewCatalog(rules HouseRules) (*Catalog, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	rules.OddsMultiple = maps.Clone(rules.OddsMultiple)
	return &Catalog{rules: rules, entries: buildEntries(rules)}, nil
}

// Rules returns the house rules the catalog was built from.
func (c *Catalog) Rules() HouseRules {
	r := c.rules
	r.OddsMultiple = maps.Clone(c.rules.OddsMultiple)
	return r
}

// Lookup returns a copy of the entry for k.
func (c *Catalog) Lookup(k Kind) (Entry, error) {
	e, err := c.entry(k)
	if err != nil {
		return Entry{}, err
	}
	out := *e
	out.Numbers = slices.Clone(e.Numbers)
	out.Barred = slices.Clone(e.Barred)
	out.Payout.ByNumber = maps.Clone(e.Payout.ByNumber)
	return out, nil
}

func (c *Catalog) entry(k Kind) (*Entry, error) {
	e, ok := c.entries[k]
	if !ok {
		return nil, creationErr(ErrUnknownBetKind, k, "%d", int(k))
	}
	return e, nil
}

// PayoutFor returns the ratio paid for k bound to n: the flat ratio if the
// kind has one, else the keyed ratio, else the declared default.
func (c *Catalog) PayoutFor(k Kind, n Number) (Ratio, error) {
	e, err := c.entry(k)
	if err != nil {
		return Ratio{}, err
	}
	return e.Payout.lookup(k, n)
}

func (p PayoutSpec) lookup(k Kind, n Number) (Ratio, error) {
	if !p.Flat.IsZero() {
		return p.Flat, nil
	}
	if r, ok := p.ByNumber[n]; ok {
		return r, nil
	}
	if !p.Default.IsZero() {
		return p.Default, nil
	}
	return Ratio{}, fmt.Errorf("%w: %s on %s", ErrInvalidPayoutLookup, k, n)
}

// IsContract reports whether k cannot be taken down once working.
func (c *Catalog) IsContract(k Kind) bool {
	e, err := c.entry(k)
	return err == nil && e.Contract
}

// LinkedKind returns the odds kind that attaches to k, if any.
func (c *Catalog) LinkedKind(k Kind) (Kind, bool) {
	e, err := c.entry(k)
	if err != nil || e.Linked == KindUnknown {
		return KindUnknown, false
	}
	return e.Linked, true
}

// MinimumBet returns the smallest amount the table accepts for k on n that
// is also paid in whole chips (e.g. multiples of 6 on a place 6).
func (c *Catalog) MinimumBet(k Kind, n Number) Money {
	e, err := c.entry(k)
	if err != nil {
		return 0
	}
	base := Money(1)
	if e.TableMinimum {
		base = c.rules.TableMinimum
	}
	unit := c.rules.Unit
	if rem := base % unit; rem != 0 {
		base += unit - rem
	}
	r, err := e.Payout.lookup(k, n)
	if err != nil || r.Den <= 0 {
		return base
	}
	// at most Den steps before amount*Num is divisible by Den
	for amt, i := base, int64(0); i <= r.Den; amt, i = amt+unit, i+1 {
		if (int64(amt)*r.Num)%r.Den == 0 {
			return amt
		}
	}
	return base
}

func keyed(m map[int]Ratio) map[Number]Ratio {
	out := make(map[Number]Ratio, len(m))
	for n, r := range m {
		out[Single(n)] = r
	}
	return out
}

func buildEntries(h HouseRules) map[Kind]*Entry {
	var (
		both    = PhasesOf(PhaseComeOut, PhasePoint)
		comeOut = PhasesOf(PhaseComeOut)
		point   = PhasesOf(PhasePoint)
		points  = []int{4, 5, 6, 8, 9, 10}
	)
	trueOdds := keyed(map[int]Ratio{4: R(2, 1), 10: R(2, 1), 5: R(3, 2), 9: R(3, 2), 6: R(6, 5), 8: R(6, 5)})
	layOdds := keyed(map[int]Ratio{4: R(1, 2), 10: R(1, 2), 5: R(2, 3), 9: R(2, 3), 6: R(5, 6), 8: R(5, 6)})
	placePays := keyed(map[int]Ratio{4: R(9, 5), 10: R(9, 5), 5: R(7, 5), 9: R(7, 5), 6: R(7, 6), 8: R(7, 6)})

	hops := make(map[Number]Ratio, 6)
	for f := 1; f <= 6; f++ {
		hops[Pair(f, f)] = R(30, 1)
	}

	line := func(k, linked Kind, phases PhaseSet, contract bool, barred []int) *Entry {
		return &Entry{Kind: k, Phases: phases, Payout: PayoutSpec{Flat: Even},
			Contract: contract, Linked: linked, Barred: barred, TableMinimum: true}
	}
	odds := func(k, parent Kind, phases PhaseSet, pays map[Number]Ratio) *Entry {
		return &Entry{Kind: k, Phases: phases, Payout: PayoutSpec{ByNumber: maps.Clone(pays)}, Parent: parent}
	}
	numbered := func(k Kind, nums []int, pays map[Number]Ratio) *Entry {
		return &Entry{Kind: k, Phases: both, Arity: AritySingle, Numbers: nums,
			Payout: PayoutSpec{ByNumber: maps.Clone(pays)}, OffOnComeOut: true, StaysUp: true, TableMinimum: true}
	}
	oneRoll := func(k Kind, arity Arity, nums []int, spec PayoutSpec) *Entry {
		return &Entry{Kind: k, Phases: both, Arity: arity, Numbers: nums, Payout: spec, OneRoll: true, StaysUp: true}
	}
	ats := func(k Kind, pays Ratio) *Entry {
		return &Entry{Kind: k, Phases: comeOut, Payout: PayoutSpec{Flat: pays}}
	}

	entries := []*Entry{
		line(PassLine, PassOdds, comeOut, true, nil),
		line(DontPass, DontPassOdds, comeOut, false, []int{12}),
		line(Come, ComeOdds, point, true, nil),
		line(DontCome, DontComeOdds, point, false, []int{12}),

		odds(PassOdds, PassLine, point, trueOdds),
		odds(DontPassOdds, DontPass, point, layOdds),
		odds(ComeOdds, Come, both, trueOdds),
		odds(DontComeOdds, DontCome, both, layOdds),

		{Kind: Field, Phases: both, OneRoll: true, StaysUp: true, TableMinimum: true,
			Payout: PayoutSpec{ByNumber: map[Number]Ratio{Single(2): h.Field2, Single(12): h.Field12}, Default: Even}},

		numbered(Place, points, placePays),
		// Buy pays true odds less commission on the stake, so a 6 or 8
		// does not pay amount*7/6. That payout belongs to Place alone.
		numbered(Buy, points, trueOdds),
		numbered(Lay, points, layOdds),

		{Kind: Hardway, Phases: both, Arity: AritySingle, Numbers: []int{4, 6, 8, 10}, StaysUp: true,
			Payout: PayoutSpec{ByNumber: keyed(map[int]Ratio{4: R(7, 1), 10: R(7, 1), 6: R(9, 1), 8: R(9, 1)})}},

		oneRoll(Proposition, AritySingle, []int{2, 3, 11, 12},
			PayoutSpec{ByNumber: keyed(map[int]Ratio{2: R(30, 1), 12: R(30, 1), 3: R(15, 1), 11: R(15, 1)})}),
		oneRoll(AnySeven, ArityNone, nil, PayoutSpec{Flat: R(4, 1)}),
		oneRoll(AnyCraps, ArityNone, nil, PayoutSpec{Flat: R(7, 1)}),
		oneRoll(Hop, ArityPair, nil, PayoutSpec{ByNumber: hops, Default: R(15, 1)}),

		ats(All, h.AllPays),
		ats(Tall, h.TallPays),
		ats(Small, h.SmallPays),
	}

	out := make(map[Kind]*Entry, len(entries))
	for _, e := range entries {
		out[e.Kind] = e
	}
	return out
}

// validNumber checks n against the entry's arity and number list.
func (e *Entry) validNumber(n Number) error {
	switch e.Arity {
	case ArityNone:
		if !n.IsZero() {
			return creationErr(ErrNumberForbidden, e.Kind, "got %s", n)
		}
	case AritySingle:
		if n.IsZero() {
			return creationErr(ErrNumberRequired, e.Kind, "one of %v", e.Numbers)
		}
		if n.IsPair() {
			return creationErr(ErrWrongArity, e.Kind, "want a single total, got pair %s", n)
		}
		if !slices.Contains(e.Numbers, n.Value()) {
			return creationErr(ErrInvalidNumber, e.Kind, "%s not in %v", n, e.Numbers)
		}
	case ArityPair:
		if n.IsZero() {
			return creationErr(ErrNumberRequired, e.Kind, "a dice pair")
		}
		if !n.IsPair() {
			return creationErr(ErrWrongArity, e.Kind, "want a dice pair, got total %s", n)
		}
		a, b := n.Faces()
		if a < 1 || b > 6 {
			return creationErr(ErrInvalidNumber, e.Kind, "faces must be 1..6, got %s", n)
		}
	}
	return nil
}
