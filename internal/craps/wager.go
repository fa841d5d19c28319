package craps

import "fmt"

// WagerID is a stable arena index. Zero means "not placed".
type WagerID uint64

// Status is where a wager is in its lifecycle.
type Status int

const (
	StatusPending  Status = iota // created, not on a table
	StatusActive                 // working
	StatusInactive               // on the table but off this roll
	StatusWon
	StatusLost
	StatusPushed   // barred roll: stake returned
	StatusReturned // taken down or orphaned: stake returned
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	case StatusPushed:
		return "pushed"
	case StatusReturned:
		return "returned"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Terminal reports whether the wager must be settled.
func (s Status) Terminal() bool { return s >= StatusWon }

// Wager is one bet instance.
type Wager struct {
	ID       WagerID
	Kind     Kind
	Amount   Money
	Owner    PlayerID
	Ratio    Ratio // payout for the current number; re-keyed when the number moves
	Status   Status
	Number   Number
	Parent   WagerID // odds only
	Contract bool
	Phases   PhaseSet
	Unit     Money

	// ResolvedBy is the roll that moved the wager to a terminal status.
	ResolvedBy Roll
}

func (w *Wager) String() string {
	return fmt.Sprintf("#%d %s %s $%d [%s]", w.ID, w.Owner, w.Kind, w.Amount, w.Status)
}

// CreateBet builds a pending non-odds wager after checking kind and number
// against the catalog. Limits and bankroll are checked by Table.Place.
func (c *Catalog) CreateBet(k Kind, amount Money, owner PlayerID, n Number) (*Wager, error) {
	e, err := c.entry(k)
	if err != nil {
		return nil, err
	}
	if k.IsOdds() {
		return nil, creationErr(ErrParentRequired, k, "use CreateOdds")
	}
	if err := e.validNumber(n); err != nil {
		return nil, err
	}
	w := &Wager{
		Kind:     k,
		Amount:   amount,
		Owner:    owner,
		Status:   StatusPending,
		Number:   n,
		Contract: e.Contract,
		Phases:   e.Phases,
		Unit:     c.rules.Unit,
	}
	// line and come bets have a flat ratio; numbered kinds key on n
	if r, err := e.Payout.lookup(k, n); err == nil {
		w.Ratio = r
	}
	return w, nil
}

// CreateOdds builds a pending odds wager attached to parent. The number and
// ratio are bound at placement, from the parent.
func (c *Catalog) CreateOdds(k Kind, amount Money, owner PlayerID, parent WagerID) (*Wager, error) {
	e, err := c.entry(k)
	if err != nil {
		return nil, err
	}
	if !k.IsOdds() {
		return nil, creationErr(ErrParentForbidden, k, "only odds attach to a parent")
	}
	if parent == 0 {
		return nil, creationErr(ErrParentRequired, k, "parent id is zero")
	}
	return &Wager{
		Kind:   k,
		Amount: amount,
		Owner:  owner,
		Status: StatusPending,
		Parent: parent,
		Phases: e.Phases,
		Unit:   c.rules.Unit,
	}, nil
}
