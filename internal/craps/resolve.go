package craps

// Resolve applies one roll to a non-odds wager. Wagers that are not Active
// (after the come-out on/off toggle for place, buy and lay) are left alone.
func (c *Catalog) Resolve(w *Wager, roll Roll, ps *PhaseState) error {
	e, err := c.entry(w.Kind)
	if err != nil {
		return &ResolutionError{Code: CodeUnknownContractBet, Wager: w.ID, Kind: w.Kind, Message: "not in catalog", Cause: err}
	}
	if e.OffOnComeOut {
		switch {
		case ps.Phase() == PhaseComeOut && w.Status == StatusActive:
			w.Status = StatusInactive
		case ps.Phase() == PhasePoint && w.Status == StatusInactive:
			w.Status = StatusActive
		}
	}
	if w.Status != StatusActive {
		return nil
	}

	t := roll.Total()
	switch w.Kind {
	case PassLine, Come:
		if w.Number.IsZero() {
			switch t {
			case 7, 11:
				w.Status = StatusWon
			case 2, 3, 12:
				w.Status = StatusLost
			default:
				w.Number = Single(t)
			}
			break
		}
		switch t {
		case w.Number.Value():
			w.Status = StatusWon
		case 7:
			w.Status = StatusLost
		}

	case DontPass, DontCome:
		if w.Number.IsZero() {
			switch {
			case isBarred(e, t):
				w.Status = StatusPushed
			case t == 2 || t == 3 || t == 12:
				w.Status = StatusWon
			case t == 7 || t == 11:
				w.Status = StatusLost
			default:
				w.Number = Single(t)
			}
			break
		}
		switch t {
		case 7:
			w.Status = StatusWon
		case w.Number.Value():
			w.Status = StatusLost
		}

	case Field:
		switch t {
		case 2, 3, 4, 9, 10, 11, 12:
			r, err := e.Payout.lookup(w.Kind, Single(t))
			if err != nil {
				return &ResolutionError{Code: CodeCorruptWager, Wager: w.ID, Kind: w.Kind, Message: "field ratio", Cause: err}
			}
			w.Ratio = r
			w.Status = StatusWon
		default:
			w.Status = StatusLost
		}

	case Place, Buy:
		switch t {
		case w.Number.Value():
			w.Status = StatusWon
		case 7:
			w.Status = StatusLost
		}

	case Lay:
		switch t {
		case 7:
			w.Status = StatusWon
		case w.Number.Value():
			w.Status = StatusLost
		}

	case Hardway:
		switch {
		case t == w.Number.Value() && roll.IsPair():
			w.Status = StatusWon
		case t == w.Number.Value(), t == 7:
			w.Status = StatusLost
		}

	case Proposition:
		w.Status = winOrLose(t == w.Number.Value())

	case AnySeven:
		w.Status = winOrLose(t == 7)

	case AnyCraps:
		w.Status = winOrLose(t == 2 || t == 3 || t == 12)

	case Hop:
		w.Status = winOrLose(roll.Faces() == w.Number)

	case All, Tall, Small:
		switch {
		case t == 7:
			w.Status = StatusLost
		case ps.wouldComplete(w.Kind, t):
			w.Status = StatusWon
		}

	case PassOdds, DontPassOdds, ComeOdds, DontComeOdds:
		return &ResolutionError{Code: CodeCorruptWager, Wager: w.ID, Kind: w.Kind, Message: "odds wager in the base pass"}

	default:
		return &ResolutionError{Code: CodeUnknownContractBet, Wager: w.ID, Kind: w.Kind, Message: "no resolution rule"}
	}

	if w.Status.Terminal() {
		w.ResolvedBy = roll
	}
	return nil
}

// ResolveOdds mirrors the parent's outcome onto an odds wager. parent must
// already have been resolved for this roll; nil means it left the table.
func ResolveOdds(w, parent *Wager, roll Roll) error {
	if !w.Kind.IsOdds() {
		return &ResolutionError{Code: CodeCorruptWager, Wager: w.ID, Kind: w.Kind, Message: "non-odds wager in the odds pass"}
	}
	if w.Status != StatusActive {
		return nil
	}
	if parent == nil {
		w.Status = StatusReturned
		w.ResolvedBy = roll
		return nil
	}
	switch parent.Status {
	case StatusWon:
		w.Status = StatusWon
	case StatusLost:
		w.Status = StatusLost
	case StatusPushed, StatusReturned:
		w.Status = StatusReturned
	default:
		return nil
	}
	w.ResolvedBy = roll
	return nil
}

// resolveRoll is the two-pass resolver. Every base wager is resolved before
// the first odds wager reads its parent. It returns the wagers that became
// terminal on this roll, base wagers first.
func resolveRoll(c *Catalog, base, odds []*Wager, roll Roll, ps *PhaseState, parent func(WagerID) *Wager) ([]*Wager, error) {
	var done []*Wager
	for _, w := range base {
		was := w.Status
		if err := c.Resolve(w, roll, ps); err != nil {
			return nil, err
		}
		if !was.Terminal() && w.Status.Terminal() {
			done = append(done, w)
		}
	}
	for _, w := range odds {
		was := w.Status
		if err := ResolveOdds(w, parent(w.Parent), roll); err != nil {
			return nil, err
		}
		if !was.Terminal() && w.Status.Terminal() {
			done = append(done, w)
		}
	}
	return done, nil
}

func isBarred(e *Entry, total int) bool {
	for _, b := range e.Barred {
		if b == total {
			return true
		}
	}
	return false
}

func winOrLose(win bool) Status {
	if win {
		return StatusWon
	}
	return StatusLost
}
