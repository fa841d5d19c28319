package sim

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/xtding233/craps-backend/internal/craps"
)

const tracerName = "github.com/xtding233/craps-backend/internal/sim"

// Seat is one player at a simulated table.
type Seat struct {
	Player   craps.PlayerID
	Bankroll craps.Money
	Strategy Strategy
}

// SessionConfig wires a single table. Catalog and Seats are required.
type SessionConfig struct {
	ID       string
	Catalog  *craps.Catalog
	Seats    []Seat
	Dice     DiceSource     // nil: crypto dice
	MaxRolls int            // <=0: DefaultMaxRolls
	Observer craps.Observer // must be safe for concurrent use when shared across sessions
	Logger   *zap.Logger
}

// KindTally counts outcomes for one bet kind.
type KindTally struct {
	Placed   int         `json:"placed"`
	Won      int         `json:"won"`
	Lost     int         `json:"lost"`
	Returned int         `json:"returned"` // pushes included
	Wagered  craps.Money `json:"wagered"`
	Paid     craps.Money `json:"paid"`
	Taken    craps.Money `json:"taken"` // stakes lost to the house
}

func (k *KindTally) add(o KindTally) {
	k.Placed += o.Placed
	k.Won += o.Won
	k.Lost += o.Lost
	k.Returned += o.Returned
	k.Wagered += o.Wagered
	k.Paid += o.Paid
	k.Taken += o.Taken
}

// SessionResult summarizes one finished session.
type SessionResult struct {
	ID         string
	Rolls      int
	PointsSet  int
	PointsMade int
	SevenOuts  int
	Rejected   int // placement refusals
	Start      map[craps.PlayerID]craps.Money
	End        map[craps.PlayerID]craps.Money
	ByKind     map[craps.Kind]*KindTally
}

// Net is the sum of every player's balance change.
func (r SessionResult) Net() craps.Money {
	var n craps.Money
	for p, end := range r.End {
		n += end - r.Start[p]
	}
	return n
}

// Session drives one table roll by roll. Not safe for concurrent use.
type Session struct {
	id      string
	table   *craps.Table
	ps      *craps.PhaseState
	dice    DiceSource
	seats   []Seat
	shooter int
	max     int
	obs     craps.Observer
	log     *zap.Logger
	res     SessionResult
}

var ErrNoSeats = errors.New("session needs at least one seat")

// DefaultMaxRolls bounds sessions that do not set MaxRolls.
const DefaultMaxRolls = 1000

func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("session needs a catalog")
	}
	if len(cfg.Seats) == 0 {
		return nil, ErrNoSeats
	}
	if cfg.Dice == nil {
		cfg.Dice = DefaultDice()
	}
	if cfg.MaxRolls <= 0 {
		cfg.MaxRolls = DefaultMaxRolls
	}
	if cfg.Observer == nil {
		cfg.Observer = craps.NopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Session{
		id:    cfg.ID,
		table: craps.NewTable(cfg.Catalog, cfg.Observer),
		ps:    craps.NewPhaseState(cfg.Seats[0].Player),
		dice:  cfg.Dice,
		seats: cfg.Seats,
		max:   cfg.MaxRolls,
		obs:   cfg.Observer,
		log:   cfg.Logger.With(zap.String("session", cfg.ID)),
		res: SessionResult{
			ID:     cfg.ID,
			Start:  make(map[craps.PlayerID]craps.Money, len(cfg.Seats)),
			End:    make(map[craps.PlayerID]craps.Money, len(cfg.Seats)),
			ByKind: make(map[craps.Kind]*KindTally),
		},
	}
	for _, seat := range cfg.Seats {
		if seat.Strategy == nil {
			return nil, fmt.Errorf("seat %s has no strategy", seat.Player)
		}
		s.table.Seat(seat.Player, seat.Bankroll)
		s.res.Start[seat.Player] = seat.Bankroll
	}
	return s, nil
}

func (s *Session) Table() *craps.Table      { return s.table }
func (s *Session) State() *craps.PhaseState { return s.ps }

// Step plays one roll: bets, roll, resolve, settle, advance.
func (s *Session) Step() (craps.TransitionEvent, []craps.SettledWager, error) {
	if err := s.placeBets(); err != nil {
		return craps.TransitionEvent{}, nil, err
	}

	roll, err := s.dice.Roll()
	if err != nil {
		return craps.TransitionEvent{}, nil, err
	}
	s.obs.OnRoll(roll, s.ps.Snapshot())

	resolved, err := s.table.CheckAndResolve(roll, s.ps)
	if err != nil {
		return craps.TransitionEvent{}, nil, err
	}
	settled, err := s.table.Settle(resolved)
	if err != nil {
		return craps.TransitionEvent{}, settled, err
	}
	for _, st := range settled {
		s.tally(st.Wager.Kind).record(st)
	}

	ev, err := s.ps.Advance(roll.Total())
	if err != nil {
		return ev, settled, err
	}
	s.obs.OnTransition(ev)
	s.res.Rolls++
	switch ev.Kind {
	case craps.EventPointSet:
		s.res.PointsSet++
	case craps.EventPointMade:
		s.res.PointsMade++
	case craps.EventSevenOut:
		s.res.SevenOuts++
	}
	if ev.RotateShooter {
		s.shooter = (s.shooter + 1) % len(s.seats)
		s.ps.SetShooter(s.seats[s.shooter].Player)
		s.log.Debug("shooter change", zap.String("shooter", string(s.ps.Shooter())))
	}
	return ev, settled, nil
}

func (k *KindTally) record(st craps.SettledWager) {
	switch st.Wager.Status {
	case craps.StatusWon:
		k.Won++
		k.Paid += st.Payout
	case craps.StatusLost:
		k.Lost++
		k.Taken += st.Loss
	case craps.StatusPushed, craps.StatusReturned:
		k.Returned++
	}
}

func (s *Session) tally(k craps.Kind) *KindTally {
	t, ok := s.res.ByKind[k]
	if !ok {
		t = &KindTally{}
		s.res.ByKind[k] = t
	}
	return t
}

func (s *Session) placeBets() error {
	cat := s.table.Catalog()
	all := s.table.Wagers()
	for _, seat := range s.seats {
		bal, _ := s.table.Balance(seat.Player)
		view := View{
			Player:  seat.Player,
			Balance: bal,
			State:   s.ps.Snapshot(),
			Wagers:  ownWagers(append([]craps.Wager(nil), all...), seat.Player),
			Catalog: cat,
		}
		for _, req := range seat.Strategy.Bets(view) {
			var (
				w   *craps.Wager
				err error
			)
			if req.Kind.IsOdds() {
				w, err = cat.CreateOdds(req.Kind, req.Amount, seat.Player, req.Parent)
			} else {
				w, err = cat.CreateBet(req.Kind, req.Amount, seat.Player, req.Number)
			}
			if err != nil {
				return fmt.Errorf("strategy %s: %w", seat.Strategy.Name(), err)
			}
			if _, err := s.table.Place(w, s.ps); err != nil {
				if craps.IsRecoverable(err) {
					s.res.Rejected++
					s.log.Debug("bet refused", zap.String("player", string(seat.Player)), zap.Error(err))
					continue
				}
				return err
			}
			t := s.tally(w.Kind)
			t.Placed++
			t.Wagered += w.Amount
		}
	}
	return nil
}

// broke reports whether no player can keep playing.
func (s *Session) broke() bool {
	for _, seat := range s.seats {
		bal, _ := s.table.Balance(seat.Player)
		if bal > 0 || s.table.Risk(seat.Player) > 0 {
			return false
		}
	}
	return true
}

// Run plays until the roll limit, the dice run out, everyone is broke, or
// ctx is cancelled. Placement refusals never stop a session; creation and
// resolution errors do.
func (s *Session) Run(ctx context.Context) (SessionResult, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "sim.Session.Run")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", s.id), attribute.Int("session.seats", len(s.seats)))

	err := s.loop(ctx)
	for _, seat := range s.seats {
		s.res.End[seat.Player], _ = s.table.Balance(seat.Player)
	}
	span.SetAttributes(attribute.Int("session.rolls", s.res.Rolls), attribute.Int64("session.net", int64(s.res.Net())))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return s.res, err
	}
	s.log.Debug("session done",
		zap.Int("rolls", s.res.Rolls),
		zap.Int("points_made", s.res.PointsMade),
		zap.Int64("net", int64(s.res.Net())))
	return s.res, nil
}

func (s *Session) loop(ctx context.Context) error {
	for s.res.Rolls < s.max {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.broke() {
			return nil
		}
		if d, ok := s.dice.(interface{ Remaining() int }); ok && d.Remaining() == 0 {
			return nil
		}
		if _, _, err := s.Step(); err != nil {
			if errors.Is(err, ErrHistoryExhausted) {
				return nil
			}
			return err
		}
	}
	return nil
}
