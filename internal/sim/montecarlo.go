package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/craps-backend/internal/craps"
)

// SimParams describes one Monte Carlo run: N independent sessions sharing
// a read-only catalog.
type SimParams struct {
	Catalog    *craps.Catalog
	Strategies []string    // one seat per entry
	Unit       craps.Money // base bet handed to each strategy
	Bankroll   craps.Money
	MaxRolls   int
	Sessions   int
	Workers    int    // <=0: GOMAXPROCS
	Seed       uint64 // 0: crypto dice; otherwise session i uses Seed+i
	RunID      string // empty: a fresh uuid

	Observer craps.Observer // shared by all sessions; must be concurrency safe
	Logger   *zap.Logger

	// Record, if set, receives each session's rolls after it finishes.
	Record func(ctx context.Context, sessionID string, rolls []craps.Roll) error
}

// Stats summarizes simulation results.
type Stats struct {
	Mean   float64 `json:"mean"`
	Var    float64 `json:"var"`
	StdDev float64 `json:"stddev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
	// Optional: raw samples if caller needs histograms/exports
	Samples []int64 `json:"-"`
}

// Totals are summed over every session.
type Totals struct {
	Rolls      int         `json:"rolls"`
	PointsSet  int         `json:"points_set"`
	PointsMade int         `json:"points_made"`
	SevenOuts  int         `json:"seven_outs"`
	Rejected   int         `json:"rejected"`
	Wagered    craps.Money `json:"wagered"`
	Paid       craps.Money `json:"paid"`
	Taken      craps.Money `json:"taken"`
}

// Report is the merged result of a run.
type Report struct {
	RunID      string               `json:"run_id"`
	Sessions   int                  `json:"sessions"`
	SessionIDs []string             `json:"session_ids,omitempty"`
	Net        Stats                `json:"net"`   // per-session net result, all players
	Rolls      Stats                `json:"rolls"` // rolls per session
	Totals     Totals               `json:"totals"`
	ByKind     map[string]KindTally `json:"by_kind"`
	// HouseEdge is (taken - paid) / wagered over the whole run.
	HouseEdge float64 `json:"house_edge"`
}

var ErrNoStrategies = errors.New("at least one strategy is required")

// calcStats computes mean/variance/percentiles for integer samples.
func calcStats(xs []int64) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	// mean
	var sum float64
	for _, v := range xs {
		sum += float64(v)
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := float64(v) - mean
		acc += d * d
	}
	variance := acc / float64(n)

	// percentiles
	cp := append([]int64(nil), xs...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return float64(cp[0])
		}
		if p >= 1 {
			return float64(cp[n-1])
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return float64(cp[i])
		}
		return float64(cp[i])*(1-f) + float64(cp[i+1])*f
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// Seats builds one seat per strategy name with fresh strategy values.
func Seats(names []string, unit, bankroll craps.Money) ([]Seat, error) {
	if len(names) == 0 {
		return nil, ErrNoStrategies
	}
	seats := make([]Seat, len(names))
	for i, name := range names {
		st, err := NewStrategy(name, unit)
		if err != nil {
			return nil, err
		}
		seats[i] = Seat{
			Player:   craps.PlayerID(fmt.Sprintf("p%d-%s", i+1, name)),
			Bankroll: bankroll,
			Strategy: st,
		}
	}
	return seats, nil
}

// RunMonteCarlo runs p.Sessions sessions in parallel and merges the results
// in session order, so a seeded run is reproducible whatever the scheduling.
func RunMonteCarlo(ctx context.Context, p SimParams) (Report, error) {
	if p.Catalog == nil {
		return Report{}, errors.New("catalog is required")
	}
	if len(p.Strategies) == 0 {
		return Report{}, ErrNoStrategies
	}
	if p.Sessions <= 0 {
		return Report{}, nil
	}
	if p.Workers <= 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	runID := p.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "sim.RunMonteCarlo")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.sessions", p.Sessions),
		attribute.StringSlice("run.strategies", p.Strategies),
	)

	results := make([]SessionResult, p.Sessions)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i := 0; i < p.Sessions; i++ {
		g.Go(func() error {
			res, err := runOne(gctx, p, i)
			if err != nil {
				return fmt.Errorf("session %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return Report{}, err
	}

	rep := merge(runID, results)
	p.Logger.Info("simulation finished",
		zap.String("run_id", runID),
		zap.Int("sessions", rep.Sessions),
		zap.Int("rolls", rep.Totals.Rolls),
		zap.Float64("net_mean", rep.Net.Mean),
		zap.Float64("house_edge", rep.HouseEdge))
	return rep, nil
}

func runOne(ctx context.Context, p SimParams, i int) (SessionResult, error) {
	seats, err := Seats(p.Strategies, p.Unit, p.Bankroll)
	if err != nil {
		return SessionResult{}, err
	}
	var src DiceSource
	if p.Seed != 0 {
		src = NewSeededDice(p.Seed + uint64(i))
	}
	dice := NewRecordingDice(src)
	id := uuid.NewString()

	s, err := NewSession(SessionConfig{
		ID:       id,
		Catalog:  p.Catalog,
		Seats:    seats,
		Dice:     dice,
		MaxRolls: p.MaxRolls,
		Observer: p.Observer,
		Logger:   p.Logger,
	})
	if err != nil {
		return SessionResult{}, err
	}
	res, err := s.Run(ctx)
	if err != nil {
		return res, err
	}
	if p.Record != nil {
		if err := p.Record(ctx, id, dice.Rolls()); err != nil {
			return res, fmt.Errorf("record rolls: %w", err)
		}
	}
	return res, nil
}

func merge(runID string, results []SessionResult) Report {
	rep := Report{
		RunID:    runID,
		Sessions: len(results),
		ByKind:   make(map[string]KindTally),
	}
	net := make([]int64, len(results))
	rolls := make([]int64, len(results))
	for i, r := range results {
		rep.SessionIDs = append(rep.SessionIDs, r.ID)
		net[i] = int64(r.Net())
		rolls[i] = int64(r.Rolls)
		rep.Totals.Rolls += r.Rolls
		rep.Totals.PointsSet += r.PointsSet
		rep.Totals.PointsMade += r.PointsMade
		rep.Totals.SevenOuts += r.SevenOuts
		rep.Totals.Rejected += r.Rejected
		for k, t := range r.ByKind {
			agg := rep.ByKind[k.String()]
			agg.add(*t)
			rep.ByKind[k.String()] = agg
			rep.Totals.Wagered += t.Wagered
			rep.Totals.Paid += t.Paid
			rep.Totals.Taken += t.Taken
		}
	}
	rep.Net = calcStats(net)
	rep.Rolls = calcStats(rolls)
	if rep.Totals.Wagered > 0 {
		rep.HouseEdge = float64(rep.Totals.Taken-rep.Totals.Paid) / float64(rep.Totals.Wagered)
	}
	return rep
}
