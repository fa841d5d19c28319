// Package service runs simulation jobs against resolved table rules. The
// HTTP API and the CLI both drive it.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xtding233/craps-backend/internal/craps"
	"github.com/xtding233/craps-backend/internal/history"
	"github.com/xtding233/craps-backend/internal/metrics"
	"github.com/xtding233/craps-backend/internal/sim"
	"github.com/xtding233/craps-backend/internal/tablecfg"
)

var (
	ErrNoHistory       = errors.New("roll history is not configured")
	ErrBadJob          = errors.New("invalid simulation job")
	ErrTooManySessions = errors.New("too many sessions requested")
)

// Job is one simulation request.
type Job struct {
	Table      string             `json:"table"`
	Variant    string             `json:"variant,omitempty"`
	Strategies []string           `json:"strategies"`
	Sessions   int                `json:"sessions"`
	MaxRolls   int                `json:"max_rolls,omitempty"`
	Seed       uint64             `json:"seed,omitempty"`
	Bankroll   int64              `json:"bankroll,omitempty"` // 0: 100 units
	Unit       int64              `json:"unit,omitempty"`     // 0: table minimum
	Record     bool               `json:"record,omitempty"`
	Overrides  tablecfg.Overrides `json:"overrides"`
}

// Runner wires rules, metrics and history around sim.RunMonteCarlo.
// History and Metrics are optional.
type Runner struct {
	Rules       tablecfg.Resolver
	History     *history.Store
	Metrics     *metrics.Recorder
	Log         *zap.Logger
	Workers     int
	MaxSessions int // 0: unlimited
}

// Catalog resolves the rules for table/variant and builds a catalog.
func (r *Runner) Catalog(table, variant string, o tablecfg.Overrides) (*craps.Catalog, error) {
	_, rules, err := r.Rules.Resolve(table, variant, o)
	if err != nil {
		return nil, err
	}
	return craps.NewCatalog(rules)
}

// Simulate runs a job and returns the merged report.
func (r *Runner) Simulate(ctx context.Context, job Job) (rep sim.Report, err error) {
	log := r.logger()
	if job.Sessions <= 0 {
		return sim.Report{}, fmt.Errorf("%w: sessions must be >= 1", ErrBadJob)
	}
	if r.MaxSessions > 0 && job.Sessions > r.MaxSessions {
		return sim.Report{}, fmt.Errorf("%w: %d > %d", ErrTooManySessions, job.Sessions, r.MaxSessions)
	}
	if job.Record && r.History == nil {
		return sim.Report{}, ErrNoHistory
	}
	raw, rules, err := r.Rules.Resolve(job.Table, job.Variant, job.Overrides)
	if err != nil {
		return sim.Report{}, fmt.Errorf("%w: %w", ErrBadJob, err)
	}
	cat, err := craps.NewCatalog(rules)
	if err != nil {
		return sim.Report{}, fmt.Errorf("%w: %w", ErrBadJob, err)
	}
	unit, bankroll := stakes(job, cat.Rules())

	start := time.Now()
	if r.Metrics != nil {
		defer func() { r.Metrics.ObserveRun(time.Since(start), err) }()
	}

	p := sim.SimParams{
		Catalog:    cat,
		Strategies: job.Strategies,
		Unit:       unit,
		Bankroll:   bankroll,
		MaxRolls:   job.MaxRolls,
		Sessions:   job.Sessions,
		Workers:    r.Workers,
		Seed:       job.Seed,
		RunID:      uuid.NewString(),
		Logger:     log,
	}
	if r.Metrics != nil {
		p.Observer = r.Metrics
	}
	if job.Record {
		overrides, err := json.Marshal(job.Overrides)
		if err != nil {
			return sim.Report{}, err
		}
		frozen, err := json.Marshal(cat.Rules())
		if err != nil {
			return sim.Report{}, err
		}
		p.Record = func(ctx context.Context, id string, rolls []craps.Roll) error {
			return r.History.Record(ctx, history.Session{
				ID:           id,
				RunID:        p.RunID,
				Table:        job.Table,
				Variant:      job.Variant,
				Strategies:   job.Strategies,
				Unit:         int64(unit),
				Bankroll:     int64(bankroll),
				Seed:         job.Seed,
				Overrides:    string(overrides),
				Rules:        string(frozen),
				RulesVersion: raw.Version,
			}, rolls)
		}
	}
	rep, err = sim.RunMonteCarlo(ctx, p)
	if err != nil {
		return sim.Report{}, err
	}
	return rep, nil
}

// Replay re-runs a recorded session with its stored rules, strategies and
// stakes. Later edits to the table files do not change the outcome.
func (r *Runner) Replay(ctx context.Context, sessionID string) (sim.SessionResult, error) {
	if r.History == nil {
		return sim.SessionResult{}, ErrNoHistory
	}
	sess, err := r.History.Session(ctx, sessionID)
	if err != nil {
		return sim.SessionResult{}, err
	}
	cat, err := r.sessionCatalog(sess)
	if err != nil {
		return sim.SessionResult{}, err
	}
	rolls, err := r.History.Rolls(ctx, sessionID)
	if err != nil {
		return sim.SessionResult{}, err
	}
	return sim.Replay(ctx, sessionID, cat, sess.Strategies,
		craps.Money(sess.Unit), craps.Money(sess.Bankroll), rolls, r.logger())
}

func (r *Runner) sessionCatalog(sess history.Session) (*craps.Catalog, error) {
	if sess.Rules != "" {
		var rules craps.HouseRules
		if err := json.Unmarshal([]byte(sess.Rules), &rules); err != nil {
			return nil, fmt.Errorf("session %s rules: %w", sess.ID, err)
		}
		return craps.NewCatalog(rules)
	}
	// recorded without frozen rules: rebuild from the files as they are now
	var o tablecfg.Overrides
	if sess.Overrides != "" {
		if err := json.Unmarshal([]byte(sess.Overrides), &o); err != nil {
			return nil, fmt.Errorf("session %s overrides: %w", sess.ID, err)
		}
	}
	return r.Catalog(sess.Table, sess.Variant, o)
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}

func stakes(job Job, rules craps.HouseRules) (unit, bankroll craps.Money) {
	unit = craps.Money(job.Unit)
	if unit <= 0 {
		unit = rules.TableMinimum
	}
	bankroll = craps.Money(job.Bankroll)
	if bankroll <= 0 {
		bankroll = 100 * unit
	}
	return unit, bankroll
}
