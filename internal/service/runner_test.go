package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/craps-backend/internal/craps"
	"github.com/xtding233/craps-backend/internal/history"
	"github.com/xtding233/craps-backend/internal/metrics"
	"github.com/xtding233/craps-backend/internal/tablecfg"
)

func newRunner(t *testing.T, withHistory bool) *Runner {
	t.Helper()
	r := &Runner{
		Rules:       tablecfg.NewLoader(filepath.Join("..", "..", "configs")),
		Metrics:     metrics.New(),
		Workers:     2,
		MaxSessions: 50,
	}
	if withHistory {
		store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "h.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		r.History = store
	}
	return r
}

func ptr[T any](v T) *T { return &v }

func TestSimulateRecordsAndReplays(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t, true)
	job := Job{
		Table:      "highroller",
		Variant:    "nocomm",
		Strategies: []string{"passline-odds", "place68"},
		Sessions:   4,
		MaxRolls:   60,
		Seed:       7,
		Record:     true,
		Overrides:  tablecfg.Overrides{OddsMultiple: ptr[int64](2)},
	}
	rep, err := r.Simulate(ctx, job)
	require.NoError(t, err)
	require.Len(t, rep.SessionIDs, 4)

	stored, err := r.History.Sessions(ctx, rep.RunID, 10)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, int64(100), stored[0].Unit, "unit defaults to the table minimum")
	assert.Equal(t, int64(10000), stored[0].Bankroll)

	for i, id := range rep.SessionIDs {
		res, err := r.Replay(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, rep.Net.Samples[i], int64(res.Net()), "session %s", id)
	}

	n, err := testutil.GatherAndCount(r.Metrics.Registry(), "craps_simulations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSimulateErrors(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t, false)

	_, err := r.Simulate(ctx, Job{Strategies: []string{"field"}})
	require.ErrorIs(t, err, ErrBadJob)
	_, err = r.Simulate(ctx, Job{Strategies: []string{"field"}, Sessions: 51})
	require.ErrorIs(t, err, ErrTooManySessions)
	_, err = r.Simulate(ctx, Job{Strategies: []string{"field"}, Sessions: 1, Record: true})
	require.ErrorIs(t, err, ErrNoHistory)
	_, err = r.Simulate(ctx, Job{Table: "../x", Strategies: []string{"field"}, Sessions: 1})
	require.ErrorIs(t, err, ErrBadJob)
	_, err = r.Simulate(ctx, Job{Strategies: []string{"martingale"}, Sessions: 1})
	require.ErrorContains(t, err, "unknown strategy")

	_, err = r.Replay(ctx, "anything")
	require.ErrorIs(t, err, ErrNoHistory)
}

func TestReplayUnknownSession(t *testing.T) {
	r := newRunner(t, true)
	_, err := r.Replay(context.Background(), "missing")
	require.ErrorIs(t, err, history.ErrNotFound)
}

// TestReplayUsesRecordedRules edits the table file after recording. The
// replay must still run under the rules the session was played with.
func TestReplayUsesRecordedRules(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.CopyFS(dir, os.DirFS(filepath.Join("..", "..", "configs"))))
	loader := tablecfg.NewLoader(dir)
	r := newRunner(t, true)
	r.Rules = loader

	rep, err := r.Simulate(ctx, Job{
		Table:      "highroller",
		Strategies: []string{"passline-odds", "field"},
		Sessions:   2,
		MaxRolls:   80,
		Seed:       11,
		Record:     true,
	})
	require.NoError(t, err)

	sess, err := r.History.Session(ctx, rep.SessionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "2025.1-hr", sess.RulesVersion)
	var frozen craps.HouseRules
	require.NoError(t, json.Unmarshal([]byte(sess.Rules), &frozen))
	assert.Equal(t, craps.Money(100), frozen.TableMinimum)
	assert.Equal(t, craps.R(3, 1), frozen.Field12)

	edited := "version: \"2026.1-hr\"\nname: highroller\nlimits:\n  minimum: 1000\n  maximum: 50000\n  unit: 500\n"
	require.NoError(t, os.WriteFile(loader.Paths().TablePath("highroller"), []byte(edited), 0o644))
	loader.Invalidate()
	_, now, err := loader.Resolve("highroller", "", tablecfg.Overrides{})
	require.NoError(t, err)
	require.Equal(t, craps.Money(1000), now.TableMinimum)

	for i, id := range rep.SessionIDs {
		res, err := r.Replay(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, rep.Net.Samples[i], int64(res.Net()), "session %s", id)
	}
}
