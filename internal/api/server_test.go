package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/craps-backend/internal/history"
	"github.com/xtding233/craps-backend/internal/metrics"
	"github.com/xtding233/craps-backend/internal/service"
	"github.com/xtding233/craps-backend/internal/tablecfg"
)

func newTestServer(t *testing.T, withHistory bool) *Server {
	t.Helper()
	runner := &service.Runner{
		Rules:       tablecfg.NewLoader(filepath.Join("..", "..", "configs")),
		Workers:     2,
		MaxSessions: 20,
	}
	if withHistory {
		store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "h.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		runner.History = store
	}
	rec := metrics.New()
	runner.Metrics = rec
	return NewServer(runner, rec, nil)
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	} else {
		out["body"] = string(raw)
	}
	return resp.StatusCode, out
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, true)
	code, body := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body["body"], "craps_simulation_seconds")
}

func TestCatalogRoute(t *testing.T) {
	s := newTestServer(t, false)
	code, body := do(t, s, http.MethodGet, "/tables/highroller/catalog?variant=nocomm&odds=2", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "highroller", body["table"])
	assert.Equal(t, float64(100), body["table_minimum"])
	assert.Equal(t, float64(0), body["vig_percent"])
	entries := body["entries"].([]any)
	require.NotEmpty(t, entries)
	first := entries[0].(map[string]any)
	assert.Equal(t, "pass_line", first["kind"])
	assert.Equal(t, "pass_odds", first["odds"])

	code, _ = do(t, s, http.MethodGet, "/tables/highroller/catalog?min=abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, s, http.MethodGet, "/tables/default/catalog?max=1", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSimulateRoute(t *testing.T) {
	s := newTestServer(t, true)
	code, body := do(t, s, http.MethodPost, "/simulate",
		`{"table":"default","strategies":["passline","field"],"sessions":3,"max_rolls":40,"seed":5,"record":true}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, float64(3), body["sessions"])
	ids := body["session_ids"].([]any)
	require.Len(t, ids, 3)

	code, list := do(t, s, http.MethodGet, "/history/sessions?run="+body["run_id"].(string), "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, list["sessions"], 3)

	id := ids[0].(string)
	code, rolls := do(t, s, http.MethodGet, "/history/sessions/"+id+"/rolls", "")
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, rolls["rolls"])

	code, rep := do(t, s, http.MethodPost, "/history/sessions/"+id+"/replay", "")
	require.Equal(t, http.StatusOK, code, rep)
	assert.Equal(t, id, rep["session"])
	assert.Contains(t, rep, "balances")

	code, _ = do(t, s, http.MethodPost, "/history/sessions/nope/replay", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSimulateRouteErrors(t *testing.T) {
	s := newTestServer(t, false)
	cases := []struct {
		body string
		want int
	}{
		{`{`, http.StatusBadRequest},
		{`{"strategies":["field"],"sessions":0}`, http.StatusBadRequest},
		{`{"strategies":["field"],"sessions":21}`, http.StatusBadRequest},
		{`{"strategies":["nope"],"sessions":1}`, http.StatusBadRequest},
		{`{"strategies":[],"sessions":1}`, http.StatusBadRequest},
		{`{"strategies":["field"],"sessions":1,"record":true}`, http.StatusServiceUnavailable},
	}
	for _, c := range cases {
		code, body := do(t, s, http.MethodPost, "/simulate", c.body)
		assert.Equal(t, c.want, code, "%s -> %v", c.body, body)
		assert.NotEmpty(t, body["error"], c.body)
	}

	code, _ := do(t, s, http.MethodGet, "/history/sessions", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}
