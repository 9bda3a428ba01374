package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/expr"
)

func fixture(t *testing.T) *database.Memory {
	t.Helper()
	db, err := database.LoadYAMLFile("../../database/testdata/alni.yaml")
	require.NoError(t, err)
	return db
}

func binary(t *testing.T) *database.Memory {
	t.Helper()
	db := database.NewMemory()
	require.NoError(t, db.AddPhase(database.Phase{
		Name: "P", Sublattices: []float64{1}, Constituents: [][]string{{"A", "B"}},
	}))
	for _, p := range []database.Parameter{
		{PhaseName: "P", Type: "G", Constituents: database.ConstituentArray{{"A"}}, Value: expr.S("GA")},
		{PhaseName: "P", Type: "G", Constituents: database.ConstituentArray{{"B"}}, Value: expr.N(200)},
	} {
		require.NoError(t, db.AddParameter(p))
	}
	db.AddSymbol("GA", expr.N(100))
	return db
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndPhases(t *testing.T) {
	h := New(fixture(t), zerolog.Nop(), 2, false).Router()

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = do(t, h, http.MethodGet, "/phases", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"LIQUID", "FCC_A1", "L12_FCC"}, decode(t, rec)["phases"])
}

func TestModel_Gradient(t *testing.T) {
	h := New(fixture(t), zerolog.Nop(), 2, true).Router()

	rec := do(t, h, http.MethodPost, "/model",
		`{"components": ["al", "ni"], "phase": "liquid", "gradient": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.Equal(t, "LIQUID", out["phase"])
	assert.Equal(t, []interface{}{"AL", "NI"}, out["components"])
	assert.Equal(t, []interface{}{"T", "Y(LIQUID,0,AL)", "Y(LIQUID,0,NI)"}, out["variables"])
	assert.IsType(t, "", out["energy"])
	assert.Len(t, out["gradient"], 3)
}

func TestModel_PointAndOverrides(t *testing.T) {
	h := New(binary(t), zerolog.Nop(), 2, false).Router()

	body := `{
		"components": ["A", "B"],
		"phase": "P",
		"parameters": {"ga": "50 + 50"},
		"format": "json",
		"point": {"T": 0, "Y(P,0,A)": 0.5, "Y(P,0,B)": 0.5}
	}`
	rec := do(t, h, http.MethodPost, "/model", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode(t, rec)
	assert.InDelta(t, 150.0, out["value"], 1e-9)
	assert.IsType(t, map[string]interface{}{}, out["energy"])

	rec = do(t, h, http.MethodPost, "/model", `{"components": ["A", "B"], "phase": "P", "point": {"T": 300}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModel_Errors(t *testing.T) {
	h := New(fixture(t), zerolog.Nop(), 2, false).Router()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"components": `, http.StatusBadRequest},
		{"unknown field", `{"components": ["AL"], "phase": "LIQUID", "temperature": 300}`, http.StatusBadRequest},
		{"trailing data", `{"components": ["AL"], "phase": "LIQUID"} {}`, http.StatusBadRequest},
		{"bad parameter", `{"components": ["AL"], "phase": "LIQUID", "parameters": {"X": "1 +"}}`, http.StatusBadRequest},
		{"bad format", `{"components": ["AL"], "phase": "LIQUID", "format": "xml"}`, http.StatusBadRequest},
		{"unknown phase", `{"components": ["AL"], "phase": "BCC_A2"}`, http.StatusNotFound},
		{"degrees of freedom", `{"components": ["AL"], "phase": "FCC_A1"}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/model", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := New(fixture(t), zerolog.Nop(), 2, false).Router()

	do(t, h, http.MethodPost, "/model", `{"components": ["AL", "NI"], "phase": "LIQUID"}`)
	do(t, h, http.MethodPost, "/model", `{"components": ["AL"], "phase": "FCC_A1"}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `gibbs_models_built_total{phase="LIQUID",result="ok"} 1`)
	assert.Contains(t, body, `gibbs_models_built_total{phase="unknown",result="degrees_of_freedom"} 1`)
}

func TestReload(t *testing.T) {
	s := New(binary(t), zerolog.Nop(), 2, false)
	h := s.Router()

	require.NoError(t, s.Reload(context.Background(), func(context.Context) (Database, error) {
		return fixture(t), nil
	}))
	rec := do(t, h, http.MethodGet, "/phases", "")
	assert.Equal(t, []interface{}{"LIQUID", "FCC_A1", "L12_FCC"}, decode(t, rec)["phases"])

	boom := errors.New("boom")
	err := s.Reload(context.Background(), func(context.Context) (Database, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	rec = do(t, h, http.MethodGet, "/phases", "")
	assert.Equal(t, []interface{}{"LIQUID", "FCC_A1", "L12_FCC"}, decode(t, rec)["phases"])
}

func TestWatch(t *testing.T) {
	src, err := os.ReadFile("../../database/testdata/alni.yaml")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "db.yaml")
	require.NoError(t, os.WriteFile(path, src, 0o600))

	s := New(binary(t), zerolog.Nop(), 2, false)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, s.Watch(ctx, path, func(context.Context) (Database, error) {
		return database.LoadYAMLFile(path)
	}))

	require.NoError(t, os.WriteFile(path, src, 0o600))
	require.Eventually(t, func() bool {
		return len(s.current().PhaseNames()) == 3
	}, 5*time.Second, 20*time.Millisecond)
}
