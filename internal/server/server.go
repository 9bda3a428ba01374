// Package server exposes model construction over HTTP.
//
//	POST /model   build a phase model and return its energy
//	GET  /phases  list the phases of the loaded database
//	GET  /metrics Prometheus metrics
//	GET  /health  liveness check
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/expr"
	"github.com/njchilds90/gocalphad/internal/output"
	"github.com/njchilds90/gocalphad/internal/telemetry"
	"github.com/njchilds90/gocalphad/model"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Database is a model database that can also list its phases.
type Database interface {
	database.Database
	PhaseNames() []string
}

// dbRef boxes a Database so it can be swapped atomically.
type dbRef struct{ Database }

type Server struct {
	db          atomic.Pointer[dbRef]
	log         zerolog.Logger
	symbolDepth int
	parallel    bool
	metrics     *telemetry.Metrics
}

// New serves models built from db. symbolDepth and parallel are passed to
// every model.New call.
func New(db Database, log zerolog.Logger, symbolDepth int, parallel bool) *Server {
	s := &Server{
		log:         log,
		symbolDepth: symbolDepth,
		parallel:    parallel,
		metrics:     telemetry.NewMetrics(),
	}
	s.SetDatabase(db)
	return s
}

// SetDatabase replaces the database used by later requests. Requests in
// flight keep the one they started with.
func (s *Server) SetDatabase(db Database) { s.db.Store(&dbRef{db}) }

func (s *Server) current() Database { return s.db.Load().Database }

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/phases", s.handlePhases)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Post("/model", s.handleModel)
	return r
}

// HTTPServer wraps Router with the listener timeouts used by gibbs serve.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type modelRequest struct {
	Components []string           `json:"components"`
	Phase      string             `json:"phase"`
	Parameters map[string]string  `json:"parameters,omitempty"`
	Format     string             `json:"format,omitempty"`
	Gradient   bool               `json:"gradient,omitempty"`
	Point      map[string]float64 `json:"point,omitempty"`
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req modelRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON: trailing data"))
		return
	}

	params, err := output.ParseParameters(req.Parameters)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, span := telemetry.StartBuildSpan(r.Context(), req.Phase, req.Components)
	start := time.Now()
	m, err := model.New(s.current(), req.Components, req.Phase,
		model.WithLogger(s.log.With().Str("request_id", middleware.GetReqID(ctx)).Logger()),
		model.WithParameters(params),
		model.WithSymbolDepth(s.symbolDepth),
		model.WithParallel(s.parallel),
	)
	telemetry.EndSpan(span, err)
	s.metrics.RecordBuild(phaseLabel(m), errorClass(err), time.Since(start))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	report, err := output.Describe(m, req.Format, req.Gradient)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Point != nil {
		val, ok := expr.Evalf(m.Energy(), req.Point)
		if !ok {
			writeError(w, http.StatusBadRequest, errors.New("point does not assign every variable"))
			return
		}
		report.Value = &val
	}
	writeJSON(w, http.StatusOK, report)
}

// errorClass names the failure kind of a model build for metrics.
func errorClass(err error) string {
	var dof *model.DofError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, database.ErrPhaseNotFound):
		return "phase_not_found"
	case errors.As(err, &dof):
		return "degrees_of_freedom"
	case errors.Is(err, model.ErrUnresolvedSymbol):
		return "unresolved_symbol"
	case errors.Is(err, model.ErrUnsupportedInteraction),
		errors.Is(err, model.ErrInvalidParameterOrder),
		errors.Is(err, model.ErrMissingSpecies),
		errors.Is(err, database.ErrInvalidRecord):
		return "invalid_record"
	}
	return "error"
}

func statusFor(err error) int {
	switch errorClass(err) {
	case "phase_not_found":
		return http.StatusNotFound
	case "degrees_of_freedom", "unresolved_symbol", "invalid_record":
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// phaseLabel keeps metric cardinality bounded by the database phases.
func phaseLabel(m *model.Model) string {
	if m != nil {
		return m.Phase()
	}
	return "unknown"
}

func (s *Server) handlePhases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"phases": s.current().PhaseNames()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
