package httpadapter

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"

	"github.com/couchcryptid/squirrel-census/internal/chart"
	"github.com/couchcryptid/squirrel-census/internal/domain"
)

const (
	endpointPage     = "page"
	endpointChart    = "chart"
	endpointSpec     = "spec"
	endpointZones    = "zones"
	endpointSnapshot = "snapshot"

	outcomeSuccess    = "success"
	outcomeBadRequest = "bad_request"
	outcomeNotReady   = "not_ready"
	outcomeError      = "error"
)

// behavior reads the requested category, falling back to the configured default
// when the parameter is absent or empty.
func (s *Server) behavior(raw string) domain.BehaviorCategory {
	if raw == "" {
		return s.opts.DefaultBehavior
	}
	return domain.BehaviorCategory(raw)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	page, err := s.composer.Page(s.behavior(r.URL.Query().Get("behavior")), "/chart")
	if err != nil {
		s.fail(w, endpointPage, err)
		return
	}
	s.observe(endpointPage, outcomeSuccess, start)
	writeBody(w, "text/html; charset=utf-8", page)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	markup, err := s.composer.Render(s.data.Dataset(), s.behavior(r.URL.Query().Get("behavior")))
	if err != nil {
		s.fail(w, endpointChart, err)
		return
	}
	s.observe(endpointChart, outcomeSuccess, start)
	writeBody(w, "text/html; charset=utf-8", markup)
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	spec, err := s.composer.Spec(s.data.Dataset(), s.behavior(r.URL.Query().Get("behavior")))
	if err != nil {
		s.fail(w, endpointSpec, err)
		return
	}
	s.observe(endpointSpec, outcomeSuccess, start)
	sharedobs.WriteJSON(w, http.StatusOK, spec)
}

func (s *Server) handleZones(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	ds := s.data.Dataset()
	if ds == nil {
		s.fail(w, endpointZones, chart.ErrNoDataset)
		return
	}
	s.observe(endpointZones, outcomeSuccess, start)
	sharedobs.WriteJSON(w, http.StatusOK, ds.Aggregates())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var buf bytes.Buffer
	if err := s.composer.Snapshot(s.data.Dataset(), s.behavior(chi.URLParam(r, "behavior")), &buf); err != nil {
		s.fail(w, endpointSnapshot, err)
		return
	}
	s.observe(endpointSnapshot, outcomeSuccess, start)
	writeBody(w, "image/svg+xml", buf.Bytes())
}

// fail maps composer errors to status codes: unknown categories are the caller's
// fault, a missing dataset means the service is not ready yet.
func (s *Server) fail(w http.ResponseWriter, endpoint string, err error) {
	status, outcome := http.StatusInternalServerError, outcomeError
	switch {
	case errors.Is(err, domain.ErrUnsupportedCategory):
		status, outcome = http.StatusBadRequest, outcomeBadRequest
	case errors.Is(err, chart.ErrNoDataset):
		status, outcome = http.StatusServiceUnavailable, outcomeNotReady
	default:
		s.logger.Error("render failed", "endpoint", endpoint, "error", err)
	}
	if s.metrics != nil {
		s.metrics.ChartRequests.WithLabelValues(endpoint, outcome).Inc()
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) observe(endpoint, outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ChartRequests.WithLabelValues(endpoint, outcome).Inc()
	s.metrics.RenderDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client went away
}
