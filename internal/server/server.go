// Package server exposes the batch validation pipeline over HTTP.
package server

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/adhamqabban37/vidrepair/internal/batch"
	"github.com/adhamqabban37/vidrepair/internal/metrics"
	"github.com/adhamqabban37/vidrepair/internal/validate"
)

// cacheControl is set on successful batch responses only. Failed or gated
// responses must never be cached by intermediaries.
const cacheControl = "public, max-age=120, s-maxage=120, stale-while-revalidate=300"

// batchRequest is the wire shape of a repair-batch call.
type batchRequest struct {
	Items []batch.Reference `json:"items"`
}

// errorResponse is the envelope for total method or body invalidity.
// Like every other failure it rides a 200 status; the reason string is
// the only failure signal browser clients ever need to branch on.
type errorResponse struct {
	OK      bool               `json:"ok"`
	Reason  string             `json:"reason"`
	Note    string             `json:"note,omitempty"`
	Results []validate.Outcome `json:"results"`
}

// Server routes HTTP traffic to the batch orchestrator.
type Server struct {
	Batch *batch.Orchestrator
	Log   *slog.Logger
}

func New(orch *batch.Orchestrator, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{Batch: orch, Log: log}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/repair-batch", s.handleRepairBatch)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

// handleRepairBatch validates a batch of video references. Every outcome,
// including gate refusals and malformed input, is carried in a 200 body so
// browser clients never hit a fetch error path.
func (s *Server) handleRepairBatch(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if r.Method != http.MethodPost {
		s.writeError(w, "method_not_allowed", "use POST")
		return
	}

	// The body is decoded ahead of the feature, auth, and rate gates,
	// so a malformed body answers invalid_body even when a gate would
	// also have refused the request.
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Items == nil {
		metrics.IncrValidationErrors()
		s.writeError(w, "invalid_body", "body must include array: items")
		return
	}

	resp := s.Batch.Process(r.Context(), callerKey(r), r.Header.Get("X-Admin-Token"), req.Items)
	if resp.Cacheable {
		w.Header().Set("Cache-Control", cacheControl)
	}
	s.writeJSON(w, resp)

	s.Log.Info("repair-batch",
		"items", len(req.Items),
		"ok", resp.OK,
		"reason", resp.Reason,
		"elapsed", time.Since(started).Round(time.Millisecond).String())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(metrics.Format()))
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Log.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, reason, note string) {
	s.writeJSON(w, errorResponse{
		Reason:  reason,
		Note:    note,
		Results: []validate.Outcome{},
	})
}

// callerKey identifies the client for rate limiting: the first hop of
// X-Forwarded-For when present, else the peer address.
func callerKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
