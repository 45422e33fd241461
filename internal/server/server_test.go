package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adhamqabban37/vidrepair/internal/batch"
	"github.com/adhamqabban37/vidrepair/internal/validate"
)

type okStrategy struct{ calls int }

func (s *okStrategy) Validate(_ context.Context, rawURL string) (validate.Outcome, error) {
	s.calls++
	return validate.Outcome{
		OriginalURL: rawURL,
		OK:          true,
		Reason:      validate.ReasonOK,
		Embeddable:  true,
		EmbedURL:    "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
		OpenURL:     "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}, nil
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

const testToken = "test-token"

func newTestServer(strat validate.Strategy) *Server {
	return New(&batch.Orchestrator{
		Validator:     strat,
		Limiter:       allowAll{},
		RepairEnabled: true,
		AdminToken:    testToken,
		Retry:         validate.RetryConfig{MaxAttempts: 1},
	}, nil)
}

func postBatch(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/repair-batch", strings.NewReader(body))
	req.Header.Set("X-Admin-Token", testToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) batch.Response {
	t.Helper()
	var resp batch.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestRepairBatchSuccess(t *testing.T) {
	strat := &okStrategy{}
	h := newTestServer(strat).Handler()

	rec := postBatch(t, h, `{"items":[{"url":"https://youtu.be/dQw4w9WgXcQ"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.OK || len(resp.Results) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Results[0].Reason != validate.ReasonOK {
		t.Errorf("reason = %q, want ok", resp.Results[0].Reason)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	cc := rec.Header().Get("Cache-Control")
	if !strings.Contains(cc, "max-age=120") || !strings.Contains(cc, "stale-while-revalidate=300") {
		t.Errorf("cache control = %q", cc)
	}
}

func TestRepairBatchMethodGate(t *testing.T) {
	h := newTestServer(&okStrategy{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/repair-batch", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on method gate", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.OK || resp.Reason != "method_not_allowed" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("results should be present and empty: %+v", resp.Results)
	}
}

func TestRepairBatchMalformedBody(t *testing.T) {
	strat := &okStrategy{}
	h := newTestServer(strat).Handler()

	rec := postBatch(t, h, `{"items": not json`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even on malformed body", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reason != "invalid_body" {
		t.Errorf("reason = %q, want invalid_body", resp.Reason)
	}
	if strat.calls != 0 {
		t.Errorf("validator called %d times on malformed body", strat.calls)
	}
}

func TestRepairBatchMissingItemsArray(t *testing.T) {
	h := newTestServer(&okStrategy{}).Handler()

	rec := postBatch(t, h, `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Reason != "invalid_body" {
		t.Errorf("reason = %q, want invalid_body", resp.Reason)
	}
}

func TestRepairBatchNoCacheHeaderOnGatedResponse(t *testing.T) {
	srv := New(&batch.Orchestrator{
		Validator:     &okStrategy{},
		Limiter:       allowAll{},
		RepairEnabled: false,
		AdminToken:    testToken,
		Retry:         validate.RetryConfig{MaxAttempts: 1},
	}, nil)

	rec := postBatch(t, srv.Handler(), `{"items":[{"url":"https://youtu.be/dQw4w9WgXcQ"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "" {
		t.Errorf("gated response must not be cacheable, got %q", cc)
	}
	resp := decodeResponse(t, rec)
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Reason != validate.ReasonRepairDisabled {
		t.Errorf("reason = %q, want repair_disabled", resp.Results[0].Reason)
	}
}

type rejectAll struct{ keys []string }

func (r *rejectAll) Allow(key string) bool {
	r.keys = append(r.keys, key)
	return false
}

func TestCallerKeyPrefersForwardedFor(t *testing.T) {
	lim := &rejectAll{}
	srv := New(&batch.Orchestrator{
		Validator:     &okStrategy{},
		Limiter:       lim,
		RepairEnabled: true,
		AdminToken:    testToken,
		Retry:         validate.RetryConfig{MaxAttempts: 1},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/repair-batch",
		strings.NewReader(`{"items":[{"url":"https://youtu.be/dQw4w9WgXcQ"}]}`))
	req.Header.Set("X-Admin-Token", testToken)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.RemoteAddr = "192.0.2.1:4711"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if len(lim.keys) != 1 || lim.keys[0] != "203.0.113.9" {
		t.Errorf("limiter keys = %v, want first forwarded hop", lim.keys)
	}
	resp := decodeResponse(t, rec)
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Reason != validate.ReasonRateLimited {
		t.Errorf("reason = %q, want rate_limited", resp.Results[0].Reason)
	}
}

func TestCallerKeyFallsBackToRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/repair-batch", nil)
	req.RemoteAddr = "192.0.2.7:9999"
	if got := callerKey(req); got != "192.0.2.7" {
		t.Errorf("callerKey = %q, want 192.0.2.7", got)
	}
}

func TestAdminTokenForwarded(t *testing.T) {
	srv := New(&batch.Orchestrator{
		Validator:     &okStrategy{},
		Limiter:       allowAll{},
		RepairEnabled: true,
		AdminToken:    "s3cret",
		Retry:         validate.RetryConfig{MaxAttempts: 1},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/repair-batch",
		strings.NewReader(`{"items":[{"url":"https://youtu.be/dQw4w9WgXcQ"}]}`))
	req.Header.Set("X-Admin-Token", "s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	resp := decodeResponse(t, rec)
	if !resp.OK {
		t.Errorf("valid token rejected: %+v", resp)
	}
	if len(resp.Results) != 1 || resp.Results[0].Reason != validate.ReasonOK {
		t.Errorf("valid token results = %+v", resp.Results)
	}

	// postBatch carries the suite token, which does not match this
	// orchestrator's secret.
	rec = postBatch(t, srv.Handler(), `{"items":[{"url":"https://youtu.be/dQw4w9WgXcQ"}]}`)
	resp = decodeResponse(t, rec)
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Reason != validate.ReasonUnauthorized {
		t.Errorf("wrong token reason = %q, want unauthorized", resp.Results[0].Reason)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(&okStrategy{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(&okStrategy{}).Handler()

	postBatch(t, h, `{"items":[{"url":"https://youtu.be/dQw4w9WgXcQ"}]}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "batch_requests") {
		t.Errorf("metrics body missing counters:\n%s", rec.Body.String())
	}
}
