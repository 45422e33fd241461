// Package batch resolves lists of video references into complete,
// well-formed validation result sets. A batch never partially fails:
// every gate and error path degrades into per-item outcomes with reason
// codes, not exceptions.
package batch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/adhamqabban37/vidrepair/internal/metrics"
	"github.com/adhamqabban37/vidrepair/internal/validate"
	"github.com/adhamqabban37/vidrepair/internal/youtube"
)

// Reference is one caller-supplied video reference.
type Reference struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Response is the uniform batch envelope. It always accompanies an
// HTTP 200; request-level failure is communicated through OK and Reason.
type Response struct {
	OK      bool               `json:"ok"`
	Reason  validate.Reason    `json:"reason,omitempty"`
	Note    string             `json:"note,omitempty"`
	Results []validate.Outcome `json:"results"`

	// Cacheable is true only on the full-processing success path, where
	// the HTTP layer may attach a public cache directive.
	Cacheable bool `json:"-"`
}

// Orchestrator applies the request gates and fans validation out over a
// concurrency-bounded worker pool.
type Orchestrator struct {
	Validator     validate.Strategy
	Limiter       RateLimiter
	RepairEnabled bool
	AdminToken    string
	ChunkSize     int // concurrent validations per chunk; defaults to 3
	Retry         validate.RetryConfig
}

// Process validates items on behalf of callerKey. Gates are applied in
// order; each short-circuit still derives a complete result per item
// using only cheap identifier extraction, never a network call.
func (o *Orchestrator) Process(ctx context.Context, callerKey, token string, items []Reference) (resp Response) {
	metrics.IncrBatchRequests()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("batch processing panic", slog.Any("panic", r))
			resp = Response{
				OK:      false,
				Reason:  validate.ReasonError,
				Note:    "an error occurred during batch processing",
				Results: []validate.Outcome{},
			}
		}
	}()

	if !o.RepairEnabled {
		return advisoryResponse(items, validate.ReasonRepairDisabled, "video repair feature is currently disabled")
	}

	if token == "" || token != o.AdminToken {
		return advisoryResponse(items, validate.ReasonUnauthorized, "authentication required for video repair")
	}

	if o.Limiter != nil && !o.Limiter.Allow(callerKey) {
		metrics.IncrRateLimited()
		slog.Warn("rate limit exceeded", slog.String("caller", callerKey))
		return advisoryResponse(items, validate.ReasonRateLimited, "rate limit exceeded, try again later")
	}

	slog.Info("batch validation", slog.String("caller", callerKey), slog.Int("count", len(items)))

	results := make([]validate.Outcome, len(items))
	width := o.ChunkSize
	if width <= 0 {
		width = 3
	}

	// Fixed-size chunks: each chunk is fully awaited before the next
	// starts, so at most `width` lookups are in flight at any instant.
	for start := 0; start < len(items); start += width {
		end := min(start+width, len(items))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = o.processItem(gctx, items[i])
				return nil
			})
		}
		_ = g.Wait()
	}

	return Response{OK: true, Results: results, Cacheable: true}
}

func (o *Orchestrator) processItem(ctx context.Context, ref Reference) validate.Outcome {
	metrics.IncrItemsProcessed()
	url := ref.URL

	switch {
	case youtube.IsPlaylistURL(url):
		return validate.Outcome{
			OriginalURL: url,
			Title:       ref.Title,
			OK:          true,
			Reason:      validate.ReasonPlaylist,
			OpenURL:     url,
			Note:        "playlists cannot be embedded",
		}
	case !youtube.IsYouTubeURL(url):
		out := validate.Fallback(url, validate.ReasonInvalidURL, "")
		out.Title = ref.Title
		return out
	}

	out, err := validate.Retry(ctx, o.Retry, func() (validate.Outcome, error) {
		return o.Validator.Validate(ctx, url)
	})
	if err != nil {
		metrics.IncrValidationErrors()
		slog.Warn("validation unavailable", slog.String("url", url), slog.Any("error", err))
		failed := validate.Fallback(url, validate.ReasonValidationFailed, "could not validate video, external link provided")
		failed.Title = ref.Title
		return failed
	}

	if out.Title == "" {
		out.Title = ref.Title
	}
	if out.Reason.Restriction() && !out.Embeddable && out.Note == "" {
		out.Note = "video cannot be embedded, external link provided"
	}
	return out
}

// advisoryResponse resolves every item through cheap identifier extraction
// with a shared gate reason.
func advisoryResponse(items []Reference, reason validate.Reason, note string) Response {
	results := make([]validate.Outcome, len(items))
	for i, ref := range items {
		results[i] = validate.Advisory(ref.URL, ref.Title, reason, note)
	}
	return Response{OK: true, Results: results}
}
