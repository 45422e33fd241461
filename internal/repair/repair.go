// Package repair finds embeddable replacements for video references that
// failed validation.
package repair

import (
	"context"
	"log/slog"
	"strings"

	"github.com/adhamqabban37/vidrepair/internal/metrics"
	"github.com/adhamqabban37/vidrepair/internal/validate"
)

// ReplacementCandidate records a successful repair: an embeddable video
// found via search to stand in for a broken reference.
type ReplacementCandidate struct {
	OriginalURL      string `json:"originalUrl"`
	ReplacementID    string `json:"replacementId"`
	ReplacementTitle string `json:"replacementTitle"`
}

// Searcher returns ranked video candidates for a query.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]validate.SearchResult, error)
}

// Vetter checks a candidate ID against the detailed validation tier.
type Vetter interface {
	Embeddable(ctx context.Context, id string) (bool, error)
}

// Resolver searches for an embeddable substitute video. Both the search
// credential and the repair feature flag are preconditions owned by the
// caller; a Resolver only exists when repair is actually possible.
type Resolver struct {
	Search        Searcher
	Vet           Vetter
	MaxCandidates int // per query variant; defaults to 6
}

// FindReplacement tries escalating query variants built from topic and
// returns the first search candidate the detailed tier reports as
// embeddable. Candidates are taken strictly in the order the search
// supplied them; no re-ranking. Returns nil when no variant yields an
// embeddable hit.
func (r *Resolver) FindReplacement(ctx context.Context, originalURL, topic string) (*ReplacementCandidate, error) {
	metrics.IncrRepairAttempts()

	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "tech tutorial"
	}
	max := r.MaxCandidates
	if max <= 0 {
		max = 6
	}

	for _, query := range queryVariants(topic) {
		candidates, err := r.Search.Search(ctx, query, max)
		if err != nil {
			slog.Debug("repair search failed", slog.String("query", query), slog.Any("error", err))
			continue
		}
		for _, c := range candidates {
			ok, err := r.Vet.Embeddable(ctx, c.ID)
			if err != nil {
				slog.Debug("repair candidate vetting failed", slog.String("id", c.ID), slog.Any("error", err))
				continue
			}
			if ok {
				metrics.IncrRepairHits()
				return &ReplacementCandidate{
					OriginalURL:      originalURL,
					ReplacementID:    c.ID,
					ReplacementTitle: c.Title,
				}, nil
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// queryVariants escalates from the bare topic to more specific phrasings.
func queryVariants(topic string) []string {
	return []string{topic, topic + " tutorial", topic + " explained"}
}
