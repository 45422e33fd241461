package validate

import (
	"context"

	"github.com/adhamqabban37/vidrepair/internal/youtube"
)

// Strategy validates one raw video URL into an Outcome. The returned error
// is reserved for transient lookup failures worth retrying; every definitive
// answer, including restrictions and bad input, comes back as an Outcome.
type Strategy interface {
	Validate(ctx context.Context, rawURL string) (Outcome, error)
}

// NewStrategy selects the validation strategy from the available
// credentials: fast+detailed when a Data API key is configured, fast-only
// otherwise. The system degrades to optimistic fast-tier results rather
// than failing closed.
func NewStrategy(oembed *OEmbedClient, api *DataAPIClient, cache *OutcomeCache) Strategy {
	if api.Available() {
		return &fastDetailed{oembed: oembed, api: api, cache: cache}
	}
	return &fastOnly{oembed: oembed, cache: cache}
}

// fastOnly validates with the unauthenticated oEmbed lookup alone. It can
// tell "gone" from "present" but not why embedding would fail, so a
// positive result is optimistic.
type fastOnly struct {
	oembed *OEmbedClient
	cache  *OutcomeCache
}

func (s *fastOnly) Validate(ctx context.Context, rawURL string) (Outcome, error) {
	id := youtube.ExtractVideoID(rawURL)
	if id == "" {
		return Fallback(rawURL, ReasonInvalidURL, "could not extract a video ID"), nil
	}
	if out, ok := s.cache.Get(ctx, id); ok {
		out.OriginalURL = rawURL
		return out, nil
	}

	info, err := s.oembed.Lookup(ctx, youtube.WatchURL(id))
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	if info == nil {
		out = notFoundOutcome(rawURL, id)
	} else {
		out = embeddableOutcome(rawURL, id, info)
	}
	s.cache.Set(ctx, id, out)
	return out, nil
}

// fastDetailed runs the oEmbed lookup for enrichment and the credentialed
// Data API lookup for accurate restriction classification.
type fastDetailed struct {
	oembed *OEmbedClient
	api    *DataAPIClient
	cache  *OutcomeCache
}

func (s *fastDetailed) Validate(ctx context.Context, rawURL string) (Outcome, error) {
	id := youtube.ExtractVideoID(rawURL)
	if id == "" {
		return Fallback(rawURL, ReasonInvalidURL, "could not extract a video ID"), nil
	}
	if out, ok := s.cache.Get(ctx, id); ok {
		out.OriginalURL = rawURL
		return out, nil
	}

	info, err := s.oembed.Lookup(ctx, youtube.WatchURL(id))
	if err != nil {
		return Outcome{}, err
	}

	status, err := s.api.VideoStatus(ctx, id)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	switch {
	case status == nil && info != nil:
		// Detailed tier came back empty but oEmbed can see the video:
		// fall back to the optimistic fast-tier answer.
		out = embeddableOutcome(rawURL, id, info)
	case status == nil:
		out = notFoundOutcome(rawURL, id)
	default:
		out = classifiedOutcome(rawURL, id, status, info)
	}
	s.cache.Set(ctx, id, out)
	return out, nil
}

func embeddableOutcome(rawURL, id string, info *OEmbedInfo) Outcome {
	return Outcome{
		OriginalURL: rawURL,
		OK:          true,
		Reason:      ReasonOK,
		Embeddable:  true,
		EmbedURL:    youtube.EmbedURL(id),
		OpenURL:     youtube.WatchURL(id),
		Title:       info.Title,
		Author:      info.AuthorName,
		Thumbnail:   thumbnailOrDefault(info.ThumbnailURL, id),
	}
}

func notFoundOutcome(rawURL, id string) Outcome {
	return Outcome{
		OriginalURL: rawURL,
		OK:          true,
		Reason:      ReasonNotFound,
		OpenURL:     youtube.WatchURL(id),
		Thumbnail:   youtube.ThumbnailURL(id),
		Note:        "video not found",
	}
}

func classifiedOutcome(rawURL, id string, status *VideoStatus, info *OEmbedInfo) Outcome {
	reason := Classify(status)
	out := Outcome{
		OriginalURL: rawURL,
		OK:          true,
		Reason:      reason,
		Embeddable:  reason == ReasonOK,
		OpenURL:     youtube.WatchURL(id),
		Title:       status.Snippet.Title,
		Author:      status.Snippet.ChannelTitle,
		Thumbnail:   youtube.ThumbnailURL(id),
		Description: truncate(status.Snippet.Description, 200),
	}
	if out.Embeddable {
		out.EmbedURL = youtube.EmbedURL(id)
	}
	if info != nil {
		if info.Title != "" {
			out.Title = info.Title
		}
		if info.AuthorName != "" {
			out.Author = info.AuthorName
		}
		out.Thumbnail = thumbnailOrDefault(info.ThumbnailURL, id)
	}
	return out
}

func thumbnailOrDefault(thumb, id string) string {
	if thumb != "" {
		return thumb
	}
	return youtube.ThumbnailURL(id)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
