package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/adhamqabban37/vidrepair/internal/metrics"
)

const dataAPIBase = "https://www.googleapis.com/youtube/v3"

// videoStatusFields filters the videos.list response down to the fields
// the classifier reads.
const videoStatusFields = "items(id," +
	"status/embeddable,status/privacyStatus," +
	"snippet/liveBroadcastContent,snippet/title,snippet/description,snippet/channelTitle," +
	"contentDetails/regionRestriction,contentDetails/contentRating/ytRating)"

// VideoStatus is the detailed-tier view of one video.
type VideoStatus struct {
	ID     string `json:"id"`
	Status struct {
		Embeddable    *bool  `json:"embeddable"`
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
	Snippet struct {
		Title                string `json:"title"`
		Description          string `json:"description"`
		ChannelTitle         string `json:"channelTitle"`
		LiveBroadcastContent string `json:"liveBroadcastContent"`
	} `json:"snippet"`
	ContentDetails struct {
		RegionRestriction *struct {
			Allowed []string `json:"allowed"`
			Blocked []string `json:"blocked"`
		} `json:"regionRestriction"`
		ContentRating struct {
			YTRating string `json:"ytRating"`
		} `json:"contentRating"`
	} `json:"contentDetails"`
}

type videoListResponse struct {
	Items []VideoStatus `json:"items"`
}

// SearchResult is one ranked candidate from the Data API search endpoint.
type SearchResult struct {
	ID           string
	Title        string
	Description  string
	ChannelTitle string
	Thumbnail    string
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			Thumbnails   struct {
				High    struct{ URL string `json:"url"` } `json:"high"`
				Default struct{ URL string `json:"url"` } `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// httpStatusError wraps a non-2xx Data API response status.
type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("data api status %d", e.StatusCode)
}

// DataAPIClient calls the YouTube Data API v3 over plain HTTP. When a
// fallback key is configured, quota or auth failures on the primary key
// are retried once against the fallback.
type DataAPIClient struct {
	Key         string
	FallbackKey string
	HTTP        *http.Client
	Timeout     time.Duration // per-call bound; external lookups are never unbounded
	BaseURL     string        // override for tests; defaults to the public API base
}

func (c *DataAPIClient) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return dataAPIBase
}

// Available reports whether a credential is configured at all.
func (c *DataAPIClient) Available() bool {
	return c != nil && c.Key != ""
}

// VideoStatus fetches status, snippet, and content details for one video ID.
// Returns (nil, nil) when the video does not exist.
func (c *DataAPIClient) VideoStatus(ctx context.Context, id string) (*VideoStatus, error) {
	metrics.IncrDataAPIRequests()

	var out videoListResponse
	err := c.doWithKeyFallback(ctx, func(key string) error {
		params := url.Values{}
		params.Set("id", id)
		params.Set("key", key)
		params.Set("part", "status,snippet,contentDetails")
		params.Set("fields", videoStatusFields)
		return c.getJSON(ctx, c.baseURL()+"/videos?"+params.Encode(), &out)
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	return &out.Items[0], nil
}

// Search returns up to max ranked video candidates for a query, in the
// order the API supplied them.
func (c *DataAPIClient) Search(ctx context.Context, query string, max int) ([]SearchResult, error) {
	metrics.IncrSearchRequests()
	if max <= 0 || max > 10 {
		max = 5
	}

	var out searchResponse
	err := c.doWithKeyFallback(ctx, func(key string) error {
		params := url.Values{}
		params.Set("key", key)
		params.Set("q", query)
		params.Set("type", "video")
		params.Set("part", "snippet")
		params.Set("maxResults", fmt.Sprintf("%d", max))
		params.Set("safeSearch", "moderate")
		return c.getJSON(ctx, c.baseURL()+"/search?"+params.Encode(), &out)
	})
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(out.Items))
	for _, it := range out.Items {
		if it.ID.VideoID == "" {
			continue
		}
		thumb := it.Snippet.Thumbnails.High.URL
		if thumb == "" {
			thumb = it.Snippet.Thumbnails.Default.URL
		}
		results = append(results, SearchResult{
			ID:           it.ID.VideoID,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			ChannelTitle: it.Snippet.ChannelTitle,
			Thumbnail:    thumb,
		})
	}
	return results, nil
}

// Embeddable reports whether the detailed tier classifies id as fully
// embeddable. Used by the repair resolver to vet search candidates.
func (c *DataAPIClient) Embeddable(ctx context.Context, id string) (bool, error) {
	status, err := c.VideoStatus(ctx, id)
	if err != nil {
		return false, err
	}
	return Classify(status) == ReasonOK, nil
}

// doWithKeyFallback runs fn with the primary key, then once more with the
// fallback key if the primary failed. Quota exhaustion surfaces as 403.
func (c *DataAPIClient) doWithKeyFallback(ctx context.Context, fn func(key string) error) error {
	keys := []string{c.Key}
	if c.FallbackKey != "" {
		keys = append(keys, c.FallbackKey)
	}
	var lastErr error
	for i, key := range keys {
		err := fn(key)
		if err == nil {
			return nil
		}
		lastErr = err
		if i < len(keys)-1 {
			slog.Debug("data api key failed, trying fallback", slog.Any("error", err))
		}
	}
	return lastErr
}

func (c *DataAPIClient) getJSON(ctx context.Context, rawURL string, v any) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("data api request: %w", err)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("data api lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("data api decode: %w", err)
	}
	return nil
}

// Classify derives a reason from a detailed-tier video status, evaluating
// restriction categories in fixed priority order. A nil status means the
// video was not found.
//
// The unlisted-and-non-embeddable case is checked before the general
// embed-disabled case on purpose: both require embedding to be off, so
// testing embed-disabled first would make unlisted_non_embeddable
// unreachable.
func Classify(status *VideoStatus) Reason {
	if status == nil {
		return ReasonNotFound
	}

	embeddable := status.Status.Embeddable == nil || *status.Status.Embeddable
	privacy := status.Status.PrivacyStatus
	live := status.Snippet.LiveBroadcastContent != "" && status.Snippet.LiveBroadcastContent != "none"
	rr := status.ContentDetails.RegionRestriction

	switch {
	case !embeddable && privacy == "unlisted":
		return ReasonUnlistedNonEmbeddable
	case !embeddable:
		return ReasonEmbedDisabled
	case privacy == "private":
		return ReasonPrivate
	case status.ContentDetails.ContentRating.YTRating == "ytAgeRestricted":
		return ReasonAgeRestricted
	case live:
		return ReasonLive
	case rr != nil && (len(rr.Allowed) > 0 || len(rr.Blocked) > 0):
		// Viewer region is unknown server-side, so any restriction is
		// conservatively treated as blocked.
		return ReasonRegionBlocked
	}
	return ReasonOK
}
