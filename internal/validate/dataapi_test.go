package validate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status *VideoStatus
		want   Reason
	}{
		{"nil status", nil, ReasonNotFound},
		{"clean video", &VideoStatus{}, ReasonOK},
		{
			"embed disabled",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.Status.Embeddable = boolPtr(false)
				return s
			}(),
			ReasonEmbedDisabled,
		},
		{
			"unlisted and non-embeddable",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.Status.Embeddable = boolPtr(false)
				s.Status.PrivacyStatus = "unlisted"
				return s
			}(),
			ReasonUnlistedNonEmbeddable,
		},
		{
			"private",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.Status.PrivacyStatus = "private"
				return s
			}(),
			ReasonPrivate,
		},
		{
			"age restricted",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.ContentDetails.ContentRating.YTRating = "ytAgeRestricted"
				return s
			}(),
			ReasonAgeRestricted,
		},
		{
			"live broadcast",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.Snippet.LiveBroadcastContent = "live"
				return s
			}(),
			ReasonLive,
		},
		{
			"upcoming broadcast",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.Snippet.LiveBroadcastContent = "upcoming"
				return s
			}(),
			ReasonLive,
		},
		{
			"region blocked list",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.ContentDetails.RegionRestriction = &struct {
					Allowed []string `json:"allowed"`
					Blocked []string `json:"blocked"`
				}{Blocked: []string{"DE"}}
				return s
			}(),
			ReasonRegionBlocked,
		},
		{
			"region allowlist",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.ContentDetails.RegionRestriction = &struct {
					Allowed []string `json:"allowed"`
					Blocked []string `json:"blocked"`
				}{Allowed: []string{"US"}}
				return s
			}(),
			ReasonRegionBlocked,
		},
		{
			"embed disabled beats live",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.Status.Embeddable = boolPtr(false)
				s.Snippet.LiveBroadcastContent = "live"
				return s
			}(),
			ReasonEmbedDisabled,
		},
		{
			"live broadcast none is not live",
			func() *VideoStatus {
				s := &VideoStatus{}
				s.Snippet.LiveBroadcastContent = "none"
				return s
			}(),
			ReasonOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.status); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVideoStatusKeyFallback(t *testing.T) {
	var keysSeen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		keysSeen = append(keysSeen, key)
		if key == "primary" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(videoListResponse{Items: []VideoStatus{{ID: "abc12345678"}}})
	}))
	defer srv.Close()

	c := &DataAPIClient{Key: "primary", FallbackKey: "secondary", BaseURL: srv.URL}
	status, err := c.VideoStatus(context.Background(), "abc12345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status == nil || status.ID != "abc12345678" {
		t.Fatalf("expected status via fallback key, got %+v", status)
	}
	if len(keysSeen) != 2 || keysSeen[0] != "primary" || keysSeen[1] != "secondary" {
		t.Errorf("expected primary then secondary key, saw %v", keysSeen)
	}
}

func TestVideoStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(videoListResponse{})
	}))
	defer srv.Close()

	c := &DataAPIClient{Key: "k", BaseURL: srv.URL}
	status, err := c.VideoStatus(context.Background(), "missing00000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != nil {
		t.Errorf("expected nil status for missing video, got %+v", status)
	}
}

func TestSearchParsesCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "video" {
			t.Errorf("expected type=video, got %q", got)
		}
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"videoId":"vid00000001"},"snippet":{"title":"First","channelTitle":"Chan","thumbnails":{"high":{"url":"https://thumb/high.jpg"}}}},
			{"id":{},"snippet":{"title":"No ID"}},
			{"id":{"videoId":"vid00000002"},"snippet":{"title":"Second","thumbnails":{"default":{"url":"https://thumb/default.jpg"}}}}
		]}`))
	}))
	defer srv.Close()

	c := &DataAPIClient{Key: "k", BaseURL: srv.URL}
	results, err := c.Search(context.Background(), "golang tutorial", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 candidates (entry without ID dropped), got %d", len(results))
	}
	if results[0].ID != "vid00000001" || results[0].Thumbnail != "https://thumb/high.jpg" {
		t.Errorf("unexpected first candidate: %+v", results[0])
	}
	if results[1].Thumbnail != "https://thumb/default.jpg" {
		t.Errorf("expected default thumbnail fallback, got %q", results[1].Thumbnail)
	}
}

func TestDataAPIClientUnavailable(t *testing.T) {
	var c *DataAPIClient
	if c.Available() {
		t.Error("nil client should not be available")
	}
	if (&DataAPIClient{}).Available() {
		t.Error("client without key should not be available")
	}
	if !(&DataAPIClient{Key: "k"}).Available() {
		t.Error("client with key should be available")
	}
}
