package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/adhamqabban37/vidrepair/internal/metrics"
)

const oembedEndpoint = "https://www.youtube.com/oembed"

// OEmbedInfo is the fast-tier metadata for an embeddable-looking video.
type OEmbedInfo struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// OEmbedClient performs the unauthenticated fast-tier lookup. A successful
// response is an optimistic signal only: oEmbed cannot see restriction
// categories such as age rating or region blocks.
type OEmbedClient struct {
	HTTP     *http.Client
	Timeout  time.Duration // per-lookup bound, enforced via context
	Endpoint string        // override for tests; defaults to the public oEmbed endpoint
}

// Lookup fetches oEmbed metadata for a watch URL. A non-2xx status means
// the video is unavailable to oEmbed (private, deleted, or similar) and
// yields (nil, nil); transport failures and timeouts return an error so
// the retry wrapper can distinguish them.
func (c *OEmbedClient) Lookup(ctx context.Context, watchURL string) (*OEmbedInfo, error) {
	metrics.IncrOEmbedRequests()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q := url.Values{}
	q.Set("url", watchURL)
	q.Set("format", "json")

	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = oembedEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("oembed request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var info OEmbedInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("oembed decode: %w", err)
	}
	return &info, nil
}

func (c *OEmbedClient) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
