// Package youtube extracts and normalizes YouTube video references.
//
// All functions are pure: no network calls, no shared state. Callers are
// responsible for deciding what to do with unparseable or playlist URLs.
package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	watchBase = "https://www.youtube.com/watch?v="
	embedBase = "https://www.youtube-nocookie.com/embed/"
	thumbBase = "https://img.youtube.com/vi/"
)

// videoIDRE is the permissive fallback for malformed but recognizable URLs
// that net/url refuses to parse.
var videoIDRE = regexp.MustCompile(`(?:youtu\.be/|/v/|/embed/|/shorts/|/live/|watch\?v=|&v=)([a-zA-Z0-9_-]{11})`)

var idRE = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// ValidID reports whether s is a well-formed 11-character video ID.
func ValidID(s string) bool {
	return idRE.MatchString(s)
}

// ExtractVideoID pulls the 11-char video ID from any supported YouTube URL
// shape: youtu.be short links, /watch?v=, /embed/, /v/, /shorts/, /live/.
// Returns "" when no ID can be isolated.
func ExtractVideoID(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host := normalizeHost(u.Hostname())

		if host == "youtu.be" {
			if id := firstSegment(u.Path); ValidID(id) {
				return id
			}
		}

		if strings.HasSuffix(host, "youtube.com") {
			if u.Path == "/watch" {
				if v := u.Query().Get("v"); ValidID(v) {
					return v
				}
			}
			parts := splitPath(u.Path)
			if len(parts) >= 2 {
				switch parts[0] {
				case "embed", "v", "shorts", "live":
					if ValidID(parts[1]) {
						return parts[1]
					}
				}
			}
		}
	}

	// Structured parsing failed or matched nothing: permissive regex scan.
	if m := videoIDRE.FindStringSubmatch(rawURL); len(m) == 2 {
		return m[1]
	}
	return ""
}

// IsYouTubeURL reports whether rawURL points at a YouTube host.
func IsYouTubeURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := normalizeHost(u.Hostname())
	return host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

// IsPlaylistURL reports whether rawURL addresses a playlist. Playlist
// indicators take precedence over a v= parameter: a watch URL carrying
// list= is still a playlist reference.
func IsPlaylistURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Query().Get("list") != "" {
		return true
	}
	return strings.Contains(u.Path, "/playlist")
}

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(id string) string {
	return watchBase + id
}

// EmbedURL returns the privacy-enhanced embed URL for a video ID.
func EmbedURL(id string) string {
	return embedBase + id
}

// ThumbnailURL returns the hqdefault thumbnail for a video ID.
// hqdefault exists for every video, unlike maxresdefault.
func ThumbnailURL(id string) string {
	return thumbBase + id + "/hqdefault.jpg"
}

func normalizeHost(host string) string {
	host = strings.TrimPrefix(host, "www.")
	return strings.TrimPrefix(host, "m.")
}

func firstSegment(path string) string {
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			return p
		}
	}
	return ""
}

func splitPath(path string) []string {
	var out []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
