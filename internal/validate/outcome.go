package validate

import "github.com/adhamqabban37/vidrepair/internal/youtube"

// Outcome is the result of validating one video reference.
//
// Invariants: EmbedURL is non-empty only when Embeddable is true, and
// OpenURL is always populated so every reference resolves to something
// the caller can act on, even when validation failed outright.
type Outcome struct {
	OriginalURL string `json:"originalUrl"`
	Title       string `json:"title,omitempty"`
	OK          bool   `json:"ok"`
	Reason      Reason `json:"reason"`
	Embeddable  bool   `json:"embeddable"`
	EmbedURL    string `json:"embedUrl,omitempty"`
	OpenURL     string `json:"openUrl"`
	Author      string `json:"author,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
	Description string `json:"description,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Fallback builds a non-embeddable outcome for rawURL with the given reason.
// OpenURL prefers the canonical watch page when an ID is extractable,
// falling back to the raw input.
func Fallback(rawURL string, reason Reason, note string) Outcome {
	out := Outcome{
		OriginalURL: rawURL,
		OK:          true,
		Reason:      reason,
		OpenURL:     rawURL,
		Note:        note,
	}
	if id := youtube.ExtractVideoID(rawURL); id != "" {
		out.OpenURL = youtube.WatchURL(id)
		out.Thumbnail = youtube.ThumbnailURL(id)
	}
	if out.OpenURL == "" {
		out.OpenURL = "https://www.youtube.com"
	}
	return out
}

// Advisory builds an outcome for a request gate short-circuit
// (repair_disabled, unauthorized, rate_limited). Only cheap identifier
// extraction is used: when an ID is present the embed URL is still
// offered optimistically, since no validation has ruled it out.
func Advisory(rawURL, title string, reason Reason, note string) Outcome {
	out := Outcome{
		OriginalURL: rawURL,
		Title:       title,
		OK:          true,
		Reason:      reason,
		OpenURL:     rawURL,
		Note:        note,
	}
	if id := youtube.ExtractVideoID(rawURL); id != "" {
		out.Embeddable = true
		out.EmbedURL = youtube.EmbedURL(id)
		out.OpenURL = youtube.WatchURL(id)
		out.Thumbnail = youtube.ThumbnailURL(id)
	}
	if out.OpenURL == "" {
		out.OpenURL = "https://www.youtube.com"
	}
	return out
}
