// Package player decides how a single validation outcome is rendered:
// an inline embed, a click-to-play thumbnail, or an external fallback
// card. It is the render contract for any UI consumer.
package player

import (
	"github.com/adhamqabban37/vidrepair/internal/validate"
)

// State is the render state for one video reference.
type State int

const (
	// StateLoading is the initial state, before an outcome arrives.
	StateLoading State = iota
	// StateThumbnail shows the thumbnail with a play affordance; the
	// embed is deferred until explicit interaction.
	StateThumbnail
	// StateIframe renders the inline player. Only reachable from
	// StateThumbnail via Activate, never automatically.
	StateIframe
	// StateFallback renders a thumbnail (when available) and an outbound
	// link. Terminal: there is no path back to loading without a fresh
	// reference.
	StateFallback
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateThumbnail:
		return "thumbnail"
	case StateIframe:
		return "iframe"
	case StateFallback:
		return "fallback"
	}
	return "unknown"
}

// View is what the current state renders.
type View struct {
	State     State
	EmbedURL  string // set only in StateIframe
	Thumbnail string
	OpenURL   string
	Title     string
	Message   string // short human-readable explanation in StateFallback
}

// Player is the per-reference decision state machine.
type Player struct {
	state   State
	outcome validate.Outcome
}

// New returns a player in the loading state.
func New() *Player {
	return &Player{state: StateLoading}
}

// Resolve consumes the validation outcome. An embed URL moves the player
// to the thumbnail state; anything else terminates in fallback.
func (p *Player) Resolve(out validate.Outcome) State {
	if p.state != StateLoading {
		return p.state
	}
	p.outcome = out
	if out.EmbedURL != "" {
		p.state = StateThumbnail
	} else {
		p.state = StateFallback
	}
	return p.state
}

// Activate handles the user's click on the thumbnail. Embedding is
// click-gated to avoid autoplay and the iframe's network cost; no other
// state reacts to activation.
func (p *Player) Activate() State {
	if p.state == StateThumbnail {
		p.state = StateIframe
	}
	return p.state
}

// Fail terminates in the fallback state, e.g. when fetching the outcome
// itself failed. The fallback card still offers whatever is known.
func (p *Player) Fail(originalURL string) State {
	if p.state == StateIframe {
		return p.state
	}
	if p.outcome.OpenURL == "" {
		p.outcome = validate.Fallback(originalURL, validate.ReasonValidationFailed, "")
	}
	p.state = StateFallback
	return p.state
}

// State returns the current render state.
func (p *Player) State() State {
	return p.state
}

// View builds the render model for the current state. Every terminal
// state yields either a playable embed or an outbound link with a short
// explanation, never a raw error or a dead region.
func (p *Player) View() View {
	v := View{
		State:     p.state,
		Thumbnail: p.outcome.Thumbnail,
		OpenURL:   p.outcome.OpenURL,
		Title:     p.outcome.Title,
	}
	switch p.state {
	case StateIframe:
		v.EmbedURL = p.outcome.EmbedURL
	case StateFallback:
		v.Message = FallbackMessage(p.outcome.Reason)
	}
	return v
}

// FallbackMessage maps a reason to the short explanation shown on the
// fallback card. All failure modes are normalized into the same "watch
// on YouTube" affordance with a one-line why.
func FallbackMessage(r validate.Reason) string {
	switch r {
	case validate.ReasonPlaylist:
		return "Playlists can't be embedded — open on YouTube."
	case validate.ReasonInvalidURL:
		return "This link isn't a playable video."
	case validate.ReasonPrivate:
		return "This video is private."
	case validate.ReasonUnlistedNonEmbeddable:
		return "This video can't be embedded here."
	case validate.ReasonAgeRestricted:
		return "This video is age-restricted and must be watched on YouTube."
	case validate.ReasonLive:
		return "Live streams open on YouTube."
	case validate.ReasonRegionBlocked:
		return "This video isn't available in every region."
	case validate.ReasonEmbedDisabled:
		return "The video owner has disabled embedding."
	case validate.ReasonNotFound:
		return "This video is no longer available."
	case validate.ReasonRepairDisabled, validate.ReasonUnauthorized, validate.ReasonRateLimited:
		return "Preview unavailable right now — open on YouTube."
	default:
		return "Couldn't verify this video — open it on YouTube."
	}
}
