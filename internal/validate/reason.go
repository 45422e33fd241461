package validate

// Reason classifies the result of validating one video reference.
// The set is closed: every outcome carries exactly one of these values.
type Reason string

const (
	ReasonOK                    Reason = "ok"
	ReasonPlaylist              Reason = "playlist"
	ReasonInvalidURL            Reason = "invalid_url"
	ReasonPrivate               Reason = "private"
	ReasonUnlistedNonEmbeddable Reason = "unlisted_non_embeddable"
	ReasonAgeRestricted         Reason = "age_restricted"
	ReasonLive                  Reason = "live"
	ReasonRegionBlocked         Reason = "region_blocked"
	ReasonEmbedDisabled         Reason = "embed_disabled"
	ReasonNotFound              Reason = "not_found"
	ReasonValidationFailed      Reason = "validation_failed"
	ReasonRepairDisabled        Reason = "repair_disabled"
	ReasonUnauthorized          Reason = "unauthorized"
	ReasonRateLimited           Reason = "rate_limited"
	ReasonError                 Reason = "error"
)

// Reasons lists every reason in stable display order, ok first.
func Reasons() []Reason {
	return []Reason{
		ReasonOK,
		ReasonPlaylist,
		ReasonInvalidURL,
		ReasonPrivate,
		ReasonUnlistedNonEmbeddable,
		ReasonAgeRestricted,
		ReasonLive,
		ReasonRegionBlocked,
		ReasonEmbedDisabled,
		ReasonNotFound,
		ReasonValidationFailed,
		ReasonRepairDisabled,
		ReasonUnauthorized,
		ReasonRateLimited,
		ReasonError,
	}
}

// Restriction reports whether r is a platform restriction detected by the
// detailed tier, as opposed to an input or infrastructure condition.
func (r Reason) Restriction() bool {
	switch r {
	case ReasonPrivate, ReasonUnlistedNonEmbeddable, ReasonAgeRestricted,
		ReasonLive, ReasonRegionBlocked, ReasonEmbedDisabled, ReasonNotFound:
		return true
	}
	return false
}
