package entitlements

// Access is what a user may see on the trend dashboard.
type Access string

const (
	// AccessPreview shows the teaser slice of a trend search.
	AccessPreview Access = "preview"
	// AccessFull shows the complete result set.
	AccessFull Access = "full"
)

// previewResultLimit caps how many results an unpaid user sees.
const previewResultLimit = 3

// FromVerdict maps the paywall verdict to a dashboard access level.
func FromVerdict(hasPaid bool) Access {
	if hasPaid {
		return AccessFull
	}
	return AccessPreview
}

// VisibleResults returns how many of total results the access level allows.
func VisibleResults(a Access, total int) int {
	if a == AccessFull {
		return total
	}
	if total < previewResultLimit {
		return total
	}
	return previewResultLimit
}
