package domain

import "fmt"

// Status represents a product's position in the curation lifecycle
type Status string

const (
	StatusDraft               Status = "DRAFT"
	StatusPendingVerification Status = "PENDING_VERIFICATION"
	StatusVerified            Status = "VERIFIED"
	StatusPublished           Status = "PUBLISHED"
	StatusArchived            Status = "ARCHIVED"
)

// AllStatuses lists every known status in lifecycle order
var AllStatuses = []Status{
	StatusDraft,
	StatusPendingVerification,
	StatusVerified,
	StatusPublished,
	StatusArchived,
}

// legalTransitions holds the allowed forward edges of the lifecycle.
// Restore from ARCHIVED is an explicit operation, not a transition edge.
var legalTransitions = map[Status][]Status{
	StatusDraft:               {StatusPendingVerification},
	StatusPendingVerification: {StatusVerified},
	StatusVerified:            {StatusPublished, StatusArchived},
	StatusPublished:           {StatusArchived},
	StatusArchived:            {},
}

// ParseStatus converts raw text into a Status. An unknown value is a caller
// error and is reported as such; data-integrity decisions (CanTransition)
// never raise and fail closed instead.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := legalTransitions[s]; !ok {
		return "", fmt.Errorf("unknown product status %q", raw)
	}
	return s, nil
}

// IsValid reports whether the status is one of the known lifecycle states
func (s Status) IsValid() bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransition reports whether moving from current to requested is a legal
// lifecycle edge. Pure and total: self-transitions are always illegal, and
// unknown states on either side fail closed.
func CanTransition(current, requested Status) bool {
	if current == requested {
		return false
	}

	edges, ok := legalTransitions[current]
	if !ok || !requested.IsValid() {
		return false
	}

	for _, next := range edges {
		if next == requested {
			return true
		}
	}

	return false
}
