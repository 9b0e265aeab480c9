package request

import (
	"strings"
	"time"

	"github.com/crystal-mush/emberfall/pkg/world"
)

// Valid request statuses, in canonical casing.
const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusClosed     = "Closed"
)

// ValidStatuses lists every accepted status. Input is matched
// case-insensitively and normalized to this casing.
var ValidStatuses = []string{StatusOpen, StatusInProgress, StatusClosed}

// CategoryGeneral is the default category for new requests.
const CategoryGeneral = "General"

// ValidCategories lists every accepted category. Unlike statuses,
// categories require an exact-case match.
var ValidCategories = []string{"Bug", "Feature", "Question", "Character", CategoryGeneral}

// NormalizeStatus matches a status case-insensitively against the valid set
// and returns the canonical casing.
func NormalizeStatus(s string) (string, bool) {
	for _, valid := range ValidStatuses {
		if strings.EqualFold(valid, s) {
			return valid, true
		}
	}
	return "", false
}

// ValidCategory reports whether the category is in the valid set. Exact
// case match, no normalization.
func ValidCategory(s string) bool {
	for _, valid := range ValidCategories {
		if valid == s {
			return true
		}
	}
	return false
}

// Comment is one entry in a request's append-only comment log.
type Comment struct {
	Author world.Ref
	Text   string
	Date   time.Time
}

// Request is a player-submitted support ticket tracked through status and
// category. All workflow mutation goes through the Manager; the entity only
// holds state and derived queries.
type Request struct {
	ID         int
	Title      string
	Text       string
	Submitter  world.Ref
	AssignedTo world.Ref // Nobody = unassigned

	Status     string
	Category   string
	Comments   []Comment
	Resolution string

	DateCreated  time.Time
	DateModified time.Time
	DateClosed   *time.Time // set on first close, never cleared
	DateArchived *time.Time // presence means archived

	// LastViewedBy maps actor -> when that actor last viewed the request,
	// for the "has new activity" marker.
	LastViewedBy map[world.Ref]time.Time
}

// IsClosed reports whether the request's status is Closed.
func (r *Request) IsClosed() bool {
	return r.Status == StatusClosed
}

// IsArchived reports whether the canonical archival marker is set.
func (r *Request) IsArchived() bool {
	return r.DateArchived != nil
}

// InArchive reports whether the request belongs in the archived view.
// A request counts as archived for display and filtering purposes if it
// carries the archival marker or is closed (older records were closed
// without the marker).
func (r *Request) InArchive() bool {
	return r.IsArchived() || r.IsClosed()
}

// HasNewActivity reports whether the request changed since the actor last
// viewed it. An actor who never viewed it always sees new activity; Nobody
// never does.
func (r *Request) HasNewActivity(actor world.Ref) bool {
	if actor == world.Nobody {
		return false
	}
	lastViewed, ok := r.LastViewedBy[actor]
	if !ok {
		return true
	}
	return r.DateModified.After(lastViewed)
}

// MarkViewed records the actor's last-viewed time. No-op for Nobody.
func (r *Request) MarkViewed(actor world.Ref, at time.Time) {
	if actor == world.Nobody {
		return
	}
	if r.LastViewedBy == nil {
		r.LastViewedBy = make(map[world.Ref]time.Time)
	}
	r.LastViewedBy[actor] = at
}

// Participant is an interested actor tagged with current connectivity.
type Participant struct {
	Actor     world.Ref
	Connected bool
}

// Participants returns the submitter and, if different, the assignee, each
// tagged with connectivity from the given predicate.
func (r *Request) Participants(connected func(world.Ref) bool) []Participant {
	var out []Participant
	if r.Submitter != world.Nobody {
		out = append(out, Participant{Actor: r.Submitter, Connected: connected(r.Submitter)})
	}
	if r.AssignedTo != world.Nobody && r.AssignedTo != r.Submitter {
		out = append(out, Participant{Actor: r.AssignedTo, Connected: connected(r.AssignedTo)})
	}
	return out
}
