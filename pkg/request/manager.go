package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/crystal-mush/emberfall/pkg/world"
)

// DefaultRetentionDays is how long archived-and-closed requests are kept
// before retention cleanup deletes them.
const DefaultRetentionDays = 30

// titleNoticeLimit caps the title length quoted in creation notifications.
const titleNoticeLimit = 50

// Manager is the stateless workflow façade: each operation validates its
// input, mutates the request, stamps DateModified, writes through the store,
// and fans out a notification. All failures are ValidationErrors; the
// command layer shows their text to the user verbatim.
//
// The manager performs no privilege checks. Who may call which operation is
// the command layer's policy.
type Manager struct {
	store    Store
	notifier *Notifier
	now      func() time.Time
}

// NewManager creates a workflow manager over the given store and router.
func NewManager(store Store, notifier *Notifier) *Manager {
	return &Manager{store: store, notifier: notifier, now: time.Now}
}

// SetClock replaces the manager's time source. Tests use a fixed clock.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// NextID returns one more than the highest existing request id, or 1 when
// none exist. This is a read-scan-then-use pattern with no atomic
// reservation; the single command loop makes that safe, but parallel
// creation from independent processes could duplicate ids.
func (m *Manager) NextID() int {
	maxID := 0
	for _, r := range m.store.All() {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	return maxID + 1
}

// Create makes and persists a new request with the next sequential id,
// status Open and category General, then notifies participants.
func (m *Manager) Create(title, text string, submitter world.Ref) (*Request, error) {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	if title == "" {
		return nil, invalidf("Request title cannot be empty")
	}
	if text == "" {
		return nil, invalidf("Request text cannot be empty")
	}

	now := m.now()
	r := &Request{
		ID:           m.NextID(),
		Title:        title,
		Text:         text,
		Submitter:    submitter,
		Status:       StatusOpen,
		Category:     CategoryGeneral,
		DateCreated:  now,
		DateModified: now,
		LastViewedBy: make(map[world.Ref]time.Time),
	}
	if err := m.store.Put(r); err != nil {
		return nil, fmt.Errorf("request: persist new request: %w", err)
	}

	notice := title
	if runes := []rune(notice); len(runes) > titleNoticeLimit {
		notice = string(runes[:titleNoticeLimit]) + "..."
	}
	m.notifier.Update(r, fmt.Sprintf("New request created: %s", notice), world.Nobody, true)
	return r, nil
}

// AddComment appends a comment and notifies participants.
func (m *Manager) AddComment(r *Request, author world.Ref, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return invalidf("Comment text cannot be empty")
	}

	now := m.now()
	r.Comments = append(r.Comments, Comment{Author: author, Text: text, Date: now})
	r.DateModified = now
	if err := m.store.Put(r); err != nil {
		return fmt.Errorf("request: persist comment on #%d: %w", r.ID, err)
	}
	m.notifier.Update(r, fmt.Sprintf("New comment by %s", m.notifier.ActorName(author)), world.Nobody, true)
	return nil
}

// Assign sets the assignee and notifies participants. The message
// distinguishes a first assignment from a reassignment.
func (m *Manager) Assign(r *Request, staff world.Ref) error {
	old := r.AssignedTo
	r.AssignedTo = staff
	r.DateModified = m.now()
	if err := m.store.Put(r); err != nil {
		return fmt.Errorf("request: persist assignment on #%d: %w", r.ID, err)
	}

	msg := fmt.Sprintf("Assigned to %s", m.notifier.ActorName(staff))
	if old != world.Nobody {
		msg = fmt.Sprintf("Reassigned from %s to %s", m.notifier.ActorName(old), m.notifier.ActorName(staff))
	}
	m.notifier.Update(r, msg, world.Nobody, true)
	return nil
}

// SetStatus changes the status, matching the input case-insensitively
// against the valid set. Closing also stamps DateClosed and DateArchived in
// the same operation and sends a combined notification.
func (m *Manager) SetStatus(r *Request, newStatus string) error {
	status, ok := NormalizeStatus(newStatus)
	if !ok {
		return invalidf("Status must be one of: %s", strings.Join(ValidStatuses, ", "))
	}

	old := r.Status
	now := m.now()
	r.Status = status
	r.DateModified = now

	if status == StatusClosed {
		closed := now
		r.DateClosed = &closed
		archived := now
		r.DateArchived = &archived
		if err := m.store.Put(r); err != nil {
			return fmt.Errorf("request: persist status on #%d: %w", r.ID, err)
		}
		m.notifier.Update(r, fmt.Sprintf("Status changed from %s to %s and request has been archived", old, status), world.Nobody, true)
		return nil
	}

	if err := m.store.Put(r); err != nil {
		return fmt.Errorf("request: persist status on #%d: %w", r.ID, err)
	}
	m.notifier.Update(r, fmt.Sprintf("Status changed from %s to %s", old, status), world.Nobody, true)
	return nil
}

// SetCategory changes the category. Exact-case match required.
func (m *Manager) SetCategory(r *Request, newCategory string) error {
	if !ValidCategory(newCategory) {
		return invalidf("Category must be one of: %s", strings.Join(ValidCategories, ", "))
	}

	old := r.Category
	r.Category = newCategory
	r.DateModified = m.now()
	if err := m.store.Put(r); err != nil {
		return fmt.Errorf("request: persist category on #%d: %w", r.ID, err)
	}
	m.notifier.Update(r, fmt.Sprintf("Category changed from %s to %s", old, newCategory), world.Nobody, true)
	return nil
}

// SetArchived archives or unarchives explicitly. Requesting the state the
// request is already in is an error, not a silent no-op.
func (m *Manager) SetArchived(r *Request, archived bool) error {
	if archived && r.IsArchived() {
		return invalidf("Request is already archived")
	}
	if !archived && !r.IsArchived() {
		return invalidf("Request is not archived")
	}

	now := m.now()
	if archived {
		r.DateArchived = &now
	} else {
		r.DateArchived = nil
	}
	r.DateModified = now
	if err := m.store.Put(r); err != nil {
		return fmt.Errorf("request: persist archive state on #%d: %w", r.ID, err)
	}

	msg := "Request has been archived"
	if !archived {
		msg = "Request has been unarchived"
	}
	m.notifier.Update(r, msg, world.Nobody, true)
	return nil
}

// SetResolution sets the resolution text. Later calls overwrite the prior
// text; no history is kept.
func (m *Manager) SetResolution(r *Request, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return invalidf("Resolution text cannot be empty")
	}

	r.Resolution = text
	r.DateModified = m.now()
	if err := m.store.Put(r); err != nil {
		return fmt.Errorf("request: persist resolution on #%d: %w", r.ID, err)
	}
	m.notifier.Update(r, "Resolution added to request", world.Nobody, true)
	return nil
}

// RecordResolution sets the resolution without a notification of its own.
// The close flow uses it so the status change carries the only update.
func (m *Manager) RecordResolution(r *Request, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return invalidf("Resolution text cannot be empty")
	}
	r.Resolution = text
	r.DateModified = m.now()
	if err := m.store.Put(r); err != nil {
		return fmt.Errorf("request: persist resolution on #%d: %w", r.ID, err)
	}
	return nil
}

// MarkViewed records that the actor viewed the request and persists the
// view map. DateModified is deliberately untouched.
func (m *Manager) MarkViewed(r *Request, actor world.Ref) error {
	if actor == world.Nobody {
		return nil
	}
	r.MarkViewed(actor, m.now())
	if err := m.store.Put(r); err != nil {
		return fmt.Errorf("request: persist view state on #%d: %w", r.ID, err)
	}
	return nil
}

// CleanupOldRequests deletes requests that are archived, closed, and whose
// archive stamp is older than the retention window. Returns the count
// deleted. A closed request that somehow lost its archive stamp is retained.
func (m *Manager) CleanupOldRequests(days int) (int, error) {
	if days <= 0 {
		days = DefaultRetentionDays
	}
	cutoff := m.now().AddDate(0, 0, -days)

	count := 0
	for _, r := range m.store.All() {
		if !r.IsArchived() || !r.IsClosed() {
			continue
		}
		if !r.DateArchived.Before(cutoff) {
			continue
		}
		if err := m.store.Delete(r.ID); err != nil {
			return count, fmt.Errorf("request: delete #%d: %w", r.ID, err)
		}
		count++
	}
	return count, nil
}

// MigrateAllCategories rewrites any request whose category fell outside the
// current valid set back to the default, returning the count migrated. This
// is the schema-evolution step for category set changes.
func (m *Manager) MigrateAllCategories() (int, error) {
	count := 0
	for _, r := range m.store.All() {
		if ValidCategory(r.Category) {
			continue
		}
		old := r.Category
		r.Category = CategoryGeneral
		r.DateModified = m.now()
		if err := m.store.Put(r); err != nil {
			return count, fmt.Errorf("request: migrate category on #%d: %w", r.ID, err)
		}
		m.notifier.Update(r, fmt.Sprintf("Category migrated from %s to General (old category no longer valid)", old), world.Nobody, true)
		count++
	}
	return count, nil
}
