package world

// MailboxStore persists the per-actor offline notification queues. Entries
// are ordered strings in the exact format used for live delivery, so replay
// on reconnect is indistinguishable from live receipt.
type MailboxStore interface {
	AppendNotification(actor Ref, line string) error
	PendingNotifications(actor Ref) ([]string, error)
	ClearNotifications(actor Ref) error
}

// Mailbox is the offline delivery queue for actors without a live session.
type Mailbox struct {
	store MailboxStore
}

// NewMailbox wraps a persistent queue store.
func NewMailbox(store MailboxStore) *Mailbox {
	return &Mailbox{store: store}
}

// Append queues a notification line for later delivery.
func (m *Mailbox) Append(actor Ref, line string) error {
	if actor == Nobody {
		return nil
	}
	return m.store.AppendNotification(actor, line)
}

// Pending returns the queued lines without clearing them.
func (m *Mailbox) Pending(actor Ref) ([]string, error) {
	return m.store.PendingNotifications(actor)
}

// Flush returns the queued lines and clears the queue. Called when the
// actor reconnects.
func (m *Mailbox) Flush(actor Ref) ([]string, error) {
	lines, err := m.store.PendingNotifications(actor)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}
	if err := m.store.ClearNotifications(actor); err != nil {
		return nil, err
	}
	return lines, nil
}
