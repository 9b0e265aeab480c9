package request

import (
	"fmt"
	"log"

	"github.com/crystal-mush/emberfall/pkg/events"
	"github.com/crystal-mush/emberfall/pkg/world"
)

// Notifier routes one human-readable update line per request change to every
// interested actor exactly once: live through the event bus while connected,
// queued to the durable offline mailbox otherwise, plus a live-only courtesy
// broadcast to connected staff.
type Notifier struct {
	dir     *world.Directory
	bus     *events.Bus
	mailbox *world.Mailbox

	// OnDeliver, if set, is called once per delivery with live=true for bus
	// delivery and false for mailbox queuing. Used for metrics.
	OnDeliver func(live bool)
}

// NewNotifier wires the router to the actor directory, event bus, and
// offline mailbox.
func NewNotifier(dir *world.Directory, bus *events.Bus, mailbox *world.Mailbox) *Notifier {
	return &Notifier{dir: dir, bus: bus, mailbox: mailbox}
}

// FormatLine renders the notification line for a request update. Offline
// queue entries use the identical format so replay on reconnect is
// indistinguishable from live receipt.
func FormatLine(id int, message string) string {
	return fmt.Sprintf("[Request #%d] %s", id, message)
}

// Update delivers a notification about r to the submitter and assignee
// (deduplicated, skipping exclude), then broadcasts live-only to connected,
// unmuted staff who were not already notified. When offline is false, actors
// without a live session are skipped instead of queued.
func (n *Notifier) Update(r *Request, message string, exclude world.Ref, offline bool) {
	line := FormatLine(r.ID, message)
	notified := make(map[world.Ref]bool)
	if exclude != world.Nobody {
		notified[exclude] = true
	}

	recipients := []world.Ref{r.Submitter}
	if r.AssignedTo != world.Nobody && r.AssignedTo != r.Submitter {
		recipients = append(recipients, r.AssignedTo)
	}

	for _, ref := range recipients {
		if ref == world.Nobody || notified[ref] {
			continue
		}
		notified[ref] = true
		if n.dir.IsConnected(ref) {
			n.deliver(ref, r, line)
			continue
		}
		if !offline {
			continue
		}
		if err := n.mailbox.Append(ref, line); err != nil {
			log.Printf("request: queue notification for #%d: %v", ref, err)
			continue
		}
		if n.OnDeliver != nil {
			n.OnDeliver(false)
		}
	}

	// Secondary audience: connected staff see updates live or not at all.
	for _, staff := range n.dir.ConnectedStaff() {
		if notified[staff.Ref] || staff.RequestNotifyMute {
			continue
		}
		notified[staff.Ref] = true
		n.deliver(staff.Ref, r, line)
	}
}

func (n *Notifier) deliver(ref world.Ref, r *Request, line string) {
	n.bus.EmitToActor(ref, events.Event{
		Type:   events.EvRequest,
		Source: r.Submitter,
		Text:   line,
		Data:   map[string]any{"request": r.ID, "status": r.Status},
	})
	if n.OnDeliver != nil {
		n.OnDeliver(true)
	}
}

// ActorName resolves a display name for notification text.
func (n *Notifier) ActorName(ref world.Ref) string {
	return n.dir.Name(ref)
}
