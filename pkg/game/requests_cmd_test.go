package game

import (
	"strings"
	"testing"
	"time"

	"github.com/crystal-mush/emberfall/pkg/events"
	"github.com/crystal-mush/emberfall/pkg/request"
	"github.com/crystal-mush/emberfall/pkg/world"
)

func TestRequestNewAndNotification(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)

	g.CmdRequest(ada, []string{"new"}, "Broken door=The tavern door is stuck.")

	r, ok := g.Store.Get(1)
	if !ok {
		t.Fatal("request not created")
	}
	if r.Title != "Broken door" || r.Submitter != ada.Ref {
		t.Errorf("unexpected request %+v", r)
	}
	if got, want := rec.Last(), "[Request #1] New request created: Broken door"; got != want {
		t.Errorf("notification = %q, want %q", got, want)
	}
}

func TestRequestNewUsage(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)

	g.CmdRequest(ada, []string{"new"}, "no equals sign")
	if got := rec.Last(); got != "Usage: request/new <title>=<text>" {
		t.Errorf("usage line = %q", got)
	}
}

func TestRequestAllStaffOnly(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)

	g.CmdRequest(ada, []string{"all"}, "")
	if got := rec.Last(); got != "You don't have permission to list all requests." {
		t.Errorf("denial = %q", got)
	}
}

func TestRequestListEmptyAndMarker(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)

	g.CmdRequest(ada, nil, "")
	if got := rec.Last(); got != "No active requests found." {
		t.Errorf("empty list = %q", got)
	}

	g.CmdRequest(ada, []string{"new"}, "Title=Text")
	staff, staffRec := addActor(t, g, "Brin", world.PrivAdmin)

	g.CmdRequest(staff, []string{"all"}, "")
	table := staffRec.Last()
	if !strings.Contains(table, "1!") {
		t.Errorf("unviewed request should carry the ! marker:\n%s", table)
	}

	// Viewing clears the marker.
	g.CmdRequest(staff, nil, "1")
	g.CmdRequest(staff, []string{"all"}, "")
	table = staffRec.Last()
	if strings.Contains(table, "1!") {
		t.Errorf("marker should clear after viewing:\n%s", table)
	}

	// The submitter's own list still shows it; rec belongs to Ada who has
	// not viewed it since creation.
	_ = rec
}

func TestRequestListWideIDNotTruncated(t *testing.T) {
	g := newTestGame(t)
	ada, _ := addActor(t, g, "Ada", world.PrivPlayer)
	staff, staffRec := addActor(t, g, "Brin", world.PrivAdmin)

	r := &request.Request{
		ID:           100,
		Title:        "Imported record",
		Submitter:    ada.Ref,
		AssignedTo:   world.Nobody,
		Status:       request.StatusOpen,
		Category:     request.CategoryGeneral,
		DateCreated:  timeAt(t, "2025-05-01 00:00:00"),
		DateModified: timeAt(t, "2025-05-01 00:00:00"),
	}
	if err := g.Store.Put(r); err != nil {
		t.Fatal(err)
	}

	g.CmdRequest(staff, []string{"all"}, "")
	table := staffRec.Last()
	if !strings.Contains(table, "100!") {
		t.Errorf("three-digit id with marker should render in full:\n%s", table)
	}
}

func TestRequestViewPermissions(t *testing.T) {
	g := newTestGame(t)
	ada, _ := addActor(t, g, "Ada", world.PrivPlayer)
	brin, brinRec := addActor(t, g, "Brin", world.PrivPlayer)
	staff, staffRec := addActor(t, g, "Caro", world.PrivAdmin)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")

	g.CmdRequest(brin, nil, "1")
	if got := brinRec.Last(); got != "You don't have permission to do that." {
		t.Errorf("denial = %q", got)
	}

	g.CmdRequest(staff, nil, "1")
	view := staffRec.Last()
	if !strings.Contains(view, "Request #1: Title") {
		t.Errorf("staff view missing header:\n%s", view)
	}
	if !strings.Contains(view, "Status: Open  Category: General") {
		t.Errorf("staff view missing status line:\n%s", view)
	}
	if !strings.Contains(view, "Submitted by: Ada") {
		t.Errorf("staff view missing submitter:\n%s", view)
	}
	if !strings.Contains(view, "Assigned to: Unassigned") {
		t.Errorf("staff view missing assignee:\n%s", view)
	}
}

func TestRequestViewMissing(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)

	g.CmdRequest(ada, nil, "42")
	if got := rec.Last(); got != "Request not found." {
		t.Errorf("missing request = %q", got)
	}
}

func TestRequestCloseFlow(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")
	before := len(rec.Lines())

	g.CmdRequest(ada, []string{"close"}, "1=Fixed it myself.")

	r, _ := g.Store.Get(1)
	if !r.IsClosed() || !r.IsArchived() {
		t.Error("close should leave the request closed and archived")
	}
	if r.Resolution != "Fixed it myself." {
		t.Errorf("resolution = %q", r.Resolution)
	}

	lines := rec.Lines()[before:]
	// One combined notification plus the command confirmation.
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after close, got %v", lines)
	}
	if lines[0] != "[Request #1] Status changed from Open to Closed and request has been archived" {
		t.Errorf("combined notification = %q", lines[0])
	}
	if lines[1] != "Request closed and archived." {
		t.Errorf("confirmation = %q", lines[1])
	}
}

func TestRequestCloseOtherDenied(t *testing.T) {
	g := newTestGame(t)
	ada, _ := addActor(t, g, "Ada", world.PrivPlayer)
	brin, rec := addActor(t, g, "Brin", world.PrivPlayer)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")
	g.CmdRequest(brin, []string{"close"}, "1=Done")
	if got := rec.Last(); got != "You don't have permission to close this request." {
		t.Errorf("denial = %q", got)
	}
}

func TestRequestCloseNonOpenDenied(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)
	staff, _ := addActor(t, g, "Brin", world.PrivAdmin)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")
	g.CmdRequest(staff, []string{"status"}, "1=in progress")

	g.CmdRequest(ada, []string{"close"}, "1=Done")
	if got := rec.Last(); got != "You can only close requests that are currently open." {
		t.Errorf("denial = %q", got)
	}
}

func TestRequestStatusCommand(t *testing.T) {
	g := newTestGame(t)
	ada, _ := addActor(t, g, "Ada", world.PrivPlayer)
	staff, rec := addActor(t, g, "Brin", world.PrivAdmin)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")

	g.CmdRequest(staff, []string{"status"}, "1=in progress")
	if got := rec.Last(); got != "Request status changed to In Progress." {
		t.Errorf("confirmation = %q", got)
	}

	g.CmdRequest(staff, []string{"status"}, "1=closed")
	if got := rec.Last(); got != "Request status changed to Closed and has been archived." {
		t.Errorf("close confirmation = %q", got)
	}

	g.CmdRequest(staff, []string{"status"}, "1=bogus")
	if got := rec.Last(); got != "Status must be one of: Open, In Progress, Closed" {
		t.Errorf("invalid status = %q", got)
	}
}

func TestRequestStatusNonStaffRules(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)
	brin, brinRec := addActor(t, g, "Brin", world.PrivPlayer)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")

	// Non-staff may not set non-close statuses, even on their own request.
	g.CmdRequest(ada, []string{"status"}, "1=in progress")
	if got := rec.Last(); got != "You can only close your own requests." {
		t.Errorf("denial = %q", got)
	}

	g.CmdRequest(brin, []string{"status"}, "1=closed")
	if got := brinRec.Last(); got != "You don't have permission to change request status." {
		t.Errorf("denial = %q", got)
	}

	// Closing their own open request is the one permitted transition.
	g.CmdRequest(ada, []string{"status"}, "1=closed")
	if got := rec.Last(); got != "Request status changed to Closed and has been archived." {
		t.Errorf("confirmation = %q", got)
	}
}

func TestRequestAssign(t *testing.T) {
	g := newTestGame(t)
	ada, adaRec := addActor(t, g, "Ada", world.PrivPlayer)
	staff, rec := addActor(t, g, "Brin", world.PrivAdmin)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")

	g.CmdRequest(ada, []string{"assign"}, "1=Brin")
	if got := adaRec.Last(); got != "You don't have permission to assign requests." {
		t.Errorf("denial = %q", got)
	}

	g.CmdRequest(staff, []string{"assign"}, "1=Nobody")
	if got := rec.Last(); got != "Staff member 'Nobody' not found." {
		t.Errorf("unknown staff = %q", got)
	}

	g.CmdRequest(staff, []string{"assign"}, "1=Brin")
	if got := rec.Last(); got != "Request assigned to Brin." {
		t.Errorf("confirmation = %q", got)
	}
	r, _ := g.Store.Get(1)
	if r.AssignedTo != staff.Ref {
		t.Errorf("assignee = %d, want %d", r.AssignedTo, staff.Ref)
	}
}

func TestRequestCategory(t *testing.T) {
	g := newTestGame(t)
	ada, adaRec := addActor(t, g, "Ada", world.PrivPlayer)
	staff, rec := addActor(t, g, "Brin", world.PrivAdmin)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")

	g.CmdRequest(ada, []string{"cat"}, "1=Bug")
	if got := adaRec.Last(); got != "You don't have permission to change request category." {
		t.Errorf("denial = %q", got)
	}

	g.CmdRequest(staff, []string{"cat"}, "1=Bug")
	if got := rec.Last(); got != "Request category changed to Bug." {
		t.Errorf("confirmation = %q", got)
	}

	g.CmdRequest(staff, []string{"cat"}, "1=bug")
	if got := rec.Last(); got != "Category must be one of: Bug, Feature, Question, Character, General" {
		t.Errorf("invalid category = %q", got)
	}
}

func TestRequestArchiveCycle(t *testing.T) {
	g := newTestGame(t)
	ada, _ := addActor(t, g, "Ada", world.PrivPlayer)
	staff, rec := addActor(t, g, "Brin", world.PrivAdmin)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")

	g.ArchiveRequest(staff, "1")
	if got := rec.Last(); got != "Request archived." {
		t.Errorf("archive = %q", got)
	}
	r, _ := g.Store.Get(1)
	if !r.IsArchived() {
		t.Error("request should be archived")
	}

	g.CmdRequest(staff, []string{"unarchive"}, "1")
	if got := rec.Last(); got != "Request unarchived." {
		t.Errorf("unarchive = %q", got)
	}
	if r.IsArchived() {
		t.Error("request should be unarchived")
	}

	g.CmdRequest(staff, []string{"unarchive"}, "1")
	if got := rec.Last(); got != "Request is not archived" {
		t.Errorf("double unarchive = %q", got)
	}
}

func TestRequestArchiveListing(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)

	g.CmdRequest(ada, []string{"new"}, "Keep=Open one")
	g.CmdRequest(ada, []string{"new"}, "Done=Closed one")
	g.CmdRequest(ada, []string{"close"}, "2=resolved")

	g.CmdRequest(ada, nil, "")
	active := rec.Last()
	if !strings.Contains(active, "Keep") || strings.Contains(active, "Done") {
		t.Errorf("active list wrong:\n%s", active)
	}

	g.CmdRequest(ada, []string{"archive"}, "")
	archived := rec.Last()
	if !strings.Contains(archived, "Done") || strings.Contains(archived, "Keep") {
		t.Errorf("archive list wrong:\n%s", archived)
	}
}

func TestRequestComment(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)
	brin, brinRec := addActor(t, g, "Brin", world.PrivPlayer)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")

	g.CmdRequest(brin, []string{"comment"}, "1=me too")
	if got := brinRec.Last(); got != "You don't have permission to comment on this request." {
		t.Errorf("denial = %q", got)
	}

	g.CmdRequest(ada, []string{"comment"}, "1=Any news?")
	if got := rec.Last(); got != "Comment added." {
		t.Errorf("confirmation = %q", got)
	}
	r, _ := g.Store.Get(1)
	if len(r.Comments) != 1 || r.Comments[0].Text != "Any news?" {
		t.Errorf("comments = %+v", r.Comments)
	}
}

func TestRequestCleanup(t *testing.T) {
	g := newTestGame(t)
	ada, adaRec := addActor(t, g, "Ada", world.PrivPlayer)
	staff, rec := addActor(t, g, "Brin", world.PrivAdmin)

	g.CmdRequest(ada, []string{"cleanup"}, "")
	if got := adaRec.Last(); got != "You don't have permission to run request cleanup." {
		t.Errorf("denial = %q", got)
	}

	g.CmdRequest(staff, []string{"cleanup"}, "")
	if got := rec.Last(); got != "No old archived requests to delete." {
		t.Errorf("empty cleanup = %q", got)
	}

	old := g.Requests.NextID()
	oldStamp := timeAt(t, "2025-04-01 00:00:00")
	g.Store.Put(&request.Request{
		ID:           old,
		Title:        "ancient",
		Status:       request.StatusClosed,
		DateArchived: &oldStamp,
	})

	g.CmdRequest(staff, []string{"cleanup"}, "")
	if got := rec.Last(); got != "Deleted 1 old archived request(s)." {
		t.Errorf("cleanup = %q", got)
	}
	if _, ok := g.Store.Get(old); ok {
		t.Error("old archived request should be deleted")
	}
}

func TestRequestNotificationToggle(t *testing.T) {
	g := newTestGame(t)
	ada, adaRec := addActor(t, g, "Ada", world.PrivPlayer)
	staff, rec := addActor(t, g, "Brin", world.PrivAdmin)

	g.CmdRequest(ada, []string{"shownotifications"}, "off")
	if got := adaRec.Last(); got != "You don't have permission to change notification settings." {
		t.Errorf("denial = %q", got)
	}

	g.CmdRequest(staff, []string{"shownotifications"}, "off")
	if got := rec.Last(); got != "Request notifications are now off." {
		t.Errorf("toggle = %q", got)
	}
	if !staff.RequestNotifyMute {
		t.Error("mute flag not set")
	}

	// With the mute on, broadcasts skip the staffer.
	before := len(rec.Lines())
	g.CmdRequest(ada, []string{"new"}, "Title=Text")
	if got := len(rec.Lines()); got != before {
		t.Errorf("muted staff received %d broadcast(s)", got-before)
	}

	g.CmdRequest(staff, []string{"shownotifications"}, "on")
	if got := rec.Last(); got != "Request notifications are now on." {
		t.Errorf("toggle = %q", got)
	}

	g.CmdRequest(staff, []string{"shownotifications"}, "sideways")
	if got := rec.Last(); got != "Usage: request/shownotifications <on|off>" {
		t.Errorf("bad arg = %q", got)
	}
}

func TestStoredNotificationsOnConnect(t *testing.T) {
	g := newTestGame(t)
	ada, _ := addActor(t, g, "Ada", world.PrivPlayer)
	staff, _ := addActor(t, g, "Brin", world.PrivAdmin)

	g.CmdRequest(ada, []string{"new"}, "Title=Text")

	// Ada goes offline; a staff comment queues to her mailbox.
	g.Dir.Disconnect(ada.Ref)
	g.CmdRequest(staff, []string{"comment"}, "1=Working on it.")

	rec := &recorder{}
	g.Bus.Subscribe(ada.Ref, rec)
	g.HandleConnect(ada)

	// Only the EvText lines matter; the connect event itself also lands on
	// the subscriber.
	lines := textLines(rec)
	if len(lines) != 3 {
		t.Fatalf("expected framing + 1 stored line + trailer, got %v", lines)
	}
	if lines[0] != "\n|yStored Request Notifications:|n" {
		t.Errorf("framing = %q", lines[0])
	}
	if lines[1] != "[Request #1] New comment by Brin" {
		t.Errorf("stored line = %q", lines[1])
	}

	// A second connect replays nothing.
	g.Dir.Disconnect(ada.Ref)
	before := len(textLines(rec))
	g.HandleConnect(ada)
	if got := len(textLines(rec)); got != before {
		t.Error("queue should be cleared after replay")
	}
}

// textLines returns only the EvText payloads a recorder saw.
func textLines(rec *recorder) []string {
	var out []string
	for _, ev := range rec.Events() {
		if ev.Type == events.EvText {
			out = append(out, ev.Text)
		}
	}
	return out
}

// timeAt parses a display-format timestamp for test fixtures.
func timeAt(t *testing.T, s string) (out time.Time) {
	t.Helper()
	out, err := time.Parse(timeLayout, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return out
}
