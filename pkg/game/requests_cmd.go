package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crystal-mush/emberfall/pkg/request"
	"github.com/crystal-mush/emberfall/pkg/world"
)

// timeLayout is the timestamp format used in request displays.
const timeLayout = "2006-01-02 15:04:05"

// hasSwitch reports whether a command switch is present.
func hasSwitch(switches []string, name string) bool {
	for _, s := range switches {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}

// splitEq splits "lhs=rhs" command arguments.
func splitEq(args string) (lhs, rhs string, ok bool) {
	i := strings.Index(args, "=")
	if i < 0 {
		return strings.TrimSpace(args), "", false
	}
	return strings.TrimSpace(args[:i]), strings.TrimSpace(args[i+1:]), true
}

// parseRequestID parses a request id argument, accepting a leading '#'.
func parseRequestID(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return id, true
}

// CmdRequest handles the request command and all of its switches.
func (g *Game) CmdRequest(caller *world.Actor, switches []string, args string) {
	switch {
	case len(switches) == 0 && args == "":
		g.listRequests(caller, true, false)

	case hasSwitch(switches, "all") && !hasSwitch(switches, "archive"):
		if !caller.IsStaff() {
			g.Send(caller.Ref, "You don't have permission to list all requests.")
			return
		}
		g.listRequests(caller, false, false)

	case hasSwitch(switches, "archive"):
		if args == "" {
			if hasSwitch(switches, "all") {
				if !caller.IsStaff() {
					g.Send(caller.Ref, "You don't have permission to list all archived requests.")
					return
				}
				g.listRequests(caller, false, true)
			} else {
				g.listRequests(caller, true, true)
			}
			return
		}
		g.viewRequest(caller, args)

	case hasSwitch(switches, "unarchive"):
		g.unarchiveRequest(caller, args)

	case hasSwitch(switches, "cleanup"):
		if !caller.IsStaff() {
			g.Send(caller.Ref, "You don't have permission to run request cleanup.")
			return
		}
		count, err := g.Requests.CleanupOldRequests(g.GameConf().RetentionDays)
		if err != nil {
			g.Send(caller.Ref, err.Error())
			return
		}
		if count > 0 {
			g.Sendf(caller.Ref, "Deleted %d old archived request(s).", count)
		} else {
			g.Send(caller.Ref, "No old archived requests to delete.")
		}
		g.Metrics.CleanupDeleted(count)

	case hasSwitch(switches, "new"):
		lhs, rhs, ok := splitEq(args)
		if !ok || rhs == "" {
			g.Send(caller.Ref, "Usage: request/new <title>=<text>")
			return
		}
		if _, err := g.Requests.Create(lhs, rhs, caller.Ref); err != nil {
			g.Send(caller.Ref, err.Error())
			return
		}
		g.Metrics.RequestCreated()

	case hasSwitch(switches, "shownotifications"):
		g.toggleNotifications(caller, args)

	case hasSwitch(switches, "comment"):
		lhs, rhs, ok := splitEq(args)
		if !ok || rhs == "" {
			g.Send(caller.Ref, "Usage: request/comment <#>=<text>")
			return
		}
		g.commentRequest(caller, lhs, rhs)

	case hasSwitch(switches, "close"):
		lhs, rhs, ok := splitEq(args)
		if !ok || rhs == "" {
			g.Send(caller.Ref, "Usage: request/close <#>=<resolution>")
			return
		}
		g.closeRequest(caller, lhs, rhs)

	case hasSwitch(switches, "assign"):
		lhs, rhs, ok := splitEq(args)
		if !ok || rhs == "" {
			g.Send(caller.Ref, "Usage: request/assign <#>=<staff>")
			return
		}
		g.assignRequest(caller, lhs, rhs)

	case hasSwitch(switches, "status"):
		lhs, rhs, ok := splitEq(args)
		if !ok || rhs == "" {
			g.Sendf(caller.Ref, "Usage: request/status <#>=<status>\nValid statuses: %s",
				strings.Join(request.ValidStatuses, ", "))
			return
		}
		g.setRequestStatus(caller, lhs, rhs)

	case hasSwitch(switches, "cat"):
		lhs, rhs, ok := splitEq(args)
		if !ok || rhs == "" {
			g.Sendf(caller.Ref, "Usage: request/cat <#>=<category>\nValid categories: %s",
				strings.Join(request.ValidCategories, ", "))
			return
		}
		g.setRequestCategory(caller, lhs, rhs)

	default:
		g.viewRequest(caller, args)
	}
}

// findRequest resolves a request id argument.
func (g *Game) findRequest(arg string) (*request.Request, bool) {
	id, ok := parseRequestID(arg)
	if !ok {
		return nil, false
	}
	return g.Store.Get(id)
}

// truncate shortens s to max runes, replacing the tail with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// submitterName resolves the submitter column value.
func (g *Game) submitterName(r *request.Request) string {
	if r.Submitter == world.Nobody {
		return "Unknown"
	}
	return g.Dir.Name(r.Submitter)
}

// assignedName resolves the assignee column value.
func (g *Game) assignedName(r *request.Request) string {
	if r.AssignedTo == world.Nobody {
		return "Unassigned"
	}
	return g.Dir.Name(r.AssignedTo)
}

// listRequests renders the request table. personal limits to the caller's
// own submissions; showArchived selects the archive view (archived or
// closed requests).
func (g *Game) listRequests(caller *world.Actor, personal, showArchived bool) {
	var rows []*request.Request
	for _, r := range g.Store.All() {
		if r.InArchive() != showArchived {
			continue
		}
		if personal && r.Submitter != caller.Ref {
			continue
		}
		rows = append(rows, r)
	}

	if len(rows) == 0 {
		status := "active"
		if showArchived {
			status = "archived"
		}
		g.Sendf(caller.Ref, "No %s requests found.", status)
		return
	}

	var b strings.Builder
	sep := "+" + strings.Repeat("-", 7) + "+" + strings.Repeat("-", 42) + "+" +
		strings.Repeat("-", 13) + "+" + strings.Repeat("-", 13) + "+"
	b.WriteString(sep + "\n")
	fmt.Fprintf(&b, "| %-5s | %-40s | %-11s | %-11s |\n", "|w#|n", "|wTitle|n", "|wSubmitter|n", "|wAssigned To|n")
	b.WriteString(sep + "\n")
	for _, r := range rows {
		idText := strconv.Itoa(r.ID)
		if r.HasNewActivity(caller.Ref) {
			idText += "!"
		}
		fmt.Fprintf(&b, "| %-5s | %-40s | %-11s | %-11s |\n",
			idText,
			truncate(r.Title, 40),
			truncate(g.submitterName(r), 12),
			truncate(g.assignedName(r), 12))
	}
	b.WriteString(sep)

	status := "Active"
	if showArchived {
		status = "Archived"
	}
	g.Sendf(caller.Ref, "%s Requests:", status)
	g.Send(caller.Ref, b.String())
}

// viewRequest shows a full request, marking it viewed first.
func (g *Game) viewRequest(caller *world.Actor, arg string) {
	r, ok := g.findRequest(arg)
	if !ok {
		g.Send(caller.Ref, "Request not found.")
		return
	}
	if !canViewRequest(caller, r) {
		g.Send(caller.Ref, "You don't have permission to do that.")
		return
	}

	if err := g.Requests.MarkViewed(r, caller.Ref); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Request #%d: %s\n", r.ID, r.Title)
	fmt.Fprintf(&b, "Status: %s  Category: %s\n", r.Status, r.Category)
	fmt.Fprintf(&b, "Submitted by: %s\n", g.submitterName(r))
	fmt.Fprintf(&b, "Assigned to: %s\n", g.assignedName(r))
	fmt.Fprintf(&b, "Created: %s\n", r.DateCreated.Format(timeLayout))
	fmt.Fprintf(&b, "Modified: %s", r.DateModified.Format(timeLayout))
	if r.IsArchived() {
		fmt.Fprintf(&b, "\nArchived: %s", r.DateArchived.Format(timeLayout))
	}
	fmt.Fprintf(&b, "\nRequest:\n%s\n", r.Text)
	b.WriteString("\nComments:")
	for _, c := range r.Comments {
		fmt.Fprintf(&b, "\n[%s] %s: %s", c.Date.Format(timeLayout), g.Dir.Name(c.Author), c.Text)
	}
	if r.Resolution != "" {
		fmt.Fprintf(&b, "\nResolution:\n%s", r.Resolution)
	}
	g.Send(caller.Ref, b.String())
}

// commentRequest adds a comment to a request.
func (g *Game) commentRequest(caller *world.Actor, arg, text string) {
	r, ok := g.findRequest(arg)
	if !ok {
		g.Send(caller.Ref, "Request not found.")
		return
	}
	if !canViewRequest(caller, r) {
		g.Send(caller.Ref, "You don't have permission to comment on this request.")
		return
	}
	if err := g.Requests.AddComment(r, caller.Ref, text); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Send(caller.Ref, "Comment added.")
}

// closeRequest records the resolution quietly and then closes the request:
// the status change sends the one combined notification.
func (g *Game) closeRequest(caller *world.Actor, arg, resolution string) {
	r, ok := g.findRequest(arg)
	if !ok {
		g.Send(caller.Ref, "Request not found.")
		return
	}
	if ok, denial := canCloseRequest(caller, r); !ok {
		g.Send(caller.Ref, denial)
		return
	}
	if err := g.Requests.RecordResolution(r, resolution); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	if err := g.Requests.SetStatus(r, request.StatusClosed); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Send(caller.Ref, "Request closed and archived.")
}

// assignRequest assigns a request to a staff member.
func (g *Game) assignRequest(caller *world.Actor, arg, staffName string) {
	r, ok := g.findRequest(arg)
	if !ok {
		g.Send(caller.Ref, "Request not found.")
		return
	}
	if !caller.IsStaff() {
		g.Send(caller.Ref, "You don't have permission to assign requests.")
		return
	}
	staff, found := g.Dir.FindByName(staffName)
	if !found {
		g.Sendf(caller.Ref, "Staff member '%s' not found.", staffName)
		return
	}
	if err := g.Requests.Assign(r, staff.Ref); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Sendf(caller.Ref, "Request assigned to %s.", staff.Name)
}

// setRequestStatus changes a request's status.
func (g *Game) setRequestStatus(caller *world.Actor, arg, newStatus string) {
	r, ok := g.findRequest(arg)
	if !ok {
		g.Send(caller.Ref, "Request not found.")
		return
	}
	if ok, denial := canSetStatus(caller, r, newStatus); !ok {
		g.Send(caller.Ref, denial)
		return
	}
	norm, valid := request.NormalizeStatus(newStatus)
	if !valid {
		g.Sendf(caller.Ref, "Status must be one of: %s", strings.Join(request.ValidStatuses, ", "))
		return
	}
	if err := g.Requests.SetStatus(r, norm); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	if norm == request.StatusClosed {
		g.Sendf(caller.Ref, "Request status changed to %s and has been archived.", norm)
	} else {
		g.Sendf(caller.Ref, "Request status changed to %s.", norm)
	}
}

// setRequestCategory changes a request's category (staff only).
func (g *Game) setRequestCategory(caller *world.Actor, arg, newCategory string) {
	r, ok := g.findRequest(arg)
	if !ok {
		g.Send(caller.Ref, "Request not found.")
		return
	}
	if !caller.IsStaff() {
		g.Send(caller.Ref, "You don't have permission to change request category.")
		return
	}
	if err := g.Requests.SetCategory(r, newCategory); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Sendf(caller.Ref, "Request category changed to %s.", newCategory)
}

// unarchiveRequest restores an archived request (staff only).
func (g *Game) unarchiveRequest(caller *world.Actor, arg string) {
	r, ok := g.findRequest(arg)
	if !ok {
		g.Send(caller.Ref, "Request not found.")
		return
	}
	if !caller.IsStaff() {
		g.Send(caller.Ref, "You don't have permission to unarchive requests.")
		return
	}
	if err := g.Requests.SetArchived(r, false); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Send(caller.Ref, "Request unarchived.")
}

// ArchiveRequest archives a request directly (staff only). Exposed for the
// explicit archive path alongside close-driven auto-archiving.
func (g *Game) ArchiveRequest(caller *world.Actor, arg string) {
	r, ok := g.findRequest(arg)
	if !ok {
		g.Send(caller.Ref, "Request not found.")
		return
	}
	if !caller.IsStaff() {
		g.Send(caller.Ref, "You don't have permission to archive requests.")
		return
	}
	if err := g.Requests.SetArchived(r, true); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Send(caller.Ref, "Request archived.")
}

// toggleNotifications handles request/shownotifications on|off (staff mute
// toggle for live broadcasts).
func (g *Game) toggleNotifications(caller *world.Actor, args string) {
	if !caller.IsStaff() {
		g.Send(caller.Ref, "You don't have permission to change notification settings.")
		return
	}

	normalized := strings.ToLower(strings.TrimSpace(args))
	if normalized == "" {
		current := "on"
		if caller.RequestNotifyMute {
			current = "off"
		}
		g.Sendf(caller.Ref, "Request notifications are currently %s.", current)
		g.Send(caller.Ref, "Usage: request/shownotifications <on|off>")
		return
	}
	if normalized != "on" && normalized != "off" {
		g.Send(caller.Ref, "Usage: request/shownotifications <on|off>")
		return
	}

	caller.RequestNotifyMute = normalized == "off"
	if err := g.Dir.Persist(caller); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	state := "on"
	if caller.RequestNotifyMute {
		state = "off"
	}
	g.Sendf(caller.Ref, "Request notifications are now %s.", state)
}
