package game

import (
	"github.com/crystal-mush/emberfall/pkg/request"
	"github.com/crystal-mush/emberfall/pkg/world"
)

// Authorization policy for the request workflow. The workflow manager itself
// is policy-free; every privilege rule lives here so the command layer stays
// the single gatekeeper.

// canViewRequest reports whether caller may view or comment on r: staff may
// touch any request, everyone else only their own.
func canViewRequest(caller *world.Actor, r *request.Request) bool {
	if caller.IsStaff() {
		return true
	}
	return r.Submitter == caller.Ref
}

// canCloseRequest checks the close rules for non-staff: own request, and
// only while it is still Open. Staff may close anything.
func canCloseRequest(caller *world.Actor, r *request.Request) (ok bool, denial string) {
	if caller.IsStaff() {
		return true, ""
	}
	if r.Submitter != caller.Ref {
		return false, "You don't have permission to close this request."
	}
	if r.Status != request.StatusOpen {
		return false, "You can only close requests that are currently open."
	}
	return true, ""
}

// canSetStatus checks the status-change rules for non-staff: they may only
// close their own open requests.
func canSetStatus(caller *world.Actor, r *request.Request, newStatus string) (ok bool, denial string) {
	if caller.IsStaff() {
		return true, ""
	}
	if r.Submitter != caller.Ref {
		return false, "You don't have permission to change request status."
	}
	if norm, valid := request.NormalizeStatus(newStatus); !valid || norm != request.StatusClosed {
		return false, "You can only close your own requests."
	}
	if r.Status != request.StatusOpen {
		return false, "You can only close requests that are currently open."
	}
	return true, ""
}
