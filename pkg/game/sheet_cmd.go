package game

import (
	"strings"

	"github.com/crystal-mush/emberfall/pkg/world"
)

// CmdSheet shows a character sheet. Without arguments it shows the caller's
// own; staff may view others'.
func (g *Game) CmdSheet(caller *world.Actor, args string) {
	target := caller
	name := strings.TrimSpace(args)
	if name != "" {
		if !caller.IsStaff() {
			g.Send(caller.Ref, "You don't have permission to view other characters' sheets.")
			return
		}
		found, ok := g.Dir.FindByName(name)
		if !ok {
			g.Sendf(caller.Ref, "No character found with the name '%s'.", name)
			return
		}
		target = found
	}

	s, ok := g.Sheets[target.Ref]
	if !ok {
		g.Sendf(caller.Ref, "%s has no character sheet.", target.Name)
		return
	}
	g.Send(caller.Ref, s.Format())
}
