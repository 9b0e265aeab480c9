package game

import (
	"fmt"
	"strings"

	"github.com/crystal-mush/emberfall/pkg/color"
	"github.com/crystal-mush/emberfall/pkg/events"
	"github.com/crystal-mush/emberfall/pkg/world"
)

// CmdPlace handles place management: list, create, delete, desc, look.
func (g *Game) CmdPlace(caller *world.Actor, switches []string, args string) {
	room := g.Dir.RoomOf(caller.Ref)
	if room == world.Nobody {
		g.Send(caller.Ref, "You must be in a room to manage places.")
		return
	}

	switch {
	case len(switches) == 0:
		g.listPlaces(caller, room)
	case hasSwitch(switches, "create"):
		g.createPlace(caller, room, args)
	case hasSwitch(switches, "delete"):
		g.deletePlace(caller, room, args)
	case hasSwitch(switches, "desc"):
		g.describePlace(caller, room, args)
	case hasSwitch(switches, "look"):
		g.lookAtPlace(caller, room, args)
	default:
		g.Send(caller.Ref, "Invalid switch. See 'help place' for usage.")
	}
}

func (g *Game) listPlaces(caller *world.Actor, room world.Ref) {
	list := g.Places.List(room)
	if len(list) == 0 {
		g.Send(caller.Ref, "There are no places in this room.")
		return
	}

	lines := []string{"|wPlaces in this room:|n"}
	for _, p := range list {
		line := fmt.Sprintf("  |c%s|n", p.Name)
		if p.Desc != "" {
			line += " - " + p.Desc
		}
		if n := len(p.Occupants); n > 0 {
			noun := "people"
			if n == 1 {
				noun = "person"
			}
			line += fmt.Sprintf(" |w(%d %s)|n", n, noun)
		}
		lines = append(lines, line)
	}
	g.Send(caller.Ref, strings.Join(lines, "\n"))
}

func (g *Game) createPlace(caller *world.Actor, room world.Ref, args string) {
	if strings.TrimSpace(args) == "" {
		g.Send(caller.Ref, "Usage: place/create <name> [= description]")
		return
	}
	name, desc, _ := splitEq(args)

	p, err := g.Places.Create(room, name, desc, caller.Ref)
	if err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}

	g.Sendf(caller.Ref, "Created place '%s'.", p.Name)
	if p.Desc != "" {
		g.Sendf(caller.Ref, "Description: %s", p.Desc)
	}
	g.sendToRoomExcept(room, caller.Ref, fmt.Sprintf("%s creates a new place: %s.", caller.Name, p.Name))
}

func (g *Game) deletePlace(caller *world.Actor, room world.Ref, args string) {
	name := strings.TrimSpace(args)
	if name == "" {
		g.Send(caller.Ref, "Usage: place/delete <name>")
		return
	}

	p, ok := g.Places.Get(room, name)
	if !ok {
		g.Sendf(caller.Ref, "No place named '%s' found.", name)
		return
	}
	if p.Creator != caller.Ref && !caller.IsStaff() {
		g.Send(caller.Ref, "You can only delete places you created.")
		return
	}

	deleted, evicted, err := g.Places.Delete(room, name)
	if err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	for _, ref := range evicted {
		g.Sendf(ref, "The place '%s' has been deleted. You are no longer at any place.", deleted.Name)
	}
	g.Sendf(caller.Ref, "Deleted place '%s'.", deleted.Name)
	g.sendToRoomExcept(room, caller.Ref, fmt.Sprintf("%s removes the place: %s.", caller.Name, deleted.Name))
}

func (g *Game) describePlace(caller *world.Actor, room world.Ref, args string) {
	name, desc, ok := splitEq(args)
	if !ok || name == "" {
		g.Send(caller.Ref, "Usage: place/desc <name> = <description>")
		return
	}

	p, found := g.Places.Get(room, name)
	if !found {
		g.Sendf(caller.Ref, "No place named '%s' found.", name)
		return
	}
	if p.Creator != caller.Ref && !caller.IsStaff() {
		g.Send(caller.Ref, "You can only modify places you created.")
		return
	}

	updated, err := g.Places.SetDesc(room, name, desc)
	if err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Sendf(caller.Ref, "Set description for '%s': %s", updated.Name, desc)
}

func (g *Game) lookAtPlace(caller *world.Actor, room world.Ref, args string) {
	name := strings.TrimSpace(args)
	if name == "" {
		g.Send(caller.Ref, "Usage: place/look <name>")
		return
	}

	p, ok := g.Places.Get(room, name)
	if !ok {
		g.Sendf(caller.Ref, "No place named '%s' found.", name)
		return
	}

	out := []string{fmt.Sprintf("|w%s|n", p.Name)}
	desc := p.Desc
	if desc == "" {
		desc = "You see nothing special about this place."
	}
	out = append(out, desc)

	var names []string
	for _, ref := range p.Occupants {
		names = append(names, g.Dir.Name(ref))
	}
	switch {
	case len(names) == 1:
		out = append(out, fmt.Sprintf("|w%s|n is here.", names[0]))
	case len(names) > 1:
		out = append(out, fmt.Sprintf("|w%s and %s|n are here.",
			strings.Join(names[:len(names)-1], ", "), names[len(names)-1]))
	default:
		out = append(out, "No one is currently at this place.")
	}
	g.Send(caller.Ref, strings.Join(out, "\n"))
}

// CmdJoin moves the caller to a place in their room, leaving any current
// place first.
func (g *Game) CmdJoin(caller *world.Actor, args string) {
	name := strings.TrimSpace(args)
	if name == "" {
		g.Send(caller.Ref, "Usage: join <place>")
		return
	}
	room := g.Dir.RoomOf(caller.Ref)
	if room == world.Nobody {
		g.Send(caller.Ref, "You must be in a room to join a place.")
		return
	}

	if _, ok := g.Places.Get(room, name); !ok {
		g.Sendf(caller.Ref, "No place named '%s' found. Use 'place' to see available places.", name)
		return
	}

	joined, old, err := g.Places.Join(room, name, caller.Ref)
	if err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}

	if old != nil {
		for _, ref := range old.Occupants {
			g.Sendf(ref, "%s leaves %s.", caller.Name, old.Name)
		}
		g.Sendf(caller.Ref, "You leave %s and join %s.", old.Name, joined.Name)
	} else {
		g.Sendf(caller.Ref, "You join %s.", joined.Name)
	}

	// Announce to others at the place, then to the rest of the room.
	for _, ref := range joined.Occupants {
		if ref != caller.Ref {
			g.Sendf(ref, "%s joins you at %s.", caller.Name, joined.Name)
		}
	}
	for _, a := range g.Dir.InRoom(room) {
		if a.Ref == caller.Ref || joined.HasOccupant(a.Ref) || !g.Dir.IsConnected(a.Ref) {
			continue
		}
		g.Sendf(a.Ref, "%s joins %s.", caller.Name, joined.Name)
	}
}

// CmdLeave removes the caller from their current place.
func (g *Game) CmdLeave(caller *world.Actor) {
	room := g.Dir.RoomOf(caller.Ref)
	if room == world.Nobody {
		g.Send(caller.Ref, "You are not in a room.")
		return
	}

	left := g.Places.Leave(room, caller.Ref)
	if left == nil {
		g.Send(caller.Ref, "You are not currently at any place.")
		return
	}

	g.Sendf(caller.Ref, "You leave %s.", left.Name)
	for _, ref := range left.Occupants {
		g.Sendf(ref, "%s leaves %s.", caller.Name, left.Name)
	}
	for _, a := range g.Dir.InRoom(room) {
		if a.Ref == caller.Ref || left.HasOccupant(a.Ref) || !g.Dir.IsConnected(a.Ref) {
			continue
		}
		g.Sendf(a.Ref, "%s leaves %s.", caller.Name, left.Name)
	}
}

// CmdPemit emits to everyone at the caller's current place. cmdName
// distinguishes pemit from ppose.
func (g *Game) CmdPemit(caller *world.Actor, cmdName, args string) {
	message := strings.TrimSpace(args)
	if message == "" {
		g.Send(caller.Ref, "Usage: pemit <message> or ppose <message>")
		return
	}
	room := g.Dir.RoomOf(caller.Ref)
	if room == world.Nobody {
		g.Send(caller.Ref, "You must be in a room to use pemit.")
		return
	}

	p, ok := g.Places.PlaceOf(room, caller.Ref)
	if !ok {
		g.Send(caller.Ref, "You must be at a place to use pemit. Use 'join <place>' first.")
		return
	}
	if len(p.Occupants) <= 1 {
		g.Sendf(caller.Ref, "You are alone at %s.", p.Name)
		return
	}

	isPpose := cmdName == "ppose"
	for _, ref := range p.Occupants {
		recv, found := g.Dir.Lookup(ref)
		if !found || !g.Dir.IsConnected(ref) {
			continue
		}
		coloredMessage := color.Apply(message, prefsOf(recv))
		coloredName := color.ColorizeName(caller.Name, prefsOf(recv))

		var final string
		switch {
		case isPpose:
			final = fmt.Sprintf("|w[%s]|n %s %s", p.Name, coloredName, coloredMessage)
		case recv.ShowEmitNames:
			final = fmt.Sprintf("|w[%s]|n (%s) %s", p.Name, coloredName, coloredMessage)
		default:
			final = fmt.Sprintf("|w[%s]|n %s", p.Name, coloredMessage)
		}
		g.Bus.EmitToActor(ref, events.Event{
			Type:   events.EvPlace,
			Actor:  ref,
			Source: caller.Ref,
			Room:   room,
			Place:  p.Key,
			Text:   final,
		})
	}
}

// sendToRoomExcept delivers a line to every connected actor in a room except
// one.
func (g *Game) sendToRoomExcept(room, except world.Ref, text string) {
	for _, a := range g.Dir.InRoom(room) {
		if a.Ref == except || !g.Dir.IsConnected(a.Ref) {
			continue
		}
		g.Send(a.Ref, text)
	}
}
