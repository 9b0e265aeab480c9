package game

import (
	"strings"

	"github.com/crystal-mush/emberfall/pkg/family"
	"github.com/crystal-mush/emberfall/pkg/world"
)

// CmdFamily shows family relationships for the caller or, with an argument,
// another character.
func (g *Game) CmdFamily(caller *world.Actor, args string) {
	target := caller
	name := strings.TrimSpace(args)
	if name != "" {
		found, ok := g.Dir.FindByName(name)
		if !ok {
			g.Sendf(caller.Ref, "No character found with the name '%s'.", name)
			return
		}
		target = found
	}

	groups, err := g.Family.FamilyOf(target.Ref, g.Dir.Name)
	if err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	if len(groups) == 0 {
		if target.Ref == caller.Ref {
			g.Send(caller.Ref, "You have no recorded family relationships.")
		} else {
			g.Sendf(caller.Ref, "%s has no recorded family relationships.", target.Name)
		}
		return
	}

	g.Send(caller.Ref, family.Format(target.Name, groups))
}

// CmdFamilyAdd records a relationship (staff only). relatedName names an
// existing character for a PC relation, or any free-form name for an NPC.
func (g *Game) CmdFamilyAdd(caller *world.Actor, charName, relType, relatedName string, npc, reciprocal bool) {
	if !caller.IsStaff() {
		g.Send(caller.Ref, "You must be staff to manage family relationships.")
		return
	}
	character, ok := g.Dir.FindByName(charName)
	if !ok {
		g.Sendf(caller.Ref, "No character found with the name '%s'.", charName)
		return
	}

	rel := family.Relation{Character: character.Ref, Type: relType}
	if npc {
		rel.RelatedName = strings.TrimSpace(relatedName)
	} else {
		related, found := g.Dir.FindByName(relatedName)
		if !found {
			g.Sendf(caller.Ref, "No character found with the name '%s'.", relatedName)
			return
		}
		rel.RelatedRef = related.Ref
	}

	if err := g.Family.AddRelation(rel, reciprocal); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Sendf(caller.Ref, "Added %s relationship: %s -> %s.",
		strings.ToLower(family.DisplayName(relType)), character.Name, strings.TrimSpace(relatedName))
}
