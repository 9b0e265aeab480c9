package game

import (
	"strings"
	"testing"

	"github.com/crystal-mush/emberfall/pkg/family"
	"github.com/crystal-mush/emberfall/pkg/world"
)

func TestFamilyAddStaffOnly(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)

	g.CmdFamilyAdd(ada, "Ada", family.RelParent, "Brin", false, true)
	if got := rec.Last(); got != "You must be staff to manage family relationships." {
		t.Errorf("denial = %q", got)
	}
}

func TestFamilyAddAndView(t *testing.T) {
	g := newTestGame(t)
	ada, adaRec := addActor(t, g, "Ada", world.PrivPlayer)
	brin, brinRec := addActor(t, g, "Brin", world.PrivPlayer)
	staff, staffRec := addActor(t, g, "Caro", world.PrivAdmin)
	_ = brin

	g.CmdFamilyAdd(staff, "Ada", family.RelParent, "Brin", false, true)
	if got := staffRec.Last(); got != "Added parent relationship: Ada -> Brin." {
		t.Errorf("confirmation = %q", got)
	}

	g.CmdFamilyAdd(staff, "Ada", family.RelSibling, "Old Tom", true, false)
	if got := staffRec.Last(); got != "Added sibling relationship: Ada -> Old Tom." {
		t.Errorf("npc confirmation = %q", got)
	}

	g.CmdFamily(ada, "")
	tree := adaRec.Last()
	if !strings.Contains(tree, "|wAda's Family:|n") {
		t.Errorf("tree missing header:\n%s", tree)
	}
	if !strings.Contains(tree, "|cParent:|n") || !strings.Contains(tree, "  Brin") {
		t.Errorf("tree missing PC parent:\n%s", tree)
	}
	if !strings.Contains(tree, "  Old Tom |K(NPC)|n") {
		t.Errorf("tree missing NPC sibling:\n%s", tree)
	}

	// The reciprocal makes Brin Ada's child.
	g.CmdFamily(brin, "")
	if !strings.Contains(brinRec.Last(), "|cChild:|n") {
		t.Errorf("reciprocal missing:\n%s", brinRec.Last())
	}
}

func TestFamilyViewOthersAndEmpty(t *testing.T) {
	g := newTestGame(t)
	ada, rec := addActor(t, g, "Ada", world.PrivPlayer)
	addActor(t, g, "Brin", world.PrivPlayer)

	g.CmdFamily(ada, "")
	if got := rec.Last(); got != "You have no recorded family relationships." {
		t.Errorf("empty self = %q", got)
	}

	g.CmdFamily(ada, "Brin")
	if got := rec.Last(); got != "Brin has no recorded family relationships." {
		t.Errorf("empty other = %q", got)
	}

	g.CmdFamily(ada, "Ghost")
	if got := rec.Last(); got != "No character found with the name 'Ghost'." {
		t.Errorf("missing = %q", got)
	}
}

func TestFamilyAddUnknownParties(t *testing.T) {
	g := newTestGame(t)
	staff, rec := addActor(t, g, "Caro", world.PrivAdmin)

	g.CmdFamilyAdd(staff, "Ghost", family.RelParent, "Caro", false, false)
	if got := rec.Last(); got != "No character found with the name 'Ghost'." {
		t.Errorf("unknown character = %q", got)
	}

	g.CmdFamilyAdd(staff, "Caro", family.RelParent, "Ghost", false, false)
	if got := rec.Last(); got != "No character found with the name 'Ghost'." {
		t.Errorf("unknown relative = %q", got)
	}
}
