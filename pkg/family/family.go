// Package family stores and renders family relationships between characters.
// A character can be related to another player character (by ref) or to an
// NPC (by name only).
package family

import (
	"github.com/crystal-mush/emberfall/pkg/world"
)

// Relationship type codes as stored in SQLite.
const (
	RelParent           = "parent"
	RelGrandparent      = "grandparent"
	RelGreatGrandparent = "great_grandparent"
	RelSibling          = "sibling"
	RelAuntUncle        = "aunt_uncle"
	RelNieceNephew      = "niece_nephew"
	RelCousin           = "cousin"
	RelSecondCousin     = "second_cousin"
	RelDistantCousin    = "distant_cousin"
	RelChild            = "child"
	RelGrandchild       = "grandchild"
	RelGreatGrandchild  = "great_grandchild"
)

// displayNames maps relationship type codes to their display form.
var displayNames = map[string]string{
	RelParent:           "Parent",
	RelGrandparent:      "Grandparent",
	RelGreatGrandparent: "Great-Grandparent",
	RelSibling:          "Sibling",
	RelAuntUncle:        "Aunt/Uncle",
	RelNieceNephew:      "Niece/Nephew",
	RelCousin:           "Cousin",
	RelSecondCousin:     "Second Cousin",
	RelDistantCousin:    "Distant Cousin",
	RelChild:            "Child",
	RelGrandchild:       "Grandchild",
	RelGreatGrandchild:  "Great-Grandchild",
}

// Reciprocals maps each relationship type to its reverse. Adding a parent
// relation can automatically add the matching child relation.
var Reciprocals = map[string]string{
	RelParent:           RelChild,
	RelChild:            RelParent,
	RelGrandparent:      RelGrandchild,
	RelGrandchild:       RelGrandparent,
	RelGreatGrandparent: RelGreatGrandchild,
	RelGreatGrandchild:  RelGreatGrandparent,
	RelSibling:          RelSibling,
	RelAuntUncle:        RelNieceNephew,
	RelNieceNephew:      RelAuntUncle,
	RelCousin:           RelCousin,
	RelSecondCousin:     RelSecondCousin,
	RelDistantCousin:    RelDistantCousin,
}

// ValidType reports whether code names a known relationship type.
func ValidType(code string) bool {
	_, ok := displayNames[code]
	return ok
}

// DisplayName returns the display form of a relationship type code, or the
// code itself if unknown.
func DisplayName(code string) string {
	if name, ok := displayNames[code]; ok {
		return name
	}
	return code
}

// Relation is one stored family relationship row.
type Relation struct {
	ID          int64
	Character   world.Ref
	RelatedRef  world.Ref // Nobody when the relative is an NPC
	RelatedName string    // set when the relative is an NPC
	Type        string
}

// IsPC reports whether the relative is a player character.
func (r *Relation) IsPC() bool {
	return r.RelatedRef != world.Nobody
}

// Member is one entry in a rendered family tree.
type Member struct {
	Name string
	IsPC bool
}
