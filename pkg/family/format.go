package family

import (
	"fmt"
	"strings"
)

// displayOrder is the fixed order relationship groups appear in, eldest
// generations first.
var displayOrder = []string{
	"Parent", "Grandparent", "Great-Grandparent",
	"Sibling", "Aunt/Uncle", "Cousin", "Second Cousin", "Distant Cousin",
	"Child", "Grandchild", "Great-Grandchild", "Niece/Nephew",
}

// pluralize turns a relationship display name into its plural header form.
func pluralize(name string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(name), "child"):
		return name + "ren"
	case name == "Sibling":
		return "Siblings"
	case name == "Aunt/Uncle":
		return "Aunts/Uncles"
	case name == "Niece/Nephew":
		return "Nieces/Nephews"
	default:
		return name + "s"
	}
}

// Format renders a family tree for display. Returns "" when the character
// has no recorded relatives.
func Format(name string, groups map[string][]Member) string {
	if len(groups) == 0 {
		return ""
	}

	lines := []string{fmt.Sprintf("|w%s's Family:|n", name), ""}
	for _, relType := range displayOrder {
		members, ok := groups[relType]
		if !ok {
			continue
		}
		header := relType
		if len(members) > 1 {
			header = pluralize(relType)
		}
		lines = append(lines, fmt.Sprintf("|c%s:|n", header))
		for _, m := range members {
			if m.IsPC {
				lines = append(lines, "  "+m.Name)
			} else {
				lines = append(lines, fmt.Sprintf("  %s |K(NPC)|n", m.Name))
			}
		}
		lines = append(lines, "")
	}
	// Drop the trailing blank line.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
