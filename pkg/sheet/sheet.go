// Package sheet holds character sheet data and rendering for a
// Cortex-style dice system.
package sheet

import (
	"fmt"
	"sort"
	"strings"
)

// Trait is a single rated trait: a name, a die size, and an optional
// description.
type Trait struct {
	Name string
	Die  int // die size: 4, 6, 8, 10, or 12
	Desc string
}

// DieLabel formats a die size for display, e.g. "d8".
func DieLabel(die int) string {
	return fmt.Sprintf("d%d", die)
}

// ValidDie reports whether die is a legal trait die size.
func ValidDie(die int) bool {
	switch die {
	case 4, 6, 8, 10, 12:
		return true
	}
	return false
}

// Sheet is one character's full sheet.
type Sheet struct {
	Name            string
	Attributes      []Trait
	Skills          []Trait
	Distinctions    []Trait
	SignatureAssets []Trait
	Powers          []Trait
	TemporaryAssets []Trait
	Resources       []Trait
	PlotPoints      int
	SpecialEffects  string
}

// sortedByName returns a copy of traits sorted by name.
func sortedByName(traits []Trait) []Trait {
	out := make([]Trait, len(traits))
	copy(out, traits)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// threeColWidth is the column width used by the three-column trait layout,
// sized so three columns fit a 78-character display.
const threeColWidth = 26

// FormatThreeColumns renders a trait section in three borderless columns.
func FormatThreeColumns(title string, traits []Trait) string {
	if len(traits) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "|w%s:|n\n", title)
	sorted := sortedByName(traits)
	for i := 0; i < len(sorted); i += 3 {
		var row strings.Builder
		for j := 0; j < 3 && i+j < len(sorted); j++ {
			t := sorted[i+j]
			cell := fmt.Sprintf("%s: %s", t.Name, DieLabel(t.Die))
			row.WriteString(padRight(cell, threeColWidth))
		}
		b.WriteString(strings.TrimRight(row.String(), " ") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDescribed renders a trait section as indented "Name: dN (desc)"
// lines.
func formatDescribed(title string, traits []Trait) string {
	if len(traits) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n|w%s:|n\n", title)
	for _, t := range sortedByName(traits) {
		fmt.Fprintf(&b, "  %s: %s", t.Name, DieLabel(t.Die))
		if t.Desc != "" {
			fmt.Fprintf(&b, " (%s)", t.Desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Format renders the full character sheet.
func (s *Sheet) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n|w%s's Character Sheet|n\n", s.Name)

	b.WriteString("\n|yPrime Sets|n\n")
	b.WriteString(FormatThreeColumns("Attributes", s.Attributes))
	b.WriteString(FormatThreeColumns("Skills", s.Skills))

	if len(s.Distinctions) > 0 {
		b.WriteString(formatDescribed("Distinctions", s.Distinctions))
	}

	if len(s.SignatureAssets) > 0 || len(s.Powers) > 0 || len(s.TemporaryAssets) > 0 || len(s.Resources) > 0 {
		b.WriteString("\n|yAdditional Sets|n\n")
		b.WriteString(formatDescribed("Signature Assets", s.SignatureAssets))
		b.WriteString(formatDescribed("Powers", s.Powers))
		if len(s.TemporaryAssets) > 0 {
			b.WriteString("\n|wTemporary Assets:|n\n")
			for _, t := range sortedByName(s.TemporaryAssets) {
				fmt.Fprintf(&b, "  %s: %s\n", t.Name, DieLabel(t.Die))
			}
		}
		b.WriteString(formatDescribed("Resources", s.Resources))
	}

	fmt.Fprintf(&b, "\n|wPlot Points:|n %d\n", s.PlotPoints)

	if s.SpecialEffects != "" {
		fmt.Fprintf(&b, "\n|ySpecial Effects|n\n%s\n", s.SpecialEffects)
	}

	return b.String()
}
