package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crystal-mush/emberfall/pkg/color"
	"github.com/crystal-mush/emberfall/pkg/events"
	"github.com/crystal-mush/emberfall/pkg/world"
)

// prefsOf builds a receiver's coloring preferences.
func prefsOf(a *world.Actor) color.Prefs {
	return color.Prefs{SpeechColor: a.SpeechColor, WordColors: a.WordColors}
}

// CmdEmit handles emit, pose and say, plus the emit preference switches.
// cmdName is the verb the player actually typed.
func (g *Game) CmdEmit(caller *world.Actor, cmdName string, switches []string, args string) {
	if hasSwitch(switches, "shownames") {
		caller.ShowEmitNames = !caller.ShowEmitNames
		if err := g.Dir.Persist(caller); err != nil {
			g.Send(caller.Ref, err.Error())
			return
		}
		if caller.ShowEmitNames {
			g.Send(caller.Ref, "You will now see sender names on emits: (Name) message")
		} else {
			g.Send(caller.Ref, "You will no longer see sender names on emits.")
		}
		return
	}

	if hasSwitch(switches, "speechcolour") {
		g.setSpeechColour(caller, args)
		return
	}

	if hasSwitch(switches, "colourword") {
		g.setColourWord(caller, args)
		return
	}

	if strings.TrimSpace(args) == "" {
		g.Send(caller.Ref, "Usage: emit <message>, emit/shownames, emit/speechcolour <colour>, or emit/colourword <word>=<colour>")
		return
	}

	room := g.Dir.RoomOf(caller.Ref)
	if room == world.Nobody {
		g.Send(caller.Ref, "You must be in a room to use emit.")
		return
	}

	message := strings.TrimSpace(args)
	isPose := cmdName == "pose" || cmdName == ":"
	isSay := cmdName == "say" || cmdName == "'"

	evType := events.EvEmit
	if isPose {
		evType = events.EvPose
	} else if isSay {
		evType = events.EvSay
	}

	// Each receiver gets the message rendered with their own color
	// preferences.
	for _, recv := range g.Dir.InRoom(room) {
		if !g.Dir.IsConnected(recv.Ref) {
			continue
		}
		coloredMessage := color.Apply(message, prefsOf(recv))
		coloredName := color.ColorizeName(caller.Name, prefsOf(recv))

		var final string
		switch {
		case isSay:
			final = fmt.Sprintf("%s says, \"%s\"", coloredName, coloredMessage)
		case isPose:
			final = fmt.Sprintf("%s %s", coloredName, coloredMessage)
		case recv.ShowEmitNames:
			final = fmt.Sprintf("(%s) %s", coloredName, coloredMessage)
		default:
			final = coloredMessage
		}
		g.Bus.EmitToActor(recv.Ref, events.Event{
			Type:   evType,
			Actor:  recv.Ref,
			Source: caller.Ref,
			Room:   room,
			Text:   final,
		})
	}
}

// setSpeechColour handles emit/speechcolour.
func (g *Game) setSpeechColour(caller *world.Actor, args string) {
	args = strings.TrimSpace(args)
	if args == "" {
		current := caller.SpeechColor
		if current == "" {
			current = color.DefaultSpeechColor
		}
		g.Sendf(caller.Ref, "Current speech colour: %sHello|n", current)
		g.Send(caller.Ref, "Usage: emit/speechcolour <colour> (e.g., |y, |r, |344)")
		return
	}
	if !color.ValidTag(args) {
		g.Send(caller.Ref, "Colour must start with | (e.g., |y, |r, |344)")
		return
	}
	caller.SpeechColor = args
	if err := g.Dir.Persist(caller); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Sendf(caller.Ref, "Speech colour set to: %s\"Sample speech\"|n = %s", args, color.EscapeTags(args))
}

// setColourWord handles emit/colourword.
func (g *Game) setColourWord(caller *world.Actor, args string) {
	word, colourTag, ok := splitEq(args)
	if !ok {
		if len(caller.WordColors) > 0 {
			g.Send(caller.Ref, "Current word colours:")
			for _, w := range sortedKeys(caller.WordColors) {
				c := caller.WordColors[w]
				g.Sendf(caller.Ref, "  %s%s|n = %s", c, w, color.EscapeTags(c))
			}
		} else {
			g.Send(caller.Ref, "No word colours set.")
		}
		g.Send(caller.Ref, "Usage: emit/colourword <word>=<colour> (e.g., emit/colourword drum=|344)")
		g.Send(caller.Ref, "To remove: emit/colourword <word>= (empty colour)")
		return
	}

	word = strings.ToLower(word)

	if colourTag == "" {
		if _, set := caller.WordColors[word]; set {
			delete(caller.WordColors, word)
			if err := g.Dir.Persist(caller); err != nil {
				g.Send(caller.Ref, err.Error())
				return
			}
			g.Sendf(caller.Ref, "Word colour removed for: %s", word)
		} else {
			g.Sendf(caller.Ref, "No colour was set for: %s", word)
		}
		return
	}

	if !color.ValidTag(colourTag) {
		g.Send(caller.Ref, "Colour must start with | (e.g., |y, |r, |344)")
		return
	}

	if caller.WordColors == nil {
		caller.WordColors = make(map[string]string)
	}
	caller.WordColors[word] = colourTag
	if err := g.Dir.Persist(caller); err != nil {
		g.Send(caller.Ref, err.Error())
		return
	}
	g.Sendf(caller.Ref, "Word colour set: %s%s|n = %s", colourTag, word, color.EscapeTags(colourTag))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
