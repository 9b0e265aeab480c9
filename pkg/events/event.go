package events

import "github.com/crystal-mush/emberfall/pkg/world"

// EventType classifies events for transport-specific encoding.
type EventType int

const (
	EvText       EventType = iota // Raw text (universal fallback)
	EvRequest                     // Request (ticket) notification
	EvSay                         // Speech
	EvPose                        // Pose/emote
	EvEmit                        // Room emit
	EvPlace                       // Place-scoped message
	EvConnect                     // Actor connected
	EvDisconnect                  // Actor disconnected
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EvText:
		return "text"
	case EvRequest:
		return "request"
	case EvSay:
		return "say"
	case EvPose:
		return "pose"
	case EvEmit:
		return "emit"
	case EvPlace:
		return "place"
	case EvConnect:
		return "connect"
	case EvDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Event is a structured game event that flows through the event bus.
// Transports decide how to encode each event: a line-based session uses
// Text, richer clients use the structured data.
type Event struct {
	Type   EventType
	Actor  world.Ref      // Recipient
	Source world.Ref      // Who generated the event
	Room   world.Ref      // Room context, if any
	Place  string         // Place name (EvPlace)
	Text   string         // Pre-formatted text
	Data   map[string]any // Structured data for rich clients
}
