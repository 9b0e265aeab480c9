package world

// Ref is the stable identity of an actor or room. The host framework
// assigns refs; this layer only requires that they are unique, positive,
// and usable as map keys.
type Ref int

// Nobody is the zero ref, used for "no actor" (e.g. an unassigned ticket).
const Nobody Ref = 0

// Actor is the out-of-character identity behind a connection: the entity
// that submits requests, gets assigned to them, and receives notifications.
// Connectivity and location are tracked by the Directory, not stored here,
// because the host session layer owns them.
type Actor struct {
	Ref       Ref
	Name      string
	Privilege Privilege

	// RequestNotifyMute suppresses the staff-side broadcast of request
	// updates for this actor. Toggled by request/shownotifications.
	RequestNotifyMute bool

	// Emit display preferences.
	ShowEmitNames bool
	SpeechColor   string
	WordColors    map[string]string

	// Guest actors are created on connect and destroyed on disconnect.
	Guest bool
}

// IsStaff reports whether the actor holds a staff-equivalent privilege
// (Builder or higher).
func (a *Actor) IsStaff() bool {
	return a != nil && a.Privilege >= PrivBuilder
}

// DisplayName returns the actor's name, or "Unknown" for a nil actor.
// Callers use this when rendering records that may reference deleted actors.
func (a *Actor) DisplayName() string {
	if a == nil || a.Name == "" {
		return "Unknown"
	}
	return a.Name
}
