package world

import "strings"

// Privilege is the single capability tier of an actor. The command layer
// derives every authorization decision from this one value instead of
// re-checking permission strings at each call site.
type Privilege int

const (
	PrivGuest Privilege = iota
	PrivPlayer
	PrivBuilder
	PrivAdmin
	PrivDeveloper
)

// String returns the canonical name of the privilege tier.
func (p Privilege) String() string {
	switch p {
	case PrivGuest:
		return "Guest"
	case PrivPlayer:
		return "Player"
	case PrivBuilder:
		return "Builder"
	case PrivAdmin:
		return "Admin"
	case PrivDeveloper:
		return "Developer"
	default:
		return "unknown"
	}
}

// ParsePrivilege matches a privilege name case-insensitively.
func ParsePrivilege(s string) (Privilege, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guest":
		return PrivGuest, true
	case "player":
		return PrivPlayer, true
	case "builder":
		return PrivBuilder, true
	case "admin":
		return PrivAdmin, true
	case "developer":
		return PrivDeveloper, true
	default:
		return PrivPlayer, false
	}
}
