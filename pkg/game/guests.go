package game

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/crystal-mush/emberfall/pkg/world"
	"golang.org/x/crypto/bcrypt"
)

// GuestManager tracks guest actors so they can be torn down completely when
// their session ends.
type GuestManager struct {
	mu     sync.Mutex
	guests map[world.Ref]time.Time // guest ref -> creation time
}

// NewGuestManager creates a new guest manager.
func NewGuestManager() *GuestManager {
	return &GuestManager{
		guests: make(map[world.Ref]time.Time),
	}
}

// IsGuest returns true if the given actor is a tracked guest.
func (gm *GuestManager) IsGuest(ref world.Ref) bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	_, ok := gm.guests[ref]
	return ok
}

// Count returns the number of active guests.
func (gm *GuestManager) Count() int {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return len(gm.guests)
}

// Track registers a guest for tracking.
func (gm *GuestManager) Track(ref world.Ref) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.guests[ref] = time.Now()
}

// Untrack removes a guest from tracking.
func (gm *GuestManager) Untrack(ref world.Ref) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.guests, ref)
}

// AllGuests returns a copy of all tracked guest refs.
func (gm *GuestManager) AllGuests() []world.Ref {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	refs := make([]world.Ref, 0, len(gm.guests))
	for ref := range gm.guests {
		refs = append(refs, ref)
	}
	return refs
}

// MaxGuests returns the configured max guest count.
func (g *Game) MaxGuests() int {
	if gc := g.GameConf(); gc.NumberGuests > 0 {
		return gc.NumberGuests
	}
	return 30
}

// CheckGuestPassword verifies the shared guest password against the
// configured bcrypt hash. An empty hash means no password is required.
func (g *Game) CheckGuestPassword(password string) bool {
	hash := g.GameConf().GuestPasswordHash
	if hash == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateGuestName produces an available guest name: configured prefixes
// first, then basename plus number.
func (g *Game) GenerateGuestName() string {
	gc := g.GameConf()
	prefixes := strings.Fields(gc.GuestPrefixes)
	basename := gc.GuestBasename
	if basename == "" {
		basename = "Guest"
	}

	for _, name := range prefixes {
		if _, taken := g.Dir.FindByName(name); !taken {
			return name
		}
	}

	max := g.MaxGuests()
	for i := 1; i <= max; i++ {
		name := fmt.Sprintf("%s%d", basename, i)
		if _, taken := g.Dir.FindByName(name); !taken {
			return name
		}
	}

	return "" // all slots exhausted
}

// CreateGuest creates a new guest actor and tracks it. Returns an error
// string suitable for display when a guest cannot be created.
func (g *Game) CreateGuest(password string) (*world.Actor, error) {
	if !g.GameConf().GuestsEnabled {
		return nil, fmt.Errorf("Guest logins are not enabled on this server.")
	}
	if !g.CheckGuestPassword(password) {
		return nil, fmt.Errorf("Incorrect guest password.")
	}

	// Phase 1: clean up any guests whose sessions are gone.
	if cleaned := g.CleanupDisconnectedGuests(); cleaned > 0 {
		log.Printf("guest: cleaned up %d disconnected guest(s)", cleaned)
	}

	// Phase 2: check the guest limit.
	if g.Guests.Count() >= g.MaxGuests() {
		return nil, fmt.Errorf("All guest connections are in use. Please try again later.")
	}

	// Phase 3: create the guest actor.
	name := g.GenerateGuestName()
	if name == "" {
		return nil, fmt.Errorf("All guest connections are in use. Please try again later.")
	}
	a, err := g.Dir.Create(name, world.PrivGuest)
	if err != nil {
		return nil, fmt.Errorf("Error creating guest character. Please try again later.")
	}
	a.Guest = true
	if err := g.Dir.Persist(a); err != nil {
		return nil, fmt.Errorf("Error creating guest character. Please try again later.")
	}

	g.Guests.Track(a.Ref)
	log.Printf("guest: created %s(#%d)", name, a.Ref)
	return a, nil
}

// DestroyGuest removes a guest actor and everything attached to it: place
// occupancy, queued notifications, and the directory entry.
func (g *Game) DestroyGuest(ref world.Ref) {
	a, ok := g.Dir.Lookup(ref)
	if !ok {
		return
	}

	if room := g.Dir.RoomOf(ref); room != world.Nobody {
		g.Places.Leave(room, ref)
	}
	if err := g.Store.ClearNotifications(ref); err != nil {
		log.Printf("guest: clear notifications for #%d: %v", ref, err)
	}
	g.Guests.Untrack(ref)
	if err := g.Dir.Remove(ref); err != nil {
		log.Printf("guest: remove #%d: %v", ref, err)
	}

	log.Printf("guest: destroyed %s(#%d)", a.Name, ref)
}

// CleanupDisconnectedGuests destroys any tracked guests that have no live
// session.
func (g *Game) CleanupDisconnectedGuests() int {
	cleaned := 0
	for _, ref := range g.Guests.AllGuests() {
		if !g.Dir.IsConnected(ref) {
			g.DestroyGuest(ref)
			cleaned++
		}
	}
	return cleaned
}
