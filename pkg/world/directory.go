package world

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ActorStore persists actors across restarts. The bolt store implements it;
// tests pass nil and keep everything in memory.
type ActorStore interface {
	PutActor(a *Actor) error
	DeleteActor(ref Ref) error
	LoadActors() ([]*Actor, error)
}

// Directory is the actor registry: lookup by ref and name, connectivity
// tracking, and room occupancy. The game loop is effectively single-threaded,
// but host connect/disconnect callbacks can arrive off-loop, so a mutex
// guards the maps.
type Directory struct {
	mu        sync.RWMutex
	actors    map[Ref]*Actor
	byName    map[string]Ref
	connected map[Ref]bool
	location  map[Ref]Ref // actor -> room
	nextRef   Ref
	store     ActorStore
}

// NewDirectory creates an empty directory. store may be nil.
func NewDirectory(store ActorStore) *Directory {
	return &Directory{
		actors:    make(map[Ref]*Actor),
		byName:    make(map[string]Ref),
		connected: make(map[Ref]bool),
		location:  make(map[Ref]Ref),
		nextRef:   1,
		store:     store,
	}
}

// Load populates the directory from the persistent store.
func (d *Directory) Load() error {
	if d.store == nil {
		return nil
	}
	actors, err := d.store.LoadActors()
	if err != nil {
		return fmt.Errorf("directory: load actors: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, a := range actors {
		d.actors[a.Ref] = a
		d.byName[strings.ToLower(a.Name)] = a.Ref
		if a.Ref >= d.nextRef {
			d.nextRef = a.Ref + 1
		}
	}
	return nil
}

// Create registers a new actor under the next free ref.
func (d *Directory) Create(name string, priv Privilege) (*Actor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("directory: actor name cannot be empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byName[strings.ToLower(name)]; exists {
		return nil, fmt.Errorf("directory: actor %q already exists", name)
	}
	a := &Actor{Ref: d.nextRef, Name: name, Privilege: priv}
	d.nextRef++
	d.actors[a.Ref] = a
	d.byName[strings.ToLower(name)] = a.Ref
	if d.store != nil {
		if err := d.store.PutActor(a); err != nil {
			return nil, fmt.Errorf("directory: persist actor %q: %w", name, err)
		}
	}
	return a, nil
}

// Remove deletes an actor, its name index entry, and its persisted record.
// Used for guest teardown.
func (d *Directory) Remove(ref Ref) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.actors[ref]
	if !ok {
		return nil
	}
	delete(d.actors, ref)
	delete(d.byName, strings.ToLower(a.Name))
	delete(d.connected, ref)
	delete(d.location, ref)
	if d.store != nil {
		return d.store.DeleteActor(ref)
	}
	return nil
}

// Lookup returns the actor with the given ref.
func (d *Directory) Lookup(ref Ref) (*Actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.actors[ref]
	return a, ok
}

// FindByName matches an actor name case-insensitively.
func (d *Directory) FindByName(name string) (*Actor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ref, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	a, ok := d.actors[ref]
	return a, ok
}

// Name returns the display name for a ref, falling back to "Unknown" for
// refs that no longer resolve (e.g. a deleted commenter).
func (d *Directory) Name(ref Ref) string {
	a, _ := d.Lookup(ref)
	return a.DisplayName()
}

// Persist writes an actor's current state through to the store. Callers
// use it after mutating preference fields (mute flag, emit colors).
func (d *Directory) Persist(a *Actor) error {
	if d.store == nil || a == nil {
		return nil
	}
	return d.store.PutActor(a)
}

// All returns every registered actor, ordered by ref.
func (d *Directory) All() []*Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Actor, 0, len(d.actors))
	for _, a := range d.actors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

// Connect marks an actor as having a live session.
func (d *Directory) Connect(ref Ref) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connected[ref] = true
}

// Disconnect clears the actor's live-session mark.
func (d *Directory) Disconnect(ref Ref) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.connected, ref)
}

// IsConnected reports whether the actor has a live session.
func (d *Directory) IsConnected(ref Ref) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected[ref]
}

// Connected returns all actors with live sessions, ordered by ref.
func (d *Directory) Connected() []*Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Actor, 0, len(d.connected))
	for ref := range d.connected {
		if a, ok := d.actors[ref]; ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}

// ConnectedStaff returns all connected actors holding Builder or higher.
func (d *Directory) ConnectedStaff() []*Actor {
	var staff []*Actor
	for _, a := range d.Connected() {
		if a.IsStaff() {
			staff = append(staff, a)
		}
	}
	return staff
}

// MoveTo records the actor's current room. The host movement system calls
// this; the emit and place commands read it.
func (d *Directory) MoveTo(actor, room Ref) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if room == Nobody {
		delete(d.location, actor)
		return
	}
	d.location[actor] = room
}

// RoomOf returns the actor's current room, or Nobody.
func (d *Directory) RoomOf(actor Ref) Ref {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.location[actor]
}

// InRoom returns all actors currently located in room, ordered by ref.
func (d *Directory) InRoom(room Ref) []*Actor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*Actor
	for ref, loc := range d.location {
		if loc != room {
			continue
		}
		if a, ok := d.actors[ref]; ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out
}
