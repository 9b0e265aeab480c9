// Package places implements sub-locations within rooms: named spots a
// character can join to talk with the others gathered there.
package places

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crystal-mush/emberfall/pkg/world"
)

// Place is a named spot inside a room.
type Place struct {
	Key       string // lowercase lookup key
	Name      string // original casing for display
	Desc      string
	Creator   world.Ref
	Occupants []world.Ref
}

// HasOccupant reports whether the actor is at this place.
func (p *Place) HasOccupant(actor world.Ref) bool {
	for _, o := range p.Occupants {
		if o == actor {
			return true
		}
	}
	return false
}

// removeOccupant deletes the actor from the occupant list, if present.
func (p *Place) removeOccupant(actor world.Ref) {
	for i, o := range p.Occupants {
		if o == actor {
			p.Occupants = append(p.Occupants[:i], p.Occupants[i+1:]...)
			return
		}
	}
}

// Store persists places across restarts. The bolt store implements it;
// tests pass nil.
type Store interface {
	PutPlace(room world.Ref, p *Place) error
	DeletePlace(room world.Ref, key string) error
	LoadPlaces() (map[world.Ref]map[string]*Place, error)
}

// Registry tracks the places of every room. Occupancy lists hold only live
// actors; they are rebuilt empty on load since sessions don't survive a
// restart.
type Registry struct {
	rooms map[world.Ref]map[string]*Place
	store Store
}

// NewRegistry creates an empty registry. store may be nil.
func NewRegistry(store Store) *Registry {
	return &Registry{
		rooms: make(map[world.Ref]map[string]*Place),
		store: store,
	}
}

// Load reads persisted places and clears stale occupancy.
func (r *Registry) Load() error {
	if r.store == nil {
		return nil
	}
	rooms, err := r.store.LoadPlaces()
	if err != nil {
		return fmt.Errorf("places: load: %w", err)
	}
	for _, places := range rooms {
		for _, p := range places {
			p.Occupants = nil
		}
	}
	r.rooms = rooms
	if r.rooms == nil {
		r.rooms = make(map[world.Ref]map[string]*Place)
	}
	return nil
}

// List returns the places of a room sorted by name.
func (r *Registry) List(room world.Ref) []*Place {
	places := make([]*Place, 0, len(r.rooms[room]))
	for _, p := range r.rooms[room] {
		places = append(places, p)
	}
	sort.Slice(places, func(i, j int) bool { return places[i].Name < places[j].Name })
	return places
}

// Get finds a place by name, case-insensitively.
func (r *Registry) Get(room world.Ref, name string) (*Place, bool) {
	p, ok := r.rooms[room][strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Create adds a new place to a room. The name's casing is preserved for
// display; lookups are case-insensitive.
func (r *Registry) Create(room world.Ref, name, desc string, creator world.Ref) (*Place, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("Place name cannot be empty.")
	}
	key := strings.ToLower(name)
	if _, exists := r.rooms[room][key]; exists {
		return nil, fmt.Errorf("A place named '%s' already exists here.", name)
	}

	p := &Place{Key: key, Name: name, Desc: desc, Creator: creator}
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]*Place)
	}
	r.rooms[room][key] = p
	return p, r.persist(room, p)
}

// Delete removes a place and returns the actors who were at it so the
// caller can notify them. Permission checks belong to the command layer.
func (r *Registry) Delete(room world.Ref, name string) (*Place, []world.Ref, error) {
	p, ok := r.Get(room, name)
	if !ok {
		return nil, nil, fmt.Errorf("No place named '%s' found.", strings.TrimSpace(name))
	}
	evicted := append([]world.Ref(nil), p.Occupants...)
	p.Occupants = nil
	delete(r.rooms[room], p.Key)
	if r.store != nil {
		if err := r.store.DeletePlace(room, p.Key); err != nil {
			return p, evicted, fmt.Errorf("places: delete %q: %w", p.Key, err)
		}
	}
	return p, evicted, nil
}

// SetDesc updates a place's description.
func (r *Registry) SetDesc(room world.Ref, name, desc string) (*Place, error) {
	p, ok := r.Get(room, name)
	if !ok {
		return nil, fmt.Errorf("No place named '%s' found.", strings.TrimSpace(name))
	}
	p.Desc = desc
	return p, r.persist(room, p)
}

// Join puts the actor at a place, leaving any place they were at in the
// same room first. Returns the joined place and the place left, if any.
func (r *Registry) Join(room world.Ref, name string, actor world.Ref) (*Place, *Place, error) {
	p, ok := r.Get(room, name)
	if !ok {
		return nil, nil, fmt.Errorf("No place named '%s' found.", strings.TrimSpace(name))
	}
	old := r.Leave(room, actor)
	if old == p {
		old = nil
	}
	if !p.HasOccupant(actor) {
		p.Occupants = append(p.Occupants, actor)
	}
	return p, old, nil
}

// Leave removes the actor from whatever place they occupy in the room,
// returning it, or nil if they were at none.
func (r *Registry) Leave(room world.Ref, actor world.Ref) *Place {
	for _, p := range r.rooms[room] {
		if p.HasOccupant(actor) {
			p.removeOccupant(actor)
			return p
		}
	}
	return nil
}

// PlaceOf returns the place the actor currently occupies in the room.
func (r *Registry) PlaceOf(room world.Ref, actor world.Ref) (*Place, bool) {
	for _, p := range r.rooms[room] {
		if p.HasOccupant(actor) {
			return p, true
		}
	}
	return nil, false
}

func (r *Registry) persist(room world.Ref, p *Place) error {
	if r.store == nil {
		return nil
	}
	if err := r.store.PutPlace(room, p); err != nil {
		return fmt.Errorf("places: persist %q: %w", p.Key, err)
	}
	return nil
}
