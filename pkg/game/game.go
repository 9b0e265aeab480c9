// Package game wires the engine together and implements the player-facing
// command layer: requests, emits, places, family trees, and character
// sheets.
package game

import (
	"fmt"
	"log"

	"github.com/crystal-mush/emberfall/pkg/boltstore"
	"github.com/crystal-mush/emberfall/pkg/events"
	"github.com/crystal-mush/emberfall/pkg/family"
	"github.com/crystal-mush/emberfall/pkg/places"
	"github.com/crystal-mush/emberfall/pkg/request"
	"github.com/crystal-mush/emberfall/pkg/sheet"
	"github.com/crystal-mush/emberfall/pkg/world"
)

// Game holds the wired engine: config, persistence, actor directory, event
// bus, request workflow, places, family relationships, and sheets.
type Game struct {
	Conf     *GameConf
	Store    *boltstore.Store
	Dir      *world.Directory
	Bus      *events.Bus
	Mailbox  *world.Mailbox
	Requests *request.Manager
	Notifier *request.Notifier
	Places   *places.Registry
	Family   *family.Repo
	Sheets   map[world.Ref]*sheet.Sheet
	Guests   *GuestManager
	Metrics  *Metrics
}

// NewGame opens the stores and wires all subsystems.
func NewGame(conf *GameConf) (*Game, error) {
	store, err := boltstore.Open(conf.BoltPath)
	if err != nil {
		return nil, err
	}
	if err := store.LoadAll(); err != nil {
		store.Close()
		return nil, err
	}

	dir := world.NewDirectory(store)
	if err := dir.Load(); err != nil {
		store.Close()
		return nil, err
	}

	bus := events.NewBus()
	mailbox := world.NewMailbox(store)
	notifier := request.NewNotifier(dir, bus, mailbox)
	mgr := request.NewManager(store, notifier)

	reg := places.NewRegistry(store)
	if err := reg.Load(); err != nil {
		store.Close()
		return nil, err
	}

	fam, err := family.OpenRepo(conf.FamilyDB, conf.SQLTimeout)
	if err != nil {
		store.Close()
		return nil, err
	}

	g := &Game{
		Conf:     conf,
		Store:    store,
		Dir:      dir,
		Bus:      bus,
		Mailbox:  mailbox,
		Requests: mgr,
		Notifier: notifier,
		Places:   reg,
		Family:   fam,
		Sheets:   make(map[world.Ref]*sheet.Sheet),
		Guests:   NewGuestManager(),
	}
	if conf.MetricsEnabled {
		g.Metrics = NewMetrics(g)
		notifier.OnDeliver = g.Metrics.NotificationDelivered
	}

	log.Printf("game: %s initialized, %d actors, %d requests",
		conf.MudName, len(dir.All()), len(store.All()))
	return g, nil
}

// Close releases the underlying stores.
func (g *Game) Close() error {
	if g.Family != nil {
		g.Family.Close()
	}
	if g.Store != nil {
		return g.Store.Close()
	}
	return nil
}

// Send delivers a plain text line to one actor via the event bus.
func (g *Game) Send(to world.Ref, text string) {
	g.Bus.EmitToActor(to, events.Event{Type: events.EvText, Actor: to, Text: text})
}

// Sendf formats and delivers a text line to one actor.
func (g *Game) Sendf(to world.Ref, format string, args ...interface{}) {
	g.Send(to, fmt.Sprintf(format, args...))
}

// HandleConnect is the host framework's post-login hook: it marks the actor
// connected and replays any request notifications queued while they were
// offline.
func (g *Game) HandleConnect(a *world.Actor) {
	g.Dir.Connect(a.Ref)
	g.Bus.Emit(events.Event{Type: events.EvConnect, Actor: a.Ref})

	lines, err := g.Mailbox.Flush(a.Ref)
	if err != nil {
		log.Printf("game: flush notifications for %s(#%d): %v", a.Name, a.Ref, err)
		return
	}
	if len(lines) == 0 {
		return
	}
	g.Send(a.Ref, "\n|yStored Request Notifications:|n")
	for _, line := range lines {
		g.Send(a.Ref, line)
	}
	g.Send(a.Ref, "\n")
}

// HandleDisconnect is the host framework's disconnect hook. Guests are torn
// down completely; regular actors just lose their live-session mark.
func (g *Game) HandleDisconnect(a *world.Actor) {
	g.Dir.Disconnect(a.Ref)
	g.Bus.Emit(events.Event{Type: events.EvDisconnect, Actor: a.Ref})
	g.Bus.Cleanup()

	if a.Guest {
		g.DestroyGuest(a.Ref)
	}
}
