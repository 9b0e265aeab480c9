package game

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/crystal-mush/emberfall/pkg/boltstore"
	"github.com/crystal-mush/emberfall/pkg/events"
	"github.com/crystal-mush/emberfall/pkg/family"
	"github.com/crystal-mush/emberfall/pkg/places"
	"github.com/crystal-mush/emberfall/pkg/request"
	"github.com/crystal-mush/emberfall/pkg/sheet"
	"github.com/crystal-mush/emberfall/pkg/world"
)

// recorder collects events delivered to one actor.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Receive(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) Closed() bool { return false }

func (r *recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Text)
	}
	return out
}

func (r *recorder) Last() string {
	lines := r.Lines()
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

func (r *recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]events.Event, len(r.events))
	copy(cp, r.events)
	return cp
}

// newTestGame wires a game over temp-dir stores with a fixed clock and no
// metrics registration.
func newTestGame(t *testing.T) *Game {
	t.Helper()
	dir := t.TempDir()

	store, err := boltstore.Open(filepath.Join(dir, "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.LoadAll(); err != nil {
		t.Fatalf("load store: %v", err)
	}

	d := world.NewDirectory(store)
	bus := events.NewBus()
	mailbox := world.NewMailbox(store)
	notifier := request.NewNotifier(d, bus, mailbox)
	mgr := request.NewManager(store, notifier)
	mgr.SetClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	})

	reg := places.NewRegistry(store)

	fam, err := family.OpenRepo(filepath.Join(dir, "family.db"), 5)
	if err != nil {
		t.Fatalf("open family repo: %v", err)
	}
	t.Cleanup(func() { fam.Close() })

	return &Game{
		Conf:     DefaultGameConf(),
		Store:    store,
		Dir:      d,
		Bus:      bus,
		Mailbox:  mailbox,
		Requests: mgr,
		Notifier: notifier,
		Places:   reg,
		Family:   fam,
		Sheets:   make(map[world.Ref]*sheet.Sheet),
		Guests:   NewGuestManager(),
	}
}

// addActor creates a connected actor with a recorder subscribed to its
// events.
func addActor(t *testing.T, g *Game, name string, priv world.Privilege) (*world.Actor, *recorder) {
	t.Helper()
	a, err := g.Dir.Create(name, priv)
	if err != nil {
		t.Fatalf("create actor %s: %v", name, err)
	}
	g.Dir.Connect(a.Ref)
	rec := &recorder{}
	g.Bus.Subscribe(a.Ref, rec)
	return a, rec
}
