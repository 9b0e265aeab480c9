package world

import "testing"

func TestDirectoryCreateAndLookup(t *testing.T) {
	d := NewDirectory(nil)

	a, err := d.Create("Ada", PrivPlayer)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Ref != 1 {
		t.Errorf("first actor ref = %d, want 1", a.Ref)
	}

	got, ok := d.Lookup(a.Ref)
	if !ok || got.Name != "Ada" {
		t.Errorf("lookup failed: %v %v", got, ok)
	}

	if _, err := d.Create("ada", PrivPlayer); err == nil {
		t.Error("duplicate name (case-insensitive) should be rejected")
	}
	if _, err := d.Create("   ", PrivPlayer); err == nil {
		t.Error("blank name should be rejected")
	}
}

func TestDirectoryFindByName(t *testing.T) {
	d := NewDirectory(nil)
	d.Create("Ada", PrivPlayer)

	for _, name := range []string{"Ada", "ada", "ADA", "  ada  "} {
		if _, ok := d.FindByName(name); !ok {
			t.Errorf("FindByName(%q) failed", name)
		}
	}
	if _, ok := d.FindByName("Brin"); ok {
		t.Error("found nonexistent actor")
	}
}

func TestDirectoryName(t *testing.T) {
	d := NewDirectory(nil)
	a, _ := d.Create("Ada", PrivPlayer)

	if got := d.Name(a.Ref); got != "Ada" {
		t.Errorf("Name = %q, want Ada", got)
	}
	if got := d.Name(Ref(99)); got != "Unknown" {
		t.Errorf("Name for missing ref = %q, want Unknown", got)
	}
}

func TestDirectoryConnectivity(t *testing.T) {
	d := NewDirectory(nil)
	a, _ := d.Create("Ada", PrivPlayer)
	b, _ := d.Create("Brin", PrivPlayer)

	if d.IsConnected(a.Ref) {
		t.Error("new actor should not be connected")
	}
	d.Connect(a.Ref)
	d.Connect(b.Ref)
	if !d.IsConnected(a.Ref) {
		t.Error("actor should be connected")
	}
	if got := len(d.Connected()); got != 2 {
		t.Errorf("connected count = %d, want 2", got)
	}
	d.Disconnect(a.Ref)
	if d.IsConnected(a.Ref) {
		t.Error("actor should be disconnected")
	}
	if got := len(d.Connected()); got != 1 {
		t.Errorf("connected count = %d, want 1", got)
	}
}

func TestDirectoryConnectedStaff(t *testing.T) {
	d := NewDirectory(nil)
	player, _ := d.Create("Ada", PrivPlayer)
	builder, _ := d.Create("Brin", PrivBuilder)
	admin, _ := d.Create("Caro", PrivAdmin)
	d.Connect(player.Ref)
	d.Connect(builder.Ref)
	d.Connect(admin.Ref)

	staff := d.ConnectedStaff()
	if len(staff) != 2 {
		t.Fatalf("connected staff = %d, want 2", len(staff))
	}
	if staff[0].Name != "Brin" || staff[1].Name != "Caro" {
		t.Errorf("unexpected staff set: %s, %s", staff[0].Name, staff[1].Name)
	}
}

func TestDirectoryRooms(t *testing.T) {
	d := NewDirectory(nil)
	a, _ := d.Create("Ada", PrivPlayer)
	b, _ := d.Create("Brin", PrivPlayer)
	room := Ref(100)

	d.MoveTo(a.Ref, room)
	d.MoveTo(b.Ref, room)
	if got := d.RoomOf(a.Ref); got != room {
		t.Errorf("RoomOf = %d, want %d", got, room)
	}
	if got := len(d.InRoom(room)); got != 2 {
		t.Errorf("InRoom count = %d, want 2", got)
	}

	d.MoveTo(b.Ref, Ref(200))
	if got := len(d.InRoom(room)); got != 1 {
		t.Errorf("InRoom count after move = %d, want 1", got)
	}

	d.MoveTo(a.Ref, Nobody)
	if got := d.RoomOf(a.Ref); got != Nobody {
		t.Errorf("RoomOf after clearing = %d, want Nobody", got)
	}
}

func TestDirectoryRemove(t *testing.T) {
	d := NewDirectory(nil)
	a, _ := d.Create("Guest1", PrivGuest)
	d.Connect(a.Ref)
	d.MoveTo(a.Ref, Ref(100))

	if err := d.Remove(a.Ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := d.Lookup(a.Ref); ok {
		t.Error("removed actor still resolvable by ref")
	}
	if _, ok := d.FindByName("Guest1"); ok {
		t.Error("removed actor still resolvable by name")
	}
	if d.IsConnected(a.Ref) {
		t.Error("removed actor still connected")
	}

	// Name becomes reusable after removal.
	if _, err := d.Create("Guest1", PrivGuest); err != nil {
		t.Errorf("recreate after removal: %v", err)
	}
}

func TestActorIsStaff(t *testing.T) {
	cases := []struct {
		priv Privilege
		want bool
	}{
		{PrivGuest, false},
		{PrivPlayer, false},
		{PrivBuilder, true},
		{PrivAdmin, true},
		{PrivDeveloper, true},
	}
	for _, c := range cases {
		a := &Actor{Privilege: c.priv}
		if got := a.IsStaff(); got != c.want {
			t.Errorf("IsStaff(%v) = %v, want %v", c.priv, got, c.want)
		}
	}
	var nilActor *Actor
	if nilActor.IsStaff() {
		t.Error("nil actor should not be staff")
	}
	if got := nilActor.DisplayName(); got != "Unknown" {
		t.Errorf("nil DisplayName = %q, want Unknown", got)
	}
}
