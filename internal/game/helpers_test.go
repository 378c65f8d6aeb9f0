package game

import (
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-simplemud/internal/storage"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

type publishedMessage struct {
	targetId storage.Identifier
	data     string
}

func (r *recordingPublisher) Publish(p *Player, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, publishedMessage{targetId: p.ID(), data: msg})
	return nil
}

func (r *recordingPublisher) messagesTo(id storage.Identifier) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var msgs []string
	for _, m := range r.messages {
		if m.targetId == id {
			msgs = append(msgs, m.data)
		}
	}
	return msgs
}

func (r *recordingPublisher) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

type recordingConn struct {
	mu     sync.Mutex
	sent   []string
	closed bool
}

func (c *recordingConn) Send(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

var testStart = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

// newTestWorld builds a small town: a square with a shop to the north and a
// training hall to the east.
func newTestWorld(t *testing.T, opts ...WorldOpt) (*World, *recordingPublisher) {
	t.Helper()

	pub := &recordingPublisher{}
	opts = append([]WorldOpt{
		WithPublisher(pub),
		WithStartRoom("town"),
		WithClock(func() time.Time { return testStart }),
		WithRand(func(n int) int { return n - 1 }),
	}, opts...)
	w := NewWorld(opts...)

	items := []*Item{
		NewItem("sword", &ItemSpec{Name: "Sword", Category: CategoryWeapon, Price: 100, Attributes: Attributes{Strength: 5}}),
		NewItem("leather", &ItemSpec{Name: "Leather Armor", Category: CategoryArmor, Price: 50, Attributes: Attributes{DamageAbsorb: 2}}),
		NewItem("potion", &ItemSpec{Name: "Healing Potion", Category: CategoryConsumable, Price: 10, HealMin: 3, HealMax: 5}),
		NewItem("rock", &ItemSpec{Name: "Rock", Category: CategoryMisc, Price: 1}),
	}
	for _, it := range items {
		mustAdd(t, w.Items.Add(it))
	}

	rooms := []*Room{
		NewRoom("town", &RoomSpec{
			Name:        "Town Square",
			Description: "A busy square.",
			Exits:       map[string]storage.Identifier{"north": "shop", "east": "gym"},
		}),
		NewRoom("shop", &RoomSpec{
			Name:        "Bob's Shop",
			Description: "Shelves line the walls.",
			Exits:       map[string]storage.Identifier{"south": "town"},
			Store:       "bobs",
		}),
		NewRoom("gym", &RoomSpec{
			Name:        "Training Hall",
			Description: "Dummies and sweat.",
			Exits:       map[string]storage.Identifier{"west": "town"},
			Training:    true,
		}),
	}
	for _, r := range rooms {
		mustAdd(t, w.Rooms.Add(r))
	}

	store, err := NewStore("bobs", &StoreSpec{
		Name: "Bob's Shop",
		Items: []StoreEntrySpec{
			{Item: "sword"},
			{Item: "potion", BuyPrice: 4},
			{Item: "rock", BuyPrice: -1},
		},
	}, w.Items.Get)
	if err != nil {
		t.Fatalf("building store: %v", err)
	}
	mustAdd(t, w.Stores.Add(store))

	w.SetRunning(true)
	return w, pub
}

func mustAdd(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("adding: %v", err)
	}
}

// join creates a player in room and enters them into the world.
func join(t *testing.T, w *World, name string, room storage.Identifier) *Player {
	t.Helper()
	p := NewPlayer(name)
	p.SetRoomID(room)
	mustAdd(t, w.Players.Add(p))
	if _, err := w.Connect(p, &recordingConn{}); err != nil {
		t.Fatalf("connecting: %v", err)
	}
	if _, err := w.Enter(p); err != nil {
		t.Fatalf("entering: %v", err)
	}
	return p
}

func give(t *testing.T, w *World, p *Player, ids ...storage.Identifier) {
	t.Helper()
	for _, id := range ids {
		it, ok := w.Items.Get(id)
		if !ok {
			t.Fatalf("no item %s", id)
		}
		if !p.PickUpItem(it) {
			t.Fatalf("inventory full")
		}
	}
}

// userMessage returns the markup of a UserError, or "" for anything else.
func userMessage(err error) string {
	msg, _ := UserMessage(err)
	return msg
}
