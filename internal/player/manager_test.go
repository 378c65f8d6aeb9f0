package player

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pixil98/go-simplemud/internal/commands"
	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/markup"
	"github.com/pixil98/go-simplemud/internal/session"
	"github.com/pixil98/go-simplemud/internal/storage"
	"github.com/pixil98/go-testutil"
)

// scriptConn is a connection whose input is fed through Session.Handle.
type scriptConn struct {
	mu     sync.Mutex
	out    bytes.Buffer
	closed bool
}

func (c *scriptConn) Read([]byte) (int, error) { return 0, io.EOF }

func (c *scriptConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

func (c *scriptConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *scriptConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *scriptConn) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

type memorySaver struct {
	mu      sync.Mutex
	players map[storage.Identifier]*game.PlayerRecord
	rooms   int
}

func (m *memorySaver) SavePlayer(rec *game.PlayerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.players == nil {
		m.players = map[storage.Identifier]*game.PlayerRecord{}
	}
	m.players[rec.Id] = rec
	return nil
}

func (m *memorySaver) SaveRooms(map[storage.Identifier]game.RoomState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms++
	return nil
}

func (m *memorySaver) player(id storage.Identifier) *game.PlayerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players[id]
}

type countingObserver struct {
	open int
}

func (o *countingObserver) SessionOpened() { o.open++ }
func (o *countingObserver) SessionClosed() { o.open-- }

// heldPublisher holds every message until it is flushed, the way a broker
// subscription lags behind the session.
type heldPublisher struct {
	mu   sync.Mutex
	held map[storage.Identifier][]string
}

func (h *heldPublisher) Publish(p *game.Player, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.held == nil {
		h.held = map[storage.Identifier][]string{}
	}
	h.held[p.ID()] = append(h.held[p.ID()], msg)
	return nil
}

func (h *heldPublisher) Flush(p *game.Player) error {
	h.mu.Lock()
	msgs := h.held[p.ID()]
	delete(h.held, p.ID())
	h.mu.Unlock()

	conn := p.Conn()
	if conn == nil {
		return game.ErrNotConnected
	}
	for _, msg := range msgs {
		if err := conn.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func newTestManager(t *testing.T, opts ...game.WorldOpt) (*Manager, *memorySaver) {
	t.Helper()

	saver := &memorySaver{}
	w := game.NewWorld(append([]game.WorldOpt{game.WithStartRoom("town"), game.WithSavers(saver, saver)}, opts...)...)
	for _, r := range []*game.Room{
		game.NewRoom("town", &game.RoomSpec{Name: "Town Square", Description: "A busy square.", Exits: map[string]storage.Identifier{"east": "gym"}}),
		game.NewRoom("gym", &game.RoomSpec{Name: "Training Hall", Description: "Dummies and sweat.", Exits: map[string]storage.Identifier{"west": "town"}, Training: true}),
	} {
		if err := w.Rooms.Add(r); err != nil {
			t.Fatalf("adding room: %v", err)
		}
	}
	w.SetRunning(true)

	cmds, err := commands.NewHandler(w)
	if err != nil {
		t.Fatalf("building commands: %v", err)
	}
	return NewManager(w, cmds), saver
}

// addPlayer registers a trained player who has played before.
func addPlayer(t *testing.T, m *Manager, name, password string) *game.Player {
	t.Helper()
	p := game.NewPlayer(name)
	if err := p.SetPassword(password); err != nil {
		t.Fatalf("setting password: %v", err)
	}
	p.SetNewbie(false)
	p.SetRoomID("town")
	if err := m.world.Players.Add(p); err != nil {
		t.Fatalf("adding player: %v", err)
	}
	return p
}

// login runs the login dialogue for an existing player on a fresh session.
func login(t *testing.T, m *Manager, name, password string) (*session.Session, *scriptConn) {
	t.Helper()
	conn := &scriptConn{}
	s := session.New(conn)
	s.Push(m.newLoginHandler(context.Background()))
	s.Handle(name)
	s.Handle(password)
	return s, conn
}

func TestAcceptableName(t *testing.T) {
	tests := map[string]struct {
		name string
		exp  bool
	}{
		"plain":             {name: "Alice", exp: true},
		"digits after":      {name: "R2d2", exp: true},
		"too short":         {name: "Al"},
		"too long":          {name: "Abcdefghijklmnopq"},
		"longest":           {name: "Abcdefghijklmnop", exp: true},
		"starts with digit": {name: "2pac"},
		"punctuation":       {name: "Al.ice"},
		"space":             {name: "Al ice"},
		"reserved":          {name: "NEW"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "acceptable", AcceptableName(tt.name), tt.exp)
		})
	}
}

func TestLogin_NewPlayer(t *testing.T) {
	m, saver := newTestManager(t)
	conn := &scriptConn{}
	s := session.New(conn)
	s.Push(m.newLoginHandler(context.Background()))

	s.Handle("new")
	s.Handle("Alice")
	s.Handle("open sesame")
	s.Handle("secret")

	p, ok := m.world.Players.FindByName("alice")
	if !ok {
		t.Fatalf("player was not created")
	}
	testutil.AssertEqual(t, "first player rank", p.Rank(), game.RankAdmin)
	testutil.AssertEqual(t, "password", p.CheckPassword("secret"), true)
	testutil.AssertEqual(t, "newbie cleared", p.Newbie(), false)
	testutil.AssertEqual(t, "inactive while training", p.Active(), false)
	testutil.AssertEqual(t, "depth", s.Depth(), 2)
	testutil.AssertEqual(t, "invalid password reported", strings.Contains(conn.output(), "INVALID PASSWORD!"), true)

	s.Handle("1")
	s.Handle("3")
	s.Handle("9")
	base := p.Base()
	testutil.AssertEqual(t, "strength", base.Strength, 2)
	testutil.AssertEqual(t, "agility", base.Agility, 2)
	testutil.AssertEqual(t, "stat points", p.StatPoints(), 16)

	s.Handle("quit")
	testutil.AssertEqual(t, "depth", s.Depth(), 1)
	testutil.AssertEqual(t, "active", p.Active(), true)
	testutil.AssertEqual(t, "logged in", p.LoggedIn(), true)
	testutil.AssertEqual(t, "saved strength", saver.player("alice").Base.Strength, 2)
	testutil.AssertEqual(t, "room", p.RoomID(), storage.Identifier("town"))
}

func TestLogin_SecondPlayerIsRegular(t *testing.T) {
	m, _ := newTestManager(t)
	addPlayer(t, m, "Alice", "secret")

	s := session.New(&scriptConn{})
	s.Push(m.newLoginHandler(context.Background()))
	s.Handle("new")
	s.Handle("Bob")
	s.Handle("hunter2")

	p, ok := m.world.Players.FindByName("bob")
	if !ok {
		t.Fatalf("player was not created")
	}
	testutil.AssertEqual(t, "rank", p.Rank(), game.RankRegular)
}

func TestLogin_NewNameRejected(t *testing.T) {
	tests := map[string]struct {
		name   string
		expMsg string
	}{
		"taken":        {name: "alice", expMsg: "has already been taken."},
		"unacceptable": {name: "a!", expMsg: "is unacceptable."},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m, _ := newTestManager(t)
			addPlayer(t, m, "Alice", "secret")
			conn := &scriptConn{}
			s := session.New(conn)
			s.Push(m.newLoginHandler(context.Background()))

			s.Handle("new")
			s.Handle(tt.name)

			testutil.AssertEqual(t, "message", strings.Contains(conn.output(), tt.expMsg), true)
			testutil.AssertEqual(t, "players", m.world.Players.Size(), 1)
		})
	}
}

func TestLogin_TooManyErrors(t *testing.T) {
	m, _ := newTestManager(t)
	addPlayer(t, m, "Alice", "secret")
	conn := &scriptConn{}
	s := session.New(conn)
	s.Push(m.newLoginHandler(context.Background()))

	s.Handle("alice")
	for range 4 {
		s.Handle("wrong")
	}
	testutil.AssertEqual(t, "open after four", conn.isClosed(), false)

	s.Handle("wrong")
	testutil.AssertEqual(t, "closed after five", conn.isClosed(), true)
	testutil.AssertEqual(t, "message", strings.Contains(conn.output(), "Too many incorrect responses"), true)
}

func TestLogin_ExistingPlayer(t *testing.T) {
	m, _ := newTestManager(t)
	p := addPlayer(t, m, "Alice", "secret")

	s, conn := login(t, m, "ALICE", "secret")

	testutil.AssertEqual(t, "depth", s.Depth(), 1)
	testutil.AssertEqual(t, "logged in", p.LoggedIn(), true)
	testutil.AssertEqual(t, "active", p.Active(), true)
	testutil.AssertEqual(t, "entered", strings.Contains(conn.output(), "Alice has entered the realm."), true)
	testutil.AssertEqual(t, "room shown", strings.Contains(conn.output(), "Town Square"), true)
}

func TestGame_Takeover(t *testing.T) {
	m, _ := newTestManager(t)
	p := addPlayer(t, m, "Alice", "secret")

	first, firstConn := login(t, m, "alice", "secret")
	second, _ := login(t, m, "alice", "secret")

	testutil.AssertEqual(t, "old closed", firstConn.isClosed(), true)
	testutil.AssertEqual(t, "told", strings.Contains(firstConn.output(), "Another connection has taken over your session."), true)

	// The old session's read loop tears its stack down once it notices.
	first.Clear()

	testutil.AssertEqual(t, "new conn", p.Conn() == game.Conn(second), true)
	testutil.AssertEqual(t, "logged in", p.LoggedIn(), true)
	testutil.AssertEqual(t, "active", p.Active(), true)
	room, _ := m.world.Rooms.Get("town")
	testutil.AssertEqual(t, "occupants", room.Occupants(), []storage.Identifier{"alice"})
}

func TestGame_Quit(t *testing.T) {
	m, saver := newTestManager(t)
	p := addPlayer(t, m, "Alice", "secret")
	addPlayer(t, m, "Bob", "secret")
	s, _ := login(t, m, "alice", "secret")
	_, bobConn := login(t, m, "bob", "secret")

	s.Handle("quit")
	testutil.AssertEqual(t, "closed", s.Closed(), true)
	s.Clear()

	testutil.AssertEqual(t, "logged in", p.LoggedIn(), false)
	testutil.AssertEqual(t, "saved", saver.player("alice") != nil, true)
	room, _ := m.world.Rooms.Get("town")
	testutil.AssertEqual(t, "occupants", room.Occupants(), []storage.Identifier{"bob"})
	testutil.AssertEqual(t, "bob told", strings.Contains(bobConn.output(), "Alice has left the realm."), true)
}

func TestGame_Hangup(t *testing.T) {
	m, _ := newTestManager(t)
	p := addPlayer(t, m, "Alice", "secret")
	addPlayer(t, m, "Bob", "secret")
	s, _ := login(t, m, "alice", "secret")
	_, bobConn := login(t, m, "bob", "secret")

	s.Hangup()

	testutil.AssertEqual(t, "logged in", p.LoggedIn(), false)
	testutil.AssertEqual(t, "depth", s.Depth(), 0)
	testutil.AssertEqual(t, "bob told", strings.Contains(bobConn.output(), "Alice has suddenly disappeared from the realm."), true)
}

func TestGame_RepeatCommand(t *testing.T) {
	m, _ := newTestManager(t)
	addPlayer(t, m, "Alice", "secret")
	s, conn := login(t, m, "alice", "secret")

	s.Handle("east")
	s.Handle("/")

	testutil.AssertEqual(t, "walked", strings.Count(conn.output(), "You walk EAST."), 1)
	testutil.AssertEqual(t, "bumped", strings.Contains(conn.output(), "Alice bumps into the wall to the EAST!!!"), true)
}

func TestGame_EditStats(t *testing.T) {
	m, _ := newTestManager(t)
	p := addPlayer(t, m, "Alice", "secret")
	s, conn := login(t, m, "alice", "secret")

	s.Handle("east")
	s.Handle("editstats")

	testutil.AssertEqual(t, "depth", s.Depth(), 2)
	testutil.AssertEqual(t, "inactive", p.Active(), false)
	testutil.AssertEqual(t, "announced", strings.Contains(conn.output(), "Alice leaves to edit stats"), true)

	s.Handle("quit")
	testutil.AssertEqual(t, "depth", s.Depth(), 1)
	testutil.AssertEqual(t, "active", p.Active(), true)
}

func TestManager_RunSession(t *testing.T) {
	m, _ := newTestManager(t)
	obs := &countingObserver{}
	WithSessionObserver(obs)(m)

	conn := &scriptConn{}
	if err := m.RunSession(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "sessions", m.Sessions(), 0)
	testutil.AssertEqual(t, "observer", obs.open, 0)
	testutil.AssertEqual(t, "welcome", strings.Contains(conn.output(), "Welcome To SimpleMUD"), true)
}

func TestGame_PromptFollowsOutput(t *testing.T) {
	m, _ := newTestManager(t, game.WithPublisher(&heldPublisher{}))
	p := addPlayer(t, m, "Alice", "secret")
	s, conn := login(t, m, "alice", "secret")
	statbar := markup.Translate(m.world.Statbar(p))

	testutil.AssertEqual(t, "entered", strings.Contains(conn.output(), "Alice has entered the realm."), true)
	testutil.AssertEqual(t, "statbar after entry", strings.HasSuffix(conn.output(), statbar), true)

	s.Handle("east")

	out := conn.output()
	testutil.AssertEqual(t, "walked", strings.Contains(out, "You walk EAST."), true)
	testutil.AssertEqual(t, "statbar last", strings.HasSuffix(out, statbar), true)
	testutil.AssertEqual(t, "walk before statbar", strings.LastIndex(out, "Training Hall") < strings.LastIndex(out, statbar), true)
}
