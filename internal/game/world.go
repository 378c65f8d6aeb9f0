package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-simplemud/internal/storage"
)

const defaultSaveEvery = 10

// Loaders rebuild each reloadable catalog from its source.
type Loaders struct {
	Items  Loader[*Item]
	Rooms  Loader[*Room]
	Stores Loader[*Store]
}

// World is the shared game state: the registries plus the delivery and
// lifecycle plumbing every command needs.
type World struct {
	Players *PlayerRegistry
	Rooms   *RoomRegistry
	Items   *Registry[*Item]
	Stores  *Registry[*Store]

	formulas  Formulas
	loaders   Loaders
	pub       Publisher
	startRoom storage.Identifier
	started   time.Time
	now       func() time.Time
	randN     func(n int) int
	saveEvery int
	ticks     int
	running   atomic.Bool

	playerSaver PlayerSaver
	roomSaver   RoomSaver
}

type WorldOpt func(*World)

func WithFormulas(f Formulas) WorldOpt {
	return func(w *World) {
		w.formulas = f
	}
}

func WithLoaders(l Loaders) WorldOpt {
	return func(w *World) {
		w.loaders = l
	}
}

func WithPublisher(p Publisher) WorldOpt {
	return func(w *World) {
		w.pub = p
	}
}

// WithStartRoom sets where new players and players whose room has vanished
// are placed.
func WithStartRoom(id storage.Identifier) WorldOpt {
	return func(w *World) {
		w.startRoom = id
	}
}

func WithSavers(ps PlayerSaver, rs RoomSaver) WorldOpt {
	return func(w *World) {
		w.playerSaver = ps
		w.roomSaver = rs
	}
}

func WithClock(now func() time.Time) WorldOpt {
	return func(w *World) {
		w.now = now
	}
}

// WithRand sets the source for random rolls. It must return a value in [0, n).
func WithRand(randN func(n int) int) WorldOpt {
	return func(w *World) {
		w.randN = randN
	}
}

// WithSaveEvery sets how many ticks pass between autosaves.
func WithSaveEvery(n int) WorldOpt {
	return func(w *World) {
		w.saveEvery = n
	}
}

// NewWorld builds an empty world. It is not running until SetRunning(true).
func NewWorld(opts ...WorldOpt) *World {
	w := &World{
		formulas:  DefaultFormulas(),
		pub:       DirectPublisher{},
		now:       time.Now,
		randN:     rand.IntN,
		saveEvery: defaultSaveEvery,
	}
	for _, opt := range opts {
		opt(w)
	}

	w.Players = NewPlayerRegistry(w.playerSaver)
	w.Rooms = NewRoomRegistry(w.roomSaver)
	w.Items = NewRegistry[*Item]()
	w.Stores = NewRegistry[*Store]()
	w.started = w.now()
	return w
}

func (w *World) Running() bool {
	return w.running.Load()
}

// SetRunning(false) asks the driver to stop at its next tick.
func (w *World) SetRunning(v bool) {
	w.running.Store(v)
}

func (w *World) Formulas() Formulas {
	return w.formulas
}

func (w *World) StartRoom() storage.Identifier {
	return w.startRoom
}

// Uptime is the time since the world was created.
func (w *World) Uptime() time.Duration {
	return w.now().Sub(w.started)
}

// Now is the world's clock.
func (w *World) Now() time.Time {
	return w.now()
}

// Load fills every catalog from the configured loaders.
func (w *World) Load() error {
	for _, db := range []string{"items", "rooms", "stores"} {
		if err := w.Reload(db); err != nil {
			return err
		}
	}
	return nil
}

// Reload rebuilds one catalog by name: items, rooms or stores.
func (w *World) Reload(db string) error {
	var err error
	switch db {
	case "items":
		if w.loaders.Items == nil {
			return fmt.Errorf("no loader configured for %s", db)
		}
		err = w.Items.Reload(w.loaders.Items, nil)
	case "rooms":
		if w.loaders.Rooms == nil {
			return fmt.Errorf("no loader configured for %s", db)
		}
		err = w.Rooms.Reload(w.loaders.Rooms)
	case "stores":
		if w.loaders.Stores == nil {
			return fmt.Errorf("no loader configured for %s", db)
		}
		err = w.Stores.Reload(w.loaders.Stores, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDB, db)
	}
	if err != nil {
		return fmt.Errorf("reloading %s: %w", db, err)
	}
	slog.Info("catalog loaded", "db", db)
	return nil
}

// Connect attaches conn to p and returns the session it replaced, if any.
func (w *World) Connect(p *Player, conn Conn) (Conn, error) {
	prev := p.SetConn(conn)
	if b, ok := w.pub.(Binder); ok {
		if err := b.Bind(p); err != nil {
			return prev, fmt.Errorf("binding player %s: %w", p.ID(), err)
		}
	}
	return prev, nil
}

// Enter puts a logged-in player into their room and makes them active. A
// player without a valid room is placed in the start room.
func (w *World) Enter(p *Player) (*Room, error) {
	room, ok := w.Rooms.Get(p.RoomID())
	if !ok {
		room, ok = w.Rooms.Get(w.startRoom)
		if !ok {
			return nil, fmt.Errorf("%w: start room %q does not exist", ErrNoRoom, w.startRoom)
		}
	}

	room.AddPlayer(p.ID())

	p.mu.Lock()
	p.room = room.ID()
	p.loggedIn = true
	p.active = true
	p.mu.Unlock()

	return room, nil
}

// Logout removes p from the world for good: out of its room, detached from
// delivery, marked offline and saved along with the room contents.
func (w *World) Logout(p *Player) error {
	if room, ok := w.Rooms.Get(p.RoomID()); ok {
		room.RemovePlayer(p.ID())
	}
	if b, ok := w.pub.(Binder); ok {
		b.Unbind(p)
	}

	el := errors.NewErrorList()
	el.Add(w.Players.Logout(p))
	el.Add(w.Rooms.SaveWorldState())
	return el.Err()
}

// Save persists every logged-in player and the room contents.
func (w *World) Save() error {
	el := errors.NewErrorList()
	for _, p := range w.Players.All() {
		if p.LoggedIn() {
			el.Add(w.Players.Save(p))
		}
	}
	el.Add(w.Rooms.SaveWorldState())
	return el.Err()
}

// Tick runs the periodic world update: active players regenerate hit points
// and the world is saved every few ticks. It returns ErrShutdown once the
// world has been stopped.
func (w *World) Tick(ctx context.Context) error {
	if !w.Running() {
		return ErrShutdown
	}

	for _, p := range w.Players.All() {
		w.regen(p)
	}

	w.ticks++
	if w.saveEvery > 0 && w.ticks%w.saveEvery == 0 {
		if err := w.Save(); err != nil {
			slog.ErrorContext(ctx, "autosave failed", "error", err)
		}
	}
	return nil
}

func (w *World) regen(p *Player) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return
	}
	attr := w.formulas.effective(p.level, p.base, p.equipment())
	if p.hitPoints < attr.MaxHitPoints {
		p.hitPoints = min(attr.MaxHitPoints, p.hitPoints+attr.HPRegen)
	}
}

// Attributes returns p's effective attributes: base plus equipment plus
// values derived from them.
func (w *World) Attributes(p *Player) Attributes {
	p.mu.Lock()
	defer p.mu.Unlock()
	return w.formulas.effective(p.level, p.base, p.equipment())
}

func (w *World) roomOf(p *Player) (*Room, error) {
	id := p.RoomID()
	room, ok := w.Rooms.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %q", ErrNoRoom, p.ID(), id)
	}
	return room, nil
}

// RoomOf returns the room p is standing in.
func (w *World) RoomOf(p *Player) (*Room, error) {
	return w.roomOf(p)
}
