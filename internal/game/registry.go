package game

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/pixil98/go-simplemud/internal/storage"
)

// Entity is anything kept in a Registry.
type Entity interface {
	comparable
	ID() storage.Identifier
	Name() string
}

// Loader supplies a registry's full contents.
type Loader[T any] func() ([]T, error)

// MergeFunc decides what a reload keeps when an id exists both before and
// after. It returns the value to store.
type MergeFunc[T any] func(prev, next T) T

// Registry is a synchronized id-keyed store that remembers insertion order
// for name lookups.
type Registry[T Entity] struct {
	mu    sync.RWMutex
	byID  map[storage.Identifier]T
	order []storage.Identifier
}

func NewRegistry[T Entity]() *Registry[T] {
	return &Registry[T]{byID: map[storage.Identifier]T{}}
}

// Add inserts e. An existing id is an error.
func (r *Registry[T]) Add(e T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[e.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID())
	}
	r.byID[e.ID()] = e
	r.order = append(r.order, e.ID())
	return nil
}

// Remove deletes id and reports whether it was present.
func (r *Registry[T]) Remove(id storage.Identifier) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(o storage.Identifier) bool { return o == id })
	return true
}

func (r *Registry[T]) Get(id storage.Identifier) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

// FindByName matches the whole name, ignoring case.
func (r *Registry[T]) FindByName(name string) (T, bool) {
	return r.first(func(e T) bool { return strings.EqualFold(e.Name(), name) })
}

// FindByPrefix returns the first entity, in insertion order, whose name
// starts with prefix, ignoring case.
func (r *Registry[T]) FindByPrefix(prefix string) (T, bool) {
	return r.first(func(e T) bool { return hasPrefixFold(e.Name(), prefix) })
}

// Find tries an exact name match before a prefix match. An empty name
// matches nothing.
func (r *Registry[T]) Find(name string) (T, bool) {
	if name == "" {
		var zero T
		return zero, false
	}
	if e, ok := r.FindByName(name); ok {
		return e, true
	}
	return r.FindByPrefix(name)
}

func (r *Registry[T]) first(match func(T) bool) (T, bool) {
	for _, e := range r.All() {
		if match(e) {
			return e, true
		}
	}
	var zero T
	return zero, false
}

func (r *Registry[T]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// All returns a snapshot in insertion order.
func (r *Registry[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]T, len(r.order))
	for i, id := range r.order {
		all[i] = r.byID[id]
	}
	return all
}

// Reload replaces the contents with whatever load returns. The loader runs
// without the lock held; the swap is done under it, so readers see either the
// old or the new contents. When merge is set it is called for ids present in
// both.
func (r *Registry[T]) Reload(load Loader[T], merge MergeFunc[T]) error {
	return r.reload(load, merge, nil)
}

// reload is Reload plus keep, which retains previous entries the new contents
// no longer have.
func (r *Registry[T]) reload(load Loader[T], merge MergeFunc[T], keep func(T) bool) error {
	next, err := load()
	if err != nil {
		return err
	}

	seen := make(map[storage.Identifier]bool, len(next))
	for _, e := range next {
		if seen[e.ID()] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID())
		}
		seen[e.ID()] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byID := make(map[storage.Identifier]T, len(next))
	order := make([]storage.Identifier, 0, len(next))
	for _, e := range next {
		id := e.ID()
		if prev, ok := r.byID[id]; ok && merge != nil {
			e = merge(prev, e)
		}
		byID[id] = e
		order = append(order, id)
	}

	if keep != nil {
		for _, id := range r.order {
			e := r.byID[id]
			if _, ok := byID[id]; !ok && keep(e) {
				byID[id] = e
				order = append(order, id)
			}
		}
	}

	r.byID, r.order = byID, order
	return nil
}

// findByName resolves name against n names with the same exact-then-prefix
// rule as Registry.Find. It returns -1 when nothing matches.
func findByName(n int, nameAt func(int) string, name string) int {
	if name == "" {
		return -1
	}
	for i := 0; i < n; i++ {
		if strings.EqualFold(nameAt(i), name) {
			return i
		}
	}
	for i := 0; i < n; i++ {
		if hasPrefixFold(nameAt(i), name) {
			return i
		}
	}
	return -1
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// PlayerSaver persists players on logout.
type PlayerSaver interface {
	SavePlayer(rec *PlayerRecord) error
}

// PlayerRegistry owns every known player, logged in or not.
type PlayerRegistry struct {
	*Registry[*Player]
	saver PlayerSaver
}

func NewPlayerRegistry(saver PlayerSaver) *PlayerRegistry {
	return &PlayerRegistry{Registry: NewRegistry[*Player](), saver: saver}
}

// FindLoggedIn resolves name among logged-in players only.
func (r *PlayerRegistry) FindLoggedIn(name string) (*Player, bool) {
	players := r.All()
	i := findByName(len(players), func(i int) string {
		if !players[i].LoggedIn() {
			return ""
		}
		return players[i].Name()
	}, name)
	if i < 0 {
		return nil, false
	}
	return players[i], true
}

// Save persists p without changing its state.
func (r *PlayerRegistry) Save(p *Player) error {
	if r.saver == nil {
		return nil
	}
	if err := r.saver.SavePlayer(p.Record()); err != nil {
		return fmt.Errorf("saving player %s: %w", p.ID(), err)
	}
	return nil
}

// Logout marks p offline, detaches its session and persists it.
func (r *PlayerRegistry) Logout(p *Player) error {
	p.mu.Lock()
	p.loggedIn = false
	p.active = false
	p.conn = nil
	p.mu.Unlock()

	return r.Save(p)
}

// RoomSaver persists the mutable state of rooms.
type RoomSaver interface {
	SaveRooms(states map[storage.Identifier]RoomState) error
}

// RoomRegistry owns every room.
type RoomRegistry struct {
	*Registry[*Room]
	saver RoomSaver
}

func NewRoomRegistry(saver RoomSaver) *RoomRegistry {
	return &RoomRegistry{Registry: NewRegistry[*Room](), saver: saver}
}

// SaveWorldState persists the items and money lying in every room.
func (r *RoomRegistry) SaveWorldState() error {
	if r.saver == nil {
		return nil
	}
	states := map[storage.Identifier]RoomState{}
	for _, room := range r.All() {
		states[room.ID()] = room.state()
	}
	if err := r.saver.SaveRooms(states); err != nil {
		return fmt.Errorf("saving rooms: %w", err)
	}
	return nil
}

// Restore applies saved floor contents to the loaded rooms.
func (r *RoomRegistry) Restore(states map[storage.Identifier]RoomState, items func(storage.Identifier) (*Item, bool)) {
	for id, st := range states {
		if room, ok := r.Get(id); ok {
			room.restore(st, items)
		}
	}
}

// Reload swaps in new room templates. Rooms that already exist keep their
// identity and mutable contents, and occupied rooms missing from the new
// catalog stay so nobody is left nowhere.
func (r *RoomRegistry) Reload(load Loader[*Room]) error {
	return r.reload(load,
		func(old, next *Room) *Room {
			old.applyTemplate(next)
			return old
		},
		func(room *Room) bool { return len(room.Occupants()) > 0 },
	)
}
