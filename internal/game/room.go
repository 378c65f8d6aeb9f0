package game

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-simplemud/internal/storage"
)

// RoomSpec is the catalog definition of a room.
type RoomSpec struct {
	Name        string                        `json:"name" yaml:"name"`
	Description string                        `json:"description" yaml:"description"`
	Exits       map[string]storage.Identifier `json:"exits,omitempty" yaml:"exits,omitempty"` // direction -> room id
	Store       storage.Identifier            `json:"store,omitempty" yaml:"store,omitempty"`
	Training    bool                          `json:"training,omitempty" yaml:"training,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (s *RoomSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}
	for dir, dest := range s.Exits {
		if _, ok := ParseDirection(dir); !ok {
			el.Add(fmt.Errorf("exit %q: unknown direction", dir))
		}
		if dest == "" {
			el.Add(fmt.Errorf("exit %s: room id is required", dir))
		}
	}

	return el.Err()
}

// Room holds its catalog fields plus the mutable occupants, items and money
// pile. Occupants are player ids kept in arrival order.
type Room struct {
	id storage.Identifier

	mu          sync.RWMutex
	name        string
	description string
	exits       [numDirections]storage.Identifier
	store       storage.Identifier
	training    bool

	occupants []storage.Identifier
	items     []*Item
	money     int
}

func NewRoom(id storage.Identifier, spec *RoomSpec) *Room {
	r := &Room{id: id}
	r.applySpec(spec)
	return r
}

func (r *Room) applySpec(spec *RoomSpec) {
	r.name = spec.Name
	r.description = spec.Description
	r.store = spec.Store
	r.training = spec.Training
	r.exits = [numDirections]storage.Identifier{}
	for dir, dest := range spec.Exits {
		if d, ok := ParseDirection(dir); ok {
			r.exits[d] = dest
		}
	}
}

// applyTemplate copies the catalog fields of next into r, keeping the
// occupants, items and money.
func (r *Room) applyTemplate(next *Room) {
	next.mu.RLock()
	name, desc, exits, store, training := next.name, next.description, next.exits, next.store, next.training
	next.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.name, r.description, r.exits, r.store, r.training = name, desc, exits, store, training
}

func (r *Room) ID() storage.Identifier { return r.id }

func (r *Room) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.name
}

func (r *Room) Description() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.description
}

// Exit returns the room id through dir, if there is one.
func (r *Room) Exit(dir Direction) (storage.Identifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dest := r.exits[dir]
	return dest, dest != ""
}

// Exits lists the open directions in compass order.
func (r *Room) Exits() []Direction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var dirs []Direction
	for d, dest := range r.exits {
		if dest != "" {
			dirs = append(dirs, Direction(d))
		}
	}
	return dirs
}

// StoreID returns the associated store, or "" for a plain room.
func (r *Room) StoreID() storage.Identifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store
}

func (r *Room) Training() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.training
}

// AddPlayer adds id to the occupants. Adding a present player is a no-op.
func (r *Room) AddPlayer(id storage.Identifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addPlayer(id)
}

func (r *Room) addPlayer(id storage.Identifier) {
	if !slices.Contains(r.occupants, id) {
		r.occupants = append(r.occupants, id)
	}
}

// RemovePlayer removes id from the occupants.
func (r *Room) RemovePlayer(id storage.Identifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removePlayer(id)
}

func (r *Room) removePlayer(id storage.Identifier) {
	r.occupants = slices.DeleteFunc(r.occupants, func(o storage.Identifier) bool { return o == id })
}

// Occupants returns the player ids in arrival order.
func (r *Room) Occupants() []storage.Identifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.occupants)
}

func (r *Room) HasOccupant(id storage.Identifier) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.occupants, id)
}

// Items returns the items on the floor.
func (r *Room) Items() []*Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.items)
}

func (r *Room) AddItem(item *Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

func (r *Room) Money() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.money
}

// AddMoney adds to the pile. The pile never goes below zero.
func (r *Room) AddMoney(amount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.money = max(0, r.money+amount)
}

// RoomState is the persisted part of a room.
type RoomState struct {
	Items []storage.Identifier `json:"items"`
	Money int                  `json:"money"`
}

func (r *Room) state() RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]storage.Identifier, len(r.items))
	for i, it := range r.items {
		ids[i] = it.ID()
	}
	return RoomState{Items: ids, Money: r.money}
}

// restore replaces the floor contents from a saved state. Unknown items are
// dropped.
func (r *Room) restore(st RoomState, lookup func(storage.Identifier) (*Item, bool)) {
	var items []*Item
	for _, id := range st.Items {
		if it, ok := lookup(id); ok {
			items = append(items, it)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
	r.money = max(0, st.Money)
}
