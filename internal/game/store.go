package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-simplemud/internal/storage"
)

// StoreEntrySpec lists one catalog line. Price defaults to the item's own
// price. BuyPrice is what the store pays for the item: zero means the same as
// Price and a negative value means the store will not buy it.
type StoreEntrySpec struct {
	Item     storage.Identifier `json:"item" yaml:"item"`
	Price    int                `json:"price,omitempty" yaml:"price,omitempty"`
	BuyPrice int                `json:"buy_price,omitempty" yaml:"buy_price,omitempty"`
}

type StoreSpec struct {
	Name  string             `json:"name" yaml:"name"`
	Room  storage.Identifier `json:"room,omitempty" yaml:"room,omitempty"`
	Items []StoreEntrySpec   `json:"items" yaml:"items"`
}

// Validate satisfies storage.ValidatingSpec.
func (s *StoreSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("store name is required"))
	}
	for i, e := range s.Items {
		if e.Item == "" {
			el.Add(fmt.Errorf("item %d: item id is required", i))
		}
		if e.Price < 0 {
			el.Add(fmt.Errorf("item %d: price must not be negative", i))
		}
	}

	return el.Err()
}

// StoreEntry is a resolved catalog line.
type StoreEntry struct {
	Item     *Item
	Price    int
	BuyPrice int
}

// Buys reports whether the store accepts this entry's item from players.
func (e StoreEntry) Buys() bool {
	return e.BuyPrice >= 0
}

// Store is immutable once built.
type Store struct {
	id      storage.Identifier
	name    string
	room    storage.Identifier
	catalog []StoreEntry
}

// NewStore resolves the catalog entries' item ids through lookup.
func NewStore(id storage.Identifier, spec *StoreSpec, lookup func(storage.Identifier) (*Item, bool)) (*Store, error) {
	s := &Store{id: id, name: spec.Name, room: spec.Room}

	for _, e := range spec.Items {
		item, ok := lookup(e.Item)
		if !ok {
			return nil, fmt.Errorf("store %s: unknown item %q", id, e.Item)
		}
		entry := StoreEntry{Item: item, Price: e.Price, BuyPrice: e.BuyPrice}
		if entry.Price == 0 {
			entry.Price = item.Price()
		}
		if entry.BuyPrice == 0 {
			entry.BuyPrice = entry.Price
		}
		s.catalog = append(s.catalog, entry)
	}

	return s, nil
}

func (s *Store) ID() storage.Identifier   { return s.id }
func (s *Store) Name() string             { return s.name }
func (s *Store) Room() storage.Identifier { return s.room }

// Catalog returns the store's entries in listing order.
func (s *Store) Catalog() []StoreEntry {
	return append([]StoreEntry(nil), s.catalog...)
}

// Find resolves an item by full name, then by name prefix.
func (s *Store) Find(name string) (StoreEntry, bool) {
	i := findByName(len(s.catalog), func(i int) string { return s.catalog[i].Item.Name() }, name)
	if i < 0 {
		return StoreEntry{}, false
	}
	return s.catalog[i], true
}

// Offer returns the store's entry for an item a player wants to sell.
func (s *Store) Offer(item *Item) (StoreEntry, bool) {
	for _, e := range s.catalog {
		if e.Item.ID() == item.ID() {
			return e, e.Buys()
		}
	}
	return StoreEntry{}, false
}
