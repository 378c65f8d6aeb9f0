package game

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-simplemud/internal/display"
	"github.com/pixil98/go-simplemud/internal/storage"
)

var storeListTemplate = display.NewTemplate("store", `<white><bold>{{ rule }}<newline>`+
	` Welcome to {{ .Name }}!<newline>`+
	`{{ rule }}<newline>`+
	`{{ printf " %-31s| %s" "Item" "Price" }}<newline>`+
	`{{ rule }}<newline>`+
	`{{ range .Entries }}{{ printf " %-31s| %d" .Item.Name .Price }}<newline>{{ end }}`+
	`{{ rule }}</bold></white>`)

// storeOf returns the room p is in and the store it hosts.
func (w *World) storeOf(p *Player) (*Room, *Store, error) {
	room, err := w.roomOf(p)
	if err != nil {
		return nil, nil, err
	}
	id := room.StoreID()
	if id == "" {
		return nil, nil, rejection("You're not in a store!")
	}
	store, ok := w.Stores.Get(id)
	if !ok {
		slog.Warn("room references unknown store", "room", room.ID(), "store", id)
		return nil, nil, rejection("You're not in a store!")
	}
	return room, store, nil
}

// Buy purchases the named catalog item from the store in p's room.
func (w *World) Buy(p *Player, name string) error {
	room, store, err := w.storeOf(p)
	if err != nil {
		return err
	}

	entry, ok := store.Find(name)
	if !ok {
		return rejection("Sorry, we don't have that item!")
	}

	p.mu.Lock()
	if p.money < entry.Price {
		p.mu.Unlock()
		return rejection("Sorry, but you can't afford that!")
	}
	if !p.pickUp(entry.Item) {
		p.mu.Unlock()
		return rejection("Sorry, but you can't carry that much!")
	}
	p.money -= entry.Price
	p.mu.Unlock()

	w.SendRoom(room, fmt.Sprintf("<cyan><bold>%s buys a %s</bold></cyan>", p.Name(), entry.Item.Name()))
	return nil
}

// Sell hands the named inventory item to the store in p's room for its buy
// price.
func (w *World) Sell(p *Player, name string) error {
	room, store, err := w.storeOf(p)
	if err != nil {
		return err
	}

	p.mu.Lock()
	i := p.findItem(name)
	if i < 0 {
		p.mu.Unlock()
		return rejection("Sorry, you don't have that!")
	}
	item := p.inventory[i]
	entry, ok := store.Offer(item)
	if !ok {
		p.mu.Unlock()
		return rejection("Sorry, we don't want that item!")
	}
	p.dropAt(i)
	p.money += entry.BuyPrice
	p.mu.Unlock()

	w.SendRoom(room, fmt.Sprintf("<cyan><bold>%s sells a %s</bold></cyan>", p.Name(), item.Name()))
	return nil
}

// StoreList renders the catalog of a store. It reports false for an unknown
// store.
func (w *World) StoreList(id storage.Identifier) (string, bool) {
	store, ok := w.Stores.Get(id)
	if !ok {
		return "", false
	}
	return display.Render(storeListTemplate, map[string]any{
		"Name":    store.Name(),
		"Entries": store.Catalog(),
	}), true
}

// ListStore shows p the catalog of the store they are standing in.
func (w *World) ListStore(p *Player) error {
	_, store, err := w.storeOf(p)
	if err != nil {
		return err
	}
	list, _ := w.StoreList(store.ID())
	w.Send(p, list)
	return nil
}
