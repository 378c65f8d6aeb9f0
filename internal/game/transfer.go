package game

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// parseMoney reads "$N". It reports false for anything that is not a
// positive amount.
func parseMoney(arg string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "$"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// GetItem picks up an item, or "$N" money, from the floor of p's room.
func (w *World) GetItem(p *Player, arg string) error {
	room, err := w.roomOf(p)
	if err != nil {
		return err
	}

	if strings.HasPrefix(arg, "$") {
		amount, ok := parseMoney(arg)
		if !ok {
			return rejection("You don't see that here!")
		}

		room.mu.Lock()
		if amount > room.money {
			room.mu.Unlock()
			return rejection("There isn't that much here!")
		}
		room.money -= amount
		p.mu.Lock()
		p.money += amount
		p.mu.Unlock()
		room.mu.Unlock()

		w.SendRoom(room, fmt.Sprintf("<cyan><bold>%s picks up $%d.</bold></cyan>", p.Name(), amount))
		return nil
	}

	room.mu.Lock()
	i := findByName(len(room.items), func(i int) string { return room.items[i].Name() }, arg)
	if i < 0 {
		room.mu.Unlock()
		return rejection("You don't see that here!")
	}
	item := room.items[i]

	p.mu.Lock()
	ok := p.pickUp(item)
	p.mu.Unlock()
	if !ok {
		room.mu.Unlock()
		return rejection("You can't carry that much!")
	}
	room.items = slices.Delete(room.items, i, i+1)
	room.mu.Unlock()

	w.SendRoom(room, fmt.Sprintf("<cyan><bold>%s picks up %s.</bold></cyan>", p.Name(), item.Name()))
	return nil
}

// DropItem puts an inventory item, or "$N" money, on the floor of p's room.
// A dropped item that was equipped is unequipped.
func (w *World) DropItem(p *Player, arg string) error {
	room, err := w.roomOf(p)
	if err != nil {
		return err
	}

	if strings.HasPrefix(arg, "$") {
		amount, ok := parseMoney(arg)
		if !ok {
			return rejection("You don't have that!")
		}

		room.mu.Lock()
		p.mu.Lock()
		if amount > p.money {
			p.mu.Unlock()
			room.mu.Unlock()
			return rejection("You don't have that much!")
		}
		p.money -= amount
		p.mu.Unlock()
		room.money += amount
		room.mu.Unlock()

		w.SendRoom(room, fmt.Sprintf("<cyan><bold>%s drops $%d.</bold></cyan>", p.Name(), amount))
		return nil
	}

	room.mu.Lock()
	p.mu.Lock()
	item, ok := p.dropAt(p.findItem(arg))
	p.mu.Unlock()
	if !ok {
		room.mu.Unlock()
		return rejection("You don't have that!")
	}
	room.items = append(room.items, item)
	room.mu.Unlock()

	w.SendRoom(room, fmt.Sprintf("<cyan><bold>%s drops %s.</bold></cyan>", p.Name(), item.Name()))
	return nil
}
