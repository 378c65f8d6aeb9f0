package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pixil98/go-simplemud/internal/display"
)

// Move walks p through the exit named by dir.
func (w *World) Move(p *Player, dir string) error {
	d, ok := ParseDirection(dir)
	if !ok {
		return NewUserError("<red>Invalid direction!</red>")
	}

	src, err := w.roomOf(p)
	if err != nil {
		return err
	}

	destID, ok := src.Exit(d)
	if !ok {
		w.SendRoom(src, fmt.Sprintf("<red>%s bumps into the wall to the %s!!!</red>", p.Name(), d))
		return nil
	}
	dest, ok := w.Rooms.Get(destID)
	if !ok {
		return fmt.Errorf("%w: exit %s of %s leads to unknown room %q", ErrNoRoom, d, src.ID(), destID)
	}

	if err := w.relocate(p, src, dest); err != nil {
		return err
	}

	w.SendRoom(src, fmt.Sprintf("<green>%s leaves to the %s.</green>", p.Name(), d))
	w.sendRoomExcept(dest, p.ID(), fmt.Sprintf("<green>%s enters from the %s.</green>", p.Name(), d.Opposite()))
	w.Send(p, fmt.Sprintf("<green>You walk %s.</green>", d))
	w.Send(p, w.PrintRoom(dest))
	return nil
}

// relocate moves p's occupancy from src to dest in one step so no observer
// sees the player in both rooms or in neither.
func (w *World) relocate(p *Player, src, dest *Room) error {
	unlock := lockRooms(src, dest)
	defer unlock()

	if !slices.Contains(src.occupants, p.ID()) {
		return fmt.Errorf("%w: %s is not in %s", ErrNoRoom, p.ID(), src.ID())
	}
	src.removePlayer(p.ID())
	dest.addPlayer(p.ID())

	p.mu.Lock()
	p.room = dest.ID()
	p.mu.Unlock()
	return nil
}

// lockRooms write-locks both rooms in id order and returns the matching unlock.
func lockRooms(a, b *Room) func() {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	if b.ID() < a.ID() {
		a, b = b, a
	}
	a.mu.Lock()
	b.mu.Lock()
	return func() {
		b.mu.Unlock()
		a.mu.Unlock()
	}
}

// Look shows p the room they are standing in.
func (w *World) Look(p *Player) error {
	room, err := w.roomOf(p)
	if err != nil {
		return err
	}
	w.Send(p, w.PrintRoom(room))
	return nil
}

// PrintRoom renders a room's name, description, exits, floor contents and
// occupants.
func (w *World) PrintRoom(room *Room) string {
	var sb strings.Builder

	sb.WriteString("<newline><bold><white>" + room.Name() + "</white></bold><newline>")
	sb.WriteString("<bold><magenta>" + display.Wrap(room.Description()) + "</magenta></bold><newline>")

	sb.WriteString("<bold><green>exits: ")
	for _, d := range room.Exits() {
		sb.WriteString(d.String() + "  ")
	}
	sb.WriteString("</green></bold>")

	var seen []string
	if money := room.Money(); money > 0 {
		seen = append(seen, fmt.Sprintf("$%d", money))
	}
	seen = append(seen, ItemNames(room.Items())...)
	if len(seen) > 0 {
		sb.WriteString("<newline><bold><yellow>You see: " + strings.Join(seen, ", ") + "</yellow></bold>")
	}

	var people []string
	for _, id := range room.Occupants() {
		if o, ok := w.Players.Get(id); ok {
			people = append(people, o.Name())
		}
	}
	if len(people) > 0 {
		sb.WriteString("<newline><bold><cyan>People: " + strings.Join(people, ", ") + "</cyan></bold>")
	}

	return sb.String()
}
