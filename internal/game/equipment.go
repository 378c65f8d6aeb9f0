package game

import (
	"fmt"
	"strings"
)

// UseItem equips a weapon or armor, or consumes a consumable, from p's
// inventory.
func (w *World) UseItem(p *Player, name string) error {
	room, err := w.roomOf(p)
	if err != nil {
		return err
	}

	p.mu.Lock()
	i := p.findItem(name)
	if i < 0 {
		p.mu.Unlock()
		return rejection("Could not find that item!")
	}
	item := p.inventory[i]

	var format string
	switch item.Category() {
	case CategoryWeapon:
		p.weapon = Equipped(i)
		format = "<green><bold>%s arms a %s</bold></green>"
	case CategoryArmor:
		p.armor = Equipped(i)
		format = "<green><bold>%s puts on a %s</bold></green>"
	case CategoryConsumable:
		lo, hi := item.HealRange()
		heal := lo + w.randN(hi-lo+1)
		maxHP := w.formulas.effective(p.level, p.base, p.equipment()).MaxHitPoints
		if p.hitPoints < maxHP {
			p.hitPoints = min(maxHP, p.hitPoints+heal)
		}
		p.dropAt(i)
		format = "<green><bold>%s uses a %s</bold></green>"
	default:
		p.mu.Unlock()
		return rejection("Could not use that item!")
	}
	p.mu.Unlock()

	w.SendRoom(room, fmt.Sprintf(format, p.Name(), item.Name()))
	return nil
}

// RemoveItem unequips the "weapon" or "armor" slot.
func (w *World) RemoveItem(p *Player, which string) error {
	room, err := w.roomOf(p)
	if err != nil {
		return err
	}

	var (
		item   *Item
		ok     bool
		format string
	)
	switch strings.ToLower(which) {
	case "weapon":
		item, ok = p.RemoveWeapon()
		format = "<green><bold>%s puts away a %s</bold></green>"
	case "armor":
		item, ok = p.RemoveArmor()
		format = "<green><bold>%s takes off a %s</bold></green>"
	}
	if !ok {
		return rejection("Could not Remove item!")
	}

	w.SendRoom(room, fmt.Sprintf(format, p.Name(), item.Name()))
	return nil
}
