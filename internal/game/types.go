package game

import (
	"fmt"
	"strings"
)

// Rank is a player's authorization tier. Ranks are ordered.
type Rank int

const (
	RankRegular Rank = iota
	RankGod
	RankAdmin
)

var rankNames = map[Rank]string{
	RankRegular: "REGULAR",
	RankGod:     "GOD",
	RankAdmin:   "ADMIN",
}

func (r Rank) String() string {
	if s, ok := rankNames[r]; ok {
		return s
	}
	return fmt.Sprintf("RANK(%d)", int(r))
}

// ParseRank matches a rank name case-insensitively.
func ParseRank(s string) (Rank, error) {
	for r, name := range rankNames {
		if strings.EqualFold(s, name) {
			return r, nil
		}
	}
	return RankRegular, fmt.Errorf("unknown rank %q", s)
}

func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rank) UnmarshalText(text []byte) error {
	v, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Direction is one of the compass exits a room may have.
type Direction int

const (
	North Direction = iota
	East
	South
	West
	numDirections
)

var directionNames = [numDirections]string{"NORTH", "EAST", "SOUTH", "WEST"}

func (d Direction) String() string {
	if d < 0 || d >= numDirections {
		return fmt.Sprintf("DIRECTION(%d)", int(d))
	}
	return directionNames[d]
}

// Opposite returns the direction leading back.
func (d Direction) Opposite() Direction {
	return (d + 2) % numDirections
}

// ParseDirection accepts a full direction name or its first letter.
func ParseDirection(s string) (Direction, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for d, name := range directionNames {
		if s == name || s == name[:1] {
			return Direction(d), true
		}
	}
	return 0, false
}

// Category is the kind of an item, which decides what "use" does with it.
type Category int

const (
	CategoryMisc Category = iota
	CategoryWeapon
	CategoryArmor
	CategoryConsumable
)

var categoryNames = map[Category]string{
	CategoryMisc:       "misc",
	CategoryWeapon:     "weapon",
	CategoryArmor:      "armor",
	CategoryConsumable: "consumable",
}

func (c Category) String() string {
	return categoryNames[c]
}

func (c *Category) UnmarshalText(text []byte) error {
	for k, v := range categoryNames {
		if strings.EqualFold(string(text), v) {
			*c = k
			return nil
		}
	}
	return fmt.Errorf("unknown item category %q", text)
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Slot is an optional inventory index used for equipped items.
type Slot struct {
	index int
	ok    bool
}

// Equipped returns a slot holding inventory index i.
func Equipped(i int) Slot {
	return Slot{index: i, ok: true}
}

// Get returns the inventory index and whether anything is equipped.
func (s Slot) Get() (int, bool) {
	return s.index, s.ok
}

// shift fixes up the slot after the inventory entry at removed was deleted.
func (s Slot) shift(removed int) Slot {
	switch {
	case !s.ok:
		return s
	case s.index == removed:
		return Slot{}
	case s.index > removed:
		return Slot{index: s.index - 1, ok: true}
	default:
		return s
	}
}
