package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-simplemud/internal/storage"
)

// ItemSpec is the catalog definition of an item.
type ItemSpec struct {
	Name       string     `json:"name" yaml:"name"`
	Category   Category   `json:"category" yaml:"category"`
	Price      int        `json:"price" yaml:"price"`
	Attributes Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	HealMin    int        `json:"heal_min,omitempty" yaml:"heal_min,omitempty"`
	HealMax    int        `json:"heal_max,omitempty" yaml:"heal_max,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (s *ItemSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("item name is required"))
	}
	if s.Price < 0 {
		el.Add(fmt.Errorf("price must not be negative"))
	}
	if s.HealMin < 0 || s.HealMax < s.HealMin {
		el.Add(fmt.Errorf("heal range [%d,%d] is invalid", s.HealMin, s.HealMax))
	}

	return el.Err()
}

// Item is an immutable item. Rooms and inventories hold pointers to items and
// reloading the catalog never changes an item already handed out.
type Item struct {
	id   storage.Identifier
	spec ItemSpec
}

func NewItem(id storage.Identifier, spec *ItemSpec) *Item {
	return &Item{id: id, spec: *spec}
}

func (i *Item) ID() storage.Identifier { return i.id }
func (i *Item) Name() string           { return i.spec.Name }
func (i *Item) Category() Category     { return i.spec.Category }
func (i *Item) Price() int             { return i.spec.Price }
func (i *Item) Attributes() Attributes { return i.spec.Attributes }

// HealRange is the inclusive range a consumable restores.
func (i *Item) HealRange() (int, int) {
	return i.spec.HealMin, i.spec.HealMax
}

// ItemNames returns the names of items in order.
func ItemNames(items []*Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name()
	}
	return names
}
