package game

import (
	"slices"
	"strings"
	"sync"

	"github.com/pixil98/go-simplemud/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxInventory is the number of items a player can carry.
	MaxInventory = 16

	newPlayerStatPoints = 18
	newPlayerHitPoints  = 10
)

// Conn is the session a player is attached to.
type Conn interface {
	// Send delivers one markup message, terminated by a line break.
	Send(msg string) error
	Close() error
}

// Player is owned by the PlayerRegistry. Its room is a weak reference by id;
// the room's occupant list must agree with it.
type Player struct {
	id   storage.Identifier
	name string

	mu         sync.Mutex
	password   string
	rank       Rank
	loggedIn   bool
	active     bool
	newbie     bool
	room       storage.Identifier
	level      int
	experience int
	statPoints int
	base       Attributes
	hitPoints  int
	inventory  []*Item
	weapon     Slot
	armor      Slot
	money      int
	conn       Conn
}

// PlayerID is the registry key for a player name.
func PlayerID(name string) storage.Identifier {
	return storage.Identifier(strings.ToLower(name))
}

// NewPlayer creates a fresh level 1 character.
func NewPlayer(name string) *Player {
	return &Player{
		id:         PlayerID(name),
		name:       name,
		newbie:     true,
		level:      1,
		statPoints: newPlayerStatPoints,
		base:       Attributes{Strength: 1, Health: 1, Agility: 1},
		hitPoints:  newPlayerHitPoints,
	}
}

func (p *Player) ID() storage.Identifier { return p.id }
func (p *Player) Name() string           { return p.name }

// SetPassword stores a bcrypt hash of plain.
func (p *Player) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.password = string(hash)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (p *Player) CheckPassword(plain string) bool {
	p.mu.Lock()
	hash := p.password
	p.mu.Unlock()
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (p *Player) Rank() Rank {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rank
}

func (p *Player) SetRank(r Rank) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rank = r
}

func (p *Player) LoggedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loggedIn
}

func (p *Player) SetLoggedIn(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loggedIn = v
}

func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Player) SetActive(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = v
}

func (p *Player) Newbie() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.newbie
}

func (p *Player) SetNewbie(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.newbie = v
}

// RoomID returns the player's room, or "" before they first enter the world.
func (p *Player) RoomID() storage.Identifier {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.room
}

// SetRoomID places a player who is not yet in the world. Use World.Move
// or World.EnterRoom for players who are.
func (p *Player) SetRoomID(id storage.Identifier) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.room = id
}

func (p *Player) Level() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *Player) SetLevel(l int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = l
}

func (p *Player) Experience() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.experience
}

func (p *Player) AddExperience(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.experience += n
}

func (p *Player) StatPoints() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statPoints
}

func (p *Player) Base() Attributes {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.base
}

func (p *Player) SetBase(a Attributes) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = a
}

// SpendStatPoint moves one stat point into a primary attribute. It reports
// false when there are no points left or which is not a primary attribute.
func (p *Player) SpendStatPoint(which int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.statPoints <= 0 {
		return false
	}
	switch which {
	case PrimaryStrength:
		p.base.Strength++
	case PrimaryHealth:
		p.base.Health++
	case PrimaryAgility:
		p.base.Agility++
	default:
		return false
	}
	p.statPoints--
	return true
}

func (p *Player) HitPoints() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hitPoints
}

func (p *Player) SetHitPoints(hp int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hitPoints = hp
}

func (p *Player) Money() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.money
}

// SetMoney sets the balance, clamped at zero.
func (p *Player) SetMoney(m int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.money = max(0, m)
}

// Inventory returns the carried items in pick-up order.
func (p *Player) Inventory() []*Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.inventory)
}

// PickUpItem adds item to the inventory if there is room.
func (p *Player) PickUpItem(item *Item) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pickUp(item)
}

func (p *Player) pickUp(item *Item) bool {
	if len(p.inventory) >= MaxInventory {
		return false
	}
	p.inventory = append(p.inventory, item)
	return true
}

// DropItem removes the inventory entry at i, unequipping it if needed.
func (p *Player) DropItem(i int) (*Item, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropAt(i)
}

func (p *Player) dropAt(i int) (*Item, bool) {
	if i < 0 || i >= len(p.inventory) {
		return nil, false
	}
	item := p.inventory[i]
	p.inventory = slices.Delete(p.inventory, i, i+1)
	p.weapon = p.weapon.shift(i)
	p.armor = p.armor.shift(i)
	return item, true
}

// findItem returns the inventory index matching name, or -1.
func (p *Player) findItem(name string) int {
	return findByName(len(p.inventory), func(i int) string { return p.inventory[i].Name() }, name)
}

// UseWeapon equips the inventory entry at i as a weapon.
func (p *Player) UseWeapon(i int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.inventory) {
		return false
	}
	p.weapon = Equipped(i)
	return true
}

// UseArmor equips the inventory entry at i as armor.
func (p *Player) UseArmor(i int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.inventory) {
		return false
	}
	p.armor = Equipped(i)
	return true
}

// RemoveWeapon clears the weapon slot, returning what was wielded.
func (p *Player) RemoveWeapon() (*Item, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	item := p.slotItem(p.weapon)
	p.weapon = Slot{}
	return item, item != nil
}

// RemoveArmor clears the armor slot, returning what was worn.
func (p *Player) RemoveArmor() (*Item, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	item := p.slotItem(p.armor)
	p.armor = Slot{}
	return item, item != nil
}

// Weapon returns the wielded item, or nil.
func (p *Player) Weapon() *Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slotItem(p.weapon)
}

// Armor returns the worn item, or nil.
func (p *Player) Armor() *Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slotItem(p.armor)
}

func (p *Player) slotItem(s Slot) *Item {
	i, ok := s.Get()
	if !ok || i >= len(p.inventory) {
		return nil
	}
	return p.inventory[i]
}

// equipment sums the bonuses of the wielded and worn items.
func (p *Player) equipment() Attributes {
	var a Attributes
	if w := p.slotItem(p.weapon); w != nil {
		a = a.Add(w.Attributes())
	}
	if ar := p.slotItem(p.armor); ar != nil {
		a = a.Add(ar.Attributes())
	}
	return a
}

// Conn returns the attached session, or nil.
func (p *Player) Conn() Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn
}

// SetConn attaches c and returns the previous session.
func (p *Player) SetConn(c Conn) Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev := p.conn
	p.conn = c
	return prev
}

// PlayerRecord is the persisted form of a player.
type PlayerRecord struct {
	Id         storage.Identifier   `json:"id"`
	Name       string               `json:"name"`
	Password   string               `json:"password"`
	Rank       Rank                 `json:"rank"`
	Newbie     bool                 `json:"newbie"`
	Room       storage.Identifier   `json:"room,omitempty"`
	Level      int                  `json:"level"`
	Experience int                  `json:"experience"`
	StatPoints int                  `json:"stat_points"`
	Base       Attributes           `json:"base"`
	HitPoints  int                  `json:"hit_points"`
	Inventory  []storage.Identifier `json:"inventory,omitempty"`
	Weapon     *int                 `json:"weapon,omitempty"`
	Armor      *int                 `json:"armor,omitempty"`
	Money      int                  `json:"money"`
}

// Record snapshots the persistent fields.
func (p *Player) Record() *PlayerRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec := &PlayerRecord{
		Id:         p.id,
		Name:       p.name,
		Password:   p.password,
		Rank:       p.rank,
		Newbie:     p.newbie,
		Room:       p.room,
		Level:      p.level,
		Experience: p.experience,
		StatPoints: p.statPoints,
		Base:       p.base,
		HitPoints:  p.hitPoints,
		Money:      p.money,
	}
	for _, it := range p.inventory {
		rec.Inventory = append(rec.Inventory, it.ID())
	}
	if i, ok := p.weapon.Get(); ok {
		rec.Weapon = &i
	}
	if i, ok := p.armor.Get(); ok {
		rec.Armor = &i
	}
	return rec
}

// PlayerFromRecord rebuilds a logged-out player. Inventory entries whose item
// no longer exists are skipped, along with any slot pointing at them.
func PlayerFromRecord(rec *PlayerRecord, lookup func(storage.Identifier) (*Item, bool)) *Player {
	p := &Player{
		id:         rec.Id,
		name:       rec.Name,
		password:   rec.Password,
		rank:       rec.Rank,
		newbie:     rec.Newbie,
		room:       rec.Room,
		level:      rec.Level,
		experience: rec.Experience,
		statPoints: rec.StatPoints,
		base:       rec.Base,
		hitPoints:  rec.HitPoints,
		money:      max(0, rec.Money),
	}
	if p.id == "" {
		p.id = PlayerID(rec.Name)
	}

	// Record indexes shift when an item is skipped, so slots are remapped.
	remap := make(map[int]int, len(rec.Inventory))
	for i, id := range rec.Inventory {
		if it, ok := lookup(id); ok && len(p.inventory) < MaxInventory {
			remap[i] = len(p.inventory)
			p.inventory = append(p.inventory, it)
		}
	}
	slot := func(idx *int) Slot {
		if idx == nil {
			return Slot{}
		}
		if j, ok := remap[*idx]; ok {
			return Equipped(j)
		}
		return Slot{}
	}
	p.weapon = slot(rec.Weapon)
	p.armor = slot(rec.Armor)

	return p
}
