package game

import "math"

// Attributes is a full attribute set. Items carry one as the bonus they grant
// when equipped; players carry one as their trained base values.
type Attributes struct {
	Strength     int `json:"strength,omitempty" yaml:"strength,omitempty"`
	Health       int `json:"health,omitempty" yaml:"health,omitempty"`
	Agility      int `json:"agility,omitempty" yaml:"agility,omitempty"`
	MaxHitPoints int `json:"max_hit_points,omitempty" yaml:"max_hit_points,omitempty"`
	Accuracy     int `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
	Dodging      int `json:"dodging,omitempty" yaml:"dodging,omitempty"`
	StrikeDamage int `json:"strike_damage,omitempty" yaml:"strike_damage,omitempty"`
	DamageAbsorb int `json:"damage_absorb,omitempty" yaml:"damage_absorb,omitempty"`
	HPRegen      int `json:"hp_regen,omitempty" yaml:"hp_regen,omitempty"`
}

// Add returns the field-wise sum of a and b.
func (a Attributes) Add(b Attributes) Attributes {
	return Attributes{
		Strength:     a.Strength + b.Strength,
		Health:       a.Health + b.Health,
		Agility:      a.Agility + b.Agility,
		MaxHitPoints: a.MaxHitPoints + b.MaxHitPoints,
		Accuracy:     a.Accuracy + b.Accuracy,
		Dodging:      a.Dodging + b.Dodging,
		StrikeDamage: a.StrikeDamage + b.StrikeDamage,
		DamageAbsorb: a.DamageAbsorb + b.DamageAbsorb,
		HPRegen:      a.HPRegen + b.HPRegen,
	}
}

// Primary attributes a player may spend stat points on, in menu order.
const (
	PrimaryStrength = iota + 1
	PrimaryHealth
	PrimaryAgility
)

// Formulas holds the data-driven rules for leveling and attribute derivation.
type Formulas struct {
	// NeedForLevel is the experience required to reach level.
	NeedForLevel func(level int) int
	// Derive computes the secondary attributes from level and the primary
	// (base plus equipment) attributes. Primary fields of the result are ignored.
	Derive func(level int, primary Attributes) Attributes
}

// DefaultFormulas returns the stock leveling curve and derivations.
func DefaultFormulas() Formulas {
	return Formulas{
		NeedForLevel: DefaultNeedForLevel,
		Derive:       DefaultDerive,
	}
}

// DefaultNeedForLevel grows by 40% per level and truncates, so level 2 needs
// 40 experience. 1.4^n is taken as 7^n/5^n to keep 1.4's binary error out of
// the truncation.
func DefaultNeedForLevel(level int) int {
	n := float64(level - 1)
	return int(100*math.Pow(7, n)/math.Pow(5, n)) - 100
}

func DefaultDerive(level int, primary Attributes) Attributes {
	return Attributes{
		MaxHitPoints: 10 + int(float64(level)*float64(primary.Health)/1.5),
		HPRegen:      primary.Health/5 + level,
		Accuracy:     primary.Agility * 3,
		Dodging:      primary.Agility * 3,
		DamageAbsorb: primary.Strength / 5,
		StrikeDamage: primary.Strength / 5,
	}
}

// effective combines base, equipment and derived values.
func (f Formulas) effective(level int, base, equip Attributes) Attributes {
	primary := base.Add(equip)
	derived := f.Derive(level, primary)
	derived.Strength, derived.Health, derived.Agility = 0, 0, 0
	return primary.Add(derived)
}
