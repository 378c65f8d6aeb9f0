package game

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pixil98/go-simplemud/internal/display"
)

var (
	statsTemplate = display.NewTemplate("stats", `<white><bold>{{ title "Your Stats" }}<newline>`+
		`{{ printf " %-15s%s" "Name:" .Name }}<newline>`+
		`{{ printf " %-15s%s" "Rank:" .Rank }}<newline>`+
		`{{ printf " %-15s%d/%d  (%d%%)" "HP/Max:" .HitPoints .Attr.MaxHitPoints .HPPercent }}<newline>`+
		`{{ .Experience }}<newline>`+
		`{{ rule }}<newline>`+
		`{{ printf " %-15s%-16d%-15s%d" "Strength:" .Attr.Strength "Accuracy:" .Attr.Accuracy }}<newline>`+
		`{{ printf " %-15s%-16d%-15s%d" "Health:" .Attr.Health "Dodging:" .Attr.Dodging }}<newline>`+
		`{{ printf " %-15s%-16d%-15s%d" "Agility:" .Attr.Agility "Strike Damage:" .Attr.StrikeDamage }}<newline>`+
		`{{ printf " %-15s%-16d%-15s%d" "StatPoints:" .StatPoints "Damage Absorb:" .Attr.DamageAbsorb }}<newline>`+
		`{{ rule }}</bold></white>`)

	inventoryTemplate = display.NewTemplate("inventory", `<white><bold>{{ title "Your Inventory" }}<newline>`+
		` Items:  {{ join ", " .Items }}<newline>`+
		` Weapon: {{ .Weapon | default "NONE!" }}<newline>`+
		` Armor: {{ .Armor | default "NONE!" }}<newline>`+
		` Money:    ${{ .Money }}<newline>`+
		`{{ rule }}</bold></white>`)

	whoTemplate = display.NewTemplate("who", `<white><bold>{{ rule }}<newline>`+
		` Name             | Level     | Activity | Rank<newline>`+
		`{{ rule }}<newline>`+
		`{{ range . }}{{ printf " %-17s| %-10d| " .Name .Level }}{{ .Activity }} | {{ .Rank }}<newline>{{ end }}`+
		`{{ rule }}</bold></white>`)
)

func percent(n, of int) int {
	if of <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(of)))
}

// Train raises p one level if they stand in a training room and have the
// experience for it. Each level grants two stat points and as many extra
// maximum hit points as the level being left.
func (w *World) Train(p *Player) error {
	room, err := w.roomOf(p)
	if err != nil {
		return err
	}
	if !room.Training() {
		return rejection("You cannot train here!")
	}

	p.mu.Lock()
	if p.experience < w.formulas.NeedForLevel(p.level+1) {
		p.mu.Unlock()
		return rejection("You don't have enough experience to train!")
	}
	p.statPoints += 2
	p.base.MaxHitPoints += p.level
	p.level++
	level := p.level
	p.mu.Unlock()

	w.Send(p, fmt.Sprintf("<green><bold>You are now level %d</bold></green>", level))
	return nil
}

func (w *World) experienceLines(level, exp int) string {
	need := w.formulas.NeedForLevel(level + 1)
	return fmt.Sprintf(" Level:         %d<newline> Experience:    %d/%d (%d%%)", level, exp, need, percent(exp, need))
}

// PrintExperience renders p's level and progress toward the next one.
func (w *World) PrintExperience(p *Player) string {
	return "<white><bold>" + w.experienceLines(p.Level(), p.Experience()) + "</bold></white>"
}

// PrintStats renders p's full attribute sheet.
func (w *World) PrintStats(p *Player) string {
	p.mu.Lock()
	attr := w.formulas.effective(p.level, p.base, p.equipment())
	data := map[string]any{
		"Name":       p.name,
		"Rank":       p.rank.String(),
		"HitPoints":  p.hitPoints,
		"HPPercent":  percent(p.hitPoints, attr.MaxHitPoints),
		"StatPoints": p.statPoints,
		"Attr":       attr,
		"Experience": w.experienceLines(p.level, p.experience),
	}
	p.mu.Unlock()

	return display.Render(statsTemplate, data)
}

// PrintInventory renders what p carries and has equipped.
func (w *World) PrintInventory(p *Player) string {
	data := map[string]any{
		"Items":  ItemNames(p.Inventory()),
		"Weapon": "",
		"Armor":  "",
		"Money":  p.Money(),
	}
	if weapon := p.Weapon(); weapon != nil {
		data["Weapon"] = weapon.Name()
	}
	if armor := p.Armor(); armor != nil {
		data["Armor"] = armor.Name()
	}
	return display.Render(inventoryTemplate, data)
}

// Statbar is the hit point prompt shown after each command.
func (w *World) Statbar(p *Player) string {
	hp := p.HitPoints()
	maxHP := w.Attributes(p).MaxHitPoints

	color := "green"
	switch pct := percent(hp, maxHP); {
	case pct < 33:
		color = "red"
	case pct < 67:
		color = "yellow"
	}
	return fmt.Sprintf("<white><bold>[<%s>%d</%s>/%d] </bold></white>", color, hp, color, maxHP)
}

type whoRow struct {
	Name     string
	Level    int
	Activity string
	Rank     string
}

// WhoList renders the player table. Only logged-in players are listed unless
// all is set.
func (w *World) WhoList(all bool) string {
	var rows []whoRow
	for _, p := range w.Players.All() {
		p.mu.Lock()
		row := whoRow{Name: p.name, Level: p.level}
		loggedIn, active, rank := p.loggedIn, p.active, p.rank
		p.mu.Unlock()

		if !all && !loggedIn {
			continue
		}

		switch {
		case active:
			row.Activity = "<green>Online  </green>"
		case loggedIn:
			row.Activity = "<yellow>Inactive</yellow>"
		default:
			row.Activity = "<red>Offline </red>"
		}

		color := "white"
		switch rank {
		case RankAdmin:
			color = "green"
		case RankGod:
			color = "yellow"
		}
		row.Rank = "<" + color + ">" + rank.String() + "</" + color + ">"

		rows = append(rows, row)
	}
	return display.Render(whoTemplate, rows)
}

// TimeReport renders the wall clock and how long the world has been up.
func (w *World) TimeReport() string {
	now := w.now()
	return fmt.Sprintf("<bold><cyan>The current system time is: %s on %s<newline>The system has been up for: %s.</cyan></bold>",
		now.Format("15:04:05"), now.Format("2006.01.02"), formatUptime(w.Uptime()))
}

// formatUptime spells out d as days, hours, minutes and seconds, leaving out
// leading zero units.
func formatUptime(d time.Duration) string {
	secs := int(d / time.Second)
	units := []struct {
		name string
		size int
	}{
		{"day", 86400},
		{"hour", 3600},
		{"minute", 60},
		{"second", 1},
	}

	var parts []string
	for _, u := range units {
		n := secs / u.size
		secs %= u.size
		if n == 0 && len(parts) == 0 && u.size > 1 {
			continue
		}
		name := u.name
		if n != 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, name))
	}
	return strings.Join(parts, ", ")
}
