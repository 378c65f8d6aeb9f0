package commands

import (
	"context"

	"github.com/pixil98/go-simplemud/internal/display"
	"github.com/pixil98/go-simplemud/internal/game"
)

var helpTemplate = display.NewTemplate("help", `<white><bold>{{ title "Command List" }}<newline>`+
	`{{ range .Regular }}{{ printf " %-27s- %s" .Usage .Text }}<newline>{{ end }}`+
	`</bold></white>`+
	`{{ if .God }}<yellow><bold>{{ title "God Commands" }}<newline>`+
	`{{ range .God }}{{ printf " %-27s- %s" .Usage .Text }}<newline>{{ end }}`+
	`</bold></yellow>{{ end }}`+
	`{{ if .Admin }}<green><bold>{{ title "Admin Commands" }}<newline>`+
	`{{ range .Admin }}{{ printf " %-27s- %s" .Usage .Text }}<newline>{{ end }}`+
	`</bold></green>{{ end }}`+
	`{{ rule }}`)

// repeatHelp documents the "/" shortcut, which the game handler expands
// before dispatch.
var repeatHelp = HelpLine{Usage: "/", Text: "Repeats your last command exactly."}

// helpText renders the commands available at rank, grouped by the rank that
// unlocks them.
func (h *Handler) helpText(rank game.Rank) string {
	groups := map[game.Rank][]HelpLine{
		game.RankRegular: {repeatHelp},
	}
	for _, cmd := range h.commands {
		if cmd.MinRank <= rank {
			groups[cmd.MinRank] = append(groups[cmd.MinRank], cmd.Help...)
		}
	}

	return display.Render(helpTemplate, map[string]any{
		"Regular": groups[game.RankRegular],
		"God":     groups[game.RankGod],
		"Admin":   groups[game.RankAdmin],
	})
}

func (h *Handler) help(_ context.Context, c *Context, _ string) error {
	h.world.Send(c.Actor, h.helpText(c.Actor.Rank()))
	return nil
}
