package commands

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/pixil98/go-simplemud/internal/game"
)

// Observer is told about every command that runs.
type Observer interface {
	CommandExecuted(verb string)
}

type HandlerOpt func(*Handler)

func WithObserver(o Observer) HandlerOpt {
	return func(h *Handler) {
		h.observer = o
	}
}

// Handler dispatches input lines to the verb table.
type Handler struct {
	world    *game.World
	commands []*Command
	index    map[string]*Command
	observer Observer
}

func NewHandler(world *game.World, opts ...HandlerOpt) (*Handler, error) {
	h := &Handler{world: world}
	for _, opt := range opts {
		opt(h)
	}

	h.commands = h.builtins()
	index, err := Compile(h.commands)
	if err != nil {
		return nil, fmt.Errorf("compiling commands: %w", err)
	}
	h.index = index

	return h, nil
}

// builtins is the verb table in help order.
func (h *Handler) builtins() []*Command {
	return []*Command{
		{Name: "chat", Aliases: []string{":"}, Help: help("chat <mesg>", "Sends message to everyone in the game"), Func: h.chat},
		{Name: "experience", Aliases: []string{"exp"}, Help: help("experience", "Shows your experience statistics"), Func: h.experience},
		{Name: "help", Aliases: []string{"commands"}, Help: help("help", "Shows this menu"), Func: h.help},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Help: help("inventory", "Shows a list of your items"), Func: h.inventory},
		{Name: "quit", Help: help("quit", "Allows you to leave the realm."), Func: h.quit},
		{Name: "remove", Help: help("remove <'weapon'/'armor'>", "removes your weapon or armor"), Func: h.remove},
		{Name: "stats", Aliases: []string{"st"}, Help: help("stats", "Shows all of your statistics"), Func: h.stats},
		{Name: "time", Help: help("time", "shows the current system time."), Func: h.time},
		{Name: "use", Help: help("use <item>", "use an item in your inventory"), Func: h.use},
		{Name: "whisper", Help: help("whisper <who> <msg>", "Sends message to one person"), Func: h.whisper},
		{Name: "who", Help: []HelpLine{{"who", "Shows a list of everyone online"}, {"who all", "Shows a list of everyone"}}, Func: h.who},
		{Name: "look", Aliases: []string{"l"}, Help: help("look", "Shows you the contents of a room"), Func: h.look},
		{Name: "north", Aliases: []string{"n"}, Help: help("north/east/south/west", "Moves in a direction"), Func: h.move(game.North)},
		{Name: "east", Aliases: []string{"e"}, Func: h.move(game.East)},
		{Name: "south", Aliases: []string{"s"}, Func: h.move(game.South)},
		{Name: "west", Aliases: []string{"w"}, Func: h.move(game.West)},
		{Name: "get", Aliases: []string{"take"}, Help: help("get/drop <item>", "Picks up or drops an item on the ground"), Func: h.get},
		{Name: "drop", Func: h.drop},
		{Name: "train", Help: help("train", "Train to the next level (TR)"), Func: h.train},
		{Name: "editstats", Help: help("editstats", "Edit your statistics (TR)"), Func: h.editStats},
		{Name: "list", Help: help("list", "Lists items in a store (ST)"), Func: h.list},
		{Name: "buy", Help: help("buy/sell <item>", "Buy or Sell an item in a store (ST)"), Func: h.buy},
		{Name: "sell", Func: h.sell},

		{Name: "kick", MinRank: game.RankGod, Help: help("kick <who>", "kicks a user from the realm"), Func: h.kick},

		{Name: "announce", MinRank: game.RankAdmin, Help: help("announce <msg>", "Makes a global system announcement"), Func: h.announce},
		{Name: "changerank", MinRank: game.RankAdmin, Help: help("changerank <who> <rank>", "Changes the rank of a player"), Func: h.changeRank},
		{Name: "reload", MinRank: game.RankAdmin, Help: help("reload <db>", "Reloads the requested database"), Func: h.reload},
		{Name: "shutdown", MinRank: game.RankAdmin, Help: help("shutdown", "Shuts the server down"), Func: h.shutdown},
	}
}

func help(usage, text string) []HelpLine {
	return []HelpLine{{Usage: usage, Text: text}}
}

// Lookup resolves a verb or alias.
func (h *Handler) Lookup(verb string) (*Command, bool) {
	cmd, ok := h.index[strings.ToLower(verb)]
	return cmd, ok
}

// Exec runs one line of player input. Rejections come back as
// *game.UserError; any other error is a fault.
func (h *Handler) Exec(ctx context.Context, c *Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, ":") {
		line = "chat " + line[1:]
	}

	verb, args := splitWord(line)

	cmd, ok := h.Lookup(verb)
	if !ok {
		return h.say(c.Actor, line)
	}
	if c.Actor.Rank() < cmd.MinRank {
		return nil
	}

	if h.observer != nil {
		h.observer.CommandExecuted(cmd.Name)
	}
	return cmd.Func(ctx, c, args)
}

// splitWord splits s at its first whitespace rune and trims the remainder.
func splitWord(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// say is what unrecognized input becomes.
func (h *Handler) say(p *game.Player, line string) error {
	room, err := h.world.RoomOf(p)
	if err != nil {
		return err
	}
	h.world.SendRoom(room, fmt.Sprintf("<bold>%s says: <dim>%s</dim></bold>", p.Name(), line))
	return nil
}

// rejection is a red and bold UserError.
func rejection(msg string) error {
	return game.NewUserError("<red><bold>" + msg + "</bold></red>")
}
