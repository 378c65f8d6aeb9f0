package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-simplemud/internal/game"
)

// kick disconnects a logged-in player of lower rank.
func (h *Handler) kick(ctx context.Context, c *Context, args string) error {
	if args == "" {
		return rejection("Usage: kick <name>")
	}

	target, ok := h.world.Players.FindLoggedIn(args)
	if !ok {
		return rejection("Player could not be found.")
	}
	if target.Rank() >= c.Actor.Rank() {
		return rejection("You can't kick that player!")
	}

	h.world.LogoutMessage(fmt.Sprintf("%s has been kicked by %s!!!", target.Name(), c.Actor.Name()))

	if conn := target.Conn(); conn != nil {
		if err := conn.Close(); err != nil {
			slog.WarnContext(ctx, "closing kicked session", "player", target.ID(), "error", err)
		}
	}
	return nil
}

func (h *Handler) announce(_ context.Context, _ *Context, args string) error {
	h.world.Announce(args)
	return nil
}

func (h *Handler) changeRank(ctx context.Context, _ *Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return rejection("Usage: changerank <name> <rank>")
	}

	target, ok := h.world.Players.Find(fields[0])
	if !ok {
		return rejection("Error: Could not find user " + fields[0])
	}
	rank, err := game.ParseRank(fields[1])
	if err != nil {
		return rejection("Invalid rank!")
	}

	target.SetRank(rank)
	if err := h.world.Players.Save(target); err != nil {
		slog.ErrorContext(ctx, "saving rank change", "player", target.ID(), "error", err)
	}

	h.world.SendGame(fmt.Sprintf("<green><bold>%s's rank has been changed to: %s</bold></green>", target.Name(), rank))
	return nil
}

var reloadNames = map[string]string{
	"items":  "Item",
	"rooms":  "Room",
	"stores": "Store",
}

func (h *Handler) reload(_ context.Context, c *Context, args string) error {
	if args == "" {
		return rejection("Usage: reload <db>")
	}

	db := strings.ToLower(args)
	err := h.world.Reload(db)
	if errors.Is(err, game.ErrUnknownDB) {
		return rejection("Invalid Database Name!")
	}
	if err != nil {
		return err
	}

	h.world.Send(c.Actor, fmt.Sprintf("<bold><cyan>%s Database Reloaded!</cyan></bold>", reloadNames[db]))
	return nil
}

func (h *Handler) shutdown(_ context.Context, _ *Context, _ string) error {
	h.world.Announce("SYSTEM IS SHUTTING DOWN")
	h.world.SetRunning(false)
	return nil
}
