package commands

import (
	"context"
	"fmt"
	"strings"
)

func (h *Handler) chat(_ context.Context, c *Context, args string) error {
	h.world.SendGlobal(fmt.Sprintf("<white><bold>%s chats: %s</bold></white>", c.Actor.Name(), args))
	return nil
}

func (h *Handler) whisper(_ context.Context, c *Context, args string) error {
	name, msg := splitWord(args)
	return h.world.Whisper(c.Actor, name, msg)
}

func (h *Handler) experience(_ context.Context, c *Context, _ string) error {
	h.world.Send(c.Actor, h.world.PrintExperience(c.Actor))
	return nil
}

func (h *Handler) inventory(_ context.Context, c *Context, _ string) error {
	h.world.Send(c.Actor, h.world.PrintInventory(c.Actor))
	return nil
}

func (h *Handler) stats(_ context.Context, c *Context, _ string) error {
	h.world.Send(c.Actor, h.world.PrintStats(c.Actor))
	return nil
}

func (h *Handler) time(_ context.Context, c *Context, _ string) error {
	h.world.Send(c.Actor, h.world.TimeReport())
	return nil
}

// who lists logged-in players, or everyone with "who all".
func (h *Handler) who(_ context.Context, c *Context, args string) error {
	h.world.Send(c.Actor, h.world.WhoList(strings.EqualFold(args, "all")))
	return nil
}

func (h *Handler) look(_ context.Context, c *Context, _ string) error {
	return h.world.Look(c.Actor)
}

func (h *Handler) quit(_ context.Context, c *Context, _ string) error {
	h.world.LogoutMessage(c.Actor.Name() + " has left the realm.")
	if err := c.Session.Close(); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}
