package commands

import (
	"context"

	"github.com/pixil98/go-simplemud/internal/game"
)

func (h *Handler) move(dir game.Direction) CommandFunc {
	return func(_ context.Context, c *Context, _ string) error {
		return h.world.Move(c.Actor, dir.String())
	}
}

func (h *Handler) get(_ context.Context, c *Context, args string) error {
	return h.world.GetItem(c.Actor, args)
}

func (h *Handler) drop(_ context.Context, c *Context, args string) error {
	return h.world.DropItem(c.Actor, args)
}

func (h *Handler) use(_ context.Context, c *Context, args string) error {
	return h.world.UseItem(c.Actor, args)
}

func (h *Handler) remove(_ context.Context, c *Context, args string) error {
	return h.world.RemoveItem(c.Actor, args)
}

func (h *Handler) train(_ context.Context, c *Context, _ string) error {
	return h.world.Train(c.Actor)
}

// editStats opens the stat editor, which is only allowed in training rooms.
func (h *Handler) editStats(_ context.Context, c *Context, _ string) error {
	room, err := h.world.RoomOf(c.Actor)
	if err != nil {
		return err
	}
	if !room.Training() {
		return rejection("You cannot edit your stats here!")
	}
	c.Session.GoToTrain()
	return nil
}

func (h *Handler) list(_ context.Context, c *Context, _ string) error {
	return h.world.ListStore(c.Actor)
}

func (h *Handler) buy(_ context.Context, c *Context, args string) error {
	return h.world.Buy(c.Actor, args)
}

func (h *Handler) sell(_ context.Context, c *Context, args string) error {
	return h.world.Sell(c.Actor, args)
}
