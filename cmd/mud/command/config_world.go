package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/storage"
)

type WorldConfig struct {
	StartRoom string `json:"start_room"`
	SaveEvery int    `json:"save_every"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if c.StartRoom == "" {
		el.Add(fmt.Errorf("world: start_room is required"))
	}
	if c.SaveEvery < 0 {
		el.Add(fmt.Errorf("world: save_every must not be negative"))
	}

	return el.Err()
}

func (c *WorldConfig) options() []game.WorldOpt {
	opts := []game.WorldOpt{game.WithStartRoom(storage.Identifier(c.StartRoom))}
	if c.SaveEvery > 0 {
		opts = append(opts, game.WithSaveEvery(c.SaveEvery))
	}
	return opts
}
