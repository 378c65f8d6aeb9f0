package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-simplemud/internal/game"
)

const (
	DefaultTickLength = time.Second * 2
)

// Manager is anything advanced once per tick.
type Manager interface {
	Tick(context.Context) error
}

// MudDriver ticks its managers until the context ends or one of them fails.
// A world that has been shut down stops the driver with game.ErrShutdown.
type MudDriver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewMudDriver(managers []Manager, opts ...MudDriverOpt) *MudDriver {
	d := &MudDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *MudDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	slog.InfoContext(ctx, "driver started", "tick", d.tickLength)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if errors.Is(err, game.ErrShutdown) {
				slog.InfoContext(ctx, "world shut down, stopping driver")
				return err
			}
			if err != nil {
				return fmt.Errorf("ticking: %w", err)
			}
		}
	}
}

func (d *MudDriver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
