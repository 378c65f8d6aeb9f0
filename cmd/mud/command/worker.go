package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-simplemud/internal/commands"
	"github.com/pixil98/go-simplemud/internal/driver"
	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/listener"
	"github.com/pixil98/go-simplemud/internal/messaging"
	"github.com/pixil98/go-simplemud/internal/metrics"
	"github.com/pixil98/go-simplemud/internal/persist"
	"github.com/pixil98/go-simplemud/internal/player"
	"github.com/pixil98/go-simplemud/internal/storage"
)

const drainTimeout = 5 * time.Second

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	tick, err := cfg.tickLength()
	if err != nil {
		return nil, err
	}

	workers := service.WorkerList{}
	m := metrics.New(nil)

	// Message delivery
	var pub game.Publisher = game.DirectPublisher{}
	if cfg.Nats.Enabled {
		ns, err := cfg.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		workers["nats"] = ns
		pub = messaging.NewNatsPublisher(ns)
	}

	db, err := cfg.Storage.OpenDatabase()
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Build the world. Stores resolve their items through the world's own
	// item registry, so the loaders are bound after it exists.
	var world *game.World
	loaders, err := cfg.Storage.BuildLoaders(func(id storage.Identifier) (*game.Item, bool) {
		return world.Items.Get(id)
	})
	if err != nil {
		return nil, closeOnError(db, err)
	}

	opts := append(cfg.World.options(),
		game.WithLoaders(loaders),
		game.WithPublisher(m.Publisher(pub)),
		game.WithSavers(db, db),
	)
	world = game.NewWorld(opts...)
	m.Observe(world)

	err = world.Load()
	if err != nil {
		return nil, closeOnError(db, fmt.Errorf("loading catalogs: %w", err))
	}
	if _, ok := world.Rooms.Get(world.StartRoom()); !ok {
		return nil, closeOnError(db, fmt.Errorf("start room %q does not exist", world.StartRoom()))
	}
	err = db.Restore(world)
	if err != nil {
		return nil, closeOnError(db, fmt.Errorf("restoring saved state: %w", err))
	}
	world.SetRunning(true)

	// Sessions
	cmds, err := commands.NewHandler(world, commands.WithObserver(m))
	if err != nil {
		return nil, closeOnError(db, fmt.Errorf("creating command handler: %w", err))
	}
	mgr := player.NewManager(world, cmds, player.WithSessionObserver(m))

	// Create Listeners
	cm := listener.NewConnectionManager(mgr)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lw, err := l.BuildListener(cm)
		if err != nil {
			return nil, closeOnError(db, fmt.Errorf("creating listener %d: %w", i, err))
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lw
	}

	workers["driver"] = driver.NewMudDriver([]driver.Manager{world, m}, driver.WithTickLength(tick))
	workers["listeners"] = &listeners
	workers["players"] = mgr
	workers["persistence"] = &persistWorker{world: world, db: db, sessions: mgr}
	if cfg.Metrics.Addr != "" {
		workers["metrics"] = metrics.NewServer(cfg.Metrics.Addr, m)
	}

	return workers, nil
}

func closeOnError(db *persist.Store, err error) error {
	if cerr := db.Close(); cerr != nil {
		slog.Warn("closing database", "error", cerr)
	}
	return err
}

type sessionCounter interface {
	Sessions() int
}

// persistWorker saves the world and closes the database once the service
// stops and the open sessions have drained.
type persistWorker struct {
	world    *game.World
	db       *persist.Store
	sessions sessionCounter
}

func (p *persistWorker) Start(ctx context.Context) error {
	<-ctx.Done()

	deadline := time.Now().Add(drainTimeout)
	for p.sessions.Sessions() > 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	if err := p.world.Save(); err != nil {
		slog.Error("saving world", "error", err)
	}
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	slog.Info("world saved")
	return nil
}
