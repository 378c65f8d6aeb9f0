package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-simplemud/cmd/mud/command"
	"github.com/pixil98/go-simplemud/internal/game"
)

func main() {
	app, err := service.NewApp(&command.Config{}, command.BuildWorkers)
	if err != nil {
		slog.Error("creating application", "error", err)
		os.Exit(1)
	}

	err = app.Run(context.Background())
	if err != nil && !errors.Is(err, game.ErrShutdown) {
		slog.Error("running application", "error", err)
		os.Exit(1)
	}

	slog.Info("exiting")
}
