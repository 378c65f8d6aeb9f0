package player

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-simplemud/internal/commands"
	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/session"
)

// gameHandler dispatches the commands of a player in the realm.
type gameHandler struct {
	m      *Manager
	ctx    context.Context
	player *game.Player

	session     *session.Session
	lastCommand string
}

func (m *Manager) newGameHandler(ctx context.Context, p *game.Player) *gameHandler {
	return &gameHandler{m: m, ctx: ctx, player: p}
}

func (h *gameHandler) Enter(s *session.Session) {
	h.session = s
	w := h.m.world

	room, err := w.Enter(h.player)
	if err != nil {
		slog.ErrorContext(h.ctx, "entering world", "player", h.player.ID(), "error", err)
		s.Close()
		return
	}

	w.SendGame(fmt.Sprintf("<bold><green>%s has entered the realm.</green></bold>", h.player.Name()))

	if h.player.Newbie() {
		h.GoToTrain()
		return
	}
	w.Send(h.player, w.PrintRoom(room))
	h.statbar(s)
}

func (h *gameHandler) Leave(s *session.Session) {
	h.m.release(s, h.player)
}

func (h *gameHandler) Hungup(*session.Session) {
	h.m.world.LogoutMessage(h.player.Name() + " has suddenly disappeared from the realm.")
}

func (h *gameHandler) Handle(s *session.Session, line string) {
	line = strings.TrimSpace(line)
	if line == "/" {
		line = h.lastCommand
	} else {
		h.lastCommand = line
	}

	err := h.m.commands.Exec(h.ctx, &commands.Context{Actor: h.player, Session: h}, line)
	h.m.report(h.ctx, h.player, err)

	if !s.Closed() && s.Top() == session.Handler(h) {
		h.statbar(s)
	}
}

func (h *gameHandler) statbar(s *session.Session) {
	h.m.prompt(h.ctx, s, h.player, h.m.world.Statbar(h.player))
}

// Close ends the session from a command.
func (h *gameHandler) Close() error {
	return h.session.Close()
}

// GoToTrain tells the room the player is leaving to edit stats and opens the
// stat editor on top of play.
func (h *gameHandler) GoToTrain() {
	w := h.m.world
	if room, err := w.RoomOf(h.player); err == nil {
		w.SendRoom(room, fmt.Sprintf("<red><bold>%s leaves to edit stats</bold></red>", h.player.Name()))
	}
	h.session.Push(h.m.newTrainHandler(h.ctx, h.player))
}
