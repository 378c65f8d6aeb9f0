package player

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pixil98/go-simplemud/internal/display"
	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/session"
)

var trainTemplate = display.NewTemplate("train", `<magenta><bold>{{ title "Your Stats" }}</bold><newline>`+
	`<dim>Player: {{ .Name }}<newline>`+
	`Stat Points Left: {{ .StatPoints }}<newline>`+
	`1) Strength: {{ .Base.Strength }}<newline>`+
	`2) Health: {{ .Base.Health }}<newline>`+
	`3) Agility: {{ .Base.Agility }}<newline>`+
	`</dim><bold>{{ rule }}<newline>`+
	`Enter 1, 2, or 3 to add a stat point, or "quit" to go back: </bold></magenta>`)

// trainHandler is the stat editor. The player is out of play while it is
// open.
type trainHandler struct {
	m      *Manager
	ctx    context.Context
	player *game.Player
}

func (m *Manager) newTrainHandler(ctx context.Context, p *game.Player) *trainHandler {
	return &trainHandler{m: m, ctx: ctx, player: p}
}

func (h *trainHandler) Enter(s *session.Session) {
	h.player.SetActive(false)

	if h.player.Newbie() {
		h.m.world.Send(h.player, "<magenta><bold>Welcome to SimpleMUD, "+h.player.Name()+"!<newline>"+
			"You must train your character with your desired stats,<newline>"+
			"before you enter the realm.</bold></magenta>")
		h.player.SetNewbie(false)
	}
	h.printStats(s)
}

func (h *trainHandler) Leave(s *session.Session) {
	h.m.release(s, h.player)
}

func (h *trainHandler) Hungup(*session.Session) {
	slog.InfoContext(h.ctx, "connection lost while training", "player", h.player.ID())
}

func (h *trainHandler) Handle(s *session.Session, line string) {
	arg, _, _ := strings.Cut(strings.TrimSpace(line), " ")

	if strings.EqualFold(arg, "quit") {
		if err := h.m.world.Players.Save(h.player); err != nil {
			slog.ErrorContext(h.ctx, "saving player", "player", h.player.ID(), "error", err)
		}
		s.Pop()
		return
	}

	if n, err := strconv.Atoi(arg); err == nil {
		h.player.SpendStatPoint(n)
	}
	h.printStats(s)
}

func (h *trainHandler) printStats(s *session.Session) {
	text := display.Render(trainTemplate, map[string]any{
		"Name":       h.player.Name(),
		"StatPoints": h.player.StatPoints(),
		"Base":       h.player.Base(),
	})
	h.m.prompt(h.ctx, s, h.player, text)
}
