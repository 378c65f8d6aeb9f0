package player

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/session"
)

const (
	maxLoginErrors = 5
	minNameLength  = 3
	maxNameLength  = 16

	invalidNameChars = "\"'~!@#$%^&*+/\\[]{}<>()=.,?;:"
)

type loginState int

const (
	loginNewConnection loginState = iota
	loginNewUser
	loginNewPassword
	loginPassword
)

const (
	namePrompt        = `Please enter your name, or "new" if you are new: `
	newNamePrompt     = "<yellow>Please enter your desired name: </yellow>"
	newPasswordPrompt = "<green>Please enter your desired password: </green>"
)

// loginHandler authenticates a connection or creates a new character.
type loginHandler struct {
	m   *Manager
	ctx context.Context

	state  loginState
	errors int
	name   string
}

func (m *Manager) newLoginHandler(ctx context.Context) *loginHandler {
	return &loginHandler{m: m, ctx: ctx}
}

func (h *loginHandler) Enter(s *session.Session) {
	h.prompt(s, "<red><bold>Welcome To SimpleMUD</bold></red><newline>"+namePrompt)
}

func (h *loginHandler) Leave(*session.Session) {}

func (h *loginHandler) Hungup(s *session.Session) {
	slog.InfoContext(h.ctx, "connection lost during login", "session", s.ID())
}

func (h *loginHandler) Handle(s *session.Session, line string) {
	line = strings.TrimSpace(line)

	switch h.state {
	case loginNewConnection:
		h.handleName(s, line)
	case loginNewUser:
		h.handleNewName(s, line)
	case loginNewPassword:
		h.handleNewPassword(s, line)
	case loginPassword:
		h.handlePassword(s, line)
	}

	if h.errors >= maxLoginErrors && !s.Closed() {
		h.prompt(s, "<red><bold>Too many incorrect responses, closing connection...</bold></red><newline>")
		s.Close()
	}
}

func (h *loginHandler) handleName(s *session.Session, name string) {
	if strings.EqualFold(name, "new") {
		h.state = loginNewUser
		h.prompt(s, newNamePrompt)
		return
	}

	p, ok := h.m.world.Players.FindByName(name)
	if !ok {
		h.errors++
		h.prompt(s, fmt.Sprintf(`<red><bold>Sorry, the user "<white>%s</white>" does not exist.<newline>%s</bold></red>`, name, namePrompt))
		return
	}

	h.name = p.Name()
	h.state = loginPassword
	h.prompt(s, fmt.Sprintf("<green><bold>Welcome, <white>%s</white><newline><green>Please enter your password: </green></bold></green>", p.Name()))
}

func (h *loginHandler) handleNewName(s *session.Session, name string) {
	if _, taken := h.m.world.Players.FindByName(name); taken {
		h.errors++
		h.prompt(s, fmt.Sprintf(`<red><bold>Sorry, the name "<white>%s</white>" has already been taken.<newline>%s</bold></red>`, name, newNamePrompt))
		return
	}
	if !AcceptableName(name) {
		h.errors++
		h.prompt(s, fmt.Sprintf(`<red><bold>Sorry, the name "<white>%s</white>" is unacceptable.<newline>%s</bold></red>`, name, newNamePrompt))
		return
	}

	h.name = name
	h.state = loginNewPassword
	h.prompt(s, newPasswordPrompt)
}

func (h *loginHandler) handleNewPassword(s *session.Session, password string) {
	if password == "" || strings.ContainsAny(password, " \t") {
		h.errors++
		h.prompt(s, "<bold><red>INVALID PASSWORD!<newline>"+newPasswordPrompt+"</red></bold>")
		return
	}

	p := game.NewPlayer(h.name)
	if err := p.SetPassword(password); err != nil {
		slog.ErrorContext(h.ctx, "hashing password", "player", p.ID(), "error", err)
		s.Close()
		return
	}
	if h.m.world.Players.Size() == 0 {
		p.SetRank(game.RankAdmin)
	}
	if err := h.m.world.Players.Add(p); err != nil {
		// Someone claimed the name while this connection was typing.
		h.errors++
		h.state = loginNewUser
		h.prompt(s, fmt.Sprintf(`<red><bold>Sorry, the name "<white>%s</white>" has already been taken.<newline>%s</bold></red>`, h.name, newNamePrompt))
		return
	}
	if err := h.m.world.Players.Save(p); err != nil {
		slog.ErrorContext(h.ctx, "saving new player", "player", p.ID(), "error", err)
	}

	slog.InfoContext(h.ctx, "player created", "player", p.ID(), "rank", p.Rank(), "session", s.ID())
	s.Send("<green>Thank you! You are now entering the realm...</green>")
	h.goToGame(s, p)
}

func (h *loginHandler) handlePassword(s *session.Session, password string) {
	p, ok := h.m.world.Players.FindByName(h.name)
	if !ok || !p.CheckPassword(password) {
		h.errors++
		h.prompt(s, "<red><bold>INVALID PASSWORD!<newline><yellow>Please enter your password: </yellow></bold></red>")
		return
	}

	s.Send("<green><bold>Thank you! You are now entering the realm...</bold></green>")
	h.goToGame(s, p)
}

// goToGame attaches s to p and switches to play. A session p was already
// using is told and closed; its handlers leave p alone from then on.
func (h *loginHandler) goToGame(s *session.Session, p *game.Player) {
	// Output still in flight belongs to the session being replaced.
	if err := h.m.world.Flush(p); err != nil {
		slog.WarnContext(h.ctx, "flushing player output", "player", p.ID(), "error", err)
	}
	prev, err := h.m.world.Connect(p, s)
	if err != nil {
		slog.ErrorContext(h.ctx, "connecting player", "player", p.ID(), "session", s.ID(), "error", err)
		s.Close()
		return
	}
	if prev != nil && prev != game.Conn(s) {
		slog.InfoContext(h.ctx, "session taken over", "player", p.ID(), "session", s.ID())
		prev.Send("<red><bold>Another connection has taken over your session.</bold></red>")
		if err := prev.Close(); err != nil {
			slog.WarnContext(h.ctx, "closing replaced session", "player", p.ID(), "error", err)
		}
	}

	s.Switch(h.m.newGameHandler(h.ctx, p))
}

func (h *loginHandler) prompt(s *session.Session, msg string) {
	if err := s.Prompt(msg); err != nil {
		slog.WarnContext(h.ctx, "writing to session", "session", s.ID(), "error", err)
	}
}

// AcceptableName reports whether name may be used for a new character.
func AcceptableName(name string) bool {
	if len(name) < minNameLength || len(name) > maxNameLength {
		return false
	}
	if strings.EqualFold(name, "new") {
		return false
	}
	if !unicode.IsLetter(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if r > unicode.MaxASCII || unicode.IsSpace(r) || strings.ContainsRune(invalidNameChars, r) {
			return false
		}
	}
	return true
}
