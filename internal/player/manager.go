package player

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-simplemud/internal/commands"
	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/session"
)

// SessionObserver is told when sessions start and end.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

type ManagerOpt func(*Manager)

func WithSessionObserver(o SessionObserver) ManagerOpt {
	return func(m *Manager) {
		m.observer = o
	}
}

// Manager runs the sessions of connected clients against one world.
type Manager struct {
	world    *game.World
	commands *commands.Handler
	observer SessionObserver

	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Session
}

func NewManager(world *game.World, cmds *commands.Handler, opts ...ManagerOpt) *Manager {
	m := &Manager{
		world:    world,
		commands: cmds,
		sessions: map[uuid.UUID]*session.Session{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start blocks until ctx is done and then closes every open session.
func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()

	m.mu.Lock()
	open := make([]*session.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		if err := s.Close(); err != nil {
			slog.Warn("closing session", "session", s.ID(), "error", err)
		}
	}
	return nil
}

// Sessions is the number of open sessions.
func (m *Manager) Sessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RunSession serves conn from login until it disconnects.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriteCloser) error {
	s := session.New(conn)
	m.track(s)
	defer m.untrack(s)

	slog.InfoContext(ctx, "session opened", "session", s.ID())
	defer slog.InfoContext(ctx, "session closed", "session", s.ID())

	return s.Run(ctx, m.newLoginHandler(ctx))
}

func (m *Manager) track(s *session.Session) {
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	if m.observer != nil {
		m.observer.SessionOpened()
	}
}

func (m *Manager) untrack(s *session.Session) {
	m.mu.Lock()
	delete(m.sessions, s.ID())
	m.mu.Unlock()
	if m.observer != nil {
		m.observer.SessionClosed()
	}
}

// release logs p out when s is its session and s has closed. A session that
// was taken over leaves the player to its successor.
func (m *Manager) release(s *session.Session, p *game.Player) {
	if p.Conn() != game.Conn(s) {
		return
	}
	p.SetActive(false)
	if !s.Closed() {
		return
	}
	if err := m.world.Logout(p); err != nil {
		slog.Error("logging out player", "player", p.ID(), "session", s.ID(), "error", err)
	}
}

// prompt writes text to s once everything already published to p has
// arrived, so a prompt never overtakes the output it follows.
func (m *Manager) prompt(ctx context.Context, s *session.Session, p *game.Player, text string) {
	if err := m.world.Flush(p); err != nil {
		slog.WarnContext(ctx, "flushing player output", "player", p.ID(), "error", err)
	}
	if err := s.Prompt(text); err != nil {
		slog.WarnContext(ctx, "writing prompt", "player", p.ID(), "session", s.ID(), "error", err)
	}
}

// report sends a rejection to p or logs anything else.
func (m *Manager) report(ctx context.Context, p *game.Player, err error) {
	if err == nil {
		return
	}
	if msg, ok := game.UserMessage(err); ok {
		m.world.Send(p, msg)
		return
	}
	slog.ErrorContext(ctx, "command failed", "player", p.ID(), "error", err)
}
