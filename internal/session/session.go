package session

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-simplemud/internal/markup"
)

// Handler interprets the input of a session while it is on top of the
// session's stack.
type Handler interface {
	// Enter is called when the handler becomes the top of the stack.
	Enter(s *Session)
	// Leave is called when the handler stops being the top of the stack.
	Leave(s *Session)
	// Handle processes one line of input.
	Handle(s *Session, line string)
	// Hungup is called when the connection drops without a quit.
	Hungup(s *Session)
}

// Session is one client connection and its stack of handlers. Only the top
// handler receives input.
type Session struct {
	id   uuid.UUID
	conn io.ReadWriteCloser

	mu     sync.Mutex
	stack  []Handler
	closed bool

	writeMu sync.Mutex
}

func New(conn io.ReadWriteCloser) *Session {
	return &Session{
		id:   uuid.New(),
		conn: conn,
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Top returns the active handler, or nil when the stack is empty.
func (s *Session) Top() Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.top()
}

func (s *Session) top() Handler {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// Depth is the number of handlers on the stack.
func (s *Session) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stack)
}

// Push makes h the active handler. The previous top is left and stays on the
// stack beneath h.
func (s *Session) Push(h Handler) {
	if prev := s.Top(); prev != nil {
		prev.Leave(s)
	}
	s.mu.Lock()
	s.stack = append(s.stack, h)
	s.mu.Unlock()
	h.Enter(s)
}

// Pop removes the active handler and re-enters the one beneath it.
func (s *Session) Pop() {
	top := s.Top()
	if top == nil {
		return
	}
	top.Leave(s)

	s.mu.Lock()
	s.stack = s.stack[:len(s.stack)-1]
	next := s.top()
	s.mu.Unlock()

	if next != nil {
		next.Enter(s)
	}
}

// Switch replaces the active handler with h.
func (s *Session) Switch(h Handler) {
	if top := s.Top(); top != nil {
		top.Leave(s)
		s.mu.Lock()
		s.stack = s.stack[:len(s.stack)-1]
		s.mu.Unlock()
	}
	s.mu.Lock()
	s.stack = append(s.stack, h)
	s.mu.Unlock()
	h.Enter(s)
}

// Clear leaves the active handler and empties the stack. Handlers beneath the
// top are discarded without being entered again.
func (s *Session) Clear() {
	if top := s.Top(); top != nil {
		top.Leave(s)
	}
	s.mu.Lock()
	s.stack = nil
	s.mu.Unlock()
}

// Handle passes a line of input to the active handler.
func (s *Session) Handle(line string) {
	if top := s.Top(); top != nil {
		top.Handle(s, line)
	}
}

// Hangup tells the active handler the connection dropped, then closes the
// session and clears the stack.
func (s *Session) Hangup() {
	if top := s.Top(); top != nil {
		top.Hungup(s)
	}
	if err := s.Close(); err != nil {
		slog.Debug("closing hung up session", "session", s.id, "error", err)
	}
	s.Clear()
}

// Close marks the session closed and shuts the connection. The stack is torn
// down by the read loop once it notices.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.conn.Close()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Send translates a markup message and writes it followed by a line break.
func (s *Session) Send(msg string) error {
	return s.Write(markup.Translate(msg + "<newline>"))
}

// Write sends raw text, such as a prompt that should not end the line.
func (s *Session) Write(text string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := io.WriteString(s.conn, text)
	return err
}

// Prompt sends markup without a trailing line break.
func (s *Session) Prompt(msg string) error {
	return s.Write(markup.Translate(msg))
}

// Run pushes first and feeds the connection's input to the stack until the
// connection ends, the session is closed or ctx is done.
func (s *Session) Run(ctx context.Context, first Handler) error {
	s.Push(first)

	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.conn)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			s.Close()
			s.Clear()
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				if s.Closed() {
					s.Clear()
					return nil
				}
				s.Hangup()
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}

			s.Handle(line)
			if s.Closed() {
				s.Clear()
				return nil
			}
			if s.Depth() == 0 {
				slog.WarnContext(ctx, "session has no handlers", "session", s.id)
				s.Close()
				return nil
			}
		}
	}
}
