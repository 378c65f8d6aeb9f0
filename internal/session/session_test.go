package session

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-simplemud/internal/markup"
	"github.com/pixil98/go-testutil"
)

type pipeConn struct {
	in  *io.PipeReader
	inW *io.PipeWriter

	mu     sync.Mutex
	out    bytes.Buffer
	closed bool
}

func newPipeConn() *pipeConn {
	r, w := io.Pipe()
	return &pipeConn{in: r, inW: w}
}

func (c *pipeConn) Read(p []byte) (int, error) { return c.in.Read(p) }

func (c *pipeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

func (c *pipeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return c.in.CloseWithError(io.EOF)
}

func (c *pipeConn) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

// recorder logs handler calls as "<handler> <call>".
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(h, call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, h+" "+call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type recordingHandler struct {
	name   string
	rec    *recorder
	onLine func(s *Session, line string)
}

func (h *recordingHandler) Enter(*Session)  { h.rec.add(h.name, "enter") }
func (h *recordingHandler) Leave(*Session)  { h.rec.add(h.name, "leave") }
func (h *recordingHandler) Hungup(*Session) { h.rec.add(h.name, "hungup") }
func (h *recordingHandler) Handle(s *Session, line string) {
	h.rec.add(h.name, "handle "+line)
	if h.onLine != nil {
		h.onLine(s, line)
	}
}

func TestSession_Stack(t *testing.T) {
	tests := map[string]struct {
		ops       func(s *Session, a, b *recordingHandler)
		expEvents []string
		expDepth  int
	}{
		"push": {
			ops: func(s *Session, a, b *recordingHandler) {
				s.Push(a)
				s.Push(b)
			},
			expEvents: []string{"a enter", "a leave", "b enter"},
			expDepth:  2,
		},
		"pop re-enters beneath": {
			ops: func(s *Session, a, b *recordingHandler) {
				s.Push(a)
				s.Push(b)
				s.Pop()
			},
			expEvents: []string{"a enter", "a leave", "b enter", "b leave", "a enter"},
			expDepth:  1,
		},
		"switch replaces": {
			ops: func(s *Session, a, b *recordingHandler) {
				s.Push(a)
				s.Switch(b)
			},
			expEvents: []string{"a enter", "a leave", "b enter"},
			expDepth:  1,
		},
		"clear leaves top only": {
			ops: func(s *Session, a, b *recordingHandler) {
				s.Push(a)
				s.Push(b)
				s.Clear()
			},
			expEvents: []string{"a enter", "a leave", "b enter", "b leave"},
			expDepth:  0,
		},
		"hangup": {
			ops: func(s *Session, a, b *recordingHandler) {
				s.Push(a)
				s.Hangup()
			},
			expEvents: []string{"a enter", "a hungup", "a leave"},
			expDepth:  0,
		},
		"pop empty": {
			ops: func(s *Session, a, b *recordingHandler) {
				s.Pop()
				s.Handle("ignored")
			},
			expDepth: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			a := &recordingHandler{name: "a", rec: rec}
			b := &recordingHandler{name: "b", rec: rec}
			s := New(newPipeConn())

			tt.ops(s, a, b)

			testutil.AssertEqual(t, "events", rec.list(), tt.expEvents)
			testutil.AssertEqual(t, "depth", s.Depth(), tt.expDepth)
		})
	}
}

func TestSession_Send(t *testing.T) {
	conn := newPipeConn()
	s := New(conn)

	if err := s.Send("<red>hi</red>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Write("> "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := markup.Code("red") + "hi" + markup.Code("reset") + markup.Newline + "> "
	testutil.AssertEqual(t, "output", conn.output(), exp)
}

func TestSession_Close(t *testing.T) {
	conn := newPipeConn()
	s := New(conn)

	testutil.AssertEqual(t, "first close failed", s.Close() != nil, false)
	testutil.AssertEqual(t, "second close failed", s.Close() != nil, false)
	testutil.AssertEqual(t, "closed", s.Closed(), true)
	testutil.AssertEqual(t, "conn closed", conn.closed, true)
}

func runSession(t *testing.T, s *Session, h Handler) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- s.Run(context.Background(), h)
	}()
	return done
}

func waitRun(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish")
	}
}

func TestSession_Run_Hangup(t *testing.T) {
	conn := newPipeConn()
	rec := &recorder{}
	s := New(conn)

	done := runSession(t, s, &recordingHandler{name: "a", rec: rec})
	io.WriteString(conn.inW, "look\r\nsay hi\n")
	conn.inW.Close()
	waitRun(t, done)

	testutil.AssertEqual(t, "events", rec.list(), []string{
		"a enter",
		"a handle look",
		"a handle say hi",
		"a hungup",
		"a leave",
	})
}

func TestSession_Run_Quit(t *testing.T) {
	conn := newPipeConn()
	rec := &recorder{}
	s := New(conn)

	h := &recordingHandler{name: "a", rec: rec, onLine: func(s *Session, line string) {
		if strings.EqualFold(line, "quit") {
			s.Close()
		}
	}}

	done := runSession(t, s, h)
	io.WriteString(conn.inW, "quit\n")
	waitRun(t, done)

	testutil.AssertEqual(t, "events", rec.list(), []string{
		"a enter",
		"a handle quit",
		"a leave",
	})
	testutil.AssertEqual(t, "depth", s.Depth(), 0)
}

func TestSession_Run_ClosedElsewhere(t *testing.T) {
	conn := newPipeConn()
	rec := &recorder{}
	s := New(conn)

	done := runSession(t, s, &recordingHandler{name: "a", rec: rec})
	io.WriteString(conn.inW, "look\n")
	s.Close()
	waitRun(t, done)

	events := rec.list()
	testutil.AssertEqual(t, "last event", events[len(events)-1], "a leave")
	for _, e := range events {
		if e == "a hungup" {
			t.Errorf("closed session reported a hangup")
		}
	}
}
