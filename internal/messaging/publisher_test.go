package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-testutil"
)

type chanConn struct {
	msgs chan string
}

func (c *chanConn) Send(msg string) error {
	c.msgs <- msg
	return nil
}

func (c *chanConn) Close() error { return nil }

// slowConn records what it is sent, taking its time over each message.
type slowConn struct {
	delay   time.Duration
	release chan struct{}

	mu   sync.Mutex
	sent []string
}

func (c *slowConn) Send(msg string) error {
	if c.release != nil {
		<-c.release
	}
	time.Sleep(c.delay)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *slowConn) Close() error { return nil }

func (c *slowConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func startServer(t *testing.T) *NatsServer {
	t.Helper()
	s, err := NewNatsServer(WithPort(-1), WithStartTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}

func receive(t *testing.T, c *chanConn) string {
	t.Helper()
	select {
	case msg := <-c.msgs:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
		return ""
	}
}

func TestNatsPublisher_Delivers(t *testing.T) {
	pub := NewNatsPublisher(startServer(t))
	conn := &chanConn{msgs: make(chan string, 4)}
	p := game.NewPlayer("Alice")
	p.SetConn(conn)

	if err := pub.Bind(p); err != nil {
		t.Fatalf("binding: %v", err)
	}
	for _, msg := range []string{"first", "second"} {
		if err := pub.Publish(p, msg); err != nil {
			t.Fatalf("publishing: %v", err)
		}
	}

	testutil.AssertEqual(t, "first", receive(t, conn), "first")
	testutil.AssertEqual(t, "second", receive(t, conn), "second")
}

func TestNatsPublisher_Rebind(t *testing.T) {
	pub := NewNatsPublisher(startServer(t))
	conn := &chanConn{msgs: make(chan string, 4)}
	p := game.NewPlayer("Alice")
	p.SetConn(conn)

	for range 2 {
		if err := pub.Bind(p); err != nil {
			t.Fatalf("binding: %v", err)
		}
	}
	if err := pub.Publish(p, "once"); err != nil {
		t.Fatalf("publishing: %v", err)
	}

	testutil.AssertEqual(t, "message", receive(t, conn), "once")
	select {
	case extra := <-conn.msgs:
		t.Errorf("duplicate delivery %q", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNatsPublisher_Unbind(t *testing.T) {
	pub := NewNatsPublisher(startServer(t))
	conn := &chanConn{msgs: make(chan string, 4)}
	p := game.NewPlayer("Alice")
	p.SetConn(conn)

	if err := pub.Bind(p); err != nil {
		t.Fatalf("binding: %v", err)
	}
	pub.Unbind(p)
	if err := pub.Publish(p, "lost"); err != nil {
		t.Fatalf("publishing: %v", err)
	}

	select {
	case msg := <-conn.msgs:
		t.Errorf("unbound player got %q", msg)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNatsPublisher_FlushOrdersPrompt(t *testing.T) {
	pub := NewNatsPublisher(startServer(t))
	conn := &slowConn{delay: 20 * time.Millisecond}
	p := game.NewPlayer("Alice")
	p.SetConn(conn)

	if err := pub.Bind(p); err != nil {
		t.Fatalf("binding: %v", err)
	}
	for _, msg := range []string{"room", "exits", "occupants"} {
		if err := pub.Publish(p, msg); err != nil {
			t.Fatalf("publishing: %v", err)
		}
	}
	if err := pub.Flush(p); err != nil {
		t.Fatalf("flushing: %v", err)
	}
	if err := conn.Send("[10/10]"); err != nil {
		t.Fatalf("prompting: %v", err)
	}

	testutil.AssertEqual(t, "order", conn.messages(), []string{"room", "exits", "occupants", "[10/10]"})
}

func TestNatsPublisher_FlushTimeout(t *testing.T) {
	pub := NewNatsPublisher(startServer(t))
	pub.flushTimeout = 50 * time.Millisecond
	conn := &slowConn{release: make(chan struct{})}
	defer close(conn.release)
	p := game.NewPlayer("Alice")
	p.SetConn(conn)

	if err := pub.Bind(p); err != nil {
		t.Fatalf("binding: %v", err)
	}
	if err := pub.Publish(p, "stuck"); err != nil {
		t.Fatalf("publishing: %v", err)
	}

	err := pub.Flush(p)
	testutil.AssertEqual(t, "deadline", errors.Is(err, context.DeadlineExceeded), true)
}

func TestNatsPublisher_FlushUnbound(t *testing.T) {
	pub := NewNatsPublisher(startServer(t))
	p := game.NewPlayer("Alice")

	testutil.AssertEqual(t, "failed", pub.Flush(p) != nil, false)
}
