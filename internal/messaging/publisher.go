package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-simplemud/internal/game"
	"github.com/pixil98/go-simplemud/internal/storage"
)

const defaultFlushTimeout = 2 * time.Second

// NatsPublisher routes each player's messages through their own subject,
// player-<id>. A bound player's subscription writes to whatever session the
// player has when the message arrives.
type NatsPublisher struct {
	server       *NatsServer
	flushTimeout time.Duration

	mu   sync.Mutex
	subs map[storage.Identifier]*binding
}

func NewNatsPublisher(server *NatsServer) *NatsPublisher {
	return &NatsPublisher{
		server:       server,
		flushTimeout: defaultFlushTimeout,
		subs:         map[storage.Identifier]*binding{},
	}
}

func subject(id storage.Identifier) string {
	return fmt.Sprintf("player-%s", id)
}

func (p *NatsPublisher) bindingOf(id storage.Identifier) *binding {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subs[id]
}

func (p *NatsPublisher) Publish(player *game.Player, msg string) error {
	b := p.bindingOf(player.ID())
	if b != nil {
		b.published()
	}
	err := p.server.Publish(subject(player.ID()), []byte(msg))
	if err != nil && b != nil {
		b.dropped()
	}
	return err
}

// Flush waits until the subscription has handed over every message published
// to player before the call. An unbound player has nothing in flight.
func (p *NatsPublisher) Flush(player *game.Player) error {
	b := p.bindingOf(player.ID())
	if b == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.flushTimeout)
	defer cancel()
	if err := b.wait(ctx); err != nil {
		return fmt.Errorf("flushing %s: %w", subject(player.ID()), err)
	}
	return nil
}

// Bind subscribes player's subject, replacing an earlier subscription.
func (p *NatsPublisher) Bind(player *game.Player) error {
	b := newBinding()
	unsub, err := p.server.Subscribe(subject(player.ID()), func(data []byte) {
		defer b.delivered()
		conn := player.Conn()
		if conn == nil {
			return
		}
		if err := conn.Send(string(data)); err != nil {
			slog.Warn("delivering message", "player", player.ID(), "error", err)
		}
	})
	if err != nil {
		return err
	}
	b.unsub = unsub

	p.mu.Lock()
	prev := p.subs[player.ID()]
	p.subs[player.ID()] = b
	p.mu.Unlock()

	if prev != nil {
		prev.unsub()
	}
	return nil
}

func (p *NatsPublisher) Unbind(player *game.Player) {
	p.mu.Lock()
	b := p.subs[player.ID()]
	delete(p.subs, player.ID())
	p.mu.Unlock()

	if b != nil {
		b.unsub()
	}
}

// binding is one player's subscription and the count of messages it still
// owes the session. NATS delivers a subscription's messages in order, so the
// count reaching an earlier total means everything up to it has been sent.
type binding struct {
	unsub func()

	mu       sync.Mutex
	pending  int
	sent     uint64
	progress chan struct{}
}

func newBinding() *binding {
	return &binding{progress: make(chan struct{})}
}

func (b *binding) published() {
	b.mu.Lock()
	b.pending++
	b.mu.Unlock()
}

func (b *binding) dropped() {
	b.mu.Lock()
	b.pending--
	b.mu.Unlock()
}

func (b *binding) delivered() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending > 0 {
		b.pending--
	}
	b.sent++
	close(b.progress)
	b.progress = make(chan struct{})
}

// wait blocks until the messages pending at the call have been delivered.
func (b *binding) wait(ctx context.Context) error {
	b.mu.Lock()
	target := b.sent + uint64(b.pending)
	b.mu.Unlock()

	for {
		b.mu.Lock()
		if b.sent >= target {
			b.mu.Unlock()
			return nil
		}
		progress := b.progress
		b.mu.Unlock()

		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
