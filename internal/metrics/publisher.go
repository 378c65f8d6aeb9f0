package metrics

import "github.com/pixil98/go-simplemud/internal/game"

// Publisher counts the deliveries next refuses. Binding and flushing are
// passed through when next supports them.
type Publisher struct {
	next    game.Publisher
	metrics *Metrics
}

func (m *Metrics) Publisher(next game.Publisher) *Publisher {
	return &Publisher{next: next, metrics: m}
}

func (p *Publisher) Publish(player *game.Player, msg string) error {
	err := p.next.Publish(player, msg)
	if err != nil {
		p.metrics.deliveryFailures.Inc()
	}
	return err
}

func (p *Publisher) Bind(player *game.Player) error {
	if b, ok := p.next.(game.Binder); ok {
		return b.Bind(player)
	}
	return nil
}

func (p *Publisher) Unbind(player *game.Player) {
	if b, ok := p.next.(game.Binder); ok {
		b.Unbind(player)
	}
}

func (p *Publisher) Flush(player *game.Player) error {
	if f, ok := p.next.(game.Flusher); ok {
		return f.Flush(player)
	}
	return nil
}
