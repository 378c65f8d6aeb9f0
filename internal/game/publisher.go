package game

import "errors"

var ErrNotConnected = errors.New("player has no session")

// Publisher delivers a markup message to one player's session.
type Publisher interface {
	Publish(p *Player, msg string) error
}

// Binder is implemented by publishers that route through a subscription
// which must exist while the player is connected.
type Binder interface {
	Bind(p *Player) error
	Unbind(p *Player)
}

// Flusher is implemented by publishers that deliver asynchronously. Flush
// returns once every message already published to p has reached p's session.
type Flusher interface {
	Flush(p *Player) error
}

// DirectPublisher writes straight to the player's session.
type DirectPublisher struct{}

func (DirectPublisher) Publish(p *Player, msg string) error {
	c := p.Conn()
	if c == nil {
		return ErrNotConnected
	}
	return c.Send(msg)
}
