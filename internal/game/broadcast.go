package game

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-simplemud/internal/markup"
	"github.com/pixil98/go-simplemud/internal/storage"
)

// Send delivers msg to p. A failed delivery is logged and otherwise ignored.
func (w *World) Send(p *Player, msg string) {
	if err := w.pub.Publish(p, msg); err != nil {
		slog.Warn("delivering message", "player", p.ID(), "message", markup.Strip(msg), "error", err)
	}
}

// Flush waits for p's published messages to reach its session, so anything
// written to the session directly afterwards follows them.
func (w *World) Flush(p *Player) error {
	if f, ok := w.pub.(Flusher); ok {
		return f.Flush(p)
	}
	return nil
}

// SendGlobal delivers to every logged-in player.
func (w *World) SendGlobal(msg string) {
	for _, p := range w.Players.All() {
		if p.LoggedIn() {
			w.Send(p, msg)
		}
	}
}

// SendGame delivers to every active player.
func (w *World) SendGame(msg string) {
	for _, p := range w.Players.All() {
		if p.Active() {
			w.Send(p, msg)
		}
	}
}

// SendRoom delivers to every occupant of room.
func (w *World) SendRoom(room *Room, msg string) {
	w.sendRoomExcept(room, "", msg)
}

func (w *World) sendRoomExcept(room *Room, skip storage.Identifier, msg string) {
	for _, id := range room.Occupants() {
		if id == skip {
			continue
		}
		if p, ok := w.Players.Get(id); ok {
			w.Send(p, msg)
		}
	}
}

// Whisper sends msg privately to the active player matching name. Unknown and
// inactive players are reported the same way.
func (w *World) Whisper(from *Player, name, msg string) error {
	to, ok := w.Players.Find(name)
	if !ok || !to.Active() {
		return rejection("Error, cannot find user")
	}
	w.Send(to, fmt.Sprintf("<yellow>%s whispers to you: </yellow>%s", from.Name(), msg))
	return nil
}

// LogoutMessage tells everyone in the game about a departure.
func (w *World) LogoutMessage(text string) {
	w.SendGame("<red><bold>" + text + "</bold></red>")
}

// Announce is a system-wide notice to every logged-in player.
func (w *World) Announce(text string) {
	slog.Info("announcement", "text", markup.Strip(text))
	w.SendGlobal("<cyan><bold>" + text + "</bold></cyan>")
}
