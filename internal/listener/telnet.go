package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/iammegalith/telnet"
)

type TelnetListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewTelnetListener(port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		port: port,
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	sessions := newTelnetSessions(l.cm)
	svr := telnet.NewServer(fmt.Sprintf(":%d", l.port), sessions)

	// Stop accepting and end every session once ctx is done.
	stop := context.AfterFunc(ctx, func() {
		svr.Stop()
		sessions.closeAll()
	})
	defer stop()

	slog.InfoContext(ctx, "listening for telnet", "port", l.port)

	err := svr.ListenAndServe()
	if ctx.Err() != nil {
		return nil
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return fmt.Errorf("port %d is already in use (another server running?)", l.port)
	}
	if err != nil {
		return fmt.Errorf("serving telnet on port %d: %w", l.port, err)
	}
	return nil
}

// telnetSessions runs one game session per telnet connection. The sessions
// share a context that is canceled when the listener stops.
type telnetSessions struct {
	cm     *ConnectionManager
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	open   atomic.Int64
}

func newTelnetSessions(cm *ConnectionManager) *telnetSessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &telnetSessions{cm: cm, ctx: ctx, cancel: cancel}
}

func (h *telnetSessions) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()

	slog.DebugContext(h.ctx, "telnet connection opened", "open", h.open.Add(1))
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("closing telnet connection", "error", err)
		}
		slog.DebugContext(h.ctx, "telnet connection closed", "open", h.open.Add(-1))
	}()

	h.cm.AcceptConnection(h.ctx, conn)
}

func (h *telnetSessions) closeAll() {
	h.cancel()
	h.wg.Wait()
}
