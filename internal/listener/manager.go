package listener

import (
	"context"
	"io"
	"log/slog"
)

// SessionRunner serves one client connection until it ends.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriteCloser) error
}

type ConnectionManager struct {
	runner SessionRunner
}

func NewConnectionManager(r SessionRunner) *ConnectionManager {
	return &ConnectionManager{
		runner: r,
	}
}

// AcceptConnection runs a session over conn with client line endings
// normalized.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriteCloser) {
	if err := m.runner.RunSession(ctx, newLineConn(conn)); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}
