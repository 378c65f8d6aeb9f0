package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

const sshServerVersion = "SSH-2.0-SimpleMUD"

// SshListener serves the game over SSH. Accounts are handled by the game's own
// login, so the transport accepts any client and each connection gets exactly
// one game session.
type SshListener struct {
	port    uint16
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		port:    port,
		cm:      cm,
		hostKey: hostKey,
	}
}

func (l *SshListener) serverConfig() *ssh.ServerConfig {
	config := &ssh.ServerConfig{
		NoClientAuth:  true,
		ServerVersion: sshServerVersion,
	}
	config.AddHostKey(l.hostKey)
	return config
}

func (l *SshListener) Start(ctx context.Context) error {
	config := l.serverConfig()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	slog.InfoContext(ctx, "listening for ssh", "port", l.port)

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		cancelConns()
		wg.Wait()
	}()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("ssh listener on port %d closed: %w", l.port, err)
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.serveConn(connCtx, conn, config)
		}()
	}
}

// serveConn runs the handshake and then one game session on the first shell
// channel. Further session channels are refused.
func (l *SshListener) serveConn(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.WarnContext(ctx, "ssh handshake", "remote", remote, "error", err)
		return
	}
	defer sshConn.Close()
	slog.InfoContext(ctx, "ssh connection established", "remote", remote, "client", string(sshConn.ClientVersion()))

	// Closing the connection ends the channel loop below.
	stop := context.AfterFunc(ctx, func() { sshConn.Close() })
	defer stop()

	go ssh.DiscardRequests(reqs)

	served := false
	for newChan := range chans {
		switch {
		case newChan.ChannelType() != "session":
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		case served:
			newChan.Reject(ssh.Prohibited, "one game session per connection")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.WarnContext(ctx, "accepting ssh channel", "remote", remote, "error", err)
			continue
		}

		if !awaitShell(ctx, requests) {
			ch.Close()
			continue
		}

		served = true
		l.cm.AcceptConnection(ctx, ch)
		sshConn.Close()
	}
}

// awaitShell answers channel requests until the client asks for a shell.
// Clients do not send input before the shell reply. PTYs are refused so the
// client keeps local echo and line editing.
func awaitShell(ctx context.Context, requests <-chan *ssh.Request) bool {
	result := make(chan bool, 1)
	go func() {
		opened := false
		for req := range requests {
			ok := req.Type == "shell" && !opened
			if req.WantReply {
				req.Reply(ok, nil)
			}
			if ok {
				opened = true
				result <- true
			}
		}
		if !opened {
			result <- false
		}
	}()

	select {
	case ok := <-result:
		return ok
	case <-ctx.Done():
		return false
	}
}
