package listener

import "io"

// lineConn normalizes the line endings clients send. Telnet sends \r\n and
// SSH without a PTY may send a bare \r; both arrive as \n. Output is already
// terminated with \r\n by markup translation and passes through unchanged.
type lineConn struct {
	rwc    io.ReadWriteCloser
	lastCR bool
}

func newLineConn(rwc io.ReadWriteCloser) io.ReadWriteCloser {
	return &lineConn{rwc: rwc}
}

// Read rewrites \r\n and \r to \n, including a \r\n split across reads.
func (c *lineConn) Read(p []byte) (int, error) {
	for {
		n, err := c.rwc.Read(p)
		out := 0
		for _, b := range p[:n] {
			switch {
			case b == '\n' && c.lastCR:
				c.lastCR = false
				continue
			case b == '\r':
				c.lastCR = true
				b = '\n'
			default:
				c.lastCR = false
			}
			p[out] = b
			out++
		}
		// A read holding only the \n of a split \r\n yields nothing.
		if out == 0 && n > 0 && err == nil {
			continue
		}
		return out, err
	}
}

func (c *lineConn) Write(p []byte) (int, error) {
	return c.rwc.Write(p)
}

func (c *lineConn) Close() error {
	return c.rwc.Close()
}
