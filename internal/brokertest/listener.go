package brokertest

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsListener is a net.Listener fed by websocket upgrades instead of a TCP
// accept loop, bridging gin's HTTP surface into the STOMP server.
type wsListener struct {
	conns chan net.Conn
	done  chan struct{}
	once  sync.Once
}

func newWSListener() *wsListener {
	return &wsListener{
		conns: make(chan net.Conn, 8),
		done:  make(chan struct{}),
	}
}

func (l *wsListener) deliver(c net.Conn) {
	select {
	case l.conns <- c:
	case <-l.done:
		_ = c.Close()
	}
}

func (l *wsListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *wsListener) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

func (l *wsListener) Addr() net.Addr {
	return wsAddr{}
}

type wsAddr struct{}

func (wsAddr) Network() string { return "ws" }
func (wsAddr) String() string  { return "brokertest" }

// serverConn adapts the upgraded websocket to the byte stream the STOMP
// server expects. Mirror image of the client-side adapter.
type serverConn struct {
	ws     *websocket.Conn
	reader io.Reader
}

func newServerConn(ws *websocket.Conn) *serverConn {
	return &serverConn{ws: ws}
}

func (c *serverConn) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			_, r, err := c.ws.NextReader()
			if err != nil {
				return 0, err
			}
			c.reader = r
		}
		n, err := c.reader.Read(p)
		if err == io.EOF {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *serverConn) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *serverConn) Close() error { return c.ws.Close() }

func (c *serverConn) LocalAddr() net.Addr  { return c.ws.LocalAddr() }
func (c *serverConn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

func (c *serverConn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

func (c *serverConn) SetReadDeadline(t time.Time) error  { return c.ws.SetReadDeadline(t) }
func (c *serverConn) SetWriteDeadline(t time.Time) error { return c.ws.SetWriteDeadline(t) }
