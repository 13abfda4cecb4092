package transport

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsConn adapts a *websocket.Conn to net.Conn so the STOMP codec can treat
// the socket as a byte stream. STOMP frames are carried in binary websocket
// messages; message boundaries are irrelevant to the codec, which parses by
// frame terminator.
type wsConn struct {
	ws     *websocket.Conn
	reader io.Reader

	closeOnce sync.Once
	// onFail is invoked once with the first read/write error, letting the
	// owner observe the session's death without polling.
	onFail func(error)
}

func newWSConn(ws *websocket.Conn, onFail func(error)) *wsConn {
	if onFail == nil {
		onFail = func(error) {}
	}
	return &wsConn{ws: ws, onFail: onFail}
}

func (c *wsConn) fail(err error) error {
	c.closeOnce.Do(func() { c.onFail(err) })
	return err
}

func (c *wsConn) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			_, r, err := c.ws.NextReader()
			if err != nil {
				return 0, c.fail(err)
			}
			c.reader = r
		}
		n, err := c.reader.Read(p)
		if err == io.EOF {
			// Current websocket message exhausted, move to the next one.
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil {
			return n, c.fail(err)
		}
		return n, nil
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	w, err := c.ws.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return 0, c.fail(err)
	}
	n, err := w.Write(p)
	if err != nil {
		return n, c.fail(err)
	}
	if err := w.Close(); err != nil {
		return n, c.fail(err)
	}
	return n, nil
}

func (c *wsConn) Close() error {
	err := c.ws.Close()
	c.fail(net.ErrClosed)
	return err
}

func (c *wsConn) LocalAddr() net.Addr  { return c.ws.LocalAddr() }
func (c *wsConn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

func (c *wsConn) SetDeadline(t time.Time) error {
	if err := c.ws.SetReadDeadline(t); err != nil {
		return err
	}
	return c.ws.SetWriteDeadline(t)
}

func (c *wsConn) SetReadDeadline(t time.Time) error  { return c.ws.SetReadDeadline(t) }
func (c *wsConn) SetWriteDeadline(t time.Time) error { return c.ws.SetWriteDeadline(t) }
