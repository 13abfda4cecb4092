// Package brokertest runs a real STOMP broker inside the test process,
// served over a websocket endpoint the way the production broker is. It
// exists so transport and session integration tests exercise the actual
// wire path instead of a hand-rolled fake.
package brokertest

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	stompserver "github.com/go-stomp/stomp/v3/server"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Test-only broker, any origin is fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Broker is an in-process STOMP-over-WebSocket broker.
type Broker struct {
	httpSrv *httptest.Server
	ln      *wsListener

	mu    sync.Mutex
	conns []net.Conn
}

// Start brings up the broker and registers its shutdown with t.
func Start(t testing.TB) *Broker {
	t.Helper()

	gin.SetMode(gin.TestMode)
	ln := newWSListener()
	b := &Broker{ln: ln}

	engine := gin.New()
	engine.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			t.Logf("brokertest: upgrade failed: %v", err)
			return
		}
		sc := newServerConn(conn)
		b.track(sc)
		ln.deliver(sc)
	})

	b.httpSrv = httptest.NewServer(engine)

	go func() {
		// Serve exits once the listener closes; any other error means a
		// test is about to fail for a visible reason anyway.
		_ = stompserver.Serve(ln)
	}()

	t.Cleanup(b.Close)
	return b
}

func (b *Broker) track(c net.Conn) {
	b.mu.Lock()
	b.conns = append(b.conns, c)
	b.mu.Unlock()
}

// URL returns the websocket endpoint clients should dial.
func (b *Broker) URL() string {
	return strings.Replace(b.httpSrv.URL, "http://", "ws://", 1) + "/ws"
}

// Close stops the broker and its HTTP front. Connections already handed to
// the STOMP server are closed too, so clients observe the broker's death.
func (b *Broker) Close() {
	b.ln.Close()
	b.mu.Lock()
	conns := b.conns
	b.conns = nil
	b.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
	b.httpSrv.Close()
}
