package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/gorilla/websocket"

	"chat-client/pkg/logger"
)

// STOMP is the production Transport: a STOMP session carried over a
// websocket. One STOMP value handles one connection at a time; after the
// session dies it can be connected again.
type STOMP struct {
	url       string
	token     string
	heartbeat time.Duration
	log       *logger.Logger

	mu   sync.Mutex
	conn *stomp.Conn
	netc *wsConn
}

// NewSTOMP builds a transport for the given broker endpoint. The token is
// carried both on the websocket upgrade request and in the CONNECT frame.
func NewSTOMP(url, token string, heartbeat time.Duration, log *logger.Logger) *STOMP {
	return &STOMP{
		url:       url,
		token:     token,
		heartbeat: heartbeat,
		log:       log.With("component", "transport"),
	}
}

func (s *STOMP) Connect(ctx context.Context) (<-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil, ErrAlreadyConnected
	}

	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	nc := newWSConn(ws, func(err error) {
		done <- err
		close(done)
	})

	opts := []func(*stomp.Conn) error{
		stomp.ConnOpt.HeartBeat(s.heartbeat, s.heartbeat),
	}
	if s.token != "" {
		opts = append(opts, stomp.ConnOpt.Header("Authorization", "Bearer "+s.token))
	}

	conn, err := stomp.Connect(nc, opts...)
	if err != nil {
		_ = ws.Close()
		return nil, err
	}

	s.conn = conn
	s.netc = nc
	s.log.Info("stomp session established", "url", s.url)
	return done, nil
}

func (s *STOMP) Subscribe(destination string, h Handler) (Unsubscriber, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}

	sub, err := conn.Subscribe(destination, stomp.AckAuto)
	if err != nil {
		return nil, err
	}

	go func() {
		for msg := range sub.C {
			if msg == nil {
				return
			}
			if msg.Err != nil {
				s.log.Warn("broker error frame", "destination", destination, "error", msg.Err)
				continue
			}
			h(Frame{Destination: destination, Body: msg.Body})
		}
	}()

	// Subscription.Unsubscribe is variadic; adapt it to the plain shape.
	return func() error { return sub.Unsubscribe() }, nil
}

func (s *STOMP) Send(destination string, body []byte) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.Send(destination, "application/json", body)
}

func (s *STOMP) Disconnect() error {
	s.mu.Lock()
	conn, nc := s.conn, s.netc
	s.conn, s.netc = nil, nil
	s.mu.Unlock()
	if conn == nil {
		return nil
	}

	// Best effort: the broker may already be gone, in which case the socket
	// close below is what actually matters.
	if err := conn.Disconnect(); err != nil {
		s.log.Warn("graceful stomp disconnect failed", "error", err)
	}
	// A graceful disconnect already closed the socket underneath us, so the
	// second close reporting a closed connection is the expected outcome.
	if err := nc.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.log.Debug("socket close after disconnect", "error", err)
	}
	return nil
}
