package transport

import (
	"context"
	"errors"
)

var (
	ErrNotConnected     = errors.New("transport not connected")
	ErrAlreadyConnected = errors.New("transport already connected")
)

// Frame is one inbound message unit delivered to a subscription handler.
type Frame struct {
	Destination string
	Body        []byte
}

// Handler consumes inbound frames for one destination.
type Handler func(Frame)

// Unsubscriber tears down a live broker subscription.
type Unsubscriber func() error

// Transport is the broker-facing surface the session engine drives. The
// production implementation speaks STOMP over a websocket; tests substitute
// an instrumented fake.
type Transport interface {
	// Connect performs a single connection attempt (dial + handshake).
	// On success the returned channel reports the session's eventual death:
	// it receives at most one error and is then closed. Reconnecting is the
	// caller's policy, not the transport's.
	Connect(ctx context.Context) (<-chan error, error)

	// Subscribe registers a broker subscription. Frames for the destination
	// are delivered to h in the order the broker sends them.
	Subscribe(destination string, h Handler) (Unsubscriber, error)

	// Send publishes a JSON body to the destination.
	Send(destination string, body []byte) error

	// Disconnect tears the session down. Safe to call when not connected.
	Disconnect() error
}
