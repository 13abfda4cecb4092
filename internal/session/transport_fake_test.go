package session

import (
	"context"
	"sync"
	"testing"

	"chat-client/internal/transport"
)

// fakeTransport records every transport operation in order so tests can
// assert on subscribe/unsubscribe sequencing and outbound payloads.
type fakeTransport struct {
	mu         sync.Mutex
	connectErr error
	connects   int
	ops        []string
	handlers   map[string]transport.Handler
	sends      map[string][][]byte
	subErr     map[string]error
	done       chan error

	// connectEntered and connectHold let a test freeze Connect mid-flight:
	// the first signals the attempt started, the second releases it.
	connectEntered chan struct{}
	connectHold    chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		handlers: make(map[string]transport.Handler),
		sends:    make(map[string][][]byte),
		subErr:   make(map[string]error),
	}
}

func (f *fakeTransport) Connect(ctx context.Context) (<-chan error, error) {
	f.mu.Lock()
	entered, hold := f.connectEntered, f.connectHold
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if hold != nil {
		<-hold
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	f.connects++
	f.ops = append(f.ops, "connect")
	f.done = make(chan error, 1)
	return f.done, nil
}

func (f *fakeTransport) Subscribe(destination string, h transport.Handler) (transport.Unsubscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.subErr[destination]; err != nil {
		f.ops = append(f.ops, "subscribe-failed:"+destination)
		return nil, err
	}
	f.ops = append(f.ops, "subscribe:"+destination)
	f.handlers[destination] = h
	return func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.ops = append(f.ops, "unsubscribe:"+destination)
		delete(f.handlers, destination)
		return nil
	}, nil
}

func (f *fakeTransport) Send(destination string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "send:"+destination)
	f.sends[destination] = append(f.sends[destination], body)
	return nil
}

func (f *fakeTransport) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "disconnect")
	return nil
}

// deliver pushes a frame at the handler registered for the destination.
func (f *fakeTransport) deliver(t *testing.T, destination string, body []byte) {
	t.Helper()
	f.mu.Lock()
	h := f.handlers[destination]
	f.mu.Unlock()
	if h == nil {
		t.Fatalf("no handler registered for %s", destination)
	}
	h(transport.Frame{Destination: destination, Body: body})
}

func (f *fakeTransport) opLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}

func (f *fakeTransport) sentTo(destination string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sends[destination]))
	copy(out, f.sends[destination])
	return out
}

func (f *fakeTransport) dropConnection(err error) {
	f.mu.Lock()
	done := f.done
	f.done = nil
	f.mu.Unlock()
	if done != nil {
		done <- err
		close(done)
	}
}
