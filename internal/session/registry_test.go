package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"chat-client/internal/transport"
	"chat-client/pkg/logger"
)

func awaitResult(t *testing.T, f *SubscribeFuture) SubscribeResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, _ := f.Await(ctx)
	return res
}

func TestRegistryReplaceSemantics(t *testing.T) {
	fake := newFakeTransport()
	reg := NewRegistry(logger.Discard())

	noop := func(transport.Frame) {}

	first := awaitResult(t, reg.Subscribe(fake, "/topic/chatroom/1", noop))
	if first.Err != nil {
		t.Fatalf("first subscribe failed: %v", first.Err)
	}
	if first.Outcome != OutcomeInsert {
		t.Errorf("first subscribe outcome = %s, want insert", first.Outcome)
	}

	second := awaitResult(t, reg.Subscribe(fake, "/topic/chatroom/1", noop))
	if second.Err != nil {
		t.Fatalf("second subscribe failed: %v", second.Err)
	}
	if second.Outcome != OutcomeReplace {
		t.Errorf("second subscribe outcome = %s, want replace", second.Outcome)
	}

	if reg.Len() != 1 {
		t.Errorf("expected exactly one live subscription, got %d", reg.Len())
	}

	// The prior handle must be gone before the new one is installed.
	want := []string{
		"subscribe:/topic/chatroom/1",
		"unsubscribe:/topic/chatroom/1",
		"subscribe:/topic/chatroom/1",
	}
	got := fake.opLog()
	if len(got) != len(want) {
		t.Fatalf("op log = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if second.Sub.ID == first.Sub.ID {
		t.Error("replacement must produce a new subscription handle")
	}
}

func TestRegistryQueuesWhileDisconnected(t *testing.T) {
	reg := NewRegistry(logger.Discard())

	// nil transport means not connected: the request must queue.
	f := reg.Subscribe(nil, "/topic/chatroom/7", func(transport.Frame) {})

	select {
	case <-f.Done():
		t.Fatal("future resolved before flush")
	default:
	}
	if reg.PendingLen() != 1 {
		t.Fatalf("pending = %d, want 1", reg.PendingLen())
	}
	if reg.Len() != 0 {
		t.Fatalf("live = %d, want 0", reg.Len())
	}
}

func TestRegistryFlushFIFO(t *testing.T) {
	fake := newFakeTransport()
	reg := NewRegistry(logger.Discard())
	noop := func(transport.Frame) {}

	fa := reg.Subscribe(nil, "/topic/chatroom/1", noop)
	fb := reg.Subscribe(nil, "/topic/chatroom/2", noop)
	fc := reg.Subscribe(nil, "/topic/chatroom/3", noop)

	reg.Flush(fake)

	for _, f := range []*SubscribeFuture{fa, fb, fc} {
		if res := awaitResult(t, f); res.Err != nil {
			t.Fatalf("flush rejected a queued subscribe: %v", res.Err)
		}
	}

	want := []string{
		"subscribe:/topic/chatroom/1",
		"subscribe:/topic/chatroom/2",
		"subscribe:/topic/chatroom/3",
	}
	got := fake.opLog()
	if len(got) != len(want) {
		t.Fatalf("op log = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("flush order[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if reg.PendingLen() != 0 {
		t.Errorf("queue not emptied after flush: %d left", reg.PendingLen())
	}
}

func TestRegistryFlushIsolatesFailures(t *testing.T) {
	fake := newFakeTransport()
	subErr := errors.New("broker rejected subscription")
	fake.subErr["/topic/chatroom/2"] = subErr

	reg := NewRegistry(logger.Discard())
	noop := func(transport.Frame) {}

	fa := reg.Subscribe(nil, "/topic/chatroom/1", noop)
	fb := reg.Subscribe(nil, "/topic/chatroom/2", noop)
	fc := reg.Subscribe(nil, "/topic/chatroom/3", noop)

	reg.Flush(fake)

	if res := awaitResult(t, fa); res.Err != nil {
		t.Errorf("first item should succeed, got %v", res.Err)
	}
	if res := awaitResult(t, fb); !errors.Is(res.Err, subErr) {
		t.Errorf("second item error = %v, want %v", res.Err, subErr)
	}
	if res := awaitResult(t, fc); res.Err != nil {
		t.Errorf("failure must not block later items, got %v", res.Err)
	}
	if reg.PendingLen() != 0 {
		t.Errorf("queue must be emptied unconditionally, %d left", reg.PendingLen())
	}
	if reg.Len() != 2 {
		t.Errorf("live subscriptions = %d, want 2", reg.Len())
	}
}

func TestRegistryUnsubscribe(t *testing.T) {
	fake := newFakeTransport()
	reg := NewRegistry(logger.Discard())

	res := awaitResult(t, reg.Subscribe(fake, "/topic/chatroom/1", func(transport.Frame) {}))
	if sub, ok := reg.Get("/topic/chatroom/1"); !ok || sub.ID != res.Sub.ID {
		t.Fatalf("Get after subscribe = %v, %v", sub, ok)
	}

	reg.Unsubscribe("/topic/chatroom/1")
	if reg.Len() != 0 {
		t.Errorf("subscription still live after unsubscribe")
	}
	if _, ok := reg.Get("/topic/chatroom/1"); ok {
		t.Error("Get still resolves after unsubscribe")
	}

	// Unknown destination is a no-op.
	reg.Unsubscribe("/topic/chatroom/404")
}

func TestRegistryClearRejectsPending(t *testing.T) {
	fake := newFakeTransport()
	reg := NewRegistry(logger.Discard())

	awaitResult(t, reg.Subscribe(fake, "/topic/chatroom/1", func(transport.Frame) {}))
	queued := reg.Subscribe(nil, "/topic/chatroom/2", func(transport.Frame) {})

	reg.Clear()

	if res := awaitResult(t, queued); !errors.Is(res.Err, ErrSessionClosed) {
		t.Errorf("queued future error = %v, want ErrSessionClosed", res.Err)
	}
	if reg.Len() != 0 || reg.PendingLen() != 0 {
		t.Errorf("clear left state behind: live=%d pending=%d", reg.Len(), reg.PendingLen())
	}
}
