package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"chat-client/internal/transport"
	"chat-client/pkg/logger"
)

var ErrSessionClosed = errors.New("session closed")

// SubscribeOutcome reports what installing a subscription did to the
// registry. Replace means a prior handle for the same destination was torn
// down first.
type SubscribeOutcome int

const (
	OutcomeInsert SubscribeOutcome = iota
	OutcomeReplace
)

func (o SubscribeOutcome) String() string {
	if o == OutcomeReplace {
		return "replace"
	}
	return "insert"
}

// Subscription is one live destination binding.
type Subscription struct {
	ID          string
	Destination string

	handler transport.Handler
	cancel  transport.Unsubscriber
}

// SubscribeResult resolves a subscribe request, possibly long after the
// call when the request was queued while disconnected.
type SubscribeResult struct {
	Sub     *Subscription
	Outcome SubscribeOutcome
	Err     error
}

// SubscribeFuture is the promise half of an asynchronous subscribe.
type SubscribeFuture struct {
	ch chan SubscribeResult
}

func newSubscribeFuture() *SubscribeFuture {
	return &SubscribeFuture{ch: make(chan SubscribeResult, 1)}
}

// Done exposes the resolution channel; it receives exactly one result.
func (f *SubscribeFuture) Done() <-chan SubscribeResult { return f.ch }

// Await blocks until the future resolves or ctx ends.
func (f *SubscribeFuture) Await(ctx context.Context) (SubscribeResult, error) {
	select {
	case res := <-f.ch:
		return res, res.Err
	case <-ctx.Done():
		return SubscribeResult{}, ctx.Err()
	}
}

func (f *SubscribeFuture) resolve(res SubscribeResult) {
	f.ch <- res
}

type pendingSubscription struct {
	destination string
	handler     transport.Handler
	future      *SubscribeFuture
}

// Registry owns the destination→subscription map and the FIFO queue of
// requests issued while disconnected. At most one live subscription exists
// per destination; re-subscribing replaces the prior one.
type Registry struct {
	subs    map[string]*Subscription
	pending []*pendingSubscription
	log     *logger.Logger
}

func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		subs: make(map[string]*Subscription),
		log:  log.With("component", "registry"),
	}
}

// Subscribe installs a subscription through tr, or queues the request when
// tr is nil (not connected). The returned future resolves on install, on
// flush, or with a rejection at teardown.
//
// Callers must hold the session lock; the registry itself is not
// goroutine-safe.
func (r *Registry) Subscribe(tr transport.Transport, destination string, h transport.Handler) *SubscribeFuture {
	future := newSubscribeFuture()
	if tr == nil {
		r.pending = append(r.pending, &pendingSubscription{
			destination: destination,
			handler:     h,
			future:      future,
		})
		r.log.Debug("subscription queued", "destination", destination, "queued", len(r.pending))
		return future
	}
	future.resolve(r.install(tr, destination, h))
	return future
}

// install performs the replace-semantics subscribe: any prior handle for
// the destination is torn down before the new one goes live, so two handles
// never coexist.
func (r *Registry) install(tr transport.Transport, destination string, h transport.Handler) SubscribeResult {
	outcome := OutcomeInsert
	if prev, ok := r.subs[destination]; ok {
		outcome = OutcomeReplace
		delete(r.subs, destination)
		if prev.cancel != nil {
			if err := prev.cancel(); err != nil {
				r.log.Warn("failed to tear down replaced subscription",
					"destination", destination, "error", err)
			}
		}
	}

	cancel, err := tr.Subscribe(destination, h)
	if err != nil {
		r.log.Warn("subscribe failed", "destination", destination, "error", err)
		return SubscribeResult{Err: err}
	}

	sub := &Subscription{
		ID:          uuid.NewString(),
		Destination: destination,
		handler:     h,
		cancel:      cancel,
	}
	r.subs[destination] = sub
	r.log.Info("subscribed", "destination", destination, "outcome", outcome.String())
	return SubscribeResult{Sub: sub, Outcome: outcome}
}

// Flush drains the pending queue in FIFO order through tr. Each item
// resolves or rejects individually; one failure never blocks the rest. The
// queue is emptied unconditionally.
func (r *Registry) Flush(tr transport.Transport) {
	queued := r.pending
	r.pending = nil
	if len(queued) == 0 {
		return
	}
	r.log.Info("flushing pending subscriptions", "count", len(queued))
	for _, p := range queued {
		p.future.resolve(r.install(tr, p.destination, p.handler))
	}
}

// Unsubscribe tears down the destination's subscription if present.
func (r *Registry) Unsubscribe(destination string) {
	sub, ok := r.subs[destination]
	if !ok {
		return
	}
	delete(r.subs, destination)
	if sub.cancel != nil {
		if err := sub.cancel(); err != nil {
			r.log.Warn("unsubscribe failed", "destination", destination, "error", err)
		}
	}
}

// Get returns the live subscription for a destination, if any.
func (r *Registry) Get(destination string) (*Subscription, bool) {
	sub, ok := r.subs[destination]
	return sub, ok
}

// Len reports the number of live subscriptions.
func (r *Registry) Len() int { return len(r.subs) }

// PendingLen reports the number of queued requests.
func (r *Registry) PendingLen() int { return len(r.pending) }

// DropLive forgets all live subscriptions without calling their cancel
// functions. Used when the connection died underneath them.
func (r *Registry) DropLive() {
	r.subs = make(map[string]*Subscription)
}

// Clear tears down every live subscription and rejects all queued
// requests. Used at session teardown.
func (r *Registry) Clear() {
	for dest, sub := range r.subs {
		if sub.cancel != nil {
			if err := sub.cancel(); err != nil {
				r.log.Debug("teardown unsubscribe failed", "destination", dest, "error", err)
			}
		}
	}
	r.subs = make(map[string]*Subscription)

	queued := r.pending
	r.pending = nil
	for _, p := range queued {
		p.future.resolve(SubscribeResult{Err: ErrSessionClosed})
	}
}
