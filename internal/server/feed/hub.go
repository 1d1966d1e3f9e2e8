package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/logitrack/internal/logging"
)

const (
	DefaultSubscriberBuffer = 64
	sinkQueueSize           = 1024
	sinkTimeout             = 5 * time.Second
)

// Sink receives every published event, e.g. a Kafka topic.
type Sink interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Hub is an in-process fan-out. Publish never blocks: a subscriber whose
// buffer is full loses the event and is marked lagged, and broker delivery
// happens on a background goroutine.
type Hub struct {
	log    logging.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool

	sinks []Sink
	queue chan Event
	wg    sync.WaitGroup
}

func NewHub(log logging.Logger, buffer int, sinks ...Sink) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	h := &Hub{
		log:    log.With("module", "feed"),
		buffer: buffer,
		subs:   make(map[*Subscription]struct{}),
		sinks:  sinks,
	}
	if len(sinks) > 0 {
		h.queue = make(chan Event, sinkQueueSize)
		h.wg.Add(1)
		go h.forward()
	}
	return h
}

// Subscribe registers interest in the given collections, or in all of them
// when none are named. The caller must Close the subscription.
func (h *Hub) Subscribe(collections ...Collection) *Subscription {
	c := make(chan Event, h.buffer)
	s := &Subscription{C: c, ch: c, hub: h}
	if len(collections) > 0 {
		s.filter = make(map[Collection]struct{}, len(collections))
		for _, col := range collections {
			s.filter[col] = struct{}{}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

func (h *Hub) Publish(ctx context.Context, e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	for s := range h.subs {
		if !s.wants(e.Collection) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			if !s.lagged.Swap(true) {
				h.log.Warn(ctx, "subscriber lagging, dropping events", "collection", e.Collection)
			}
		}
	}

	if h.queue != nil {
		select {
		case h.queue <- e:
		default:
			h.log.Error(ctx, "sink queue full, event dropped", "key", e.Key(), "op", e.Op)
		}
	}
}

// Emit builds an event from ctx and publishes it. Encoding failures are
// logged since a change that already happened must not be reported as failed.
func (h *Hub) Emit(ctx context.Context, c Collection, op Op, id string, v any) {
	e, err := NewEvent(ctx, c, op, id, v)
	if err != nil {
		h.log.Error(ctx, "event encoding failed", "collection", c, "id", id, "error", err)
		return
	}
	h.Publish(ctx, e)
}

func (h *Hub) forward() {
	defer h.wg.Done()
	for e := range h.queue {
		for _, s := range h.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			if err := s.Publish(ctx, e); err != nil {
				h.log.Error(ctx, "sink publish failed", "key", e.Key(), "op", e.Op, "error", err)
			}
			cancel()
		}
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}

// Close ends every subscription, drains pending broker deliveries and
// closes the sinks.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
	if h.queue != nil {
		close(h.queue)
	}
	h.mu.Unlock()

	h.wg.Wait()

	var firstErr error
	for _, s := range h.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Subscription delivers matching events on C until closed. C is closed
// when the subscription or the hub is closed.
type Subscription struct {
	C <-chan Event

	ch     chan Event
	filter map[Collection]struct{}
	hub    *Hub
	lagged atomic.Bool
}

func (s *Subscription) wants(c Collection) bool {
	if s.filter == nil {
		return true
	}
	_, ok := s.filter[c]
	return ok
}

// Lagged reports whether events were dropped since the previous call.
func (s *Subscription) Lagged() bool {
	return s.lagged.Swap(false)
}

func (s *Subscription) Close() {
	s.hub.remove(s)
}
