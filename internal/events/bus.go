package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type Kind string

const (
	Created Kind = "created"
	Updated Kind = "updated"
)

// Event is one document mutation. Before is nil for Created.
type Event struct {
	Collection string
	Kind       Kind
	DocID      string
	// Version distinguishes redeliveries of the same mutation from new ones.
	Version string
	Before  interface{}
	After   interface{}
}

// Key identifies the mutation for deduplication.
func (e Event) Key() string {
	return fmt.Sprintf("%s/%s/%s/%s", e.Collection, e.DocID, e.Kind, e.Version)
}

type Handler func(ctx context.Context, e Event)

// Bus delivers events to a single handler in publish order.
type Bus struct {
	ch     chan Event
	log    *zap.Logger
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

func NewBus(size int, log *zap.Logger) *Bus {
	if size <= 0 {
		size = 256
	}
	return &Bus{ch: make(chan Event, size), log: log.Named("events"), done: make(chan struct{})}
}

// Publish blocks while the buffer is full. Events published once Run has
// started shutting down are dropped and logged.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.dropped(e, "bus closed")
		return
	}
	select {
	case b.ch <- e:
		return
	default:
	}
	b.log.Debug("event buffer full, waiting", zap.String("event", e.Key()))
	select {
	case b.ch <- e:
	case <-b.done:
		b.dropped(e, "bus shutting down")
	}
}

func (b *Bus) dropped(e Event, reason string) {
	b.log.Warn("event dropped",
		zap.String("reason", reason),
		zap.String("collection", e.Collection),
		zap.String("kind", string(e.Kind)),
		zap.String("doc_id", e.DocID))
}

// Run hands events to h until ctx is cancelled, then drains what is buffered.
func (b *Bus) Run(ctx context.Context, h Handler) {
	for {
		select {
		case e := <-b.ch:
			b.dispatch(ctx, h, e)
		case <-ctx.Done():
			b.shutdown()
			for {
				select {
				case e := <-b.ch:
					b.dispatch(context.Background(), h, e)
				default:
					return
				}
			}
		}
	}
}

// shutdown releases blocked publishers and waits for them to leave, so every
// event that made it into the buffer is seen by the drain.
func (b *Bus) shutdown() {
	b.once.Do(func() { close(b.done) })
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked", zap.String("event", e.Key()), zap.Any("panic", r))
		}
	}()
	h(ctx, e)
}

// Discard drops every event. Write paths use it when another source, such as
// a database change listener, already feeds the bus.
type Discard struct{}

func (Discard) Publish(Event) {}
