// Package eventbus fans pipeline progress events out to subscribers without
// blocking the publisher.
package eventbus

import (
	"sync"
	"time"
)

// Event types published by the pipeline.
const (
	StageStarted   = "stage_started"
	StageCompleted = "stage_completed"
	StageFailed    = "stage_failed"
	RunFinished    = "run_finished"
)

type Event struct {
	Type      string
	Timestamp time.Time
	Data      map[string]interface{}
}

type Handler interface {
	Handle(event Event)
	ID() string
}

// HandlerFunc adapts a function; id must be unique per subscription.
type HandlerFunc struct {
	Name string
	Fn   func(Event)
}

func (h HandlerFunc) Handle(event Event) { h.Fn(event) }
func (h HandlerFunc) ID() string         { return h.Name }

// Bus delivers events in publish order on a single worker goroutine.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
	buffer      chan Event
	done        chan struct{}
	closeOnce   sync.Once
	wg          sync.WaitGroup
	dropped     int64
}

func New(bufferSize int) *Bus {
	bus := &Bus{
		subscribers: make(map[string][]Handler),
		buffer:      make(chan Event, bufferSize),
		done:        make(chan struct{}),
	}

	bus.startWorker()
	return bus
}

// Publish never blocks; events are dropped when the buffer is full or the
// bus is shut down.
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-b.done:
		return
	default:
	}

	select {
	case b.buffer <- event:
	default:
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
	}
}

func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

func (b *Bus) Unsubscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subscribers[eventType]
	for i, h := range handlers {
		if h.ID() == handler.ID() {
			b.subscribers[eventType] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
}

// Dropped counts events lost to a full buffer.
func (b *Bus) Dropped() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Shutdown stops the worker after it drains what is already buffered.
func (b *Bus) Shutdown() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
}

func (b *Bus) startWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for {
			select {
			case event := <-b.buffer:
				b.dispatch(event)
			case <-b.done:
				for {
					select {
					case event := <-b.buffer:
						b.dispatch(event)
					default:
						return
					}
				}
			}
		}
	}()
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subscribers[event.Type]))
	copy(handlers, b.subscribers[event.Type])
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				// A misbehaving subscriber must not kill the worker.
				_ = recover()
			}()
			h.Handle(event)
		}()
	}
}
