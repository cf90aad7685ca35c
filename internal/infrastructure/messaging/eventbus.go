// Package messaging implements the in-process domain event bus.
// Handlers run either inline with Publish or on an ants worker pool.
package messaging

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEventBusClosed is returned when operations are attempted on a closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrHandlerPanic is returned when a handler panics.
	ErrHandlerPanic = errors.New("handler panicked")
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus is a simple in-memory implementation of shared.EventBus.
// A failing handler is logged and never fails the publisher.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	pool        *ants.Pool // nil in sync mode
	logger      *logger.Logger
	observer    DeliveryObserver
	closed      bool
	wg          sync.WaitGroup
}

// InMemoryEventBusConfig contains configuration for InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode runs handlers on a worker pool instead of inside Publish.
	AsyncMode bool

	// WorkerPoolSize is the number of concurrent workers for async processing.
	WorkerPoolSize int

	Logger *logger.Logger

	// Observer receives the outcome of every handler run (optional).
	Observer DeliveryObserver
}

// DeliveryObserver records handler executions, e.g. into Prometheus.
// err is nil for a successful run.
type DeliveryObserver interface {
	ObserveEventDelivery(eventType string, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveEventDelivery(string, time.Duration, error) {}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config InMemoryEventBusConfig) (*InMemoryEventBus, error) {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 4
	}
	if config.Observer == nil {
		config.Observer = nopObserver{}
	}

	bus := &InMemoryEventBus{
		handlers: make(map[shared.EventType][]shared.EventHandler),
		logger:   config.Logger.With(logger.Component("eventbus")),
		observer: config.Observer,
	}

	if config.AsyncMode {
		pool, err := ants.NewPool(config.WorkerPoolSize,
			ants.WithNonblocking(false),
			ants.WithExpiryDuration(10*time.Second),
			ants.WithPanicHandler(func(p any) {
				bus.logger.Error("event worker panic", logger.Any("panic", p))
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("create event worker pool: %w", err)
		}
		bus.pool = pool
	}

	return bus, nil
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debug("subscribed handler", logger.EventType(string(eventType)))

	return nil
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.allHandlers = append(b.allHandlers, handler)
	b.logger.Debug("subscribed global handler")

	return nil
}

// Publish sends an event to all subscribed handlers.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}

	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)

	// wg.Add under the read lock so that Close cannot start waiting in between.
	if b.pool != nil {
		b.wg.Add(len(handlers))
	}
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("no handlers for event", logger.EventType(string(event.EventType())))
		return nil
	}

	deliveryID := uuid.NewString()
	for _, handler := range handlers {
		if b.pool == nil {
			b.execute(deliveryID, event, handler)
			continue
		}

		handler := handler
		err := b.pool.Submit(func() {
			defer b.wg.Done()
			b.execute(deliveryID, event, handler)
		})
		if err != nil {
			b.wg.Done()
			b.logger.Error("failed to submit event handler",
				logger.EventType(string(event.EventType())),
				logger.Err(err),
			)
		}
	}

	return nil
}

// execute runs one handler, recovering from panics.
func (b *InMemoryEventBus) execute(deliveryID string, event shared.Event, handler shared.EventHandler) {
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%w: %v", ErrHandlerPanic, p)
			}
		}()
		return handler(event)
	}()

	duration := time.Since(start)
	b.observer.ObserveEventDelivery(string(event.EventType()), duration, err)

	if err != nil {
		b.logger.Error("handler error",
			logger.String("delivery_id", deliveryID),
			logger.EventType(string(event.EventType())),
			logger.Latency(duration),
			logger.Err(err),
		)
	}
}

// Close stops accepting events and waits for queued handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	// Wait for pending handlers to complete
	b.wg.Wait()
	if b.pool != nil {
		b.pool.Release()
	}

	b.logger.Info("event bus closed")
	return nil
}
