package eventbus

import (
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"browserboot/core/event"
)

// subscription represents a single event subscription.
type subscription struct {
	id      string
	handler EventHandler
	runID   string // Empty string means subscribe to all events
}

// channelEventBus is a channel-based implementation of EventBus.
type channelEventBus struct {
	eventChan     chan event.Event
	subscriptions map[string]*subscription
	mu            sync.RWMutex
	closed        atomic.Bool
	wg            sync.WaitGroup
	nextID        atomic.Uint64
	logger        *slog.Logger
}

// New creates a new EventBus with the specified buffer size.
// A nil logger falls back to slog.Default().
func New(bufferSize int, logger *slog.Logger) EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	bus := &channelEventBus{
		eventChan:     make(chan event.Event, bufferSize),
		subscriptions: make(map[string]*subscription),
		logger:        logger,
	}

	bus.wg.Add(1)
	go bus.dispatch()

	return bus
}

// Publish publishes an event to all subscribers.
// The read lock keeps Close from closing the channel during the send.
func (b *channelEventBus) Publish(e event.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed.Load() {
		return
	}

	select {
	case b.eventChan <- e:
	default:
		b.logger.Warn("Event dropped, bus buffer full", "event", e.EventName())
	}
}

// Subscribe subscribes to all events.
func (b *channelEventBus) Subscribe(handler EventHandler) string {
	return b.subscribe("", handler)
}

// SubscribeRun subscribes to events from a specific run.
func (b *channelEventBus) SubscribeRun(runID string, handler EventHandler) string {
	return b.subscribe(runID, handler)
}

func (b *channelEventBus) subscribe(runID string, handler EventHandler) string {
	id := "sub-" + strconv.FormatUint(b.nextID.Add(1), 10)

	b.mu.Lock()
	b.subscriptions[id] = &subscription{
		id:      id,
		handler: handler,
		runID:   runID,
	}
	b.mu.Unlock()

	return id
}

// Unsubscribe removes a subscription by its ID.
func (b *channelEventBus) Unsubscribe(subscriptionID string) {
	b.mu.Lock()
	delete(b.subscriptions, subscriptionID)
	b.mu.Unlock()
}

// Close shuts down the event bus.
func (b *channelEventBus) Close() {
	b.mu.Lock()
	if b.closed.Swap(true) {
		b.mu.Unlock()
		return
	}
	close(b.eventChan)
	b.mu.Unlock()

	b.wg.Wait()
}

// dispatch is the main event dispatch loop.
func (b *channelEventBus) dispatch() {
	defer b.wg.Done()

	for e := range b.eventChan {
		b.deliverEvent(e)
	}
}

// deliverEvent delivers an event to all matching subscribers.
func (b *channelEventBus) deliverEvent(e event.Event) {
	b.mu.RLock()
	subs := make([]*subscription, 0, len(b.subscriptions))
	for _, sub := range b.subscriptions {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	var eventRunID string
	if re, ok := e.(event.RunEvent); ok {
		eventRunID = re.RunID()
	}

	for _, sub := range subs {
		if sub.runID != "" {
			if eventRunID == "" || sub.runID != eventRunID {
				continue
			}
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("Event handler panicked",
						"event", e.EventName(), "subscription", sub.id, "panic", r)
				}
			}()
			sub.handler(e)
		}()
	}
}
