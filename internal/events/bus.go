// internal/events/bus.go
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types published by the drawer core
const (
	DrawerConnected    = "drawer.connected"
	DrawerDisconnected = "drawer.disconnected"
	DrawerFault        = "drawer.fault"
	DrawerOpened       = "drawer.opened"
	DrawerOpenFailed   = "drawer.open_failed"
)

// Event types published by the updater
const (
	UpdateChecking     = "update.checking"
	UpdateAvailable    = "update.available"
	UpdateNotAvailable = "update.not-available"
	UpdateError        = "update.error"
	UpdateProgress     = "update.progress"
	UpdateDownloaded   = "update.downloaded"
)

// AllEvents subscribes to every event type
const AllEvents = "*"

// Event represents a system event
type Event struct {
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Publisher accepts events without blocking
type Publisher interface {
	Publish(event Event)
}

// Discard drops every event
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// New builds an event stamped with the current time
func New(eventType, source string, data map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Bus manages event distribution
type Bus struct {
	subscribers map[string][]chan Event
	events      chan Event
	mutex       sync.RWMutex
	logger      *zap.Logger
	closeOnce   sync.Once
	done        chan struct{}
}

// NewBus creates a new event bus
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]chan Event),
		events:      make(chan Event, 1000),
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Start distributes events until Close is called
func (b *Bus) Start() {
	for {
		select {
		case event := <-b.events:
			b.distributeEvent(event)
		case <-b.done:
			return
		}
	}
}

// Close stops distribution
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// Publish publishes an event
func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case b.events <- event:
	default:
		if b.logger != nil {
			b.logger.Warn("Event bus full, dropping event",
				zap.String("event_type", event.Type),
			)
		}
	}
}

// Subscribe subscribes to events of a specific type, or AllEvents
func (b *Bus) Subscribe(eventType string) <-chan Event {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	subscriber := make(chan Event, 100)
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber)
	return subscriber
}

// Unsubscribe removes a subscription channel returned by Subscribe
func (b *Bus) Unsubscribe(eventType string, ch <-chan Event) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	subs := b.subscribers[eventType]
	for i, sub := range subs {
		if sub == ch {
			b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// distributeEvent distributes an event to subscribers
func (b *Bus) distributeEvent(event Event) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	for _, key := range []string{event.Type, AllEvents} {
		for _, subscriber := range b.subscribers[key] {
			select {
			case subscriber <- event:
			default:
				// Subscriber is slow, skip
			}
		}
	}
}
