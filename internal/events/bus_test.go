package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startBus(t *testing.T) *Bus {
	t.Helper()
	bus := NewBus(zap.NewNop())
	go bus.Start()
	t.Cleanup(bus.Close)
	return bus
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBusDeliversToTypeAndWildcardSubscribers(t *testing.T) {
	bus := startBus(t)

	opened := bus.Subscribe(DrawerOpened)
	all := bus.Subscribe(AllEvents)

	bus.Publish(New(DrawerOpened, "drawer", map[string]interface{}{"command": "standard"}))

	e := receive(t, opened)
	assert.Equal(t, DrawerOpened, e.Type)
	assert.Equal(t, "standard", e.Data["command"])

	e = receive(t, all)
	assert.Equal(t, DrawerOpened, e.Type)
}

func TestBusFiltersByType(t *testing.T) {
	bus := startBus(t)

	connected := bus.Subscribe(DrawerConnected)
	all := bus.Subscribe(AllEvents)

	bus.Publish(New(UpdateChecking, "updater", nil))
	bus.Publish(New(DrawerConnected, "drawer", nil))

	assert.Equal(t, UpdateChecking, receive(t, all).Type)
	assert.Equal(t, DrawerConnected, receive(t, all).Type)
	assert.Equal(t, DrawerConnected, receive(t, connected).Type)
}

func TestBusStampsMissingTimestamp(t *testing.T) {
	bus := startBus(t)
	all := bus.Subscribe(AllEvents)

	bus.Publish(Event{Type: DrawerFault})

	e := receive(t, all)
	assert.False(t, e.Timestamp.IsZero())
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := startBus(t)

	ch := bus.Subscribe(AllEvents)
	bus.Unsubscribe(AllEvents, ch)

	_, ok := <-ch
	require.False(t, ok)

	// Unknown channels are ignored
	bus.Unsubscribe(AllEvents, make(chan Event))
}

func TestPublishDoesNotBlockWithoutConsumer(t *testing.T) {
	bus := NewBus(zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2000; i++ {
			bus.Publish(New(UpdateProgress, "updater", nil))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
}

func TestDiscardPublisher(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Publish(New(DrawerOpened, "drawer", nil)) })
}
