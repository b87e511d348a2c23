package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToSessionSubscribers(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe("session-1")
	defer cancel()
	other, cancelOther := hub.Subscribe("session-2")
	defer cancelOther()

	hub.Publish(Event{SessionID: "session-1", Stage: "generating", Message: "working"})

	select {
	case event := <-events:
		assert.Equal(t, "generating", event.Stage)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected an event for session-1")
	}

	select {
	case <-other:
		t.Fatal("session-2 must not receive session-1 events")
	default:
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe("session-1")
	defer cancel()

	// Overflow the subscriber buffer; extra events are dropped.
	for i := 0; i < 100; i++ {
		hub.Publish(Event{SessionID: "session-1", Stage: "generating"})
	}

	require.NotEmpty(t, events)
}

func TestHubCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	_, cancel := hub.Subscribe("session-1")
	cancel()

	// Publishing after cancel must not panic or deliver.
	hub.Publish(Event{SessionID: "session-1", Stage: "ready"})
}

func TestHubPublishWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Publish(Event{SessionID: "nobody", Stage: "ready"})
}
