package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubDeliversToAllSubscribers(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.Publish(Event{Phase: PhaseSearching, Message: "page 1"})

	require.Equal(t, "page 1", (<-a).Message)
	require.Equal(t, "page 1", (<-b).Message)
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// One more publish than the buffer holds must not block.
	for i := 0; i < cap(ch)+1; i++ {
		h.Publish(Event{Phase: PhaseApplying, Applied: i})
	}

	require.Len(t, ch, cap(ch))
	require.Equal(t, 0, (<-ch).Applied)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	_, open := <-ch
	require.False(t, open)

	// Publishing after unsubscribe must not panic on the closed channel.
	h.Publish(Event{Phase: PhaseCompleted})
}
