package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var received []Event
	dispatcher.Subscribe(EventCaseCreated, func(_ context.Context, event Event) error {
		received = append(received, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventCaseCreated, CaseID: "case-1"})
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "case-1", received[0].CaseID)
}

func TestDispatcherIgnoresUnrelatedEvents(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	calls := 0
	dispatcher.Subscribe(EventCaseResponded, func(context.Context, Event) error {
		calls++
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventCaseCreated}))
	assert.Equal(t, 0, calls)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	dispatcher.Subscribe(EventCaseCreated, func(context.Context, Event) error {
		return errors.New("boom")
	})

	assert.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventCaseCreated}))
}
