package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukaanbill/backend-billing/internal/events"
)

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitFansOut(t *testing.T) {
	first := &captureNotifier{}
	second := &captureNotifier{}
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	bus := events.Bus{
		Notifiers: []events.Notifier{first, second},
		Now:       func() time.Time { return now },
	}

	ev, err := bus.Emit(context.Background(), events.TopicDraftUpdated, "draft-1", map[string]any{"items": 2})
	require.NoError(t, err)
	require.Equal(t, events.TopicDraftUpdated, ev.Topic)
	require.Equal(t, now, ev.OccurredAt)
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	require.Equal(t, "draft-1", first.events[0].DraftID)
}

func TestEmitRequiresTopicAndDraft(t *testing.T) {
	bus := events.Bus{}
	_, err := bus.Emit(context.Background(), "", "draft-1", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicDraftUpdated, "  ", nil)
	require.Error(t, err)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	boom := errors.New("render failed")
	failing := &captureNotifier{err: boom}
	ok := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{failing, ok}}

	_, err := bus.Emit(context.Background(), events.TopicInvoiceFinalized, "draft-1", nil)
	require.ErrorIs(t, err, boom)
	// A failing notifier must not prevent the rest from observing the event.
	require.Len(t, ok.events, 1)
}
