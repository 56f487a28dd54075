package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Event carries a draft lifecycle notification to downstream collaborators.
type Event struct {
	Topic      string
	DraftID    string
	Payload    any
	OccurredAt time.Time
}

// Notifier reacts to emitted events. Rendering collaborators implement this
// to receive the fresh snapshot and totals after every mutation.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus fans draft events out to registered notifiers. There is exactly one
// logical actor per draft, so emission is synchronous: by the time a mutation
// handler returns, every notifier has observed the new state.
type Bus struct {
	Notifiers []Notifier
	Now       func() time.Time
}

// Emit dispatches the event to all configured notifiers, joining their errors.
func (b *Bus) Emit(ctx context.Context, topic string, draftID string, payload any) (Event, error) {
	if b == nil {
		return Event{}, errors.New("events: bus not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Event{}, errors.New("events: topic is required")
	}
	if strings.TrimSpace(draftID) == "" {
		return Event{}, errors.New("events: draft id is required")
	}
	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}
	ev := Event{Topic: topic, DraftID: draftID, Payload: payload, OccurredAt: now}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, ev); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	return ev, joined
}

// LogNotifier writes emitted events to the structured log. It stands in for a
// real rendering surface, which would consume the same notifications.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (l LogNotifier) Notify(_ context.Context, event Event) error {
	l.Logger.Info().
		Str("topic", event.Topic).
		Str("draft_id", event.DraftID).
		Time("occurred_at", event.OccurredAt).
		Msg("draft_event")
	return nil
}
