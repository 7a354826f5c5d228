package services

import (
	"context"
	"log/slog"

	"helpdesk-system/models"
)

// Subscriber consumes ticket events published by the mutation path.
type Subscriber interface {
	HandleTicketEvent(ctx context.Context, ev models.TicketEvent)
}

// EventBus decouples ticket writes from their side effects: a mutation
// publishes a TicketEvent and returns; subscribers (notification fan-out,
// metrics) run on the bus goroutine. A ticket write and its notification
// writes are therefore not atomic, which matches the store's own guarantees.
type EventBus struct {
	events chan models.TicketEvent
	subs   []Subscriber
}

func NewEventBus(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventBus{
		events: make(chan models.TicketEvent, buffer),
	}
}

// Subscribe registers a subscriber. Not safe to call after Run has started.
func (b *EventBus) Subscribe(sub Subscriber) {
	b.subs = append(b.subs, sub)
}

// Publish enqueues an event without blocking the caller. When the buffer is
// full the event is dropped and logged; a lost notification is preferable to
// a wedged ticket write.
func (b *EventBus) Publish(ev models.TicketEvent) {
	select {
	case b.events <- ev:
	default:
		slog.Warn("event bus full, dropping event",
			"type", ev.Type,
			"ticket", ev.TicketID,
		)
	}
}

// Run dispatches events to subscribers until the context is cancelled.
func (b *EventBus) Run(ctx context.Context) {
	for {
		select {
		case ev := <-b.events:
			for _, sub := range b.subs {
				sub.HandleTicketEvent(ctx, ev)
			}
		case <-ctx.Done():
			slog.Info("event bus stopping")
			return
		}
	}
}
