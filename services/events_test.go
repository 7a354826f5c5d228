package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"helpdesk-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubscriber struct {
	mu     sync.Mutex
	events []models.TicketEvent
}

func (r *recordingSubscriber) HandleTicketEvent(ctx context.Context, ev models.TicketEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSubscriber) snapshot() []models.TicketEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.TicketEvent{}, r.events...)
}

func TestEventBus_DispatchesToSubscribers(t *testing.T) {
	bus := NewEventBus(8)
	sub := &recordingSubscriber{}
	bus.Subscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	bus.Publish(models.TicketEvent{Type: models.NotificationNewTicket, TicketID: "t1"})
	bus.Publish(models.TicketEvent{Type: models.NotificationStatus, TicketID: "t1"})

	require.Eventually(t, func() bool {
		return len(sub.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)

	events := sub.snapshot()
	assert.Equal(t, models.NotificationNewTicket, events[0].Type)
	assert.Equal(t, models.NotificationStatus, events[1].Type)
}

func TestEventBus_PublishNeverBlocks(t *testing.T) {
	// No Run loop draining the channel: the buffer fills and further
	// publishes must drop instead of wedging the caller.
	bus := NewEventBus(2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(models.TicketEvent{Type: models.NotificationNewTicket})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full buffer")
	}
}
