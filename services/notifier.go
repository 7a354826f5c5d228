package services

import (
	"context"
	"fmt"
	"log/slog"

	"helpdesk-system/config"
	"helpdesk-system/models"
	"helpdesk-system/monitoring"

	"github.com/pocketbase/pocketbase/core"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
)

const alertDedupPrefix = "notif:alert:"

// Notifier is the event-bus subscriber that persists notification records,
// maintains the Redis unread counters, and pushes realtime messages to
// PubNub channels (per-user channels plus the technician broadcast channel).
type Notifier struct {
	app     core.App
	redis   *redis.Client
	pubnub  *pubnub.PubNub
	monitor *monitoring.Monitor
	cfg     *config.Config
}

func NewNotifier(app core.App, redisClient *redis.Client, pn *pubnub.PubNub, monitor *monitoring.Monitor, cfg *config.Config) *Notifier {
	return &Notifier{
		app:     app,
		redis:   redisClient,
		pubnub:  pn,
		monitor: monitor,
		cfg:     cfg,
	}
}

func (n *Notifier) HandleTicketEvent(ctx context.Context, ev models.TicketEvent) {
	switch ev.Type {
	case models.NotificationNewTicket:
		n.deliver(ctx, ev, models.BroadcastTechnicians,
			fmt.Sprintf("New ticket created: %s (%s, Floor %s)", ev.Title, ev.Department, ev.Floor))

	case models.NotificationStatus:
		if ev.CreatorID != "" && ev.CreatorID != ev.ActorID {
			n.deliver(ctx, ev, ev.CreatorID,
				fmt.Sprintf("Your ticket (%s) has been updated to %s", ev.Title, ev.Status))
		}
		if ev.AssigneeID != "" && ev.AssigneeID != ev.ActorID {
			n.deliver(ctx, ev, ev.AssigneeID,
				fmt.Sprintf("Ticket %s (%s) has been updated to %s", ev.TicketNo, ev.Title, ev.Status))
		}

	case models.NotificationAssigned:
		if ev.CreatorID != "" {
			n.deliver(ctx, ev, ev.CreatorID,
				fmt.Sprintf("Your ticket (%s) has been assigned to a technician", ev.Title))
		}

	case models.NotificationComment:
		if ev.CreatorID != "" && ev.CreatorID != ev.ActorID {
			n.deliver(ctx, ev, ev.CreatorID,
				fmt.Sprintf("New comment on your ticket (%s)", ev.Title))
		}
		if ev.AssigneeID != "" && ev.AssigneeID != ev.ActorID {
			n.deliver(ctx, ev, ev.AssigneeID,
				fmt.Sprintf("New comment on ticket %s (%s)", ev.TicketNo, ev.Title))
		}

	case models.NotificationFeedback:
		if ev.AssigneeID != "" {
			n.deliver(ctx, ev, ev.AssigneeID,
				fmt.Sprintf("Feedback received for ticket %s (%s): %d stars", ev.TicketNo, ev.Title, ev.Rating))
		}

	default:
		slog.Warn("unknown ticket event type", "type", ev.Type)
	}
}

// deliver writes one notification record for the recipient, bumps the unread
// counter and pushes the realtime message. Failures are logged, never
// propagated: the ticket mutation already succeeded.
func (n *Notifier) deliver(ctx context.Context, ev models.TicketEvent, recipient, message string) {
	broadcast := recipient == models.BroadcastTechnicians

	collection, err := n.app.FindCollectionByNameOrId("notifications")
	if err != nil {
		slog.Error("notifications collection lookup failed", "error", err)
		return
	}

	record := core.NewRecord(collection)
	record.Set("recipient", recipient)
	record.Set("message", message)
	record.Set("read", false)
	record.Set("type", ev.Type)
	record.Set("ticket", ev.TicketID)
	record.Set("broadcast", broadcast)

	if err := n.app.Save(record); err != nil {
		slog.Error("failed to persist notification",
			"recipient", recipient,
			"type", ev.Type,
			"error", err,
		)
		return
	}

	if err := n.redis.Incr(ctx, monitoring.UnreadKeyPrefix+recipient).Err(); err != nil {
		slog.Error("failed to bump unread counter", "recipient", recipient, "error", err)
	}
	n.redis.Expire(ctx, monitoring.UnreadKeyPrefix+recipient, n.cfg.UnreadCacheTTL)

	n.monitor.TrackNotification(ev.Type, broadcast)

	n.push(ctx, ev, recipient, message, broadcast)
}

// push publishes the realtime message. Broadcast alerts are de-duplicated per
// ticket and event type inside the configured window so a burst of writes
// produces a single extended alert.
func (n *Notifier) push(ctx context.Context, ev models.TicketEvent, recipient, message string, broadcast bool) {
	if n.pubnub == nil {
		return
	}

	alert := models.AlertStandard
	channel := fmt.Sprintf("user-%s", recipient)

	if broadcast {
		channel = models.BroadcastTechnicians
		if ev.Type == models.NotificationNewTicket || ev.Type == models.NotificationComment {
			alert = models.AlertExtended
		}

		dedupKey := fmt.Sprintf("%s%s:%s", alertDedupPrefix, ev.TicketID, ev.Type)
		ok, err := n.redis.SetNX(ctx, dedupKey, 1, n.cfg.AlertDedupWindow).Result()
		if err == nil && !ok {
			return
		}
	}

	_, _, err := n.pubnub.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":      ev.Type,
			"ticket_id": ev.TicketID,
			"message":   message,
			"alert":     alert,
		}).
		Execute()
	if err != nil {
		slog.Error("pubnub publish failed", "channel", channel, "error", err)
	}
}
