package services

import (
	"context"
	"log/slog"
	"time"

	"helpdesk-system/config"
	"helpdesk-system/internal/status"
	"helpdesk-system/models"
	"helpdesk-system/monitoring"
	"helpdesk-system/utils"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// NotificationService is the read side of notification delivery: listing,
// unread counts and read-flag flips. Store reads go through a circuit
// breaker and a bounded retry policy keyed on typed error classification.
type NotificationService struct {
	app     core.App
	redis   *redis.Client
	monitor *monitoring.Monitor
	cfg     *config.Config
	breaker *utils.CircuitBreaker
	retry   utils.RetryPolicy
}

func NewNotificationService(app core.App, redisClient *redis.Client, monitor *monitoring.Monitor, cfg *config.Config) *NotificationService {
	return &NotificationService{
		app:     app,
		redis:   redisClient,
		monitor: monitor,
		cfg:     cfg,
		breaker: utils.NewCircuitBreaker("notifications"),
		retry: utils.RetryPolicy{
			MaxAttempts: cfg.NotificationRetryMax,
			BaseDelay:   cfg.NotificationRetryBase,
		},
	}
}

// ListForUser returns the caller's notifications newest first. Technicians
// additionally see the broadcast sentinel's records.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, role models.Role) ([]models.Notification, error) {
	var records []*core.Record

	fetch := func() error {
		records = records[:0]
		query := s.app.RecordQuery("notifications")

		if role == models.RoleTechnician {
			query = query.AndWhere(dbx.Or(
				dbx.HashExp{"recipient": userID},
				dbx.HashExp{"recipient": models.BroadcastTechnicians},
			))
		} else {
			query = query.AndWhere(dbx.HashExp{"recipient": userID})
		}

		return query.OrderBy("created DESC").All(&records)
	}

	start := time.Now()
	err := s.breaker.Execute(ctx, func() error {
		return s.retry.Do(ctx, fetch)
	})
	if err != nil {
		return nil, err
	}
	s.monitor.TrackStoreFetch("notifications", time.Since(start))

	notifications := make([]models.Notification, 0, len(records))
	for _, r := range records {
		notifications = append(notifications, notificationFromRecord(r))
	}
	return notifications, nil
}

// MarkRead flips a single notification's read flag and decrements the unread
// counter for its recipient. Already-read notifications are a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string, role models.Role) error {
	record, err := s.app.FindRecordById("notifications", notificationID)
	if err != nil {
		return status.ErrNotificationNotFound
	}

	recipient := record.GetString("recipient")
	if recipient != userID &&
		!(recipient == models.BroadcastTechnicians && role == models.RoleTechnician) {
		return status.ErrNotificationNotFound
	}

	if record.GetBool("read") {
		return nil
	}

	record.Set("read", true)
	if err := s.app.Save(record); err != nil {
		return err
	}

	s.decrementUnread(ctx, recipient)
	return nil
}

// MarkAllRead flips every unread notification visible to the caller, one
// write per record. There is no atomic batch: a partial failure leaves a
// mixed read state, which is reported through the returned count and error.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string, role models.Role) (int, error) {
	notifications, err := s.ListForUser(ctx, userID, role)
	if err != nil {
		return 0, err
	}

	flipped := 0
	var firstErr error
	for _, n := range notifications {
		if n.Read {
			continue
		}
		if err := s.MarkRead(ctx, n.ID, userID, role); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		flipped++
	}

	return flipped, firstErr
}

// UnreadCount reads the Redis counter, rebuilding it from the store when
// missing. Technicians get their personal counter plus the broadcast one.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string, role models.Role) (int64, error) {
	total, err := s.counterFor(ctx, userID)
	if err != nil {
		return 0, err
	}

	if role == models.RoleTechnician {
		broadcast, err := s.counterFor(ctx, models.BroadcastTechnicians)
		if err != nil {
			return 0, err
		}
		total += broadcast
	}

	return total, nil
}

func (s *NotificationService) counterFor(ctx context.Context, recipient string) (int64, error) {
	key := monitoring.UnreadKeyPrefix + recipient

	count, err := s.redis.Get(ctx, key).Int64()
	if err == nil {
		return count, nil
	}
	if err != redis.Nil {
		return 0, err
	}

	// Counter missing, rebuild from the store.
	stored, err := s.app.CountRecords("notifications", dbx.HashExp{
		"recipient": recipient,
		"read":      false,
	})
	if err != nil {
		return 0, err
	}

	if err := s.redis.Set(ctx, key, stored, s.cfg.UnreadCacheTTL).Err(); err != nil {
		slog.Warn("failed to rebuild unread counter", "recipient", recipient, "error", err)
	}

	return stored, nil
}

func (s *NotificationService) decrementUnread(ctx context.Context, recipient string) {
	key := monitoring.UnreadKeyPrefix + recipient

	val, err := s.redis.Decr(ctx, key).Result()
	if err != nil {
		slog.Warn("failed to decrement unread counter", "recipient", recipient, "error", err)
		return
	}
	if val < 0 {
		s.redis.Set(ctx, key, 0, s.cfg.UnreadCacheTTL)
	}
}

func notificationFromRecord(r *core.Record) models.Notification {
	return models.Notification{
		ID:        r.Id,
		Recipient: r.GetString("recipient"),
		Message:   r.GetString("message"),
		Read:      r.GetBool("read"),
		Type:      r.GetString("type"),
		TicketID:  r.GetString("ticket"),
		Broadcast: r.GetBool("broadcast"),
		CreatedAt: r.GetDateTime("created").Time(),
	}
}
