package monitoring

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	ticketsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_tickets_created_total",
			Help: "Tickets created, by category and priority",
		},
		[]string{"category", "priority"},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_ticket_transitions_total",
			Help: "Ticket status transitions",
		},
		[]string{"from", "to"},
	)

	notificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_notifications_emitted_total",
			Help: "Notification records written, by type",
		},
		[]string{"type", "broadcast"},
	)

	unreadNotifications = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "helpdesk_unread_notifications",
			Help: "Current unread notification count per recipient",
		},
		[]string{"recipient"},
	)

	ticketOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "helpdesk_ticket_operations_total",
			Help: "Ticket operations by outcome",
		},
		[]string{"operation", "status"},
	)

	storeFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "helpdesk_store_fetch_duration_seconds",
			Help:    "Duration of document store reads",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"collection"},
	)
)

// UnreadKeyPrefix is where the notification subscriber keeps per-recipient
// unread counters in Redis.
const UnreadKeyPrefix = "notif:unread:"

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(ctx context.Context, redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	// Start metrics collection
	go monitor.collectMetrics(ctx)

	return monitor
}

func (m *Monitor) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.collectUnreadCounts(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// collectUnreadCounts mirrors the Redis unread counters into the gauge so
// the dashboard can graph per-recipient backlog.
func (m *Monitor) collectUnreadCounts(ctx context.Context) {
	keys, err := m.redis.Keys(ctx, UnreadKeyPrefix+"*").Result()
	if err != nil {
		return
	}

	for _, key := range keys {
		recipient := strings.TrimPrefix(key, UnreadKeyPrefix)
		count, err := m.redis.Get(ctx, key).Int64()
		if err != nil {
			continue
		}
		unreadNotifications.WithLabelValues(recipient).Set(float64(count))
	}
}

func (m *Monitor) TrackTicketCreated(category, priority string) {
	ticketsCreated.WithLabelValues(category, priority).Inc()
}

func (m *Monitor) TrackTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Monitor) TrackNotification(notifType string, broadcast bool) {
	label := "false"
	if broadcast {
		label = "true"
	}
	notificationsEmitted.WithLabelValues(notifType, label).Inc()
}

func (m *Monitor) TrackTicketOperation(operation, status string) {
	ticketOperations.WithLabelValues(operation, status).Inc()
}

func (m *Monitor) TrackStoreFetch(collection string, duration time.Duration) {
	storeFetchDuration.WithLabelValues(collection).Observe(duration.Seconds())
}
