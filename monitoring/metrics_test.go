package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMonitor_CollectUnreadCounts(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	mock.ExpectKeys(UnreadKeyPrefix + "*").SetVal([]string{UnreadKeyPrefix + "user-9"})
	mock.ExpectGet(UnreadKeyPrefix + "user-9").SetVal("7")

	m := &Monitor{redis: db}
	m.collectUnreadCounts(context.Background())

	assert.Equal(t, float64(7), testutil.ToFloat64(unreadNotifications.WithLabelValues("user-9")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonitor_CollectMetricsStopsOnCancel(t *testing.T) {
	db, _ := redismock.NewClientMock()
	m := &Monitor{redis: db}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		m.collectMetrics(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collectMetrics did not stop on context cancel")
	}
}
