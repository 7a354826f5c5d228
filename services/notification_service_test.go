package services

import (
	"context"
	"testing"
	"time"

	"helpdesk-system/config"
	"helpdesk-system/models"
	"helpdesk-system/monitoring"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestNotificationService() (*NotificationService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	cfg := &config.Config{
		UnreadCacheTTL: time.Hour,
	}

	service := &NotificationService{
		redis: db,
		cfg:   cfg,
	}

	return service, mock
}

func TestNotificationService_UnreadCount_CacheHit(t *testing.T) {
	service, mock := setupTestNotificationService()
	defer mock.ClearExpect()

	mock.ExpectGet(monitoring.UnreadKeyPrefix + "user-1").SetVal("4")

	count, err := service.UnreadCount(context.Background(), "user-1", models.RoleUser)

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationService_UnreadCount_TechnicianIncludesBroadcast(t *testing.T) {
	service, mock := setupTestNotificationService()
	defer mock.ClearExpect()

	mock.ExpectGet(monitoring.UnreadKeyPrefix + "tech-1").SetVal("2")
	mock.ExpectGet(monitoring.UnreadKeyPrefix + models.BroadcastTechnicians).SetVal("3")

	count, err := service.UnreadCount(context.Background(), "tech-1", models.RoleTechnician)

	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationService_DecrementUnread_FloorsAtZero(t *testing.T) {
	service, mock := setupTestNotificationService()
	defer mock.ClearExpect()

	key := monitoring.UnreadKeyPrefix + "user-1"
	mock.ExpectDecr(key).SetVal(-1)
	mock.ExpectSet(key, 0, time.Hour).SetVal("OK")

	service.decrementUnread(context.Background(), "user-1")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationService_DecrementUnread_PositiveStays(t *testing.T) {
	service, mock := setupTestNotificationService()
	defer mock.ClearExpect()

	mock.ExpectDecr(monitoring.UnreadKeyPrefix + "user-1").SetVal(2)

	service.decrementUnread(context.Background(), "user-1")

	assert.NoError(t, mock.ExpectationsWereMet())
}
