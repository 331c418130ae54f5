package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vinothroacs/kalyanmalai-backend/pkg/errors"
)

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	db := RequireTestDB(t)

	now := testNow
	service := NewNotificationService(db, func() time.Time { return now })

	service.Append(ctx, "mem_a", "first")
	now = now.Add(time.Minute)
	service.Append(ctx, "mem_a", "second")
	service.Append(ctx, "mem_b", "other member")

	t.Run("ListNewestFirst", func(t *testing.T) {
		notifications, err := service.ListNotifications(ctx, "mem_a")
		require.NoError(t, err)
		require.Len(t, notifications, 2)
		assert.Equal(t, "second", notifications[0].Message)
		assert.Equal(t, "first", notifications[1].Message)
		assert.False(t, notifications[0].IsRead)
		assert.Equal(t, "2024-01-01T12:01:00Z", notifications[0].CreatedAt)
	})

	t.Run("MarkReadOwnOnly", func(t *testing.T) {
		others, err := service.ListNotifications(ctx, "mem_b")
		require.NoError(t, err)
		require.Len(t, others, 1)

		err = service.MarkRead(ctx, "mem_a", others[0].NotificationID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		require.NoError(t, service.MarkRead(ctx, "mem_b", others[0].NotificationID))
		others, err = service.ListNotifications(ctx, "mem_b")
		require.NoError(t, err)
		assert.True(t, others[0].IsRead)
	})

	t.Run("MarkAllRead", func(t *testing.T) {
		updated, err := service.MarkAllRead(ctx, "mem_a")
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated)

		updated, err = service.MarkAllRead(ctx, "mem_a")
		require.NoError(t, err)
		assert.Equal(t, int64(0), updated)

		notifications, err := service.ListNotifications(ctx, "mem_a")
		require.NoError(t, err)
		for _, n := range notifications {
			assert.True(t, n.IsRead)
		}
	})

	t.Run("EmptyListIsNotNil", func(t *testing.T) {
		notifications, err := service.ListNotifications(ctx, "mem_nobody")
		require.NoError(t, err)
		assert.NotNil(t, notifications)
		assert.Empty(t, notifications)
	})
}

func TestNotificationService_AppendSwallowsStoreErrors(t *testing.T) {
	db, mock, cleanup := SetupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "notifications"`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	service := NewNotificationService(db, FixedClock(testNow))
	assert.NotPanics(t, func() {
		service.Append(context.Background(), "mem_a", "lost")
	})
}
