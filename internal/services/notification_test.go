package services

import (
	"context"
	"testing"
	"time"

	"egov-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotificationService(t *testing.T, publishers ...Publisher) (*NotificationService, *time.Time) {
	t.Helper()
	st := seededStore(t)
	svc := NewNotificationService(st, st, publishers...)

	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestNotificationCreate(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, now := newTestNotificationService(t, publisher)

	n, err := svc.Create(ctx, NotificationInput{UserID: "1", Title: "Hello", Message: "World"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, models.NotificationInfo, n.Type)
	assert.False(t, n.Read)
	assert.Equal(t, *now, n.CreatedAt)

	published := publisher.published()
	require.Len(t, published, 1)
	assert.Equal(t, n.ID, published[0].ID)

	count, err := svc.UnreadCount(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNotificationCreate_Validation(t *testing.T) {
	svc, _ := newTestNotificationService(t)

	_, err := svc.Create(context.Background(), NotificationInput{UserID: "1", Title: "x", Message: "y", Type: "urgent"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Create(context.Background(), NotificationInput{UserID: "1", Message: "no title"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestNotificationCreate_PublisherFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	failing := &recordingPublisher{err: errPublish}
	working := &recordingPublisher{}
	svc, _ := newTestNotificationService(t, failing, working)

	n, err := svc.Create(ctx, NotificationInput{UserID: "1", Title: "t", Message: "m", Type: models.NotificationWarning})
	require.NoError(t, err)
	assert.Len(t, failing.published(), 1)
	assert.Len(t, working.published(), 1)

	list, err := svc.List(ctx, "1", false)
	require.NoError(t, err)
	assert.Equal(t, n.ID, list[0].ID)
}

func TestNotificationMarkRead(t *testing.T) {
	ctx := context.Background()
	svc, now := newTestNotificationService(t)
	readAt := *now

	require.NoError(t, svc.MarkRead(ctx, "1", "1"))

	// Повторна позначка не змінює read_at
	*now = now.Add(time.Hour)
	require.NoError(t, svc.MarkRead(ctx, "1", "1"))

	list, err := svc.List(ctx, "1", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
	require.NotNil(t, list[0].ReadAt)
	assert.True(t, list[0].ReadAt.Equal(readAt))

	count, err := svc.UnreadCount(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationMarkRead_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestNotificationService(t)

	assert.ErrorIs(t, svc.MarkRead(ctx, "1", "missing"), models.ErrNotificationNotFound)
	// Чуже сповіщення
	assert.ErrorIs(t, svc.MarkRead(ctx, "2", "1"), models.ErrNotificationNotFound)
}

func TestNotificationMarkAllRead(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestNotificationService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, NotificationInput{UserID: "1", Title: "t", Message: "m"})
		require.NoError(t, err)
	}

	marked, err := svc.MarkAllRead(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 4, marked)

	unread, err := svc.List(ctx, "1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	marked, err = svc.MarkAllRead(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestNotificationSendToRole(t *testing.T) {
	ctx := context.Background()
	publisher := &recordingPublisher{}
	svc, _ := newTestNotificationService(t, publisher)

	sent, err := svc.SendToRole(ctx, models.RoleOfficer, "Maintenance", "Portal offline at 22:00", models.NotificationWarning)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = svc.SendToRole(ctx, "", "Hello", "Everyone", models.NotificationInfo)
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Len(t, publisher.published(), 4)
}

func TestNotificationSendToRole_StopsOnExpiredContext(t *testing.T) {
	svc, _ := newTestNotificationService(t, &recordingPublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, err := svc.SendToRole(ctx, "", "Hello", "Everyone", models.NotificationInfo)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sent)
}
