package notification

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hroffice/absence-backend-go/internal/domain/notification"
	"github.com/hroffice/absence-backend-go/internal/pkg/sse"
	"github.com/hroffice/absence-backend-go/internal/repository/memory"
)

func newTestService(t *testing.T, cfg Config) (notification.Service, *sse.Hub) {
	t.Helper()

	store := memory.NewStore()
	repo := memory.NewNotificationRepository(store)
	hub := sse.NewHub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewNotificationService(repo, hub, logger, cfg)
	t.Cleanup(svc.Stop)

	return svc, hub
}

func submittedEvent(recipientID, requestID string) notification.Event {
	return notification.Event{
		RecipientID: recipientID,
		RequestID:   requestID,
		Type:        notification.TypeAbsenceSubmitted,
		Title:       "Absence request submitted",
		Message:     "Mara Voss requested absence from 2026-03-02 to 2026-03-06",
	}
}

func waitForTotal(t *testing.T, svc notification.Service, recipientID string, want int) *notification.NotificationListResponse {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		list, err := svc.GetNotifications(context.Background(), recipientID, 1, 20, false)
		require.NoError(t, err)
		if list.Total == want {
			return list
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("recipient %s never reached %d notifications", recipientID, want)
	return nil
}

func TestDispatchPersistsNotification(t *testing.T) {
	svc, _ := newTestService(t, Config{BatchSize: 1, FlushInterval: 10 * time.Millisecond})
	ctx := context.Background()

	svc.Dispatch(ctx, submittedEvent("approver-1", "req-1"))

	list := waitForTotal(t, svc, "approver-1", 1)
	assert.Equal(t, 1, list.UnreadCount)
	assert.Equal(t, notification.TypeAbsenceSubmitted, list.Notifications[0].Type)
	assert.Contains(t, list.Notifications[0].Message, "Mara Voss")
	assert.False(t, list.Notifications[0].IsRead)
}

func TestDispatchBatchesMultipleEvents(t *testing.T) {
	svc, _ := newTestService(t, Config{BatchSize: 3, FlushInterval: 10 * time.Millisecond})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		svc.Dispatch(ctx, submittedEvent("approver-1", "req-1"))
	}

	waitForTotal(t, svc, "approver-1", 5)
}

func TestStopFlushesPendingEvents(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewNotificationRepository(store)
	hub := sse.NewHub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Long flush interval so only shutdown can drain the batch.
	svc := NewNotificationService(repo, hub, logger, Config{
		BatchSize:     100,
		FlushInterval: time.Hour,
		WorkerCount:   1,
	})

	svc.Dispatch(context.Background(), submittedEvent("approver-1", "req-1"))

	// Give the worker a moment to pull the event into its batch.
	time.Sleep(50 * time.Millisecond)
	svc.Stop()

	notifications, total, err := repo.GetByRecipientID(context.Background(), "approver-1", 1, 20, false)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notifications, 1)
}

func TestMarkAsRead(t *testing.T) {
	svc, _ := newTestService(t, Config{BatchSize: 1, FlushInterval: 10 * time.Millisecond})
	ctx := context.Background()

	svc.Dispatch(ctx, submittedEvent("approver-1", "req-1"))
	svc.Dispatch(ctx, submittedEvent("approver-1", "req-2"))
	list := waitForTotal(t, svc, "approver-1", 2)

	err := svc.MarkAsRead(ctx, "approver-1", notification.MarkAsReadRequest{
		NotificationIDs: []string{list.Notifications[0].ID},
	})
	require.NoError(t, err)

	count, err := svc.GetUnreadCount(ctx, "approver-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Empty id list is rejected up front.
	err = svc.MarkAsRead(ctx, "approver-1", notification.MarkAsReadRequest{})
	assert.Error(t, err)
}

func TestMarkAllAsRead(t *testing.T) {
	svc, _ := newTestService(t, Config{BatchSize: 1, FlushInterval: 10 * time.Millisecond})
	ctx := context.Background()

	svc.Dispatch(ctx, submittedEvent("approver-1", "req-1"))
	svc.Dispatch(ctx, submittedEvent("approver-1", "req-2"))
	waitForTotal(t, svc, "approver-1", 2)

	require.NoError(t, svc.MarkAllAsRead(ctx, "approver-1"))

	count, err := svc.GetUnreadCount(ctx, "approver-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	unread, err := svc.GetNotifications(ctx, "approver-1", 1, 20, true)
	require.NoError(t, err)
	assert.Empty(t, unread.Notifications)
}

func TestSubscribeReceivesDispatchedEvents(t *testing.T) {
	svc, _ := newTestService(t, Config{BatchSize: 1, FlushInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, cleanup := svc.Subscribe(ctx, "approver-1")
	defer cleanup()

	svc.Dispatch(ctx, submittedEvent("approver-1", "req-1"))

	select {
	case event := <-events:
		assert.Equal(t, notification.TypeAbsenceSubmitted, event.Type)
		assert.Equal(t, "req-1", event.RequestID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received on subscription")
	}
}

func TestSubscribeIsScopedToRecipient(t *testing.T) {
	svc, _ := newTestService(t, Config{BatchSize: 1, FlushInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, cleanup := svc.Subscribe(ctx, "approver-2")
	defer cleanup()

	svc.Dispatch(ctx, submittedEvent("approver-1", "req-1"))
	waitForTotal(t, svc, "approver-1", 1)

	select {
	case event := <-events:
		t.Fatalf("unexpected event for other recipient: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}
