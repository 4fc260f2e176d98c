package notification

import (
	"context"
)

// Dispatcher emits lifecycle events to the notification sink.
// Fire-and-forget relative to the state machine: implementations log
// failures and never surface them to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, event Event)
}

// Service is the inbox-facing surface on top of the sink.
type Service interface {
	Dispatcher

	GetNotifications(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkAsRead(ctx context.Context, recipientID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, recipientID string) error
	Subscribe(ctx context.Context, recipientID string) (<-chan NotificationResponse, func())
	Stop()
}
