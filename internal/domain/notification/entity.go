package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeAbsenceSubmitted NotificationType = "absence_submitted"
	TypeAbsenceApproved  NotificationType = "absence_approved"
	TypeAbsenceRejected  NotificationType = "absence_rejected"
	TypeAbsenceWithdrawn NotificationType = "absence_withdrawn"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeAbsenceSubmitted,
		TypeAbsenceApproved,
		TypeAbsenceRejected,
		TypeAbsenceWithdrawn,
	}
}

// Notification is a write-only record derived from a lifecycle transition.
// The engine never reads notifications back to make decisions.
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	RequestID   string
	Type        NotificationType
	Title       string
	Message     string
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
