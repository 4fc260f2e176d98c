package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hroffice/absence-backend-go/internal/domain/notification"
)

// NotificationRepository exposes the notification sink of a Store.
type NotificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.append(n)
	return nil
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, n := range notifications {
		r.append(n)
	}
	return nil
}

// Caller holds the write lock.
func (r *NotificationRepository) append(n *notification.Notification) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.store.notifications[n.RecipientID] = append(r.store.notifications[n.RecipientID], *n)
}

func (r *NotificationRepository) GetByRecipientID(ctx context.Context, recipientID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []notification.Notification
	for _, n := range r.store.notifications[recipientID] {
		if unreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	offset := (page - 1) * pageSize
	if offset >= total {
		return nil, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}

	result := make([]*notification.Notification, 0, end-offset)
	for i := offset; i < end; i++ {
		n := matched[i]
		result = append(result, &n)
	}
	return result, total, nil
}

func (r *NotificationRepository) GetUnreadCount(ctx context.Context, recipientID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, n := range r.store.notifications[recipientID] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, ids []string, recipientID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	now := time.Now()
	list := r.store.notifications[recipientID]
	for i := range list {
		if _, ok := idSet[list[i].ID]; ok && !list[i].IsRead {
			list[i].IsRead = true
			list[i].ReadAt = &now
		}
	}
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, recipientID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	list := r.store.notifications[recipientID]
	for i := range list {
		if !list[i].IsRead {
			list[i].IsRead = true
			list[i].ReadAt = &now
		}
	}
	return nil
}
