package memory

import (
	"context"
	"sync"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/domain/employee"
	"github.com/hroffice/absence-backend-go/internal/domain/notification"
)

// Store is an in-process implementation of the persistence interfaces.
// All entities are held by value, so a snapshot is a set of map copies.
type Store struct {
	mu sync.RWMutex

	// txMu serializes transactions so snapshot and restore bracket a
	// single writer.
	txMu sync.Mutex

	types         map[string]absence.AbsenceType
	requests      map[string]absence.AbsenceRequest
	quotas        map[string]absence.AbsenceQuota
	steps         map[string][]absence.ApprovalStep
	holidays      []absence.Holiday
	employees     map[string]employee.Employee
	approvers     map[string][]string
	notifications map[string][]notification.Notification
}

func NewStore() *Store {
	return &Store{
		types:         make(map[string]absence.AbsenceType),
		requests:      make(map[string]absence.AbsenceRequest),
		quotas:        make(map[string]absence.AbsenceQuota),
		steps:         make(map[string][]absence.ApprovalStep),
		employees:     make(map[string]employee.Employee),
		approvers:     make(map[string][]string),
		notifications: make(map[string][]notification.Notification),
	}
}

type snapshot struct {
	types         map[string]absence.AbsenceType
	requests      map[string]absence.AbsenceRequest
	quotas        map[string]absence.AbsenceQuota
	steps         map[string][]absence.ApprovalStep
	notifications map[string][]notification.Notification
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		types:         make(map[string]absence.AbsenceType, len(s.types)),
		requests:      make(map[string]absence.AbsenceRequest, len(s.requests)),
		quotas:        make(map[string]absence.AbsenceQuota, len(s.quotas)),
		steps:         make(map[string][]absence.ApprovalStep, len(s.steps)),
		notifications: make(map[string][]notification.Notification, len(s.notifications)),
	}
	for k, v := range s.types {
		snap.types[k] = v
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	for k, v := range s.quotas {
		snap.quotas[k] = v
	}
	for k, v := range s.steps {
		snap.steps[k] = append([]absence.ApprovalStep(nil), v...)
	}
	for k, v := range s.notifications {
		snap.notifications[k] = append([]notification.Notification(nil), v...)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.types = snap.types
	s.requests = snap.requests
	s.quotas = snap.quotas
	s.steps = snap.steps
	s.notifications = snap.notifications
}

// WithinTransaction implements absence.Transactor. The store state is
// snapshotted before fn and restored if fn fails, matching the
// rollback behavior of the SQL implementation.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}
