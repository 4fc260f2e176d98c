package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
)

// AbsenceTypeRepository exposes the type table of a Store.
type AbsenceTypeRepository struct {
	store *Store
}

func NewAbsenceTypeRepository(store *Store) *AbsenceTypeRepository {
	return &AbsenceTypeRepository{store: store}
}

func (r *AbsenceTypeRepository) Create(ctx context.Context, absenceType absence.AbsenceType) (absence.AbsenceType, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if absenceType.ID == "" {
		absenceType.ID = uuid.New().String()
	}
	now := time.Now()
	absenceType.CreatedAt = now
	absenceType.UpdatedAt = now

	r.store.types[absenceType.ID] = absenceType
	return absenceType, nil
}

func (r *AbsenceTypeRepository) GetByID(ctx context.Context, id string) (absence.AbsenceType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	absenceType, ok := r.store.types[id]
	if !ok {
		return absence.AbsenceType{}, absence.ErrTypeNotFound
	}
	return absenceType, nil
}

func (r *AbsenceTypeRepository) List(ctx context.Context) ([]absence.AbsenceType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	types := make([]absence.AbsenceType, 0, len(r.store.types))
	for _, t := range r.store.types {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}
