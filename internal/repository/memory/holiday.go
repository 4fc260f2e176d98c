package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
)

// HolidayRepository exposes the holiday calendar of a Store.
type HolidayRepository struct {
	store *Store
}

func NewHolidayRepository(store *Store) *HolidayRepository {
	return &HolidayRepository{store: store}
}

// Add seeds a holiday date.
func (r *HolidayRepository) Add(holiday absence.Holiday) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if holiday.ID == "" {
		holiday.ID = uuid.New().String()
	}
	r.store.holidays = append(r.store.holidays, holiday)
}

func (r *HolidayRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]absence.Holiday, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var holidays []absence.Holiday
	for _, h := range r.store.holidays {
		if !h.Date.Before(start) && !h.Date.After(end) {
			holidays = append(holidays, h)
		}
	}
	return holidays, nil
}
