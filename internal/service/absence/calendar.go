package absence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/pkg/validator"
)

// CountWorkingDays counts the days in [start, end] inclusive that are
// neither Saturday, Sunday, nor present in holidays (keyed by
// validator.DateKey). If halfDay is set the count is halved.
// Deterministic and free of I/O.
func CountWorkingDays(start, end time.Time, holidays map[string]struct{}, halfDay bool) (float64, error) {
	if end.Before(start) {
		return 0, absence.ErrInvalidDateRange
	}

	days := decimal.Zero
	one := decimal.NewFromInt(1)

	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		if current.Weekday() == time.Saturday || current.Weekday() == time.Sunday {
			continue
		}
		if _, ok := holidays[validator.DateKey(current)]; ok {
			continue
		}
		days = days.Add(one)
	}

	if halfDay {
		days = days.Div(decimal.NewFromInt(2))
	}

	return days.InexactFloat64(), nil
}

// Calendar resolves the holiday set and delegates to CountWorkingDays.
type Calendar struct {
	absence.HolidayRepository
}

func NewCalendar(holidayRepository absence.HolidayRepository) *Calendar {
	return &Calendar{HolidayRepository: holidayRepository}
}

func (c *Calendar) WorkingDays(ctx context.Context, start, end time.Time, halfDay bool) (float64, error) {
	if end.Before(start) {
		return 0, absence.ErrInvalidDateRange
	}

	holidays, err := c.HolidayRepository.GetByDateRange(ctx, start, end)
	if err != nil {
		return 0, err
	}

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[validator.DateKey(h.Date)] = struct{}{}
	}

	return CountWorkingDays(start, end, holidaySet, halfDay)
}
