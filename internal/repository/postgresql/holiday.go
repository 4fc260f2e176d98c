package postgresql

import (
	"context"
	"time"

	"github.com/hroffice/absence-backend-go/internal/domain/absence"
	"github.com/hroffice/absence-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) absence.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// GetByDateRange implements absence.HolidayRepository.
func (r *holidayRepositoryImpl) GetByDateRange(ctx context.Context, start, end time.Time) ([]absence.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, date, name
		FROM holidays
		WHERE date BETWEEN $1 AND $2
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]absence.Holiday, 0)
	for rows.Next() {
		var holiday absence.Holiday
		if err := rows.Scan(&holiday.ID, &holiday.Date, &holiday.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, holiday)
	}

	return holidays, nil
}
