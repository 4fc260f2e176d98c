package employee

import "time"

// Employee entity, trimmed to what the absence engine needs. Org data,
// positions, and contracts live in the upstream HR system.
type Employee struct {
	ID       string
	FullName string
	Email    *string

	// Per-employee vacation entitlement override in days per year. When
	// nil, the absence type's default applies.
	AnnualEntitlement *float64

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
