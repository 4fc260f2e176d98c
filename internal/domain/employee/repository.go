package employee

import "context"

// ApproverResolver names the employees who should be told about a new
// submission. Approval routing policy lives outside the engine.
type ApproverResolver interface {
	ApproversFor(ctx context.Context, employeeID string) ([]string, error)
}

// EmployeeRepository - interface for employees table
type EmployeeRepository interface {
	Create(ctx context.Context, emp Employee) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
}
