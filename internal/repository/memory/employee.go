package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hroffice/absence-backend-go/internal/domain/employee"
)

// EmployeeRepository exposes the employee table of a Store.
type EmployeeRepository struct {
	store *Store
}

func NewEmployeeRepository(store *Store) *EmployeeRepository {
	return &EmployeeRepository{store: store}
}

func (r *EmployeeRepository) Create(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}
	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	r.store.employees[emp.ID] = emp
	return emp, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	emp, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

// ApproverResolver reads the approver routing table of a Store.
type ApproverResolver struct {
	store *Store
}

func NewApproverResolver(store *Store) *ApproverResolver {
	return &ApproverResolver{store: store}
}

// SetApprovers assigns the notification recipients for an employee's
// submissions.
func (r *ApproverResolver) SetApprovers(employeeID string, approverIDs []string) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.approvers[employeeID] = approverIDs
}

func (r *ApproverResolver) ApproversFor(ctx context.Context, employeeID string) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]string(nil), r.store.approvers[employeeID]...), nil
}
