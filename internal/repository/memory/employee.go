package memory

import (
	"context"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
)

type employeeRepositoryImpl struct {
	store *Store
}

func NewEmployeeRepository(store *Store) employee.EmployeeRepository {
	return &employeeRepositoryImpl{store: store}
}

// Upsert implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Upsert(_ context.Context, e employee.Employee) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e.TeamOwnerName, e.SDMName = nil, nil
	r.store.employees[e.ID] = e
	return nil
}

// UpsertAll implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpsertAll(_ context.Context, employees []employee.Employee) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, e := range employees {
		e.TeamOwnerName, e.SDMName = nil, nil
		r.store.employees[e.ID] = e
	}
	return nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(_ context.Context, id string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	e, ok := r.store.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.withManagersLocked(e), nil
}

// GetByIDs implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByIDs(_ context.Context, ids []string) (map[string]employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make(map[string]employee.Employee, len(ids))
	for _, id := range ids {
		if e, ok := r.store.employees[id]; ok {
			out[id] = r.withManagersLocked(e)
		}
	}
	return out, nil
}

func (r *employeeRepositoryImpl) withManagersLocked(e employee.Employee) employee.Employee {
	if e.TeamOwnerID != nil {
		e.TeamOwnerName = r.store.nameLocked(*e.TeamOwnerID)
	}
	if e.SDMID != nil {
		e.SDMName = r.store.nameLocked(*e.SDMID)
	}
	return e
}
