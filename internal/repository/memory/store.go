// Package memory keeps employees and WFH requests in process memory. It backs
// DB_DRIVER=memory and service tests.
package memory

import (
	"sync"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
)

// Store is shared by the repositories of this package. One mutex guards both
// tables so a stage update sees a consistent request.
type Store struct {
	mu        sync.RWMutex
	employees map[string]employee.Employee
	requests  map[string]wfh.Request
	order     []string // request ids by insertion
}

func NewStore() *Store {
	return &Store{
		employees: make(map[string]employee.Employee),
		requests:  make(map[string]wfh.Request),
	}
}

// withNamesLocked fills the display names from the employee table.
func (s *Store) withNamesLocked(r wfh.Request) wfh.Request {
	r = r.Clone()
	r.EmployeeName = s.nameLocked(r.EmployeeID)
	r.TeamOwnerName = s.nameLocked(r.TeamOwnerID)
	r.SDMName = s.nameLocked(r.SeniorManagerID)
	return r
}

func (s *Store) nameLocked(id string) *string {
	e, ok := s.employees[id]
	if !ok {
		return nil
	}
	name := e.FullName
	return &name
}
