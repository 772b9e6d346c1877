package employee

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
	}
}

// Import implements employee.EmployeeService.
func (s *EmployeeServiceImpl) Import(ctx context.Context, r io.Reader) (int, error) {
	var entries []employee.ImportEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("failed to decode employee directory: %w", err)
	}

	var errs validator.ValidationErrors
	seen := make(map[string]bool, len(entries))
	for i := range entries {
		errs = append(errs, entries[i].Validate(i)...)
		if seen[entries[i].ID] {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("employees[%d].id", i),
				Message: "duplicate id " + entries[i].ID,
			})
		}
		seen[entries[i].ID] = true
	}
	if len(errs) > 0 {
		return 0, errs
	}

	employees := make([]employee.Employee, len(entries))
	for i, entry := range entries {
		employees[i] = entry.Employee()
	}
	if err := s.employeeRepo.UpsertAll(ctx, employees); err != nil {
		return 0, fmt.Errorf("failed to import employee directory: %w", err)
	}

	slog.Info("employee directory imported", "count", len(entries))
	return len(entries), nil
}

// GetMe implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetMe(ctx context.Context, actor user.Actor) (employee.EmployeeResponse, error) {
	e, err := s.employeeRepo.GetByID(ctx, actor.EmployeeID)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee.NewEmployeeResponse(e), nil
}
