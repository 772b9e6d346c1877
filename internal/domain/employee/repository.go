package employee

import (
	"context"
)

type EmployeeRepository interface {
	Upsert(ctx context.Context, employee Employee) error
	// UpsertAll writes every employee or none of them.
	UpsertAll(ctx context.Context, employees []Employee) error
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByIDs returns the employees found, keyed by ID; missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []string) (map[string]Employee, error)
}
