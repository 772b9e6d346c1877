package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.full_name, e.email, e.role, e.team_owner_id, e.sdm_id, e.location,
	tm.full_name, sdm.full_name
	FROM employees e
	LEFT JOIN employees tm ON tm.id = e.team_owner_id
	LEFT JOIN employees sdm ON sdm.id = e.sdm_id
`

// Upsert implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Upsert(ctx context.Context, e employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employees (id, full_name, email, role, team_owner_id, sdm_id, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			team_owner_id = EXCLUDED.team_owner_id,
			sdm_id = EXCLUDED.sdm_id,
			location = EXCLUDED.location,
			updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, e.ID, e.FullName, e.Email, string(e.Role), e.TeamOwnerID, e.SDMID, e.Location); err != nil {
		return fmt.Errorf("failed to upsert employee %s: %w", e.ID, err)
	}
	return nil
}

// UpsertAll implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpsertAll(ctx context.Context, employees []employee.Employee) error {
	return WithTransaction(ctx, r.db, func(ctx context.Context, _ pgx.Tx) error {
		for _, e := range employees {
			if err := r.Upsert(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, "SELECT "+employeeColumns+" WHERE e.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee %s: %w", id, err)
	}
	return e, nil
}

// GetByIDs implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByIDs(ctx context.Context, ids []string) (map[string]employee.Employee, error) {
	out := make(map[string]employee.Employee, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, "SELECT "+employeeColumns+" WHERE e.id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out[e.ID] = e
	}
	return out, rows.Err()
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	var role string
	err := row.Scan(
		&e.ID,
		&e.FullName,
		&e.Email,
		&role,
		&e.TeamOwnerID,
		&e.SDMID,
		&e.Location,
		&e.TeamOwnerName,
		&e.SDMName,
	)
	e.Role = user.Role(role)
	return e, err
}
