package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/user"
)

type employeeRepositoryImpl struct {
	store *DB
}

func NewEmployeeRepository(store *DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{store: store}
}

const employeeSelect = `
	SELECT e.id, e.full_name, e.email, e.role, e.team_owner_id, e.sdm_id, e.location,
		tm.full_name, sdm.full_name
	FROM employees e
	LEFT JOIN employees tm ON tm.id = e.team_owner_id
	LEFT JOIN employees sdm ON sdm.id = e.sdm_id
`

const upsertEmployee = `
	INSERT INTO employees (id, full_name, email, role, team_owner_id, sdm_id, location)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		full_name = excluded.full_name,
		email = excluded.email,
		role = excluded.role,
		team_owner_id = excluded.team_owner_id,
		sdm_id = excluded.sdm_id,
		location = excluded.location
`

// Upsert implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Upsert(ctx context.Context, e employee.Employee) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, err := r.store.db.ExecContext(ctx, upsertEmployee, employeeArgs(e)...); err != nil {
		return fmt.Errorf("failed to upsert employee %s: %w", e.ID, err)
	}
	return nil
}

// UpsertAll implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpsertAll(ctx context.Context, employees []employee.Employee) error {
	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertEmployee)
		if err != nil {
			return fmt.Errorf("failed to prepare employee upsert: %w", err)
		}
		defer stmt.Close()

		for _, e := range employees {
			if _, err := stmt.ExecContext(ctx, employeeArgs(e)...); err != nil {
				return fmt.Errorf("failed to upsert employee %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

func employeeArgs(e employee.Employee) []any {
	return []any{e.ID, e.FullName, e.Email, string(e.Role), e.TeamOwnerID, e.SDMID, e.Location}
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	e, err := scanEmployee(r.store.db.QueryRowContext(ctx, employeeSelect+" WHERE e.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := employeeSelect + " WHERE e.id IN (?" + strings.Repeat(", ?", len(ids)-1) + ")"
	rows, err := r.store.db.QueryContext(ctx, query, args...)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (employee.Employee, error) {
	var e employee.Employee
	var role string
	var teamOwnerID, sdmID, teamOwnerName, sdmName sql.NullString
	if err := row.Scan(&e.ID, &e.FullName, &e.Email, &role, &teamOwnerID, &sdmID, &e.Location, &teamOwnerName, &sdmName); err != nil {
		return employee.Employee{}, err
	}
	e.Role = user.Role(role)
	e.TeamOwnerID = nullableString(teamOwnerID)
	e.SDMID = nullableString(sdmID)
	e.TeamOwnerName = nullableString(teamOwnerName)
	e.SDMName = nullableString(sdmName)
	return e, nil
}
