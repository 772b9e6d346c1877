package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
)

type wfhRequestRepositoryImpl struct {
	store *DB
}

func NewWfhRequestRepository(store *DB) wfh.RequestRepository {
	return &wfhRequestRepositoryImpl{store: store}
}

const requestSelect = `
	SELECT r.id, r.employee_id, r.requested_start_date, r.requested_end_date, r.reason, r.category,
		r.priority, r.term_duration_days, r.attachment_path, r.team_owner_id, r.sdm_id, r.location,
		r.submitted_at, r.updated_at, e.full_name, tm.full_name, sdm.full_name
	FROM wfh_requests r
	LEFT JOIN employees e ON e.id = r.employee_id
	LEFT JOIN employees tm ON tm.id = r.team_owner_id
	LEFT JOIN employees sdm ON sdm.id = r.sdm_id
`

// Create implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) Create(ctx context.Context, request wfh.Request) (wfh.Request, error) {
	if err := request.CheckChain(); err != nil {
		return wfh.Request{}, err
	}

	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO wfh_requests (id, employee_id, requested_start_date, requested_end_date, reason, category,
				priority, term_duration_days, attachment_path, team_owner_id, sdm_id, location, submitted_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			request.ID,
			request.EmployeeID,
			request.StartDate.Format(dateLayout),
			request.EndDate.Format(dateLayout),
			request.Reason,
			string(request.Category),
			string(request.Priority),
			request.TermDurationDays,
			request.AttachmentPath,
			request.TeamOwnerID,
			request.SeniorManagerID,
			request.Location,
			request.SubmittedAt.UTC().Format(timestampLayout),
			request.UpdatedAt.UTC().Format(timestampLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to insert wfh request: %w", err)
		}

		for i, rec := range request.Approvals {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO wfh_approvals (request_id, stage, stage_order, status, acted_by, action_date)
				VALUES (?, ?, ?, ?, ?, ?)
			`, request.ID, string(rec.Stage), i, string(rec.Status), rec.ActedBy, formatTime(rec.ActionDate))
			if err != nil {
				return fmt.Errorf("failed to insert %s approval: %w", rec.Stage, err)
			}
		}
		return nil
	})
	if err != nil {
		return wfh.Request{}, wfh.Collaborator("create wfh request", err)
	}

	return r.GetByID(ctx, request.ID)
}

// GetByID implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) GetByID(ctx context.Context, id string) (wfh.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	requests, err := r.query(ctx, requestSelect+" WHERE r.id = ?", id)
	if err != nil {
		return wfh.Request{}, wfh.Collaborator("get wfh request", err)
	}
	if len(requests) == 0 {
		return wfh.Request{}, wfh.ErrRequestNotFound
	}
	return requests[0], nil
}

// List implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) List(ctx context.Context, filter wfh.RequestFilter) ([]wfh.Request, error) {
	var conditions []string
	var args []any

	switch filter.Scope.Kind {
	case wfh.ScopeEmployee:
		conditions, args = append(conditions, "r.employee_id = ?"), append(args, filter.Scope.ID)
	case wfh.ScopeTeam:
		conditions, args = append(conditions, "r.team_owner_id = ?"), append(args, filter.Scope.ID)
	case wfh.ScopeSDM:
		conditions, args = append(conditions, "r.sdm_id = ?"), append(args, filter.Scope.ID)
	case wfh.ScopeAll:
	default:
		return []wfh.Request{}, nil
	}
	if filter.EmployeeID != nil {
		conditions, args = append(conditions, "r.employee_id = ?"), append(args, *filter.EmployeeID)
	}
	if filter.TeamOwnerID != nil {
		conditions, args = append(conditions, "r.team_owner_id = ?"), append(args, *filter.TeamOwnerID)
	}
	if filter.SDMID != nil {
		conditions, args = append(conditions, "r.sdm_id = ?"), append(args, *filter.SDMID)
	}
	// ISO dates compare correctly as text
	if filter.From != nil {
		conditions, args = append(conditions, "r.requested_end_date >= ?"), append(args, filter.From.Format(dateLayout))
	}
	if filter.To != nil {
		conditions, args = append(conditions, "r.requested_start_date <= ?"), append(args, filter.To.Format(dateLayout))
	}

	query := requestSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.submitted_at ASC, r.rowid ASC"

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	requests, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, wfh.Collaborator("list wfh requests", err)
	}
	return requests, nil
}

// Update implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) Update(ctx context.Context, request wfh.Request) error {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := firstStagePending(ctx, tx, request.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE wfh_requests
			SET requested_start_date = ?, requested_end_date = ?, reason = ?, category = ?, priority = ?,
				term_duration_days = ?, attachment_path = ?, location = ?, updated_at = ?
			WHERE id = ?
		`,
			request.StartDate.Format(dateLayout),
			request.EndDate.Format(dateLayout),
			request.Reason,
			string(request.Category),
			string(request.Priority),
			request.TermDurationDays,
			request.AttachmentPath,
			request.Location,
			request.UpdatedAt.UTC().Format(timestampLayout),
			request.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update wfh request: %w", err)
		}
		return nil
	})
	return wfh.Collaborator("update wfh request", err)
}

// UpdateStage implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) UpdateStage(ctx context.Context, requestID string, record wfh.ApprovalRecord, updatedAt time.Time) error {
	if !record.Stage.IsValid() {
		return wfh.ErrInvalidStage
	}

	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE wfh_approvals SET status = ?, acted_by = ?, action_date = ?
			WHERE request_id = ? AND stage = ? AND status = ?
		`, string(record.Status), record.ActedBy, formatTime(record.ActionDate), requestID, string(record.Stage), string(wfh.StatusPending))
		if err != nil {
			return fmt.Errorf("failed to update approval: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update approval: %w", err)
		}
		if n == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM wfh_requests WHERE id = ?)", requestID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check wfh request: %w", err)
			}
			if !exists {
				return wfh.ErrRequestNotFound
			}
			return wfh.ErrAlreadyDecided
		}

		if _, err := tx.ExecContext(ctx, "UPDATE wfh_requests SET updated_at = ? WHERE id = ?", updatedAt.UTC().Format(timestampLayout), requestID); err != nil {
			return fmt.Errorf("failed to touch wfh request: %w", err)
		}
		return nil
	})
	return wfh.Collaborator("update wfh approval", err)
}

// Delete implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := firstStagePending(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM wfh_requests WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete wfh request: %w", err)
		}
		return nil
	})
	return wfh.Collaborator("delete wfh request", err)
}

func firstStagePending(ctx context.Context, tx *sql.Tx, requestID string) error {
	var status string
	err := tx.QueryRowContext(ctx, "SELECT status FROM wfh_approvals WHERE request_id = ? AND stage = ?",
		requestID, string(wfh.Stages[0])).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return wfh.ErrRequestNotFound
		}
		return fmt.Errorf("failed to read approval: %w", err)
	}
	if wfh.ApprovalStatus(status) != wfh.StatusPending {
		return wfh.ErrAlreadyInProgress
	}
	return nil
}

// query runs a request select and attaches each request's approval chain.
// Callers hold at least the read lock.
func (r *wfhRequestRepositoryImpl) query(ctx context.Context, query string, args ...any) ([]wfh.Request, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []wfh.Request{}
	index := map[string]int{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		index[request.ID] = len(requests)
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return requests, nil
	}

	placeholders := "?" + strings.Repeat(", ?", len(requests)-1)
	ids := make([]any, len(requests))
	for i, request := range requests {
		ids[i] = request.ID
	}
	approvalRows, err := r.store.db.QueryContext(ctx, `
		SELECT request_id, stage, status, acted_by, action_date
		FROM wfh_approvals
		WHERE request_id IN (`+placeholders+`)
		ORDER BY request_id, stage_order
	`, ids...)
	if err != nil {
		return nil, err
	}
	defer approvalRows.Close()

	for approvalRows.Next() {
		var requestID, stage, status string
		var actedBy, actionDate sql.NullString
		if err := approvalRows.Scan(&requestID, &stage, &status, &actedBy, &actionDate); err != nil {
			return nil, err
		}
		i := index[requestID]
		requests[i].Approvals = append(requests[i].Approvals, wfh.ApprovalRecord{
			Stage:      wfh.Stage(stage),
			Status:     wfh.ApprovalStatus(status),
			ActedBy:    nullableString(actedBy),
			ActionDate: parseTime(actionDate),
		})
	}
	return requests, approvalRows.Err()
}

func scanRequest(row scanner) (wfh.Request, error) {
	var request wfh.Request
	var start, end, category, priority, submittedAt, updatedAt string
	var attachment, employeeName, teamOwnerName, sdmName sql.NullString
	err := row.Scan(
		&request.ID,
		&request.EmployeeID,
		&start,
		&end,
		&request.Reason,
		&category,
		&priority,
		&request.TermDurationDays,
		&attachment,
		&request.TeamOwnerID,
		&request.SeniorManagerID,
		&request.Location,
		&submittedAt,
		&updatedAt,
		&employeeName,
		&teamOwnerName,
		&sdmName,
	)
	if err != nil {
		return wfh.Request{}, err
	}

	if request.StartDate, err = time.Parse(dateLayout, start); err != nil {
		return wfh.Request{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	if request.EndDate, err = time.Parse(dateLayout, end); err != nil {
		return wfh.Request{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if request.SubmittedAt, err = time.Parse(timestampLayout, submittedAt); err != nil {
		return wfh.Request{}, fmt.Errorf("invalid submitted_at %q: %w", submittedAt, err)
	}
	if request.UpdatedAt, err = time.Parse(timestampLayout, updatedAt); err != nil {
		return wfh.Request{}, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	request.Category = wfh.Category(category)
	request.Priority = wfh.Priority(priority)
	request.AttachmentPath = nullableString(attachment)
	request.EmployeeName = nullableString(employeeName)
	request.TeamOwnerName = nullableString(teamOwnerName)
	request.SDMName = nullableString(sdmName)
	return request, nil
}
