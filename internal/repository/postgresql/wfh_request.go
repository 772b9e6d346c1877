package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type wfhRequestRepositoryImpl struct {
	db *database.DB
}

func NewWfhRequestRepository(db *database.DB) wfh.RequestRepository {
	return &wfhRequestRepositoryImpl{db: db}
}

const requestColumns = `
	r.id, r.employee_id, r.requested_start_date, r.requested_end_date, r.reason, r.category,
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

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO wfh_requests (id, employee_id, requested_start_date, requested_end_date, reason, category,
				priority, term_duration_days, attachment_path, team_owner_id, sdm_id, location, submitted_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		_, err := tx.Exec(ctx, query,
			request.ID,
			request.EmployeeID,
			request.StartDate,
			request.EndDate,
			request.Reason,
			string(request.Category),
			string(request.Priority),
			request.TermDurationDays,
			request.AttachmentPath,
			request.TeamOwnerID,
			request.SeniorManagerID,
			request.Location,
			request.SubmittedAt,
			request.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert wfh request: %w", err)
		}

		for i, rec := range request.Approvals {
			_, err := tx.Exec(ctx, `
				INSERT INTO wfh_approvals (request_id, stage, stage_order, status, acted_by, action_date)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, request.ID, string(rec.Stage), i, string(rec.Status), rec.ActedBy, rec.ActionDate)
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
	q := GetQuerier(ctx, r.db)

	request, err := scanRequest(q.QueryRow(ctx, "SELECT "+requestColumns+" WHERE r.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wfh.Request{}, wfh.ErrRequestNotFound
		}
		return wfh.Request{}, wfh.Collaborator("get wfh request", err)
	}

	approvals, err := r.loadApprovals(ctx, q, []string{id})
	if err != nil {
		return wfh.Request{}, wfh.Collaborator("get wfh approvals", err)
	}
	request.Approvals = approvals[id]
	return request, nil
}

// List implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) List(ctx context.Context, filter wfh.RequestFilter) ([]wfh.Request, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1
	add := func(condition string, value interface{}) {
		whereClause += fmt.Sprintf(" AND "+condition, argIndex)
		args = append(args, value)
		argIndex++
	}

	switch filter.Scope.Kind {
	case wfh.ScopeEmployee:
		add("r.employee_id = $%d", filter.Scope.ID)
	case wfh.ScopeTeam:
		add("r.team_owner_id = $%d", filter.Scope.ID)
	case wfh.ScopeSDM:
		add("r.sdm_id = $%d", filter.Scope.ID)
	case wfh.ScopeAll:
	default:
		return []wfh.Request{}, nil
	}
	if filter.EmployeeID != nil {
		add("r.employee_id = $%d", *filter.EmployeeID)
	}
	if filter.TeamOwnerID != nil {
		add("r.team_owner_id = $%d", *filter.TeamOwnerID)
	}
	if filter.SDMID != nil {
		add("r.sdm_id = $%d", *filter.SDMID)
	}
	if filter.From != nil {
		add("r.requested_end_date >= $%d", wfh.DateOnly(*filter.From))
	}
	if filter.To != nil {
		add("r.requested_start_date <= $%d", wfh.DateOnly(*filter.To))
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.submitted_at ASC, r.id ASC", requestColumns, whereClause)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, wfh.Collaborator("list wfh requests", err)
	}
	defer rows.Close()

	requests := []wfh.Request{}
	var ids []string
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, wfh.Collaborator("scan wfh request", err)
		}
		requests = append(requests, request)
		ids = append(ids, request.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, wfh.Collaborator("list wfh requests", err)
	}
	if len(ids) == 0 {
		return requests, nil
	}

	approvals, err := r.loadApprovals(ctx, q, ids)
	if err != nil {
		return nil, wfh.Collaborator("list wfh approvals", err)
	}
	for i := range requests {
		requests[i].Approvals = approvals[requests[i].ID]
	}
	return requests, nil
}

// Update implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) Update(ctx context.Context, request wfh.Request) error {
	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := lockFirstStagePending(ctx, tx, request.ID); err != nil {
			return err
		}

		query := `
			UPDATE wfh_requests
			SET requested_start_date = $1, requested_end_date = $2, reason = $3, category = $4,
				priority = $5, term_duration_days = $6, attachment_path = $7, location = $8, updated_at = $9
			WHERE id = $10
		`
		_, err := tx.Exec(ctx, query,
			request.StartDate,
			request.EndDate,
			request.Reason,
			string(request.Category),
			string(request.Priority),
			request.TermDurationDays,
			request.AttachmentPath,
			request.Location,
			request.UpdatedAt,
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

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		// Conditional on PENDING so concurrent deciders cannot both win
		tag, err := tx.Exec(ctx, `
			UPDATE wfh_approvals
			SET status = $1, acted_by = $2, action_date = $3
			WHERE request_id = $4 AND stage = $5 AND status = $6
		`, string(record.Status), record.ActedBy, record.ActionDate, requestID, string(record.Stage), string(wfh.StatusPending))
		if err != nil {
			return fmt.Errorf("failed to update approval: %w", err)
		}
		if tag.RowsAffected() == 0 {
			exists, err := requestExists(ctx, tx, requestID)
			if err != nil {
				return err
			}
			if !exists {
				return wfh.ErrRequestNotFound
			}
			return wfh.ErrAlreadyDecided
		}

		if _, err := tx.Exec(ctx, "UPDATE wfh_requests SET updated_at = $1 WHERE id = $2", updatedAt, requestID); err != nil {
			return fmt.Errorf("failed to touch wfh request: %w", err)
		}
		return nil
	})
	return wfh.Collaborator("update wfh approval", err)
}

// Delete implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) Delete(ctx context.Context, id string) error {
	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := lockFirstStagePending(ctx, tx, id); err != nil {
			return err
		}
		// Approvals go with the request via ON DELETE CASCADE
		if _, err := tx.Exec(ctx, "DELETE FROM wfh_requests WHERE id = $1", id); err != nil {
			return fmt.Errorf("failed to delete wfh request: %w", err)
		}
		return nil
	})
	return wfh.Collaborator("delete wfh request", err)
}

// lockFirstStagePending row-locks the first approval and checks it is still PENDING.
func lockFirstStagePending(ctx context.Context, tx pgx.Tx, requestID string) error {
	var status string
	err := tx.QueryRow(ctx, `
		SELECT status FROM wfh_approvals
		WHERE request_id = $1 AND stage = $2
		FOR UPDATE
	`, requestID, string(wfh.Stages[0])).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return wfh.ErrRequestNotFound
		}
		return fmt.Errorf("failed to lock approval: %w", err)
	}
	if wfh.ApprovalStatus(status) != wfh.StatusPending {
		return wfh.ErrAlreadyInProgress
	}
	return nil
}

func requestExists(ctx context.Context, q database.Querier, id string) (bool, error) {
	var exists bool
	if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM wfh_requests WHERE id = $1)", id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check wfh request: %w", err)
	}
	return exists, nil
}

// loadApprovals returns the approval chains of ids, each ordered by stage.
func (r *wfhRequestRepositoryImpl) loadApprovals(ctx context.Context, q database.Querier, ids []string) (map[string][]wfh.ApprovalRecord, error) {
	rows, err := q.Query(ctx, `
		SELECT request_id, stage, status, acted_by, action_date
		FROM wfh_approvals
		WHERE request_id = ANY($1)
		ORDER BY request_id, stage_order
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]wfh.ApprovalRecord, len(ids))
	for rows.Next() {
		var requestID, stage, status string
		var rec wfh.ApprovalRecord
		if err := rows.Scan(&requestID, &stage, &status, &rec.ActedBy, &rec.ActionDate); err != nil {
			return nil, err
		}
		rec.Stage = wfh.Stage(stage)
		rec.Status = wfh.ApprovalStatus(status)
		out[requestID] = append(out[requestID], rec)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (wfh.Request, error) {
	var request wfh.Request
	var category, priority string
	err := row.Scan(
		&request.ID,
		&request.EmployeeID,
		&request.StartDate,
		&request.EndDate,
		&request.Reason,
		&category,
		&priority,
		&request.TermDurationDays,
		&request.AttachmentPath,
		&request.TeamOwnerID,
		&request.SeniorManagerID,
		&request.Location,
		&request.SubmittedAt,
		&request.UpdatedAt,
		&request.EmployeeName,
		&request.TeamOwnerName,
		&request.SDMName,
	)
	if err != nil {
		return wfh.Request{}, err
	}
	request.Category = wfh.Category(category)
	request.Priority = wfh.Priority(priority)
	request.StartDate = wfh.DateOnly(request.StartDate)
	request.EndDate = wfh.DateOnly(request.EndDate)
	return request, nil
}
