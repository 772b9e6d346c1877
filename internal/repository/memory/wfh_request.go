package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
)

type wfhRequestRepositoryImpl struct {
	store *Store
}

func NewWfhRequestRepository(store *Store) wfh.RequestRepository {
	return &wfhRequestRepositoryImpl{store: store}
}

// Create implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) Create(_ context.Context, request wfh.Request) (wfh.Request, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.requests[request.ID]; !exists {
		r.store.order = append(r.store.order, request.ID)
	}
	r.store.requests[request.ID] = request.Clone()
	return r.store.withNamesLocked(request), nil
}

// GetByID implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) GetByID(_ context.Context, id string) (wfh.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	request, ok := r.store.requests[id]
	if !ok {
		return wfh.Request{}, wfh.ErrRequestNotFound
	}
	return r.store.withNamesLocked(request), nil
}

// List implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) List(_ context.Context, filter wfh.RequestFilter) ([]wfh.Request, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := []wfh.Request{}
	for _, id := range r.store.order {
		request, ok := r.store.requests[id]
		if !ok || !filter.Matches(request) {
			continue
		}
		out = append(out, r.store.withNamesLocked(request))
	}
	return out, nil
}

// Update implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) Update(_ context.Context, request wfh.Request) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.requests[request.ID]
	if !ok {
		return wfh.ErrRequestNotFound
	}
	if !current.FirstStagePending() {
		return wfh.ErrAlreadyInProgress
	}
	updated := request.Clone()
	updated.Approvals = current.Approvals
	updated.SubmittedAt = current.SubmittedAt
	r.store.requests[request.ID] = updated
	return nil
}

// UpdateStage implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) UpdateStage(_ context.Context, requestID string, record wfh.ApprovalRecord, updatedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.requests[requestID]
	if !ok {
		return wfh.ErrRequestNotFound
	}
	idx := record.Stage.Index()
	if idx < 0 || idx >= len(current.Approvals) {
		return wfh.ErrInvalidStage
	}
	if current.Approvals[idx].Status != wfh.StatusPending {
		return wfh.ErrAlreadyDecided
	}
	updated := current.Clone()
	updated.Approvals[idx] = record
	updated.UpdatedAt = updatedAt
	r.store.requests[requestID] = updated
	return nil
}

// Delete implements wfh.RequestRepository.
func (r *wfhRequestRepositoryImpl) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.requests[id]
	if !ok {
		return wfh.ErrRequestNotFound
	}
	if !current.FirstStagePending() {
		return wfh.ErrAlreadyInProgress
	}
	delete(r.store.requests, id)
	for i, existing := range r.store.order {
		if existing == id {
			r.store.order = append(r.store.order[:i], r.store.order[i+1:]...)
			break
		}
	}
	return nil
}
