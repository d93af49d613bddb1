package memory

import (
	"context"
	"sync"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type attemptRepo struct {
	mu       sync.RWMutex
	attempts map[string]repository.AuthorizeAttempt
}

func newAttemptRepo() *attemptRepo {
	return &attemptRepo{attempts: map[string]repository.AuthorizeAttempt{}}
}

func (r *attemptRepo) Create(_ context.Context, attempt *repository.AuthorizeAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.attempts[attempt.ID]; exists {
		return repository.ErrConflict
	}
	r.attempts[attempt.ID] = *attempt
	return nil
}

func (r *attemptRepo) GetByID(_ context.Context, id string) (*repository.AuthorizeAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (r *attemptRepo) SetUser(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.UserID = &userID
	r.attempts[id] = a
	return nil
}

func (r *attemptRepo) SetGrantedScopes(_ context.Context, id string, scopes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.GrantedScopes = append([]string(nil), scopes...)
	r.attempts[id] = a
	return nil
}
