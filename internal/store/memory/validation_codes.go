package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type validationCodeRepo struct {
	mu    sync.Mutex
	codes map[string]repository.ValidationCode
}

func newValidationCodeRepo() *validationCodeRepo {
	return &validationCodeRepo{codes: map[string]repository.ValidationCode{}}
}

func (r *validationCodeRepo) Create(_ context.Context, code *repository.ValidationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.codes[code.ID]; exists {
		return repository.ErrConflict
	}
	r.codes[code.ID] = *code
	return nil
}

func (r *validationCodeRepo) FindByAttempt(_ context.Context, attemptID string) ([]*repository.ValidationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(c *repository.ValidationCode) bool {
		return c.AuthorizeAttemptID == attemptID && c.RevokedAt == nil
	}), nil
}

func (r *validationCodeRepo) FindByAttemptAndMedia(_ context.Context, attemptID string, media repository.ValidationCodeMedia) ([]*repository.ValidationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(c *repository.ValidationCode) bool {
		return c.AuthorizeAttemptID == attemptID && c.Media == media && c.RevokedAt == nil
	}), nil
}

func (r *validationCodeRepo) Revoke(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, id := range ids {
		if c, ok := r.codes[id]; ok && c.RevokedAt == nil {
			c.RevokedAt = &now
			r.codes[id] = c
		}
	}
	return nil
}

func (r *validationCodeRepo) Consume(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.RevokedAt != nil {
		return repository.ErrAlreadyConsumed
	}
	now := time.Now()
	c.RevokedAt = &now
	r.codes[id] = c
	return nil
}

func (r *validationCodeRepo) filter(keep func(*repository.ValidationCode) bool) []*repository.ValidationCode {
	var out []*repository.ValidationCode
	for _, c := range r.codes {
		cp := c
		if keep(&cp) {
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.Before(out[j].IssueDate) })
	return out
}
