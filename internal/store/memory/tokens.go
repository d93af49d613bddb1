package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type tokenRepo struct {
	mu     sync.RWMutex
	tokens map[string]repository.AuthenticationToken
	byHash map[string]string // tokenHash -> id (solo refresh)
}

func newTokenRepo() *tokenRepo {
	return &tokenRepo{
		tokens: map[string]repository.AuthenticationToken{},
		byHash: map[string]string{},
	}
}

func (r *tokenRepo) Create(_ context.Context, token *repository.AuthenticationToken) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if _, exists := r.tokens[token.ID]; exists {
		return "", repository.ErrConflict
	}
	r.tokens[token.ID] = *token
	if token.TokenHash != "" {
		r.byHash[token.TokenHash] = token.ID
	}
	return token.ID, nil
}

func (r *tokenRepo) GetByID(_ context.Context, id string) (*repository.AuthenticationToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (r *tokenRepo) GetRefreshByHash(_ context.Context, tokenHash string) (*repository.AuthenticationToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHash[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t := r.tokens[id]
	cp := t
	return &cp, nil
}

func (r *tokenRepo) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Revoked = true
	r.tokens[id] = t
	return nil
}
