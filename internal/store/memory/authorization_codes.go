package memory

import (
	"context"
	"sync"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type authorizationCodeRepo struct {
	mu    sync.Mutex
	codes map[string]repository.AuthorizationCode // keyed por codeHash
}

func newAuthorizationCodeRepo() *authorizationCodeRepo {
	return &authorizationCodeRepo{codes: map[string]repository.AuthorizationCode{}}
}

func (r *authorizationCodeRepo) Create(_ context.Context, code *repository.AuthorizationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.codes[code.CodeHash]; exists {
		return repository.ErrConflict
	}
	r.codes[code.CodeHash] = *code
	return nil
}

// Consume es check-and-invalidate bajo el mutex: el segundo consumidor del
// mismo hash recibe ErrAlreadyConsumed, nunca el code.
func (r *authorizationCodeRepo) Consume(_ context.Context, codeHash string) (*repository.AuthorizationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[codeHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if c.Consumed {
		return nil, repository.ErrAlreadyConsumed
	}
	c.Consumed = true
	r.codes[codeHash] = c
	cp := c
	return &cp, nil
}
