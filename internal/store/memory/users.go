package memory

import (
	"context"
	"sync"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type userRepo struct {
	mu    sync.RWMutex
	users map[string]repository.User
}

func newUserRepo() *userRepo {
	return &userRepo{users: map[string]repository.User{}}
}

func (r *userRepo) Create(_ context.Context, user *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return repository.ErrConflict
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = &passwordHash
	r.users[id] = u
	return nil
}
