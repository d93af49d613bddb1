package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/security/password"
)

// Manager gestiona las cuentas de usuario.
type Manager struct {
	users  repository.UserRepository
	hasher password.Hasher
}

func NewManager(users repository.UserRepository, hasher password.Hasher) *Manager {
	return &Manager{users: users, hasher: hasher}
}

// Create da de alta un usuario nuevo, con password opcional (los usuarios
// creados desde un provider third-party no tienen).
func (m *Manager) Create(ctx context.Context, plainPassword *string) (*repository.User, error) {
	u := &repository.User{
		ID:           uuid.NewString(),
		Status:       repository.UserEnabled,
		CreationDate: time.Now().UTC(),
	}
	if plainPassword != nil {
		hash, err := m.hasher.Hash(*plainPassword)
		if err != nil {
			return nil, apperr.Internal("user.hash_password").Wrap(err)
		}
		u.PasswordHash = &hash
	}
	if err := m.users.Create(ctx, u); err != nil {
		return nil, apperr.Internal("user.create").Wrap(err)
	}
	return u, nil
}

// Get carga un usuario habilitado. Deshabilitado o inexistente retornan
// repository.ErrNotFound: para el caller son indistinguibles.
func (m *Manager) Get(ctx context.Context, id string) (*repository.User, error) {
	u, err := m.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, apperr.Internal("user.load").Wrap(err)
	}
	if u.Status != repository.UserEnabled {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

// VerifyPassword compara el password en claro contra el hash almacenado.
// Usuarios sin password (solo provider) siempre fallan.
func (m *Manager) VerifyPassword(u *repository.User, plain string) bool {
	if u.PasswordHash == nil {
		return false
	}
	return m.hasher.Verify(plain, *u.PasswordHash)
}
