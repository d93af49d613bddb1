package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/security/password"
	"github.com/sympauthy/sympauthy/internal/store/memory"
)

func newUserManager(t *testing.T) (*Manager, repository.UserRepository) {
	t.Helper()
	st := memory.New()
	return NewManager(st.Users(), password.NewArgon2id()), st.Users()
}

func TestCreateWithPassword(t *testing.T) {
	ctx := context.Background()
	m, _ := newUserManager(t)

	pw := "hunter2!"
	u, err := m.Create(ctx, &pw)
	require.NoError(t, err)
	require.NotNil(t, u.PasswordHash)
	assert.NotContains(t, *u.PasswordHash, "hunter2")

	assert.True(t, m.VerifyPassword(u, "hunter2!"))
	assert.False(t, m.VerifyPassword(u, "wrong"))
}

func TestCreateWithoutPassword(t *testing.T) {
	ctx := context.Background()
	m, _ := newUserManager(t)

	// alta vía provider third-party: sin credencial first-party
	u, err := m.Create(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, u.PasswordHash)
	assert.False(t, m.VerifyPassword(u, ""))
	assert.False(t, m.VerifyPassword(u, "anything"))
}

func TestGetHidesDisabledUsers(t *testing.T) {
	ctx := context.Background()
	m, repo := newUserManager(t)

	u, err := m.Create(ctx, nil)
	require.NoError(t, err)

	got, err := m.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// para el caller, deshabilitado e inexistente son indistinguibles
	require.NoError(t, repo.Create(ctx, &repository.User{ID: "disabled-user", Status: repository.UserDisabled}))
	_, err = m.Get(ctx, "disabled-user")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = m.Get(ctx, "no-such-user")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
