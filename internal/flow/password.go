package flow

import (
	"context"
	"errors"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/observability/logger"
	"github.com/sympauthy/sympauthy/internal/user"
)

var (
	// errInvalidCredentials no distingue usuario inexistente de password
	// incorrecto.
	errInvalidCredentials = apperr.Unauthorized("invalid_credentials", "flow.password.invalid_credentials")
	errEmailTaken         = apperr.BadRequest("email_taken", "flow.password.email_taken")
)

// SignInWithPassword autentica al end-user con email + password y lo asocia
// al attempt.
func (m *Manager) SignInWithPassword(ctx context.Context, attempt *repository.AuthorizeAttempt, email, plainPassword string) error {
	userID, err := m.collected.FindUserIDByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return errInvalidCredentials
	}
	if err != nil {
		return err
	}
	u, err := m.users.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return errInvalidCredentials
	}
	if err != nil {
		return err
	}
	if !m.users.VerifyPassword(u, plainPassword) {
		logger.From(ctx).Debug("password sign-in rejected", logger.UserID(u.ID))
		return errInvalidCredentials
	}
	return m.authorize.SetAuthenticatedUser(ctx, attempt, u.ID)
}

// SignUpWithPassword crea la cuenta, colecta el email como primer claim y
// asocia el usuario al attempt. El email queda sin verificar: la validación
// por code es el paso siguiente del flujo.
func (m *Manager) SignUpWithPassword(ctx context.Context, attempt *repository.AuthorizeAttempt, email, plainPassword string) error {
	_, err := m.collected.FindUserIDByEmail(ctx, email)
	if err == nil {
		return errEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	u, err := m.users.Create(ctx, &plainPassword)
	if err != nil {
		return err
	}
	update := []user.ClaimUpdate{{ClaimID: claims.Email, Value: &email}}
	if err := m.collected.UpdateFromUser(ctx, u.ID, update); err != nil {
		return err
	}
	return m.authorize.SetAuthenticatedUser(ctx, attempt, u.ID)
}
