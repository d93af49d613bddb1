// Package oauth2 implementa el núcleo del flujo de autorización: attempts,
// state firmado, authorization codes de un solo uso y emisión/rotación de
// tokens.
package oauth2

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/jwt"
)

// AuthorizeManager maneja el ciclo de vida de los authorize attempts y el
// state firmado que los referencia a través de los redirects.
type AuthorizeManager struct {
	attempts repository.AttemptRepository
	clients  *ClientRegistry
	issuer   *jwt.Issuer

	// AttemptTTL acota cuánto puede durar un flujo interactivo completo.
	AttemptTTL time.Duration
}

func NewAuthorizeManager(attempts repository.AttemptRepository, clients *ClientRegistry, issuer *jwt.Issuer) *AuthorizeManager {
	return &AuthorizeManager{
		attempts:   attempts,
		clients:    clients,
		issuer:     issuer,
		AttemptTTL: time.Hour,
	}
}

// StartAttempt valida la request de /authorize y persiste un attempt nuevo.
// El state del cliente se guarda tal cual para devolverlo al final del flujo.
func (m *AuthorizeManager) StartAttempt(ctx context.Context, clientID, redirectURI string, clientState *string, scopes []string) (*repository.AuthorizeAttempt, error) {
	client, err := m.clients.Get(clientID)
	if err != nil {
		return nil, err
	}
	if err := client.ValidateRedirectURI(redirectURI); err != nil {
		return nil, err
	}
	granted, err := client.FilterScopes(scopes)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	attempt := &repository.AuthorizeAttempt{
		ID:             uuid.NewString(),
		ClientID:       client.ID,
		RedirectURI:    redirectURI,
		State:          clientState,
		GrantedScopes:  granted,
		AttemptDate:    now,
		ExpirationDate: now.Add(m.AttemptTTL),
	}
	if err := m.attempts.Create(ctx, attempt); err != nil {
		return nil, apperr.Internal("oauth2.attempt.create").Wrap(err)
	}
	return attempt, nil
}

// EncodeState firma el id del attempt para que viaje por los redirects del
// flujo sin poder ser forjado ni transferido a otro attempt.
func (m *AuthorizeManager) EncodeState(attempt *repository.AuthorizeAttempt) (string, error) {
	signed, err := m.issuer.SignState(attempt.ID, attempt.ExpirationDate)
	if err != nil {
		return "", apperr.Internal("oauth2.state.sign").Wrap(err)
	}
	return signed, nil
}

// VerifyEncodedState valida un state firmado y devuelve el attempt vivo que
// referencia. Firma inválida, attempt desconocido o expirado: invalid_request.
func (m *AuthorizeManager) VerifyEncodedState(ctx context.Context, state string) (*repository.AuthorizeAttempt, error) {
	attemptID, err := m.issuer.VerifyState(state)
	if err != nil {
		return nil, errInvalidState
	}
	attempt, err := m.attempts.GetByID(ctx, attemptID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidState
	}
	if err != nil {
		return nil, apperr.Internal("oauth2.attempt.load").Wrap(err)
	}
	if attempt.Expired() {
		return nil, errExpiredAttempt
	}
	return attempt, nil
}

// SetAuthenticatedUser asocia el usuario autenticado al attempt. Un attempt
// ya asociado a otro usuario es un estado inconsistente y se rechaza.
func (m *AuthorizeManager) SetAuthenticatedUser(ctx context.Context, attempt *repository.AuthorizeAttempt, userID string) error {
	if attempt.UserID != nil && *attempt.UserID != userID {
		return apperr.Internal("oauth2.attempt.user_mismatch")
	}
	if err := m.attempts.SetUser(ctx, attempt.ID, userID); err != nil {
		return apperr.Internal("oauth2.attempt.set_user").Wrap(err)
	}
	attempt.UserID = &userID
	return nil
}
