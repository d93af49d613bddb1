package oauth2

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	token "github.com/sympauthy/sympauthy/internal/security/token"
)

// AuthorizationCodeManager emite y consume los authorization codes. Solo se
// persiste el hash del code; el valor en claro viaja una única vez en el
// redirect hacia el cliente.
type AuthorizationCodeManager struct {
	codes repository.AuthorizationCodeRepository

	// CodeTTL es corto a propósito: el cliente lo canjea inmediatamente.
	CodeTTL time.Duration
}

func NewAuthorizationCodeManager(codes repository.AuthorizationCodeRepository) *AuthorizationCodeManager {
	return &AuthorizationCodeManager{codes: codes, CodeTTL: time.Minute}
}

// Generate emite un code nuevo para un attempt con usuario ya autenticado.
func (m *AuthorizationCodeManager) Generate(ctx context.Context, attempt *repository.AuthorizeAttempt) (string, error) {
	if attempt.UserID == nil {
		return "", apperr.Internal("oauth2.code.attempt_without_user")
	}
	raw, err := token.GenerateOpaqueToken(32)
	if err != nil {
		return "", apperr.Internal("oauth2.code.generate").Wrap(err)
	}
	now := time.Now().UTC()
	code := &repository.AuthorizationCode{
		ID:                 uuid.NewString(),
		AuthorizeAttemptID: attempt.ID,
		CodeHash:           token.SHA256Base64URL(raw),
		IssueDate:          now,
		ExpirationDate:     now.Add(m.CodeTTL),
	}
	if err := m.codes.Create(ctx, code); err != nil {
		return "", apperr.Internal("oauth2.code.create").Wrap(err)
	}
	return raw, nil
}

// Consume invalida el code y lo devuelve. Desconocido, ya consumido o
// expirado se colapsan en invalid_grant: el cliente no necesita distinguir.
func (m *AuthorizationCodeManager) Consume(ctx context.Context, rawCode string) (*repository.AuthorizationCode, error) {
	code, err := m.codes.Consume(ctx, token.SHA256Base64URL(rawCode))
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrAlreadyConsumed) {
		return nil, errInvalidGrant
	}
	if err != nil {
		return nil, apperr.Internal("oauth2.code.consume").Wrap(err)
	}
	if code.Expired() {
		return nil, errInvalidGrant
	}
	return code, nil
}
