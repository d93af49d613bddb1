package repository

import (
	"context"
	"time"
)

// AuthorizeAttempt representa un intento de autorización de un end-user.
// Se crea con el primer request al authorize endpoint y se muta a medida que
// el end-user se autentica y otorga scopes. Una vez emitido un authorization
// code para el attempt, no se vuelve a mutar.
type AuthorizeAttempt struct {
	ID            string
	ClientID      string
	RedirectURI   string
	State         *string
	UserID        *string
	GrantedScopes []string
	AttemptDate   time.Time
	ExpirationDate time.Time
}

// Expired retorna true si el attempt ya venció.
func (a *AuthorizeAttempt) Expired() bool {
	return !time.Now().Before(a.ExpirationDate)
}

// AttemptRepository define operaciones sobre authorize attempts.
type AttemptRepository interface {
	// Create persiste un attempt nuevo.
	Create(ctx context.Context, attempt *AuthorizeAttempt) error

	// GetByID busca un attempt por id. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*AuthorizeAttempt, error)

	// SetUser asocia el end-user autenticado al attempt.
	SetUser(ctx context.Context, id, userID string) error

	// SetGrantedScopes registra los scopes otorgados por el end-user.
	SetGrantedScopes(ctx context.Context, id string, scopes []string) error
}
