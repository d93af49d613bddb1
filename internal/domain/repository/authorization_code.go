package repository

import (
	"context"
	"time"
)

// AuthorizationCode es el secreto de un solo uso que el client intercambia por
// tokens. Se persiste el hash del secreto, nunca el secreto en claro.
// Exactamente un code por attempt.
type AuthorizationCode struct {
	ID                 string
	AuthorizeAttemptID string
	CodeHash           string
	Consumed           bool
	IssueDate          time.Time
	ExpirationDate     time.Time
}

// Expired retorna true si el code ya venció.
func (c *AuthorizationCode) Expired() bool {
	return !time.Now().Before(c.ExpirationDate)
}

// AuthorizationCodeRepository define operaciones sobre authorization codes.
type AuthorizationCodeRepository interface {
	// Create persiste un code nuevo.
	Create(ctx context.Context, code *AuthorizationCode) error

	// Consume marca el code como consumido y lo retorna, de forma atómica:
	// un segundo Consume del mismo hash retorna ErrAlreadyConsumed aunque sea
	// concurrente (conditional update en la capa de storage).
	// Retorna ErrNotFound si el hash no existe.
	Consume(ctx context.Context, codeHash string) (*AuthorizationCode, error)
}
