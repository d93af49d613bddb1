package repository

import (
	"context"
	"time"
)

// TokenType distingue access de refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "ACCESS"
	TokenTypeRefresh TokenType = "REFRESH"
)

// AuthenticationToken es la fila persistida de un token emitido.
// Para access tokens el JWT lleva el id de la fila como jti, lo que permite
// revocación por lookup. Para refresh tokens se guarda el hash del secreto
// opaco (nunca el secreto en claro).
type AuthenticationToken struct {
	ID                 string
	Type               TokenType
	TokenHash          string // sha256 base64url del refresh; vacío para access
	UserID             string
	ClientID           string
	Scopes             []string
	AuthorizeAttemptID string
	Revoked            bool
	IssueDate          time.Time
	ExpirationDate     *time.Time // nil: refresh sin expiración
}

// Expired retorna true si el token tiene expiración y ya venció.
func (t *AuthenticationToken) Expired() bool {
	return t.ExpirationDate != nil && !time.Now().Before(*t.ExpirationDate)
}

// TokenRepository define operaciones sobre authentication tokens.
type TokenRepository interface {
	// Create persiste un token y retorna su id.
	Create(ctx context.Context, token *AuthenticationToken) (string, error)

	// GetByID busca un token por id. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*AuthenticationToken, error)

	// GetRefreshByHash busca un refresh token por el hash de su secreto.
	// Retorna ErrNotFound si no existe.
	GetRefreshByHash(ctx context.Context, tokenHash string) (*AuthenticationToken, error)

	// Revoke marca el token como revocado. Mutación one-way: no hay vuelta atrás.
	Revoke(ctx context.Context, id string) error
}
