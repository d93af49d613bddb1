package repository

import (
	"context"
	"time"
)

// ValidationCodeMedia es el medio por el que se despacha un validation code.
type ValidationCodeMedia string

const (
	MediaEmail ValidationCodeMedia = "EMAIL"
	MediaPhone ValidationCodeMedia = "PHONE"
)

// ValidationCodeReason es el motivo por el que se envía un validation code.
// Cada reason valida un claim puntual.
type ValidationCodeReason string

const (
	ReasonEmailClaim       ValidationCodeReason = "EMAIL_CLAIM"
	ReasonPhoneNumberClaim ValidationCodeReason = "PHONE_NUMBER_CLAIM"
)

// Media retorna el medio por el que se despacha el code de esta reason.
func (r ValidationCodeReason) Media() ValidationCodeMedia {
	switch r {
	case ReasonPhoneNumberClaim:
		return MediaPhone
	default:
		return MediaEmail
	}
}

// ValidationCode es un código out-of-band enviado al end-user para verificar
// la posesión de un claim de contacto (email, teléfono).
// A lo sumo un code activo (no expirado, no revocado) por (attempt, reason).
type ValidationCode struct {
	ID                 string
	Code               string
	UserID             string
	AuthorizeAttemptID string
	Media              ValidationCodeMedia
	Reasons            []ValidationCodeReason
	IssueDate          time.Time
	ExpirationDate     time.Time
	RevokedAt          *time.Time
}

// Expired retorna true si el code ya venció.
func (c *ValidationCode) Expired() bool {
	return !time.Now().Before(c.ExpirationDate)
}

// Active retorna true si el code puede seguir usándose.
func (c *ValidationCode) Active() bool {
	return c.RevokedAt == nil && !c.Expired()
}

// HasReason retorna true si el code cubre la reason.
func (c *ValidationCode) HasReason(reason ValidationCodeReason) bool {
	for _, r := range c.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// ValidationCodeRepository define operaciones sobre validation codes.
type ValidationCodeRepository interface {
	// Create persiste un code nuevo.
	Create(ctx context.Context, code *ValidationCode) error

	// FindByAttempt retorna todos los codes no revocados de un attempt.
	FindByAttempt(ctx context.Context, attemptID string) ([]*ValidationCode, error)

	// FindByAttemptAndMedia retorna los codes no revocados enviados por un
	// medio durante un attempt.
	FindByAttemptAndMedia(ctx context.Context, attemptID string, media ValidationCodeMedia) ([]*ValidationCode, error)

	// Revoke revoca los codes indicados.
	Revoke(ctx context.Context, ids []string) error

	// Consume marca el code como usado de forma atómica (lo revoca).
	// Retorna ErrAlreadyConsumed si ya fue consumido o revocado.
	Consume(ctx context.Context, id string) error
}
