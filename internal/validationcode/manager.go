// Package validationcode emite, despacha y valida los códigos out-of-band
// que verifican claims de contacto (email, teléfono) durante un authorize
// attempt.
package validationcode

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/observability/logger"
	token "github.com/sympauthy/sympauthy/internal/security/token"
)

var (
	// ErrInvalidCode: el código no coincide con ningún code activo del attempt.
	ErrInvalidCode = apperr.BadRequest("invalid_code", "flow.claims.validation.invalid_code")
	// ErrExpiredCode: el código coincide pero ya venció.
	ErrExpiredCode = apperr.BadRequest("expired_code", "flow.claims.validation.expired_code")
)

// Sender despacha un code a un destinatario por un medio concreto.
type Sender interface {
	SendValidationCode(ctx context.Context, to string, code *repository.ValidationCode) error
}

// Manager gestiona el ciclo de vida de los validation codes.
// Invariante: a lo sumo un code activo por (attempt, reason).
type Manager struct {
	codes   repository.ValidationCodeRepository
	senders map[repository.ValidationCodeMedia]Sender

	CodeTTL time.Duration
	Digits  int
}

func NewManager(codes repository.ValidationCodeRepository, senders map[repository.ValidationCodeMedia]Sender) *Manager {
	return &Manager{
		codes:   codes,
		senders: senders,
		CodeTTL: 10 * time.Minute,
		Digits:  6,
	}
}

// GetOrSend es idempotente por attempt: si los codes activos ya cubren todas
// las reasons requeridas los devuelve sin reenviar; si falta alguna, revoca
// todos los codes del medio y emite uno nuevo que cubra el conjunto completo.
func (m *Manager) GetOrSend(ctx context.Context, attempt *repository.AuthorizeAttempt, userID string, media repository.ValidationCodeMedia, reasons []repository.ValidationCodeReason, recipient string) ([]*repository.ValidationCode, error) {
	existing, err := m.activeForMedia(ctx, attempt.ID, media)
	if err != nil {
		return nil, err
	}
	if coversAll(existing, reasons) {
		return existing, nil
	}

	if len(existing) > 0 {
		ids := make([]string, len(existing))
		for i, c := range existing {
			ids[i] = c.ID
		}
		if err := m.codes.Revoke(ctx, ids); err != nil {
			return nil, apperr.Internal("validationcode.revoke").Wrap(err)
		}
	}

	code, err := m.issue(ctx, attempt, userID, media, reasons)
	if err != nil {
		return nil, err
	}
	m.dispatch(ctx, media, recipient, code)
	return []*repository.ValidationCode{code}, nil
}

// Resend re-despacha el code vigente del medio: el que ya llegó al inbox del
// end-user sigue valiendo, así que no se emite uno nuevo. Recién cuando todo
// lo no revocado expiró se revoca y se emite un reemplazo con las mismas
// reasons. Attempt sin codes previos: no hay nada que reenviar.
func (m *Manager) Resend(ctx context.Context, attempt *repository.AuthorizeAttempt, userID string, media repository.ValidationCodeMedia, recipient string) (*repository.ValidationCode, error) {
	all, err := m.codes.FindByAttemptAndMedia(ctx, attempt.ID, media)
	if err != nil {
		return nil, apperr.Internal("validationcode.load").Wrap(err)
	}
	var live, stale []*repository.ValidationCode
	for _, c := range all {
		switch {
		case c.RevokedAt != nil:
		case c.Expired():
			stale = append(stale, c)
		default:
			live = append(live, c)
		}
	}
	if len(live) > 0 {
		for _, c := range live {
			m.dispatch(ctx, media, recipient, c)
		}
		return live[0], nil
	}
	if len(stale) == 0 {
		return nil, ErrInvalidCode
	}

	// todos vencidos: reemplazo con la unión de sus reasons
	reasonSet := map[repository.ValidationCodeReason]struct{}{}
	var reasons []repository.ValidationCodeReason
	ids := make([]string, len(stale))
	for i, c := range stale {
		ids[i] = c.ID
		for _, r := range c.Reasons {
			if _, dup := reasonSet[r]; !dup {
				reasonSet[r] = struct{}{}
				reasons = append(reasons, r)
			}
		}
	}
	if err := m.codes.Revoke(ctx, ids); err != nil {
		return nil, apperr.Internal("validationcode.revoke").Wrap(err)
	}

	code, err := m.issue(ctx, attempt, userID, media, reasons)
	if err != nil {
		return nil, err
	}
	m.dispatch(ctx, media, recipient, code)
	return code, nil
}

// Validate compara el código ingresado contra los codes activos del medio y
// consume el que coincide. El match es sobre codes del attempt, no global.
func (m *Manager) Validate(ctx context.Context, attempt *repository.AuthorizeAttempt, media repository.ValidationCodeMedia, inputCode string) (*repository.ValidationCode, error) {
	all, err := m.codes.FindByAttemptAndMedia(ctx, attempt.ID, media)
	if err != nil {
		return nil, apperr.Internal("validationcode.load").Wrap(err)
	}
	var match *repository.ValidationCode
	for _, c := range all {
		if c.RevokedAt == nil && c.Code == inputCode {
			match = c
			break
		}
	}
	if match == nil {
		return nil, ErrInvalidCode
	}
	if match.Expired() {
		return nil, ErrExpiredCode
	}
	if err := m.codes.Consume(ctx, match.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyConsumed) {
			return nil, ErrInvalidCode
		}
		return nil, apperr.Internal("validationcode.consume").Wrap(err)
	}
	return match, nil
}

func (m *Manager) activeForMedia(ctx context.Context, attemptID string, media repository.ValidationCodeMedia) ([]*repository.ValidationCode, error) {
	all, err := m.codes.FindByAttemptAndMedia(ctx, attemptID, media)
	if err != nil {
		return nil, apperr.Internal("validationcode.load").Wrap(err)
	}
	var active []*repository.ValidationCode
	for _, c := range all {
		if c.Active() {
			active = append(active, c)
		}
	}
	return active, nil
}

func (m *Manager) issue(ctx context.Context, attempt *repository.AuthorizeAttempt, userID string, media repository.ValidationCodeMedia, reasons []repository.ValidationCodeReason) (*repository.ValidationCode, error) {
	value, err := token.GenerateNumericCode(m.Digits)
	if err != nil {
		return nil, apperr.Internal("validationcode.generate").Wrap(err)
	}
	now := time.Now().UTC()
	code := &repository.ValidationCode{
		ID:                 uuid.NewString(),
		Code:               value,
		UserID:             userID,
		AuthorizeAttemptID: attempt.ID,
		Media:              media,
		Reasons:            reasons,
		IssueDate:          now,
		ExpirationDate:     now.Add(m.CodeTTL),
	}
	if err := m.codes.Create(ctx, code); err != nil {
		return nil, apperr.Internal("validationcode.create").Wrap(err)
	}
	return code, nil
}

// dispatch envía el code en background: la latencia del SMTP no bloquea la
// respuesta al end-user y un fallo de envío se resuelve con resend.
func (m *Manager) dispatch(ctx context.Context, media repository.ValidationCodeMedia, recipient string, code *repository.ValidationCode) {
	sender, ok := m.senders[media]
	if !ok {
		logger.From(ctx).Warn("no sender configured for media", logger.Media(string(media)))
		return
	}
	log := logger.From(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sender.SendValidationCode(sendCtx, recipient, code); err != nil {
			log.Error("validation code dispatch failed",
				logger.Media(string(media)),
				logger.AttemptID(code.AuthorizeAttemptID),
				logger.Err(err),
			)
		}
	}()
}

func coversAll(codes []*repository.ValidationCode, reasons []repository.ValidationCodeReason) bool {
	if len(codes) == 0 {
		return false
	}
	for _, r := range reasons {
		covered := false
		for _, c := range codes {
			if c.HasReason(r) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}
