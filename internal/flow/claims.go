package flow

import (
	"context"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/user"
)

// CollectClaims aplica los claims que el end-user completó en la UI de
// colecta.
func (m *Manager) CollectClaims(ctx context.Context, attempt *repository.AuthorizeAttempt, updates []user.ClaimUpdate) error {
	if attempt.UserID == nil {
		return apperr.Internal("flow.claims.attempt_without_user")
	}
	return m.collected.UpdateFromUser(ctx, *attempt.UserID, updates)
}

// unfilteredValidationReasons calcula las reasons pendientes sin mirar qué
// medios están habilitados: claims de contacto colectados y aún no
// verificados. También resuelve el destinatario por medio.
func (m *Manager) unfilteredValidationReasons(ctx context.Context, userID string) ([]repository.ValidationCodeReason, map[repository.ValidationCodeMedia]string, error) {
	collected, err := m.collected.ListForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	var reasons []repository.ValidationCodeReason
	recipients := map[repository.ValidationCodeMedia]string{}
	for _, cc := range collected {
		if cc.Verified {
			continue
		}
		switch cc.ClaimID {
		case claims.Email:
			reasons = append(reasons, repository.ReasonEmailClaim)
			recipients[repository.MediaEmail] = cc.Value
		case claims.PhoneNumber:
			reasons = append(reasons, repository.ReasonPhoneNumberClaim)
			recipients[repository.MediaPhone] = cc.Value
		}
	}
	return reasons, recipients, nil
}

// requiredValidationReasons filtra las reasons por los medios habilitados:
// un medio apagado no puede bloquear el flujo.
func (m *Manager) requiredValidationReasons(ctx context.Context, userID string) ([]repository.ValidationCodeReason, map[repository.ValidationCodeMedia]string, error) {
	reasons, recipients, err := m.unfilteredValidationReasons(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	var required []repository.ValidationCodeReason
	for _, r := range reasons {
		if m.enabledMedia[r.Media()] {
			required = append(required, r)
		}
	}
	return required, recipients, nil
}

// GetOrSendValidationCodes asegura que el end-user tenga codes vigentes para
// todas las reasons pendientes. Idempotente: recargar la página de validación
// no reenvía codes que ya cubren el conjunto.
func (m *Manager) GetOrSendValidationCodes(ctx context.Context, attempt *repository.AuthorizeAttempt) ([]*repository.ValidationCode, error) {
	if attempt.UserID == nil {
		return nil, apperr.Internal("flow.claims.attempt_without_user")
	}
	required, recipients, err := m.requiredValidationReasons(ctx, *attempt.UserID)
	if err != nil {
		return nil, err
	}

	byMedia := map[repository.ValidationCodeMedia][]repository.ValidationCodeReason{}
	for _, r := range required {
		byMedia[r.Media()] = append(byMedia[r.Media()], r)
	}

	var out []*repository.ValidationCode
	for media, reasons := range byMedia {
		sent, err := m.codes.GetOrSend(ctx, attempt, *attempt.UserID, media, reasons, recipients[media])
		if err != nil {
			return nil, err
		}
		out = append(out, sent...)
	}
	return out, nil
}

// ValidateClaimsByCode valida el código ingresado y marca como verificados
// los claims cubiertos por sus reasons. El code queda consumido.
func (m *Manager) ValidateClaimsByCode(ctx context.Context, attempt *repository.AuthorizeAttempt, media repository.ValidationCodeMedia, inputCode string) error {
	if attempt.UserID == nil {
		return apperr.Internal("flow.claims.attempt_without_user")
	}
	code, err := m.codes.Validate(ctx, attempt, media, inputCode)
	if err != nil {
		return err
	}
	var claimIDs []string
	for _, r := range code.Reasons {
		switch r {
		case repository.ReasonEmailClaim:
			claimIDs = append(claimIDs, claims.Email)
		case repository.ReasonPhoneNumberClaim:
			claimIDs = append(claimIDs, claims.PhoneNumber)
		}
	}
	return m.collected.MarkVerified(ctx, *attempt.UserID, claimIDs)
}

// ResendValidationCodes reenvía el code vigente de un medio (o un reemplazo
// si ya venció).
func (m *Manager) ResendValidationCodes(ctx context.Context, attempt *repository.AuthorizeAttempt, media repository.ValidationCodeMedia) error {
	if attempt.UserID == nil {
		return apperr.Internal("flow.claims.attempt_without_user")
	}
	_, recipients, err := m.requiredValidationReasons(ctx, *attempt.UserID)
	if err != nil {
		return err
	}
	_, err = m.codes.Resend(ctx, attempt, *attempt.UserID, media, recipients[media])
	return err
}
