package user

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

var (
	errUnknownClaim      = apperr.BadRequest("invalid_claim", "claims.unknown")
	errClaimNotWritable  = apperr.BadRequest("invalid_claim", "claims.not_writable")
	errInvalidClaimValue = apperr.BadRequest("invalid_claim_value", "claims.invalid_value")
)

// CollectedClaimManager gestiona los claims colectados first-party.
type CollectedClaimManager struct {
	repo     repository.CollectedClaimRepository
	registry *claims.Registry
}

func NewCollectedClaimManager(repo repository.CollectedClaimRepository, registry *claims.Registry) *CollectedClaimManager {
	return &CollectedClaimManager{repo: repo, registry: registry}
}

// ListForUser retorna los collected claims del usuario.
func (m *CollectedClaimManager) ListForUser(ctx context.Context, userID string) ([]*repository.CollectedClaim, error) {
	list, err := m.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("claims.load").Wrap(err)
	}
	return list, nil
}

// ClaimUpdate es una mutación sobre un claim: valor nuevo, o nil para borrar.
type ClaimUpdate struct {
	ClaimID string
	Value   *string
}

// UpdateFromUser aplica los updates que el end-user envió desde la UI de
// colecta. Solo acepta claims colectables por input. Valida todo el batch
// antes de escribir: o entra completo o no entra nada nuevo.
func (m *CollectedClaimManager) UpdateFromUser(ctx context.Context, userID string, updates []ClaimUpdate) error {
	validated := make([]ClaimUpdate, 0, len(updates))
	for _, u := range updates {
		claim := m.registry.FindByID(u.ClaimID)
		if claim == nil {
			return errUnknownClaim.With("claim", u.ClaimID)
		}
		if !claim.UserInputted {
			return errClaimNotWritable.With("claim", u.ClaimID)
		}
		if u.Value != nil {
			normalized, err := validateValue(claim, *u.Value)
			if err != nil {
				return err
			}
			u.Value = &normalized
		}
		validated = append(validated, u)
	}
	return m.apply(ctx, userID, validated, false)
}

// UpdateFromAPI aplica updates de un caller autenticado por scopes (write
// scopes del claim).
func (m *CollectedClaimManager) UpdateFromAPI(ctx context.Context, userID string, updates []ClaimUpdate, scopes []string) error {
	validated := make([]ClaimUpdate, 0, len(updates))
	for _, u := range updates {
		claim := m.registry.FindByID(u.ClaimID)
		if claim == nil {
			return errUnknownClaim.With("claim", u.ClaimID)
		}
		if !claim.CanBeWritten(scopes) {
			return errClaimNotWritable.With("claim", u.ClaimID)
		}
		if u.Value != nil {
			normalized, err := validateValue(claim, *u.Value)
			if err != nil {
				return err
			}
			u.Value = &normalized
		}
		validated = append(validated, u)
	}
	return m.apply(ctx, userID, validated, false)
}

func (m *CollectedClaimManager) apply(ctx context.Context, userID string, updates []ClaimUpdate, verified bool) error {
	now := time.Now().UTC()
	for _, u := range updates {
		if u.Value == nil {
			if err := m.repo.Delete(ctx, userID, u.ClaimID); err != nil {
				return apperr.Internal("claims.delete").Wrap(err)
			}
			continue
		}
		err := m.repo.Upsert(ctx, &repository.CollectedClaim{
			UserID:         userID,
			ClaimID:        u.ClaimID,
			Value:          *u.Value,
			Verified:       verified,
			CollectionDate: now,
		})
		if err != nil {
			return apperr.Internal("claims.upsert").Wrap(err)
		}
	}
	return nil
}

// MarkVerified marca claims como verificados por este servidor (tras validar
// un código enviado al medio correspondiente).
func (m *CollectedClaimManager) MarkVerified(ctx context.Context, userID string, claimIDs []string) error {
	if err := m.repo.MarkVerified(ctx, userID, claimIDs); err != nil {
		return apperr.Internal("claims.mark_verified").Wrap(err)
	}
	return nil
}

// FindUserIDByEmail resuelve el usuario dueño de un email colectado.
// Retorna repository.ErrNotFound si nadie lo tiene.
func (m *CollectedClaimManager) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	userID, err := m.repo.FindUserIDByClaim(ctx, claims.Email, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if err != nil {
		return "", apperr.Internal("claims.lookup").Wrap(err)
	}
	return userID, nil
}

// ───────────────────────────────────────────────────────────────
// validación y tipado de valores
// ───────────────────────────────────────────────────────────────

var phoneRe = regexp.MustCompile(`^\+[1-9][0-9]{4,14}$`)

// validateValue valida y normaliza un valor según el tipo del claim.
func validateValue(claim *claims.Claim, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", errInvalidClaimValue.With("claim", claim.ID)
	}
	if claim.AllowedValues != nil && !slices.Contains(claim.AllowedValues, v) {
		return "", errInvalidClaimValue.With("claim", claim.ID)
	}
	switch claim.DataType {
	case claims.TypeEmail:
		v = strings.ToLower(v)
		at := strings.IndexByte(v, '@')
		if at <= 0 || at == len(v)-1 || strings.ContainsAny(v, " \t") {
			return "", errInvalidClaimValue.With("claim", claim.ID)
		}
	case claims.TypePhone:
		v = strings.ReplaceAll(v, " ", "")
		if !phoneRe.MatchString(v) {
			return "", errInvalidClaimValue.With("claim", claim.ID)
		}
	case claims.TypeDate:
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return "", errInvalidClaimValue.With("claim", claim.ID)
		}
	case claims.TypeNumber:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "", errInvalidClaimValue.With("claim", claim.ID)
		}
	case claims.TypeBool:
		if v != "true" && v != "false" {
			return "", errInvalidClaimValue.With("claim", claim.ID)
		}
	}
	return v, nil
}

// typedValue convierte el valor persistido (string) al tipo JSON del claim.
func typedValue(claim *claims.Claim, value string) any {
	switch claim.DataType {
	case claims.TypeNumber:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	case claims.TypeBool:
		return value == "true"
	}
	return value
}
