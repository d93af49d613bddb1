package repository

import (
	"context"
	"time"
)

// CollectedClaim es un valor first-party colectado para un (user, claim).
// Único por par (user, claim): un update reemplaza el valor anterior,
// nunca se acumulan versiones.
type CollectedClaim struct {
	UserID         string
	ClaimID        string
	Value          string
	Verified       bool
	CollectionDate time.Time
}

// CollectedClaimRepository define operaciones sobre collected claims.
type CollectedClaimRepository interface {
	// FindByUserID retorna todos los claims colectados de un usuario.
	FindByUserID(ctx context.Context, userID string) ([]*CollectedClaim, error)

	// Upsert crea o reemplaza el valor de (user, claim). El reemplazo resetea
	// Verified a false salvo que el nuevo valor sea idéntico al anterior.
	Upsert(ctx context.Context, claim *CollectedClaim) error

	// Delete elimina el valor colectado de (user, claim).
	Delete(ctx context.Context, userID, claimID string) error

	// MarkVerified marca como verificados los claims indicados del usuario.
	MarkVerified(ctx context.Context, userID string, claimIDs []string) error

	// FindUserIDByClaim busca el usuario dueño de un valor de claim
	// (ej: login por email). Retorna ErrNotFound si no hay match.
	FindUserIDByClaim(ctx context.Context, claimID, value string) (string, error)
}
