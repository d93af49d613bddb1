package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type claimKey struct{ userID, claimID string }

type collectedClaimRepo struct {
	mu     sync.RWMutex
	claims map[claimKey]repository.CollectedClaim
}

func newCollectedClaimRepo() *collectedClaimRepo {
	return &collectedClaimRepo{claims: map[claimKey]repository.CollectedClaim{}}
}

func (r *collectedClaimRepo) FindByUserID(_ context.Context, userID string) ([]*repository.CollectedClaim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*repository.CollectedClaim
	for k, c := range r.claims {
		if k.userID == userID {
			cp := c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimID < out[j].ClaimID })
	return out, nil
}

func (r *collectedClaimRepo) Upsert(_ context.Context, claim *repository.CollectedClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := claimKey{claim.UserID, claim.ClaimID}
	// Un update con el mismo valor preserva el flag verified.
	if prev, ok := r.claims[key]; ok && prev.Value == claim.Value && prev.Verified {
		claim.Verified = true
	}
	r.claims[key] = *claim
	return nil
}

func (r *collectedClaimRepo) Delete(_ context.Context, userID, claimID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claims, claimKey{userID, claimID})
	return nil
}

func (r *collectedClaimRepo) MarkVerified(_ context.Context, userID string, claimIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range claimIDs {
		key := claimKey{userID, id}
		if c, ok := r.claims[key]; ok {
			c.Verified = true
			r.claims[key] = c
		}
	}
	return nil
}

func (r *collectedClaimRepo) FindUserIDByClaim(_ context.Context, claimID, value string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, c := range r.claims {
		if k.claimID == claimID && c.Value == value {
			return k.userID, nil
		}
	}
	return "", repository.ErrNotFound
}
