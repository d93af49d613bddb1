package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type collectedClaimRepo struct {
	pool *pgxpool.Pool
}

func (r *collectedClaimRepo) FindByUserID(ctx context.Context, userID string) ([]*repository.CollectedClaim, error) {
	const query = `
		SELECT user_id, claim_id, value, verified, collection_date
		FROM collected_claims WHERE user_id = $1
		ORDER BY claim_id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*repository.CollectedClaim
	for rows.Next() {
		var c repository.CollectedClaim
		if err := rows.Scan(&c.UserID, &c.ClaimID, &c.Value, &c.Verified, &c.CollectionDate); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Upsert conserva verified cuando el valor re-escrito es idéntico al ya
// almacenado; un valor distinto vuelve a dejar el claim sin verificar.
func (r *collectedClaimRepo) Upsert(ctx context.Context, claim *repository.CollectedClaim) error {
	const query = `
		INSERT INTO collected_claims (user_id, claim_id, value, verified, collection_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, claim_id) DO UPDATE SET
			value = EXCLUDED.value,
			verified = CASE WHEN collected_claims.value = EXCLUDED.value
				THEN collected_claims.verified OR EXCLUDED.verified
				ELSE EXCLUDED.verified END,
			collection_date = EXCLUDED.collection_date
	`
	_, err := r.pool.Exec(ctx, query,
		claim.UserID, claim.ClaimID, claim.Value, claim.Verified, claim.CollectionDate)
	return err
}

func (r *collectedClaimRepo) Delete(ctx context.Context, userID, claimID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM collected_claims WHERE user_id = $1 AND claim_id = $2`, userID, claimID)
	return err
}

func (r *collectedClaimRepo) MarkVerified(ctx context.Context, userID string, claimIDs []string) error {
	if len(claimIDs) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE collected_claims SET verified = TRUE WHERE user_id = $1 AND claim_id = ANY($2)`,
		userID, claimIDs)
	return err
}

func (r *collectedClaimRepo) FindUserIDByClaim(ctx context.Context, claimID, value string) (string, error) {
	var userID string
	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM collected_claims WHERE claim_id = $1 AND value = $2 LIMIT 1`,
		claimID, value).Scan(&userID)
	if err != nil {
		return "", mapNoRows(err)
	}
	return userID, nil
}
