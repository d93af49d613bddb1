package pg

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type providerUserInfoRepo struct {
	pool *pgxpool.Pool
}

func (r *providerUserInfoRepo) FindByUserID(ctx context.Context, userID string) ([]*repository.ProviderUserInfo, error) {
	const query = `
		SELECT provider_id, user_id, user_info, change_date
		FROM provider_user_info WHERE user_id = $1
		ORDER BY provider_id
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*repository.ProviderUserInfo
	for rows.Next() {
		var info repository.ProviderUserInfo
		var raw []byte
		if err := rows.Scan(&info.ProviderID, &info.UserID, &raw, &info.ChangeDate); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &info.UserInfo); err != nil {
			return nil, err
		}
		out = append(out, &info)
	}
	return out, rows.Err()
}

func (r *providerUserInfoRepo) FindByProviderAndSubject(ctx context.Context, providerID, subject string) (*repository.ProviderUserInfo, error) {
	const query = `
		SELECT provider_id, user_id, user_info, change_date
		FROM provider_user_info
		WHERE provider_id = $1 AND user_info->>'sub' = $2
	`
	var info repository.ProviderUserInfo
	var raw []byte
	err := r.pool.QueryRow(ctx, query, providerID, subject).Scan(
		&info.ProviderID, &info.UserID, &raw, &info.ChangeDate)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if err := json.Unmarshal(raw, &info.UserInfo); err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *providerUserInfoRepo) Upsert(ctx context.Context, info *repository.ProviderUserInfo) error {
	raw, err := json.Marshal(info.UserInfo)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO provider_user_info (provider_id, user_id, user_info, change_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider_id, user_id) DO UPDATE SET
			user_info = EXCLUDED.user_info,
			change_date = EXCLUDED.change_date
	`
	_, err = r.pool.Exec(ctx, query, info.ProviderID, info.UserID, raw, info.ChangeDate)
	return err
}
