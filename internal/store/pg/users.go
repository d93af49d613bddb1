package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

func (r *userRepo) Create(ctx context.Context, user *repository.User) error {
	const query = `
		INSERT INTO app_users (id, status, password_hash, creation_date)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID, string(user.Status), user.PasswordHash, user.CreationDate)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	var u repository.User
	var status string
	err := r.pool.QueryRow(ctx,
		`SELECT id, status, password_hash, creation_date FROM app_users WHERE id = $1`, id,
	).Scan(&u.ID, &status, &u.PasswordHash, &u.CreationDate)
	if err != nil {
		return nil, mapNoRows(err)
	}
	u.Status = repository.UserStatus(status)
	return &u, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE app_users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
