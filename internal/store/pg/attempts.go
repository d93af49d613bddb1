package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type attemptRepo struct {
	pool *pgxpool.Pool
}

func (r *attemptRepo) Create(ctx context.Context, attempt *repository.AuthorizeAttempt) error {
	const query = `
		INSERT INTO authorize_attempts
			(id, client_id, redirect_uri, state, user_id, granted_scopes, attempt_date, expiration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		attempt.ID, attempt.ClientID, attempt.RedirectURI, attempt.State,
		attempt.UserID, attempt.GrantedScopes, attempt.AttemptDate, attempt.ExpirationDate,
	)
	return err
}

func (r *attemptRepo) GetByID(ctx context.Context, id string) (*repository.AuthorizeAttempt, error) {
	const query = `
		SELECT id, client_id, redirect_uri, state, user_id, granted_scopes, attempt_date, expiration_date
		FROM authorize_attempts WHERE id = $1
	`
	var a repository.AuthorizeAttempt
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.ClientID, &a.RedirectURI, &a.State,
		&a.UserID, &a.GrantedScopes, &a.AttemptDate, &a.ExpirationDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attemptRepo) SetUser(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE authorize_attempts SET user_id = $2 WHERE id = $1`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *attemptRepo) SetGrantedScopes(ctx context.Context, id string, scopes []string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE authorize_attempts SET granted_scopes = $2 WHERE id = $1`, id, scopes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
