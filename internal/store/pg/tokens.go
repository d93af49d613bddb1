package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type tokenRepo struct {
	pool *pgxpool.Pool
}

func (r *tokenRepo) Create(ctx context.Context, token *repository.AuthenticationToken) (string, error) {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	const query = `
		INSERT INTO authentication_tokens
			(id, type, token_hash, user_id, client_id, scopes, authorize_attempt_id, revoked, issue_date, expiration_date)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		token.ID, string(token.Type), token.TokenHash, token.UserID, token.ClientID,
		token.Scopes, token.AuthorizeAttemptID, token.Revoked, token.IssueDate, token.ExpirationDate,
	)
	if err != nil {
		return "", err
	}
	return token.ID, nil
}

const tokenColumns = `id, type, COALESCE(token_hash, ''), user_id, client_id, scopes, authorize_attempt_id, revoked, issue_date, expiration_date`

func scanToken(row pgx.Row) (*repository.AuthenticationToken, error) {
	var t repository.AuthenticationToken
	var typ string
	err := row.Scan(
		&t.ID, &typ, &t.TokenHash, &t.UserID, &t.ClientID,
		&t.Scopes, &t.AuthorizeAttemptID, &t.Revoked, &t.IssueDate, &t.ExpirationDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Type = repository.TokenType(typ)
	return &t, nil
}

func (r *tokenRepo) GetByID(ctx context.Context, id string) (*repository.AuthenticationToken, error) {
	return scanToken(r.pool.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM authentication_tokens WHERE id = $1`, id))
}

func (r *tokenRepo) GetRefreshByHash(ctx context.Context, tokenHash string) (*repository.AuthenticationToken, error) {
	return scanToken(r.pool.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM authentication_tokens WHERE token_hash = $1 AND type = 'REFRESH'`, tokenHash))
}

func (r *tokenRepo) Revoke(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE authentication_tokens SET revoked = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
