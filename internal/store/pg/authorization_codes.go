package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type authorizationCodeRepo struct {
	pool *pgxpool.Pool
}

func (r *authorizationCodeRepo) Create(ctx context.Context, code *repository.AuthorizationCode) error {
	const query = `
		INSERT INTO authorization_codes
			(id, authorize_attempt_id, code_hash, consumed, issue_date, expiration_date)
		VALUES ($1, $2, $3, FALSE, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		code.ID, code.AuthorizeAttemptID, code.CodeHash, code.IssueDate, code.ExpirationDate)
	return err
}

// Consume invalida el code en un único UPDATE condicional: bajo carrera, solo
// una de dos redenciones concurrentes ve consumed=FALSE y obtiene la fila.
func (r *authorizationCodeRepo) Consume(ctx context.Context, codeHash string) (*repository.AuthorizationCode, error) {
	const query = `
		UPDATE authorization_codes SET consumed = TRUE
		WHERE code_hash = $1 AND consumed = FALSE
		RETURNING id, authorize_attempt_id, code_hash, consumed, issue_date, expiration_date
	`
	var c repository.AuthorizationCode
	err := r.pool.QueryRow(ctx, query, codeHash).Scan(
		&c.ID, &c.AuthorizeAttemptID, &c.CodeHash, &c.Consumed, &c.IssueDate, &c.ExpirationDate)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguir "nunca existió" de "ya consumido" para poder loguear
		// reintentos de replay.
		var exists bool
		if lookupErr := r.pool.QueryRow(ctx,
			`SELECT TRUE FROM authorization_codes WHERE code_hash = $1`, codeHash,
		).Scan(&exists); lookupErr == nil {
			return nil, repository.ErrAlreadyConsumed
		}
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
