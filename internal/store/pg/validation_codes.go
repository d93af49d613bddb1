package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

type validationCodeRepo struct {
	pool *pgxpool.Pool
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func (r *validationCodeRepo) Create(ctx context.Context, code *repository.ValidationCode) error {
	const query = `
		INSERT INTO validation_codes
			(id, code, user_id, authorize_attempt_id, media, reasons, issue_date, expiration_date, revoked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL)
	`
	reasons := make([]string, len(code.Reasons))
	for i, reason := range code.Reasons {
		reasons[i] = string(reason)
	}
	_, err := r.pool.Exec(ctx, query,
		code.ID, code.Code, code.UserID, code.AuthorizeAttemptID,
		string(code.Media), reasons, code.IssueDate, code.ExpirationDate)
	return err
}

const validationCodeColumns = `id, code, user_id, authorize_attempt_id, media, reasons, issue_date, expiration_date, revoked_at`

func scanValidationCodes(rows pgx.Rows) ([]*repository.ValidationCode, error) {
	defer rows.Close()
	var out []*repository.ValidationCode
	for rows.Next() {
		var c repository.ValidationCode
		var media string
		var reasons []string
		if err := rows.Scan(&c.ID, &c.Code, &c.UserID, &c.AuthorizeAttemptID,
			&media, &reasons, &c.IssueDate, &c.ExpirationDate, &c.RevokedAt); err != nil {
			return nil, err
		}
		c.Media = repository.ValidationCodeMedia(media)
		c.Reasons = make([]repository.ValidationCodeReason, len(reasons))
		for i, reason := range reasons {
			c.Reasons[i] = repository.ValidationCodeReason(reason)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *validationCodeRepo) FindByAttempt(ctx context.Context, attemptID string) ([]*repository.ValidationCode, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+validationCodeColumns+` FROM validation_codes
		 WHERE authorize_attempt_id = $1 ORDER BY issue_date`, attemptID)
	if err != nil {
		return nil, err
	}
	return scanValidationCodes(rows)
}

func (r *validationCodeRepo) FindByAttemptAndMedia(ctx context.Context, attemptID string, media repository.ValidationCodeMedia) ([]*repository.ValidationCode, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+validationCodeColumns+` FROM validation_codes
		 WHERE authorize_attempt_id = $1 AND media = $2 ORDER BY issue_date`,
		attemptID, string(media))
	if err != nil {
		return nil, err
	}
	return scanValidationCodes(rows)
}

func (r *validationCodeRepo) Revoke(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE validation_codes SET revoked_at = $2 WHERE id = ANY($1) AND revoked_at IS NULL`,
		ids, time.Now().UTC())
	return err
}

// Consume marca el code como usado (revocado). El UPDATE condicional garantiza
// un único consumidor bajo envíos concurrentes del mismo formulario.
func (r *validationCodeRepo) Consume(ctx context.Context, id string) error {
	const query = `
		UPDATE validation_codes SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if lookupErr := r.pool.QueryRow(ctx,
			`SELECT TRUE FROM validation_codes WHERE id = $1`, id).Scan(&exists); lookupErr == nil {
			return repository.ErrAlreadyConsumed
		}
		return repository.ErrNotFound
	}
	return nil
}
