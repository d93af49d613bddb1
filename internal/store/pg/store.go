// Package pg implementa los repositorios de dominio sobre PostgreSQL.
// Usa pgxpool directamente. Los consumos de códigos de un solo uso se
// resuelven con conditional updates (single statement), nunca read-then-write.
package pg

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/migrations"
)

// Store agrupa los repositorios PostgreSQL sobre un pool compartido.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

// Ping verifica la conexión al pool (para readiness checks).
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Attempts() repository.AttemptRepository                     { return &attemptRepo{pool: s.pool} }
func (s *Store) Tokens() repository.TokenRepository                         { return &tokenRepo{pool: s.pool} }
func (s *Store) AuthorizationCodes() repository.AuthorizationCodeRepository { return &authorizationCodeRepo{pool: s.pool} }
func (s *Store) CollectedClaims() repository.CollectedClaimRepository       { return &collectedClaimRepo{pool: s.pool} }
func (s *Store) ValidationCodes() repository.ValidationCodeRepository       { return &validationCodeRepo{pool: s.pool} }
func (s *Store) Users() repository.UserRepository                           { return &userRepo{pool: s.pool} }
func (s *Store) ProviderUserInfo() repository.ProviderUserInfoRepository    { return &providerUserInfoRepo{pool: s.pool} }

// EnsureSchema aplica las migraciones embebidas en orden. Los statements son
// idempotentes (IF NOT EXISTS), así que repetir la pasada es seguro.
func (s *Store) EnsureSchema(ctx context.Context) error {
	entries, err := migrations.PostgresFS.ReadDir(migrations.PostgresDir)
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		ddl, err := migrations.PostgresFS.ReadFile(path.Join(migrations.PostgresDir, name))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx, string(ddl)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}
