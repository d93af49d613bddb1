// Package store arma el conjunto de repositorios según el driver configurado.
//
// Drivers:
//   - postgres: producción (pgxpool, conditional updates para códigos de un solo uso)
//   - memory:   desarrollo y tests
package store

import (
	"context"
	"fmt"

	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/store/memory"
	"github.com/sympauthy/sympauthy/internal/store/pg"
)

// Store agrupa los repositorios de todas las entidades persistidas.
type Store struct {
	Attempts           repository.AttemptRepository
	Tokens             repository.TokenRepository
	AuthorizationCodes repository.AuthorizationCodeRepository
	CollectedClaims    repository.CollectedClaimRepository
	ValidationCodes    repository.ValidationCodeRepository
	Users              repository.UserRepository
	ProviderUserInfo   repository.ProviderUserInfoRepository

	closeFn   func()
	pingFn    func(context.Context) error
	migrateFn func(context.Context) error
}

// Config selecciona e inicializa el driver.
type Config struct {
	Driver string // "postgres" | "memory"
	DSN    string // requerido para postgres
}

// New crea el Store según la configuración.
func New(ctx context.Context, cfg Config) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		p, err := pg.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("store: postgres: %w", err)
		}
		return &Store{
			Attempts:           p.Attempts(),
			Tokens:             p.Tokens(),
			AuthorizationCodes: p.AuthorizationCodes(),
			CollectedClaims:    p.CollectedClaims(),
			ValidationCodes:    p.ValidationCodes(),
			Users:              p.Users(),
			ProviderUserInfo:   p.ProviderUserInfo(),
			closeFn:            p.Close,
			pingFn:             p.Ping,
			migrateFn:          p.EnsureSchema,
		}, nil
	case "memory", "":
		m := memory.New()
		return &Store{
			Attempts:           m.Attempts(),
			Tokens:             m.Tokens(),
			AuthorizationCodes: m.AuthorizationCodes(),
			CollectedClaims:    m.CollectedClaims(),
			ValidationCodes:    m.ValidationCodes(),
			Users:              m.Users(),
			ProviderUserInfo:   m.ProviderUserInfo(),
		}, nil
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// Close libera las conexiones del driver (no-op para memory).
func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// Ping verifica que el backend responda (no-op para memory).
func (s *Store) Ping(ctx context.Context) error {
	if s.pingFn != nil {
		return s.pingFn(ctx)
	}
	return nil
}

// EnsureSchema crea el esquema si el driver lo soporta (no-op para memory).
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.migrateFn != nil {
		return s.migrateFn(ctx)
	}
	return nil
}
