package flow

import (
	"context"
	"errors"

	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/observability/logger"
	"github.com/sympauthy/sympauthy/internal/provider"
)

// Providers expone el resolver para el boundary HTTP (listado en la flow
// configuration, armado del redirect hacia el provider).
func (m *Manager) Providers() *provider.Resolver { return m.resolver }

// ProviderAuthorizeURL arma el redirect hacia el provider, llevando el state
// firmado del attempt para retomar el flujo en el callback.
func (m *Manager) ProviderAuthorizeURL(ctx context.Context, attempt *repository.AuthorizeAttempt, providerID string) (string, error) {
	p, err := m.resolver.FindEnabled(ctx, providerID)
	if err != nil {
		return "", err
	}
	state, err := m.authorize.EncodeState(attempt)
	if err != nil {
		return "", err
	}
	return provider.AuthorizeURL(p, state), nil
}

// SignInWithProvider completa el callback del provider: canjea el code,
// obtiene la user info, resuelve (o crea) el usuario local dueño del subject
// y lo asocia al attempt.
func (m *Manager) SignInWithProvider(ctx context.Context, attempt *repository.AuthorizeAttempt, providerID, code string) error {
	p, err := m.resolver.FindEnabled(ctx, providerID)
	if err != nil {
		return err
	}
	token, err := provider.Exchange(ctx, p, code)
	if err != nil {
		return apperr.BadRequest("invalid_request", "provider.exchange_failed").Wrap(err)
	}
	info, err := m.fetcher.Fetch(ctx, p, token)
	if err != nil {
		return apperr.BadRequest("invalid_request", "provider.userinfo_failed").Wrap(err)
	}

	existing, err := m.providers.FindByProviderAndSubject(ctx, p.ID, info.Subject)
	var userID string
	switch {
	case err == nil:
		userID = existing.UserID
	case errors.Is(err, repository.ErrNotFound):
		u, createErr := m.users.Create(ctx, nil)
		if createErr != nil {
			return createErr
		}
		userID = u.ID
		logger.From(ctx).Info("user created from provider sign-in",
			logger.UserID(userID), logger.Provider(p.ID))
	default:
		return apperr.Internal("provider.lookup").Wrap(err)
	}

	if err := m.fetcher.Store(ctx, p, userID, info); err != nil {
		return apperr.Internal("provider.store_userinfo").Wrap(err)
	}
	return m.authorize.SetAuthenticatedUser(ctx, attempt, userID)
}
