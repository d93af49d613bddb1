package flow

import (
	"context"
	"net/url"

	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

// Step es el próximo paso del end-user en el flujo.
type Step int

const (
	// StepCollectClaims: faltan claims requeridos por colectar.
	StepCollectClaims Step = iota
	// StepValidateClaims: hay claims de contacto sin validar.
	StepValidateClaims
	// StepComplete: el attempt puede finalizar hacia el cliente.
	StepComplete
)

// Progress es el estado del attempt: el paso que sigue y el detalle que la UI
// necesita para renderizarlo.
type Progress struct {
	Step Step

	// MissingClaims: claims requeridos sin valor (solo StepCollectClaims).
	MissingClaims []string
	// PendingMedia: medios con validación pendiente (solo StepValidateClaims).
	PendingMedia []repository.ValidationCodeMedia
}

// ComputeProgress evalúa el attempt contra la identidad mergeada del usuario.
// Precedencia estricta: claims faltantes > validación pendiente > completo.
func (m *Manager) ComputeProgress(ctx context.Context, attempt *repository.AuthorizeAttempt) (*Progress, error) {
	if attempt.UserID == nil {
		return nil, apperr.Internal("flow.progress.attempt_without_user")
	}
	userID := *attempt.UserID

	providerInfos, err := m.providers.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("flow.progress.providers").Wrap(err)
	}
	collected, err := m.collected.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := m.merger.Merge(providerInfos, collected)

	var missing []string
	for _, c := range m.registry.ListRequired() {
		if _, ok := merged.Get(c.ID); !ok {
			missing = append(missing, c.ID)
		}
	}
	if len(missing) > 0 {
		return &Progress{Step: StepCollectClaims, MissingClaims: missing}, nil
	}

	reasons, _, err := m.requiredValidationReasons(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(reasons) > 0 {
		var media []repository.ValidationCodeMedia
		seen := map[repository.ValidationCodeMedia]bool{}
		for _, r := range reasons {
			if !seen[r.Media()] {
				seen[r.Media()] = true
				media = append(media, r.Media())
			}
		}
		return &Progress{Step: StepValidateClaims, PendingMedia: media}, nil
	}

	return &Progress{Step: StepComplete}, nil
}

// RedirectURI materializa el próximo paso como redirect:
//   - StepCollectClaims / StepValidateClaims: UI first-party, con el state
//     firmado del attempt
//   - StepComplete: redirect_uri del cliente con code y su state original
func (m *Manager) RedirectURI(ctx context.Context, attempt *repository.AuthorizeAttempt) (string, error) {
	progress, err := m.ComputeProgress(ctx, attempt)
	if err != nil {
		return "", err
	}
	switch progress.Step {
	case StepCollectClaims:
		return m.uiRedirect(m.urls.CollectClaimsURL, attempt)
	case StepValidateClaims:
		return m.uiRedirect(m.urls.ValidateCodeURL, attempt)
	case StepComplete:
		return m.completeRedirect(ctx, attempt)
	}
	// El switch cubre todos los pasos; llegar acá es un bug.
	return "", apperr.Internal("flow.redirect.unhandled_step")
}

func (m *Manager) uiRedirect(base *url.URL, attempt *repository.AuthorizeAttempt) (string, error) {
	state, err := m.authorize.EncodeState(attempt)
	if err != nil {
		return "", err
	}
	u := *base
	q := u.Query()
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (m *Manager) completeRedirect(ctx context.Context, attempt *repository.AuthorizeAttempt) (string, error) {
	code, err := m.authCodes.Generate(ctx, attempt)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(attempt.RedirectURI)
	if err != nil {
		return "", apperr.Internal("flow.redirect.client_uri").Wrap(err)
	}
	q := u.Query()
	q.Set("code", code)
	if attempt.State != nil {
		q.Set("state", *attempt.State)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SignInRedirectURI arma el redirect inicial hacia la pantalla de sign-in,
// con el state firmado del attempt recién creado.
func (m *Manager) SignInRedirectURI(attempt *repository.AuthorizeAttempt) (string, error) {
	return m.uiRedirect(m.urls.SignInURL, attempt)
}

// ErrorRedirectURI arma el redirect de error hacia el cliente (RFC 6749
// §4.1.2.1). Sin attempt confiable no se puede redirigir al cliente: va a la
// página de error propia.
func (m *Manager) ErrorRedirectURI(attempt *repository.AuthorizeAttempt, errCode, description string) string {
	if attempt == nil {
		u := *m.urls.ErrorURL
		q := u.Query()
		q.Set("error", errCode)
		u.RawQuery = q.Encode()
		return u.String()
	}
	u, err := url.Parse(attempt.RedirectURI)
	if err != nil {
		u = m.urls.ErrorURL
	}
	redirect := *u
	q := redirect.Query()
	q.Set("error", errCode)
	if description != "" {
		q.Set("error_description", description)
	}
	if attempt.State != nil {
		q.Set("state", *attempt.State)
	}
	redirect.RawQuery = q.Encode()
	return redirect.String()
}
