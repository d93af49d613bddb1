// Package flow orquesta el flujo de autorización interactivo: qué le falta al
// end-user para completar el attempt (claims requeridos, validación de claims
// de contacto) y hacia dónde redirigirlo en cada paso.
package flow

import (
	"net/url"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/oauth2"
	"github.com/sympauthy/sympauthy/internal/provider"
	"github.com/sympauthy/sympauthy/internal/user"
	"github.com/sympauthy/sympauthy/internal/validationcode"
)

// UIConfig son las URLs de la UI first-party hacia las que el flow redirige
// al end-user según el paso que le falte.
type UIConfig struct {
	SignInURL        *url.URL // pantalla de sign-in/sign-up
	CollectClaimsURL *url.URL // formulario de colecta de claims
	ValidateCodeURL  *url.URL // formulario de ingreso de validation code
	ErrorURL         *url.URL // página de error terminal
}

// Manager orquesta los pasos del flujo de autorización.
type Manager struct {
	registry  *claims.Registry
	merger    *user.Merger
	collected *user.CollectedClaimManager
	users     *user.Manager
	providers repository.ProviderUserInfoRepository

	codes     *validationcode.Manager
	authorize *oauth2.AuthorizeManager
	authCodes *oauth2.AuthorizationCodeManager

	resolver *provider.Resolver
	fetcher  *provider.UserInfoFetcher

	urls UIConfig

	// enabledMedia limita por qué medios se despachan validation codes. Un
	// claim cuyo medio está deshabilitado no bloquea el flujo.
	enabledMedia map[repository.ValidationCodeMedia]bool
}

func NewManager(
	registry *claims.Registry,
	merger *user.Merger,
	collected *user.CollectedClaimManager,
	users *user.Manager,
	providers repository.ProviderUserInfoRepository,
	codes *validationcode.Manager,
	authorize *oauth2.AuthorizeManager,
	authCodes *oauth2.AuthorizationCodeManager,
	resolver *provider.Resolver,
	fetcher *provider.UserInfoFetcher,
	urls UIConfig,
	enabledMedia []repository.ValidationCodeMedia,
) *Manager {
	enabled := map[repository.ValidationCodeMedia]bool{}
	for _, m := range enabledMedia {
		enabled[m] = true
	}
	return &Manager{
		registry:     registry,
		merger:       merger,
		collected:    collected,
		users:        users,
		providers:    providers,
		codes:        codes,
		authorize:    authorize,
		authCodes:    authCodes,
		resolver:     resolver,
		fetcher:      fetcher,
		urls:         urls,
		enabledMedia: enabled,
	}
}

// Authorize expone el manager de attempts para el boundary HTTP.
func (m *Manager) Authorize() *oauth2.AuthorizeManager { return m.authorize }

// Collected expone el manager de collected claims para el boundary HTTP.
func (m *Manager) Collected() *user.CollectedClaimManager { return m.collected }
