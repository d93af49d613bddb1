// Package provider integra los identity providers third-party: resolución y
// validación de su configuración, el leg OAuth2 contra el provider y la
// extracción de user info de sus respuestas.
package provider

import (
	"fmt"
	"net/url"
	"strings"

	xoauth2 "golang.org/x/oauth2"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/apperr"
)

// RawProvider es la configuración sin validar de un provider, tal como vino
// del archivo de configuración.
type RawProvider struct {
	ID               string
	Name             string
	ClientID         string
	ClientSecret     string
	AuthorizationURL string
	TokenURL         string
	UserInfoURL      string
	RedirectURL      string
	Scopes           []string
	// Claims mapea claim id → path gjson dentro de la respuesta de userinfo.
	// El claim "sub" es obligatorio: sin subject no hay identidad.
	Claims  map[string]string
	Enabled *bool // nil = enabled
}

// EnabledProvider es un provider validado y usable.
type EnabledProvider struct {
	ID          string
	Name        string
	OAuth       *xoauth2.Config
	UserInfoURI *url.URL
	ClaimPaths  map[string]string
}

// Provider es la variante resuelta: enabled con su config validada, o
// disabled con los errores que lo deshabilitaron.
type Provider struct {
	ID      string
	enabled *EnabledProvider
	errs    []error
}

// Enabled retorna la config usable, si el provider quedó habilitado.
func (p *Provider) Enabled() (*EnabledProvider, bool) {
	return p.enabled, p.enabled != nil
}

// Errors retorna los errores de validación de un provider deshabilitado.
func (p *Provider) Errors() []error { return p.errs }

var errProviderDisabled = apperr.BadRequest("invalid_request", "provider.disabled")

// resolveOne valida un RawProvider. Cada problema se acumula: el operador ve
// todos los errores del provider de una vez, no de a uno por reinicio.
func resolveOne(raw RawProvider) *Provider {
	p := &Provider{ID: raw.ID}
	if raw.Enabled != nil && !*raw.Enabled {
		p.errs = append(p.errs, fmt.Errorf("provider %q: disabled by configuration", raw.ID))
		return p
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("provider %q: "+format, append([]any{raw.ID}, args...)...))
	}

	if strings.TrimSpace(raw.Name) == "" {
		fail("name is required")
	}
	if raw.ClientID == "" {
		fail("client_id is required")
	}
	if raw.ClientSecret == "" {
		fail("client_secret is required")
	}

	authURL := requireHTTPURL(raw.AuthorizationURL, "authorization_url", fail)
	tokenURL := requireHTTPURL(raw.TokenURL, "token_url", fail)
	userInfoURL := requireHTTPURL(raw.UserInfoURL, "user_info_url", fail)
	_ = authURL
	_ = tokenURL

	paths := map[string]string{}
	for claimID, path := range raw.Claims {
		if strings.TrimSpace(path) == "" {
			fail("claim %q: empty path", claimID)
			continue
		}
		if claimID != SubjectClaim {
			if _, ok := claims.FindOpenIdClaim(claimID); !ok {
				fail("claim %q: unknown claim", claimID)
				continue
			}
		}
		paths[claimID] = path
	}
	if _, ok := paths[SubjectClaim]; !ok {
		fail("claim %q is required", SubjectClaim)
	}

	if len(errs) > 0 {
		p.errs = errs
		return p
	}

	p.enabled = &EnabledProvider{
		ID:   raw.ID,
		Name: raw.Name,
		OAuth: &xoauth2.Config{
			ClientID:     raw.ClientID,
			ClientSecret: raw.ClientSecret,
			Endpoint: xoauth2.Endpoint{
				AuthURL:  raw.AuthorizationURL,
				TokenURL: raw.TokenURL,
			},
			RedirectURL: raw.RedirectURL,
			Scopes:      raw.Scopes,
		},
		UserInfoURI: userInfoURL,
		ClaimPaths:  paths,
	}
	return p
}

// SubjectClaim es el id del claim de subject dentro de la respuesta del
// provider.
const SubjectClaim = "sub"

func requireHTTPURL(raw, field string, fail func(string, ...any)) *url.URL {
	if raw == "" {
		fail("%s is required", field)
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		fail("%s: not a valid http(s) url: %q", field, raw)
		return nil
	}
	return u
}
