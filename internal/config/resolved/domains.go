package resolved

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/config"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/oauth2"
)

// AuthConfig son los parámetros resueltos de emisión de tokens y del flujo.
type AuthConfig struct {
	Issuer     string
	KeyPath    string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	AttemptTTL           time.Duration
	AuthorizationCodeTTL time.Duration
	ValidationCodeTTL    time.Duration
	ValidationCodeDigits int
}

func resolveAuth(cfg *config.Config) Of[AuthConfig] {
	var errs []error
	issuer := strings.TrimRight(strings.TrimSpace(cfg.JWT.Issuer), "/")
	if issuer == "" {
		errs = append(errs, fmt.Errorf("jwt.issuer is required"))
	} else if u, err := url.Parse(issuer); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("jwt.issuer: not a valid http(s) url: %q", issuer))
	}
	if len(errs) > 0 {
		return disabled[AuthConfig]("auth", errs)
	}
	return enabled("auth", &AuthConfig{
		Issuer:               issuer,
		KeyPath:              cfg.JWT.KeyPath,
		AccessTTL:            config.Dur(cfg.JWT.AccessTTL),
		RefreshTTL:           config.Dur(cfg.JWT.RefreshTTL),
		AttemptTTL:           config.Dur(cfg.Flow.AttemptTTL),
		AuthorizationCodeTTL: config.Dur(cfg.Flow.AuthorizationCode.TTL),
		ValidationCodeTTL:    config.Dur(cfg.Flow.ValidationCode.TTL),
		ValidationCodeDigits: cfg.Flow.ValidationCode.Digits,
	})
}

// UrlsConfig son las URLs resueltas de la UI first-party.
type UrlsConfig struct {
	SignIn        *url.URL
	CollectClaims *url.URL
	ValidateCode  *url.URL
	Error         *url.URL
}

func resolveUrls(cfg *config.Config) Of[UrlsConfig] {
	var errs []error
	parse := func(field, raw string) *url.URL {
		if strings.TrimSpace(raw) == "" {
			errs = append(errs, fmt.Errorf("urls.%s is required", field))
			return nil
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("urls.%s: not a valid http(s) url: %q", field, raw))
			return nil
		}
		return u
	}
	out := &UrlsConfig{
		SignIn:        parse("sign_in", cfg.Urls.SignIn),
		CollectClaims: parse("collect_claims", cfg.Urls.CollectClaims),
		ValidateCode:  parse("validate_code", cfg.Urls.ValidateCode),
		Error:         parse("error", cfg.Urls.Error),
	}
	if len(errs) > 0 {
		return disabled[UrlsConfig]("urls", errs)
	}
	return enabled("urls", out)
}

// ClaimsConfig es el registry de claims construido desde la configuración.
type ClaimsConfig struct {
	Registry *claims.Registry
}

func resolveClaims(cfg *config.Config) Of[ClaimsConfig] {
	var errs []error
	var list []*claims.Claim
	seen := map[string]bool{}
	for _, cc := range cfg.Claims {
		if cc.ID == "" {
			errs = append(errs, fmt.Errorf("claims: entry without id"))
			continue
		}
		if seen[cc.ID] {
			errs = append(errs, fmt.Errorf("claims: duplicate claim %q", cc.ID))
			continue
		}
		seen[cc.ID] = true

		if cc.Custom {
			dt, err := resolveDataType(cc.DataType)
			if err != nil {
				errs = append(errs, fmt.Errorf("claims: claim %q: %w", cc.ID, err))
				continue
			}
			if _, std := claims.FindOpenIdClaim(cc.ID); std {
				errs = append(errs, fmt.Errorf("claims: claim %q: shadows a standard claim", cc.ID))
				continue
			}
			list = append(list, claims.NewCustomClaim(cc.ID, dt, cc.Required, cc.ReadScopes, cc.WriteScopes))
			continue
		}

		oc, ok := claims.FindOpenIdClaim(cc.ID)
		if !ok {
			errs = append(errs, fmt.Errorf("claims: unknown standard claim %q", cc.ID))
			continue
		}
		list = append(list, claims.NewStandardClaim(oc, cc.Required, cc.AllowedValues))
	}
	if len(errs) > 0 {
		return disabled[ClaimsConfig]("claims", errs)
	}
	return enabled("claims", &ClaimsConfig{Registry: claims.NewRegistry(list)})
}

func resolveDataType(s string) (claims.DataType, error) {
	switch claims.DataType(s) {
	case claims.TypeString, claims.TypeEmail, claims.TypePhone,
		claims.TypeDate, claims.TypeNumber, claims.TypeBool:
		return claims.DataType(s), nil
	default:
		return "", fmt.Errorf("unknown data type %q", s)
	}
}

// ClientsConfig son los clientes OAuth2 validados.
type ClientsConfig struct {
	Clients []oauth2.Client
}

func resolveClients(cfg *config.Config) Of[ClientsConfig] {
	var errs []error
	var out []oauth2.Client
	seen := map[string]bool{}
	for _, cc := range cfg.Clients {
		fail := func(format string, args ...any) {
			errs = append(errs, fmt.Errorf("clients: client %q: "+format, append([]any{cc.ID}, args...)...))
		}
		if cc.ID == "" {
			errs = append(errs, fmt.Errorf("clients: entry without id"))
			continue
		}
		if seen[cc.ID] {
			fail("duplicate id")
			continue
		}
		seen[cc.ID] = true
		if cc.Secret == "" {
			fail("secret is required")
		}
		if len(cc.RedirectURIs) == 0 {
			fail("at least one redirect_uri is required")
		}
		for _, raw := range cc.RedirectURIs {
			u, err := url.Parse(raw)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				fail("redirect_uri %q is not a valid http(s) url", raw)
			}
		}
		if len(cc.AllowedScopes) == 0 {
			fail("at least one allowed scope is required")
		}
		out = append(out, oauth2.Client{
			ID:            cc.ID,
			Secret:        cc.Secret,
			RedirectURIs:  cc.RedirectURIs,
			AllowedScopes: cc.AllowedScopes,
			Audience:      cc.Audience,
		})
	}
	if len(errs) > 0 {
		return disabled[ClientsConfig]("clients", errs)
	}
	return enabled("clients", &ClientsConfig{Clients: out})
}

// ValidationConfig lista los medios habilitados para validation codes.
type ValidationConfig struct {
	EnabledMedia []repository.ValidationCodeMedia
}

func resolveValidation(cfg *config.Config) Of[ValidationConfig] {
	var errs []error
	var media []repository.ValidationCodeMedia
	if cfg.Validation.Email.Enabled {
		if cfg.SMTP.Host == "" {
			errs = append(errs, fmt.Errorf("validation.email: smtp.host is required when email validation is enabled"))
		} else {
			media = append(media, repository.MediaEmail)
		}
	}
	if cfg.Validation.Phone.Enabled {
		media = append(media, repository.MediaPhone)
	}
	if len(errs) > 0 {
		return disabled[ValidationConfig]("validation", errs)
	}
	return enabled("validation", &ValidationConfig{EnabledMedia: media})
}
