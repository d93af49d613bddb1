package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sympauthy/sympauthy/internal/cache"
	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/config/resolved"
	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/flow"
	"github.com/sympauthy/sympauthy/internal/jwt"
	"github.com/sympauthy/sympauthy/internal/oauth2"
	"github.com/sympauthy/sympauthy/internal/observability/logger"
	"github.com/sympauthy/sympauthy/internal/rate"
)

// Deps agrupa todo lo que el boundary HTTP necesita. Se arma una sola vez en
// el arranque y se comparte entre handlers.
type Deps struct {
	Flow     *flow.Manager
	Tokens   *oauth2.TokenManager
	Clients  *oauth2.ClientRegistry
	Registry *claims.Registry
	Issuer   *jwt.Issuer

	// Config es la configuración resuelta. Las secciones deshabilitadas no
	// cortan el arranque: los endpoints que dependen de ellas responden el
	// error de configuración al usarse. Nil habilita todo (tests).
	Config *resolved.Resolved

	// IssuerURL es la base pública del servidor (discovery document).
	IssuerURL string

	// EnabledMedia son los medios de validación habilitados, para el flow
	// configuration endpoint.
	EnabledMedia []repository.ValidationCodeMedia

	// Cache respalda la respuesta de /flow/configuration. Nil desactiva el
	// caching.
	Cache cache.Cache

	// Limiters por operación sensible. Nil desactiva el límite.
	CodeSendLimiter rate.Limiter
	SubmitLimiter   rate.Limiter

	// Ping verifica el storage para /readyz. Nil lo omite.
	Ping func(context.Context) error

	// CORSAllowedOrigins habilita CORS para la UI first-party.
	CORSAllowedOrigins []string

	// Metrics registra los collectors HTTP y expone /metrics. Nil usa el
	// registry default.
	Metrics *prometheus.Registry
}

// NewRouter arma el router chi con todos los endpoints del servidor.
func NewRouter(d *Deps) http.Handler {
	r := chi.NewRouter()

	// Los collectors tienen que existir antes de montar WithMetrics.
	metricsHandler, metricsErr := RegisterMetrics(d.Metrics)

	r.Use(WithRequestID)
	r.Use(WithLogging)
	r.Use(WithMetrics)
	if len(d.CORSAllowedOrigins) > 0 {
		r.Use(WithCORS(d.CORSAllowedOrigins))
	}

	// Discovery, JWKS y OAuth2 core: públicos, sin límite. Con la sección
	// auth rota el error de configuración sale acá, por request.
	r.Group(func(gr chi.Router) {
		gr.Use(WithConfigSections(d, "auth"))
		gr.Get("/.well-known/openid-configuration", HandleDiscovery(d))
		gr.Get("/.well-known/jwks.json", HandleJWKS(d))
		gr.Post("/oauth2/token", HandleToken(d))
		gr.Post("/oauth2/revoke", HandleRevoke(d))
	})

	// Authorize y userinfo necesitan además las URLs de la UI (redirects y
	// armado del raw user info pasan por el flow manager).
	r.Group(func(gr chi.Router) {
		gr.Use(WithConfigSections(d, "auth", "urls"))
		gr.Get("/oauth2/authorize", HandleAuthorize(d))
		gr.Get("/userinfo", HandleUserInfo(d))
		gr.Patch("/userinfo", HandleUpdateClaims(d))
	})

	// Flow interactivo: consumido por la UI first-party con el state firmado.
	r.Route("/flow", func(fr chi.Router) {
		fr.Use(WithConfigSections(d, "auth", "urls"))
		fr.Get("/configuration", HandleFlowConfiguration(d))

		fr.Group(func(sr chi.Router) {
			sr.Use(WithRateLimit(d.SubmitLimiter, "flow_submit"))
			sr.Post("/sign-in", HandleSignIn(d))
			sr.Post("/sign-up", HandleSignUp(d))
			sr.Post("/claims", HandleCollectClaims(d))
			sr.Post("/claims/validate", HandleValidateClaims(d))
		})

		fr.Group(func(cr chi.Router) {
			cr.Use(WithRateLimit(d.CodeSendLimiter, "code_send"))
			cr.Post("/claims/codes", HandleSendValidationCodes(d))
			cr.Post("/claims/codes/resend", HandleResendValidationCodes(d))
		})

		fr.Get("/providers/{providerID}/redirect", HandleProviderRedirect(d))
		fr.Get("/providers/{providerID}/callback", HandleProviderCallback(d))
	})

	// Operacional.
	r.Get("/healthz", HandleHealthz())
	r.Get("/readyz", HandleReadyz(d))
	if metricsErr == nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	} else {
		logger.L().Warn("metrics registration failed, /metrics disabled", logger.Err(metricsErr))
	}

	return r
}

// WithConfigSections corta los requests de un grupo cuando alguna de las
// secciones de configuración que necesita quedó deshabilitada por errores de
// resolución.
func WithConfigSections(d *Deps, sections ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, s := range sections {
				if err := d.configSectionErr(s); err != nil {
					WriteAppError(w, r, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// configSectionErr retorna el error que carga una sección deshabilitada, o nil
// si resolvió bien. Deps sin Config habilita todo.
func (d *Deps) configSectionErr(section string) error {
	if d.Config == nil {
		return nil
	}
	enabled := true
	switch section {
	case "auth":
		enabled = d.Config.Auth.Enabled()
	case "urls":
		enabled = d.Config.Urls.Enabled()
	}
	if enabled {
		return nil
	}
	return apperr.Internal("config." + section + ".disabled").Wrap(resolved.ErrDisabled)
}
