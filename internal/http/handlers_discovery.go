package http

import (
	"net/http"
	"strings"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/user"
)

// ───────────────────────────────────────────────────────────────
// discovery
// ───────────────────────────────────────────────────────────────

type discoveryDTO struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	UserinfoEndpoint                  string   `json:"userinfo_endpoint"`
	RevocationEndpoint                string   `json:"revocation_endpoint"`
	JwksURI                           string   `json:"jwks_uri"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	ScopesSupported                   []string `json:"scopes_supported"`
	ClaimsSupported                   []string `json:"claims_supported"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
}

// HandleDiscovery implementa GET /.well-known/openid-configuration. El
// documento es estático por proceso: todo sale de la configuración resuelta.
func HandleDiscovery(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iss := strings.TrimRight(d.IssuerURL, "/")
		WriteJSON(w, http.StatusOK, discoveryDTO{
			Issuer:                iss,
			AuthorizationEndpoint: iss + "/oauth2/authorize",
			TokenEndpoint:         iss + "/oauth2/token",
			UserinfoEndpoint:      iss + "/userinfo",
			RevocationEndpoint:    iss + "/oauth2/revoke",
			JwksURI:               iss + "/.well-known/jwks.json",
			ResponseTypesSupported: []string{"code"},
			GrantTypesSupported:    []string{"authorization_code", "refresh_token"},
			ScopesSupported: []string{
				claims.ScopeOpenID, claims.ScopeProfile, claims.ScopeEmail,
				claims.ScopePhone, claims.ScopeOfflineAccess,
			},
			ClaimsSupported:                   append([]string{"sub"}, d.Registry.IDs()...),
			SubjectTypesSupported:             []string{"public"},
			IDTokenSigningAlgValuesSupported:  []string{"EdDSA"},
			TokenEndpointAuthMethodsSupported: []string{"client_secret_basic", "client_secret_post"},
		})
	}
}

// HandleJWKS implementa GET /.well-known/jwks.json con la clave de firma
// vigente.
func HandleJWKS(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(d.Issuer.Keys.JWKSJSON())
	}
}

// ───────────────────────────────────────────────────────────────
// userinfo
// ───────────────────────────────────────────────────────────────

// HandleUserInfo implementa GET /userinfo: valida el bearer access token y
// responde los claims mergeados filtrados por los scopes del token.
func HandleUserInfo(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="userinfo"`)
			WriteError(w, http.StatusUnauthorized, "invalid_token", "")
			return
		}
		token, err := d.Tokens.ValidateAccess(r.Context(), raw)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="userinfo", error="invalid_token"`)
			WriteAppError(w, r, err)
			return
		}
		info, err := d.Flow.UserInfo(r.Context(), token.UserID, token.Scopes)
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, info)
	}
}

// HandleUpdateClaims implementa PATCH /userinfo: escritura de collected
// claims por un caller autenticado. Cada claim exige que el token traiga uno
// de sus write scopes; un valor null borra el claim.
func HandleUpdateClaims(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="userinfo"`)
			WriteError(w, http.StatusUnauthorized, "invalid_token", "")
			return
		}
		token, err := d.Tokens.ValidateAccess(r.Context(), raw)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="userinfo", error="invalid_token"`)
			WriteAppError(w, r, err)
			return
		}
		var body map[string]*string
		if !ReadJSON(w, r, &body) {
			return
		}
		updates := make([]user.ClaimUpdate, 0, len(body))
		for id, value := range body {
			updates = append(updates, user.ClaimUpdate{ClaimID: id, Value: value})
		}
		if err := d.Flow.Collected().UpdateFromAPI(r.Context(), token.UserID, updates, token.Scopes); err != nil {
			WriteAppError(w, r, err)
			return
		}
		info, err := d.Flow.UserInfo(r.Context(), token.UserID, token.Scopes)
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, info)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// ───────────────────────────────────────────────────────────────
// health
// ───────────────────────────────────────────────────────────────

// HandleHealthz responde 200 mientras el proceso esté vivo.
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// HandleReadyz verifica que el storage responda antes de declararse listo.
func HandleReadyz(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			if err := d.Ping(r.Context()); err != nil {
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
				})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
