package http

import (
	"net/http"
	"strings"

	"github.com/sympauthy/sympauthy/internal/oauth2"
)

// HandleAuthorize implementa GET /oauth2/authorize: valida la request, crea
// el attempt y manda al end-user a la pantalla de sign-in con el state
// firmado. Cliente o redirect_uri inválidos NUNCA redirigen: no hay destino
// confiable.
func HandleAuthorize(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if rt := q.Get("response_type"); rt != "code" {
			WriteError(w, http.StatusBadRequest, "unsupported_response_type", "solo se soporta response_type=code")
			return
		}
		var clientState *string
		if s := q.Get("state"); s != "" {
			clientState = &s
		}
		scopes := strings.Fields(q.Get("scope"))

		attempt, err := d.Flow.Authorize().StartAttempt(r.Context(), q.Get("client_id"), q.Get("redirect_uri"), clientState, scopes)
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		target, err := d.Flow.SignInRedirectURI(attempt)
		if err != nil {
			WriteAppError(w, r, err)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// authenticateClient saca las credenciales del cliente de Basic auth o del
// form body (RFC 6749 §2.3.1).
func authenticateClient(d *Deps, r *http.Request) (*oauth2.Client, error) {
	if id, secret, ok := r.BasicAuth(); ok {
		return d.Clients.Authenticate(id, secret)
	}
	return d.Clients.Authenticate(r.PostFormValue("client_id"), r.PostFormValue("client_secret"))
}

// HandleToken implementa POST /oauth2/token para los grants
// authorization_code y refresh_token.
func HandleToken(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_request", "form inválido")
			return
		}
		client, err := authenticateClient(d, r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="oauth2"`)
			WriteAppError(w, r, err)
			return
		}

		grantType := r.PostFormValue("grant_type")
		var set *oauth2.TokenSet
		switch grantType {
		case "authorization_code":
			set, err = d.Tokens.ExchangeAuthorizationCode(r.Context(), client,
				r.PostFormValue("code"), r.PostFormValue("redirect_uri"))
		case "refresh_token":
			set, err = d.Tokens.Refresh(r.Context(), client, r.PostFormValue("refresh_token"))
		default:
			WriteError(w, http.StatusBadRequest, oauth2.ErrCodeUnsupportedGrantType, "")
			return
		}
		if err != nil {
			oauth2.LogGrantFailure(r.Context(), client.ID, grantType, err)
			WriteAppError(w, r, err)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		WriteJSON(w, http.StatusOK, set)
	}
}

// HandleRevoke implementa POST /oauth2/revoke (RFC 7009). Token desconocido
// o ajeno responde 200 igual: no se filtra existencia.
func HandleRevoke(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_request", "form inválido")
			return
		}
		client, err := authenticateClient(d, r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="oauth2"`)
			WriteAppError(w, r, err)
			return
		}
		if err := d.Tokens.Revoke(r.Context(), client, r.PostFormValue("token")); err != nil {
			WriteAppError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
