package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sympauthy/sympauthy/internal/config"
	"github.com/sympauthy/sympauthy/internal/config/resolved"
)

// Con secciones de configuración rotas el server levanta igual: el error sale
// por request en los endpoints que las necesitan, nunca en el arranque.
func TestDisabledConfigSectionFailsOnUse(t *testing.T) {
	res := resolved.Resolve(&config.Config{})
	require.False(t, res.Auth.Enabled())
	require.False(t, res.Urls.Enabled())

	h := NewRouter(&Deps{Config: res, Metrics: prometheus.NewRegistry()})
	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	// discovery responde el error de configuración, no el documento
	rec := do(http.MethodGet, "/.well-known/openid-configuration")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeJSON[apiError](t, rec)
	assert.Equal(t, "server_error", body.Error)

	rec = do(http.MethodPost, "/oauth2/token")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(http.MethodGet, "/oauth2/authorize")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(http.MethodGet, "/flow/configuration")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// lo operacional sigue vivo
	rec = do(http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
