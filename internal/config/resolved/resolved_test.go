package resolved

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/config"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
)

// baseConfig arma una configuración mínima que resuelve todos los dominios.
func baseConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Issuer = "https://auth.test"
	cfg.JWT.AccessTTL = "15m"
	cfg.JWT.RefreshTTL = "720h"
	cfg.Flow.AttemptTTL = "1h"
	cfg.Flow.AuthorizationCode.TTL = "1m"
	cfg.Flow.ValidationCode.TTL = "10m"
	cfg.Flow.ValidationCode.Digits = 6
	cfg.Urls.SignIn = "https://auth.test/ui/sign-in"
	cfg.Urls.CollectClaims = "https://auth.test/ui/collect"
	cfg.Urls.ValidateCode = "https://auth.test/ui/validate"
	cfg.Urls.Error = "https://auth.test/ui/error"
	cfg.Claims = []config.ClaimConfig{
		{ID: "email", Required: true},
		{ID: "name"},
	}
	cfg.Clients = []config.ClientConfig{{
		ID:            "webapp",
		Secret:        "s3cret",
		RedirectURIs:  []string{"https://app.example.com/callback"},
		AllowedScopes: []string{"openid", "email"},
	}}
	cfg.Validation.Email.Enabled = true
	cfg.SMTP.Host = "smtp.test"
	return cfg
}

func TestResolveAllEnabled(t *testing.T) {
	r := Resolve(baseConfig())

	assert.True(t, r.Check(context.Background()))

	auth, err := r.Auth.Get()
	require.NoError(t, err)
	assert.Equal(t, "https://auth.test", auth.Issuer)

	urls, err := r.Urls.Get()
	require.NoError(t, err)
	assert.Equal(t, "auth.test", urls.SignIn.Host)

	cl, err := r.Claims.Get()
	require.NoError(t, err)
	require.NotNil(t, cl.Registry.FindByID("email"))
	assert.True(t, cl.Registry.FindByID("email").Required)

	clients, err := r.Clients.Get()
	require.NoError(t, err)
	require.Len(t, clients.Clients, 1)

	v, err := r.Validation.Get()
	require.NoError(t, err)
	assert.Equal(t, []repository.ValidationCodeMedia{repository.MediaEmail}, v.EnabledMedia)
}

func TestDisabledSectionReturnsErrDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.JWT.Issuer = ""
	r := Resolve(cfg)

	assert.False(t, r.Check(context.Background()))
	_, err := r.Auth.Get()
	assert.ErrorIs(t, err, ErrDisabled)
	assert.False(t, r.Auth.Enabled())

	// los demás dominios no se ven arrastrados
	_, err = r.Urls.Get()
	assert.NoError(t, err)
}

func TestResolveAuthNormalizesIssuer(t *testing.T) {
	cfg := baseConfig()
	cfg.JWT.Issuer = "https://auth.test/ "

	auth, err := Resolve(cfg).Auth.Get()
	require.NoError(t, err)
	// sin trailing slash: el iss de los tokens tiene que ser estable
	assert.Equal(t, "https://auth.test", auth.Issuer)

	cfg.JWT.Issuer = "ftp://auth.test"
	_, err = Resolve(cfg).Auth.Get()
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestResolveClientsAccumulatesErrors(t *testing.T) {
	cfg := baseConfig()
	cfg.Clients = []config.ClientConfig{
		{ID: "webapp", RedirectURIs: []string{"not a url"}},
		{ID: "webapp", Secret: "x"},
	}
	r := Resolve(cfg)

	_, err := r.Clients.Get()
	require.ErrorIs(t, err, ErrDisabled)
	// secret faltante, redirect inválida y el id duplicado se reportan juntos
	assert.GreaterOrEqual(t, len(r.Clients.Errors()), 3)
}

func TestResolveClaims(t *testing.T) {
	cfg := baseConfig()
	cfg.Claims = append(cfg.Claims,
		config.ClaimConfig{ID: "email"}, // duplicado
		config.ClaimConfig{ID: "not_a_standard_claim"},
		config.ClaimConfig{ID: "picture", Custom: true, DataType: "string"}, // pisa uno estándar
		config.ClaimConfig{ID: "plan", Custom: true, DataType: "enum"},   // tipo inexistente
	)
	r := Resolve(cfg)

	_, err := r.Claims.Get()
	require.ErrorIs(t, err, ErrDisabled)
	assert.Len(t, r.Claims.Errors(), 4)
}

func TestResolveCustomClaim(t *testing.T) {
	cfg := baseConfig()
	cfg.Claims = append(cfg.Claims, config.ClaimConfig{
		ID: "employee_id", Custom: true, DataType: "number",
		ReadScopes: []string{"profile"}, WriteScopes: []string{"admin"},
	})

	cl, err := Resolve(cfg).Claims.Get()
	require.NoError(t, err)
	c := cl.Registry.FindByID("employee_id")
	require.NotNil(t, c)
	assert.Equal(t, claims.KindCustom, c.Kind)
	assert.Equal(t, claims.TypeNumber, c.DataType)
	assert.True(t, c.CanBeWritten([]string{"admin"}))
	assert.False(t, c.CanBeWritten([]string{"profile"}))
}

func TestResolveValidationRequiresSMTPForEmail(t *testing.T) {
	cfg := baseConfig()
	cfg.SMTP.Host = ""
	r := Resolve(cfg)

	_, err := r.Validation.Get()
	assert.ErrorIs(t, err, ErrDisabled)

	// phone no depende de smtp
	cfg.Validation.Email.Enabled = false
	cfg.Validation.Phone.Enabled = true
	v, err := Resolve(cfg).Validation.Get()
	require.NoError(t, err)
	assert.Equal(t, []repository.ValidationCodeMedia{repository.MediaPhone}, v.EnabledMedia)
}

func TestMustGetPanicsWhenDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.JWT.Issuer = ""
	r := Resolve(cfg)

	assert.Panics(t, func() { r.Auth.MustGet() })
	assert.NotPanics(t, func() { r.Urls.MustGet() })
}
