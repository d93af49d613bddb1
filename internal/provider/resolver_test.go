package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() RawProvider {
	return RawProvider{
		ID:               "acme",
		Name:             "Acme ID",
		ClientID:         "client-id",
		ClientSecret:     "client-secret",
		AuthorizationURL: "https://id.acme.test/authorize",
		TokenURL:         "https://id.acme.test/token",
		UserInfoURL:      "https://id.acme.test/userinfo",
		RedirectURL:      "https://auth.test/flow/providers/acme/callback",
		Scopes:           []string{"openid"},
		Claims: map[string]string{
			"sub":   "sub",
			"email": "email",
		},
	}
}

func TestResolveOneValid(t *testing.T) {
	p := resolveOne(validRaw())
	ep, ok := p.Enabled()
	require.True(t, ok)
	assert.Equal(t, "acme", ep.ID)
	assert.Equal(t, "client-id", ep.OAuth.ClientID)
	assert.Equal(t, "https://id.acme.test/authorize", ep.OAuth.Endpoint.AuthURL)
	assert.Equal(t, "sub", ep.ClaimPaths["sub"])
}

func TestResolveOneAccumulatesErrors(t *testing.T) {
	raw := validRaw()
	raw.Name = ""
	raw.ClientSecret = ""
	raw.TokenURL = "not-a-url"

	p := resolveOne(raw)
	_, ok := p.Enabled()
	require.False(t, ok)
	// el operador ve todos los problemas de una vez
	assert.Len(t, p.Errors(), 3)
}

func TestResolveOneRequiresSubjectClaim(t *testing.T) {
	raw := validRaw()
	raw.Claims = map[string]string{"email": "email"}

	p := resolveOne(raw)
	_, ok := p.Enabled()
	require.False(t, ok)
	require.Len(t, p.Errors(), 1)
	assert.Contains(t, p.Errors()[0].Error(), `"sub"`)
}

func TestResolveOneRejectsUnknownClaims(t *testing.T) {
	raw := validRaw()
	raw.Claims["made_up_claim"] = "some.path"

	p := resolveOne(raw)
	_, ok := p.Enabled()
	require.False(t, ok)
}

func TestResolveOneDisabledByConfiguration(t *testing.T) {
	raw := validRaw()
	off := false
	raw.Enabled = &off

	p := resolveOne(raw)
	_, ok := p.Enabled()
	assert.False(t, ok)
}

func TestApplyPresetFillsDefaults(t *testing.T) {
	raw := RawProvider{ID: "google", ClientID: "cid", ClientSecret: "cs"}

	filled := applyPreset(raw)
	assert.Equal(t, "Google", filled.Name)
	assert.Equal(t, "https://oauth2.googleapis.com/token", filled.TokenURL)
	assert.Equal(t, "email", filled.Claims["email"])

	// con el preset alcanza client_id + client_secret para habilitarlo
	p := resolveOne(filled)
	_, ok := p.Enabled()
	assert.True(t, ok)
}

func TestApplyPresetNeverOverridesConfig(t *testing.T) {
	raw := RawProvider{
		ID:          "github",
		Name:        "Mi GitHub Enterprise",
		UserInfoURL: "https://github.acme.test/api/v3/user",
	}

	filled := applyPreset(raw)
	assert.Equal(t, "Mi GitHub Enterprise", filled.Name)
	assert.Equal(t, "https://github.acme.test/api/v3/user", filled.UserInfoURL)
	// lo no configurado sí se completa
	assert.Equal(t, "https://github.com/login/oauth/access_token", filled.TokenURL)
	assert.Equal(t, "id", filled.Claims["sub"])
}

func TestApplyPresetUnknownProvider(t *testing.T) {
	raw := validRaw()
	assert.Equal(t, raw.ID, applyPreset(raw).ID)
	assert.Equal(t, raw.TokenURL, applyPreset(raw).TokenURL)
}

func TestResolverSkipsInvalidWithoutBlockingOthers(t *testing.T) {
	ctx := context.Background()
	broken := validRaw()
	broken.ID = "broken"
	broken.ClientID = ""

	r := NewResolver([]RawProvider{validRaw(), broken})

	enabled := r.ListEnabled(ctx)
	require.Len(t, enabled, 1)
	assert.Equal(t, "acme", enabled[0].ID)

	_, err := r.FindEnabled(ctx, "acme")
	assert.NoError(t, err)
	_, err = r.FindEnabled(ctx, "broken")
	assert.Error(t, err)
	// desconocido y deshabilitado son el mismo error hacia afuera
	_, err2 := r.FindEnabled(ctx, "ghost")
	assert.Equal(t, err, err2)
}
