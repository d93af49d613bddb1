package oauth2

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/store/memory"
)

type tokenFixture struct {
	st        *memory.Store
	clients   *ClientRegistry
	authorize *AuthorizeManager
	codes     *AuthorizationCodeManager
	tokens    *TokenManager
	client    *Client
}

func newTokenFixture(t *testing.T) *tokenFixture {
	t.Helper()
	st := memory.New()
	issuer := newTestIssuer(t)
	clients := NewClientRegistry([]Client{testClient()})
	authorize := NewAuthorizeManager(st.Attempts(), clients, issuer)
	codes := NewAuthorizationCodeManager(st.AuthorizationCodes())
	tokens := NewTokenManager(st.Tokens(), st.Attempts(), codes, clients, issuer)
	client, err := clients.Get("webapp")
	require.NoError(t, err)
	return &tokenFixture{st: st, clients: clients, authorize: authorize, codes: codes, tokens: tokens, client: client}
}

// startAuthorizedAttempt deja un attempt con usuario autenticado y un code
// emitido, como queda al final del flujo interactivo.
func (f *tokenFixture) startAuthorizedAttempt(t *testing.T, scopes []string) (*repository.AuthorizeAttempt, string) {
	t.Helper()
	ctx := context.Background()
	attempt, err := f.authorize.StartAttempt(ctx, "webapp", "https://app.example.com/callback", nil, scopes)
	require.NoError(t, err)
	require.NoError(t, f.authorize.SetAuthenticatedUser(ctx, attempt, "user-1"))
	code, err := f.codes.Generate(ctx, attempt)
	require.NoError(t, err)
	return attempt, code
}

func TestExchangeAuthorizationCode(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	_, code := f.startAuthorizedAttempt(t, []string{"openid", "email"})

	set, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.NoError(t, err)
	assert.NotEmpty(t, set.AccessToken)
	assert.Equal(t, "Bearer", set.TokenType)
	assert.Equal(t, "openid email", set.Scope)
	// sin offline_access no hay refresh token
	assert.Nil(t, set.RefreshToken)

	row, err := f.tokens.ValidateAccess(ctx, set.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", row.UserID)
	assert.Equal(t, []string{"openid", "email"}, row.Scopes)
}

func TestExchangeIssuesRefreshWithOfflineAccess(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	_, code := f.startAuthorizedAttempt(t, []string{"openid", "offline_access"})

	set, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.NoError(t, err)
	require.NotNil(t, set.RefreshToken)
	assert.NotEmpty(t, *set.RefreshToken)
}

func TestExchangeRejectsCodeReplay(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	_, code := f.startAuthorizedAttempt(t, []string{"openid"})

	_, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.NoError(t, err)

	_, err = f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidGrant, apperr.From(err).Code)
}

func TestExchangeRejectsRedirectURIMismatch(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	_, code := f.startAuthorizedAttempt(t, []string{"openid"})

	_, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback/other")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidGrant, apperr.From(err).Code)
}

func TestExchangeRejectsExpiredCode(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	f.codes.CodeTTL = -time.Second
	_, code := f.startAuthorizedAttempt(t, []string{"openid"})

	_, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidGrant, apperr.From(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	_, code := f.startAuthorizedAttempt(t, []string{"openid", "offline_access"})

	set, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.NoError(t, err)
	first := *set.RefreshToken

	rotated, err := f.tokens.Refresh(ctx, f.client, first)
	require.NoError(t, err)
	require.NotNil(t, rotated.RefreshToken)
	assert.NotEqual(t, first, *rotated.RefreshToken)

	// el refresh usado quedó revocado: un segundo canje es invalid_grant
	_, err = f.tokens.Refresh(ctx, f.client, first)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidGrant, apperr.From(err).Code)

	// el nuevo sigue vivo
	_, err = f.tokens.Refresh(ctx, f.client, *rotated.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsForeignClient(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	_, code := f.startAuthorizedAttempt(t, []string{"openid", "offline_access"})
	set, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.NoError(t, err)

	other := &Client{ID: "other-app"}
	_, err = f.tokens.Refresh(ctx, other, *set.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidGrant, apperr.From(err).Code)
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	_, code := f.startAuthorizedAttempt(t, []string{"openid", "offline_access"})
	set, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.NoError(t, err)

	// revocar el access por su jti
	require.NoError(t, f.tokens.Revoke(ctx, f.client, set.AccessToken))
	_, err = f.tokens.ValidateAccess(ctx, set.AccessToken)
	assert.Error(t, err)

	// revocar el refresh por su valor opaco
	require.NoError(t, f.tokens.Revoke(ctx, f.client, *set.RefreshToken))
	_, err = f.tokens.Refresh(ctx, f.client, *set.RefreshToken)
	assert.Error(t, err)
}

func TestRevokeIsSilentForUnknownOrForeignTokens(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	_, code := f.startAuthorizedAttempt(t, []string{"openid", "offline_access"})
	set, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.NoError(t, err)

	// desconocido: 200 igual, no se filtra existencia
	assert.NoError(t, f.tokens.Revoke(ctx, f.client, "garbage-token"))

	// ajeno: tampoco error, y el token sigue vivo
	other := &Client{ID: "other-app"}
	assert.NoError(t, f.tokens.Revoke(ctx, other, *set.RefreshToken))
	_, err = f.tokens.Refresh(ctx, f.client, *set.RefreshToken)
	assert.NoError(t, err)
}

func TestValidateAccessRejectsRefreshAndGarbage(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	_, code := f.startAuthorizedAttempt(t, []string{"openid", "offline_access"})
	set, err := f.tokens.ExchangeAuthorizationCode(ctx, f.client, code, "https://app.example.com/callback")
	require.NoError(t, err)

	_, err = f.tokens.ValidateAccess(ctx, *set.RefreshToken)
	assert.Error(t, err)

	_, err = f.tokens.ValidateAccess(ctx, "garbage")
	assert.Error(t, err)
}

func TestGenerateRequiresAuthenticatedUser(t *testing.T) {
	ctx := context.Background()
	f := newTokenFixture(t)
	attempt, err := f.authorize.StartAttempt(ctx, "webapp", "https://app.example.com/callback", nil, []string{"openid"})
	require.NoError(t, err)

	_, err = f.codes.Generate(ctx, attempt)
	require.Error(t, err)
	assert.Equal(t, ErrCodeServerError, apperr.From(err).Code)
}
