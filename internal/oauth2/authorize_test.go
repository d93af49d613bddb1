package oauth2

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/jwt"
	"github.com/sympauthy/sympauthy/internal/store/memory"
)

func newTestIssuer(t *testing.T) *jwt.Issuer {
	t.Helper()
	keys, err := jwt.NewEd25519()
	require.NoError(t, err)
	return jwt.NewIssuer("https://auth.test", keys)
}

func newTestAuthorize(t *testing.T) (*AuthorizeManager, *memory.Store) {
	t.Helper()
	st := memory.New()
	reg := NewClientRegistry([]Client{testClient()})
	return NewAuthorizeManager(st.Attempts(), reg, newTestIssuer(t)), st
}

func TestStartAttemptValidatesRequest(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestAuthorize(t)

	_, err := m.StartAttempt(ctx, "nope", "https://app.example.com/callback", nil, []string{"openid"})
	assert.Equal(t, ErrCodeInvalidClient, apperr.From(err).Code)

	_, err = m.StartAttempt(ctx, "webapp", "https://evil.example.com/cb", nil, []string{"openid"})
	assert.Equal(t, ErrCodeInvalidRequest, apperr.From(err).Code)

	_, err = m.StartAttempt(ctx, "webapp", "https://app.example.com/callback", nil, []string{"bogus"})
	assert.Equal(t, ErrCodeInvalidScope, apperr.From(err).Code)
}

func TestStartAttemptPersistsClientState(t *testing.T) {
	ctx := context.Background()
	m, st := newTestAuthorize(t)

	clientState := "abc123"
	attempt, err := m.StartAttempt(ctx, "webapp", "https://app.example.com/callback", &clientState, []string{"openid", "email"})
	require.NoError(t, err)
	assert.Equal(t, []string{"openid", "email"}, attempt.GrantedScopes)
	require.NotNil(t, attempt.State)
	assert.Equal(t, "abc123", *attempt.State)

	stored, err := st.Attempts().GetByID(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.UserID)
}

func TestStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestAuthorize(t)

	attempt, err := m.StartAttempt(ctx, "webapp", "https://app.example.com/callback", nil, []string{"openid"})
	require.NoError(t, err)

	state, err := m.EncodeState(attempt)
	require.NoError(t, err)

	got, err := m.VerifyEncodedState(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, got.ID)
}

func TestVerifyEncodedStateRejectsForgeries(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestAuthorize(t)

	attempt, err := m.StartAttempt(ctx, "webapp", "https://app.example.com/callback", nil, []string{"openid"})
	require.NoError(t, err)

	// firmado con otra clave
	other := newTestIssuer(t)
	forged, err := other.SignState(attempt.ID, attempt.ExpirationDate)
	require.NoError(t, err)
	_, err = m.VerifyEncodedState(ctx, forged)
	assert.Equal(t, ErrCodeInvalidRequest, apperr.From(err).Code)

	// basura
	_, err = m.VerifyEncodedState(ctx, "not-a-jwt")
	assert.Error(t, err)

	// attempt inexistente
	ghost, err := m.issuer.SignState("00000000-0000-0000-0000-000000000000", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = m.VerifyEncodedState(ctx, ghost)
	assert.Error(t, err)
}

func TestVerifyEncodedStateExpiredAttempt(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestAuthorize(t)
	m.AttemptTTL = -time.Minute

	attempt, err := m.StartAttempt(ctx, "webapp", "https://app.example.com/callback", nil, []string{"openid"})
	require.NoError(t, err)

	// el state firmado con exp vencido ya no parsea; firmar uno fresco apunta
	// al attempt vencido
	state, err := m.issuer.SignState(attempt.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = m.VerifyEncodedState(ctx, state)
	require.Error(t, err)
	assert.Equal(t, "oauth2.attempt.expired", apperr.From(err).MessageKey)
}

func TestSetAuthenticatedUser(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestAuthorize(t)

	attempt, err := m.StartAttempt(ctx, "webapp", "https://app.example.com/callback", nil, []string{"openid"})
	require.NoError(t, err)

	require.NoError(t, m.SetAuthenticatedUser(ctx, attempt, "user-1"))
	require.NotNil(t, attempt.UserID)

	// re-asociar el mismo usuario es idempotente
	require.NoError(t, m.SetAuthenticatedUser(ctx, attempt, "user-1"))

	// otro usuario sobre el mismo attempt es un estado inconsistente
	err = m.SetAuthenticatedUser(ctx, attempt, "user-2")
	require.Error(t, err)
	assert.Equal(t, ErrCodeServerError, apperr.From(err).Code)
}
