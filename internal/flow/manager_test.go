package flow

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/jwt"
	"github.com/sympauthy/sympauthy/internal/oauth2"
	"github.com/sympauthy/sympauthy/internal/security/password"
	"github.com/sympauthy/sympauthy/internal/store/memory"
	"github.com/sympauthy/sympauthy/internal/user"
	"github.com/sympauthy/sympauthy/internal/validationcode"
)

type nopSender struct{}

func (nopSender) SendValidationCode(context.Context, string, *repository.ValidationCode) error {
	return nil
}

type flowFixture struct {
	m         *Manager
	st        *memory.Store
	authorize *oauth2.AuthorizeManager
	users     *user.Manager
	collected *user.CollectedClaimManager
	issuer    *jwt.Issuer
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

// newFlowFixture arma un Manager completo sobre el store in-memory, con email
// como claim requerido y EMAIL como único medio de validación habilitado.
func newFlowFixture(t *testing.T, enabledMedia ...repository.ValidationCodeMedia) *flowFixture {
	t.Helper()
	st := memory.New()

	mustFind := func(id string) claims.OpenIdClaim {
		oc, ok := claims.FindOpenIdClaim(id)
		require.True(t, ok, id)
		return oc
	}
	registry := claims.NewRegistry([]*claims.Claim{
		claims.NewStandardClaim(mustFind(claims.Email), true, nil),
		claims.NewStandardClaim(mustFind(claims.PhoneNumber), false, nil),
		claims.NewStandardClaim(mustFind(claims.Name), false, nil),
	})

	keys, err := jwt.NewEd25519()
	require.NoError(t, err)
	issuer := jwt.NewIssuer("https://auth.test", keys)

	clients := oauth2.NewClientRegistry([]oauth2.Client{{
		ID:            "webapp",
		Secret:        "s3cret",
		RedirectURIs:  []string{"https://app.example.com/callback"},
		AllowedScopes: []string{"openid", "email", "profile"},
	}})
	authorize := oauth2.NewAuthorizeManager(st.Attempts(), clients, issuer)
	authCodes := oauth2.NewAuthorizationCodeManager(st.AuthorizationCodes())

	merger := user.NewMerger(registry)
	collected := user.NewCollectedClaimManager(st.CollectedClaims(), registry)
	users := user.NewManager(st.Users(), password.NewArgon2id())
	codes := validationcode.NewManager(st.ValidationCodes(), map[repository.ValidationCodeMedia]validationcode.Sender{
		repository.MediaEmail: nopSender{},
		repository.MediaPhone: nopSender{},
	})

	if enabledMedia == nil {
		enabledMedia = []repository.ValidationCodeMedia{repository.MediaEmail}
	}
	m := NewManager(registry, merger, collected, users, st.ProviderUserInfo(),
		codes, authorize, authCodes, nil, nil,
		UIConfig{
			SignInURL:        mustURL(t, "https://auth.test/ui/sign-in"),
			CollectClaimsURL: mustURL(t, "https://auth.test/ui/collect"),
			ValidateCodeURL:  mustURL(t, "https://auth.test/ui/validate"),
			ErrorURL:         mustURL(t, "https://auth.test/ui/error"),
		},
		enabledMedia,
	)
	return &flowFixture{m: m, st: st, authorize: authorize, users: users, collected: collected, issuer: issuer}
}

func (f *flowFixture) newAttempt(t *testing.T, clientState *string) *repository.AuthorizeAttempt {
	t.Helper()
	attempt, err := f.authorize.StartAttempt(context.Background(), "webapp",
		"https://app.example.com/callback", clientState, []string{"openid", "email"})
	require.NoError(t, err)
	return attempt
}

func (f *flowFixture) newAuthenticatedAttempt(t *testing.T, clientState *string) (*repository.AuthorizeAttempt, *repository.User) {
	t.Helper()
	pw := "hunter2!"
	u, err := f.users.Create(context.Background(), &pw)
	require.NoError(t, err)
	attempt := f.newAttempt(t, clientState)
	require.NoError(t, f.authorize.SetAuthenticatedUser(context.Background(), attempt, u.ID))
	return attempt, u
}

func (f *flowFixture) collectEmail(t *testing.T, userID, email string) {
	t.Helper()
	require.NoError(t, f.collected.UpdateFromUser(context.Background(), userID,
		[]user.ClaimUpdate{{ClaimID: claims.Email, Value: &email}}))
}

func TestComputeProgressPrecedence(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	attempt, u := f.newAuthenticatedAttempt(t, nil)

	// sin email colectado: primero colecta
	progress, err := f.m.ComputeProgress(ctx, attempt)
	require.NoError(t, err)
	assert.Equal(t, StepCollectClaims, progress.Step)
	assert.Equal(t, []string{claims.Email}, progress.MissingClaims)

	// email colectado pero sin verificar: validación pendiente
	f.collectEmail(t, u.ID, "ana@example.com")
	progress, err = f.m.ComputeProgress(ctx, attempt)
	require.NoError(t, err)
	assert.Equal(t, StepValidateClaims, progress.Step)
	assert.Equal(t, []repository.ValidationCodeMedia{repository.MediaEmail}, progress.PendingMedia)

	// verificado: completo
	require.NoError(t, f.collected.MarkVerified(ctx, u.ID, []string{claims.Email}))
	progress, err = f.m.ComputeProgress(ctx, attempt)
	require.NoError(t, err)
	assert.Equal(t, StepComplete, progress.Step)
}

func TestComputeProgressRequiresAuthenticatedUser(t *testing.T) {
	f := newFlowFixture(t)
	attempt := f.newAttempt(t, nil)

	_, err := f.m.ComputeProgress(context.Background(), attempt)
	require.Error(t, err)
	assert.Equal(t, 500, apperr.From(err).Status)
}

func TestDisabledMediaDoesNotBlockFlow(t *testing.T) {
	ctx := context.Background()
	// solo EMAIL habilitado: un teléfono sin verificar no puede frenar el flow
	f := newFlowFixture(t, repository.MediaEmail)
	attempt, u := f.newAuthenticatedAttempt(t, nil)
	f.collectEmail(t, u.ID, "ana@example.com")
	require.NoError(t, f.collected.MarkVerified(ctx, u.ID, []string{claims.Email}))

	phone := "+5491155551234"
	require.NoError(t, f.collected.UpdateFromUser(ctx, u.ID,
		[]user.ClaimUpdate{{ClaimID: claims.PhoneNumber, Value: &phone}}))

	progress, err := f.m.ComputeProgress(ctx, attempt)
	require.NoError(t, err)
	assert.Equal(t, StepComplete, progress.Step)
}

func TestRedirectURIPerStep(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	clientState := "client-state-xyz"
	attempt, u := f.newAuthenticatedAttempt(t, &clientState)

	// paso de colecta: UI propia con el state firmado
	target, err := f.m.RedirectURI(ctx, attempt)
	require.NoError(t, err)
	parsed := mustURL(t, target)
	assert.True(t, strings.HasPrefix(target, "https://auth.test/ui/collect"))
	attemptID, err := f.issuer.VerifyState(parsed.Query().Get("state"))
	require.NoError(t, err)
	assert.Equal(t, attempt.ID, attemptID)

	// paso de validación: otra pantalla, mismo state firmado
	f.collectEmail(t, u.ID, "ana@example.com")
	target, err = f.m.RedirectURI(ctx, attempt)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(target, "https://auth.test/ui/validate"))

	// completo: redirect_uri del cliente con code y SU state original
	require.NoError(t, f.collected.MarkVerified(ctx, u.ID, []string{claims.Email}))
	target, err = f.m.RedirectURI(ctx, attempt)
	require.NoError(t, err)
	parsed = mustURL(t, target)
	assert.Equal(t, "app.example.com", parsed.Host)
	assert.NotEmpty(t, parsed.Query().Get("code"))
	assert.Equal(t, clientState, parsed.Query().Get("state"))
}

func TestErrorRedirectURI(t *testing.T) {
	f := newFlowFixture(t)

	// sin attempt confiable: página de error propia
	target := f.m.ErrorRedirectURI(nil, "access_denied", "")
	assert.True(t, strings.HasPrefix(target, "https://auth.test/ui/error"))
	assert.Contains(t, target, "error=access_denied")

	clientState := "xyz"
	attempt := f.newAttempt(t, &clientState)
	target = f.m.ErrorRedirectURI(attempt, "access_denied", "user cancelled")
	parsed := mustURL(t, target)
	assert.Equal(t, "app.example.com", parsed.Host)
	assert.Equal(t, "access_denied", parsed.Query().Get("error"))
	assert.Equal(t, "user cancelled", parsed.Query().Get("error_description"))
	assert.Equal(t, "xyz", parsed.Query().Get("state"))
}

func TestValidationCodeRoundTripMarksClaimsVerified(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	attempt, u := f.newAuthenticatedAttempt(t, nil)
	f.collectEmail(t, u.ID, "ana@example.com")

	issued, err := f.m.GetOrSendValidationCodes(ctx, attempt)
	require.NoError(t, err)
	require.Len(t, issued, 1)
	assert.Equal(t, repository.MediaEmail, issued[0].Media)

	// recargar la pantalla no reemite
	again, err := f.m.GetOrSendValidationCodes(ctx, attempt)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, issued[0].ID, again[0].ID)

	require.NoError(t, f.m.ValidateClaimsByCode(ctx, attempt, repository.MediaEmail, issued[0].Code))

	progress, err := f.m.ComputeProgress(ctx, attempt)
	require.NoError(t, err)
	assert.Equal(t, StepComplete, progress.Step)
}

func TestValidateClaimsByCodeRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	attempt, u := f.newAuthenticatedAttempt(t, nil)
	f.collectEmail(t, u.ID, "ana@example.com")

	_, err := f.m.GetOrSendValidationCodes(ctx, attempt)
	require.NoError(t, err)

	err = f.m.ValidateClaimsByCode(ctx, attempt, repository.MediaEmail, "0000000")
	assert.Equal(t, "invalid_code", apperr.From(err).Code)
}

func TestSignUpWithPassword(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	attempt := f.newAttempt(t, nil)

	require.NoError(t, f.m.SignUpWithPassword(ctx, attempt, "ana@example.com", "hunter2!"))
	require.NotNil(t, attempt.UserID)

	// el email quedó colectado pero sin verificar: sigue la validación
	progress, err := f.m.ComputeProgress(ctx, attempt)
	require.NoError(t, err)
	assert.Equal(t, StepValidateClaims, progress.Step)

	// email ocupado, aunque cambie la capitalización
	other := f.newAttempt(t, nil)
	err = f.m.SignUpWithPassword(ctx, other, "ANA@example.com", "otherpass")
	require.Error(t, err)
	assert.Equal(t, "email_taken", apperr.From(err).Code)
}

func TestSignInWithPassword(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t)
	attempt := f.newAttempt(t, nil)
	require.NoError(t, f.m.SignUpWithPassword(ctx, attempt, "ana@example.com", "hunter2!"))

	second := f.newAttempt(t, nil)
	require.NoError(t, f.m.SignInWithPassword(ctx, second, "ana@example.com", "hunter2!"))
	require.NotNil(t, second.UserID)

	// password incorrecto y usuario inexistente devuelven el mismo error
	third := f.newAttempt(t, nil)
	err := f.m.SignInWithPassword(ctx, third, "ana@example.com", "wrong")
	assert.Equal(t, "invalid_credentials", apperr.From(err).Code)
	err = f.m.SignInWithPassword(ctx, third, "nadie@example.com", "hunter2!")
	assert.Equal(t, "invalid_credentials", apperr.From(err).Code)
}
