package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/store/memory"
)

func newCollectedManager(t *testing.T) (*CollectedClaimManager, repository.CollectedClaimRepository) {
	t.Helper()
	st := memory.New()
	return NewCollectedClaimManager(st.CollectedClaims(), testRegistry(t)), st.CollectedClaims()
}

func strptr(s string) *string { return &s }

func TestValidateValue(t *testing.T) {
	mustClaim := func(oc string) *claims.Claim {
		c := testRegistry(t).FindByID(oc)
		require.NotNil(t, c, oc)
		return c
	}
	email := mustClaim(claims.Email)
	phone := mustClaim(claims.PhoneNumber)
	name := mustClaim(claims.Name)

	cases := []struct {
		name  string
		claim *claims.Claim
		in    string
		want  string
		ok    bool
	}{
		{"email lowercased", email, "Ana@Example.COM", "ana@example.com", true},
		{"email sin arroba", email, "not-an-email", "", false},
		{"email arroba al final", email, "ana@", "", false},
		{"phone con espacios", phone, "+54 9 11 5555 1234", "+5491155551234", true},
		{"phone sin prefijo", phone, "1155551234", "", false},
		{"phone cero inicial", phone, "+0123456789", "", false},
		{"string trim", name, "  Ana  ", "Ana", true},
		{"vacío", name, "   ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := validateValue(tc.claim, tc.in)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateValueTypes(t *testing.T) {
	date := claims.NewCustomClaim("hired_on", claims.TypeDate, false, nil, nil)
	number := claims.NewCustomClaim("seniority", claims.TypeNumber, false, nil, nil)
	boolean := claims.NewCustomClaim("newsletter", claims.TypeBool, false, nil, nil)

	_, err := validateValue(date, "2024-02-30")
	assert.Error(t, err)
	v, err := validateValue(date, "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", v)

	_, err = validateValue(number, "not-a-number")
	assert.Error(t, err)
	_, err = validateValue(number, "3.14")
	assert.NoError(t, err)

	_, err = validateValue(boolean, "yes")
	assert.Error(t, err)
	_, err = validateValue(boolean, "true")
	assert.NoError(t, err)
}

func TestValidateValueAllowedValues(t *testing.T) {
	c := claims.NewCustomClaim("plan", claims.TypeString, false, nil, nil)
	c.AllowedValues = []string{"free", "pro"}

	_, err := validateValue(c, "enterprise")
	require.Error(t, err)
	assert.Equal(t, "invalid_claim_value", apperr.From(err).Code)

	v, err := validateValue(c, "pro")
	require.NoError(t, err)
	assert.Equal(t, "pro", v)
}

func TestUpdateFromUserRejectsUnknownAndNonWritable(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	oc, ok := claims.FindOpenIdClaim(claims.UpdatedAt)
	require.True(t, ok)
	reg := claims.NewRegistry([]*claims.Claim{
		claims.NewStandardClaim(oc, false, nil),
	})
	m := NewCollectedClaimManager(st.CollectedClaims(), reg)

	err := m.UpdateFromUser(ctx, "user-1", []ClaimUpdate{{ClaimID: "nope", Value: strptr("x")}})
	require.Error(t, err)
	assert.Equal(t, "invalid_claim", apperr.From(err).Code)

	// updated_at lo genera el servidor, el end-user no puede escribirlo
	err = m.UpdateFromUser(ctx, "user-1", []ClaimUpdate{{ClaimID: claims.UpdatedAt, Value: strptr("123")}})
	require.Error(t, err)
	assert.Equal(t, "invalid_claim", apperr.From(err).Code)
}

func TestUpdateFromUserValidatesBatchBeforeWriting(t *testing.T) {
	ctx := context.Background()
	m, repo := newCollectedManager(t)

	// un update inválido en el batch impide que entre el resto
	err := m.UpdateFromUser(ctx, "user-1", []ClaimUpdate{
		{ClaimID: claims.Name, Value: strptr("Ana")},
		{ClaimID: claims.Email, Value: strptr("broken")},
	})
	require.Error(t, err)

	list, err := repo.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateFromUserUpsertsAndDeletes(t *testing.T) {
	ctx := context.Background()
	m, repo := newCollectedManager(t)

	require.NoError(t, m.UpdateFromUser(ctx, "user-1", []ClaimUpdate{
		{ClaimID: claims.Email, Value: strptr("Ana@Example.com")},
		{ClaimID: claims.Name, Value: strptr("Ana")},
	}))

	list, err := repo.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, cc := range list {
		// todo lo colectado por input arranca sin verificar
		assert.False(t, cc.Verified)
		if cc.ClaimID == claims.Email {
			assert.Equal(t, "ana@example.com", cc.Value)
		}
	}

	// value nil borra el claim
	require.NoError(t, m.UpdateFromUser(ctx, "user-1", []ClaimUpdate{
		{ClaimID: claims.Name, Value: nil},
	}))
	list, err = repo.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, claims.Email, list[0].ClaimID)
}

func TestUpdateFromAPIChecksWriteScopes(t *testing.T) {
	ctx := context.Background()
	m, _ := newCollectedManager(t)

	// employee_id solo es escribible con el scope admin
	err := m.UpdateFromAPI(ctx, "user-1", []ClaimUpdate{
		{ClaimID: "employee_id", Value: strptr("42")},
	}, []string{"profile"})
	require.Error(t, err)
	assert.Equal(t, "invalid_claim", apperr.From(err).Code)

	err = m.UpdateFromAPI(ctx, "user-1", []ClaimUpdate{
		{ClaimID: "employee_id", Value: strptr("42")},
	}, []string{"admin"})
	assert.NoError(t, err)
}

func TestMarkVerified(t *testing.T) {
	ctx := context.Background()
	m, repo := newCollectedManager(t)

	require.NoError(t, m.UpdateFromUser(ctx, "user-1", []ClaimUpdate{
		{ClaimID: claims.Email, Value: strptr("ana@example.com")},
	}))
	require.NoError(t, m.MarkVerified(ctx, "user-1", []string{claims.Email}))

	list, err := repo.FindByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Verified)
}

func TestFindUserIDByEmail(t *testing.T) {
	ctx := context.Background()
	m, _ := newCollectedManager(t)

	require.NoError(t, m.UpdateFromUser(ctx, "user-1", []ClaimUpdate{
		{ClaimID: claims.Email, Value: strptr("ana@example.com")},
	}))

	// el lookup normaliza igual que la escritura
	userID, err := m.FindUserIDByEmail(ctx, "  ANA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = m.FindUserIDByEmail(ctx, "nadie@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
