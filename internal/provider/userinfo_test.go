package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enabledWithPaths(paths map[string]string) *EnabledProvider {
	return &EnabledProvider{ID: "acme", ClaimPaths: paths}
}

func TestExtractUserInfo(t *testing.T) {
	p := enabledWithPaths(map[string]string{
		"sub":            "sub",
		"email":          "email",
		"email_verified": "email_verified",
		"name":           "name",
		"picture":        "profile.avatar",
	})
	body := []byte(`{
		"sub": "12345",
		"email": "ana@example.com",
		"email_verified": true,
		"name": "Ana",
		"profile": {"avatar": "https://cdn.acme.test/ana.png"}
	}`)

	info, err := extractUserInfo(p, body)
	require.NoError(t, err)
	assert.Equal(t, "12345", info.Subject)
	assert.Equal(t, "ana@example.com", info.Email)
	require.NotNil(t, info.EmailVerified)
	assert.True(t, *info.EmailVerified)
	assert.Equal(t, "Ana", info.Name)
	// el path gjson anidado resuelve dentro del objeto
	assert.Equal(t, "https://cdn.acme.test/ana.png", info.Picture)
}

func TestExtractUserInfoNumericSubject(t *testing.T) {
	// GitHub devuelve el id de cuenta como número
	p := enabledWithPaths(map[string]string{"sub": "id"})
	info, err := extractUserInfo(p, []byte(`{"id": 583231}`))
	require.NoError(t, err)
	assert.Equal(t, "583231", info.Subject)
}

func TestExtractUserInfoMissingSubject(t *testing.T) {
	p := enabledWithPaths(map[string]string{"sub": "sub", "email": "email"})

	_, err := extractUserInfo(p, []byte(`{"email": "ana@example.com"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing subject")
}

func TestExtractUserInfoInvalidJSON(t *testing.T) {
	p := enabledWithPaths(map[string]string{"sub": "sub"})
	_, err := extractUserInfo(p, []byte(`<html>rate limited</html>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid json")
}

func TestExtractUserInfoUpdatedAt(t *testing.T) {
	p := enabledWithPaths(map[string]string{"sub": "sub", "updated_at": "updated_at"})

	// epoch seconds, como lo manda OIDC
	info, err := extractUserInfo(p, []byte(`{"sub": "1", "updated_at": 1718000000}`))
	require.NoError(t, err)
	require.NotNil(t, info.UpdatedAt)
	assert.Equal(t, time.Unix(1718000000, 0).UTC(), *info.UpdatedAt)

	// string RFC3339, como lo mandan varias APIs no OIDC
	info, err = extractUserInfo(p, []byte(`{"sub": "1", "updated_at": "2024-06-10T12:00:00Z"}`))
	require.NoError(t, err)
	require.NotNil(t, info.UpdatedAt)
	assert.Equal(t, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), *info.UpdatedAt)

	// formato irreconocible: se descarta sin romper el resto
	info, err = extractUserInfo(p, []byte(`{"sub": "1", "updated_at": "ayer"}`))
	require.NoError(t, err)
	assert.Nil(t, info.UpdatedAt)
}
