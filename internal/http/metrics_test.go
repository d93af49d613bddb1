package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/oauth2/token", "/oauth2/token"},
		{"/flow/configuration?state=abc", "/flow/configuration"},
		{"/flow/providers/google/redirect", "/flow/providers/google/redirect"},
		{"/users/550e8400-e29b-41d4-a716-446655440000", "/users/:param"},
		{"/users/12345", "/users/:param"},
		{"/revoke/dGhpcy1pcy1hLXZlcnktbG9uZy1vcGFxdWUtdG9rZW4", "/revoke/:param"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizePath(tc.in), tc.in)
	}
}
