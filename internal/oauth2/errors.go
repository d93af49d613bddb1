package oauth2

import (
	"net/http"

	"github.com/sympauthy/sympauthy/internal/domain/apperr"
)

// Vocabulario de error OAuth2 (RFC 6749 §5.2 / §4.1.2.1).
const (
	ErrCodeInvalidRequest       = "invalid_request"
	ErrCodeInvalidClient        = "invalid_client"
	ErrCodeInvalidGrant         = "invalid_grant"
	ErrCodeUnauthorizedClient   = "unauthorized_client"
	ErrCodeUnsupportedGrantType = "unsupported_grant_type"
	ErrCodeInvalidScope         = "invalid_scope"
	ErrCodeAccessDenied         = "access_denied"
	ErrCodeServerError          = "server_error"
)

var (
	errInvalidClient = apperr.New(http.StatusUnauthorized, ErrCodeInvalidClient, "oauth2.client.invalid")
	errInvalidGrant  = apperr.BadRequest(ErrCodeInvalidGrant, "oauth2.grant.invalid")
	errInvalidScope  = apperr.BadRequest(ErrCodeInvalidScope, "oauth2.scope.invalid")

	errInvalidRedirectURI = apperr.BadRequest(ErrCodeInvalidRequest, "oauth2.redirect_uri.invalid")
	errInvalidState       = apperr.BadRequest(ErrCodeInvalidRequest, "oauth2.state.invalid")
	errExpiredAttempt     = apperr.BadRequest(ErrCodeInvalidRequest, "oauth2.attempt.expired")
)
