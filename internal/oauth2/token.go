package oauth2

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/sympauthy/sympauthy/internal/claims"
	"github.com/sympauthy/sympauthy/internal/domain/apperr"
	"github.com/sympauthy/sympauthy/internal/domain/repository"
	"github.com/sympauthy/sympauthy/internal/jwt"
	"github.com/sympauthy/sympauthy/internal/observability/logger"
	token "github.com/sympauthy/sympauthy/internal/security/token"
)

// TokenSet es la respuesta del token endpoint (RFC 6749 §5.1).
type TokenSet struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int64   `json:"expires_in"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	IDToken      *string `json:"id_token,omitempty"`
	Scope        string  `json:"scope"`
}

// TokenManager emite, rota y revoca tokens. Cada access token tiene una fila
// persistida cuyo id es el jti del JWT; revocar el jti revoca el token aunque
// la firma siga siendo válida.
type TokenManager struct {
	tokens   repository.TokenRepository
	attempts repository.AttemptRepository
	codes    *AuthorizationCodeManager
	clients  *ClientRegistry
	issuer   *jwt.Issuer

	AccessTTL  time.Duration
	RefreshTTL time.Duration // 0 = refresh tokens sin expiración
}

func NewTokenManager(
	tokens repository.TokenRepository,
	attempts repository.AttemptRepository,
	codes *AuthorizationCodeManager,
	clients *ClientRegistry,
	issuer *jwt.Issuer,
) *TokenManager {
	return &TokenManager{
		tokens:     tokens,
		attempts:   attempts,
		codes:      codes,
		clients:    clients,
		issuer:     issuer,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 30 * 24 * time.Hour,
	}
}

// generateAccessToken persiste la fila y firma el JWT con jti = id de fila.
func (m *TokenManager) generateAccessToken(ctx context.Context, client *Client, userID, attemptID string, scopes []string) (string, error) {
	now := time.Now().UTC()
	exp := now.Add(m.AccessTTL)
	row := &repository.AuthenticationToken{
		Type:               repository.TokenTypeAccess,
		UserID:             userID,
		ClientID:           client.ID,
		Scopes:             scopes,
		AuthorizeAttemptID: attemptID,
		IssueDate:          now,
		ExpirationDate:     &exp,
	}
	id, err := m.tokens.Create(ctx, row)
	if err != nil {
		return "", apperr.Internal("oauth2.token.create").Wrap(err)
	}
	signed, err := m.issuer.IssueAccess(id, userID, client.ID, scopes, client.Audience, now, exp)
	if err != nil {
		return "", apperr.Internal("oauth2.token.sign").Wrap(err)
	}
	return signed, nil
}

// generateRefreshToken emite un refresh token opaco; solo se persiste el hash.
func (m *TokenManager) generateRefreshToken(ctx context.Context, client *Client, userID, attemptID string, scopes []string) (string, error) {
	raw, err := token.GenerateOpaqueToken(32)
	if err != nil {
		return "", apperr.Internal("oauth2.token.generate").Wrap(err)
	}
	now := time.Now().UTC()
	row := &repository.AuthenticationToken{
		Type:               repository.TokenTypeRefresh,
		TokenHash:          token.SHA256Base64URL(raw),
		UserID:             userID,
		ClientID:           client.ID,
		Scopes:             scopes,
		AuthorizeAttemptID: attemptID,
		IssueDate:          now,
	}
	if m.RefreshTTL > 0 {
		exp := now.Add(m.RefreshTTL)
		row.ExpirationDate = &exp
	}
	if _, err := m.tokens.Create(ctx, row); err != nil {
		return "", apperr.Internal("oauth2.token.create").Wrap(err)
	}
	return raw, nil
}

// generateTokens emite el access token, un ID token si el flujo otorgó
// openid y, si otorgó offline_access, también un refresh token.
func (m *TokenManager) generateTokens(ctx context.Context, client *Client, userID, attemptID string, scopes []string) (*TokenSet, error) {
	access, err := m.generateAccessToken(ctx, client, userID, attemptID, scopes)
	if err != nil {
		return nil, err
	}
	set := &TokenSet{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(m.AccessTTL.Seconds()),
		Scope:       strings.Join(scopes, " "),
	}
	if slices.Contains(scopes, claims.ScopeOpenID) {
		idToken, _, err := m.issuer.IssueIDToken(userID, client.ID, nil)
		if err != nil {
			return nil, apperr.Internal("oauth2.token.sign").Wrap(err)
		}
		set.IDToken = &idToken
	}
	if slices.Contains(scopes, claims.ScopeOfflineAccess) {
		refresh, err := m.generateRefreshToken(ctx, client, userID, attemptID, scopes)
		if err != nil {
			return nil, err
		}
		set.RefreshToken = &refresh
	}
	return set, nil
}

// ExchangeAuthorizationCode canjea un code por tokens (grant
// authorization_code). El redirect_uri debe repetir exactamente el del
// attempt original.
func (m *TokenManager) ExchangeAuthorizationCode(ctx context.Context, client *Client, rawCode, redirectURI string) (*TokenSet, error) {
	code, err := m.codes.Consume(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	attempt, err := m.attempts.GetByID(ctx, code.AuthorizeAttemptID)
	if err != nil {
		return nil, apperr.Internal("oauth2.token.attempt_load").Wrap(err)
	}
	if attempt.ClientID != client.ID {
		return nil, errInvalidGrant
	}
	if attempt.RedirectURI != redirectURI {
		return nil, errInvalidGrant
	}
	if attempt.UserID == nil {
		return nil, errInvalidGrant
	}
	return m.generateTokens(ctx, client, *attempt.UserID, attempt.ID, attempt.GrantedScopes)
}

// Refresh canjea un refresh token y lo rota: el viejo queda revocado en el
// mismo canje, un segundo uso es invalid_grant.
func (m *TokenManager) Refresh(ctx context.Context, client *Client, rawRefresh string) (*TokenSet, error) {
	row, err := m.tokens.GetRefreshByHash(ctx, token.SHA256Base64URL(rawRefresh))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errInvalidGrant
	}
	if err != nil {
		return nil, apperr.Internal("oauth2.token.load").Wrap(err)
	}
	if row.Revoked || row.Expired() || row.ClientID != client.ID {
		return nil, errInvalidGrant
	}
	if err := m.tokens.Revoke(ctx, row.ID); err != nil {
		return nil, apperr.Internal("oauth2.token.rotate").Wrap(err)
	}
	return m.generateTokens(ctx, client, row.UserID, row.AuthorizeAttemptID, row.Scopes)
}

// Revoke implementa RFC 7009: revoca el token si existe y pertenece al
// cliente; un token desconocido no es un error.
func (m *TokenManager) Revoke(ctx context.Context, client *Client, rawToken string) error {
	row := m.lookup(ctx, rawToken)
	if row == nil {
		return nil
	}
	if row.ClientID != client.ID {
		// Un cliente no puede revocar tokens ajenos, pero tampoco se le
		// confirma que el token exista.
		return nil
	}
	if err := m.tokens.Revoke(ctx, row.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperr.Internal("oauth2.token.revoke").Wrap(err)
	}
	return nil
}

// lookup resuelve un token presentado: JWT con jti (access) o valor opaco
// (refresh).
func (m *TokenManager) lookup(ctx context.Context, rawToken string) *repository.AuthenticationToken {
	if mc, err := m.issuer.Parse(rawToken); err == nil {
		if jti, _ := mc["jti"].(string); jti != "" {
			if row, err := m.tokens.GetByID(ctx, jti); err == nil {
				return row
			}
		}
		return nil
	}
	row, err := m.tokens.GetRefreshByHash(ctx, token.SHA256Base64URL(rawToken))
	if err != nil {
		return nil
	}
	return row
}

// ValidateAccess valida un access token presentado en Authorization: firma y
// exp del JWT, más la fila viva (no revocada).
func (m *TokenManager) ValidateAccess(ctx context.Context, rawToken string) (*repository.AuthenticationToken, error) {
	unauthorized := apperr.Unauthorized("invalid_token", "oauth2.token.invalid")
	mc, err := m.issuer.Parse(rawToken)
	if err != nil {
		return nil, unauthorized
	}
	jti, _ := mc["jti"].(string)
	if jti == "" {
		return nil, unauthorized
	}
	row, err := m.tokens.GetByID(ctx, jti)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, unauthorized
	}
	if err != nil {
		return nil, apperr.Internal("oauth2.token.load").Wrap(err)
	}
	if row.Revoked || row.Expired() || row.Type != repository.TokenTypeAccess {
		return nil, unauthorized
	}
	return row, nil
}

// LogGrantFailure deja rastro de canjes fallidos sin filtrar el motivo al
// cliente.
func LogGrantFailure(ctx context.Context, clientID, grantType string, err error) {
	logger.From(ctx).Debug("token grant rejected",
		logger.ClientID(clientID),
		logger.String("grant_type", grantType),
		logger.Err(err),
	)
}
