// Package jwt firma y verifica los JWT emitidos por el servidor: access
// tokens, id tokens y los state firmados que viajan por los redirects del
// flujo de autorización. Todo con EdDSA (Ed25519) y un solo KID.
package jwt

import (
	"crypto/ed25519"
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid_token")
	ErrInvalidState = errors.New("invalid_state")
)

// Issuer firma tokens con la clave del KeySet.
type Issuer struct {
	Iss       string // "iss"
	Keys      *KeySet
	AccessTTL time.Duration // TTL de access/id tokens (ej: 15m)
}

func NewIssuer(iss string, keys *KeySet) *Issuer {
	return &Issuer{Iss: iss, Keys: keys, AccessTTL: 15 * time.Minute}
}

// Keyfunc devuelve un jwt.Keyfunc que valida el 'kid' del header contra la
// clave del servidor.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != "" && kid != i.Keys.KID {
			return nil, ErrInvalidToken
		}
		return ed25519.PublicKey(i.Keys.Pub), nil
	}
}

// SignRaw firma un MapClaims arbitrario, setea header kid/typ y devuelve el
// JWT firmado.
func (i *Issuer) SignRaw(claims jwtv5.MapClaims) (string, error) {
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = i.Keys.KID
	tk.Header["typ"] = "JWT"
	return tk.SignedString(i.Keys.Priv)
}

// IssueAccess emite un access token. jti es el id de la fila persistida del
// token, lo que permite revocación por id.
func (i *Issuer) IssueAccess(jti, sub, clientID string, scopes []string, aud string, issueDate, expiration time.Time) (string, error) {
	claims := jwtv5.MapClaims{
		"iss":       i.Iss,
		"jti":       jti,
		"sub":       sub,
		"client_id": clientID,
		"scope":     joinScopes(scopes),
		"iat":       issueDate.Unix(),
		"nbf":       issueDate.Unix(),
		"exp":       expiration.Unix(),
	}
	if aud != "" {
		claims["aud"] = aud
	}
	return i.SignRaw(claims)
}

// IssueIDToken emite un ID Token OIDC con los claims estándar del usuario.
func (i *Issuer) IssueIDToken(sub, aud string, extra map[string]any) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)
	claims := jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": sub,
		"aud": aud,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	signed, err := i.SignRaw(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse valida firma, exp e iss de un token emitido por este servidor y
// devuelve sus claims.
func (i *Issuer) Parse(token string) (jwtv5.MapClaims, error) {
	mc := jwtv5.MapClaims{}
	parsed, err := jwtv5.ParseWithClaims(token, mc, i.Keyfunc(),
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithIssuer(i.Iss),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return mc, nil
}

// ───────────────────────────────────────────────────────────────
// State firmado del flujo de autorización
// ───────────────────────────────────────────────────────────────

// El state que viaja por los redirects es un JWT firmado que solo contiene el
// id del attempt. Cualquier alteración invalida la firma.

// SignState firma el state de un authorize attempt.
func (i *Issuer) SignState(attemptID string, expiration time.Time) (string, error) {
	return i.SignRaw(jwtv5.MapClaims{
		"iss": i.Iss,
		"aud": "state",
		"sub": attemptID,
		"exp": expiration.Unix(),
	})
}

// VerifyState valida un state firmado y devuelve el id del attempt.
// Cualquier fallo (firma, exp, audiencia) se colapsa en ErrInvalidState.
func (i *Issuer) VerifyState(state string) (string, error) {
	mc := jwtv5.MapClaims{}
	parsed, err := jwtv5.ParseWithClaims(state, mc, i.Keyfunc(),
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithAudience("state"),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidState
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return "", ErrInvalidState
	}
	return sub, nil
}

func joinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}
