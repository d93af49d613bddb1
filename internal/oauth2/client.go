package oauth2

import (
	"crypto/subtle"
)

// Client es un cliente OAuth2 declarado por configuración. No hay registro
// dinámico: el conjunto queda fijo al arranque.
type Client struct {
	ID            string
	Secret        string
	RedirectURIs  []string
	AllowedScopes []string
	Audience      string // "aud" inyectado en los access tokens, opcional
}

// ValidateRedirectURI exige match exacto contra las URIs declaradas.
// Sin normalización: "https://app/cb" y "https://app/cb/" son distintas.
func (c *Client) ValidateRedirectURI(uri string) error {
	for _, allowed := range c.RedirectURIs {
		if allowed == uri {
			return nil
		}
	}
	return errInvalidRedirectURI
}

// FilterScopes devuelve los scopes pedidos que el cliente tiene permitidos.
// Scopes desconocidos se descartan en silencio; un resultado vacío es
// invalid_scope.
func (c *Client) FilterScopes(requested []string) ([]string, error) {
	allowed := map[string]struct{}{}
	for _, s := range c.AllowedScopes {
		allowed[s] = struct{}{}
	}
	var granted []string
	for _, s := range requested {
		if _, ok := allowed[s]; ok {
			granted = append(granted, s)
		}
	}
	if len(granted) == 0 {
		return nil, errInvalidScope
	}
	return granted, nil
}

// ClientRegistry resuelve y autentica clientes.
type ClientRegistry struct {
	byID map[string]*Client
}

func NewClientRegistry(clients []Client) *ClientRegistry {
	byID := make(map[string]*Client, len(clients))
	for i := range clients {
		byID[clients[i].ID] = &clients[i]
	}
	return &ClientRegistry{byID: byID}
}

func (r *ClientRegistry) Get(id string) (*Client, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, errInvalidClient
	}
	return c, nil
}

// Authenticate valida client_id + client_secret en tiempo constante.
func (r *ClientRegistry) Authenticate(id, secret string) (*Client, error) {
	c, ok := r.byID[id]
	if !ok || subtle.ConstantTimeCompare([]byte(c.Secret), []byte(secret)) != 1 {
		return nil, errInvalidClient
	}
	return c, nil
}
