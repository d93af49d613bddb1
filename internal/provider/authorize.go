package provider

import (
	"context"
	"fmt"

	xoauth2 "golang.org/x/oauth2"
)

// AuthorizeURL arma la URL de autorización del provider para redirigir al
// end-user. El state es el state firmado del attempt: el callback lo devuelve
// intacto y con eso retomamos el flujo.
func AuthorizeURL(p *EnabledProvider, state string) string {
	return p.OAuth.AuthCodeURL(state)
}

// Exchange canjea el code del callback del provider por su access token.
func Exchange(ctx context.Context, p *EnabledProvider, code string) (*xoauth2.Token, error) {
	token, err := p.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("provider %s: exchange: %w", p.ID, err)
	}
	return token, nil
}
