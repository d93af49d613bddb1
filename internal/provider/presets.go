package provider

// presets completa los campos que no hace falta configurar a mano para los
// providers conocidos. La configuración explícita siempre gana.
var presets = map[string]RawProvider{
	"google": {
		Name:             "Google",
		AuthorizationURL: "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:         "https://oauth2.googleapis.com/token",
		UserInfoURL:      "https://openidconnect.googleapis.com/v1/userinfo",
		Scopes:           []string{"openid", "email", "profile"},
		Claims: map[string]string{
			"sub":            "sub",
			"email":          "email",
			"email_verified": "email_verified",
			"name":           "name",
			"given_name":     "given_name",
			"family_name":    "family_name",
			"picture":        "picture",
		},
	},
	"github": {
		Name:             "GitHub",
		AuthorizationURL: "https://github.com/login/oauth/authorize",
		TokenURL:         "https://github.com/login/oauth/access_token",
		UserInfoURL:      "https://api.github.com/user",
		Scopes:           []string{"read:user", "user:email"},
		Claims: map[string]string{
			// GitHub no es OIDC: el subject es el id numérico de la cuenta.
			"sub":     "id",
			"name":    "name",
			"email":   "email",
			"picture": "avatar_url",
		},
	},
}

// applyPreset rellena los campos vacíos de raw con el preset de su id, si
// existe.
func applyPreset(raw RawProvider) RawProvider {
	preset, ok := presets[raw.ID]
	if !ok {
		return raw
	}
	if raw.Name == "" {
		raw.Name = preset.Name
	}
	if raw.AuthorizationURL == "" {
		raw.AuthorizationURL = preset.AuthorizationURL
	}
	if raw.TokenURL == "" {
		raw.TokenURL = preset.TokenURL
	}
	if raw.UserInfoURL == "" {
		raw.UserInfoURL = preset.UserInfoURL
	}
	if len(raw.Scopes) == 0 {
		raw.Scopes = append([]string(nil), preset.Scopes...)
	}
	if len(raw.Claims) == 0 {
		raw.Claims = make(map[string]string, len(preset.Claims))
		for k, v := range preset.Claims {
			raw.Claims[k] = v
		}
	}
	return raw
}
