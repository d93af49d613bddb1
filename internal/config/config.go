// Package config carga la configuración cruda del servidor: config.yaml más
// overrides por variables de entorno. La validación semántica (URLs, clientes,
// claims, providers) vive en config/resolved.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`  // debug | info | warn | error
		Format string `yaml:"format"` // console | json
	} `yaml:"log"`

	Storage struct {
		Driver string `yaml:"driver"` // postgres | memory
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Issuer     string `yaml:"issuer"`
		KeyPath    string `yaml:"key_path"` // PEM Ed25519; vacío = clave efímera
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	// URLs de la UI first-party hacia la que el flow redirige al end-user.
	Urls struct {
		SignIn        string `yaml:"sign_in"`
		CollectClaims string `yaml:"collect_claims"`
		ValidateCode  string `yaml:"validate_code"`
		Error         string `yaml:"error"`
	} `yaml:"urls"`

	Flow struct {
		AttemptTTL        string `yaml:"attempt_ttl"`
		AuthorizationCode struct {
			TTL string `yaml:"ttl"`
		} `yaml:"authorization_code"`
		ValidationCode struct {
			TTL    string `yaml:"ttl"`
			Digits int    `yaml:"digits"`
		} `yaml:"validation_code"`
	} `yaml:"flow"`

	// Claims estándar a activar más custom claims propios.
	Claims []ClaimConfig `yaml:"claims"`

	Clients []ClientConfig `yaml:"clients"`

	Providers []ProviderConfig `yaml:"providers"`

	Validation struct {
		Email struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"email"`
		Phone struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"phone"`
	} `yaml:"validation"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		// Límites para el envío/reenvío de validation codes.
		CodeSend struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"code_send"`
		// Límites para los submit de código y password.
		Submit struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"submit"`
	} `yaml:"rate"`
}

// ClaimConfig declara un claim: una entrada del catálogo estándar o un custom
// claim con sus scopes.
type ClaimConfig struct {
	ID            string   `yaml:"id"`
	Required      bool     `yaml:"required"`
	AllowedValues []string `yaml:"allowed_values"`

	// Solo custom claims:
	Custom      bool     `yaml:"custom"`
	DataType    string   `yaml:"data_type"` // string | email | phone_number | date | number | boolean
	ReadScopes  []string `yaml:"read_scopes"`
	WriteScopes []string `yaml:"write_scopes"`
}

// ClientConfig declara un cliente OAuth2.
type ClientConfig struct {
	ID            string   `yaml:"id"`
	Secret        string   `yaml:"secret"`
	RedirectURIs  []string `yaml:"redirect_uris"`
	AllowedScopes []string `yaml:"allowed_scopes"`
	Audience      string   `yaml:"audience"`
}

// ProviderConfig declara un identity provider third-party.
type ProviderConfig struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name"`
	Enabled          *bool             `yaml:"enabled"`
	ClientID         string            `yaml:"client_id"`
	ClientSecret     string            `yaml:"client_secret"`
	AuthorizationURL string            `yaml:"authorization_url"`
	TokenURL         string            `yaml:"token_url"`
	UserInfoURL      string            `yaml:"user_info_url"`
	RedirectURL      string            `yaml:"redirect_url"`
	Scopes           []string          `yaml:"scopes"`
	Claims           map[string]string `yaml:"claims"` // claim id -> path en la respuesta de userinfo
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "720h" // 30d
	}
	if c.Flow.AttemptTTL == "" {
		c.Flow.AttemptTTL = "1h"
	}
	if c.Flow.AuthorizationCode.TTL == "" {
		c.Flow.AuthorizationCode.TTL = "1m"
	}
	if c.Flow.ValidationCode.TTL == "" {
		c.Flow.ValidationCode.TTL = "10m"
	}
	if c.Flow.ValidationCode.Digits == 0 {
		c.Flow.ValidationCode.Digits = 6
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Rate.CodeSend.Limit == 0 {
		c.Rate.CodeSend.Limit = 5
	}
	if c.Rate.CodeSend.Window == "" {
		c.Rate.CodeSend.Window = "10m"
	}
	if c.Rate.Submit.Limit == 0 {
		c.Rate.Submit.Limit = 10
	}
	if c.Rate.Submit.Window == "" {
		c.Rate.Submit.Window = "1m"
	}

	c.applyEnvOverrides()

	// validate string durations
	for _, d := range []string{
		c.JWT.AccessTTL, c.JWT.RefreshTTL,
		c.Flow.AttemptTTL, c.Flow.AuthorizationCode.TTL, c.Flow.ValidationCode.TTL,
		c.Cache.Memory.DefaultTTL,
		c.Rate.CodeSend.Window, c.Rate.Submit.Window,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return nil, fmt.Errorf("config: invalid duration %q: %w", d, err)
		}
	}

	return &c, nil
}

// Dur parsea una duración ya validada por Load.
func Dur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := getEnvStr("LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Cache.Redis.Prefix = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("JWT_KEY_PATH"); ok {
		c.JWT.KeyPath = v
	}
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
}
