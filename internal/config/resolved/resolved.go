// Package resolved valida la configuración cruda y la transforma en las
// estructuras que consumen los managers. Cada dominio resuelve a una variante
// enabled (config usable) o disabled (lista de errores). El arranque loguea
// todos los errores juntos y el servidor levanta igual: el dominio roto falla
// recién cuando algo lo usa.
package resolved

import (
	"context"
	"errors"

	"github.com/sympauthy/sympauthy/internal/config"
	"github.com/sympauthy/sympauthy/internal/observability/logger"
)

// ErrDisabled se retorna al usar un dominio de configuración que quedó
// deshabilitado por errores de resolución.
var ErrDisabled = errors.New("configuration disabled by validation errors")

// Of es una variante de configuración resuelta: el valor usable o los errores
// que la deshabilitaron.
type Of[T any] struct {
	name  string
	value *T
	errs  []error
}

func enabled[T any](name string, v *T) Of[T] { return Of[T]{name: name, value: v} }

func disabled[T any](name string, errs []error) Of[T] { return Of[T]{name: name, errs: errs} }

// Get retorna el valor o falla si el dominio quedó deshabilitado.
func (c Of[T]) Get() (*T, error) {
	if c.value == nil {
		return nil, ErrDisabled
	}
	return c.value, nil
}

// MustGet es el unwrap para el arranque: los call sites del boot ya saben que
// el dominio resolvió bien (o quieren abortar si no).
func (c Of[T]) MustGet() *T {
	v, err := c.Get()
	if err != nil {
		panic("resolved: " + c.name + " is disabled")
	}
	return v
}

// Enabled retorna true si el dominio resolvió sin errores.
func (c Of[T]) Enabled() bool { return c.value != nil }

// Errors retorna los errores de resolución.
func (c Of[T]) Errors() []error { return c.errs }

// Resolved agrupa las configuraciones de dominio ya resueltas.
type Resolved struct {
	Auth       Of[AuthConfig]
	Urls       Of[UrlsConfig]
	Claims     Of[ClaimsConfig]
	Clients    Of[ClientsConfig]
	Validation Of[ValidationConfig]
}

// Resolve valida todos los dominios. Nunca falla: los errores quedan en cada
// variante para que el checker los loguee juntos.
func Resolve(cfg *config.Config) *Resolved {
	return &Resolved{
		Auth:       resolveAuth(cfg),
		Urls:       resolveUrls(cfg),
		Claims:     resolveClaims(cfg),
		Clients:    resolveClients(cfg),
		Validation: resolveValidation(cfg),
	}
}

// Check loguea los errores de todos los dominios de una pasada y retorna
// false si alguno quedó deshabilitado. No corta el arranque: eso lo decide el
// caller.
func (r *Resolved) Check(ctx context.Context) bool {
	log := logger.From(ctx)
	ok := true
	report := func(name string, errs []error) {
		if len(errs) == 0 {
			return
		}
		ok = false
		for _, err := range errs {
			log.Error("configuration error", logger.String("section", name), logger.Err(err))
		}
	}
	report("auth", r.Auth.Errors())
	report("urls", r.Urls.Errors())
	report("claims", r.Claims.Errors())
	report("clients", r.Clients.Errors())
	report("validation", r.Validation.Errors())
	if !ok {
		log.Warn("configuration has disabled sections, dependent endpoints will fail")
	}
	return ok
}
