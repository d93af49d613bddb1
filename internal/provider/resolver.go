package provider

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/sympauthy/sympauthy/internal/observability/logger"
)

// Resolver valida la configuración de los providers una sola vez y memoiza el
// resultado. Un provider inválido queda Disabled sin bloquear a los demás.
type Resolver struct {
	raw []RawProvider

	group    singleflight.Group
	resolved []*Provider
}

func NewResolver(raw []RawProvider) *Resolver {
	return &Resolver{raw: raw}
}

// Resolve retorna todos los providers resueltos. Llamadas concurrentes antes
// de la primera resolución colapsan en una sola pasada.
func (r *Resolver) Resolve(ctx context.Context) []*Provider {
	out, _, _ := r.group.Do("resolve", func() (any, error) {
		if r.resolved == nil {
			r.resolved = r.resolveAll(ctx)
		}
		return r.resolved, nil
	})
	return out.([]*Provider)
}

func (r *Resolver) resolveAll(ctx context.Context) []*Provider {
	log := logger.From(ctx)
	resolved := make([]*Provider, 0, len(r.raw))
	for _, raw := range r.raw {
		p := resolveOne(applyPreset(raw))
		if _, ok := p.Enabled(); !ok {
			for _, err := range p.Errors() {
				log.Warn("provider disabled", logger.Provider(p.ID), logger.Err(err))
			}
		}
		resolved = append(resolved, p)
	}
	return resolved
}

// ListEnabled retorna solo los providers habilitados.
func (r *Resolver) ListEnabled(ctx context.Context) []*EnabledProvider {
	var out []*EnabledProvider
	for _, p := range r.Resolve(ctx) {
		if ep, ok := p.Enabled(); ok {
			out = append(out, ep)
		}
	}
	return out
}

// FindEnabled busca un provider habilitado por id. Un provider desconocido o
// deshabilitado son el mismo error hacia afuera.
func (r *Resolver) FindEnabled(ctx context.Context, id string) (*EnabledProvider, error) {
	for _, p := range r.Resolve(ctx) {
		if p.ID != id {
			continue
		}
		if ep, ok := p.Enabled(); ok {
			return ep, nil
		}
		return nil, errProviderDisabled
	}
	return nil, errProviderDisabled
}
