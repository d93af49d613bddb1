package claims

// Registry es el catálogo inmutable de claims del servidor.
// Se construye una sola vez en el arranque (desde la configuración resuelta)
// y se pasa como dependencia explícita a los managers que lo necesitan.
type Registry struct {
	ordered []*Claim
	byID    map[string]*Claim
}

func NewRegistry(list []*Claim) *Registry {
	r := &Registry{byID: make(map[string]*Claim, len(list))}
	for _, c := range list {
		if _, dup := r.byID[c.ID]; dup {
			continue
		}
		r.ordered = append(r.ordered, c)
		r.byID[c.ID] = c
	}
	return r
}

// FindByID retorna el claim o nil si no existe.
func (r *Registry) FindByID(id string) *Claim {
	return r.byID[id]
}

// List retorna todos los claims en orden de declaración.
func (r *Registry) List() []*Claim {
	return r.ordered
}

// ListCollectable retorna los claims que se colectan por input del end-user.
func (r *Registry) ListCollectable() []*Claim {
	var out []*Claim
	for _, c := range r.ordered {
		if c.UserInputted {
			out = append(out, c)
		}
	}
	return out
}

// ListRequired retorna los claims obligatorios para completar cualquier flow.
func (r *Registry) ListRequired() []*Claim {
	var out []*Claim
	for _, c := range r.ordered {
		if c.Required {
			out = append(out, c)
		}
	}
	return out
}

// IDs retorna los ids de todos los claims (para el discovery document).
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.ordered))
	for _, c := range r.ordered {
		out = append(out, c.ID)
	}
	return out
}
