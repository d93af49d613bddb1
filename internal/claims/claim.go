// Package claims contiene el catálogo de claims del authorization server:
// los claims estándar de OpenID Connect más los custom claims definidos en
// la configuración. Los scopes de lectura/escritura de cada claim se fijan
// al construir el registry y no se mutan por request.
package claims

// Kind distingue las variantes de Claim. Todo consumo debe hacer switch
// exhaustivo sobre este tag.
type Kind int

const (
	KindStandard Kind = iota
	KindCustom
)

// DataType es el tipo de dato del valor de un claim.
type DataType string

const (
	TypeString DataType = "string"
	TypeEmail  DataType = "email"
	TypePhone  DataType = "phone_number"
	TypeDate   DataType = "date"
	TypeNumber DataType = "number"
	TypeBool   DataType = "boolean"
)

// Group agrupa claims para la UI del flow de colecta.
type Group string

const (
	GroupName    Group = "name"
	GroupContact Group = "contact"
	GroupProfile Group = "profile"
)

// Claim describe un claim colectable por este servidor.
// Variante taggeada: Standard (catálogo OpenID) o Custom (configuración).
type Claim struct {
	Kind Kind

	// ID es el identificador del claim (ej: "email").
	ID string
	// VerifiedID es el claim que indica que el valor fue verificado por este
	// servidor (ej: "email_verified"). Vacío si no aplica.
	VerifiedID string

	DataType DataType
	Group    Group

	// Required indica que el end-user DEBE proveer un valor antes de completar
	// cualquier flow de autenticación.
	Required bool
	// UserInputted indica si el claim se colecta de input del end-user o su
	// valor lo maneja el servidor (generado, gestionado por API, etc.).
	UserInputted bool
	// AllowedValues restringe los valores aceptados. Nil acepta todo.
	AllowedValues []string

	readScopes  map[string]struct{}
	writeScopes map[string]struct{}
}

// NewStandardClaim construye la variante estándar a partir de una entrada del
// catálogo OpenID.
func NewStandardClaim(oc OpenIdClaim, required bool, allowedValues []string) *Claim {
	return &Claim{
		Kind:          KindStandard,
		ID:            oc.ID,
		VerifiedID:    oc.VerifiedID,
		DataType:      oc.DataType,
		Group:         oc.Group,
		Required:      required,
		UserInputted:  !oc.Generated,
		AllowedValues: allowedValues,
		readScopes:    map[string]struct{}{oc.Scope: {}},
		writeScopes:   map[string]struct{}{},
	}
}

// NewCustomClaim construye la variante custom definida por configuración.
func NewCustomClaim(id string, dataType DataType, required bool, readScopes, writeScopes []string) *Claim {
	c := &Claim{
		Kind:         KindCustom,
		ID:           id,
		DataType:     dataType,
		Required:     required,
		UserInputted: true,
		readScopes:   map[string]struct{}{},
		writeScopes:  map[string]struct{}{},
	}
	for _, s := range readScopes {
		c.readScopes[s] = struct{}{}
	}
	for _, s := range writeScopes {
		c.writeScopes[s] = struct{}{}
	}
	return c
}

// CanBeRead retorna true si alguno de los scopes permite leer el claim.
func (c *Claim) CanBeRead(scopes []string) bool {
	for _, s := range scopes {
		if _, ok := c.readScopes[s]; ok {
			return true
		}
	}
	return false
}

// CanBeWritten retorna true si alguno de los scopes permite editar el claim.
func (c *Claim) CanBeWritten(scopes []string) bool {
	for _, s := range scopes {
		if _, ok := c.writeScopes[s]; ok {
			return true
		}
	}
	return false
}
