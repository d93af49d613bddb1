package claims

// Scopes estándar de OpenID Connect.
const (
	ScopeOpenID        = "openid"
	ScopeProfile       = "profile"
	ScopeEmail         = "email"
	ScopePhone         = "phone"
	ScopeAddress       = "address"
	ScopeOfflineAccess = "offline_access"
)

// StandardScopes lista los scopes expuestos en el discovery document.
var StandardScopes = []string{
	ScopeOpenID, ScopeProfile, ScopeEmail, ScopePhone, ScopeOfflineAccess,
}

// OpenIdClaim es una entrada del catálogo de claims de la especificación
// OpenID Connect Core (sección 5.1).
type OpenIdClaim struct {
	ID         string
	VerifiedID string
	DataType   DataType
	Group      Group
	Scope      string
	// Generated marca claims cuyo valor produce el servidor (ej: updated_at),
	// nunca colectados por input del end-user.
	Generated bool
}

// Identificadores de claims estándar usados por el merge engine.
const (
	Name              = "name"
	GivenName         = "given_name"
	FamilyName        = "family_name"
	MiddleName        = "middle_name"
	Nickname          = "nickname"
	PreferredUsername = "preferred_username"
	Profile           = "profile"
	Picture           = "picture"
	Website           = "website"
	Email             = "email"
	EmailVerified     = "email_verified"
	Gender            = "gender"
	BirthDate         = "birthdate"
	ZoneInfo          = "zoneinfo"
	Locale            = "locale"
	PhoneNumber       = "phone_number"
	PhoneVerified     = "phone_number_verified"
	UpdatedAt         = "updated_at"
)

// OpenIdCatalog es el catálogo completo de claims estándar soportados.
var OpenIdCatalog = []OpenIdClaim{
	{ID: Name, DataType: TypeString, Group: GroupName, Scope: ScopeProfile},
	{ID: GivenName, DataType: TypeString, Group: GroupName, Scope: ScopeProfile},
	{ID: FamilyName, DataType: TypeString, Group: GroupName, Scope: ScopeProfile},
	{ID: MiddleName, DataType: TypeString, Group: GroupName, Scope: ScopeProfile},
	{ID: Nickname, DataType: TypeString, Group: GroupName, Scope: ScopeProfile},
	{ID: PreferredUsername, DataType: TypeString, Group: GroupProfile, Scope: ScopeProfile},
	{ID: Profile, DataType: TypeString, Group: GroupProfile, Scope: ScopeProfile},
	{ID: Picture, DataType: TypeString, Group: GroupProfile, Scope: ScopeProfile},
	{ID: Website, DataType: TypeString, Group: GroupProfile, Scope: ScopeProfile},
	{ID: Email, VerifiedID: EmailVerified, DataType: TypeEmail, Group: GroupContact, Scope: ScopeEmail},
	{ID: Gender, DataType: TypeString, Group: GroupProfile, Scope: ScopeProfile},
	{ID: BirthDate, DataType: TypeDate, Group: GroupProfile, Scope: ScopeProfile},
	{ID: ZoneInfo, DataType: TypeString, Group: GroupProfile, Scope: ScopeProfile},
	{ID: Locale, DataType: TypeString, Group: GroupProfile, Scope: ScopeProfile},
	{ID: PhoneNumber, VerifiedID: PhoneVerified, DataType: TypePhone, Group: GroupContact, Scope: ScopePhone},
	{ID: UpdatedAt, DataType: TypeNumber, Group: GroupProfile, Scope: ScopeProfile, Generated: true},
}

// FindOpenIdClaim busca una entrada del catálogo por id.
func FindOpenIdClaim(id string) (OpenIdClaim, bool) {
	for _, oc := range OpenIdCatalog {
		if oc.ID == id {
			return oc, true
		}
	}
	return OpenIdClaim{}, false
}
