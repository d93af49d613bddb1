package repository

import (
	"context"
	"time"
)

// UserInfo es la proyección plana de atributos de identidad de un usuario.
// La usan tanto las filas de providers como el resultado del merge.
type UserInfo struct {
	Subject string `json:"sub"`

	Name       string `json:"name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	Nickname   string `json:"nickname,omitempty"`

	PreferredUsername string `json:"preferred_username,omitempty"`
	Profile           string `json:"profile,omitempty"`
	Picture           string `json:"picture,omitempty"`
	Website           string `json:"website,omitempty"`

	Email         string `json:"email,omitempty"`
	EmailVerified *bool  `json:"email_verified,omitempty"`

	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birthdate,omitempty"` // ISO-8601 date

	ZoneInfo string `json:"zoneinfo,omitempty"`
	Locale   string `json:"locale,omitempty"`

	PhoneNumber         string `json:"phone_number,omitempty"`
	PhoneNumberVerified *bool  `json:"phone_number_verified,omitempty"`

	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ProviderUserInfo son los claims crudos que un third-party provider retornó
// para un usuario. ChangeDate es la clave de orden de fallback cuando el
// provider no informa updated_at.
type ProviderUserInfo struct {
	ProviderID string
	UserID     string
	UserInfo   UserInfo
	ChangeDate time.Time
}

// ProviderUserInfoRepository define operaciones sobre user info de providers.
type ProviderUserInfoRepository interface {
	// FindByUserID retorna las filas de todos los providers para un usuario.
	FindByUserID(ctx context.Context, userID string) ([]*ProviderUserInfo, error)

	// FindByProviderAndSubject resuelve el usuario local dueño del subject de
	// un provider. Retorna ErrNotFound si el subject nunca inició sesión.
	FindByProviderAndSubject(ctx context.Context, providerID, subject string) (*ProviderUserInfo, error)

	// Upsert crea o reemplaza la fila de (provider, user).
	Upsert(ctx context.Context, info *ProviderUserInfo) error
}
