package repository

import (
	"context"
	"time"
)

// UserStatus es el estado de la cuenta del end-user.
type UserStatus string

const (
	UserEnabled  UserStatus = "ENABLED"
	UserDisabled UserStatus = "DISABLED"
)

// User es la cuenta del end-user. Los atributos de identidad NO viven acá:
// se colectan como CollectedClaim o llegan de providers como ProviderUserInfo.
type User struct {
	ID           string
	Status       UserStatus
	PasswordHash *string // nil si el usuario solo tiene identidades de terceros
	CreationDate time.Time
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// Create persiste un usuario nuevo.
	Create(ctx context.Context, user *User) error

	// GetByID busca un usuario por id. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)

	// UpdatePassword reemplaza el hash de credenciales del usuario.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
