// Package password provee el hasher de credenciales first-party.
// El KDF es pluggable: el resto del código depende de Hasher, no de argon2.
package password

// Hasher abstrae el KDF usado para las credenciales de los end-users.
type Hasher interface {
	// Hash deriva y serializa el hash de una password en texto plano.
	Hash(plain string) (string, error)

	// Verify compara una password en texto plano contra un hash serializado.
	Verify(plain, encoded string) bool
}
