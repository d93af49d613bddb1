// Package memory implementa los repositorios de dominio in-process.
// Pensado para desarrollo y tests; las operaciones de consumo son atómicas
// bajo el mutex del repositorio.
package memory

import "github.com/sympauthy/sympauthy/internal/domain/repository"

// Store agrupa los repositorios in-memory.
type Store struct {
	attempts  *attemptRepo
	tokens    *tokenRepo
	codes     *authorizationCodeRepo
	claims    *collectedClaimRepo
	vcodes    *validationCodeRepo
	users     *userRepo
	provInfos *providerUserInfoRepo
}

func New() *Store {
	return &Store{
		attempts:  newAttemptRepo(),
		tokens:    newTokenRepo(),
		codes:     newAuthorizationCodeRepo(),
		claims:    newCollectedClaimRepo(),
		vcodes:    newValidationCodeRepo(),
		users:     newUserRepo(),
		provInfos: newProviderUserInfoRepo(),
	}
}

func (s *Store) Attempts() repository.AttemptRepository                   { return s.attempts }
func (s *Store) Tokens() repository.TokenRepository                       { return s.tokens }
func (s *Store) AuthorizationCodes() repository.AuthorizationCodeRepository { return s.codes }
func (s *Store) CollectedClaims() repository.CollectedClaimRepository     { return s.claims }
func (s *Store) ValidationCodes() repository.ValidationCodeRepository     { return s.vcodes }
func (s *Store) Users() repository.UserRepository                         { return s.users }
func (s *Store) ProviderUserInfo() repository.ProviderUserInfoRepository  { return s.provInfos }
