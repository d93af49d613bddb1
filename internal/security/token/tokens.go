package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
// Usado para refresh tokens y authorization codes.
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateNumericCode genera un código numérico de n dígitos para validación
// out-of-band (email/SMS). Usa rand criptográfico, sin sesgo por byte suelto.
func GenerateNumericCode(nDigits int) (string, error) {
	const digits = "0123456789"
	out := make([]byte, nDigits)
	buf := make([]byte, 1)
	for i := 0; i < nDigits; {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		// rechazo de muestras >= 250 para mantener distribución uniforme
		if buf[0] >= 250 {
			continue
		}
		out[i] = digits[int(buf[0])%10]
		i++
	}
	return string(out), nil
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding (para guardar en DB).
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// SHA256Hex devuelve sha256(input) en hexadecimal.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)
}
