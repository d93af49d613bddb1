package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// KeySet mantiene la clave de firma Ed25519 del servidor.
type KeySet struct {
	Priv ed25519.PrivateKey
	Pub  ed25519.PublicKey
	KID  string
	Alg  string // "EdDSA"
}

// NewEd25519 genera una clave Ed25519 en memoria. El KID se deriva de la
// pública, así dos procesos con la misma clave publican el mismo JWKS.
func NewEd25519() (*KeySet, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeySet{Priv: priv, Pub: pub, KID: kidFor(pub), Alg: "EdDSA"}, nil
}

func kidFor(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}

// LoadOrGenerate carga la clave PKCS8/PEM desde path, o la genera y persiste
// si el archivo no existe. path vacío devuelve una clave efímera en memoria.
func LoadOrGenerate(path string) (*KeySet, error) {
	if path == "" {
		return NewEd25519()
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		ks, genErr := NewEd25519()
		if genErr != nil {
			return nil, genErr
		}
		if saveErr := ks.save(path); saveErr != nil {
			return nil, saveErr
		}
		return ks, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jwt: read key %s: %w", path, err)
	}
	block, _ := pem.Decode(raw)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwt: %s: expected PEM PRIVATE KEY block", path)
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse key %s: %w", path, err)
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("jwt: %s: not an Ed25519 key", path)
	}
	pub := priv.Public().(ed25519.PublicKey)
	return &KeySet{Priv: priv, Pub: pub, KID: kidFor(pub), Alg: "EdDSA"}, nil
}

func (k *KeySet) save(path string) error {
	der, err := x509.MarshalPKCS8PrivateKey(k.Priv)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	buf := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	return os.WriteFile(path, buf, 0o600)
}
