// Package cache provee una abstracción de caching multi-backend.
//
// Soporta:
//   - memory (in-process, go-cache) para desarrollo/testing
//   - redis (distribuido) para producción
//
// Se usa para la respuesta cacheada de /flow/configuration y como backend
// del rate limiter.
package cache

import "time"

// Cache define operaciones mínimas de cache byte-oriented.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
