// Package repository define las entidades persistidas y las interfaces de
// repositorio de dominio.
//
// Estas interfaces representan contratos de negocio, independientes del
// almacenamiento subyacente. Las implementaciones concretas viven en
// internal/store/pg (producción) e internal/store/memory (dev/tests).
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
//   - Las operaciones de consumo de códigos (authorization codes, validation
//     codes) son check-and-invalidate atómicos: dos consumos concurrentes del
//     mismo código nunca pueden tener éxito ambos.
package repository
