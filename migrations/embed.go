// Package migrations embebe los archivos SQL del esquema.
package migrations

import "embed"

// PostgresFS contiene las migraciones del driver postgres, ordenadas por
// prefijo numérico.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// PostgresDir es el directorio dentro de PostgresFS con las migraciones.
const PostgresDir = "postgres"
