package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar HTTP.

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// Campos estándar del dominio de autorización.

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// ClientID crea un campo para el client OAuth2.
func ClientID(v string) zap.Field {
	return zap.String("client_id", v)
}

// AttemptID crea un campo para el authorize attempt.
func AttemptID(v string) zap.Field {
	return zap.String("attempt_id", v)
}

// Provider crea un campo para el id del third-party provider.
func Provider(v string) zap.Field {
	return zap.String("provider", v)
}

// Claim crea un campo para el id de un claim.
func Claim(v string) zap.Field {
	return zap.String("claim", v)
}

// Media crea un campo para el medio de envío de un validation code.
func Media(v string) zap.Field {
	return zap.String("media", v)
}

// Scope crea un campo para un scope OAuth2.
func Scope(v string) zap.Field {
	return zap.String("scope", v)
}

// Genéricos.

func String(k, v string) zap.Field { return zap.String(k, v) }
func Int(k string, v int) zap.Field {
	return zap.Int(k, v)
}
func Bool(k string, v bool) zap.Field {
	return zap.Bool(k, v)
}
func Err(err error) zap.Field {
	return zap.Error(err)
}
