// Package apperr define el error de negocio que cruza las capas de dominio.
// Cada error lleva un status HTTP, un código estable para el cliente y una
// message key localizable con valores nombrados. La traducción a respuesta
// HTTP ocurre una sola vez, en el boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status     int
	Code       string // código estable expuesto al cliente (ej: "invalid_code")
	MessageKey string // key de localización (ej: "flow.claims.validation.invalid_code")
	Values     map[string]any
	wrapped    error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.MessageKey, e.wrapped)
	}
	return e.MessageKey
}

func (e *Error) Unwrap() error { return e.wrapped }

// Wrap adjunta la causa sin cambiar el contrato hacia el cliente.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.wrapped = err
	return &cp
}

// With agrega valores nombrados para la message key.
func (e *Error) With(key string, value any) *Error {
	cp := *e
	cp.Values = map[string]any{}
	for k, v := range e.Values {
		cp.Values[k] = v
	}
	cp.Values[key] = value
	return &cp
}

func New(status int, code, messageKey string) *Error {
	return &Error{Status: status, Code: code, MessageKey: messageKey}
}

func BadRequest(code, messageKey string) *Error {
	return New(http.StatusBadRequest, code, messageKey)
}

func Unauthorized(code, messageKey string) *Error {
	return New(http.StatusUnauthorized, code, messageKey)
}

func NotFound(code, messageKey string) *Error {
	return New(http.StatusNotFound, code, messageKey)
}

// Internal cubre violaciones de invariantes y fallas de infraestructura. El
// detalle queda en el log, nunca en la respuesta.
func Internal(messageKey string) *Error {
	return New(http.StatusInternalServerError, "server_error", messageKey)
}

// From extrae el *Error de una cadena de wrapping, o lo envuelve como
// Internal si no hay ninguno.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("internal.unexpected").Wrap(err)
}
