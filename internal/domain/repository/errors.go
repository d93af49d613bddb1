package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (ej: duplicado, constraint violation).
	ErrConflict = errors.New("conflict")

	// ErrAlreadyConsumed indica que un código de un solo uso ya fue consumido.
	ErrAlreadyConsumed = errors.New("already consumed")
)
