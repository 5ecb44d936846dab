package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrSessionExpired     = errors.New("sesión de invitado expirada")
	ErrNoIdentity         = errors.New("la identidad no tiene carrito asociado")
	ErrVersionMismatch    = errors.New("la versión del carrito cambió durante la escritura")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrMergeFailure       = errors.New("la migración del carrito de invitado falló")
)
