package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrNotificationFailed nunca llega al llamador: se registra en el log y se descarta.
	ErrNotificationFailed = errors.New("fallo al notificar")
)
