package entity

import "time"

// GuestSession representa una sesión de invitado no autenticada, identificada
// por un token opaco impredecible. El TTL es fijo desde la creación: Touch
// actualiza LastSeenAt pero nunca mueve ExpiresAt (decisión de política, no
// un descuido).
type GuestSession struct {
	Token          string // clave primaria, opaco, generado con crypto/rand
	CreatedAt      time.Time
	ExpiresAt      time.Time
	LastSeenAt     time.Time
	MigratingSince *time.Time // no nulo mientras una migración está en curso
}

// IsExpired indica si la sesión ya venció en el instante dado.
func (s *GuestSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsMigrating indica si hay una migración de carrito en curso que protege la
// sesión frente al janitor.
func (s *GuestSession) IsMigrating() bool {
	return s.MigratingSince != nil
}
