package entity

import "time"

// IdentityKind clasifica el principal resuelto para una petición.
type IdentityKind string

const (
	KindUser      IdentityKind = "user"
	KindGuest     IdentityKind = "guest"
	KindAnonymous IdentityKind = "anonymous"
)

// Roles válidos.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
	RoleGuest    = "guest"
)

// AnonymousID es el ID centinela reservado para peticiones sin credencial
// ni sesión de invitado. Nunca pasa un chequeo de roles.
const AnonymousID = "00000000-0000-0000-0000-000000000000"

// Identity es el principal resuelto de una petición. Vive solo durante la
// petición, no se persiste.
type Identity struct {
	Kind             IdentityKind
	ID               string // user ID, token de invitado, o AnonymousID
	Role             string
	CredentialExpiry time.Time // cero si no aplica (guest/anonymous)
}

// Anonymous construye la identidad centinela para peticiones sin principal.
func Anonymous() Identity {
	return Identity{Kind: KindAnonymous, ID: AnonymousID}
}

// HasCart indica si la identidad puede poseer un carrito (User o Guest).
func (i Identity) HasCart() bool {
	return i.Kind == KindUser || i.Kind == KindGuest
}

// OwnerKey deriva la clave de almacenamiento del carrito de esta identidad:
// "user:<id>" o "guest:<token>". Vacío para Anonymous.
func (i Identity) OwnerKey() string {
	switch i.Kind {
	case KindUser:
		return UserOwnerKey(i.ID)
	case KindGuest:
		return GuestOwnerKey(i.ID)
	default:
		return ""
	}
}

// UserOwnerKey construye la clave de carrito de un usuario autenticado.
func UserOwnerKey(userID string) string { return "user:" + userID }

// GuestOwnerKey construye la clave de carrito de una sesión de invitado.
func GuestOwnerKey(token string) string { return "guest:" + token }
