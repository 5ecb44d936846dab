package dto

import "time"

// RegisterRequest alta de usuario.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // opcional; por defecto "customer"
}

// LoginRequest inicio de sesión. GuestToken es opcional: si viene, el
// carrito de esa sesión de invitado se migra al usuario tras autenticar.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	GuestToken string `json:"guest_token,omitempty"`
}

// UserResponse usuario sin campos sensibles.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse token + usuario. Cart viene poblado si el login migró un
// carrito de invitado; CartMigrated indica si la migración se aplicó.
type LoginResponse struct {
	Token        string        `json:"token"`
	User         UserResponse  `json:"user"`
	Cart         *CartResponse `json:"cart,omitempty"`
	CartMigrated bool          `json:"cart_migrated"`
}

// GuestSessionResponse emisión explícita de sesión de invitado.
type GuestSessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
