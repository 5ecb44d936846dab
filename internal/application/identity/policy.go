package identity

// RoutePolicy es la política de acceso de una ruta, declarada como datos en
// el registro de rutas (no como closures por ruta). Una misma función de
// resolución la interpreta para todas las rutas.
type RoutePolicy struct {
	RequireAuth  bool     // true: sin identidad utilizable la petición falla
	AllowedRoles []string // vacío: cualquier rol; no vacío: el rol debe estar en la lista
	AllowGuest   bool     // true: se aceptan (y opcionalmente se aprovisionan) sesiones de invitado
}

// roleAllowed indica si role pasa la restricción de roles de la política.
func (p RoutePolicy) roleAllowed(role string) bool {
	if len(p.AllowedRoles) == 0 {
		return true
	}
	for _, r := range p.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Políticas predefinidas para el router.
var (
	// PolicyPublic no exige identidad: resuelve Anonymous si no hay nada.
	PolicyPublic = RoutePolicy{}

	// PolicyCart acepta usuarios e invitados y aprovisiona sesión de
	// invitado si la petición no trae ninguna.
	PolicyCart = RoutePolicy{AllowGuest: true}

	// PolicyUser exige un usuario autenticado.
	PolicyUser = RoutePolicy{RequireAuth: true}

	// PolicyAdmin exige un usuario autenticado con rol admin.
	PolicyAdmin = RoutePolicy{RequireAuth: true, AllowedRoles: []string{"admin"}}
)
