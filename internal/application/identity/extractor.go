package identity

import "strings"

// RequestValues abstrae los campos de la petición entrante que interesan al
// resolutor. La capa HTTP adapta su framework a esta interfaz; los tests
// pueden usar un mapa.
type RequestValues interface {
	Header(name string) string
	Query(name string) string
	BodyField(name string) string
}

// Ubicaciones donde puede venir cada tipo de token. Se revisan en orden fijo
// y gana el primer valor no vacío; nunca se mezclan ubicaciones.
type locationKind int

const (
	inHeader locationKind = iota
	inQuery
	inBody
)

type location struct {
	kind locationKind
	name string
}

var credentialLocations = []location{
	{inHeader, "X-Auth-Token"},
	{inHeader, "Authorization"},
	{inHeader, "X-Access-Token"},
	{inQuery, "token"},
	{inBody, "token"},
}

var guestTokenLocations = []location{
	{inHeader, "X-Guest-Token"},
	{inHeader, "Guest-Token"},
	{inQuery, "guest_token"},
	{inBody, "guest_token"},
}

// credentialPrefixes son los esquemas reconocidos delante de la credencial.
var credentialPrefixes = []string{"Bearer ", "Token ", "JWT "}

// extractFirst devuelve el primer valor no vacío de las ubicaciones dadas.
func extractFirst(req RequestValues, locs []location) string {
	for _, loc := range locs {
		var v string
		switch loc.kind {
		case inHeader:
			v = req.Header(loc.name)
		case inQuery:
			v = req.Query(loc.name)
		case inBody:
			v = req.BodyField(loc.name)
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// stripCredentialPrefix quita un esquema reconocido ("Bearer ", "Token ",
// "JWT ") si está presente. Un prefijo desconocido se deja intacto: será el
// validador quien rechace la credencial.
func stripCredentialPrefix(raw string) string {
	for _, p := range credentialPrefixes {
		if len(raw) > len(p) && strings.EqualFold(raw[:len(p)], p) {
			return strings.TrimSpace(raw[len(p):])
		}
	}
	return raw
}
