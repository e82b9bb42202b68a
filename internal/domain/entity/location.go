package entity

import "time"

// Tipos de local de producción.
const (
	LocationKindOwnedFacility      = "owned_facility"       // unidad propia
	LocationKindThirdPartyWorkshop = "third_party_workshop" // taller tercerizado
)

// Location representa un local físico donde un lote puede estar (unidad propia o taller de terceros).
// Es dato de referencia: se crea y edita fuera del rastreo de producción.
type Location struct {
	ID        string
	Name      string
	Kind      string
	Address   string
	Notes     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidLocationKind indica si kind es uno de los tipos de local soportados.
func ValidLocationKind(kind string) bool {
	return kind == LocationKindOwnedFacility || kind == LocationKindThirdPartyWorkshop
}
