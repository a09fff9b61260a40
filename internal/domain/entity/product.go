package entity

import "time"

// Product representa un tipo de harina/salvado que se empaca en bolsas.
// BagKg puede editarse; los kilos siempre se derivan en vivo a partir del valor actual.
type Product struct {
	ID        string
	Name      string // único (normalizado NFC)
	BagKg     int64  // kilos por bolsa, > 0
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KgFor convierte una cantidad de bolsas a kilos con el peso actual de la bolsa.
func (p *Product) KgFor(bags int64) int64 {
	if p == nil {
		return 0
	}
	return bags * p.BagKg
}
