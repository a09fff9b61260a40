package entity

import "time"

// Tipos de movimiento de stock.
const (
	MoveTypeIn  = "IN"  // entrada
	MoveTypeOut = "OUT" // salida
)

// Origen del movimiento.
const (
	MoveSourceProduction = "PRODUCTION"
	MoveSourceSale       = "SALE"
)

// StockMove asiento inmutable del libro de stock (en bolsas).
// No pertenece a ningún documento: RefText lo enlaza por texto (PROD-<id> o sale_no).
type StockMove struct {
	ID        string
	Date      time.Time
	Type      string
	Source    string
	ProductID string
	QtyBag    int64 // siempre positivo; el signo lo da Type
	RefText   string
	Shift     string // solo significativo para PRODUCTION
	Note      string
	CreatedAt time.Time
}

// SignedQty cantidad con signo: positiva para IN, negativa para OUT.
func (m *StockMove) SignedQty() int64 {
	if m.Type == MoveTypeOut {
		return -m.QtyBag
	}
	return m.QtyBag
}
