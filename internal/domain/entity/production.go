package entity

import "time"

// Turnos de producción.
const (
	ShiftDay   = "DAY"
	ShiftNight = "NIGHT"
)

// Estados de una producción. Solo existe la transición DRAFT → CONFIRMED.
const (
	ProductionStatusDraft     = "DRAFT"
	ProductionStatusConfirmed = "CONFIRMED"
)

// Production cabecera de un lote de producción (entrada de bolsas al almacén).
type Production struct {
	ID             string
	Date           time.Time
	Shift          string
	Status         string
	TotalKgControl int64 // informativo, lo digita el operador; no se concilia
	Note           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PostingRef referencia de idempotencia usada en stock_moves para esta producción.
func (p *Production) PostingRef() string {
	return "PROD-" + p.ID
}

// IsConfirmed indica si el lote ya fue confirmado.
func (p *Production) IsConfirmed() bool {
	return p.Status == ProductionStatusConfirmed
}

// ProductionItem línea de producción (se borra en cascada con la cabecera).
type ProductionItem struct {
	ID           string
	ProductionID string
	ProductID    string
	QtyBag       int64
}

// ValidShift indica si s es un turno conocido.
func ValidShift(s string) bool {
	return s == ShiftDay || s == ShiftNight
}
