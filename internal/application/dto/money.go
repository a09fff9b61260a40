package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/deyirman-ledger/internal/domain/ledger"
)

// Money importe de salida. En JSON siempre lleva dos decimales: "40.00".
type Money struct {
	decimal.Decimal
}

// NewMoney envuelve un importe para una respuesta.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MarshalJSON serializa como string con escala fija.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(ledger.MoneyPlaces) + `"`), nil
}
