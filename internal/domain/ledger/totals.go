package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
)

// MoneyPlaces decimales de los importes en moneda.
const MoneyPlaces = 2

// SaleTotal Σ(qty × precio) de las líneas, redondeado a 2 decimales.
func SaleTotal(items []*entity.SaleItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total.Round(MoneyPlaces)
}

// PaidTotal suma de los abonos de una venta.
func PaidTotal(payments []*entity.Payment) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return paid.Round(MoneyPlaces)
}

// Debt saldo pendiente = total − pagado. Puede ser negativo (sobrepago permitido).
func Debt(total, paid decimal.Decimal) decimal.Decimal {
	return total.Sub(paid).Round(MoneyPlaces)
}
