package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusDraft     = "DRAFT"
	SaleStatusConfirmed = "CONFIRMED"
	SaleStatusCancelled = "CANCELLED"
)

// Tipos de pago (informativo).
const (
	PaymentTypeCash    = "CASH"
	PaymentTypeCredit  = "CREDIT"
	PaymentTypePartial = "PARTIAL"
)

// Sale cabecera de una venta. TotalAmount, PaidAmount y DebtAmount son derivados:
// solo los escriben la confirmación y el registro de pagos, dentro de su transacción.
type Sale struct {
	ID          string
	SaleNo      string // S-<año>-<6 dígitos>, asignado una sola vez al crear
	Date        time.Time
	CustomerID  string
	Status      string
	PaymentType string
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	DebtAmount  decimal.Decimal
	Note        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsConfirmed indica si la venta ya fue confirmada.
func (s *Sale) IsConfirmed() bool {
	return s.Status == SaleStatusConfirmed
}

// SaleItem línea de venta: bolsas de un producto a un precio por bolsa.
type SaleItem struct {
	ID           string
	SaleID       string
	ProductID    string
	QtyBag       int64
	UnitPriceBag decimal.Decimal
}

// LineTotal qty × precio por bolsa (aritmética decimal exacta).
func (i *SaleItem) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(i.QtyBag).Mul(i.UnitPriceBag)
}

// ValidPaymentType indica si t es un tipo de pago conocido.
func ValidPaymentType(t string) bool {
	switch t {
	case PaymentTypeCash, PaymentTypeCredit, PaymentTypePartial:
		return true
	}
	return false
}
