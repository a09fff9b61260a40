package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment abono registrado contra una venta.
type Payment struct {
	ID        string
	SaleID    string
	Date      time.Time
	Amount    decimal.Decimal
	Note      string
	CreatedAt time.Time
}
