package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta.
type SaleItemRequest struct {
	ProductID    string          `json:"product_id" validate:"required"`
	QtyBag       int64           `json:"qty_bag" validate:"required,gt=0"`
	UnitPriceBag decimal.Decimal `json:"unit_price_bag"`
}

// CreateSaleRequest body para POST /api/sales. El número se asigna automáticamente.
type CreateSaleRequest struct {
	Date        *time.Time        `json:"date"`
	CustomerID  string            `json:"customer_id" validate:"required"`
	PaymentType string            `json:"payment_type" validate:"omitempty,oneof=CASH CREDIT PARTIAL"`
	Note        string            `json:"note"`
	Items       []SaleItemRequest `json:"items" validate:"dive"`
}

// UpdateSaleRequest body para PUT /api/sales/:id (solo DRAFT). Nunca cambia sale_no.
type UpdateSaleRequest struct {
	Date        *time.Time        `json:"date"`
	CustomerID  *string           `json:"customer_id"`
	PaymentType *string           `json:"payment_type" validate:"omitempty,oneof=CASH CREDIT PARTIAL"`
	Note        *string           `json:"note"`
	Items       []SaleItemRequest `json:"items" validate:"omitempty,dive"`
}

// SaleItemResponse línea con importes y kilos derivados.
type SaleItemResponse struct {
	ProductID    string          `json:"product_id"`
	QtyBag       int64           `json:"qty_bag"`
	QtyKg        int64           `json:"qty_kg"`
	UnitPriceBag Money `json:"unit_price_bag"`
	LineTotal    Money `json:"line_total"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID          string             `json:"id"`
	SaleNo      string             `json:"sale_no"`
	Date        time.Time          `json:"date"`
	CustomerID  string             `json:"customer_id"`
	Status      string             `json:"status"`
	PaymentType string             `json:"payment_type"`
	TotalAmount Money    `json:"total_amount"`
	PaidAmount  Money    `json:"paid_amount"`
	DebtAmount  Money    `json:"debt_amount"`
	Note        string             `json:"note"`
	Items       []SaleItemResponse `json:"items"`
}
