package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddPaymentRequest body para POST /api/sales/:id/payments.
type AddPaymentRequest struct {
	Date   *time.Time      `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// PaymentResponse abono registrado y saldos de la venta después del abono.
type PaymentResponse struct {
	ID          string          `json:"id"`
	SaleID      string          `json:"sale_id"`
	Date        time.Time       `json:"date"`
	Amount      Money `json:"amount"`
	Note        string          `json:"note"`
	TotalAmount Money `json:"total_amount"`
	PaidAmount  Money `json:"paid_amount"`
	DebtAmount  Money `json:"debt_amount"`
}
