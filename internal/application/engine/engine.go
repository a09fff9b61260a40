// Package engine expone el motor de consistencia del libro: las cinco operaciones
// que mutan o leen stock y saldos, más los casos de uso de registros que las rodean.
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/deyirman-ledger/internal/application/billing"
	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
	"github.com/jhoicas/deyirman-ledger/internal/application/inventory"
	"github.com/jhoicas/deyirman-ledger/internal/application/ports"
	"github.com/jhoicas/deyirman-ledger/internal/application/usecase"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
	"github.com/jhoicas/deyirman-ledger/pkg/logger"
)

// Options parámetros del motor.
type Options struct {
	SequenceMaxRetries int
}

// Engine agrupa los casos de uso sobre un mismo almacenamiento.
type Engine struct {
	Stock       *inventory.StockLedger
	Productions *inventory.ProductionUseCase
	Sales       *billing.SaleUseCase
	Payments    *billing.PaymentUseCase
	Customers   *billing.CustomerUseCase
	Products    *usecase.ProductUseCase
}

// New arma el motor. repos son los repositorios atados al pool; txRunner entrega
// repositorios atados a cada transacción.
func New(txRunner ports.TxRunner, repos repository.Set, opts Options, log *logger.Logger) *Engine {
	stock := inventory.NewStockLedger(repos, log)
	numberer := billing.NewSaleNumberer(repos.Sales)
	return &Engine{
		Stock:       stock,
		Productions: inventory.NewProductionUseCase(txRunner, repos, stock, log),
		Sales:       billing.NewSaleUseCase(txRunner, repos, stock, numberer, opts.SequenceMaxRetries, log),
		Payments:    billing.NewPaymentUseCase(txRunner, repos, log),
		Customers:   billing.NewCustomerUseCase(repos.Customers),
		Products:    usecase.NewProductUseCase(repos.Products, repos.StockMoves),
	}
}

// ConfirmProduction confirma un lote de producción (idempotente).
func (e *Engine) ConfirmProduction(ctx context.Context, productionID string) (*dto.ConfirmationResponse, error) {
	return e.Productions.Confirm(ctx, productionID)
}

// ConfirmSale confirma una venta (idempotente). Puede devolver *domain.InsufficientStockError.
func (e *Engine) ConfirmSale(ctx context.Context, saleID string) (*dto.ConfirmationResponse, error) {
	return e.Sales.Confirm(ctx, saleID)
}

// AddPayment registra un abono contra una venta.
func (e *Engine) AddPayment(ctx context.Context, saleID string, date time.Time, amount decimal.Decimal, note string) (*dto.PaymentResponse, error) {
	in := dto.AddPaymentRequest{Amount: amount, Note: note}
	if !date.IsZero() {
		in.Date = &date
	}
	return e.Payments.AddPayment(ctx, saleID, in)
}

// CurrentStock stock en bolsas de un producto.
func (e *Engine) CurrentStock(ctx context.Context, productID string) (int64, error) {
	return e.Stock.CurrentStock(ctx, productID)
}

// NextSaleNumber vista previa del próximo número de venta del año.
func (e *Engine) NextSaleNumber(ctx context.Context) (string, error) {
	resp, err := e.Sales.NextNumber(ctx)
	if err != nil {
		return "", err
	}
	return resp.SaleNo, nil
}
