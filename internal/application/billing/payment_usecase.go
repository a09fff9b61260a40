package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
	"github.com/jhoicas/deyirman-ledger/internal/application/ports"
	"github.com/jhoicas/deyirman-ledger/internal/domain"
	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/ledger"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
	"github.com/jhoicas/deyirman-ledger/pkg/logger"
)

// PaymentUseCase libro de abonos: cada pago recalcula pagado y deuda de la venta.
type PaymentUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Set
	log      *logger.Logger
	now      func() time.Time
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(txRunner ports.TxRunner, repos repository.Set, log *logger.Logger) *PaymentUseCase {
	return &PaymentUseCase{txRunner: txRunner, repos: repos, log: log.Component("payment"), now: time.Now}
}

// AddPayment registra un abono y recalcula paid = Σ pagos y debt = total − paid en la
// misma transacción, con la venta bloqueada. Un sobrepago deja deuda negativa.
func (uc *PaymentUseCase) AddPayment(ctx context.Context, saleID string, in dto.AddPaymentRequest) (*dto.PaymentResponse, error) {
	if saleID == "" || !in.Amount.IsPositive() || !isMoney(in.Amount) {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	payment := &entity.Payment{
		ID:        uuid.New().String(),
		SaleID:    saleID,
		Date:      ledger.DateOf(in.Date, now),
		Amount:    in.Amount,
		Note:      in.Note,
		CreatedAt: now,
	}
	var sale *entity.Sale
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		var err error
		sale, err = lockSale(ctx, repos.Sales, saleID)
		if err != nil {
			return err
		}
		if sale.Status == entity.SaleStatusCancelled {
			return domain.ErrInvalidState
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}
		payments, err := repos.Payments.ListBySale(ctx, saleID)
		if err != nil {
			return err
		}
		sale.PaidAmount = ledger.PaidTotal(payments)
		sale.DebtAmount = ledger.Debt(sale.TotalAmount, sale.PaidAmount)
		sale.UpdatedAt = now
		return repos.Sales.UpdateLedgerFields(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	if sale.IsConfirmed() && sale.DebtAmount.IsNegative() {
		uc.log.Warn().Str("sale_id", saleID).Str("sale_no", sale.SaleNo).
			Str("debt", sale.DebtAmount.StringFixed(ledger.MoneyPlaces)).Msg("sobrepago registrado")
	}
	uc.log.Info().Str("sale_id", saleID).Str("amount", payment.Amount.StringFixed(ledger.MoneyPlaces)).Msg("pago registrado")
	return toPaymentResponse(payment, sale), nil
}

// ListBySale lista los abonos de una venta.
func (uc *PaymentUseCase) ListBySale(ctx context.Context, saleID string) ([]*dto.PaymentResponse, error) {
	sale, err := uc.repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	payments, err := uc.repos.Payments.ListBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p, sale))
	}
	return out, nil
}

func toPaymentResponse(p *entity.Payment, s *entity.Sale) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:          p.ID,
		SaleID:      p.SaleID,
		Date:        p.Date,
		Amount:      dto.NewMoney(p.Amount),
		Note:        p.Note,
		TotalAmount: dto.NewMoney(s.TotalAmount),
		PaidAmount:  dto.NewMoney(s.PaidAmount),
		DebtAmount:  dto.NewMoney(s.DebtAmount),
	}
}
