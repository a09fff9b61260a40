package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
	"github.com/jhoicas/deyirman-ledger/internal/application/ports"
	"github.com/jhoicas/deyirman-ledger/internal/domain"
	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/ledger"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
	"github.com/jhoicas/deyirman-ledger/pkg/logger"
)

// saleOutflowNote nota de los movimientos OUT generados por una venta.
const saleOutflowNote = "sale outflow"

// DefaultSequenceRetries reintentos de numeración si no se configura otro valor.
const DefaultSequenceRetries = 5

// SaleUseCase ventas: borrador con número asignado, edición, anulación y confirmación.
type SaleUseCase struct {
	txRunner   ports.TxRunner
	repos      repository.Set
	ledger     StockLedger
	numberer   *SaleNumberer
	maxRetries int
	log        *logger.Logger
	now        func() time.Time
}

// NewSaleUseCase construye el caso de uso. maxRetries <= 0 usa DefaultSequenceRetries.
func NewSaleUseCase(txRunner ports.TxRunner, repos repository.Set, stockLedger StockLedger, numberer *SaleNumberer, maxRetries int, log *logger.Logger) *SaleUseCase {
	if maxRetries <= 0 {
		maxRetries = DefaultSequenceRetries
	}
	return &SaleUseCase{
		txRunner:   txRunner,
		repos:      repos,
		ledger:     stockLedger,
		numberer:   numberer,
		maxRetries: maxRetries,
		log:        log.Component("sale"),
		now:        time.Now,
	}
}

// Create registra una venta en DRAFT y le asigna número en la misma transacción.
// Si otra transacción tomó el mismo número (UNIQUE sale_no) se reintenta completa;
// agotados los reintentos devuelve domain.ErrSequenceContention.
func (uc *SaleUseCase) Create(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.CustomerID == "" {
		return nil, domain.ErrInvalidInput
	}
	paymentType := in.PaymentType
	if paymentType == "" {
		paymentType = entity.PaymentTypeCredit
	}
	if !entity.ValidPaymentType(paymentType) {
		return nil, domain.ErrInvalidInput
	}

	var sale *entity.Sale
	var items []*entity.SaleItem
	for attempt := 1; attempt <= uc.maxRetries; attempt++ {
		now := uc.now()
		sale = &entity.Sale{
			ID:          uuid.New().String(),
			Date:        ledger.DateOf(in.Date, now),
			CustomerID:  in.CustomerID,
			Status:      entity.SaleStatusDraft,
			PaymentType: paymentType,
			TotalAmount: decimal.Zero,
			PaidAmount:  decimal.Zero,
			DebtAmount:  decimal.Zero,
			Note:        in.Note,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
			if err := ensureCustomer(ctx, repos.Customers, sale.CustomerID); err != nil {
				return err
			}
			var err error
			items, err = buildSaleItems(ctx, repos.Products, sale.ID, in.Items)
			if err != nil {
				return err
			}
			sale.SaleNo, err = uc.numberer.AllocateInTx(ctx, repos.Sales, now.Year())
			if err != nil {
				return err
			}
			return repos.Sales.Create(ctx, sale, items)
		})
		if err == nil {
			uc.log.Info().Str("sale_id", sale.ID).Str("sale_no", sale.SaleNo).Msg("venta creada")
			return uc.toResponse(ctx, sale, items)
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		uc.log.Debug().Int("attempt", attempt).Str("sale_no", sale.SaleNo).Msg("número de venta tomado, reintentando")
	}
	uc.log.Warn().Int("retries", uc.maxRetries).Msg("reintentos de numeración agotados")
	return nil, domain.ErrSequenceContention
}

// UpdateDraft edita una venta en DRAFT. El número asignado no cambia nunca.
func (uc *SaleUseCase) UpdateDraft(ctx context.Context, id string, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	var sale *entity.Sale
	var items []*entity.SaleItem
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		var err error
		sale, err = lockSale(ctx, repos.Sales, id)
		if err != nil {
			return err
		}
		if sale.Status != entity.SaleStatusDraft {
			return domain.ErrInvalidState
		}
		if in.Date != nil {
			sale.Date = ledger.DateOf(in.Date, sale.Date)
		}
		if in.CustomerID != nil {
			if err := ensureCustomer(ctx, repos.Customers, *in.CustomerID); err != nil {
				return err
			}
			sale.CustomerID = *in.CustomerID
		}
		if in.PaymentType != nil {
			if !entity.ValidPaymentType(*in.PaymentType) {
				return domain.ErrInvalidInput
			}
			sale.PaymentType = *in.PaymentType
		}
		if in.Note != nil {
			sale.Note = *in.Note
		}
		sale.UpdatedAt = uc.now()
		if err := repos.Sales.UpdateDraft(ctx, sale); err != nil {
			return err
		}
		if in.Items != nil {
			items, err = buildSaleItems(ctx, repos.Products, sale.ID, in.Items)
			if err != nil {
				return err
			}
			return repos.Sales.ReplaceItems(ctx, sale.ID, items)
		}
		items, err = repos.Sales.ListItems(ctx, sale.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, sale, items)
}

// Cancel anula una venta en DRAFT. Una venta confirmada no se anula (no hay reversa de stock).
// Anular una venta ya anulada no cambia nada.
func (uc *SaleUseCase) Cancel(ctx context.Context, id string) (*dto.SaleResponse, error) {
	var sale *entity.Sale
	var items []*entity.SaleItem
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		var err error
		sale, err = lockSale(ctx, repos.Sales, id)
		if err != nil {
			return err
		}
		switch sale.Status {
		case entity.SaleStatusConfirmed:
			return domain.ErrInvalidState
		case entity.SaleStatusDraft:
			sale.Status = entity.SaleStatusCancelled
			sale.UpdatedAt = uc.now()
			if err := repos.Sales.UpdateLedgerFields(ctx, sale); err != nil {
				return err
			}
		}
		items, err = repos.Sales.ListItems(ctx, sale.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_id", id).Str("sale_no", sale.SaleNo).Msg("venta anulada")
	return uc.toResponse(ctx, sale, items)
}

// GetByID obtiene una venta con sus líneas.
func (uc *SaleUseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.repos.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.repos.Sales.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, sale, items)
}

// Delete borra una venta no confirmada y sus líneas. Con pagos falla con ErrReferenced.
func (uc *SaleUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		sale, err := lockSale(ctx, repos.Sales, id)
		if err != nil {
			return err
		}
		if sale.IsConfirmed() {
			return domain.ErrInvalidState
		}
		return repos.Sales.Delete(ctx, id)
	})
}

// NextNumber vista previa del próximo número de venta.
func (uc *SaleUseCase) NextNumber(ctx context.Context) (*dto.NextSaleNumberResponse, error) {
	no, err := uc.numberer.Preview(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.NextSaleNumberResponse{SaleNo: no}, nil
}

// Confirm registra una salida OUT por línea, fija total y deuda y pasa la venta a CONFIRMED,
// todo en una transacción. El stock se verifica con las filas de producto bloqueadas: si
// algún producto no alcanza se devuelve *domain.InsufficientStockError sin escribir nada.
// Repetir la llamada es seguro: si ya existen movimientos SALE con el número es un no-op.
func (uc *SaleUseCase) Confirm(ctx context.Context, id string) (*dto.ConfirmationResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	out := &dto.ConfirmationResponse{DocumentID: id, Source: entity.MoveSourceSale}
	var sale *entity.Sale
	var items []*entity.SaleItem
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		var err error
		sale, err = lockSale(ctx, repos.Sales, id)
		if err != nil {
			return err
		}
		if sale.Status == entity.SaleStatusCancelled {
			return domain.ErrInvalidState
		}
		if sale.SaleNo == "" {
			return domain.ErrInvalidState
		}
		ref := sale.SaleNo
		out.Ref = ref

		items, err = repos.Sales.ListItems(ctx, sale.ID)
		if err != nil {
			return err
		}
		posted, err := repos.StockMoves.ExistsForRef(ctx, entity.MoveSourceSale, ref)
		if err != nil {
			return err
		}
		if posted {
			out.AlreadyPosted = true
			if !sale.IsConfirmed() {
				if err := uc.settle(ctx, repos, sale, items); err != nil {
					return err
				}
			}
			out.Status = sale.Status
			return nil
		}
		if len(items) == 0 {
			return domain.ErrInvalidInput
		}

		requested, productIDs := ledger.RequestedBags(items)
		// Orden fijo de bloqueo: dos ventas con productos en común no se bloquean mutuamente
		products, err := repos.Products.LockForUpdate(ctx, productIDs)
		if err != nil {
			return err
		}
		balances, err := uc.ledger.BalancesInTx(ctx, repos.StockMoves, productIDs)
		if err != nil {
			return err
		}
		for _, pid := range productIDs {
			product, ok := products[pid]
			if !ok {
				return domain.ErrNotFound
			}
			if balances[pid] < requested[pid] {
				return &domain.InsufficientStockError{
					ProductID:   pid,
					ProductName: product.Name,
					Available:   balances[pid],
					Requested:   requested[pid],
				}
			}
		}

		if err := repos.StockMoves.MarkPosted(ctx, entity.MoveSourceSale, ref); err != nil {
			return err
		}
		for _, it := range items {
			move := &entity.StockMove{
				Date:      sale.Date,
				Type:      entity.MoveTypeOut,
				Source:    entity.MoveSourceSale,
				ProductID: it.ProductID,
				QtyBag:    it.QtyBag,
				RefText:   ref,
				Note:      saleOutflowNote,
			}
			if err := uc.ledger.RecordMove(ctx, repos.StockMoves, move); err != nil {
				return err
			}
		}
		if err := uc.settle(ctx, repos, sale, items); err != nil {
			return err
		}
		out.Status = sale.Status
		out.MovesPosted = len(items)
		return nil
	})
	if err != nil {
		var insufficient *domain.InsufficientStockError
		switch {
		case errors.As(err, &insufficient):
			uc.log.Info().Str("sale_id", id).Str("product_id", insufficient.ProductID).
				Int64("available", insufficient.Available).Int64("requested", insufficient.Requested).
				Msg("venta rechazada por stock insuficiente")
		case errors.Is(err, domain.ErrDuplicatePosting):
			uc.log.Error().Err(err).Str("sale_id", id).Msg("contabilización duplicada detectada")
		}
		return nil, err
	}
	if out.AlreadyPosted {
		uc.log.Debug().Str("sale_id", id).Str("ref", out.Ref).Msg("venta ya contabilizada, sin cambios")
	} else {
		uc.log.Info().Str("sale_id", id).Str("ref", out.Ref).Int("moves", out.MovesPosted).
			Str("total", sale.TotalAmount.StringFixed(ledger.MoneyPlaces)).Msg("venta confirmada")
	}
	resp, err := uc.toResponse(ctx, sale, items)
	if err != nil {
		return nil, err
	}
	out.Sale = resp
	return out, nil
}

// settle fija total, pagado y deuda a partir de las líneas y los pagos, y marca CONFIRMED.
func (uc *SaleUseCase) settle(ctx context.Context, repos repository.Set, sale *entity.Sale, items []*entity.SaleItem) error {
	payments, err := repos.Payments.ListBySale(ctx, sale.ID)
	if err != nil {
		return err
	}
	sale.TotalAmount = ledger.SaleTotal(items)
	sale.PaidAmount = ledger.PaidTotal(payments)
	sale.DebtAmount = ledger.Debt(sale.TotalAmount, sale.PaidAmount)
	sale.Status = entity.SaleStatusConfirmed
	sale.UpdatedAt = uc.now()
	return repos.Sales.UpdateLedgerFields(ctx, sale)
}

func lockSale(ctx context.Context, sales repository.SaleRepository, id string) (*entity.Sale, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := sales.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

func ensureCustomer(ctx context.Context, customers repository.CustomerRepository, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	customer, err := customers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrNotFound
	}
	return nil
}

// buildSaleItems valida las líneas: producto existente y activo, bolsas > 0, precio >= 0 con 2 decimales.
func buildSaleItems(ctx context.Context, products repository.ProductRepository, saleID string, in []dto.SaleItemRequest) ([]*entity.SaleItem, error) {
	ids := make([]string, 0, len(in))
	for _, it := range in {
		if it.ProductID == "" || it.QtyBag <= 0 || it.UnitPriceBag.IsNegative() || !isMoney(it.UnitPriceBag) {
			return nil, domain.ErrInvalidInput
		}
		ids = append(ids, it.ProductID)
	}
	// Los productos se bloquean antes de insertar líneas: la FK toma sus filas y el orden
	// debe ser el mismo que en Confirm
	locked, err := products.LockForUpdate(ctx, ledger.LockOrder(ids))
	if err != nil {
		return nil, err
	}
	items := make([]*entity.SaleItem, 0, len(in))
	for _, it := range in {
		product, ok := locked[it.ProductID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		if !product.Active {
			return nil, domain.ErrInvalidInput
		}
		items = append(items, &entity.SaleItem{
			ID:           uuid.New().String(),
			SaleID:       saleID,
			ProductID:    it.ProductID,
			QtyBag:       it.QtyBag,
			UnitPriceBag: it.UnitPriceBag,
		})
	}
	return items, nil
}

// isMoney indica si d cabe en NUMERIC(12,2) sin redondeo.
func isMoney(d decimal.Decimal) bool {
	return d.Equal(d.Round(ledger.MoneyPlaces)) && d.Abs().LessThan(maxMoney)
}

var maxMoney = decimal.New(1, 10) // 10^10: 12 dígitos con 2 decimales

func (uc *SaleUseCase) toResponse(ctx context.Context, s *entity.Sale, items []*entity.SaleItem) (*dto.SaleResponse, error) {
	resp := &dto.SaleResponse{
		ID:          s.ID,
		SaleNo:      s.SaleNo,
		Date:        s.Date,
		CustomerID:  s.CustomerID,
		Status:      s.Status,
		PaymentType: s.PaymentType,
		TotalAmount: dto.NewMoney(s.TotalAmount),
		PaidAmount:  dto.NewMoney(s.PaidAmount),
		DebtAmount:  dto.NewMoney(s.DebtAmount),
		Note:        s.Note,
		Items:       make([]dto.SaleItemResponse, 0, len(items)),
	}
	for _, it := range items {
		product, err := uc.repos.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ProductID:    it.ProductID,
			QtyBag:       it.QtyBag,
			QtyKg:        product.KgFor(it.QtyBag),
			UnitPriceBag: dto.NewMoney(it.UnitPriceBag),
			LineTotal:    dto.NewMoney(it.LineTotal().Round(ledger.MoneyPlaces)),
		})
	}
	return resp, nil
}
