package inventory

import (
	"context"
	"errors"
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

// productionInflowNote nota de los movimientos IN generados por una producción.
const productionInflowNote = "production inflow"

// ProductionUseCase lotes de producción: borrador editable y confirmación DRAFT → CONFIRMED.
type ProductionUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Set
	ledger   *StockLedger
	log      *logger.Logger
	now      func() time.Time
}

// NewProductionUseCase construye el caso de uso.
func NewProductionUseCase(txRunner ports.TxRunner, repos repository.Set, stockLedger *StockLedger, log *logger.Logger) *ProductionUseCase {
	return &ProductionUseCase{
		txRunner: txRunner,
		repos:    repos,
		ledger:   stockLedger,
		log:      log.Component("production"),
		now:      time.Now,
	}
}

// Create registra un lote en DRAFT. No tiene efecto en el stock hasta Confirm.
func (uc *ProductionUseCase) Create(ctx context.Context, in dto.CreateProductionRequest) (*dto.ProductionResponse, error) {
	if !entity.ValidShift(in.Shift) || in.TotalKgControl < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	production := &entity.Production{
		ID:             uuid.New().String(),
		Date:           ledger.DateOf(in.Date, now),
		Shift:          in.Shift,
		Status:         entity.ProductionStatusDraft,
		TotalKgControl: in.TotalKgControl,
		Note:           in.Note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	var items []*entity.ProductionItem
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		var err error
		items, err = buildProductionItems(ctx, repos.Products, production.ID, in.Items)
		if err != nil {
			return err
		}
		return repos.Productions.Create(ctx, production, items)
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, production, items)
}

// Update edita un lote en DRAFT. Un lote confirmado ya no se puede editar.
func (uc *ProductionUseCase) Update(ctx context.Context, id string, in dto.UpdateProductionRequest) (*dto.ProductionResponse, error) {
	var production *entity.Production
	var items []*entity.ProductionItem
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		var err error
		production, err = repos.Productions.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if production == nil {
			return domain.ErrNotFound
		}
		if production.IsConfirmed() {
			return domain.ErrInvalidState
		}
		if in.Date != nil {
			production.Date = ledger.DateOf(in.Date, production.Date)
		}
		if in.Shift != nil {
			if !entity.ValidShift(*in.Shift) {
				return domain.ErrInvalidInput
			}
			production.Shift = *in.Shift
		}
		if in.TotalKgControl != nil {
			if *in.TotalKgControl < 0 {
				return domain.ErrInvalidInput
			}
			production.TotalKgControl = *in.TotalKgControl
		}
		if in.Note != nil {
			production.Note = *in.Note
		}
		production.UpdatedAt = uc.now()
		if err := repos.Productions.Update(ctx, production); err != nil {
			return err
		}
		if in.Items != nil {
			items, err = buildProductionItems(ctx, repos.Products, production.ID, in.Items)
			if err != nil {
				return err
			}
			return repos.Productions.ReplaceItems(ctx, production.ID, items)
		}
		items, err = repos.Productions.ListItems(ctx, production.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, production, items)
}

// GetByID obtiene un lote con sus líneas.
func (uc *ProductionUseCase) GetByID(ctx context.Context, id string) (*dto.ProductionResponse, error) {
	production, err := uc.repos.Productions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if production == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.repos.Productions.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(ctx, production, items)
}

// Delete borra el lote y sus líneas. Los movimientos ya contabilizados se conservan.
func (uc *ProductionUseCase) Delete(ctx context.Context, id string) error {
	production, err := uc.repos.Productions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if production == nil {
		return domain.ErrNotFound
	}
	return uc.repos.Productions.Delete(ctx, id)
}

// Confirm pasa el lote a CONFIRMED y registra una entrada IN por línea, exactamente una vez.
// Estado y movimientos se escriben en la misma transacción: si algo falla no queda nada.
// Repetir la llamada es seguro: si ya existen movimientos PROD-<id> es un no-op.
func (uc *ProductionUseCase) Confirm(ctx context.Context, id string) (*dto.ConfirmationResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	out := &dto.ConfirmationResponse{DocumentID: id, Source: entity.MoveSourceProduction}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		// Bloquea la cabecera: dos confirmaciones simultáneas del mismo lote se serializan aquí
		production, err := repos.Productions.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if production == nil {
			return domain.ErrNotFound
		}
		ref := production.PostingRef()
		out.Ref = ref

		posted, err := repos.StockMoves.ExistsForRef(ctx, entity.MoveSourceProduction, ref)
		if err != nil {
			return err
		}
		if posted {
			out.AlreadyPosted = true
			if !production.IsConfirmed() {
				production.Status = entity.ProductionStatusConfirmed
				production.UpdatedAt = uc.now()
				if err := repos.Productions.Update(ctx, production); err != nil {
					return err
				}
			}
			out.Status = production.Status
			return nil
		}

		items, err := repos.Productions.ListItems(ctx, id)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrInvalidInput
		}
		// Mismo orden de bloqueo de productos que la confirmación de ventas
		if _, err := repos.Products.LockForUpdate(ctx, productionLockOrder(items)); err != nil {
			return err
		}
		if err := repos.StockMoves.MarkPosted(ctx, entity.MoveSourceProduction, ref); err != nil {
			return err
		}
		for _, it := range items {
			move := &entity.StockMove{
				Date:      production.Date,
				Type:      entity.MoveTypeIn,
				Source:    entity.MoveSourceProduction,
				ProductID: it.ProductID,
				QtyBag:    it.QtyBag,
				RefText:   ref,
				Shift:     production.Shift,
				Note:      productionInflowNote,
			}
			if err := uc.ledger.RecordMove(ctx, repos.StockMoves, move); err != nil {
				return err
			}
		}
		production.Status = entity.ProductionStatusConfirmed
		production.UpdatedAt = uc.now()
		if err := repos.Productions.Update(ctx, production); err != nil {
			return err
		}
		out.Status = production.Status
		out.MovesPosted = len(items)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePosting) {
			uc.log.Error().Err(err).Str("production_id", id).Msg("contabilización duplicada detectada")
		}
		return nil, err
	}
	if out.AlreadyPosted {
		uc.log.Debug().Str("production_id", id).Str("ref", out.Ref).Msg("producción ya contabilizada, sin cambios")
	} else {
		uc.log.Info().Str("production_id", id).Str("ref", out.Ref).Int("moves", out.MovesPosted).Msg("producción confirmada")
	}
	return out, nil
}

// buildProductionItems valida las líneas: producto existente y activo, cantidad positiva.
// Bloquea los productos en orden de ID antes de que la FK de las líneas tome sus filas.
func buildProductionItems(ctx context.Context, products repository.ProductRepository, productionID string, in []dto.ProductionItemRequest) ([]*entity.ProductionItem, error) {
	ids := make([]string, 0, len(in))
	for _, it := range in {
		if it.ProductID == "" || it.QtyBag <= 0 {
			return nil, domain.ErrInvalidInput
		}
		ids = append(ids, it.ProductID)
	}
	locked, err := products.LockForUpdate(ctx, ledger.LockOrder(ids))
	if err != nil {
		return nil, err
	}
	items := make([]*entity.ProductionItem, 0, len(in))
	for _, it := range in {
		product, ok := locked[it.ProductID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		if !product.Active {
			return nil, domain.ErrInvalidInput
		}
		items = append(items, &entity.ProductionItem{
			ID:           uuid.New().String(),
			ProductionID: productionID,
			ProductID:    it.ProductID,
			QtyBag:       it.QtyBag,
		})
	}
	return items, nil
}

func productionLockOrder(items []*entity.ProductionItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ledger.LockOrder(ids)
}

func (uc *ProductionUseCase) toResponse(ctx context.Context, p *entity.Production, items []*entity.ProductionItem) (*dto.ProductionResponse, error) {
	resp := &dto.ProductionResponse{
		ID:             p.ID,
		Date:           p.Date,
		Shift:          p.Shift,
		Status:         p.Status,
		TotalKgControl: p.TotalKgControl,
		Note:           p.Note,
		Items:          make([]dto.ProductionItemResponse, 0, len(items)),
	}
	for _, it := range items {
		product, err := uc.repos.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		kg := product.KgFor(it.QtyBag)
		resp.TotalKg += kg
		resp.Items = append(resp.Items, dto.ProductionItemResponse{ProductID: it.ProductID, QtyBag: it.QtyBag, QtyKg: kg})
	}
	return resp, nil
}
