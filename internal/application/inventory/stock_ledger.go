package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
	"github.com/jhoicas/deyirman-ledger/internal/domain"
	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
	"github.com/jhoicas/deyirman-ledger/pkg/logger"
)

// StockLedger es el libro de movimientos de stock (solo inserción).
// El stock de un producto nunca se guarda: siempre se recalcula como Σ IN − Σ OUT.
type StockLedger struct {
	repos repository.Set
	log   *logger.Logger
	now   func() time.Time
}

// NewStockLedger construye el libro. repos debe estar atado al pool (lecturas fuera de tx).
func NewStockLedger(repos repository.Set, log *logger.Logger) *StockLedger {
	return &StockLedger{repos: repos, log: log.Component("stock_ledger"), now: time.Now}
}

// CurrentStock devuelve el stock en bolsas del producto.
// Un valor negativo es una anomalía (datos cargados fuera del motor) y se reporta en el log.
func (l *StockLedger) CurrentStock(ctx context.Context, productID string) (int64, error) {
	if productID == "" {
		return 0, domain.ErrInvalidInput
	}
	product, err := l.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	bags, err := l.repos.StockMoves.Balance(ctx, productID)
	if err != nil {
		return 0, err
	}
	if bags < 0 {
		l.log.Warn().Str("product_id", productID).Int64("bags", bags).Msg("stock negativo detectado")
	}
	return bags, nil
}

// StockLevel stock en bolsas y kilos (kilos con el peso de bolsa actual).
func (l *StockLedger) StockLevel(ctx context.Context, productID string) (*dto.StockLevelResponse, error) {
	bags, err := l.CurrentStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	product, err := l.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.StockLevelResponse{ProductID: productID, Bags: bags, Kg: product.KgFor(bags)}, nil
}

// MoveExistsForRef primitiva de idempotencia fuera de transacción.
func (l *StockLedger) MoveExistsForRef(ctx context.Context, source, ref string) (bool, error) {
	return l.repos.StockMoves.ExistsForRef(ctx, source, ref)
}

// ListMoves lista los movimientos de un producto en un rango de fechas.
func (l *StockLedger) ListMoves(ctx context.Context, productID string, from, to *time.Time, limit, offset int) (*dto.StockMoveListResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	product, err := l.repos.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	moves, err := l.repos.StockMoves.ListByProduct(ctx, productID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMoveResponse, 0, len(moves))
	for _, m := range moves {
		items = append(items, toStockMoveResponse(m, product))
	}
	return &dto.StockMoveListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}}, nil
}

// ListByRef movimientos generados por un documento (PRODUCTION + PROD-<id>, SALE + sale_no).
func (l *StockLedger) ListByRef(ctx context.Context, source, ref string) ([]dto.StockMoveResponse, error) {
	if ref == "" || (source != entity.MoveSourceProduction && source != entity.MoveSourceSale) {
		return nil, domain.ErrInvalidInput
	}
	moves, err := l.repos.StockMoves.ListByRef(ctx, source, ref)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMoveResponse, 0, len(moves))
	for _, m := range moves {
		product, err := l.repos.Products.GetByID(ctx, m.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, toStockMoveResponse(m, product))
	}
	return out, nil
}

// RecordMove agrega un asiento usando el repositorio del caller (misma transacción).
// Implementa billing.StockLedger para integrar ventas con inventario.
func (l *StockLedger) RecordMove(ctx context.Context, moves repository.StockMoveRepository, move *entity.StockMove) error {
	if move.ProductID == "" || move.QtyBag <= 0 || move.RefText == "" {
		return domain.ErrInvalidInput
	}
	if move.Type != entity.MoveTypeIn && move.Type != entity.MoveTypeOut {
		return domain.ErrInvalidInput
	}
	if move.Source != entity.MoveSourceProduction && move.Source != entity.MoveSourceSale {
		return domain.ErrInvalidInput
	}
	if move.ID == "" {
		move.ID = uuid.New().String()
	}
	move.CreatedAt = l.now()
	return moves.Create(ctx, move)
}

// BalancesInTx stock de varios productos leído dentro de la transacción del caller.
// El caller debe haber bloqueado antes las filas de los productos.
func (l *StockLedger) BalancesInTx(ctx context.Context, moves repository.StockMoveRepository, productIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(productIDs))
	for _, id := range productIDs {
		bags, err := moves.Balance(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = bags
	}
	return out, nil
}

func toStockMoveResponse(m *entity.StockMove, product *entity.Product) dto.StockMoveResponse {
	return dto.StockMoveResponse{
		ID:        m.ID,
		Date:      m.Date,
		Type:      m.Type,
		Source:    m.Source,
		ProductID: m.ProductID,
		QtyBag:    m.QtyBag,
		QtyKg:     product.KgFor(m.QtyBag),
		RefText:   m.RefText,
		Shift:     m.Shift,
		Note:      m.Note,
	}
}
