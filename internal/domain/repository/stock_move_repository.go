package repository

import (
	"context"
	"time"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
)

// StockMoveRepository define el puerto del libro de stock. Solo inserta y lee:
// no existe Update ni Delete de movimientos.
type StockMoveRepository interface {
	Create(ctx context.Context, move *entity.StockMove) error
	// ExistsForRef primitiva de idempotencia: ¿ya hay movimientos de este origen con esta referencia?
	ExistsForRef(ctx context.Context, source, ref string) (bool, error)
	// MarkPosted registra la contabilización del documento; una segunda marca devuelve domain.ErrDuplicatePosting.
	MarkPosted(ctx context.Context, source, ref string) error
	// Balance Σ IN − Σ OUT del producto sobre todos los movimientos.
	Balance(ctx context.Context, productID string) (int64, error)
	ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMove, error)
	ListByRef(ctx context.Context, source, ref string) ([]*entity.StockMove, error)
}
