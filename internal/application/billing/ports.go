package billing

import (
	"context"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
)

// StockLedger interfaz para integrar ventas con el libro de stock.
// Ambos métodos usan el repositorio del caller (misma transacción): si retorna
// error, el caller debe hacer rollback.
type StockLedger interface {
	RecordMove(ctx context.Context, moves repository.StockMoveRepository, move *entity.StockMove) error
	BalancesInTx(ctx context.Context, moves repository.StockMoveRepository, productIDs []string) (map[string]int64, error)
}
