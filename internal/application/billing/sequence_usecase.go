package billing

import (
	"context"
	"time"

	"github.com/jhoicas/deyirman-ledger/internal/domain/ledger"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
)

// SaleNumberer genera los números de venta S-<año>-<000001>.
type SaleNumberer struct {
	sales repository.SaleRepository
	now   func() time.Time
}

// NewSaleNumberer construye el generador. sales debe estar atado al pool (vista previa).
func NewSaleNumberer(sales repository.SaleRepository) *SaleNumberer {
	return &SaleNumberer{sales: sales, now: time.Now}
}

// Preview próximo número del año en curso. Es solo informativo: otra venta puede
// tomarlo antes; la asignación real ocurre en AllocateInTx.
func (n *SaleNumberer) Preview(ctx context.Context) (string, error) {
	year := n.now().Year()
	last, err := n.sales.LastSaleNumber(ctx, ledger.SaleNumberPrefix(year))
	if err != nil {
		return "", err
	}
	return ledger.NextSaleNumber(year, last)
}

// AllocateInTx asigna el siguiente número dentro de la transacción del caller.
// El candado de numeración se libera con el commit/rollback, después del INSERT.
func (n *SaleNumberer) AllocateInTx(ctx context.Context, sales repository.SaleRepository, year int) (string, error) {
	if err := sales.LockNumbering(ctx, year); err != nil {
		return "", err
	}
	last, err := sales.LastSaleNumber(ctx, ledger.SaleNumberPrefix(year))
	if err != nil {
		return "", err
	}
	return ledger.NextSaleNumber(year, last)
}
