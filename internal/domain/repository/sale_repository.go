package repository

import (
	"context"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
type SaleRepository interface {
	// Create inserta cabecera y líneas. Un sale_no repetido devuelve domain.ErrDuplicate.
	Create(ctx context.Context, sale *entity.Sale, items []*entity.SaleItem) error
	// LockNumbering toma el candado transaccional de numeración del año (pg_advisory_xact_lock).
	LockNumbering(ctx context.Context, year int) error
	// LastSaleNumber mayor sale_no con el prefijo dado (ver ledger.SaleNumberAfter); "" si no hay.
	LastSaleNumber(ctx context.Context, prefix string) (string, error)
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
	// UpdateDraft actualiza fecha, cliente, tipo de pago y nota. Nunca toca sale_no.
	UpdateDraft(ctx context.Context, sale *entity.Sale) error
	ReplaceItems(ctx context.Context, saleID string, items []*entity.SaleItem) error
	// UpdateLedgerFields persiste estado, total, pagado y deuda en un solo UPDATE.
	UpdateLedgerFields(ctx context.Context, sale *entity.Sale) error
	// Delete falla con *domain.ReferentialIntegrityError si la venta tiene pagos.
	Delete(ctx context.Context, id string) error
}
