package repository

import (
	"context"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// Delete falla con *domain.ReferentialIntegrityError si hay movimientos o líneas que lo referencian.
	Delete(ctx context.Context, id string) error
	// LockForUpdate bloquea las filas de los productos (SELECT ... FOR UPDATE, en orden de ID)
	// hasta el fin de la transacción. Serializa las confirmaciones que tocan el mismo producto.
	LockForUpdate(ctx context.Context, ids []string) (map[string]*entity.Product, error)
}
