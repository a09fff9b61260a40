package repository

import (
	"context"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	// Delete falla con *domain.ReferentialIntegrityError si el cliente tiene ventas.
	Delete(ctx context.Context, id string) error
}
