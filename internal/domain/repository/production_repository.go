package repository

import (
	"context"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
)

// ProductionRepository define el puerto de persistencia para Production y sus líneas.
type ProductionRepository interface {
	Create(ctx context.Context, production *entity.Production, items []*entity.ProductionItem) error
	GetByID(ctx context.Context, id string) (*entity.Production, error)
	// GetForUpdate bloquea la cabecera hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Production, error)
	ListItems(ctx context.Context, productionID string) ([]*entity.ProductionItem, error)
	// Update actualiza fecha, turno, kg de control, nota y estado.
	Update(ctx context.Context, production *entity.Production) error
	ReplaceItems(ctx context.Context, productionID string, items []*entity.ProductionItem) error
	// Delete borra la cabecera y sus líneas (cascada).
	Delete(ctx context.Context, id string) error
}
