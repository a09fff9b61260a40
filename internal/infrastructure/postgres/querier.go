package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
)

// Querier lo que los repositorios necesitan de la conexión: lo cumplen *pgxpool.Pool y pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// NewRepositorySet construye todos los repositorios sobre el mismo Querier (pool o tx).
func NewRepositorySet(q Querier) repository.Set {
	return repository.Set{
		Products:    NewProductRepository(q),
		Customers:   NewCustomerRepository(q),
		Productions: NewProductionRepository(q),
		Sales:       NewSaleRepository(q),
		Payments:    NewPaymentRepository(q),
		StockMoves:  NewStockMoveRepository(q),
	}
}
