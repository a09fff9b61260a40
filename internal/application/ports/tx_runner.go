package ports

import (
	"context"

	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback completo; si no, Commit.
// Las implementaciones deben usar READ COMMITTED: cada consulta posterior a un
// SELECT ... FOR UPDATE ve lo confirmado por la transacción que tenía el bloqueo.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos repository.Set) error) error
}
