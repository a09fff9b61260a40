package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/deyirman-ledger/internal/domain"
	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
	"github.com/jhoicas/deyirman-ledger/internal/infrastructure/memory"
)

func seedProduct(t *testing.T, repos repository.Set, id, name string) {
	t.Helper()
	require.NoError(t, repos.Products.Create(context.Background(), &entity.Product{ID: id, Name: name, BagKg: 50, Active: true}))
}

func inMove(productID, ref string, qty int64) *entity.StockMove {
	return &entity.StockMove{
		ID: ref + productID, Date: time.Now(), Type: entity.MoveTypeIn, Source: entity.MoveSourceProduction,
		ProductID: productID, QtyBag: qty, RefText: ref,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

func TestTxRunner_ErrorRevierteTodo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	seedProduct(t, repos, "p1", "Əla")

	boom := errors.New("fallo a mitad de la transacción")
	err := store.TxRunner().Run(ctx, func(ctx context.Context, tx repository.Set) error {
		require.NoError(t, tx.StockMoves.MarkPosted(ctx, entity.MoveSourceProduction, "PROD-1"))
		require.NoError(t, tx.StockMoves.Create(ctx, inMove("p1", "PROD-1", 10)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	bags, err := repos.StockMoves.Balance(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bags, "el movimiento debe desaparecer con el rollback")

	// La marca de contabilización también se revirtió: se puede volver a marcar
	assert.NoError(t, repos.StockMoves.MarkPosted(ctx, entity.MoveSourceProduction, "PROD-1"))
}

func TestTxRunner_CommitPersiste(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	seedProduct(t, repos, "p1", "Əla")

	err := store.TxRunner().Run(ctx, func(ctx context.Context, tx repository.Set) error {
		return tx.StockMoves.Create(ctx, inMove("p1", "PROD-1", 10))
	})
	require.NoError(t, err)

	bags, err := repos.StockMoves.Balance(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), bags)
}

func TestTxRunner_LectorExternoNoVeEscriturasSinConfirmar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	seedProduct(t, repos, "p1", "Əla")

	for _, tc := range []struct {
		name      string
		fnErr     error
		wantAfter int64
	}{
		{"rollback", errors.New("abortada"), 0},
		{"commit", nil, 10},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var outside, inside int64
			err := store.TxRunner().Run(ctx, func(ctx context.Context, tx repository.Set) error {
				require.NoError(t, tx.StockMoves.Create(ctx, inMove("p1", "PROD-"+tc.name, 10)))
				var err error
				inside, err = tx.StockMoves.Balance(ctx, "p1")
				require.NoError(t, err)
				outside, err = repos.StockMoves.Balance(ctx, "p1")
				require.NoError(t, err)
				return tc.fnErr
			})
			if tc.fnErr != nil {
				require.ErrorIs(t, err, tc.fnErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, int64(10), inside, "la transacción ve sus propias escrituras")
			assert.Equal(t, int64(0), outside, "fuera de la transacción solo se ve lo confirmado")

			after, err := repos.StockMoves.Balance(ctx, "p1")
			require.NoError(t, err)
			assert.Equal(t, tc.wantAfter, after)
		})
	}
}

func TestTxRunner_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := memory.NewStore().TxRunner().Run(ctx, func(context.Context, repository.Set) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reglas del esquema
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkPosted_SegundaMarca_ErrDuplicatePosting(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	require.NoError(t, repos.StockMoves.MarkPosted(ctx, entity.MoveSourceSale, "S-2025-000001"))
	err := repos.StockMoves.MarkPosted(ctx, entity.MoveSourceSale, "S-2025-000001")
	assert.ErrorIs(t, err, domain.ErrDuplicatePosting)

	// Mismo texto con otro origen es otra contabilización
	assert.NoError(t, repos.StockMoves.MarkPosted(ctx, entity.MoveSourceProduction, "S-2025-000001"))
}

func TestProduct_NombreUnico(t *testing.T) {
	repos := memory.NewStore().Repos()
	seedProduct(t, repos, "p1", "Un")
	err := repos.Products.Create(context.Background(), &entity.Product{ID: "p2", Name: "Un", BagKg: 25, Active: true})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProduct_BorrarConMovimientos_ErrReferenced(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	seedProduct(t, repos, "p1", "Kəpək")
	require.NoError(t, repos.StockMoves.Create(ctx, inMove("p1", "PROD-1", 3)))

	err := repos.Products.Delete(ctx, "p1")
	require.ErrorIs(t, err, domain.ErrReferenced)
	var ref *domain.ReferentialIntegrityError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "stock_moves", ref.Relation)
}

func TestCustomer_BorrarConVentas_ErrReferenced(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Bakı Çörək"}))
	require.NoError(t, repos.Sales.Create(ctx, &entity.Sale{ID: "s1", SaleNo: "S-2025-000001", CustomerID: "c1", Status: entity.SaleStatusDraft}, nil))

	err := repos.Customers.Delete(ctx, "c1")
	var ref *domain.ReferentialIntegrityError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "sales", ref.Relation)
}

func TestSale_NumeroUnico(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Cliente"}))
	require.NoError(t, repos.Sales.Create(ctx, &entity.Sale{ID: "s1", SaleNo: "S-2025-000001", CustomerID: "c1"}, nil))

	err := repos.Sales.Create(ctx, &entity.Sale{ID: "s2", SaleNo: "S-2025-000001", CustomerID: "c1"}, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	last, err := repos.Sales.LastSaleNumber(ctx, "S-2025-")
	require.NoError(t, err)
	assert.Equal(t, "S-2025-000001", last)

	last, err = repos.Sales.LastSaleNumber(ctx, "S-2026-")
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestSale_UltimoNumeroPasadoSeisDigitos(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Cliente"}))
	require.NoError(t, repos.Sales.Create(ctx, &entity.Sale{ID: "s1", SaleNo: "S-2025-999999", CustomerID: "c1"}, nil))
	require.NoError(t, repos.Sales.Create(ctx, &entity.Sale{ID: "s2", SaleNo: "S-2025-1000000", CustomerID: "c1"}, nil))

	last, err := repos.Sales.LastSaleNumber(ctx, "S-2025-")
	require.NoError(t, err)
	assert.Equal(t, "S-2025-1000000", last)
}

func TestSale_LineaConProductoInexistente_ErrNotFound(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	require.NoError(t, repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Cliente"}))
	err := repos.Sales.Create(ctx, &entity.Sale{ID: "s1", SaleNo: "S-2025-000001", CustomerID: "c1"},
		[]*entity.SaleItem{{ID: "i1", ProductID: "no-existe", QtyBag: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockMoves_ListByProductFiltraYPagina(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	seedProduct(t, repos, "p1", "Əla")
	days := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range days {
		m := inMove("p1", "PROD-"+string(rune('a'+i)), int64(i+1))
		m.Date = d
		require.NoError(t, repos.StockMoves.Create(ctx, m))
	}

	from, to := days[1], days[2]
	list, err := repos.StockMoves.ListByProduct(ctx, "p1", &from, &to, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, days[2], list[0].Date, "más reciente primero")

	list, err = repos.StockMoves.ListByProduct(ctx, "p1", nil, nil, 1, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, days[1], list[0].Date)
}
