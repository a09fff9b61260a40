package inventory_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
	"github.com/jhoicas/deyirman-ledger/internal/application/engine"
	"github.com/jhoicas/deyirman-ledger/internal/application/inventory"
	"github.com/jhoicas/deyirman-ledger/internal/domain"
	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/repository"
	"github.com/jhoicas/deyirman-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/deyirman-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newEngine(t *testing.T) (*engine.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return engine.New(store.TxRunner(), store.Repos(), engine.Options{}, logger.Nop()), store
}

func createProduct(t *testing.T, e *engine.Engine, name string, bagKg int64) string {
	t.Helper()
	p, err := e.Products.Create(context.Background(), dto.CreateProductRequest{Name: name, BagKg: bagKg})
	require.NoError(t, err)
	return p.ID
}

func createProduction(t *testing.T, e *engine.Engine, items ...dto.ProductionItemRequest) string {
	t.Helper()
	p, err := e.Productions.Create(context.Background(), dto.CreateProductionRequest{
		Shift: entity.ShiftDay,
		Items: items,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ProductionStatusDraft, p.Status)
	return p.ID
}

// failingProductionUpdate envuelve el runner real y hace fallar Productions.Update
// dentro de la transacción, después de que los movimientos ya se escribieron.
type failingProductionUpdate struct {
	inner *memory.TxRunner
	err   error
}

func (r failingProductionUpdate) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Set) error) error {
	return r.inner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		repos.Productions = productionRepoUpdateFails{ProductionRepository: repos.Productions, err: r.err}
		return fn(ctx, repos)
	})
}

type productionRepoUpdateFails struct {
	repository.ProductionRepository
	err error
}

func (r productionRepoUpdateFails) Update(context.Context, *entity.Production) error {
	return r.err
}

// lockRecorder envuelve el runner real y anota, en orden, los bloqueos de productos
// y las inserciones de movimientos hechos dentro de cada transacción.
type lockRecorder struct {
	inner  *memory.TxRunner
	events *[]string
}

func (r lockRecorder) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Set) error) error {
	return r.inner.Run(ctx, func(ctx context.Context, repos repository.Set) error {
		repos.Products = recordingProducts{ProductRepository: repos.Products, events: r.events}
		repos.StockMoves = recordingMoves{StockMoveRepository: repos.StockMoves, events: r.events}
		return fn(ctx, repos)
	})
}

type recordingProducts struct {
	repository.ProductRepository
	events *[]string
}

func (r recordingProducts) LockForUpdate(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	*r.events = append(*r.events, "lock:"+strings.Join(ids, ","))
	return r.ProductRepository.LockForUpdate(ctx, ids)
}

type recordingMoves struct {
	repository.StockMoveRepository
	events *[]string
}

func (r recordingMoves) Create(ctx context.Context, m *entity.StockMove) error {
	*r.events = append(*r.events, "move:"+m.ProductID)
	return r.StockMoveRepository.Create(ctx, m)
}

// ──────────────────────────────────────────────────────────────────────────────
// ConfirmProduction
// ──────────────────────────────────────────────────────────────────────────────

func TestConfirmProduction_BloqueaProductosEnOrdenAntesDePostear(t *testing.T) {
	ctx := context.Background()
	e, store := newEngine(t)
	ids := []string{createProduct(t, e, "Əla növ", 50), createProduct(t, e, "Kəpək", 40)}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	var events []string
	uc := inventory.NewProductionUseCase(lockRecorder{inner: store.TxRunner(), events: &events}, store.Repos(), e.Stock, logger.Nop())
	created, err := uc.Create(ctx, dto.CreateProductionRequest{
		Shift: entity.ShiftNight,
		Items: []dto.ProductionItemRequest{
			{ProductID: ids[0], QtyBag: 4},
			{ProductID: ids[1], QtyBag: 6},
			{ProductID: ids[0], QtyBag: 1},
		},
	})
	require.NoError(t, err)
	sorted := ids[1] + "," + ids[0]
	require.Equal(t, []string{"lock:" + sorted}, events, "las líneas del borrador bloquean en orden de ID")

	events = nil
	_, err = uc.Confirm(ctx, created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "lock:"+sorted, events[0], "los productos se bloquean antes del primer movimiento")
	assert.Equal(t, []string{"move:" + ids[0], "move:" + ids[1], "move:" + ids[0]}, events[1:])
}

func TestConfirmProduction_DiezBolsas_UnMovimientoIN(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	productID := createProduct(t, e, "Əla növ", 50)
	productionID := createProduction(t, e, dto.ProductionItemRequest{ProductID: productID, QtyBag: 10})

	out, err := e.ConfirmProduction(ctx, productionID)
	require.NoError(t, err)
	assert.False(t, out.AlreadyPosted)
	assert.Equal(t, 1, out.MovesPosted)
	assert.Equal(t, entity.ProductionStatusConfirmed, out.Status)
	assert.Equal(t, "PROD-"+productionID, out.Ref)

	stock, err := e.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock)

	moves, err := e.Stock.ListByRef(ctx, entity.MoveSourceProduction, out.Ref)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, entity.MoveTypeIn, moves[0].Type)
	assert.Equal(t, int64(10), moves[0].QtyBag)
	assert.Equal(t, int64(500), moves[0].QtyKg)
	assert.Equal(t, entity.ShiftDay, moves[0].Shift)
	assert.Equal(t, "production inflow", moves[0].Note)

	level, err := e.Stock.StockLevel(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), level.Kg)
}

func TestConfirmProduction_DobleConfirmacion_ContabilizaUnaVez(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	productID := createProduct(t, e, "Birinci növ", 50)
	productionID := createProduction(t, e, dto.ProductionItemRequest{ProductID: productID, QtyBag: 10})

	_, err := e.ConfirmProduction(ctx, productionID)
	require.NoError(t, err)
	again, err := e.ConfirmProduction(ctx, productionID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyPosted, "la segunda confirmación es un no-op")
	assert.Equal(t, 0, again.MovesPosted)
	assert.Equal(t, entity.ProductionStatusConfirmed, again.Status)

	stock, err := e.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock)
}

func TestConfirmProduction_FalloAMitad_NoDejaNada(t *testing.T) {
	ctx := context.Background()
	e, store := newEngine(t)
	productID := createProduct(t, e, "Kəpək", 40)
	productionID := createProduction(t, e, dto.ProductionItemRequest{ProductID: productID, QtyBag: 7})

	boom := errors.New("fallo al actualizar la cabecera")
	failing := inventory.NewProductionUseCase(
		failingProductionUpdate{inner: store.TxRunner(), err: boom},
		store.Repos(), e.Stock, logger.Nop(),
	)
	_, err := failing.Confirm(ctx, productionID)
	require.ErrorIs(t, err, boom)

	stock, err := e.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock, "los movimientos se revierten con el estado")
	posted, err := e.Stock.MoveExistsForRef(ctx, entity.MoveSourceProduction, "PROD-"+productionID)
	require.NoError(t, err)
	assert.False(t, posted)
	p, err := e.Productions.GetByID(ctx, productionID)
	require.NoError(t, err)
	assert.Equal(t, entity.ProductionStatusDraft, p.Status)

	// Reintento seguro
	out, err := e.ConfirmProduction(ctx, productionID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.MovesPosted)
	stock, err = e.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stock)
}

func TestConfirmProduction_SinLineas_ErrInvalidInput(t *testing.T) {
	e, _ := newEngine(t)
	productionID := createProduction(t, e)
	_, err := e.ConfirmProduction(context.Background(), productionID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfirmProduction_Inexistente_ErrNotFound(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.ConfirmProduction(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmProduction_VariasLineasMismoProducto(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	productID := createProduct(t, e, "Əla", 50)
	productionID := createProduction(t, e,
		dto.ProductionItemRequest{ProductID: productID, QtyBag: 4},
		dto.ProductionItemRequest{ProductID: productID, QtyBag: 6},
	)
	out, err := e.ConfirmProduction(ctx, productionID)
	require.NoError(t, err)
	assert.Equal(t, 2, out.MovesPosted)

	stock, err := e.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrador de producción
// ──────────────────────────────────────────────────────────────────────────────

func TestProduction_EditarConfirmada_ErrInvalidState(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	productID := createProduct(t, e, "Əla", 50)
	productionID := createProduction(t, e, dto.ProductionItemRequest{ProductID: productID, QtyBag: 1})
	_, err := e.ConfirmProduction(ctx, productionID)
	require.NoError(t, err)

	note := "corrección"
	_, err = e.Productions.Update(ctx, productionID, dto.UpdateProductionRequest{Note: &note})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestProduction_EditarBorrador_ReemplazaLineas(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	productID := createProduct(t, e, "Əla", 50)
	productionID := createProduction(t, e, dto.ProductionItemRequest{ProductID: productID, QtyBag: 1})

	night := entity.ShiftNight
	out, err := e.Productions.Update(ctx, productionID, dto.UpdateProductionRequest{
		Shift: &night,
		Items: []dto.ProductionItemRequest{{ProductID: productID, QtyBag: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ShiftNight, out.Shift)
	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(3), out.Items[0].QtyBag)
	assert.Equal(t, int64(150), out.TotalKg)
}

func TestProduction_ProductoInactivo_ErrInvalidInput(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	inactive := false
	p, err := e.Products.Create(ctx, dto.CreateProductRequest{Name: "Retirado", BagKg: 50, Active: &inactive})
	require.NoError(t, err)

	_, err = e.Productions.Create(ctx, dto.CreateProductionRequest{
		Shift: entity.ShiftDay,
		Items: []dto.ProductionItemRequest{{ProductID: p.ID, QtyBag: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProduction_BorrarConfirmada_ConservaMovimientos(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t)
	productID := createProduct(t, e, "Əla", 50)
	productionID := createProduction(t, e, dto.ProductionItemRequest{ProductID: productID, QtyBag: 5})
	_, err := e.ConfirmProduction(ctx, productionID)
	require.NoError(t, err)

	require.NoError(t, e.Productions.Delete(ctx, productionID))
	_, err = e.Productions.GetByID(ctx, productionID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stock, err := e.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stock)

	// Un producto con movimientos no se puede borrar
	err = e.Products.Delete(ctx, productID)
	assert.ErrorIs(t, err, domain.ErrReferenced)
}

// ──────────────────────────────────────────────────────────────────────────────
// StockLedger
// ──────────────────────────────────────────────────────────────────────────────

func TestStockLedger_RecordMove_ValidaCampos(t *testing.T) {
	ctx := context.Background()
	e, store := newEngine(t)
	productID := createProduct(t, e, "Əla", 50)
	moves := store.Repos().StockMoves

	err := e.Stock.RecordMove(ctx, moves, &entity.StockMove{
		Type: entity.MoveTypeIn, Source: entity.MoveSourceProduction, ProductID: productID, QtyBag: 0, RefText: "PROD-x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	err = e.Stock.RecordMove(ctx, moves, &entity.StockMove{
		Type: "ADJUST", Source: entity.MoveSourceProduction, ProductID: productID, QtyBag: 1, RefText: "PROD-x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "tipo desconocido")

	err = e.Stock.RecordMove(ctx, moves, &entity.StockMove{
		Type: entity.MoveTypeIn, Source: entity.MoveSourceProduction, ProductID: productID, QtyBag: 1,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin referencia")
}

func TestStockLedger_StockNegativoSeReporta(t *testing.T) {
	ctx := context.Background()
	e, store := newEngine(t)
	productID := createProduct(t, e, "Əla", 50)

	// Dato cargado fuera del motor: una salida sin entradas
	require.NoError(t, e.Stock.RecordMove(ctx, store.Repos().StockMoves, &entity.StockMove{
		Type: entity.MoveTypeOut, Source: entity.MoveSourceSale, ProductID: productID, QtyBag: 2, RefText: "S-legacy",
	}))
	stock, err := e.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), stock)
}

func TestStockLedger_ListMoves_ProductoInexistente(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.Stock.ListMoves(context.Background(), "no-existe", nil, nil, 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockLedger_ListByRef_OrigenInvalido(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.Stock.ListByRef(context.Background(), "ADJUST", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
