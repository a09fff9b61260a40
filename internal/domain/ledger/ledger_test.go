package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/deyirman-ledger/internal/domain/entity"
	"github.com/jhoicas/deyirman-ledger/internal/domain/ledger"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Numeración de ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestNextSaleNumber_PrimeraDelAnio(t *testing.T) {
	no, err := ledger.NextSaleNumber(2025, "")
	require.NoError(t, err)
	assert.Equal(t, "S-2025-000001", no)
}

func TestNextSaleNumber_IncrementaElMayor(t *testing.T) {
	no, err := ledger.NextSaleNumber(2025, "S-2025-000041")
	require.NoError(t, err)
	assert.Equal(t, "S-2025-000042", no)
}

func TestNextSaleNumber_SuperaSeisDigitos(t *testing.T) {
	no, err := ledger.NextSaleNumber(2025, "S-2025-999999")
	require.NoError(t, err)
	assert.Equal(t, "S-2025-1000000", no)
}

func TestSaleNumberAfter_ContadorDeSieteDigitosEsMayor(t *testing.T) {
	assert.True(t, ledger.SaleNumberAfter("S-2025-1000000", "S-2025-999999"))
	assert.False(t, ledger.SaleNumberAfter("S-2025-999999", "S-2025-1000000"))
	assert.True(t, ledger.SaleNumberAfter("S-2025-000002", "S-2025-000001"))
	assert.True(t, ledger.SaleNumberAfter("S-2025-000001", ""))
	assert.False(t, ledger.SaleNumberAfter("S-2025-000001", "S-2025-000001"))
}

func TestNextSaleNumber_OtroAnio_RetornaError(t *testing.T) {
	_, err := ledger.NextSaleNumber(2026, "S-2025-000010")
	assert.Error(t, err, "un número de otro año no sirve como base")
}

func TestNextSaleNumber_ContadorMalFormado_RetornaError(t *testing.T) {
	_, err := ledger.NextSaleNumber(2025, "S-2025-00A001")
	assert.Error(t, err)
}

func TestFormatSaleNumber_RellenaConCeros(t *testing.T) {
	assert.Equal(t, "S-2024-000007", ledger.FormatSaleNumber(2024, 7))
	assert.Equal(t, "S-2024-", ledger.SaleNumberPrefix(2024))
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales y deuda
// ──────────────────────────────────────────────────────────────────────────────

// 2 bolsas × 12.50 + 1 bolsa × 15.00 = 40.00
func TestSaleTotal_EjemploDeCuarenta(t *testing.T) {
	items := []*entity.SaleItem{
		{ProductID: "p1", QtyBag: 2, UnitPriceBag: dec(t, "12.50")},
		{ProductID: "p2", QtyBag: 1, UnitPriceBag: dec(t, "15.00")},
	}
	total := ledger.SaleTotal(items)
	assert.True(t, total.Equal(dec(t, "40.00")), "total = %s", total)
	assert.Equal(t, "40.00", total.StringFixed(ledger.MoneyPlaces))
}

func TestSaleTotal_SinLineas_EsCero(t *testing.T) {
	assert.True(t, ledger.SaleTotal(nil).IsZero())
}

func TestSaleTotal_DecimalesExactos(t *testing.T) {
	// 3 × 0.10 en float daría 0.30000000000000004
	items := []*entity.SaleItem{{QtyBag: 3, UnitPriceBag: dec(t, "0.10")}}
	assert.Equal(t, "0.30", ledger.SaleTotal(items).StringFixed(2))
}

func TestPaidTotalYDebt(t *testing.T) {
	payments := []*entity.Payment{
		{Amount: dec(t, "10.00")},
		{Amount: dec(t, "5.00")},
	}
	paid := ledger.PaidTotal(payments)
	assert.Equal(t, "15.00", paid.StringFixed(2))
	assert.Equal(t, "25.00", ledger.Debt(dec(t, "40.00"), paid).StringFixed(2))
}

func TestDebt_Sobrepago_EsNegativa(t *testing.T) {
	debt := ledger.Debt(dec(t, "40.00"), dec(t, "50.00"))
	assert.True(t, debt.IsNegative())
	assert.Equal(t, "-10.00", debt.StringFixed(2))
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock derivado
// ──────────────────────────────────────────────────────────────────────────────

func TestStockBalance_EntradasMenosSalidas(t *testing.T) {
	moves := []*entity.StockMove{
		{Type: entity.MoveTypeIn, QtyBag: 10},
		{Type: entity.MoveTypeIn, QtyBag: 5},
		{Type: entity.MoveTypeOut, QtyBag: 7},
	}
	assert.Equal(t, int64(8), ledger.StockBalance(moves))
	assert.Equal(t, int64(0), ledger.StockBalance(nil))
}

func TestRequestedBags_AgrupaPorProductoYOrdena(t *testing.T) {
	items := []*entity.SaleItem{
		{ProductID: "b", QtyBag: 3},
		{ProductID: "a", QtyBag: 2},
		{ProductID: "b", QtyBag: 4},
	}
	requested, ids := ledger.RequestedBags(items)
	assert.Equal(t, map[string]int64{"a": 2, "b": 7}, requested)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestLockOrder_SinRepetidosYOrdenado(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ledger.LockOrder([]string{"c", "a", "c", "b", "a"}))
	assert.Empty(t, ledger.LockOrder(nil))
}

func TestDateOf_RecortaAFecha(t *testing.T) {
	fallback := time.Date(2025, 3, 9, 18, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), ledger.DateOf(nil, fallback))

	given := time.Date(2025, 1, 2, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), ledger.DateOf(&given, fallback))

	var zero time.Time
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), ledger.DateOf(&zero, fallback))
}
