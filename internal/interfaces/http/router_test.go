package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
	"github.com/jhoicas/deyirman-ledger/internal/application/engine"
	"github.com/jhoicas/deyirman-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/deyirman-ledger/internal/interfaces/http"
	"github.com/jhoicas/deyirman-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	store := memory.NewStore()
	e := engine.New(store.TxRunner(), store.Repos(), engine.Options{}, logger.Nop())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Engine: e, JWTSecret: testJWTSecret, JWTIssuer: testIssuer})
	return &apiClient{t: t, app: app}
}

// do envía la petición con el rol indicado y decodifica el cuerpo en out (si no es nil).
func (a *apiClient) do(method, path, role string, body any, out any) int {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(a.t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// seedFlow crea producto, cliente y una producción confirmada de `bags` bolsas.
func (a *apiClient) seedFlow(bags int64) (productID, customerID string) {
	a.t.Helper()
	var product dto.ProductResponse
	require.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/api/products", "admin",
		dto.CreateProductRequest{Name: "Əla", BagKg: 50}, &product))

	var customer dto.CustomerResponse
	require.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/api/customers", "vendedor",
		dto.CreateCustomerRequest{Name: "Sumqayıt Market"}, &customer))

	var production dto.ProductionResponse
	require.Equal(a.t, http.StatusCreated, a.do(http.MethodPost, "/api/productions", "bodeguero",
		map[string]any{"shift": "NIGHT", "items": []map[string]any{{"product_id": product.ID, "qty_bag": bags}}}, &production))

	var confirmation dto.ConfirmationResponse
	require.Equal(a.t, http.StatusOK, a.do(http.MethodPost, "/api/productions/"+production.ID+"/confirm", "bodeguero", nil, &confirmation))
	require.Equal(a.t, 1, confirmation.MovesPosted)
	return product.ID, customer.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FlujoProduccionVentaPago(t *testing.T) {
	api := newAPI(t)
	productID, customerID := api.seedFlow(10)

	var level dto.StockLevelResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products/"+productID+"/stock", "vendedor", nil, &level))
	assert.Equal(t, int64(10), level.Bags)
	assert.Equal(t, int64(500), level.Kg)

	var sale dto.SaleResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/sales", "vendedor", map[string]any{
		"customer_id": customerID,
		"items":       []map[string]any{{"product_id": productID, "qty_bag": 2, "unit_price_bag": "20.00"}},
	}, &sale))
	assert.Equal(t, "DRAFT", sale.Status)
	assert.NotEmpty(t, sale.SaleNo)

	var confirmation dto.ConfirmationResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/sales/"+sale.ID+"/confirm", "vendedor", nil, &confirmation))
	require.NotNil(t, confirmation.Sale)
	assert.Equal(t, "CONFIRMED", confirmation.Sale.Status)
	assert.Equal(t, "40.00", confirmation.Sale.TotalAmount.StringFixed(2))

	var payment dto.PaymentResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/sales/"+sale.ID+"/payments", "vendedor",
		map[string]any{"amount": "15.00", "note": "nağd"}, &payment))
	assert.Equal(t, "15.00", payment.PaidAmount.StringFixed(2))
	assert.Equal(t, "25.00", payment.DebtAmount.StringFixed(2))

	var payments []dto.PaymentResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/sales/"+sale.ID+"/payments", "admin", nil, &payments))
	assert.Len(t, payments, 1)

	// Importes en el JSON como string con dos decimales
	var raw map[string]any
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/sales/"+sale.ID, "admin", nil, &raw))
	assert.Equal(t, "40.00", raw["total_amount"])
	assert.Equal(t, "15.00", raw["paid_amount"])
	assert.Equal(t, "25.00", raw["debt_amount"])
	line := raw["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "20.00", line["unit_price_bag"])
	assert.Equal(t, "40.00", line["line_total"])

	var moves dto.StockMoveListResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products/"+productID+"/moves", "admin", nil, &moves))
	assert.Len(t, moves.Items, 2)

	var byRef []dto.StockMoveResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/stock-moves?source=SALE&ref="+sale.SaleNo, "admin", nil, &byRef))
	require.Len(t, byRef, 1)
	assert.Equal(t, "OUT", byRef[0].Type)

	var product dto.ProductResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products/"+productID, "vendedor", nil, &product))
	assert.Equal(t, int64(8), product.StockBags)
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores de negocio
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_StockInsuficiente_409ConDetalle(t *testing.T) {
	api := newAPI(t)
	productID, customerID := api.seedFlow(2)

	var sale dto.SaleResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/sales", "vendedor", map[string]any{
		"customer_id": customerID,
		"items":       []map[string]any{{"product_id": productID, "qty_bag": 5, "unit_price_bag": "12.50"}},
	}, &sale))

	var body struct {
		Code    string                       `json:"code"`
		Message string                       `json:"message"`
		Details dto.InsufficientStockDetails `json:"details"`
	}
	require.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/api/sales/"+sale.ID+"/confirm", "vendedor", nil, &body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, productID, body.Details.ProductID)
	assert.Equal(t, int64(2), body.Details.Available)
	assert.Equal(t, int64(5), body.Details.Requested)
	assert.Contains(t, body.Message, "Əla")
}

func TestAPI_BorrarProductoReferenciado_409(t *testing.T) {
	api := newAPI(t)
	productID, _ := api.seedFlow(1)

	var body dto.ErrorResponse
	require.Equal(t, http.StatusConflict, api.do(http.MethodDelete, "/api/products/"+productID, "admin", nil, &body))
	assert.Equal(t, "REFERENCED", body.Code)
}

func TestAPI_AnularConfirmada_409InvalidState(t *testing.T) {
	api := newAPI(t)
	productID, customerID := api.seedFlow(5)

	var sale dto.SaleResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/sales", "vendedor", map[string]any{
		"customer_id": customerID,
		"items":       []map[string]any{{"product_id": productID, "qty_bag": 1, "unit_price_bag": "1.00"}},
	}, &sale))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/sales/"+sale.ID+"/confirm", "vendedor", nil, nil))

	var body dto.ErrorResponse
	require.Equal(t, http.StatusConflict, api.do(http.MethodPost, "/api/sales/"+sale.ID+"/cancel", "vendedor", nil, &body))
	assert.Equal(t, "INVALID_STATE", body.Code)
}

func TestAPI_ValidacionDelCuerpo_400(t *testing.T) {
	api := newAPI(t)

	var body dto.ErrorResponse
	require.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/products", "admin",
		map[string]any{"name": "Əla", "bag_kg": 0}, &body))
	assert.Equal(t, "VALIDATION", body.Code)

	require.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/api/productions", "bodeguero",
		map[string]any{"shift": "EVENING"}, &body))
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestAPI_NoEncontrado_404(t *testing.T) {
	api := newAPI(t)
	var body dto.ErrorResponse
	require.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/sales/no-existe", "admin", nil, &body))
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestAPI_FechaMalFormada_400(t *testing.T) {
	api := newAPI(t)
	productID, _ := api.seedFlow(1)
	var body dto.ErrorResponse
	require.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/api/products/"+productID+"/moves?from=14-05-2025", "admin", nil, &body))
	assert.Equal(t, "VALIDATION", body.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Roles(t *testing.T) {
	api := newAPI(t)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/products", "", nil, nil),
		"sin token no hay acceso")
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/products", "vendedor",
		dto.CreateProductRequest{Name: "Əla", BagKg: 50}, nil), "solo admin crea productos")
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/productions", "vendedor",
		map[string]any{"shift": "DAY"}, nil), "vendedor no registra producción")
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/sales", "bodeguero",
		map[string]any{"customer_id": "x"}, nil), "bodeguero no vende")
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products", "bodeguero", nil, nil),
		"cualquier rol autenticado puede leer")

	var next dto.NextSaleNumberResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/sales/next-number", "vendedor", nil, &next))
	assert.Regexp(t, `^S-\d{4}-000001$`, next.SaleNo)
}
