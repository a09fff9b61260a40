package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
	"github.com/jhoicas/deyirman-ledger/internal/application/engine"
)

// InventoryHandler consultas del libro de stock (protegido). El stock solo se modifica
// confirmando producciones y ventas.
type InventoryHandler struct {
	engine *engine.Engine
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(e *engine.Engine) *InventoryHandler {
	return &InventoryHandler{engine: e}
}

// StockLevel godoc
// @Summary      Stock actual de un producto (Σ IN − Σ OUT)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *InventoryHandler) StockLevel(c *fiber.Ctx) error {
	out, err := h.engine.Stock.StockLevel(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListMoves godoc
// @Summary      Movimientos de stock de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.StockMoveListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/products/{id}/moves [get]
func (h *InventoryHandler) ListMoves(c *fiber.Ctx) error {
	from, err := dateQuery(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	to, err := dateQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	out, err := h.engine.Stock.ListMoves(c.UserContext(), c.Params("id"), from, to,
		c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListByRef godoc
// @Summary      Movimientos generados por un documento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        source  query  string  true  "PRODUCTION | SALE"
// @Param        ref     query  string  true  "PROD-<id> o número de venta"
// @Success      200     {array}  dto.StockMoveResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/stock-moves [get]
func (h *InventoryHandler) ListByRef(c *fiber.Ctx) error {
	out, err := h.engine.Stock.ListByRef(c.UserContext(), c.Query("source"), c.Query("ref"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
