package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/deyirman-ledger/internal/application/dto"
	"github.com/jhoicas/deyirman-ledger/internal/application/engine"
)

// ProductionHandler lotes de producción (protegido).
type ProductionHandler struct {
	engine *engine.Engine
}

// NewProductionHandler construye el handler.
func NewProductionHandler(e *engine.Engine) *ProductionHandler {
	return &ProductionHandler{engine: e}
}

// Create godoc
// @Summary      Registrar lote de producción (DRAFT)
// @Tags         productions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductionRequest  true  "Fecha, turno y líneas"
// @Success      201   {object}  dto.ProductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/productions [post]
func (h *ProductionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.engine.Productions.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote de producción
// @Tags         productions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.ProductionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/productions/{id} [get]
func (h *ProductionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.engine.Productions.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar lote en DRAFT
// @Tags         productions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del lote"
// @Param        body  body  dto.UpdateProductionRequest  true  "Campos a cambiar; items reemplaza las líneas"
// @Success      200   {object}  dto.ProductionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/productions/{id} [put]
func (h *ProductionHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.engine.Productions.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar lote (los movimientos contabilizados se conservan)
// @Tags         productions
// @Security     Bearer
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/productions/{id} [delete]
func (h *ProductionHandler) Delete(c *fiber.Ctx) error {
	if err := h.engine.Productions.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Confirm godoc
// @Summary      Confirmar lote: una entrada IN por línea, exactamente una vez
// @Tags         productions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.ConfirmationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/productions/{id}/confirm [post]
func (h *ProductionHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.engine.ConfirmProduction(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
