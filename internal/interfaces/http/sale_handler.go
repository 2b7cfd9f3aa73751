package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
)

// SaleHandler picking y despacho de ventas.
type SaleHandler struct {
	uc *inventory.PickingUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *inventory.PickingUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Pick godoc
// @Summary      Preparar unidades de una línea de venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string           true  "ID de la venta"
// @Param        lineId  path  string           true  "ID de la línea"
// @Param        body    body  dto.PickRequest  true  "quantity"
// @Success      200  {object}  dto.PickResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/lines/{lineId}/pick [post]
func (h *SaleHandler) Pick(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.PickRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.Pick(c.Context(), inventory.PickInput{
		SaleID:   c.Params("id"),
		LineID:   c.Params("lineId"),
		Quantity: in.Quantity,
		ActorID:  userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PickResponse{
		SaleStatus: res.SaleStatus,
		Picked:     res.Picked,
		Pending:    res.Pending,
		MovementID: res.MovementID,
		NewStock:   res.NewStock,
	})
}

// Ship godoc
// @Summary      Despachar venta preparada
// @Tags         sales
// @Security     Bearer
// @Param        id   path  string  true  "ID de la venta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/ship [post]
func (h *SaleHandler) Ship(c *fiber.Ctx) error {
	if err := h.uc.Ship(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
