package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP del kardex (protegido).
type InventoryHandler struct {
	uc *inventory.RegisterMovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

func toMovementInput(in dto.RegisterMovementRequest, actorID string) inventory.MovementInputDTO {
	return inventory.MovementInputDTO{
		ProductID: in.ProductID,
		Direction: in.Direction,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		ActorID:   actorID,
	}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, direction (in|out), quantity, reason"
// @Success      201   {object}  dto.RegisterMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.uc.RecordMovement(c.Context(), toMovementInput(in, userID))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterMovementResponse{MovementID: res.MovementID, NewStock: res.NewStock})
}

// RegisterBatch godoc
// @Summary      Registrar lote de movimientos (todo o nada)
// @Description  Todas las líneas se aplican en una sola transacción; si una falla no se aplica ninguna.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementBatchRequest  true  "items"
// @Success      201   {object}  dto.RegisterMovementBatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/batch [post]
func (h *InventoryHandler) RegisterBatch(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterMovementBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]inventory.MovementInputDTO, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, toMovementInput(it, userID))
	}
	res, err := h.uc.RecordMovementBatch(c.Context(), items)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RegisterMovementBatchResponse{BatchID: res.BatchID, Count: res.Count})
}
