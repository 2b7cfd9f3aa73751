package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/stocktake"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// StocktakeHandler tomas de inventario (conteo físico).
type StocktakeHandler struct {
	uc *stocktake.UseCase
}

// NewStocktakeHandler construye el handler.
func NewStocktakeHandler(uc *stocktake.UseCase) *StocktakeHandler {
	return &StocktakeHandler{uc: uc}
}

// Create godoc
// @Summary      Abrir toma de inventario
// @Tags         stocktakes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStocktakeRequest  false  "notes"
// @Success      201   {object}  dto.StocktakeResponse
// @Router       /api/stocktakes [post]
func (h *StocktakeHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateStocktakeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.Create(c.Context(), userID, in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar tomas de inventario
// @Tags         stocktakes
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "límite (máx 100)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.StocktakeListResponse
// @Router       /api/stocktakes [get]
func (h *StocktakeHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, err := h.uc.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener toma de inventario
// @Tags         stocktakes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la toma"
// @Success      200  {object}  dto.StocktakeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocktakes/{id} [get]
func (h *StocktakeHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Details godoc
// @Summary      Filas de conteo
// @Tags         stocktakes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la toma"
// @Success      200  {array}   dto.StocktakeDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocktakes/{id}/details [get]
func (h *StocktakeHandler) Details(c *fiber.Ctx) error {
	out, err := h.uc.Details(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Totales de la toma
// @Tags         stocktakes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la toma"
// @Success      200  {object}  dto.StocktakeSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stocktakes/{id}/summary [get]
func (h *StocktakeHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddCount godoc
// @Summary      Registrar un escaneo
// @Description  Suma quantity al detalle (producto, ubicación). Sin ubicación se usa la principal del producto.
// @Tags         stocktakes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la toma"
// @Param        body  body  dto.AddCountRequest  true  "code, quantity, location o slot"
// @Success      200  {object}  dto.StocktakeDetailResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stocktakes/{id}/counts [post]
func (h *StocktakeHandler) AddCount(c *fiber.Ctx) error {
	var in dto.AddCountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	var loc *entity.Location
	switch {
	case in.Location != nil:
		l, err := entity.NewLocation(in.Location.Letter, in.Location.Number)
		if err != nil {
			return writeError(c, domain.ErrInvalidLocation)
		}
		loc = &l
	case in.Slot != "":
		l, err := entity.ParseLocation(in.Slot)
		if err != nil {
			return writeError(c, domain.ErrInvalidLocation)
		}
		loc = &l
	}
	out, err := h.uc.AddCount(c.Context(), stocktake.AddCountInput{
		StocktakeID: c.Params("id"),
		Code:        in.Code,
		Quantity:    in.Quantity,
		Location:    loc,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetCount godoc
// @Summary      Corregir el conteo de un detalle
// @Tags         stocktakes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id        path  string               true  "ID de la toma"
// @Param        detailId  path  string               true  "ID del detalle"
// @Param        body      body  dto.SetCountRequest  true  "counted"
// @Success      200  {object}  dto.StocktakeDetailResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stocktakes/{id}/details/{detailId} [put]
func (h *StocktakeHandler) SetCount(c *fiber.Ctx) error {
	var in dto.SetCountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetCount(c.Context(), c.Params("id"), c.Params("detailId"), in.Counted)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RemoveDetail godoc
// @Summary      Eliminar un detalle
// @Tags         stocktakes
// @Security     Bearer
// @Param        id        path  string  true  "ID de la toma"
// @Param        detailId  path  string  true  "ID del detalle"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stocktakes/{id}/details/{detailId} [delete]
func (h *StocktakeHandler) RemoveDetail(c *fiber.Ctx) error {
	if err := h.uc.RemoveDetail(c.Context(), c.Params("id"), c.Params("detailId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Close godoc
// @Summary      Cerrar toma
// @Tags         stocktakes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la toma"
// @Success      200  {object}  dto.StocktakeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stocktakes/{id}/close [post]
func (h *StocktakeHandler) Close(c *fiber.Ctx) error {
	out, err := h.uc.Close(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Apply godoc
// @Summary      Aplicar toma al stock
// @Description  Requiere toma cerrada, la más reciente, con conteos y del día. Productos no escaneados quedan en 0.
// @Tags         stocktakes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la toma"
// @Success      200  {object}  dto.StocktakeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stocktakes/{id}/apply [post]
func (h *StocktakeHandler) Apply(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Apply(c.Context(), c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar toma no aplicada
// @Tags         stocktakes
// @Security     Bearer
// @Param        id   path  string  true  "ID de la toma"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stocktakes/{id} [delete]
func (h *StocktakeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
