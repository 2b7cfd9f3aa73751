package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Del más específico al más general: las variantes envuelven su categoría.
var errorMappings = []errorMapping{
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "cantidad inválida"},
	{domain.ErrInvalidLocation, fiber.StatusBadRequest, "INVALID_LOCATION", "ubicación inválida (letra A-H y número > 0)"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrProductInactive, fiber.StatusConflict, "PRODUCT_INACTIVE", "producto inactivo"},
	{domain.ErrStocktakeNotOpen, fiber.StatusConflict, "STOCKTAKE_NOT_OPEN", "la toma de inventario no está abierta"},
	{domain.ErrStocktakeNotClosed, fiber.StatusConflict, "STOCKTAKE_NOT_CLOSED", "la toma de inventario debe estar cerrada"},
	{domain.ErrStocktakeAlreadyApplied, fiber.StatusConflict, "STOCKTAKE_ALREADY_APPLIED", "la toma de inventario ya fue aplicada"},
	{domain.ErrStocktakeNotLatest, fiber.StatusConflict, "STOCKTAKE_NOT_LATEST", "existe una toma de inventario más reciente"},
	{domain.ErrStocktakeEmpty, fiber.StatusConflict, "STOCKTAKE_EMPTY", "la toma de inventario no tiene conteos"},
	{domain.ErrStocktakeStale, fiber.StatusConflict, "STOCKTAKE_STALE", "la toma de inventario no es del día actual"},
	{domain.ErrSaleNotPickable, fiber.StatusConflict, "SALE_NOT_PICKABLE", "la venta no admite picking"},
	{domain.ErrSaleNotPicked, fiber.StatusConflict, "SALE_NOT_PICKED", "la venta no está completamente preparada"},
	{domain.ErrPreconditionFailed, fiber.StatusConflict, "PRECONDITION_FAILED", "precondición no cumplida"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrTransient, fiber.StatusServiceUnavailable, "RETRY_LATER", "recurso ocupado, intente de nuevo"},
}

// writeError traduce un error de dominio a status HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

// pageFromQuery lee limit/offset con valores por defecto y tope de 100.
func pageFromQuery(c *fiber.Ctx) dto.PageRequest {
	var p dto.PageRequest
	_ = c.QueryParser(&p)
	p.DefaultPage()
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}
