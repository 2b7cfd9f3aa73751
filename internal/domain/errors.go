package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrPreconditionFailed = errors.New("precondición no cumplida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrTransient          = errors.New("error transitorio, reintentar")
)

// Variantes con nombre propio. Envuelven la categoría para que errors.Is funcione con ambas.
var (
	ErrInvalidQuantity = fmt.Errorf("%w: cantidad inválida", ErrInvalidInput)
	ErrInvalidLocation = fmt.Errorf("%w: ubicación inválida", ErrInvalidInput)
	ErrProductInactive = fmt.Errorf("%w: producto inactivo", ErrPreconditionFailed)

	ErrStocktakeNotOpen        = fmt.Errorf("%w: la toma de inventario no está abierta", ErrPreconditionFailed)
	ErrStocktakeNotClosed      = fmt.Errorf("%w: la toma de inventario no está cerrada", ErrPreconditionFailed)
	ErrStocktakeAlreadyApplied = fmt.Errorf("%w: la toma de inventario ya fue aplicada", ErrPreconditionFailed)
	ErrStocktakeNotLatest      = fmt.Errorf("%w: existe una toma de inventario más reciente", ErrPreconditionFailed)
	ErrStocktakeEmpty          = fmt.Errorf("%w: la toma de inventario no tiene conteos", ErrPreconditionFailed)
	ErrStocktakeStale          = fmt.Errorf("%w: la toma de inventario no es del día actual", ErrPreconditionFailed)

	ErrSaleNotPickable = fmt.Errorf("%w: la venta no admite picking", ErrPreconditionFailed)
	ErrSaleNotPicked   = fmt.Errorf("%w: la venta no está completamente preparada", ErrPreconditionFailed)
)
