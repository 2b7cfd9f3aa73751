package entity

import "time"

// Direcciones de movimiento.
const (
	DirectionIn  = "in"  // entrada
	DirectionOut = "out" // salida
)

// ValidDirection indica si la dirección es conocida.
func ValidDirection(d string) bool {
	return d == DirectionIn || d == DirectionOut
}

// Movement es un asiento inmutable del kardex. Quantity va con signo (negativo en salidas).
// StockBefore/StockAfter constituyen el registro de auditoría del agregado.
type Movement struct {
	ID          string
	ProductID   string
	Direction   string
	Quantity    int
	StockBefore int
	StockAfter  int
	ActorID     string
	Reason      string
	BatchID     string // común a todos los movimientos de un lote
	Reference   string // p. ej. "sale:<id>" o "stocktake:<id>"
	CreatedAt   time.Time
}

// SignedQuantity devuelve la cantidad con el signo de la dirección.
func SignedQuantity(direction string, quantity int) int {
	if direction == DirectionOut {
		return -quantity
	}
	return quantity
}
