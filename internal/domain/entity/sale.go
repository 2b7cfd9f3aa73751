package entity

import "time"

// Estados de venta relevantes para el picking. La creación y el precio son externos.
const (
	SaleConfirmed = "confirmed"
	SalePicking   = "picking"
	SalePicked    = "picked"
	SaleShipped   = "shipped"
)

// Sale cabecera de venta vista desde bodega.
type Sale struct {
	ID        string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaleLine línea de venta con su avance de picking.
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int
	Picked    int
}

// Pending unidades aún por preparar.
func (l *SaleLine) Pending() int { return l.Quantity - l.Picked }
