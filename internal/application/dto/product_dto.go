package dto

import "time"

// LocationDTO coordenada de bodega en el cuerpo de las peticiones.
type LocationDTO struct {
	Letter string `json:"letter" validate:"required,len=1"`
	Number int    `json:"number" validate:"required,min=1"`
}

// CreateProductRequest entrada para crear un producto. El stock inicia en 0; se modifica vía movimientos.
type CreateProductRequest struct {
	Code        string       `json:"code" validate:"required,min=1,max=100"`
	Description string       `json:"description"`
	Location    *LocationDTO `json:"location,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Stock       int          `json:"stock"`
	Location    *LocationDTO `json:"location,omitempty"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LocationStockResponse fila de stock por ubicación (solo cantidades > 0).
type LocationStockResponse struct {
	Letter   string `json:"letter"`
	Number   int    `json:"number"`
	Code     string `json:"code"` // formato compacto, p. ej. B12
	Quantity int    `json:"quantity"`
}

// ProductStockResponse agregado y desglose por ubicación de un producto.
type ProductStockResponse struct {
	ProductID string                  `json:"product_id"`
	Code      string                  `json:"code"`
	Stock     int                     `json:"stock"`
	Locations []LocationStockResponse `json:"locations"`
}

// UpdateLocationRequest body para PUT /api/products/:id/location.
type UpdateLocationRequest struct {
	Letter string `json:"letter" validate:"required,len=1"`
	Number int    `json:"number" validate:"required,min=1"`
}
