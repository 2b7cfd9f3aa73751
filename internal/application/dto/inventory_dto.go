package dto

import "time"

// RegisterMovementRequest body para POST /api/inventory/movements.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=in out"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Reason    string `json:"reason"`
}

// RegisterMovementResponse resultado de un movimiento.
type RegisterMovementResponse struct {
	MovementID string `json:"movement_id"`
	NewStock   int    `json:"new_stock"`
}

// RegisterMovementBatchRequest body para POST /api/inventory/movements/batch.
type RegisterMovementBatchRequest struct {
	Items []RegisterMovementRequest `json:"items" validate:"required,min=1,dive"`
}

// RegisterMovementBatchResponse resultado de un lote.
type RegisterMovementBatchResponse struct {
	BatchID string `json:"batch_id"`
	Count   int    `json:"count"`
}

// MovementResponse asiento del kardex.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Direction   string    `json:"direction"`
	Quantity    int       `json:"quantity"`
	StockBefore int       `json:"stock_before"`
	StockAfter  int       `json:"stock_after"`
	ActorID     string    `json:"actor_id"`
	Reason      string    `json:"reason"`
	BatchID     string    `json:"batch_id,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MovementListResponse kardex paginado de un producto.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
