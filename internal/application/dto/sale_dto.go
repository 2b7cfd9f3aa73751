package dto

// PickRequest body para POST /api/sales/:id/lines/:lineId/pick.
type PickRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// PickResponse avance de la venta tras el picking.
type PickResponse struct {
	SaleStatus string `json:"sale_status"`
	Picked     int    `json:"picked"`
	Pending    int    `json:"pending"`
	MovementID string `json:"movement_id"`
	NewStock   int    `json:"new_stock"`
}
