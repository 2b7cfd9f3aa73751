package dto

import "time"

// CreateStocktakeRequest body para POST /api/stocktakes.
type CreateStocktakeRequest struct {
	Notes string `json:"notes"`
}

// AddCountRequest escaneo de un código. Location es opcional (letra/número o formato compacto).
type AddCountRequest struct {
	Code     string       `json:"code" validate:"required"`
	Quantity int          `json:"quantity" validate:"required,min=1"`
	Location *LocationDTO `json:"location,omitempty"`
	Slot     string       `json:"slot,omitempty"` // alternativa compacta, p. ej. "B12"
}

// SetCountRequest conteo absoluto para un detalle.
type SetCountRequest struct {
	Counted int `json:"counted" validate:"min=0"`
}

// StocktakeResponse cabecera de una toma de inventario.
type StocktakeResponse struct {
	ID        string     `json:"id"`
	Seq       int64      `json:"seq"`
	Status    string     `json:"status"`
	OwnerID   string     `json:"owner_id"`
	Notes     string     `json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

// StocktakeListResponse lista paginada.
type StocktakeListResponse struct {
	Items []StocktakeResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// StocktakeDetailResponse fila de conteo con su diferencia contra el kardex.
type StocktakeDetailResponse struct {
	ID          string       `json:"id"`
	ProductID   string       `json:"product_id"`
	Location    *LocationDTO `json:"location,omitempty"`
	Counted     int          `json:"counted"`
	Baseline    int          `json:"baseline"`
	Discrepancy int          `json:"discrepancy"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// StocktakeSummaryResponse totales de una toma.
type StocktakeSummaryResponse struct {
	StocktakeID         string `json:"stocktake_id"`
	Status              string `json:"status"`
	Rows                int    `json:"rows"`
	Products            int    `json:"products"`
	TotalCounted        int    `json:"total_counted"`
	TotalBaseline       int    `json:"total_baseline"`
	RowsWithDiscrepancy int    `json:"rows_with_discrepancy"`
}
