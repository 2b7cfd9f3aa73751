package entity

import "time"

// LocationStock cantidad de un producto atribuida a una coordenada.
// Para un producto con al menos una fila, la suma de Quantity es igual a Product.Stock.
type LocationStock struct {
	ProductID string
	Location  Location
	Quantity  int
	UpdatedAt time.Time
}
