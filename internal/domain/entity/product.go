package entity

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// Product representa una máquina o artículo con stock.
// Stock es el agregado desnormalizado: se modifica solo vía movimientos o al aplicar una toma de inventario.
type Product struct {
	ID          string
	Code        string // código único, normalizado con NormalizeCode
	Description string
	Stock       int       // agregado; siempre >= 0
	Location    *Location // ubicación principal (opcional)
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var upperCaser = cases.Upper(language.Und)

// NormalizeCode limpia un código tal como llega de un lector de barras o de un formulario:
// recorta espacios, pliega caracteres de ancho completo a ASCII y lo pasa a mayúsculas.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	code = width.Fold.String(code)
	return upperCaser.String(code)
}
