package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Letras de pasillo válidas.
const (
	MinLocationLetter = 'A'
	MaxLocationLetter = 'H'
)

// Location es una coordenada de bodega (letra + número), p. ej. B12.
// No es una entidad: es atributo de LocationStock y de StocktakeDetail.
type Location struct {
	Letter string
	Number int
}

// NewLocation valida y construye una ubicación. La letra se acepta en minúscula.
func NewLocation(letter string, number int) (Location, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < MinLocationLetter || letter[0] > MaxLocationLetter {
		return Location{}, fmt.Errorf("letra %q fuera de rango A-H", letter)
	}
	if number <= 0 {
		return Location{}, fmt.Errorf("número %d debe ser positivo", number)
	}
	return Location{Letter: letter, Number: number}, nil
}

// ParseLocation interpreta el formato compacto "B12".
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Location{}, fmt.Errorf("ubicación %q incompleta", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return Location{}, fmt.Errorf("ubicación %q: número inválido", s)
	}
	return NewLocation(s[:1], n)
}

// String devuelve el formato compacto.
func (l Location) String() string {
	return fmt.Sprintf("%s%d", l.Letter, l.Number)
}

// Less ordena por letra y luego por número.
func (l Location) Less(o Location) bool {
	if l.Letter != o.Letter {
		return l.Letter < o.Letter
	}
	return l.Number < o.Number
}
