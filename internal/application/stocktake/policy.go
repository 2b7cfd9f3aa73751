package stocktake

import (
	"time"

	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/pkg/clock"
)

// SameDayPolicy exige que una toma se aplique el mismo día calendario en que se creó,
// medido en la zona horaria de la bodega.
type SameDayPolicy struct {
	Clock    clock.Clock
	Location *time.Location
	Enabled  bool
}

// Check devuelve domain.ErrStocktakeStale si createdAt no cae en el día actual.
func (p SameDayPolicy) Check(createdAt time.Time) error {
	if !p.Enabled {
		return nil
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	now := p.Clock.Now().In(loc)
	created := createdAt.In(loc)
	ny, nm, nd := now.Date()
	cy, cm, cd := created.Date()
	if ny != cy || nm != cm || nd != cd {
		return domain.ErrStocktakeStale
	}
	return nil
}
