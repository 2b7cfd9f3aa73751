package entity

import "time"

// StocktakeStatus estado de una toma de inventario físico.
type StocktakeStatus string

const (
	StocktakeOpen    StocktakeStatus = "open"
	StocktakeClosed  StocktakeStatus = "closed"
	StocktakeApplied StocktakeStatus = "applied"
)

// CanTransitionTo open→closed→applied; no hay regreso a open.
func (s StocktakeStatus) CanTransitionTo(target StocktakeStatus) bool {
	switch s {
	case StocktakeOpen:
		return target == StocktakeClosed
	case StocktakeClosed:
		return target == StocktakeApplied
	}
	return false
}

// Stocktake sesión de conteo físico. Seq es monotónico y define cuál es la más reciente.
type Stocktake struct {
	ID        string
	Seq       int64
	Status    StocktakeStatus
	OwnerID   string
	Notes     string
	CreatedAt time.Time
	ClosedAt  *time.Time
	AppliedAt *time.Time
}

// IsOpen indica si todavía admite conteos.
func (s *Stocktake) IsOpen() bool { return s.Status == StocktakeOpen }

// StocktakeDetail conteo acumulado de un producto en una ubicación dentro de una toma.
// Location nil significa conteo sin ubicación: cuenta para el agregado pero no genera fila de ubicación.
type StocktakeDetail struct {
	ID          string
	StocktakeID string
	ProductID   string
	Location    *Location
	Counted     int
	Baseline    int
	Discrepancy int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SetCounted fija el conteo y recalcula la diferencia.
func (d *StocktakeDetail) SetCounted(counted int) {
	d.Counted = counted
	d.Discrepancy = d.Counted - d.Baseline
}

// AddCounted suma un escaneo al conteo y recalcula la diferencia.
func (d *StocktakeDetail) AddCounted(qty int) {
	d.SetCounted(d.Counted + qty)
}
