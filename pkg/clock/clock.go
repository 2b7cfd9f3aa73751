package clock

import "time"

// Clock abstrae la hora actual para poder fijarla en tests.
type Clock interface {
	Now() time.Time
}

// System usa time.Now.
type System struct{}

// Now devuelve la hora del sistema.
func (System) Now() time.Time { return time.Now() }

// Fixed devuelve siempre el mismo instante (tests).
type Fixed struct{ T time.Time }

// Now devuelve el instante fijo.
func (f Fixed) Now() time.Time { return f.T }
