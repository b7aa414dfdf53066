package maker

import "time"

// Clock abstrae el tiempo para que los tests puedan conducir el loop
// sin esperas reales.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
