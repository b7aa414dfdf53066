package domain

import "time"

// Trade es un fill de una de nuestras órdenes en el CLOB.
type Trade struct {
	ID        string
	TokenID   string
	Outcome   Outcome
	Side      Side
	Price     float64
	Size      float64 // shares
	Timestamp time.Time
}
