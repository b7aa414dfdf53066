package domain

import (
	"math"
	"strings"
	"time"
)

// Side es la dirección de una orden en el CLOB.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide normaliza el string de la API a Side.
// Devuelve false si el string no es BUY ni SELL.
func ParseSide(s string) (Side, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return SideBuy, true
	case "SELL":
		return SideSell, true
	}
	return "", false
}

// Rango operable de precios del CLOB. Fuera de [0.01, 0.99] el venue
// rechaza la orden.
const (
	MinPrice = 0.01
	MaxPrice = 0.99
)

// ClampPrice limita un precio al rango operable [0.01, 0.99].
func ClampPrice(p float64) float64 {
	return math.Min(MaxPrice, math.Max(MinPrice, p))
}

// RoundToCent redondea un precio al céntimo más cercano.
func RoundToCent(p float64) float64 {
	return math.Round(p*100) / 100
}

// PriceCents devuelve el precio en céntimos enteros (0.54 → 54).
func PriceCents(p float64) int {
	return int(math.Round(p * 100))
}

// Quote es una orden que el maker quiere tener descansando en el book:
// lado, precio y tamaño en shares. Es efímera — se recalcula desde cero
// en cada ciclo y nunca se persiste.
type Quote struct {
	Side  Side
	Price float64
	Size  float64
}

// OpenOrder es una orden viva en el CLOB.
type OpenOrder struct {
	OrderID   string
	TokenID   string
	Outcome   Outcome
	Side      Side
	Price     float64
	Size      float64 // shares restantes (original - matched)
	CreatedAt time.Time
}

// PlaceOrderRequest se envía al executor para colocar una orden GTC.
type PlaceOrderRequest struct {
	TokenID     string
	ConditionID string
	Outcome     Outcome
	Side        Side
	Price       float64
	Size        float64 // shares
	NegRisk     bool
}

// PlacedOrder es la respuesta del CLOB tras colocar una orden.
type PlacedOrder struct {
	OrderID     string
	Status      string
	TakenAmount float64 // ejecutado inmediatamente (porción taker)
	MadeAmount  float64 // descansando en el book (porción maker)
}
