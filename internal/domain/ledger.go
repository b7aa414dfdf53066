package domain

import "time"

// OrderRecord es la fila de auditoría de una orden colocada por el bot.
type OrderRecord struct {
	ID          string // UUID local
	CLOBOrderID string // hash de la orden en Polymarket (0x...)
	ConditionID string
	TokenID     string
	Outcome     Outcome
	Side        Side
	Price       float64
	Size        float64 // shares
	Status      string
	PlacedAt    time.Time
}

// CycleRecord resume un ciclo del loop de quoting.
type CycleRecord struct {
	At          time.Time
	ConditionID string
	Quotes      int // quotes deseadas calculadas
	Placed      int // órdenes colocadas en este ciclo
	Cancelled   int // órdenes canceladas en este ciclo
	PosYes      float64
	PosNo       float64
	BestBid     float64
	BestAsk     float64
	RewardEst   float64 // USDC/día estimado por rewards de liquidez
	Note        string  // "ok" | "wait" | "hold" | texto del error
}

// DailySummary agrega la actividad de un día natural.
type DailySummary struct {
	Date       time.Time
	Cycles     int
	Placed     int
	Cancelled  int
	Fills      int
	FillShares float64
}
