package domain

import "math"

// Positions son los shares en cartera de cada lado del mercado.
type Positions struct {
	Yes float64
	No  float64
}

// Get devuelve los shares del outcome dado.
func (p Positions) Get(o Outcome) float64 {
	if o == OutcomeYes {
		return p.Yes
	}
	return p.No
}

// Imbalance devuelve la diferencia de shares YES - NO.
func (p Positions) Imbalance() float64 {
	return p.Yes - p.No
}

// Balanced devuelve true si ambos lados difieren menos que epsilon.
func (p Positions) Balanced(epsilon float64) bool {
	return math.Abs(p.Yes-p.No) < epsilon
}

// Heavier devuelve el outcome con más shares.
func (p Positions) Heavier() Outcome {
	if p.Yes > p.No {
		return OutcomeYes
	}
	return OutcomeNo
}
