package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPrice(t *testing.T) {
	assert.InDelta(t, 0.01, ClampPrice(-0.05), 0.0001)
	assert.InDelta(t, 0.01, ClampPrice(0.003), 0.0001)
	assert.InDelta(t, 0.42, ClampPrice(0.42), 0.0001)
	assert.InDelta(t, 0.99, ClampPrice(1.04), 0.0001)

	// Clampear un precio ya clampeado no lo cambia
	for _, p := range []float64{-1, 0.0, 0.01, 0.50, 0.99, 1.5} {
		once := ClampPrice(p)
		assert.Equal(t, once, ClampPrice(once))
	}
}

func TestRoundToCent(t *testing.T) {
	assert.InDelta(t, 0.42, RoundToCent(0.4199999), 1e-9)
	assert.InDelta(t, 0.42, RoundToCent(0.424), 1e-9)
	assert.InDelta(t, 0.43, RoundToCent(0.425), 1e-9)
}

func TestPriceCents(t *testing.T) {
	assert.Equal(t, 54, PriceCents(0.54))
	assert.Equal(t, 54, PriceCents(0.5400000001))
	assert.Equal(t, 1, PriceCents(0.01))
	assert.Equal(t, 99, PriceCents(0.99))
}

func TestParseSide(t *testing.T) {
	s, ok := ParseSide("BUY")
	assert.True(t, ok)
	assert.Equal(t, SideBuy, s)

	s, ok = ParseSide(" sell ")
	assert.True(t, ok)
	assert.Equal(t, SideSell, s)

	_, ok = ParseSide("HOLD")
	assert.False(t, ok)
}

func TestParseOutcome(t *testing.T) {
	o, ok := ParseOutcome("yes")
	assert.True(t, ok)
	assert.Equal(t, OutcomeYes, o)

	o, ok = ParseOutcome(" NO ")
	assert.True(t, ok)
	assert.Equal(t, OutcomeNo, o)

	_, ok = ParseOutcome("maybe")
	assert.False(t, ok)

	assert.Equal(t, OutcomeNo, OutcomeYes.Opposite())
	assert.Equal(t, OutcomeYes, OutcomeNo.Opposite())
}
