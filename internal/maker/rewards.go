package maker

import (
	"math"

	"github.com/alejandrodnm/makerbot/internal/domain"
)

// totalEffectiveDepth aproxima los shares efectivos que compiten dentro
// de la banda de incentivos en un mercado con rewards activos.
const totalEffectiveDepth = 80000.0

// defaultRewardMaxSpread es la banda en céntimos cuando el mercado no
// publica la suya.
const defaultRewardMaxSpread = 3.0

// EstimateDailyReward aproxima los USDC al día que las órdenes vivas
// ganarían por el programa de incentivos de liquidez, con el scoring
// del venue: cada orden dentro de la banda puntúa
// ((maxSpread - dist) / maxSpread)^2 * size, los scores se agrupan en
// los dos lados sintéticos (comprar Yes == vender No) y paga el lado
// más flojo, relajado a max/3 cuando el mercado no está en un extremo.
//
// Es una estimación de orden de magnitud para el log del ciclo, no una
// contabilidad del programa real.
func EstimateDailyReward(market domain.Market, books map[string]domain.OrderBook, open []domain.OpenOrder) float64 {
	if market.Rewards.DailyRate <= 0 {
		return 0
	}
	maxSpread := market.Rewards.MaxSpread
	if maxSpread <= 0 {
		maxSpread = defaultRewardMaxSpread
	}

	mids := make(map[domain.Outcome]float64, 2)
	for _, tok := range market.Tokens {
		book, ok := books[tok.TokenID]
		if !ok || !book.HasBothSides() {
			continue
		}
		mids[tok.Outcome] = book.Midpoint()
	}

	var qOne, qTwo float64
	for _, o := range open {
		mid, ok := mids[o.Outcome]
		if !ok {
			continue
		}
		distance := math.Abs(o.Price-mid) * 100
		if distance >= maxSpread {
			continue
		}
		score := math.Pow((maxSpread-distance)/maxSpread, 2) * o.Size
		switch {
		case o.Outcome == domain.OutcomeYes && o.Side == domain.SideBuy,
			o.Outcome == domain.OutcomeNo && o.Side == domain.SideSell:
			qOne += score
		case o.Outcome == domain.OutcomeNo && o.Side == domain.SideBuy,
			o.Outcome == domain.OutcomeYes && o.Side == domain.SideSell:
			qTwo += score
		}
	}
	if qOne == 0 && qTwo == 0 {
		return 0
	}

	midYes, ok := mids[domain.OutcomeYes]
	if !ok {
		midYes = 0.5
	}
	var qMin float64
	if midYes >= 0.10 && midYes <= 0.90 {
		qMin = math.Max(math.Min(qOne, qTwo), math.Max(qOne, qTwo)/3)
	} else {
		qMin = math.Min(qOne, qTwo)
	}

	return qMin / totalEffectiveDepth * market.Rewards.DailyRate
}
