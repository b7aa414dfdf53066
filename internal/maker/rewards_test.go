package maker_test

import (
	"math"
	"testing"

	"github.com/alejandrodnm/makerbot/internal/domain"
	"github.com/alejandrodnm/makerbot/internal/maker"
	"github.com/stretchr/testify/assert"
)

func rewardMarket(dailyRate, maxSpread float64) domain.Market {
	m := makeMarket()
	m.Rewards = domain.RewardConfig{DailyRate: dailyRate, MinSize: 10, MaxSpread: maxSpread}
	return m
}

func TestEstimateDailyReward_TwoSidedInsideBand(t *testing.T) {
	// mids: Yes 0.56, No 0.44; ambas órdenes a 1c del mid
	market := rewardMarket(50, 3)
	books := makeBooks(0.55, 0.57, 0.43, 0.45)
	open := []domain.OpenOrder{
		{TokenID: noID, Outcome: domain.OutcomeNo, Side: domain.SideBuy, Price: 0.43, Size: 40},
		{TokenID: noID, Outcome: domain.OutcomeNo, Side: domain.SideSell, Price: 0.45, Size: 40},
	}

	got := maker.EstimateDailyReward(market, books, open)

	// score por lado: ((3-1)/3)^2 * 40; ambos lados iguales → qMin = score
	want := math.Pow(2.0/3.0, 2) * 40 / 80000 * 50
	assert.InDelta(t, want, got, 1e-9)
}

func TestEstimateDailyReward_OneSidedStillPays(t *testing.T) {
	// Solo BUY No; con el mercado lejos de los extremos el lado vacío se
	// relaja a max/3 en vez de anular el estimado
	market := rewardMarket(50, 3)
	books := makeBooks(0.55, 0.57, 0.43, 0.45)
	open := []domain.OpenOrder{
		{TokenID: noID, Outcome: domain.OutcomeNo, Side: domain.SideBuy, Price: 0.43, Size: 40},
	}

	got := maker.EstimateDailyReward(market, books, open)

	score := math.Pow(2.0/3.0, 2) * 40
	assert.InDelta(t, score/3/80000*50, got, 1e-9)
}

func TestEstimateDailyReward_ExtremeMarketRequiresBothSides(t *testing.T) {
	// midpoint Yes 0.95, fuera de [0.10, 0.90] → sin relajación, un solo
	// lado no puntúa
	market := rewardMarket(50, 3)
	books := makeBooks(0.94, 0.96, 0.04, 0.06)
	open := []domain.OpenOrder{
		{TokenID: noID, Outcome: domain.OutcomeNo, Side: domain.SideBuy, Price: 0.05, Size: 40},
	}

	assert.Zero(t, maker.EstimateDailyReward(market, books, open))
}

func TestEstimateDailyReward_OrderOutsideBand(t *testing.T) {
	market := rewardMarket(50, 3)
	books := makeBooks(0.55, 0.57, 0.43, 0.45)
	open := []domain.OpenOrder{
		// a 4c del mid 0.44, fuera de la banda de 3c
		{TokenID: noID, Outcome: domain.OutcomeNo, Side: domain.SideBuy, Price: 0.40, Size: 40},
	}

	assert.Zero(t, maker.EstimateDailyReward(market, books, open),
		"una orden fuera de la banda no puntúa")
}

func TestEstimateDailyReward_DefaultBand(t *testing.T) {
	// El mercado no publica max_spread → banda por defecto de 3c
	market := rewardMarket(50, 0)
	books := makeBooks(0.55, 0.57, 0.43, 0.45)
	open := []domain.OpenOrder{
		{TokenID: noID, Outcome: domain.OutcomeNo, Side: domain.SideBuy, Price: 0.43, Size: 40},
		{TokenID: noID, Outcome: domain.OutcomeNo, Side: domain.SideSell, Price: 0.45, Size: 40},
	}

	assert.Greater(t, maker.EstimateDailyReward(market, books, open), 0.0)
}

func TestEstimateDailyReward_NoRewardProgram(t *testing.T) {
	assert.Zero(t, maker.EstimateDailyReward(makeMarket(), nil, nil))
}
