package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/makerbot/internal/domain"
)

// ResolveMarket convierte una referencia de mercado en un Market completo.
// Acepta tres formas: un condition id ("0x..."), un id numérico de Gamma o un slug.
// Los ids numéricos y slugs se traducen a condition id buscando en Gamma;
// el mercado final siempre se lee del CLOB, que es la fuente autoritativa
// de tokens, tick size y rewards. La metadata de Gamma (volumen, id) es
// opcional — si falla se loguea y se sigue sin ella.
func (c *Client) ResolveMarket(ctx context.Context, ref string) (domain.Market, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.Market{}, fmt.Errorf("polymarket.ResolveMarket: empty market reference")
	}

	conditionID := ref
	if !strings.HasPrefix(ref, "0x") {
		gm, err := c.searchGammaMarket(ctx, ref)
		if err != nil {
			return domain.Market{}, fmt.Errorf("polymarket.ResolveMarket %q: %w", ref, err)
		}
		conditionID = gm.ConditionID
	}

	market, err := c.FetchClobMarket(ctx, conditionID)
	if err != nil {
		return domain.Market{}, fmt.Errorf("polymarket.ResolveMarket %q: %w", ref, err)
	}

	// Enriquecimiento opcional — logueamos pero no fallamos
	gm, found, err := c.fetchGammaByCondition(ctx, conditionID)
	if err != nil {
		slog.Warn("gamma enrichment failed, continuing without metadata", "err", err)
	} else if found {
		enrichFromGamma(&market, gm)
	}

	if market.Tokens[0].TokenID == "" || market.Tokens[1].TokenID == "" {
		return domain.Market{}, fmt.Errorf("polymarket.ResolveMarket %q: market %s has incomplete token pair", ref, conditionID)
	}
	if market.Closed {
		return domain.Market{}, fmt.Errorf("polymarket.ResolveMarket %q: market %s is closed", ref, conditionID)
	}

	slog.Info("market resolved",
		"condition_id", market.ConditionID,
		"question", domain.TruncateQuestion(market.Question, market.ConditionID, 60),
		"tick", market.TickSize,
		"min_size", market.MinOrderSize,
		"neg_risk", market.NegRisk,
		"rewards_daily", market.Rewards.DailyRate,
	)
	return market, nil
}
