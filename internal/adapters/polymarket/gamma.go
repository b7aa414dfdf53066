package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

const (
	gammaMarketsPath = "/markets"
	gammaPageSize    = 100
	gammaSearchPages = 5 // búsqueda por id/slug: solo mercados recientes
)

// fetchGammaByCondition obtiene la metadata de Gamma para un condition id.
// Devuelve false sin error si Gamma no conoce el mercado.
func (c *Client) fetchGammaByCondition(ctx context.Context, conditionID string) (gammaMarket, bool, error) {
	u := fmt.Sprintf("%s%s?condition_ids=%s&limit=1",
		c.gammaBase, gammaMarketsPath, url.QueryEscape(conditionID))

	var resp gammaMarketsResponse
	if err := c.get(ctx, c.gammaLimiter, u, &resp); err != nil {
		return gammaMarket{}, false, fmt.Errorf("gamma.fetchGammaByCondition: %w", err)
	}
	if len(resp) == 0 {
		return gammaMarket{}, false, nil
	}
	return resp[0], true, nil
}

// searchGammaMarket busca un mercado por id numérico de Gamma o por slug,
// paginando los mercados más recientes primero. La búsqueda se corta tras
// gammaSearchPages páginas — los mercados viejos ya no se quotean.
func (c *Client) searchGammaMarket(ctx context.Context, ref string) (gammaMarket, error) {
	for page := 0; page < gammaSearchPages; page++ {
		offset := page * gammaPageSize
		u := fmt.Sprintf("%s%s?order=id&ascending=false&limit=%d&offset=%d",
			c.gammaBase, gammaMarketsPath, gammaPageSize, offset)

		var resp gammaMarketsResponse
		if err := c.get(ctx, c.gammaLimiter, u, &resp); err != nil {
			return gammaMarket{}, fmt.Errorf("gamma.searchGammaMarket page %d: %w", page, err)
		}

		for _, gm := range resp {
			if gm.ID == ref || gm.Slug == ref {
				slog.Debug("gamma market matched",
					"ref", ref,
					"condition_id", gm.ConditionID,
					"page", page,
				)
				return gm, nil
			}
		}

		if len(resp) < gammaPageSize {
			break
		}
	}

	return gammaMarket{}, fmt.Errorf("gamma.searchGammaMarket: no market matches %q in the %d most recent pages", ref, gammaSearchPages)
}
