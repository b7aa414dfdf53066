package polymarket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alejandrodnm/makerbot/internal/domain"
)

// clobTrade es un trade del wallet devuelto por GET /data/trades.
// Todos los campos numéricos vienen como strings.
type clobTrade struct {
	ID         string `json:"id"`
	Market     string `json:"market"`
	AssetID    string `json:"asset_id"`
	Side       string `json:"side"`
	Size       string `json:"size"`
	Price      string `json:"price"`
	Status     string `json:"status"`
	MatchTime  string `json:"match_time"`
	Outcome    string `json:"outcome"`
	TraderSide string `json:"trader_side"`
}

type clobTradesResponse struct {
	Data       []clobTrade `json:"data"`
	NextCursor string      `json:"next_cursor"`
}

// GetRecentTrades devuelve los fills de nuestras órdenes en el mercado
// dentro de la ventana dada. Requiere auth L2 — el endpoint solo devuelve
// trades del dueño de las credenciales.
func (tc *TradingClient) GetRecentTrades(ctx context.Context, market domain.Market, window time.Duration) ([]domain.Trade, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return nil, fmt.Errorf("trading.GetRecentTrades: creds: %w", err)
	}

	after := time.Now().Add(-window).Unix()
	var all []domain.Trade
	cursor := ""

	for {
		path := fmt.Sprintf("/data/trades?market=%s&after=%d",
			url.QueryEscape(market.ConditionID), after)
		if cursor != "" {
			path += "&next_cursor=" + url.QueryEscape(cursor)
		}

		var resp clobTradesResponse
		if err := tc.auth.doL2(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, fmt.Errorf("trading.GetRecentTrades: %w", err)
		}

		for _, rt := range resp.Data {
			if trade, ok := mapTrade(rt, market); ok {
				all = append(all, trade)
			}
		}

		if resp.NextCursor == "" || resp.NextCursor == endCursor {
			break
		}
		cursor = resp.NextCursor
	}

	slog.Debug("recent trades fetched",
		"market", market.ConditionID,
		"window", window,
		"count", len(all),
	)
	return all, nil
}

// mapTrade convierte un trade raw a domain.Trade. Devuelve false si el
// side no se reconoce o el token no pertenece al mercado.
func mapTrade(rt clobTrade, market domain.Market) (domain.Trade, bool) {
	side, ok := domain.ParseSide(rt.Side)
	if !ok {
		return domain.Trade{}, false
	}

	outcome, ok := domain.ParseOutcome(rt.Outcome)
	if !ok {
		outcome, ok = market.OutcomeOf(rt.AssetID)
		if !ok {
			return domain.Trade{}, false
		}
	}

	return domain.Trade{
		ID:        rt.ID,
		TokenID:   rt.AssetID,
		Outcome:   outcome,
		Side:      side,
		Price:     parseFloat(rt.Price),
		Size:      parseFloat(rt.Size),
		Timestamp: parseTradeTimestamp(rt.MatchTime),
	}, true
}

// parseTradeTimestamp acepta unix seconds, milliseconds o ISO 8601.
func parseTradeTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		if sec > 1e12 {
			return time.Unix(sec/1000, (sec%1000)*int64(time.Millisecond))
		}
		return time.Unix(sec, 0)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec)
	}
	for _, layout := range []string{
		time.RFC3339Nano, time.RFC3339,
		"2006-01-02T15:04:05.000Z", "2006-01-02T15:04:05Z",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
