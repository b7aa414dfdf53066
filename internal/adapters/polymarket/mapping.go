package polymarket

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/alejandrodnm/makerbot/internal/domain"
)

// mapClobMarket convierte la respuesta de GET /markets/{cid} a domain.Market.
func mapClobMarket(r clobMarketResponse) domain.Market {
	m := domain.Market{
		ConditionID:  r.ConditionID,
		Question:     r.Question,
		Slug:         r.MarketSlug,
		MinOrderSize: r.MinimumOrderSize,
		TickSize:     r.MinimumTickSize,
		NegRisk:      r.NegRisk,
		Active:       r.Active,
		Closed:       r.Closed,
		Rewards: domain.RewardConfig{
			MinSize:   r.Rewards.MinSize,
			MaxSpread: r.Rewards.MaxSpread,
		},
	}

	for _, rate := range r.Rewards.Rates {
		m.Rewards.DailyRate += rate.RewardsDailyRate
	}

	for i, t := range r.Tokens {
		if i >= 2 {
			break
		}
		outcome, ok := domain.ParseOutcome(t.Outcome)
		if !ok {
			// Mercados no binarios usan otros labels; el primero actúa
			// como YES y el segundo como NO.
			outcome = domain.OutcomeYes
			if i == 1 {
				outcome = domain.OutcomeNo
			}
		}
		m.Tokens[i] = domain.Token{TokenID: t.TokenID, Outcome: outcome}
	}

	m.EndDate = parseEndDate(r.EndDateISO)
	return m
}

// enrichFromGamma aplica la metadata de Gamma sobre un mercado existente.
// Solo rellena lo que falta — el CLOB es la fuente autoritativa.
func enrichFromGamma(m *domain.Market, gm gammaMarket) {
	m.GammaID = gm.ID
	if m.Question == "" {
		m.Question = gm.Question
	}
	if m.Slug == "" {
		m.Slug = gm.Slug
	}

	if v, err := gm.Volume24h.Float64(); err == nil {
		m.Volume24h = v
	}

	if m.MinOrderSize == 0 {
		if v, err := gm.OrderMinSize.Float64(); err == nil {
			m.MinOrderSize = v
		}
	}
	if m.TickSize == 0 {
		if v, err := gm.OrderTick.Float64(); err == nil {
			m.TickSize = v
		}
	}

	if m.Tokens[0].TokenID == "" {
		fillTokensFromGamma(m, gm)
	}

	if m.EndDate.IsZero() {
		m.EndDate = parseEndDate(gm.EndDateISO)
	}
}

// fillTokensFromGamma reconstruye los tokens desde los arrays serializados
// de Gamma (clobTokenIds + outcomes en paralelo).
func fillTokensFromGamma(m *domain.Market, gm gammaMarket) {
	ids := parseStringArray(gm.ClobTokenIDs)
	outcomes := parseStringArray(gm.Outcomes)
	for i := 0; i < len(ids) && i < 2; i++ {
		outcome := domain.OutcomeYes
		if i == 1 {
			outcome = domain.OutcomeNo
		}
		if i < len(outcomes) {
			if o, ok := domain.ParseOutcome(outcomes[i]); ok {
				outcome = o
			}
		}
		m.Tokens[i] = domain.Token{TokenID: ids[i], Outcome: outcome}
	}
}

// parseStringArray decodifica un array JSON serializado dentro de un string.
// Gamma devuelve `"[\"Yes\", \"No\"]"` en vez de un array real.
func parseStringArray(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

// parseEndDate intenta los formatos de fecha que usa Polymarket.
func parseEndDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// mapOrderBooks convierte la respuesta batch de /books a un map tokenID→OrderBook.
func mapOrderBooks(raw []orderBookResponse) map[string]domain.OrderBook {
	result := make(map[string]domain.OrderBook, len(raw))
	for _, r := range raw {
		ob := domain.OrderBook{
			TokenID: r.AssetID,
			Bids:    mapBookEntries(r.Bids, false),
			Asks:    mapBookEntries(r.Asks, true),
		}
		result[r.AssetID] = ob
	}
	return result
}

// mapBookEntries convierte entries raw a domain.BookEntry y los ordena.
// ascending=true → menor a mayor (asks), ascending=false → mayor a menor (bids).
func mapBookEntries(raw []bookEntryRaw, ascending bool) []domain.BookEntry {
	entries := make([]domain.BookEntry, 0, len(raw))
	for _, r := range raw {
		price, _ := strconv.ParseFloat(r.Price, 64)
		size, _ := strconv.ParseFloat(r.Size, 64)
		if price <= 0 || size <= 0 {
			continue
		}
		entries = append(entries, domain.BookEntry{Price: price, Size: size})
	}

	sort.Slice(entries, func(i, j int) bool {
		if ascending {
			return entries[i].Price < entries[j].Price
		}
		return entries[i].Price > entries[j].Price
	})

	return entries
}
