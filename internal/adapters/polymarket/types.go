package polymarket

import "encoding/json"

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- CLOB API ---

// clobMarketResponse es la respuesta de GET /markets/{condition_id}.
// Es la fuente autoritativa de tokens, tick size y tamaño mínimo.
type clobMarketResponse struct {
	ConditionID      string      `json:"condition_id"`
	QuestionID       string      `json:"question_id"`
	Question         string      `json:"question"`
	MarketSlug       string      `json:"market_slug"`
	EndDateISO       string      `json:"end_date_iso"`
	MinimumOrderSize float64     `json:"minimum_order_size"`
	MinimumTickSize  float64     `json:"minimum_tick_size"`
	NegRisk          bool        `json:"neg_risk"`
	Tokens           []clobToken `json:"tokens"`
	Rewards          clobRewards `json:"rewards"`
	Active           bool        `json:"active"`
	Closed           bool        `json:"closed"`
	AcceptingOrders  bool        `json:"accepting_orders"`
}

// clobToken representa un token (YES/NO) en el CLOB.
type clobToken struct {
	TokenID string  `json:"token_id"`
	Outcome string  `json:"outcome"`
	Price   float64 `json:"price"`
	Winner  bool    `json:"winner"`
}

// clobRewards contiene la configuración de rewards del mercado.
type clobRewards struct {
	Rates     []rewardRate `json:"rates"`
	MinSize   float64      `json:"min_size"`
	MaxSpread float64      `json:"max_spread"`
}

// rewardRate es la tasa de reward por asset.
type rewardRate struct {
	AssetAddress     string  `json:"asset_address"`
	RewardsDailyRate float64 `json:"rewards_daily_rate"`
}

// orderBookRequest es el body del POST /books batch.
type orderBookRequest struct {
	TokenID string `json:"token_id"`
}

// orderBookResponse es la respuesta de un item en POST /books.
type orderBookResponse struct {
	AssetID string         `json:"asset_id"`
	Bids    []bookEntryRaw `json:"bids"`
	Asks    []bookEntryRaw `json:"asks"`
}

// bookEntryRaw es un nivel de precio raw de la API (strings para mayor precisión).
type bookEntryRaw struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// --- Gamma API ---

// gammaMarketsResponse es la respuesta de GET /markets de Gamma.
type gammaMarketsResponse []gammaMarket

// gammaMarket contiene la metadata enriquecida de un mercado.
// Gamma devuelve algunos campos numéricos como strings JSON, usamos
// json.Number. ClobTokenIDs y Outcomes son arrays JSON serializados
// dentro de un string ("[\"123\",\"456\"]").
type gammaMarket struct {
	ID           string      `json:"id"`
	ConditionID  string      `json:"conditionId"`
	Question     string      `json:"question"`
	Slug         string      `json:"slug"`
	EndDateISO   string      `json:"endDateIso"`
	Volume24h    json.Number `json:"volume24hr"`
	Liquidity    json.Number `json:"liquidity"`
	OrderMinSize json.Number `json:"orderMinSize"`
	OrderTick    json.Number `json:"orderPriceMinTickSize"`
	ClobTokenIDs string      `json:"clobTokenIds"`
	Outcomes     string      `json:"outcomes"`
	NegRisk      bool        `json:"negRisk"`
	Active       bool        `json:"active"`
	Closed       bool        `json:"closed"`
}
