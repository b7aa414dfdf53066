package polymarket

// trading.go — Real order execution via Polymarket CLOB API.
//
// Implements ports.OrderExecutor and the authenticated half of
// ports.MarketData using AuthClient for L1/L2 auth. All orders are
// placed as GTC (good-till-cancelled) limit orders.

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/alejandrodnm/makerbot/internal/domain"
	"github.com/alejandrodnm/makerbot/internal/ports"
)

// clobOrderRequest is the JSON body sent to POST /order.
type clobOrderRequest struct {
	Order     clobOrderBody `json:"order"`
	Owner     string        `json:"owner"`
	OrderType string        `json:"orderType"`
}

type clobOrderBody struct {
	Salt          json.Number `json:"salt"`
	Maker         string      `json:"maker"`
	Signer        string      `json:"signer"`
	Taker         string      `json:"taker"`
	TokenID       string      `json:"tokenId"`
	MakerAmount   string      `json:"makerAmount"`
	TakerAmount   string      `json:"takerAmount"`
	Expiration    string      `json:"expiration"`
	Nonce         string      `json:"nonce"`
	FeeRateBps    string      `json:"feeRateBps"`
	Side          string      `json:"side"`
	SignatureType int         `json:"signatureType"`
	Signature     string      `json:"signature"`
}

type clobOrderResponse struct {
	ErrorMsg     string `json:"errorMsg"`
	OrderID      string `json:"orderID"`
	TakingAmount string `json:"takingAmount"`
	MakingAmount string `json:"makingAmount"`
	Status       string `json:"status"`
	Success      bool   `json:"success"`
}

type clobOpenOrder struct {
	ID           string `json:"id"`
	AssetID      string `json:"asset_id"`
	Market       string `json:"market"`
	Side         string `json:"side"`
	OriginalSize string `json:"original_size"`
	SizeMatched  string `json:"size_matched"`
	Price        string `json:"price"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	Outcome      string `json:"outcome"`
}

type clobOrdersResponse struct {
	Data       []clobOpenOrder `json:"data"`
	NextCursor string          `json:"next_cursor"`
}

// cancelMarketBody is the JSON body of DELETE /cancel-market-orders.
type cancelMarketBody struct {
	Market string `json:"market"`
}

type cancelMarketResponse struct {
	Canceled    []string          `json:"canceled"`
	NotCanceled map[string]string `json:"not_canceled"`
}

type clobBalanceResponse struct {
	Balance string `json:"balance"`
}

const (
	usdcEAddress = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	ctfAddress   = "0x4D97DCd97eC945f40cF65F87097ACe5EA0476045"

	// Base64 del cursor vacío — última página en endpoints paginados del CLOB
	endCursor = "LTE="
)

var (
	balanceOfABI     abi.ABI
	balanceOfERC1155 abi.ABI
)

func init() {
	var err error
	balanceOfABI, err = abi.JSON(strings.NewReader(`[{
		"name":"balanceOf","type":"function",
		"inputs":[{"name":"account","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}]
	}]`))
	if err != nil {
		panic("balanceOf abi: " + err.Error())
	}
	balanceOfERC1155, err = abi.JSON(strings.NewReader(`[{
		"name":"balanceOf","type":"function",
		"inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],
		"outputs":[{"name":"","type":"uint256"}]
	}]`))
	if err != nil {
		panic("balanceOf erc1155 abi: " + err.Error())
	}
}

// TradingClient implementa ports.OrderExecutor y ports.MarketData.
// rpcClient es opcional: sin él las lecturas on-chain devuelven error
// y el resto de operaciones funciona igual.
type TradingClient struct {
	auth      *AuthClient
	rpcClient *ethclient.Client
}

// NewTradingClient crea un TradingClient. rpcURL puede estar vacío si no
// se necesitan los balances on-chain (solo ground truth de arranque).
func NewTradingClient(auth *AuthClient, rpcURL string) (*TradingClient, error) {
	tc := &TradingClient{auth: auth}
	if rpcURL != "" {
		rpc, err := ethclient.Dial(rpcURL)
		if err != nil {
			return nil, fmt.Errorf("trading: dial rpc: %w", err)
		}
		tc.rpcClient = rpc
	}
	return tc, nil
}

// Address devuelve la dirección de la wallet.
func (tc *TradingClient) Address() string {
	return tc.auth.Address()
}

// Connect deriva las credenciales L2. Llamar una vez al arrancar.
func (tc *TradingClient) Connect(ctx context.Context) error {
	return tc.auth.EnsureCreds(ctx)
}

// FetchOrderBooks delega en el client base (endpoint público).
func (tc *TradingClient) FetchOrderBooks(ctx context.Context, tokenIDs []string) (map[string]domain.OrderBook, error) {
	return tc.auth.FetchOrderBooks(ctx, tokenIDs)
}

// PlaceOrder signs and submits a GTC limit order to the CLOB.
func (tc *TradingClient) PlaceOrder(ctx context.Context, req domain.PlaceOrderRequest) (domain.PlacedOrder, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return domain.PlacedOrder{}, tc.placementErr(req, fmt.Errorf("creds: %w", err))
	}

	signed, err := tc.auth.buildSignedOrder(req.TokenID, req.Side, req.Price, req.Size, req.NegRisk)
	if err != nil {
		return domain.PlacedOrder{}, tc.placementErr(req, fmt.Errorf("sign: %w", err))
	}

	body := clobOrderRequest{
		Order: clobOrderBody{
			Salt:          json.Number(signed.Order.Salt.String()),
			Maker:         signed.Order.Maker.Hex(),
			Signer:        signed.Order.Signer.Hex(),
			Taker:         signed.Order.Taker.Hex(),
			TokenID:       req.TokenID,
			MakerAmount:   signed.Order.MakerAmount.String(),
			TakerAmount:   signed.Order.TakerAmount.String(),
			Expiration:    signed.Order.Expiration.String(),
			Nonce:         signed.Order.Nonce.String(),
			FeeRateBps:    signed.Order.FeeRateBps.String(),
			Side:          string(req.Side),
			SignatureType: int(signed.Order.SignatureType.Int64()),
			Signature:     "0x" + hex.EncodeToString(signed.Signature),
		},
		Owner:     tc.auth.creds.APIKey,
		OrderType: "GTC",
	}

	var resp clobOrderResponse
	if err := tc.auth.doL2(ctx, http.MethodPost, "/order", body, &resp); err != nil {
		return domain.PlacedOrder{}, tc.placementErr(req, fmt.Errorf("post: %w", err))
	}

	if !resp.Success || resp.ErrorMsg != "" {
		return domain.PlacedOrder{}, tc.placementErr(req, fmt.Errorf("clob rejected: %s", resp.ErrorMsg))
	}

	return domain.PlacedOrder{
		OrderID:     resp.OrderID,
		Status:      resp.Status,
		TakenAmount: parseUSDC(resp.TakingAmount),
		MadeAmount:  parseUSDC(resp.MakingAmount),
	}, nil
}

func (tc *TradingClient) placementErr(req domain.PlaceOrderRequest, err error) error {
	return &ports.PlacementError{
		TokenID: req.TokenID,
		Side:    req.Side,
		Price:   req.Price,
		Err:     err,
	}
}

// CancelMarketOrders cancela todas las órdenes vivas del wallet en el
// mercado dado y devuelve cuántas canceló el venue.
func (tc *TradingClient) CancelMarketOrders(ctx context.Context, conditionID string) (int, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return 0, &ports.CancelError{ConditionID: conditionID, Err: fmt.Errorf("creds: %w", err)}
	}

	var resp cancelMarketResponse
	body := cancelMarketBody{Market: conditionID}
	if err := tc.auth.doL2(ctx, http.MethodDelete, "/cancel-market-orders", body, &resp); err != nil {
		return 0, &ports.CancelError{ConditionID: conditionID, Err: err}
	}

	if len(resp.NotCanceled) > 0 {
		// El siguiente ciclo relee las órdenes vivas y reconverge
		slog.Warn("some orders could not be cancelled",
			"market", conditionID,
			"count", len(resp.NotCanceled),
		)
	}
	return len(resp.Canceled), nil
}

// GetOpenOrders devuelve las órdenes vivas del wallet en el mercado,
// paginando hasta agotar el cursor.
func (tc *TradingClient) GetOpenOrders(ctx context.Context, market domain.Market) ([]domain.OpenOrder, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return nil, fmt.Errorf("trading.GetOpenOrders: creds: %w", err)
	}

	var orders []domain.OpenOrder
	cursor := ""

	for {
		path := "/orders?market=" + url.QueryEscape(market.ConditionID)
		if cursor != "" {
			path += "&next_cursor=" + url.QueryEscape(cursor)
		}

		var resp clobOrdersResponse
		if err := tc.auth.doL2(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, fmt.Errorf("trading.GetOpenOrders: %w", err)
		}

		for _, o := range resp.Data {
			if order, ok := mapOpenOrder(o, market); ok {
				orders = append(orders, order)
			}
		}

		if resp.NextCursor == "" || resp.NextCursor == endCursor {
			break
		}
		cursor = resp.NextCursor
	}

	return orders, nil
}

// GetPositions devuelve los shares en cartera de cada lado del mercado
// usando el endpoint /balance-allowance con asset_type CONDITIONAL.
func (tc *TradingClient) GetPositions(ctx context.Context, market domain.Market) (domain.Positions, error) {
	if err := tc.auth.EnsureCreds(ctx); err != nil {
		return domain.Positions{}, fmt.Errorf("trading.GetPositions: creds: %w", err)
	}

	var pos domain.Positions
	for _, token := range market.Tokens {
		shares, err := tc.conditionalBalance(ctx, token.TokenID)
		if err != nil {
			return domain.Positions{}, fmt.Errorf("trading.GetPositions %s: %w", token.Outcome, err)
		}
		switch token.Outcome {
		case domain.OutcomeYes:
			pos.Yes = shares
		case domain.OutcomeNo:
			pos.No = shares
		}
	}
	return pos, nil
}

// conditionalBalance lee el balance de un conditional token vía API.
// La respuesta viene en unidades de 1e-6 shares.
func (tc *TradingClient) conditionalBalance(ctx context.Context, tokenID string) (float64, error) {
	path := "/balance-allowance?asset_type=CONDITIONAL&token_id=" + url.QueryEscape(tokenID)

	var resp clobBalanceResponse
	if err := tc.auth.doL2(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return parseUSDC(resp.Balance), nil
}

// CollateralBalance returns the on-chain USDC.e balance of the wallet.
func (tc *TradingClient) CollateralBalance(ctx context.Context) (float64, error) {
	if tc.rpcClient == nil {
		return 0, fmt.Errorf("trading.CollateralBalance: rpc not configured")
	}

	callData, err := balanceOfABI.Pack("balanceOf", tc.auth.address)
	if err != nil {
		return 0, fmt.Errorf("trading.CollateralBalance: pack: %w", err)
	}

	token := common.HexToAddress(usdcEAddress)
	result, err := tc.rpcClient.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: callData,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("trading.CollateralBalance: rpc call: %w", err)
	}

	vals, err := balanceOfABI.Unpack("balanceOf", result)
	if err != nil || len(vals) == 0 {
		return 0, fmt.Errorf("trading.CollateralBalance: unpack: %w", err)
	}

	raw := vals[0].(*big.Int)
	bal, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), new(big.Float).SetFloat64(1e6)).Float64()
	return bal, nil
}

// TokenBalance returns the on-chain ERC-1155 balance for a conditional token.
// Returns shares (not micro-units) — e.g. 13.51 means 13.51 shares. Used as
// ground truth against the API positions at startup.
func (tc *TradingClient) TokenBalance(ctx context.Context, tokenID string) (float64, error) {
	if tc.rpcClient == nil {
		return 0, fmt.Errorf("trading.TokenBalance: rpc not configured")
	}

	tid := new(big.Int)
	if _, ok := tid.SetString(tokenID, 10); !ok {
		tidBytes, err := hex.DecodeString(strings.TrimPrefix(tokenID, "0x"))
		if err != nil {
			return 0, fmt.Errorf("trading.TokenBalance: invalid token ID: %s", tokenID)
		}
		tid.SetBytes(tidBytes)
	}

	callData, err := balanceOfERC1155.Pack("balanceOf", tc.auth.address, tid)
	if err != nil {
		return 0, fmt.Errorf("trading.TokenBalance: pack: %w", err)
	}

	ctf := common.HexToAddress(ctfAddress)
	result, err := tc.rpcClient.CallContract(ctx, ethereum.CallMsg{
		To:   &ctf,
		Data: callData,
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("trading.TokenBalance: call: %w", err)
	}

	vals, err := balanceOfERC1155.Unpack("balanceOf", result)
	if err != nil || len(vals) == 0 {
		return 0, fmt.Errorf("trading.TokenBalance: unpack: %w", err)
	}

	raw := vals[0].(*big.Int)
	shares := new(big.Float).SetInt(raw)
	shares.Quo(shares, big.NewFloat(1e6))
	f, _ := shares.Float64()
	return f, nil
}

// mapOpenOrder convierte una orden del CLOB a domain.OpenOrder.
// Devuelve false si la orden ya no tiene tamaño restante o el side
// es irreconocible. Los tamaños del endpoint /orders son decimales
// planos en shares, no micro-units.
func mapOpenOrder(o clobOpenOrder, market domain.Market) (domain.OpenOrder, bool) {
	side, ok := domain.ParseSide(o.Side)
	if !ok {
		return domain.OpenOrder{}, false
	}

	remaining := parseFloat(o.OriginalSize) - parseFloat(o.SizeMatched)
	if remaining <= 0 {
		return domain.OpenOrder{}, false
	}

	outcome, ok := domain.ParseOutcome(o.Outcome)
	if !ok {
		outcome, ok = market.OutcomeOf(o.AssetID)
		if !ok {
			return domain.OpenOrder{}, false
		}
	}

	return domain.OpenOrder{
		OrderID:   o.ID,
		TokenID:   o.AssetID,
		Outcome:   outcome,
		Side:      side,
		Price:     parseFloat(o.Price),
		Size:      remaining,
		CreatedAt: parseTimestamp(o.CreatedAt),
	}, true
}

// parseUSDC converts a micro-unit string (e.g., "1000000") to a float.
func parseUSDC(s string) float64 {
	if s == "" {
		return 0
	}
	n := new(big.Int)
	n.SetString(s, 10)
	f, _ := new(big.Float).SetInt(n).Float64()
	return f / 1_000_000
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	var f float64
	fmt.Sscanf(s, "%f", &f)
	return f
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// Try parsing as int64 Unix timestamp
	var ts int64
	if _, err := fmt.Sscanf(s, "%d", &ts); err == nil && ts > 0 {
		if ts > 1e12 {
			return time.UnixMilli(ts).UTC()
		}
		return time.Unix(ts, 0).UTC()
	}
	// ISO 8601
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
