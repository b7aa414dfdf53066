package polymarket_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/makerbot/internal/adapters/polymarket"
	"github.com/alejandrodnm/makerbot/internal/domain"
	"github.com/alejandrodnm/makerbot/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Key de test conocida (cuenta #0 de las herramientas de desarrollo de Ethereum).
const (
	testPrivKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	// "test-secret" en base64 URL-safe
	testCredsJSON = `{"apiKey":"key-001","secret":"dGVzdC1zZWNyZXQ=","passphrase":"pass-001"}`
)

// newTradingClient levanta un CLOB fake que sirve derive-api-key y delega
// el resto de paths en handler.
func newTradingClient(t *testing.T, handler http.HandlerFunc) *polymarket.TradingClient {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/derive-api-key" {
			assert.Equal(t, testAddress, r.Header.Get("POLY_ADDRESS"))
			assert.True(t, strings.HasPrefix(r.Header.Get("POLY_SIGNATURE"), "0x"))
			assert.Len(t, r.Header.Get("POLY_SIGNATURE"), 132, "firma L1: 65 bytes en hex con prefijo")
			assert.Equal(t, "0", r.Header.Get("POLY_NONCE"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(testCredsJSON))
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	auth, err := polymarket.NewAuthClient(srv.URL, srv.URL, testPrivKey)
	require.NoError(t, err)

	tc, err := polymarket.NewTradingClient(auth, "")
	require.NoError(t, err)
	return tc
}

func testMarket() domain.Market {
	return domain.Market{
		ConditionID:  "0xabc123",
		MinOrderSize: 5,
		TickSize:     0.01,
		Tokens: [2]domain.Token{
			{TokenID: "token_yes_001", Outcome: domain.OutcomeYes},
			{TokenID: "token_no_001", Outcome: domain.OutcomeNo},
		},
	}
}

// orderBodyEnvelope refleja el JSON que el CLOB recibe en POST /order.
type orderBodyEnvelope struct {
	Order struct {
		Salt          json.Number `json:"salt"`
		Maker         string      `json:"maker"`
		Signer        string      `json:"signer"`
		Taker         string      `json:"taker"`
		TokenID       string      `json:"tokenId"`
		MakerAmount   string      `json:"makerAmount"`
		TakerAmount   string      `json:"takerAmount"`
		Side          string      `json:"side"`
		SignatureType int         `json:"signatureType"`
		Signature     string      `json:"signature"`
	} `json:"order"`
	Owner     string `json:"owner"`
	OrderType string `json:"orderType"`
}

func TestPlaceOrder_BuyAmounts(t *testing.T) {
	var got orderBodyEnvelope

	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order", r.URL.Path)
		assert.Equal(t, "key-001", r.Header.Get("POLY_API_KEY"))
		assert.Equal(t, "pass-001", r.Header.Get("POLY_PASSPHRASE"))
		assert.NotEmpty(t, r.Header.Get("POLY_SIGNATURE"))

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"orderID":"0xorder-new","status":"live","makingAmount":"16800000","takingAmount":""}`))
	})

	placed, err := tc.PlaceOrder(context.Background(), domain.PlaceOrderRequest{
		TokenID:     "token_no_001",
		ConditionID: "0xabc123",
		Outcome:     domain.OutcomeNo,
		Side:        domain.SideBuy,
		Price:       0.42,
		Size:        40,
	})
	require.NoError(t, err)

	assert.Equal(t, "0xorder-new", placed.OrderID)
	assert.Equal(t, "live", placed.Status)
	assert.InDelta(t, 16.8, placed.MadeAmount, 0.0001)
	assert.InDelta(t, 0.0, placed.TakenAmount, 0.0001)

	// BUY de 40 shares a 0.42: maker = 16.80 USDC, taker = 40 shares (1e-6)
	assert.Equal(t, "16800000", got.Order.MakerAmount)
	assert.Equal(t, "40000000", got.Order.TakerAmount)
	assert.Equal(t, "BUY", got.Order.Side)
	assert.Equal(t, "token_no_001", got.Order.TokenID)
	assert.Equal(t, testAddress, got.Order.Maker)
	assert.Equal(t, testAddress, got.Order.Signer)
	assert.Equal(t, "0x0000000000000000000000000000000000000000", got.Order.Taker)
	assert.Equal(t, 0, got.Order.SignatureType, "EOA")
	assert.True(t, strings.HasPrefix(got.Order.Signature, "0x"))
	assert.NotEmpty(t, got.Order.Salt.String())
	assert.Equal(t, "key-001", got.Owner)
	assert.Equal(t, "GTC", got.OrderType)
}

func TestPlaceOrder_SellAmounts(t *testing.T) {
	var got orderBodyEnvelope

	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"orderID":"0xorder-sell","status":"live"}`))
	})

	_, err := tc.PlaceOrder(context.Background(), domain.PlaceOrderRequest{
		TokenID: "token_no_001",
		Outcome: domain.OutcomeNo,
		Side:    domain.SideSell,
		Price:   0.54,
		Size:    30,
	})
	require.NoError(t, err)

	// SELL de 30 shares a 0.54: maker = 30 shares, taker = 16.20 USDC
	assert.Equal(t, "30000000", got.Order.MakerAmount)
	assert.Equal(t, "16200000", got.Order.TakerAmount)
	assert.Equal(t, "SELL", got.Order.Side)
}

func TestPlaceOrder_SubCentPrice(t *testing.T) {
	var got orderBodyEnvelope

	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"orderID":"0xorder-tick","status":"live"}`))
	})

	_, err := tc.PlaceOrder(context.Background(), domain.PlaceOrderRequest{
		TokenID: "token_yes_001",
		Outcome: domain.OutcomeYes,
		Side:    domain.SideBuy,
		Price:   0.425,
		Size:    40,
	})
	require.NoError(t, err)

	// Tick 0.001: la aritmética entera sigue siendo exacta
	assert.Equal(t, "17000000", got.Order.MakerAmount)
	assert.Equal(t, "40000000", got.Order.TakerAmount)
}

func TestPlaceOrder_CLOBRejection(t *testing.T) {
	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"errorMsg":"not enough balance / allowance"}`))
	})

	_, err := tc.PlaceOrder(context.Background(), domain.PlaceOrderRequest{
		TokenID: "token_no_001",
		Outcome: domain.OutcomeNo,
		Side:    domain.SideBuy,
		Price:   0.42,
		Size:    40,
	})
	require.Error(t, err)

	var pErr *ports.PlacementError
	require.True(t, errors.As(err, &pErr), "debe envolver PlacementError")
	assert.Equal(t, "token_no_001", pErr.TokenID)
	assert.Equal(t, domain.SideBuy, pErr.Side)
	assert.Contains(t, err.Error(), "not enough balance")
}

func TestCancelMarketOrders(t *testing.T) {
	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/cancel-market-orders", r.URL.Path)

		var body struct {
			Market string `json:"market"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0xabc123", body.Market)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"canceled":["0xorder001","0xorder002"],"not_canceled":{}}`))
	})

	n, err := tc.CancelMarketOrders(context.Background(), "0xabc123")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCancelMarketOrders_Error(t *testing.T) {
	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid market"}`))
	})

	_, err := tc.CancelMarketOrders(context.Background(), "0xbad")
	require.Error(t, err)

	var cErr *ports.CancelError
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, "0xbad", cErr.ConditionID)
}

func TestGetOpenOrders(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/clob_open_orders.json")
	require.NoError(t, err)

	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "0xabc123", r.URL.Query().Get("market"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	orders, err := tc.GetOpenOrders(context.Background(), testMarket())
	require.NoError(t, err)

	// La orden completamente matched se descarta
	require.Len(t, orders, 2)

	assert.Equal(t, "0xorder001", orders[0].OrderID)
	assert.Equal(t, domain.SideBuy, orders[0].Side)
	assert.Equal(t, domain.OutcomeNo, orders[0].Outcome)
	assert.InDelta(t, 0.42, orders[0].Price, 0.0001)
	assert.InDelta(t, 40.0, orders[0].Size, 0.001)

	assert.Equal(t, domain.SideSell, orders[1].Side)
	assert.InDelta(t, 17.5, orders[1].Size, 0.001, "size restante = original - matched")
}

func TestGetOpenOrders_Paginates(t *testing.T) {
	page := 0
	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if page == 0 {
			assert.Empty(t, r.URL.Query().Get("next_cursor"))
			w.Write([]byte(`{"data":[{"id":"0xo1","asset_id":"token_yes_001","market":"0xabc123","side":"BUY","original_size":"10","size_matched":"0","price":"0.40","outcome":"Yes","created_at":"1756100000"}],"next_cursor":"NTA="}`))
		} else {
			assert.Equal(t, "NTA=", r.URL.Query().Get("next_cursor"))
			w.Write([]byte(`{"data":[{"id":"0xo2","asset_id":"token_no_001","market":"0xabc123","side":"BUY","original_size":"15","size_matched":"0","price":"0.50","outcome":"No","created_at":"1756100100"}],"next_cursor":"LTE="}`))
		}
		page++
	})

	orders, err := tc.GetOpenOrders(context.Background(), testMarket())
	require.NoError(t, err)
	assert.Equal(t, 2, page, "debe pedir las dos páginas")
	require.Len(t, orders, 2)
	assert.Equal(t, "0xo2", orders[1].OrderID)
}

func TestGetPositions(t *testing.T) {
	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/balance-allowance", r.URL.Path)
		assert.Equal(t, "CONDITIONAL", r.URL.Query().Get("asset_type"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("token_id") == "token_yes_001" {
			w.Write([]byte(`{"balance":"30000000"}`))
		} else {
			w.Write([]byte(`{"balance":"0"}`))
		}
	})

	pos, err := tc.GetPositions(context.Background(), testMarket())
	require.NoError(t, err)
	assert.InDelta(t, 30.0, pos.Yes, 0.001)
	assert.InDelta(t, 0.0, pos.No, 0.001)
}

func TestGetRecentTrades(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/clob_trades.json")
	require.NoError(t, err)

	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/trades", r.URL.Path)
		assert.Equal(t, "0xabc123", r.URL.Query().Get("market"))
		assert.NotEmpty(t, r.URL.Query().Get("after"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	trades, err := tc.GetRecentTrades(context.Background(), testMarket(), 2*time.Minute)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, "trade-001", trades[0].ID)
	assert.Equal(t, domain.SideBuy, trades[0].Side)
	assert.Equal(t, domain.OutcomeNo, trades[0].Outcome)
	assert.InDelta(t, 25.0, trades[0].Size, 0.001)
	assert.InDelta(t, 0.42, trades[0].Price, 0.0001)
	assert.Equal(t, int64(1756100500), trades[0].Timestamp.Unix())

	assert.Equal(t, domain.SideSell, trades[1].Side)
}

func TestCollateralBalance_NoRPC(t *testing.T) {
	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := tc.CollateralBalance(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc not configured")

	_, err = tc.TokenBalance(context.Background(), "123")
	require.Error(t, err)
}

func TestTradingClient_Address(t *testing.T) {
	tc := newTradingClient(t, func(w http.ResponseWriter, r *http.Request) {})
	assert.Equal(t, testAddress, tc.Address())
}
