package polymarket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/alejandrodnm/makerbot/internal/adapters/polymarket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(clobSrv, gammaSrv *httptest.Server) *polymarket.Client {
	clobURL := ""
	gammaURL := ""
	if clobSrv != nil {
		clobURL = clobSrv.URL
	}
	if gammaSrv != nil {
		gammaURL = gammaSrv.URL
	}
	return polymarket.NewClient(clobURL, gammaURL)
}

func TestFetchClobMarket_Success(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/clob_market.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/markets/0xabc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)
	m, err := client.FetchClobMarket(context.Background(), "0xabc123")

	require.NoError(t, err)
	assert.Equal(t, "0xabc123", m.ConditionID)
	assert.Equal(t, "Will the Lakers win the 2026 NBA Finals?", m.Question)
	assert.True(t, m.Active)
	assert.False(t, m.Closed)
	assert.False(t, m.NegRisk)
	assert.InDelta(t, 5.0, m.MinOrderSize, 0.001)
	assert.InDelta(t, 0.01, m.TickSize, 0.0001)
	assert.InDelta(t, 25.5, m.Rewards.DailyRate, 0.001)
	assert.InDelta(t, 3.5, m.Rewards.MaxSpread, 0.0001)
	assert.InDelta(t, 10.0, m.Rewards.MinSize, 0.001)

	assert.Equal(t, "token_yes_001", m.YesToken().TokenID)
	assert.Equal(t, "token_no_001", m.NoToken().TokenID)
	assert.Equal(t, 2026, m.EndDate.Year())
}

func TestFetchClobMarket_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// El CLOB devuelve 200 con body vacío para condition ids desconocidos
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)
	_, err := client.FetchClobMarket(context.Background(), "0xdoesnotexist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFetchClobMarket_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)
	_, err := client.FetchClobMarket(context.Background(), "0xabc123")
	assert.Error(t, err)
}

func TestFetchOrderBooks_Batch(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/clob_orderbooks_batch.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/books", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)
	books, err := client.FetchOrderBooks(context.Background(), []string{"token_yes_001", "token_no_001"})

	require.NoError(t, err)
	require.Len(t, books, 2)

	yesBook, ok := books["token_yes_001"]
	require.True(t, ok)
	assert.Equal(t, "token_yes_001", yesBook.TokenID)
	assert.InDelta(t, 0.40, yesBook.BestBid(), 0.001, "bids deben quedar ordenados mayor a menor")
	assert.InDelta(t, 0.46, yesBook.BestAsk(), 0.001, "asks deben quedar ordenados menor a mayor")
	assert.InDelta(t, 0.43, yesBook.Midpoint(), 0.001)

	noBook, ok := books["token_no_001"]
	require.True(t, ok)
	assert.InDelta(t, 0.52, noBook.BestBid(), 0.001)
	assert.InDelta(t, 0.58, noBook.BestAsk(), 0.001)
}

func TestFetchOrderBooks_BatchSplitting(t *testing.T) {
	callCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		// Devuelve array vacío para simplificar
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)

	// 25 token_ids → debe hacer 2 requests (batch de 20 + batch de 5)
	tokenIDs := make([]string, 25)
	for i := range tokenIDs {
		tokenIDs[i] = "token_" + string(rune('a'+i%26))
	}

	_, err := client.FetchOrderBooks(context.Background(), tokenIDs)
	require.NoError(t, err)
	assert.Equal(t, 2, callCount, "debe hacer 2 requests batch para 25 tokens")
}

func TestFetchOrderBooks_EmptyInput(t *testing.T) {
	client := newTestClient(nil, nil)
	books, err := client.FetchOrderBooks(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, books)
}
