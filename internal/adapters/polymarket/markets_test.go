package polymarket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newResolverServers levanta un CLOB y un Gamma fake con las fixtures.
func newResolverServers(t *testing.T) (*httptest.Server, *httptest.Server) {
	t.Helper()

	clobData, err := os.ReadFile("../../../testdata/fixtures/clob_market.json")
	require.NoError(t, err)
	gammaData, err := os.ReadFile("../../../testdata/fixtures/gamma_markets.json")
	require.NoError(t, err)

	clobSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/markets/0xabc123" {
			w.Write(clobData)
			return
		}
		w.Write([]byte(`{}`))
	}))

	var gammaArr []json.RawMessage
	require.NoError(t, json.Unmarshal(gammaData, &gammaArr))
	require.NotEmpty(t, gammaArr)

	gammaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("condition_ids") == "0xabc123" {
			// Solo el primer mercado de la fixture
			w.Write([]byte(`[`))
			w.Write(gammaArr[0])
			w.Write([]byte(`]`))
			return
		}
		w.Write(gammaData)
	}))

	t.Cleanup(func() {
		clobSrv.Close()
		gammaSrv.Close()
	})
	return clobSrv, gammaSrv
}

func TestResolveMarket_ByConditionID(t *testing.T) {
	clobSrv, gammaSrv := newResolverServers(t)
	client := newTestClient(clobSrv, gammaSrv)

	m, err := client.ResolveMarket(context.Background(), "0xabc123")
	require.NoError(t, err)

	assert.Equal(t, "0xabc123", m.ConditionID)
	assert.Equal(t, "token_yes_001", m.YesToken().TokenID)
	assert.Equal(t, "token_no_001", m.NoToken().TokenID)
	assert.InDelta(t, 5.0, m.MinOrderSize, 0.001)
	// Metadata de Gamma aplicada encima
	assert.Equal(t, "253591", m.GammaID)
	assert.InDelta(t, 48123.55, m.Volume24h, 0.01)
}

func TestResolveMarket_BySlug(t *testing.T) {
	clobSrv, gammaSrv := newResolverServers(t)
	client := newTestClient(clobSrv, gammaSrv)

	m, err := client.ResolveMarket(context.Background(), "will-the-lakers-win-the-2026-nba-finals")
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", m.ConditionID)
}

func TestResolveMarket_ByGammaID(t *testing.T) {
	clobSrv, gammaSrv := newResolverServers(t)
	client := newTestClient(clobSrv, gammaSrv)

	m, err := client.ResolveMarket(context.Background(), "253591")
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", m.ConditionID)
}

func TestResolveMarket_UnknownRef(t *testing.T) {
	clobSrv, gammaSrv := newResolverServers(t)
	client := newTestClient(clobSrv, gammaSrv)

	_, err := client.ResolveMarket(context.Background(), "no-such-market-slug")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no market matches")
}

func TestResolveMarket_EmptyRef(t *testing.T) {
	client := newTestClient(nil, nil)
	_, err := client.ResolveMarket(context.Background(), "   ")
	require.Error(t, err)
}

func TestResolveMarket_GammaDownStillResolves(t *testing.T) {
	clobData, err := os.ReadFile("../../../testdata/fixtures/clob_market.json")
	require.NoError(t, err)

	clobSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(clobData)
	}))
	defer clobSrv.Close()

	gammaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer gammaSrv.Close()

	client := newTestClient(clobSrv, gammaSrv)

	// El enriquecimiento falla pero el mercado del CLOB basta para operar
	m, err := client.ResolveMarket(context.Background(), "0xabc123")
	require.NoError(t, err)
	assert.Equal(t, "0xabc123", m.ConditionID)
	assert.Empty(t, m.GammaID)
}

func TestResolveMarket_ClosedMarket(t *testing.T) {
	clobSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"condition_id": "0xclosed",
			"closed": true,
			"tokens": [
				{"token_id": "t1", "outcome": "Yes"},
				{"token_id": "t2", "outcome": "No"}
			]
		}`))
	}))
	defer clobSrv.Close()

	gammaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer gammaSrv.Close()

	client := newTestClient(clobSrv, gammaSrv)
	_, err := client.ResolveMarket(context.Background(), "0xclosed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}
