package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/makerbot/internal/domain"
)

// MarketData agrupa las lecturas del venue que el maker necesita en cada ciclo.
type MarketData interface {
	// FetchOrderBooks devuelve los orderbooks para los token_ids dados.
	// Un book con un lado vacío se devuelve tal cual — no es un error.
	FetchOrderBooks(ctx context.Context, tokenIDs []string) (map[string]domain.OrderBook, error)

	// GetPositions devuelve los shares en cartera de cada lado del mercado.
	GetPositions(ctx context.Context, market domain.Market) (domain.Positions, error)

	// GetOpenOrders devuelve las órdenes vivas del wallet en el mercado dado.
	GetOpenOrders(ctx context.Context, market domain.Market) ([]domain.OpenOrder, error)

	// GetRecentTrades devuelve los fills de nuestras órdenes en el mercado
	// dentro de la ventana dada.
	GetRecentTrades(ctx context.Context, market domain.Market, window time.Duration) ([]domain.Trade, error)
}
