package maker

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/alejandrodnm/makerbot/internal/domain"
)

// hedgeEpsilon marca cuándo dos posiciones se consideran iguales.
const hedgeEpsilon = 0.0001

// hedge equilibra el inventario comprando el outcome ligero hasta
// igualar el pesado. El precio objetivo es el complemento del ask del
// lado pesado: pagando como mucho 1 - askMajor por el ligero, el par
// completo cuesta <= 1.00 y garantiza el payout del mercado.
//
// Devuelve cuántas órdenes colocó. No poder hacer hedge (book vacío,
// imbalance por debajo del mínimo del venue, orden ya en vuelo) no es
// un error: se loggea y se reintenta al ciclo siguiente.
func (e *Engine) hedge(ctx context.Context, pos domain.Positions, books map[string]domain.OrderBook) (int, error) {
	if pos.Balanced(hedgeEpsilon) {
		slog.Debug("inventory balanced", "yes", pos.Yes, "no", pos.No)
		return 0, nil
	}

	major := pos.Heavier()
	minor := major.Opposite()
	diff := math.Abs(pos.Imbalance())

	askMajor := books[e.market.TokenFor(major).TokenID].BestAsk()
	minorToken := e.market.TokenFor(minor)
	askMinor := books[minorToken.TokenID].BestAsk()
	if askMajor == 0 || askMinor == 0 {
		slog.Warn("order book data missing, cannot hedge now",
			"ask_major", askMajor, "ask_minor", askMinor)
		return 0, nil
	}

	target := domain.RoundToCent(1 - askMajor)
	deltaCents := domain.PriceCents(askMinor) - domain.PriceCents(target)
	slog.Info("inventory imbalance",
		"major", major, "minor", minor, "diff", diff,
		"target_price", target, "delta_cents", deltaCents)

	if diff < e.market.MinOrderSize {
		slog.Info("imbalance below venue minimum, skipping hedge",
			"diff", diff, "min_size", e.market.MinOrderSize)
		return 0, nil
	}

	// Releer las órdenes vivas: el reconcile de este mismo ciclo puede
	// haber dejado ya una compra del lado ligero en el book.
	open, err := e.data.GetOpenOrders(ctx, e.market)
	if err != nil {
		return 0, fmt.Errorf("maker.hedge: open orders: %w", err)
	}
	for _, o := range open {
		if o.Side == domain.SideBuy && o.Outcome == minor {
			slog.Info("buy order for light side already open, skipping hedge",
				"minor", minor, "price", o.Price, "size", o.Size)
			return 0, nil
		}
	}

	price := domain.ClampPrice(domain.RoundToCent(askMinor - float64(deltaCents)/100))
	req := domain.PlaceOrderRequest{
		TokenID:     minorToken.TokenID,
		ConditionID: e.market.ConditionID,
		Outcome:     minor,
		Side:        domain.SideBuy,
		Price:       price,
		Size:        diff,
		NegRisk:     e.market.NegRisk,
	}
	rec := domain.OrderRecord{
		ConditionID: e.market.ConditionID,
		TokenID:     minorToken.TokenID,
		Outcome:     minor,
		Side:        domain.SideBuy,
		Price:       price,
		Size:        diff,
		PlacedAt:    e.clock.Now(),
	}

	placed, err := e.executor.PlaceOrder(ctx, req)
	if err != nil {
		slog.Error("hedge placement failed", "outcome", minor, "price", price, "size", diff, "err", err)
		rec.Status = "rejected: " + err.Error()
		e.recordOrder(ctx, rec)
		return 0, nil
	}
	slog.Info("hedge order placed",
		"outcome", minor, "price", price, "size", diff,
		"order_id", placed.OrderID, "status", placed.Status)
	rec.CLOBOrderID = placed.OrderID
	rec.Status = placed.Status
	e.recordOrder(ctx, rec)
	return 1, nil
}
