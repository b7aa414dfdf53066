package maker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/makerbot/internal/domain"
)

// ReconcileResult resume lo que el reconcile hizo con el book en un ciclo.
type ReconcileResult struct {
	Satisfied bool
	Cancelled int
	Placed    int
	Failed    int
}

// hasQuote busca una orden viva con el mismo lado y precio (al céntimo).
// El tamaño queda fuera a propósito: un partial fill no debe disparar un
// replace de todo el book.
func hasQuote(open []domain.OpenOrder, q domain.Quote) bool {
	for _, o := range open {
		if o.Side == q.Side && domain.PriceCents(o.Price) == domain.PriceCents(q.Price) {
			return true
		}
	}
	return false
}

// reconcile compara las quotes deseadas con las órdenes vivas. Si todas
// están ya en el book no toca nada: cancelar y recolocar sin necesidad
// pierde prioridad de cola. Si falta alguna, cancela todas las órdenes
// del mercado y recoloca el set completo desde cero.
//
// Un fallo colocando una quote se registra y se sigue con las demás; un
// fallo del cancel sweep sí aborta, el siguiente ciclo vuelve a mirar
// qué quedó vivo.
func (e *Engine) reconcile(ctx context.Context, quotes []domain.Quote, open []domain.OpenOrder) (ReconcileResult, error) {
	satisfied := true
	for _, q := range quotes {
		found := hasQuote(open, q)
		if !found {
			satisfied = false
		}
		slog.Debug("quote check", "side", q.Side, "price", q.Price, "in_book", found)
	}
	if satisfied {
		slog.Info("orders already at target prices", "open", len(open))
		return ReconcileResult{Satisfied: true}, nil
	}

	var res ReconcileResult
	cancelled, err := e.executor.CancelMarketOrders(ctx, e.market.ConditionID)
	res.Cancelled = cancelled
	if err != nil {
		return res, fmt.Errorf("maker.reconcile: cancel sweep: %w", err)
	}
	if cancelled > 0 {
		slog.Info("stale orders cancelled", "count", cancelled)
	}

	token := e.market.TokenFor(e.cfg.QuoteOutcome)
	for _, q := range quotes {
		req := domain.PlaceOrderRequest{
			TokenID:     token.TokenID,
			ConditionID: e.market.ConditionID,
			Outcome:     e.cfg.QuoteOutcome,
			Side:        q.Side,
			Price:       q.Price,
			Size:        q.Size,
			NegRisk:     e.market.NegRisk,
		}
		rec := domain.OrderRecord{
			ConditionID: e.market.ConditionID,
			TokenID:     token.TokenID,
			Outcome:     e.cfg.QuoteOutcome,
			Side:        q.Side,
			Price:       q.Price,
			Size:        q.Size,
			PlacedAt:    e.clock.Now(),
		}

		placed, err := e.executor.PlaceOrder(ctx, req)
		if err != nil {
			slog.Error("order placement failed", "side", q.Side, "price", q.Price, "size", q.Size, "err", err)
			rec.Status = "rejected: " + err.Error()
			e.recordOrder(ctx, rec)
			res.Failed++
			continue
		}
		slog.Info("order placed",
			"side", q.Side, "price", q.Price, "size", q.Size,
			"order_id", placed.OrderID, "status", placed.Status)
		rec.CLOBOrderID = placed.OrderID
		rec.Status = placed.Status
		e.recordOrder(ctx, rec)
		res.Placed++
	}
	return res, nil
}
