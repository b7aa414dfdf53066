package maker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/makerbot/internal/domain"
	"github.com/alejandrodnm/makerbot/internal/ports"
)

// FillNotifier convierte fills recientes en alertas de una línea,
// deduplicando por trade ID durante la vida del proceso.
type FillNotifier struct {
	notifier ports.Notifier
	ledger   ports.Ledger
	seen     map[string]struct{}
}

func NewFillNotifier(notifier ports.Notifier, ledger ports.Ledger) *FillNotifier {
	return &FillNotifier{
		notifier: notifier,
		ledger:   ledger,
		seen:     make(map[string]struct{}),
	}
}

// Notify procesa cada trade no visto: manda la alerta, lo apunta en el
// ledger y lo marca como visto. Devuelve cuántos trades nuevos procesó.
//
// Un fallo del canal de alertas se loggea y el trade queda marcado
// igualmente: mejor perder una alerta que repetirla cada ciclo.
func (f *FillNotifier) Notify(ctx context.Context, trades []domain.Trade) int {
	processed := 0
	for _, t := range trades {
		if _, ok := f.seen[t.ID]; ok {
			continue
		}
		msg := summarizeFill(t)
		slog.Info("fill detected", "trade_id", t.ID, "summary", msg)
		if err := f.notifier.Send(ctx, msg); err != nil {
			slog.Warn("fill alert delivery failed", "trade_id", t.ID, "err", err)
		}
		f.seen[t.ID] = struct{}{}
		if f.ledger != nil {
			if err := f.ledger.RecordFill(ctx, t); err != nil {
				slog.Warn("ledger error", "err", err)
			}
		}
		processed++
	}
	return processed
}

// summarizeFill formatea "Sold 40 No at 42c". El verbo va invertido a
// propósito: el side del trade es el del taker que cruzó contra
// nosotros, nuestra acción como maker es la contraria.
func summarizeFill(t domain.Trade) string {
	action := "Bought"
	if t.Side == domain.SideBuy {
		action = "Sold"
	}
	return fmt.Sprintf("%s %.0f %s at %dc", action, t.Size, t.Outcome, domain.PriceCents(t.Price))
}
