package maker

import (
	"github.com/alejandrodnm/makerbot/internal/domain"
)

// QuotePlan es el resultado del cálculo de quotes de un ciclo.
type QuotePlan struct {
	Quotes        []domain.Quote
	DistanceCents int
	BestBid       float64
	BestAsk       float64
}

// ComputeQuotes deriva las quotes objetivo a partir del book del lado
// cotizado y de la posición actual:
//
//   - BUY por (volume - pos) shares, distance céntimos por debajo del
//     best ask, solo si el tamaño llega al mínimo.
//   - SELL por pos shares, distance céntimos por encima del best bid,
//     solo si hay posición y llega al mínimo.
//
// distance es adaptativo: 1 céntimo con el spread ya cerrado, o
// spread/2 + 1 para plantarse dentro de un spread ancho sin cruzar al
// otro lado. Las cuentas van en céntimos enteros para no arrastrar
// ruido de coma flotante.
//
// Si falta un lado del book devuelve ok = false: toca esperar al
// siguiente ciclo, no es un error.
func ComputeQuotes(book domain.OrderBook, pos, volume, minAmount float64) (QuotePlan, bool) {
	bid := book.BestBid()
	ask := book.BestAsk()
	if bid == 0 || ask == 0 {
		return QuotePlan{}, false
	}

	spreadCents := domain.PriceCents(ask) - domain.PriceCents(bid)
	distanceCents := 1
	if spreadCents > 1 {
		distanceCents = spreadCents/2 + 1
	}
	distance := float64(distanceCents) / 100

	plan := QuotePlan{
		DistanceCents: distanceCents,
		BestBid:       bid,
		BestAsk:       ask,
	}

	if buySize := volume - pos; buySize >= minAmount {
		plan.Quotes = append(plan.Quotes, domain.Quote{
			Side:  domain.SideBuy,
			Price: domain.ClampPrice(domain.RoundToCent(ask - distance)),
			Size:  buySize,
		})
	}
	if pos > 0 && pos >= minAmount {
		plan.Quotes = append(plan.Quotes, domain.Quote{
			Side:  domain.SideSell,
			Price: domain.ClampPrice(domain.RoundToCent(bid + distance)),
			Size:  pos,
		})
	}
	return plan, true
}
