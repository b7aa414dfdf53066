// Package maker implementa el loop de market making sobre un único
// mercado binario: cotiza un lado, reconcilia el book del wallet contra
// las quotes objetivo, cubre el inventario y avisa de los fills.
package maker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/makerbot/internal/domain"
	"github.com/alejandrodnm/makerbot/internal/ports"
)

// Config controla el comportamiento del engine sobre un mercado.
type Config struct {
	Volume       float64        // techo de inventario en shares
	MinAmount    float64        // clip mínimo por quote
	Interval     time.Duration  // pausa entre ciclos
	QuoteOutcome domain.Outcome // lado que el bot cotiza
	TradeWindow  time.Duration  // ventana del poll de fills
	Hedging      bool
	Clock        Clock // nil = reloj de pared
}

// Engine es el orquestador del loop de quoting. Cada ciclo observa el
// estado (posiciones, books, órdenes vivas), decide las quotes y actúa
// a través de los ports inyectados.
type Engine struct {
	cfg      Config
	market   domain.Market
	data     ports.MarketData
	executor ports.OrderExecutor
	fills    *FillNotifier
	ledger   ports.Ledger
	clock    Clock
}

// New crea un Engine con todas las dependencias inyectadas. El ledger
// puede ser nil: el engine opera igual y solo pierde el histórico.
func New(cfg Config, market domain.Market, data ports.MarketData, executor ports.OrderExecutor, notifier ports.Notifier, ledger ports.Ledger) *Engine {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.TradeWindow <= 0 {
		cfg.TradeWindow = 2 * time.Minute
	}
	if cfg.QuoteOutcome == "" {
		cfg.QuoteOutcome = domain.OutcomeNo
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	return &Engine{
		cfg:      cfg,
		market:   market,
		data:     data,
		executor: executor,
		fills:    NewFillNotifier(notifier, ledger),
		ledger:   ledger,
		clock:    clock,
	}
}

// Run ejecuta el loop de quoting hasta agotar workFor o hasta que el
// contexto se cancele.
func (e *Engine) Run(ctx context.Context, workFor time.Duration) error {
	return e.loop(ctx, workFor, "quote", e.RunOnce)
}

// Watch ejecuta solo la mitad pasiva del loop: poll de trades recientes
// y alertas de fills. No cotiza, no cancela y no hace hedge.
func (e *Engine) Watch(ctx context.Context, workFor time.Duration) error {
	return e.loop(ctx, workFor, "watch", e.watchOnce)
}

// loop es la frontera de fallos del engine: un ciclo que falla se
// loggea y se reintenta tras la pausa. Una mala respuesta del venue
// nunca tumba el proceso.
func (e *Engine) loop(ctx context.Context, workFor time.Duration, mode string, step func(context.Context) error) error {
	deadline := e.clock.Now().Add(workFor)
	slog.Info("engine starting",
		"mode", mode,
		"market", domain.TruncateQuestion(e.market.Question, e.market.ConditionID, 60),
		"deadline", deadline.Format(time.RFC3339),
		"interval", e.cfg.Interval,
	)

	for e.clock.Now().Before(deadline) {
		if ctx.Err() != nil {
			slog.Info("engine stopped", "reason", "context cancelled")
			return nil
		}
		if err := step(ctx); err != nil {
			slog.Error("cycle failed", "market", e.market.ConditionID, "err", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("engine stopped", "reason", "context cancelled")
			return nil
		case <-e.clock.After(e.cfg.Interval):
		}
	}
	slog.Info("engine finished", "reason", "deadline reached")
	return nil
}

// RunOnce ejecuta exactamente un ciclo de quoting y lo apunta en el
// ledger, falle o no.
func (e *Engine) RunOnce(ctx context.Context) error {
	rec := domain.CycleRecord{At: e.clock.Now(), ConditionID: e.market.ConditionID}
	err := e.cycle(ctx, &rec)
	if err != nil {
		rec.Note = err.Error()
	}
	e.recordCycle(ctx, rec)
	return err
}

// cycle es un ciclo completo: posiciones, books, quotes, reconcile,
// hedge y fills, en ese orden.
func (e *Engine) cycle(ctx context.Context, rec *domain.CycleRecord) error {
	slog.Info("--- cycle start ---", "market", e.market.ConditionID)

	pos, err := e.data.GetPositions(ctx, e.market)
	if err != nil {
		return fmt.Errorf("maker.cycle: positions: %w", err)
	}
	rec.PosYes, rec.PosNo = pos.Yes, pos.No
	quotePos := pos.Get(e.cfg.QuoteOutcome)
	slog.Info("current inventory",
		"outcome", e.cfg.QuoteOutcome, "shares", quotePos,
		"yes", pos.Yes, "no", pos.No)

	books, err := e.fetchBooks(ctx)
	if err != nil {
		return fmt.Errorf("maker.cycle: order books: %w", err)
	}

	quoteBook := books[e.market.TokenFor(e.cfg.QuoteOutcome).TokenID]
	plan, ok := ComputeQuotes(quoteBook, quotePos, e.cfg.Volume, e.cfg.MinAmount)
	if !ok {
		slog.Info("order book empty, waiting", "outcome", e.cfg.QuoteOutcome)
		rec.Note = "wait"
		return nil
	}
	rec.BestBid, rec.BestAsk = plan.BestBid, plan.BestAsk
	rec.Quotes = len(plan.Quotes)
	slog.Info("book state",
		"best_bid", plan.BestBid, "best_ask", plan.BestAsk,
		"distance_cents", plan.DistanceCents)
	for _, q := range plan.Quotes {
		slog.Info("desired quote", "side", q.Side, "price", q.Price, "size", q.Size)
	}

	open, err := e.data.GetOpenOrders(ctx, e.market)
	if err != nil {
		return fmt.Errorf("maker.cycle: open orders: %w", err)
	}
	for _, o := range open {
		slog.Debug("open order",
			"side", o.Side, "price", o.Price, "size", o.Size, "outcome", o.Outcome)
	}

	if e.market.Rewards.DailyRate > 0 {
		rec.RewardEst = EstimateDailyReward(e.market, books, open)
		slog.Info("reward estimate", "usdc_per_day", rec.RewardEst)
	}

	recon, err := e.reconcile(ctx, plan.Quotes, open)
	rec.Cancelled += recon.Cancelled
	rec.Placed += recon.Placed
	if err != nil {
		return err
	}

	if e.cfg.Hedging {
		placed, err := e.hedge(ctx, pos, books)
		rec.Placed += placed
		if err != nil {
			return err
		}
	}

	trades, err := e.data.GetRecentTrades(ctx, e.market, e.cfg.TradeWindow)
	if err != nil {
		return fmt.Errorf("maker.cycle: recent trades: %w", err)
	}
	if n := e.fills.Notify(ctx, trades); n > 0 {
		slog.Info("fill alerts sent", "count", n)
	}

	if recon.Satisfied {
		rec.Note = "hold"
	} else {
		rec.Note = "ok"
	}
	return nil
}

// watchOnce hace solo el poll de fills, sin tocar el book.
func (e *Engine) watchOnce(ctx context.Context) error {
	trades, err := e.data.GetRecentTrades(ctx, e.market, e.cfg.TradeWindow)
	if err != nil {
		return fmt.Errorf("maker.watch: recent trades: %w", err)
	}
	if n := e.fills.Notify(ctx, trades); n > 0 {
		slog.Info("fill alerts sent", "count", n)
	}
	return nil
}

func (e *Engine) fetchBooks(ctx context.Context) (map[string]domain.OrderBook, error) {
	ids := make([]string, 0, len(e.market.Tokens))
	for _, t := range e.market.Tokens {
		if t.TokenID != "" {
			ids = append(ids, t.TokenID)
		}
	}
	return e.data.FetchOrderBooks(ctx, ids)
}

func (e *Engine) recordOrder(ctx context.Context, rec domain.OrderRecord) {
	if e.ledger == nil {
		return
	}
	if err := e.ledger.RecordOrder(ctx, rec); err != nil {
		slog.Warn("ledger error", "err", err)
	}
}

func (e *Engine) recordCycle(ctx context.Context, rec domain.CycleRecord) {
	if e.ledger == nil {
		return
	}
	if err := e.ledger.RecordCycle(ctx, rec); err != nil {
		slog.Warn("ledger error", "err", err)
	}
}
