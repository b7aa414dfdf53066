package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alejandrodnm/makerbot/config"
	"github.com/alejandrodnm/makerbot/internal/adapters/notify"
	"github.com/alejandrodnm/makerbot/internal/adapters/polymarket"
	"github.com/alejandrodnm/makerbot/internal/adapters/storage"
	"github.com/alejandrodnm/makerbot/internal/domain"
	"github.com/alejandrodnm/makerbot/internal/maker"
	"github.com/alejandrodnm/makerbot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one quoting cycle and exit")
	watch := flag.Bool("watch", false, "fill-watch mode: only poll fills and alert, no quoting")
	report := flag.Bool("report", false, "print the local ledger report and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if *report {
		runReport(cfg)
		return
	}

	ref, workFor, volume, minAmount := parseArgs(cfg)

	quoteOutcome, ok := domain.ParseOutcome(cfg.Maker.QuoteOutcome)
	if !ok {
		slog.Error("invalid quote_outcome in config", "value", cfg.Maker.QuoteOutcome)
		os.Exit(1)
	}

	slog.Info("makerbot starting",
		"config", *configPath,
		"market", ref,
		"work_for", workFor,
		"volume", volume,
		"min_amount", minAmount,
		"quote_outcome", quoteOutcome,
		"hedging", !cfg.Maker.DisableHedging,
		"interval", cfg.CycleInterval(),
		"once", *once,
		"watch", *watch,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)

	market, err := client.ResolveMarket(ctx, ref)
	if err != nil {
		slog.Error("failed to resolve market", "ref", ref, "err", err)
		os.Exit(1)
	}
	if !market.Active {
		slog.Error("market is not accepting orders", "condition_id", market.ConditionID)
		os.Exit(1)
	}

	if cfg.API.PrivateKey == "" {
		slog.Error("POLY_PRIVATE_KEY is not set — required to sign orders")
		os.Exit(1)
	}
	authClient, err := polymarket.NewAuthClient(cfg.API.CLOBBase, cfg.API.GammaBase, cfg.API.PrivateKey)
	if err != nil {
		slog.Error("failed to create auth client", "err", err)
		os.Exit(1)
	}
	trading, err := polymarket.NewTradingClient(authClient, cfg.API.RPCURL)
	if err != nil {
		slog.Error("failed to create trading client", "err", err)
		os.Exit(1)
	}
	if err := trading.Connect(ctx); err != nil {
		slog.Error("failed to derive API credentials — check POLY_PRIVATE_KEY", "err", err)
		os.Exit(1)
	}
	slog.Info("authenticated with Polymarket CLOB", "address", trading.Address())

	if !*watch {
		preflight(ctx, trading, market, volume)
	}

	store, err := storage.NewSQLiteLedger(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open ledger", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	var notifier ports.Notifier
	if cfg.Telegram.Configured() {
		notifier = notify.NewTelegram(cfg.Telegram)
		slog.Info("fill alerts via Telegram", "chat_id", cfg.Telegram.ChatID)
	} else {
		notifier = notify.NewConsole()
		slog.Info("fill alerts via console (Telegram not configured)")
	}

	engine := maker.New(maker.Config{
		Volume:       volume,
		MinAmount:    minAmount,
		Interval:     cfg.CycleInterval(),
		QuoteOutcome: quoteOutcome,
		TradeWindow:  cfg.TradeWindow(),
		Hedging:      !cfg.Maker.DisableHedging,
	}, market, trading, trading, notifier, store)

	switch {
	case *once:
		if err := engine.RunOnce(ctx); err != nil {
			slog.Error("cycle failed", "err", err)
			os.Exit(1)
		}
	case *watch:
		if err := engine.Watch(ctx, workFor); err != nil {
			slog.Error("watch exited with error", "err", err)
			os.Exit(1)
		}
	default:
		if err := engine.Run(ctx, workFor); err != nil {
			slog.Error("makerbot exited with error", "err", err)
			os.Exit(1)
		}
	}

	slog.Info("makerbot stopped cleanly")
}

// parseArgs lee los posicionales MARKET DURATION_SECONDS [VOLUME [MIN_AMOUNT]].
// Cualquier error de argumentos termina el proceso antes de tocar la red.
func parseArgs(cfg *config.Config) (ref string, workFor time.Duration, volume, minAmount float64) {
	args := flag.Args()
	if len(args) < 2 || len(args) > 4 {
		printUsage()
		os.Exit(2)
	}

	ref = args[0]

	secs, err := strconv.Atoi(args[1])
	if err != nil || secs <= 0 {
		fmt.Fprintf(os.Stderr, "invalid DURATION_SECONDS: %q\n\n", args[1])
		printUsage()
		os.Exit(2)
	}
	workFor = time.Duration(secs) * time.Second

	volume = cfg.Maker.VolumeShares
	minAmount = cfg.Maker.MinOrderShares
	if len(args) >= 3 {
		volume, err = strconv.ParseFloat(args[2], 64)
		if err != nil || volume <= 0 {
			fmt.Fprintf(os.Stderr, "invalid VOLUME: %q\n\n", args[2])
			printUsage()
			os.Exit(2)
		}
	}
	if len(args) == 4 {
		minAmount, err = strconv.ParseFloat(args[3], 64)
		if err != nil || minAmount <= 0 {
			fmt.Fprintf(os.Stderr, "invalid MIN_AMOUNT: %q\n\n", args[3])
			printUsage()
			os.Exit(2)
		}
	}
	return ref, workFor, volume, minAmount
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: makerbot [flags] MARKET DURATION_SECONDS [VOLUME [MIN_AMOUNT]]

  MARKET            condition id (0x...), id numérico de Gamma o slug
  DURATION_SECONDS  cuánto tiempo trabaja el bot antes de salir
  VOLUME            techo de inventario en shares (default: config volume_shares)
  MIN_AMOUNT        clip mínimo por orden en shares (default: config min_order_shares)

Flags:
`)
	flag.PrintDefaults()
}

// preflight valida que la cuenta puede operar antes de arrancar el loop:
// colateral on-chain y ground truth de las posiciones. Todo es no-fatal,
// la API de posiciones es la fuente operativa durante el loop.
func preflight(ctx context.Context, trading *polymarket.TradingClient, market domain.Market, volume float64) {
	balance, err := trading.CollateralBalance(ctx)
	if err != nil {
		slog.Warn("could not read on-chain collateral, skipping balance check", "err", err)
	} else {
		slog.Info("collateral balance", "usdc", fmt.Sprintf("$%.2f", balance))
		if balance < volume {
			slog.Warn("collateral may not cover the full quote volume",
				"balance", fmt.Sprintf("$%.2f", balance), "volume_shares", volume)
		}
	}

	for _, tok := range market.Tokens {
		shares, err := trading.TokenBalance(ctx, tok.TokenID)
		if err != nil {
			slog.Debug("token balance unavailable", "outcome", tok.Outcome, "err", err)
			continue
		}
		slog.Info("on-chain position", "outcome", tok.Outcome, "shares", fmt.Sprintf("%.2f", shares))
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
