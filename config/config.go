package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Maker    MakerConfig    `yaml:"maker"`
	API      APIConfig      `yaml:"api"`
	Telegram TelegramConfig `yaml:"telegram"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// MakerConfig controla el comportamiento del ciclo de market making.
type MakerConfig struct {
	IntervalSeconds    int     `yaml:"interval_seconds"`
	VolumeShares       float64 `yaml:"volume_shares"`       // tamaño objetivo de cada quote, en shares
	MinOrderShares     float64 `yaml:"min_order_shares"`    // por debajo de esto el CLOB rechaza la orden
	QuoteOutcome       string  `yaml:"quote_outcome"`       // Yes | No
	TradeWindowSeconds int     `yaml:"trade_window_seconds"` // ventana del poll de fills recientes
	DisableHedging     bool    `yaml:"disable_hedging"`
}

// APIConfig contiene los endpoints y credenciales de Polymarket.
// La private key nunca se lee del YAML, solo de POLY_PRIVATE_KEY.
type APIConfig struct {
	CLOBBase   string `yaml:"clob_base"`
	GammaBase  string `yaml:"gamma_base"`
	RPCURL     string `yaml:"rpc_url"`
	PrivateKey string `yaml:"-"`
}

// TelegramConfig controla las alertas de fills por Telegram.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

// Configured indica si hay credenciales suficientes para enviar alertas.
func (t TelegramConfig) Configured() bool {
	return t.Enabled && t.Token != "" && t.ChatID != ""
}

// StorageConfig controla dónde se persiste el ledger de órdenes.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del entorno sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// CycleInterval devuelve el intervalo entre ciclos como time.Duration.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Maker.IntervalSeconds) * time.Second
}

// TradeWindow devuelve la ventana del poll de trades como time.Duration.
func (c *Config) TradeWindow() time.Duration {
	return time.Duration(c.Maker.TradeWindowSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLY_PRIVATE_KEY"); v != "" {
		cfg.API.PrivateKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Maker.IntervalSeconds <= 0 {
		cfg.Maker.IntervalSeconds = 60
	}
	if cfg.Maker.VolumeShares <= 0 {
		cfg.Maker.VolumeShares = 40
	}
	if cfg.Maker.MinOrderShares <= 0 {
		cfg.Maker.MinOrderShares = 5
	}
	if cfg.Maker.QuoteOutcome == "" {
		cfg.Maker.QuoteOutcome = "No"
	}
	if cfg.Maker.TradeWindowSeconds <= 0 {
		cfg.Maker.TradeWindowSeconds = 120
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.RPCURL == "" {
		cfg.API.RPCURL = "https://polygon-rpc.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "makerbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
