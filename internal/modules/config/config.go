package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"envelope_bot/pkg/tracing"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	envPrefix         = "ENVELOPE"
)

type RungInference string

const (
	// RungsRemaining — заново ставим столько самых глубоких ступеней, сколько ещё висело.
	RungsRemaining RungInference = "remaining"
	// RungsResting — число висящих ордеров считается числом исполненных ступеней.
	RungsResting RungInference = "resting"
)

// Config ...
type Config struct {
	LogLevel string `mapstructure:"log_level"`
	DB       string `mapstructure:"db_dsn"`

	Exchange ExchangeConfig `mapstructure:"exchange"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	Report   ReportConfig   `mapstructure:"report"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Tracing  tracing.Config `mapstructure:"tracing"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`

	// Instruments читаются отдельным файлом, порядок сохраняется.
	Instruments []Instrument `mapstructure:"-"`
}

type ExchangeConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	APISecret  string        `mapstructure:"api_secret"`
	Passphrase string        `mapstructure:"passphrase"`
	Simulated  bool          `mapstructure:"simulated"` // демо-счёт OKX
	Timeout    time.Duration `mapstructure:"timeout"`
}

type StrategyConfig struct {
	Name            string        `mapstructure:"name"`
	Timeframe       string        `mapstructure:"timeframe"`
	OHLCVLimit      int           `mapstructure:"ohlcv_limit"`
	MarginMode      string        `mapstructure:"margin_mode"` // isolated | cross
	Leverage        int           `mapstructure:"leverage"`
	HedgeMode       bool          `mapstructure:"hedge_mode"`
	StopLossPct     float64       `mapstructure:"stop_loss_pct"`  // доля от цены входа, 0.5 = 50%
	TriggerBuffer   float64       `mapstructure:"trigger_buffer"` // 0.005 = 0.5%
	RungInference   RungInference `mapstructure:"rung_inference"`
	Concurrency     int           `mapstructure:"concurrency"`
	InstrumentsFile string        `mapstructure:"instruments_file"`
}

type TrackingConfig struct {
	Backend string `mapstructure:"backend"` // file | postgres
	Path    string `mapstructure:"path"`
	Name    string `mapstructure:"name"` // ключ строки в postgres
}

type ReportConfig struct {
	CronlogPath string `mapstructure:"cronlog_path"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("exchange.base_url", "https://www.okx.com")
	v.SetDefault("exchange.timeout", 10*time.Second)

	v.SetDefault("strategy.name", "envelope")
	v.SetDefault("strategy.timeframe", "1h")
	v.SetDefault("strategy.ohlcv_limit", 50)
	v.SetDefault("strategy.margin_mode", "isolated")
	v.SetDefault("strategy.leverage", 2)
	v.SetDefault("strategy.hedge_mode", true)
	v.SetDefault("strategy.stop_loss_pct", 0.5)
	v.SetDefault("strategy.trigger_buffer", 0.005)
	v.SetDefault("strategy.rung_inference", string(RungsRemaining))
	v.SetDefault("strategy.concurrency", 8)
	v.SetDefault("strategy.instruments_file", "instruments.yaml")

	v.SetDefault("tracking.backend", "file")
	v.SetDefault("tracking.path", "data/tracking.json")
	v.SetDefault("tracking.name", "envelope")

	v.SetDefault("report.cronlog_path", "cronlog.log")

	v.SetDefault("tracing.port", 6831)
	v.SetDefault("metrics.job", "envelope_bot")
}

// bindSecrets — секреты приходят только из окружения (.env).
func bindSecrets(v *viper.Viper) error {
	binds := map[string]string{
		"exchange.api_key":    "OKX_API_KEY",
		"exchange.api_secret": "OKX_API_SECRET",
		"exchange.passphrase": "OKX_PASSPHRASE",
		"telegram.token":      "TELEGRAM_TOKEN",
		"telegram.chat_id":    "TELEGRAM_CHAT_ID",
		"db_dsn":              "DATABASE_DSN",
	}
	for key, env := range binds {
		if err := v.BindEnv(key, env); err != nil {
			return errors.Wrapf(err, "bind env %s", env)
		}
	}
	return nil
}

func configDir() string {
	if dir := os.Getenv(configDirENV); dir != "" {
		return dir
	}
	return "configs"
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	return Load(filepath.Join(configDir(), configFileName))
}

// Load читает основной yaml, накладывает ENVELOPE_* из окружения и
// подгружает таблицу инструментов из того же каталога.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindSecrets(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	instPath := cfg.Strategy.InstrumentsFile
	if !filepath.IsAbs(instPath) {
		instPath = filepath.Join(filepath.Dir(path), instPath)
	}
	instruments, err := LoadInstruments(instPath)
	if err != nil {
		return nil, err
	}
	cfg.Instruments = instruments

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет конфиг до первого обращения к бирже.
func (c *Config) Validate() error {
	s := c.Strategy
	switch {
	case s.Leverage < 1:
		return errors.Errorf("strategy.leverage must be >= 1, got %d", s.Leverage)
	case s.OHLCVLimit < 2:
		return errors.Errorf("strategy.ohlcv_limit must be >= 2, got %d", s.OHLCVLimit)
	case s.StopLossPct <= 0 || s.StopLossPct >= 1:
		return errors.Errorf("strategy.stop_loss_pct must be in (0,1), got %v", s.StopLossPct)
	case s.TriggerBuffer < 0 || s.TriggerBuffer >= 1:
		return errors.Errorf("strategy.trigger_buffer must be in [0,1), got %v", s.TriggerBuffer)
	case s.Concurrency < 1:
		return errors.Errorf("strategy.concurrency must be >= 1, got %d", s.Concurrency)
	}
	switch s.MarginMode {
	case "isolated", "cross":
	default:
		return errors.Errorf("strategy.margin_mode: unknown %q", s.MarginMode)
	}
	switch s.RungInference {
	case RungsRemaining, RungsResting:
	default:
		return errors.Errorf("strategy.rung_inference: unknown %q", s.RungInference)
	}
	switch c.Tracking.Backend {
	case "file":
		if c.Tracking.Path == "" {
			return errors.New("tracking.path is required for file backend")
		}
	case "postgres":
		if c.DB == "" {
			return errors.New("db_dsn is required for postgres backend")
		}
	default:
		return errors.Errorf("tracking.backend: unknown %q", c.Tracking.Backend)
	}

	for _, inst := range c.Instruments {
		// самая короткая история должна покрывать окно MA плюс формирующийся бар
		if inst.MABaseWindow >= s.OHLCVLimit {
			return errors.Errorf("%s: ma_base_window %d needs ohlcv_limit > %d", inst.Symbol, inst.MABaseWindow, inst.MABaseWindow)
		}
	}
	return nil
}
