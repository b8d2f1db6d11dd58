package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Graph     GraphConfig     `yaml:"graph" mapstructure:"graph"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Tables    TablesConfig    `yaml:"tables" mapstructure:"tables"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GraphConfig holds Microsoft Graph mailbox credentials.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id" mapstructure:"tenant_id"`
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	Mailbox      string `yaml:"mailbox" mapstructure:"mailbox"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	LoginURL     string `yaml:"login_url" mapstructure:"login_url"`
	PageSize     int    `yaml:"page_size" mapstructure:"page_size"`
}

// AnthropicConfig holds the fallback classifier's API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// TablesConfig points at the pricing lookup tables on disk.
type TablesConfig struct {
	RateCardPath   string `yaml:"rate_card_path" mapstructure:"rate_card_path"`
	GeneralSheet   string `yaml:"general_sheet" mapstructure:"general_sheet"`
	AcuityB2BSheet string `yaml:"acuity_b2b_sheet" mapstructure:"acuity_b2b_sheet"`
	AcuityB2CSheet string `yaml:"acuity_b2c_sheet" mapstructure:"acuity_b2c_sheet"`
	ConsumerPath   string `yaml:"consumer_path" mapstructure:"consumer_path"`
	ClientsPath    string `yaml:"clients_path" mapstructure:"clients_path"`
	ModelPath      string `yaml:"model_path" mapstructure:"model_path"`
	ModelNoAskPath string `yaml:"model_no_ask_path" mapstructure:"model_no_ask_path"`
}

// IngestConfig configures the mailbox ingest loop.
type IngestConfig struct {
	Concurrency   int     `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	LookbackDays  int     `yaml:"lookback_days" mapstructure:"lookback_days"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PREDICTCPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "predictcpi.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("graph.base_url", "https://graph.microsoft.com/v1.0")
	v.SetDefault("graph.login_url", "https://login.microsoftonline.com")
	v.SetDefault("graph.page_size", 50)
	// Credentials default empty so AutomaticEnv can see the keys.
	v.SetDefault("graph.tenant_id", "")
	v.SetDefault("graph.client_id", "")
	v.SetDefault("graph.client_secret", "")
	v.SetDefault("graph.mailbox", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("tables.rate_card_path", "tables/rate_card.xlsx")
	v.SetDefault("tables.general_sheet", "General")
	v.SetDefault("tables.acuity_b2b_sheet", "Acuity B2B")
	v.SetDefault("tables.acuity_b2c_sheet", "Acuity B2C")
	v.SetDefault("tables.consumer_path", "tables/consumer.yaml")
	v.SetDefault("tables.clients_path", "tables/clients.yaml")
	v.SetDefault("tables.model_path", "tables/model.yaml")
	v.SetDefault("tables.model_no_ask_path", "tables/model_no_ask.yaml")
	v.SetDefault("ingest.concurrency", 4)
	v.SetDefault("ingest.rate_per_second", 5.0)
	v.SetDefault("ingest.lookback_days", 7)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
