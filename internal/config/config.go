// Package config loads application configuration from config.yaml and the
// environment, and initializes the global logger.
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
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Jina   JinaConfig   `yaml:"jina" mapstructure:"jina"`
	Notion NotionConfig `yaml:"notion" mapstructure:"notion"`
	Scorer ScorerConfig `yaml:"scorer" mapstructure:"scorer"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the scoring-run persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// JinaConfig holds Jina AI embeddings API settings. An empty key disables
// embeddings; the similarity engine then runs in fuzzy-only mode.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// NotionConfig holds the optional Notion CRM handoff settings.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// ScorerConfig is the tunable weight table and adjustment constants of the
// company scorer. Positive weights reward; the negative-signal weight must
// be negative (it always subtracts).
type ScorerConfig struct {
	IndustryWeight    float64 `yaml:"industry_weight" mapstructure:"industry_weight"`
	KeywordsWeight    float64 `yaml:"keywords_weight" mapstructure:"keywords_weight"`
	HQWeight          float64 `yaml:"hq_weight" mapstructure:"hq_weight"`
	FundingWeight     float64 `yaml:"funding_weight" mapstructure:"funding_weight"`
	ExpansionWeight   float64 `yaml:"expansion_weight" mapstructure:"expansion_weight"`
	NegativeWeight    float64 `yaml:"negative_weight" mapstructure:"negative_weight"`
	MomentumWeight    float64 `yaml:"momentum_weight" mapstructure:"momentum_weight"`
	HiringWeight      float64 `yaml:"hiring_weight" mapstructure:"hiring_weight"`
	FoundedYearWeight float64 `yaml:"founded_year_weight" mapstructure:"founded_year_weight"`
	EmployeesWeight   float64 `yaml:"employees_weight" mapstructure:"employees_weight"`

	// Industry-relevance adjustments.
	GenericPenalty float64 `yaml:"generic_penalty" mapstructure:"generic_penalty"`
	HybridBoost    float64 `yaml:"hybrid_boost" mapstructure:"hybrid_boost"`
	GateThreshold  float64 `yaml:"gate_threshold" mapstructure:"gate_threshold"`
	GateCap        float64 `yaml:"gate_cap" mapstructure:"gate_cap"`

	// Founded-year recency horizon.
	FoundedHorizon int `yaml:"founded_horizon" mapstructure:"founded_horizon"`

	// Ranking.
	TopN          int `yaml:"top_n" mapstructure:"top_n"`
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the scoring HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultScorerConfig returns the canonical weight table. Positive weights
// sum to 109; the negative-signal weight of -8 always subtracts.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		IndustryWeight:    38,
		KeywordsWeight:    32,
		HQWeight:          10,
		FundingWeight:     7,
		ExpansionWeight:   6,
		NegativeWeight:    -8,
		MomentumWeight:    4,
		HiringWeight:      6,
		FoundedYearWeight: 3,
		EmployeesWeight:   3,

		GenericPenalty: 0.75,
		HybridBoost:    1.2,
		GateThreshold:  0.35,
		GateCap:        40,

		FoundedHorizon: 2025,

		TopN:          50,
		MaxConcurrent: 8,
	}
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		Store:  StoreConfig{Driver: "sqlite", DatabaseURL: "leadscore.db"},
		Jina:   JinaConfig{BaseURL: "https://api.jina.ai", Model: "jina-embeddings-v3"},
		Scorer: DefaultScorerConfig(),
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	def := Default()
	v.SetDefault("store.driver", def.Store.Driver)
	v.SetDefault("store.database_url", def.Store.DatabaseURL)
	v.SetDefault("jina.base_url", def.Jina.BaseURL)
	v.SetDefault("jina.model", def.Jina.Model)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("scorer.industry_weight", def.Scorer.IndustryWeight)
	v.SetDefault("scorer.keywords_weight", def.Scorer.KeywordsWeight)
	v.SetDefault("scorer.hq_weight", def.Scorer.HQWeight)
	v.SetDefault("scorer.funding_weight", def.Scorer.FundingWeight)
	v.SetDefault("scorer.expansion_weight", def.Scorer.ExpansionWeight)
	v.SetDefault("scorer.negative_weight", def.Scorer.NegativeWeight)
	v.SetDefault("scorer.momentum_weight", def.Scorer.MomentumWeight)
	v.SetDefault("scorer.hiring_weight", def.Scorer.HiringWeight)
	v.SetDefault("scorer.founded_year_weight", def.Scorer.FoundedYearWeight)
	v.SetDefault("scorer.employees_weight", def.Scorer.EmployeesWeight)
	v.SetDefault("scorer.generic_penalty", def.Scorer.GenericPenalty)
	v.SetDefault("scorer.hybrid_boost", def.Scorer.HybridBoost)
	v.SetDefault("scorer.gate_threshold", def.Scorer.GateThreshold)
	v.SetDefault("scorer.gate_cap", def.Scorer.GateCap)
	v.SetDefault("scorer.founded_horizon", def.Scorer.FoundedHorizon)
	v.SetDefault("scorer.top_n", def.Scorer.TopN)
	v.SetDefault("scorer.max_concurrent", def.Scorer.MaxConcurrent)

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
