package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"wallet_enricher/internal/domain/entity"
	"wallet_enricher/internal/pkg/utils"
)

const (
	// DefaultPath is used when CONFIG_PATH is not set.
	DefaultPath = "config/config.yml"

	envConfigPath   = "CONFIG_PATH"
	envArkhamAPIKey = "ARKHAM_API_KEY"
	envDuneAPIKey   = "DUNE_API_KEY"
	envLogLevel     = "LOG_LEVEL"
)

// Config holds the overall configuration for the application.
type Config struct {
	Arkham     ArkhamConfig       `yaml:"arkham"`
	Dune       DuneConfig         `yaml:"dune"`
	Labels     LabelJobConfig     `yaml:"labels"`
	Portfolios PortfolioJobConfig `yaml:"portfolios"`
	Export     ExportConfig       `yaml:"export"`
	Server     ServerConfig       `yaml:"server"`
	Cache      CacheConfig        `yaml:"cache"`
	Logging    LoggingConfig      `yaml:"logging"`
}

// ArkhamConfig holds the configuration for the Arkham intelligence client.
type ArkhamConfig struct {
	BaseURL             string  `yaml:"baseURL"`
	APIKey              string  `yaml:"apiKey"`
	RequestDelayMs      int64   `yaml:"requestDelayMs"`
	RateLimitCooldownMs int64   `yaml:"rateLimitCooldownMs"`
	RequestTimeoutMs    int64   `yaml:"requestTimeoutMs"`
	RequestsPerSecond   float64 `yaml:"requestsPerSecond"` // 0 disables the shared limiter
	Burst               int     `yaml:"burst"`
}

// DuneConfig holds the configuration for the Dune table client.
type DuneConfig struct {
	BaseURL          string `yaml:"baseURL"`
	APIKey           string `yaml:"apiKey"`
	RequestTimeoutMs int64  `yaml:"requestTimeoutMs"`
	UploadTimeoutMs  int64  `yaml:"uploadTimeoutMs"`
}

// TableConfig identifies a destination table and how to create it.
type TableConfig struct {
	Namespace   string          `yaml:"namespace"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Private     bool            `yaml:"private"`
	Schema      []entity.Column `yaml:"schema"`
}

// AddressSourceConfig selects where addresses come from. File wins over QueryID when both are set.
type AddressSourceConfig struct {
	QueryID int64  `yaml:"queryID"`
	Column  string `yaml:"column"`
	File    string `yaml:"file"`
}

// LabelJobConfig holds configuration for the label sync job.
type LabelJobConfig struct {
	Workers int                 `yaml:"workers"`
	Table   TableConfig         `yaml:"table"`
	Source  AddressSourceConfig `yaml:"source"`
}

// PortfolioJobConfig holds configuration for the portfolio sync job.
type PortfolioJobConfig struct {
	Workers      int                 `yaml:"workers"`
	BatchSize    int                 `yaml:"batchSize"`
	BatchPauseMs int64               `yaml:"batchPauseMs"`
	AsOfMillis   int64               `yaml:"asOfMillis"` // 0 means now
	Table        TableConfig         `yaml:"table"`
	Source       AddressSourceConfig `yaml:"source"`
}

// ExportConfig holds configuration for CSV artifacts.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// ServerConfig holds the status server configuration.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
}

// CacheConfig holds configuration for the run summary cache.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// PathFromEnv returns CONFIG_PATH or DefaultPath.
func PathFromEnv() string {
	return utils.GetEnv(envConfigPath, DefaultPath)
}

// LoadConfig loads configuration from a YAML file, applies defaults and then environment overrides.
// A .env file in the working directory is loaded first when present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// Parse decodes YAML config data and applies defaults and environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Arkham.BaseURL == "" {
		cfg.Arkham.BaseURL = "https://api.arkm.com"
		logrus.Infof("Arkham.BaseURL not set, defaulting to %s", cfg.Arkham.BaseURL)
	}
	if cfg.Arkham.RequestDelayMs == 0 {
		cfg.Arkham.RequestDelayMs = 50
	}
	if cfg.Arkham.RateLimitCooldownMs == 0 {
		cfg.Arkham.RateLimitCooldownMs = 2000
	}
	if cfg.Arkham.RequestTimeoutMs == 0 {
		cfg.Arkham.RequestTimeoutMs = 15000
		logrus.Infof("Arkham.RequestTimeoutMs not set, defaulting to %d ms", cfg.Arkham.RequestTimeoutMs)
	}
	if cfg.Arkham.RequestsPerSecond > 0 && cfg.Arkham.Burst <= 0 {
		cfg.Arkham.Burst = 1
	}

	if cfg.Dune.BaseURL == "" {
		cfg.Dune.BaseURL = "https://api.dune.com/api/v1"
		logrus.Infof("Dune.BaseURL not set, defaulting to %s", cfg.Dune.BaseURL)
	}
	if cfg.Dune.RequestTimeoutMs == 0 {
		cfg.Dune.RequestTimeoutMs = 30000
	}
	if cfg.Dune.UploadTimeoutMs == 0 {
		cfg.Dune.UploadTimeoutMs = 600000
	}

	if cfg.Labels.Workers <= 0 {
		cfg.Labels.Workers = 5
		logrus.Infof("Labels.Workers not set, defaulting to %d", cfg.Labels.Workers)
	}
	if len(cfg.Labels.Table.Schema) == 0 {
		cfg.Labels.Table.Schema = DefaultLabelSchema()
	}
	if cfg.Labels.Source.Column == "" {
		cfg.Labels.Source.Column = "user_addr"
	}

	if cfg.Portfolios.Workers <= 0 {
		cfg.Portfolios.Workers = 10
		logrus.Infof("Portfolios.Workers not set, defaulting to %d", cfg.Portfolios.Workers)
	}
	if cfg.Portfolios.BatchSize <= 0 {
		cfg.Portfolios.BatchSize = 1000
	}
	if cfg.Portfolios.BatchPauseMs == 0 {
		cfg.Portfolios.BatchPauseMs = 2000
	}
	if len(cfg.Portfolios.Table.Schema) == 0 {
		cfg.Portfolios.Table.Schema = DefaultPortfolioSchema()
	}
	if cfg.Portfolios.Source.Column == "" {
		cfg.Portfolios.Source.Column = "user_addr"
	}

	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "data"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Cache.DefaultExpirationMinutes == 0 {
		cfg.Cache.DefaultExpirationMinutes = 60
	}
	if cfg.Cache.CleanupIntervalMinutes == 0 {
		cfg.Cache.CleanupIntervalMinutes = 10
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv(envArkhamAPIKey); v != "" {
		cfg.Arkham.APIKey = v
	}
	if v := os.Getenv(envDuneAPIKey); v != "" {
		cfg.Dune.APIKey = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// ValidateDune checks what every command talking to Dune needs.
func (cfg *Config) ValidateDune() error {
	if cfg.Dune.APIKey == "" {
		return fmt.Errorf("dune api key is not set (dune.apiKey or %s)", envDuneAPIKey)
	}
	return nil
}

// Validate checks what the sync jobs need: both API keys and both destination tables.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Arkham.APIKey == "" {
		errs = append(errs, fmt.Errorf("arkham api key is not set (arkham.apiKey or %s)", envArkhamAPIKey))
	}
	if err := cfg.ValidateDune(); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Labels.Table.validate("labels"); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Portfolios.Table.validate("portfolios"); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (t TableConfig) validate(job string) error {
	if t.Namespace == "" || t.Name == "" {
		return fmt.Errorf("%s.table: namespace and name are required", job)
	}
	return nil
}

// FullName returns namespace.name.
func (t TableConfig) FullName() string {
	return t.Namespace + "." + t.Name
}

// CreateRequest builds the table creation request for this table.
func (t TableConfig) CreateRequest() entity.CreateTableRequest {
	return entity.CreateTableRequest{
		Namespace:   t.Namespace,
		TableName:   t.Name,
		Schema:      t.Schema,
		Description: t.Description,
		IsPrivate:   t.Private,
	}
}

func (c ArkhamConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMs) * time.Millisecond
}

func (c ArkhamConfig) RateLimitCooldown() time.Duration {
	return time.Duration(c.RateLimitCooldownMs) * time.Millisecond
}

func (c ArkhamConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func (c DuneConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func (c DuneConfig) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutMs) * time.Millisecond
}

func (c PortfolioJobConfig) BatchPause() time.Duration {
	return time.Duration(c.BatchPauseMs) * time.Millisecond
}

// DefaultLabelSchema is the schema of the labels table.
func DefaultLabelSchema() []entity.Column {
	return []entity.Column{
		{Name: "no", Type: "integer"},
		{Name: "address", Type: "varbinary"},
		{Name: "name", Type: "varchar"},
		{Name: "type", Type: "varchar"},
		{Name: "label", Type: "varchar"},
		{Name: "isuseraddress", Type: "boolean"},
		{Name: "website", Type: "varchar"},
		{Name: "twitter", Type: "varchar"},
		{Name: "crunchbase", Type: "varchar"},
		{Name: "linkedin", Type: "varchar"},
	}
}

// DefaultPortfolioSchema is the schema of the portfolio table.
func DefaultPortfolioSchema() []entity.Column {
	return []entity.Column{
		{Name: "chain", Type: "varchar"},
		{Name: "address", Type: "varbinary"},
		{Name: "symbol", Type: "varchar"},
		{Name: "balance", Type: "varchar"},
		{Name: "price", Type: "varchar"},
		{Name: "usd", Type: "varchar"},
	}
}
