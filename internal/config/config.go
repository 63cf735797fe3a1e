package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/semseo/internal/domain"
)

// Config holds the semseo API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection and page index settings.
type DatabaseConfig struct {
	Addrs            []string    `yaml:"addrs"`
	Password         string      `yaml:"password"`
	ReadinessTimeout int         `yaml:"readiness_timeout_sec"`
	Index            IndexConfig `yaml:"index"`
}

// IndexConfig holds vector index settings for the page index.
type IndexConfig struct {
	Algorithm      string  `yaml:"algorithm"` // HNSW (default) or FLAT
	M              int     `yaml:"m"`
	EFConstruction int     `yaml:"ef_construction"`
	TitleWeight    float64 `yaml:"title_weight"`
	MaxBatchSize   int     `yaml:"max_batch_size"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider            string       `yaml:"provider"` // openai or hugot (default: hugot)
	APIKey              string       `yaml:"api_key"`
	BaseURL             string       `yaml:"base_url"`
	Model               string       `yaml:"model"`
	Dimensions          int          `yaml:"dimensions"`
	DocumentInstruction string       `yaml:"document_instruction"`
	QueryInstruction    string       `yaml:"query_instruction"`
	ModelDir            string       `yaml:"model_dir"`
	TimeoutSec          int          `yaml:"timeout_sec"`
	MaxBatchSize        int          `yaml:"max_batch_size"`
	CacheTTLSec         int          `yaml:"cache_ttl_sec"` // 0 keeps cached vectors forever
	Budget              BudgetConfig `yaml:"budget"`
}

// BudgetConfig caps provider tokens per UTC day and month. Zero is unlimited.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"`
	Action            string `yaml:"action"` // warn (default) or reject
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
}

// SearchConfig holds hybrid search defaults used when a request omits them.
type SearchConfig struct {
	LexicalWeight float64 `yaml:"lexical_weight"`
	VectorWeight  float64 `yaml:"vector_weight"`
	Strategy      string  `yaml:"strategy"` // weighted or rrf
	RRFK          int     `yaml:"rrf_k"`
}

// AnalysisConfig holds content analysis settings.
type AnalysisConfig struct {
	GapThreshold float64 `yaml:"gap_threshold"`
}

// Embedding providers.
const (
	ProviderOpenAI = "openai"
	ProviderHugot  = "hugot"
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.Index.Algorithm == "" {
		c.Database.Index.Algorithm = "HNSW"
	}
	if c.Database.Index.M <= 0 {
		c.Database.Index.M = 16
	}
	if c.Database.Index.EFConstruction <= 0 {
		c.Database.Index.EFConstruction = 200
	}
	if c.Database.Index.TitleWeight <= 0 {
		c.Database.Index.TitleWeight = 2
	}
	if c.Database.Index.MaxBatchSize <= 0 {
		c.Database.Index.MaxBatchSize = 100
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderHugot
	}
	if c.Embedding.Model == "" && c.Embedding.Provider == ProviderHugot {
		c.Embedding.Model = domain.DefaultVectorConfig().Model
	}
	if c.Embedding.Dimensions <= 0 && c.Embedding.Provider == ProviderHugot {
		c.Embedding.Dimensions = domain.DefaultVectorConfig().Dimensions
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 256
	}
	if c.Embedding.Budget.Action == "" {
		c.Embedding.Budget.Action = "warn"
	}
	// Both weights zero means "unset"; a single zero weight is a valid choice.
	if c.Search.LexicalWeight == 0 && c.Search.VectorWeight == 0 {
		c.Search.LexicalWeight = 0.5
		c.Search.VectorWeight = 0.5
	}
	if c.Search.Strategy == "" {
		c.Search.Strategy = "weighted"
	}
	if c.Search.RRFK <= 0 {
		c.Search.RRFK = 60
	}
	if c.Analysis.GapThreshold <= 0 {
		c.Analysis.GapThreshold = 0.6
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "semseo:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Index.Algorithm {
	case "HNSW", "FLAT":
	default:
		return fmt.Errorf("database.index.algorithm must be \"HNSW\" or \"FLAT\", got %q", c.Database.Index.Algorithm)
	}
	switch c.Embedding.Provider {
	case ProviderHugot:
	case ProviderOpenAI:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required for provider %q", ProviderOpenAI)
		}
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for provider %q", ProviderOpenAI)
		}
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q", ProviderOpenAI, ProviderHugot, c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.Budget.DailyTokenLimit < 0 || c.Embedding.Budget.MonthlyTokenLimit < 0 {
		return fmt.Errorf("embedding.budget limits must be non-negative")
	}
	switch c.Embedding.Budget.Action {
	case "warn", "reject":
	default:
		return fmt.Errorf("embedding.budget.action must be \"warn\" or \"reject\", got %q", c.Embedding.Budget.Action)
	}
	if c.Search.LexicalWeight < 0 || c.Search.VectorWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	switch c.Search.Strategy {
	case "weighted", "rrf":
	default:
		return fmt.Errorf("search.strategy must be \"weighted\" or \"rrf\", got %q", c.Search.Strategy)
	}
	if c.Analysis.GapThreshold > 1 {
		return fmt.Errorf("analysis.gap_threshold must be within (0, 1], got %g", c.Analysis.GapThreshold)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
