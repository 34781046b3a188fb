package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/docalign/internal/domain"
)

// Config holds the docalign configuration.
type Config struct {
	Run       RunConfig       `yaml:"run"`
	Align     AlignConfig     `yaml:"align"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// RunConfig holds execution settings.
type RunConfig struct {
	Workers int `yaml:"workers"` // worker pool size (default: NumCPU)
	// LoadBatchDocs caps how many documents one streaming read returns.
	LoadBatchDocs int `yaml:"load_batch_docs"`
	// MaxLoadedVectors caps sentence vectors per batch; exceeding it fails
	// the load with guidance to reduce load_batch_docs.
	MaxLoadedVectors int `yaml:"max_loaded_vectors"`
	// SanityCheckDocs is how many leading documents get shape warnings.
	SanityCheckDocs int `yaml:"sanity_check_docs"`
}

// AlignConfig holds alignment strategy settings. Strategy names are parsed
// into typed values during Validate; unknown names fail there, never at a
// call site.
type AlignConfig struct {
	Strategy  string    `yaml:"strategy"`
	Weights   string    `yaml:"weights"`
	Merge     string    `yaml:"merge"`
	Result    string    `yaml:"result"`
	Mask      []float32 `yaml:"mask"`
	PruneZero bool      `yaml:"prune_zero_dimensions"`
	// K is the neighbourhood size of the index strategy.
	K       int  `yaml:"k"`
	Reverse bool `yaml:"reverse"`
	// Rescore re-scores index-matched pairs with the windowed aligner over
	// the original sentence sequences.
	Rescore   bool    `yaml:"rescore"`
	Threshold float64 `yaml:"threshold"` // negative = disabled
	// MaxWindow caps the window half-width of the windowed aligner.
	MaxWindow      int     `yaml:"max_window"`
	AuditThreshold float64 `yaml:"audit_threshold"`
	Heuristics     bool    `yaml:"heuristics"`
	FilterFraction float64 `yaml:"filter_fraction"`

	// Parsed forms, populated by Validate.
	ParsedStrategy domain.AlignStrategy  `yaml:"-"`
	ParsedWeights  domain.WeightStrategy `yaml:"-"`
	ParsedMerge    domain.MergeStrategy  `yaml:"-"`
	ParsedResult   domain.ResultMode     `yaml:"-"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"` // sentences per embedding request
}

// CacheConfig holds the sentence-embedding cache settings.
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// MetricsConfig holds the optional metrics endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty = disabled
}

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

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Run.Workers <= 0 {
		c.Run.Workers = runtime.NumCPU()
	}
	if c.Run.LoadBatchDocs <= 0 {
		c.Run.LoadBatchDocs = 1000
	}
	if c.Run.SanityCheckDocs <= 0 {
		c.Run.SanityCheckDocs = 5
	}
	if c.Align.Strategy == "" {
		c.Align.Strategy = domain.AlignIndex.String()
	}
	// Vector strategies need a merged document vector; default to mean.
	if c.Align.Merge == "" {
		if s, err := domain.ParseAlignStrategy(c.Align.Strategy); err == nil && !s.KeepsSequences() {
			c.Align.Merge = domain.MergeMean.String()
		}
	}
	if c.Align.K <= 0 {
		c.Align.K = 5
	}
	if c.Align.Threshold == 0 {
		c.Align.Threshold = -1
	}
	if c.Align.AuditThreshold == 0 {
		c.Align.AuditThreshold = 0.85
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 64
	}
}

// Validate checks the configuration and resolves strategy names.
func (c *Config) Validate() error {
	var err error
	if c.Align.ParsedStrategy, err = domain.ParseAlignStrategy(c.Align.Strategy); err != nil {
		return fmt.Errorf("align.strategy: %w", err)
	}
	if c.Align.ParsedWeights, err = domain.ParseWeightStrategy(c.Align.Weights); err != nil {
		return fmt.Errorf("align.weights: %w", err)
	}
	if c.Align.ParsedMerge, err = domain.ParseMergeStrategy(c.Align.Merge); err != nil {
		return fmt.Errorf("align.merge: %w", err)
	}
	if c.Align.ParsedResult, err = domain.ParseResultMode(c.Align.Result); err != nil {
		return fmt.Errorf("align.result: %w", err)
	}

	// Vector strategies compare one vector per document; sequence strategies
	// keep the full sentence sequence and skip merging.
	if !c.Align.ParsedStrategy.KeepsSequences() && c.Align.ParsedMerge == domain.MergeNone {
		return fmt.Errorf("align.strategy %q requires align.merge != none", c.Align.Strategy)
	}
	if c.Align.ParsedStrategy.KeepsSequences() && c.Align.ParsedMerge != domain.MergeNone {
		return fmt.Errorf("align.strategy %q operates on sequences, align.merge must be none", c.Align.Strategy)
	}

	if c.Align.Rescore && c.Align.ParsedStrategy != domain.AlignIndex {
		return fmt.Errorf("align.rescore only applies to the index strategy")
	}
	if c.Align.Threshold > 1 {
		return fmt.Errorf("align.threshold must be at most 1, got %g", c.Align.Threshold)
	}
	if c.Align.FilterFraction < 0 || c.Align.FilterFraction > 1 {
		return fmt.Errorf("align.filter_fraction must be in [0, 1], got %g", c.Align.FilterFraction)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache.enabled")
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
