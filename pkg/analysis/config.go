package analysis

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/reaction-network-analysis/pkg/comparison"
)

// EnvPrefix namespaces environment overrides, e.g. RNET_OMEGA_SEED
const EnvPrefix = "RNET"

// Config manages analysis configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	v := viper.New()

	// Input parameters
	v.SetDefault("input.file", "")
	v.SetDefault("input.compare_file", "")
	v.SetDefault("input.lenient", false)
	v.SetDefault("input.lowercase", true)
	v.SetDefault("input.dedupe_triples", false)
	v.SetDefault("input.merge_parallel", false)

	// Analysis parameters
	v.SetDefault("analysis.top_k", 10)
	v.SetDefault("analysis.weighted", true)
	v.SetDefault("analysis.largest_component_only", false)
	v.SetDefault("analysis.fragmentation_mode", "weak")
	v.SetDefault("analysis.degree_type", "out")
	v.SetDefault("analysis.fit_k_min", 1)
	v.SetDefault("analysis.fit_k_max", 0)
	v.SetDefault("analysis.compare_k_min", 2)
	v.SetDefault("analysis.core_depth", 4)
	v.SetDefault("analysis.collapse_parallel", true)
	v.SetDefault("analysis.pagerank_damping", 0.85)
	v.SetDefault("analysis.pagerank_tolerance", 1e-6)

	// Omega parameters
	v.SetDefault("omega.enabled", false)
	v.SetDefault("omega.seed", 42)
	v.SetDefault("omega.rewire_iterations", 3)
	v.SetDefault("omega.random_graphs", 3)
	v.SetDefault("omega.timeout", "0s")

	// Girvan-Newman parameters
	v.SetDefault("girvan_newman.max_levels", 0)
	v.SetDefault("girvan_newman.quality", "modularity")
	v.SetDefault("girvan_newman.largest_component_only", true)

	// Louvain parameters
	v.SetDefault("louvain.enabled", true)
	v.SetDefault("louvain.seed", 42)
	v.SetDefault("louvain.max_levels", 0)

	v.SetDefault("compare.important_molecules", comparison.DefaultImportantMolecules)

	// Logging parameters
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)

	v.SetDefault("output.dir", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from a YAML, JSON or TOML file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Viper exposes the underlying instance for flag binding
func (c *Config) Viper() *viper.Viper { return c.v }

// Getters for input parameters
func (c *Config) InputFile() string   { return c.v.GetString("input.file") }
func (c *Config) CompareFile() string { return c.v.GetString("input.compare_file") }
func (c *Config) Lenient() bool       { return c.v.GetBool("input.lenient") }
func (c *Config) Lowercase() bool     { return c.v.GetBool("input.lowercase") }
func (c *Config) DedupeTriples() bool { return c.v.GetBool("input.dedupe_triples") }
func (c *Config) MergeParallel() bool { return c.v.GetBool("input.merge_parallel") }

func (c *Config) TopK() int                  { return c.v.GetInt("analysis.top_k") }
func (c *Config) Weighted() bool             { return c.v.GetBool("analysis.weighted") }
func (c *Config) LargestComponentOnly() bool { return c.v.GetBool("analysis.largest_component_only") }
func (c *Config) FragmentationMode() string  { return c.v.GetString("analysis.fragmentation_mode") }
func (c *Config) DegreeType() string         { return c.v.GetString("analysis.degree_type") }
func (c *Config) FitKMin() int               { return c.v.GetInt("analysis.fit_k_min") }
func (c *Config) FitKMax() int               { return c.v.GetInt("analysis.fit_k_max") }
func (c *Config) CompareKMin() int           { return c.v.GetInt("analysis.compare_k_min") }
func (c *Config) CoreDepth() int             { return c.v.GetInt("analysis.core_depth") }
func (c *Config) PageRankDamping() float64   { return c.v.GetFloat64("analysis.pagerank_damping") }
func (c *Config) PageRankTolerance() float64 { return c.v.GetFloat64("analysis.pagerank_tolerance") }
func (c *Config) CollapseParallel() bool     { return c.v.GetBool("analysis.collapse_parallel") }

func (c *Config) OmegaEnabled() bool          { return c.v.GetBool("omega.enabled") }
func (c *Config) OmegaSeed() int64            { return c.v.GetInt64("omega.seed") }
func (c *Config) OmegaRewireIterations() int  { return c.v.GetInt("omega.rewire_iterations") }
func (c *Config) OmegaRandomGraphs() int      { return c.v.GetInt("omega.random_graphs") }
func (c *Config) OmegaTimeout() time.Duration { return c.v.GetDuration("omega.timeout") }

func (c *Config) GNMaxLevels() int             { return c.v.GetInt("girvan_newman.max_levels") }
func (c *Config) GNQuality() string            { return c.v.GetString("girvan_newman.quality") }
func (c *Config) GNLargestComponentOnly() bool { return c.v.GetBool("girvan_newman.largest_component_only") }

func (c *Config) LouvainEnabled() bool  { return c.v.GetBool("louvain.enabled") }
func (c *Config) LouvainSeed() int64    { return c.v.GetInt64("louvain.seed") }
func (c *Config) LouvainMaxLevels() int { return c.v.GetInt("louvain.max_levels") }

func (c *Config) ImportantMolecules() []string {
	return c.v.GetStringSlice("compare.important_molecules")
}

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }
func (c *Config) LogJSON() bool    { return c.v.GetBool("logging.json") }

func (c *Config) OutputDir() string { return c.v.GetString("output.dir") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger creates a zerolog logger based on config, writing to stderr so
// stdout stays free for results
func (c *Config) CreateLogger() zerolog.Logger {
	return c.createLogger(os.Stderr)
}

func (c *Config) createLogger(out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	if !c.LogJSON() {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "rnet").Logger()
}
