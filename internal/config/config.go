package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/vitebski/gdb-field-catalog/internal/workspace"
	"github.com/vitebski/gdb-field-catalog/pkg/models"
	"gopkg.in/yaml.v3"
)

// DefaultOutput is the catalog file written when no output is configured
const DefaultOutput = "attribute_names.csv"

// Config holds the settings of an export run
type Config struct {
	Workspace   string `yaml:"workspace"`    // GeoPackage path, mysql:// or postgres:// URL
	Output      string `yaml:"output"`       // CSV file to create or overwrite
	Wildcard    string `yaml:"wildcard"`     // Feature class name filter, * matches anything
	FeatureType string `yaml:"feature_type"` // Point, Multipoint, Polyline, Polygon or All
	CRLF        bool   `yaml:"crlf"`         // Write \r\n line endings
	LogLevel    string `yaml:"log_level"`    // debug, info, warn, error
}

// CLIFlags represents command line flag values and whether they were explicitly set
type CLIFlags struct {
	ConfigFile    string
	ConfigFileSet bool

	Workspace      string
	WorkspaceSet   bool
	Output         string
	OutputSet      bool
	Wildcard       string
	WildcardSet    bool
	FeatureType    string
	FeatureTypeSet bool
	CRLF           bool
	CRLFSet        bool
	LogLevel       string
	LogLevelSet    bool
}

// LoadConfig loads configuration with proper priority:
// 1. Command line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Hard-coded defaults (lowest priority)
func LoadConfig(configPath string, cliFlags CLIFlags) (*Config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		fileCfg, err := loadConfigFile(configPath)
		if err != nil {
			// A missing default config file is fine, an explicit one is not
			if cliFlags.ConfigFileSet || !os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: failed to load config file %s: %v", models.ErrConfiguration, configPath, err)
			}
		} else {
			mergeConfig(cfg, fileCfg)
		}
	}

	applyEnvironmentVariables(cfg)
	applyCLIFlags(cfg, cliFlags)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ListOptions returns the feature class filters of the run
func (cfg *Config) ListOptions() models.ListOptions {
	return models.ListOptions{
		Wildcard:    cfg.Wildcard,
		FeatureType: cfg.FeatureType,
	}
}

func defaultConfig() *Config {
	return &Config{
		Output:   DefaultOutput,
		Wildcard: "*",
		LogLevel: "info",
	}
}

func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

// mergeConfig merges source config into dest, only overriding non-zero values
func mergeConfig(dest, src *Config) {
	if src.Workspace != "" {
		dest.Workspace = src.Workspace
	}
	if src.Output != "" {
		dest.Output = src.Output
	}
	if src.Wildcard != "" {
		dest.Wildcard = src.Wildcard
	}
	if src.FeatureType != "" {
		dest.FeatureType = src.FeatureType
	}
	if src.CRLF {
		dest.CRLF = src.CRLF
	}
	if src.LogLevel != "" {
		dest.LogLevel = src.LogLevel
	}
}

func setStringFromEnv(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

// setBoolFromEnv accepts "true", "1", or "yes" as true values
func setBoolFromEnv(dest *bool, key string) {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(val)
		*dest = val == "true" || val == "1" || val == "yes"
	}
}

// applyEnvironmentVariables overrides config with GDBCATALOG_ environment variables
func applyEnvironmentVariables(cfg *Config) {
	setStringFromEnv(&cfg.Workspace, "GDBCATALOG_WORKSPACE")
	setStringFromEnv(&cfg.Output, "GDBCATALOG_OUTPUT")
	setStringFromEnv(&cfg.Wildcard, "GDBCATALOG_WILDCARD")
	setStringFromEnv(&cfg.FeatureType, "GDBCATALOG_FEATURE_TYPE")
	setBoolFromEnv(&cfg.CRLF, "GDBCATALOG_CRLF")
	setStringFromEnv(&cfg.LogLevel, "GDBCATALOG_LOG_LEVEL")
}

func applyCLIFlags(cfg *Config, flags CLIFlags) {
	if flags.WorkspaceSet {
		cfg.Workspace = flags.Workspace
	}
	if flags.OutputSet {
		cfg.Output = flags.Output
	}
	if flags.WildcardSet {
		cfg.Wildcard = flags.Wildcard
	}
	if flags.FeatureTypeSet {
		cfg.FeatureType = flags.FeatureType
	}
	if flags.CRLFSet {
		cfg.CRLF = flags.CRLF
	}
	if flags.LogLevelSet {
		cfg.LogLevel = flags.LogLevel
	}
}

// validateConfig checks the run can start; errors wrap models.ErrConfiguration
func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Workspace) == "" {
		return fmt.Errorf("%w: workspace is required (set via --workspace, GDBCATALOG_WORKSPACE, or config file)", models.ErrConfiguration)
	}
	if _, err := workspace.Detect(cfg.Workspace); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Output) == "" {
		return fmt.Errorf("%w: output path is required", models.ErrConfiguration)
	}
	if info, err := os.Stat(cfg.Output); err == nil && info.IsDir() {
		return fmt.Errorf("%w: output path %s is a directory", models.ErrConfiguration, cfg.Output)
	}

	if _, err := workspace.NormalizeFeatureType(cfg.FeatureType); err != nil {
		return err
	}

	return nil
}
