package config

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultRegion   = "us-south"
	DefaultRegistry = "private.us.icr.io"
)

type Config struct {
	APIKey            string        `toml:"api_key"`
	Region            string        `toml:"region"`
	Endpoint          string        `toml:"endpoint"`
	Toolsets          []string      `toml:"toolsets"`
	ReadOnly          bool          `toml:"read_only"`
	LogLevel          string        `toml:"log_level"`
	LogFormat         string        `toml:"log_format"`
	MaxResults        int           `toml:"max_results"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Timeouts          TimeoutConfig `toml:"timeouts"`
	Deploy            DeployConfig  `toml:"deploy"`
}

type TimeoutConfig struct {
	DefaultSeconds int            `toml:"default_seconds"`
	MaxSeconds     int            `toml:"max_seconds"`
	PerTool        map[string]int `toml:"per_tool"`
}

// DeployConfig drives the build-source deployment that shells out to the
// IBM Cloud CLI.
type DeployConfig struct {
	CLIPath        string `toml:"cli_path"`
	Registry       string `toml:"registry"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type Overrides struct {
	APIKey   *string
	Region   *string
	Endpoint *string
	Toolsets *[]string
	ReadOnly *bool
	LogLevel *string
}

func DefaultConfig() Config {
	return Config{
		Region:    DefaultRegion,
		Toolsets:  []string{"codeengine"},
		LogLevel:  "info",
		LogFormat: "json",
		Deploy: DeployConfig{
			CLIPath:        "ibmcloud",
			Registry:       DefaultRegistry,
			TimeoutSeconds: 900,
		},
	}
}

// Load layers defaults, the config file, drop-in files, environment
// variables and finally explicit overrides.
func Load(path string, dir string, overrides Overrides) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return cfg, err
		}
		merge(&cfg, fileCfg)
	}

	if dir != "" {
		files, err := dropInFiles(dir)
		if err != nil {
			return cfg, err
		}
		for _, file := range files {
			fileCfg, err := readFile(file)
			if err != nil {
				return cfg, err
			}
			merge(&cfg, fileCfg)
		}
	}

	applyEnv(&cfg, os.Getenv)
	applyOverrides(&cfg, overrides)
	return cfg, nil
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not an
// error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("IBMCLOUD_API_KEY environment variable not set")
	}
	if strings.TrimSpace(c.Region) == "" && strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("region or endpoint required")
	}
	if c.MaxResults < 0 {
		return errors.New("max_results must not be negative")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("requests_per_second must not be negative")
	}
	return nil
}

func readFile(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err != nil {
		return cfg, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func dropInFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func merge(dst *Config, src Config) {
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Region != "" {
		dst.Region = src.Region
	}
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if len(src.Toolsets) > 0 {
		dst.Toolsets = append([]string{}, src.Toolsets...)
	}
	if src.ReadOnly {
		dst.ReadOnly = src.ReadOnly
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	if src.MaxResults > 0 {
		dst.MaxResults = src.MaxResults
	}
	if src.RequestsPerSecond > 0 {
		dst.RequestsPerSecond = src.RequestsPerSecond
	}
	if src.Timeouts.DefaultSeconds > 0 {
		dst.Timeouts.DefaultSeconds = src.Timeouts.DefaultSeconds
	}
	if src.Timeouts.MaxSeconds > 0 {
		dst.Timeouts.MaxSeconds = src.Timeouts.MaxSeconds
	}
	if len(src.Timeouts.PerTool) > 0 {
		if dst.Timeouts.PerTool == nil {
			dst.Timeouts.PerTool = map[string]int{}
		}
		for tool, seconds := range src.Timeouts.PerTool {
			dst.Timeouts.PerTool[tool] = seconds
		}
	}
	if src.Deploy.CLIPath != "" {
		dst.Deploy.CLIPath = src.Deploy.CLIPath
	}
	if src.Deploy.Registry != "" {
		dst.Deploy.Registry = src.Deploy.Registry
	}
	if src.Deploy.TimeoutSeconds > 0 {
		dst.Deploy.TimeoutSeconds = src.Deploy.TimeoutSeconds
	}
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if value := strings.TrimSpace(getenv("IBMCLOUD_API_KEY")); value != "" {
		cfg.APIKey = value
	}
	if value := strings.TrimSpace(getenv("IBMCLOUD_REGION")); value != "" {
		cfg.Region = value
	}
	if value := strings.TrimSpace(getenv("CE_ENDPOINT")); value != "" {
		cfg.Endpoint = value
	}
	if value := strings.TrimSpace(getenv("LOG_LEVEL")); value != "" {
		cfg.LogLevel = strings.ToLower(value)
	}
	if value := strings.TrimSpace(getenv("CE_MAX_RESULTS")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			cfg.MaxResults = parsed
		}
	}
}

func applyOverrides(cfg *Config, overrides Overrides) {
	if overrides.APIKey != nil {
		cfg.APIKey = *overrides.APIKey
	}
	if overrides.Region != nil {
		cfg.Region = *overrides.Region
	}
	if overrides.Endpoint != nil {
		cfg.Endpoint = *overrides.Endpoint
	}
	if overrides.Toolsets != nil {
		cfg.Toolsets = append([]string{}, (*overrides.Toolsets)...)
	}
	if overrides.ReadOnly != nil {
		cfg.ReadOnly = *overrides.ReadOnly
	}
	if overrides.LogLevel != nil {
		cfg.LogLevel = *overrides.LogLevel
	}
}
