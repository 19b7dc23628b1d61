// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	// DefaultFileName is looked up in the project root when no config path is given.
	DefaultFileName = "testgen.json"
	// PlaceholderAPIKey is written into synthesized configs and counts as no key.
	PlaceholderAPIKey = "YOUR_API_KEY_HERE"
	// EnvPrefix prefixes every environment override (TESTGEN_COVERAGE_THRESHOLD, ...).
	EnvPrefix = "TESTGEN"
)

// Provider selects the AI backend.
type Provider string

const (
	ProviderOpenAI  Provider = "openai"
	ProviderBedrock Provider = "bedrock"
	ProviderGemini  Provider = "gemini"
)

// Providers lists every supported backend.
var Providers = []Provider{ProviderOpenAI, ProviderBedrock, ProviderGemini}

// Config is the run configuration. It is loaded once and not modified afterwards.
type Config struct {
	Coverage       CoverageConfig   `mapstructure:"coverage" json:"coverage"`
	AIProvider     AIProviderConfig `mapstructure:"aiProvider" json:"aiProvider"`
	Output         OutputConfig     `mapstructure:"output" json:"output"`
	TargetPackages []string         `mapstructure:"targetPackages" json:"targetPackages"`
	Exclusions     []string         `mapstructure:"exclusions" json:"exclusions"`
	Pacing         PacingConfig     `mapstructure:"pacing" json:"pacing"`
	Logger         LoggerConfig     `mapstructure:"logger" json:"logger"`
}

// CoverageConfig locates the coverage trace and the code it describes.
type CoverageConfig struct {
	ExecFile  string `mapstructure:"execFile" json:"execFile"`
	ClassDir  string `mapstructure:"classDir" json:"classDir"`
	SourceDir string `mapstructure:"sourceDir" json:"sourceDir"`
	Threshold int    `mapstructure:"threshold" json:"threshold"`
}

// AIProviderConfig configures the backend that writes the tests.
type AIProviderConfig struct {
	Type           Provider `mapstructure:"type" json:"type"`
	Model          string   `mapstructure:"model" json:"model"`
	APIKey         string   `mapstructure:"apiKey" json:"apiKey"`
	AWSAccessKeyID string   `mapstructure:"awsAccessKeyId" json:"awsAccessKeyId,omitempty"`
	AWSSecretKey   string   `mapstructure:"awsSecretKey" json:"awsSecretKey,omitempty"`
	Region         string   `mapstructure:"region" json:"region,omitempty"`
	// Endpoint overrides the provider's default URL.
	Endpoint       string `mapstructure:"endpoint" json:"endpoint,omitempty"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds" json:"timeoutSeconds"`
}

// HasAPIKey reports whether a usable API key is configured.
func (a AIProviderConfig) HasAPIKey() bool {
	key := strings.TrimSpace(a.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// Timeout returns the per-request timeout.
func (a AIProviderConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// OutputConfig holds the root directory generated tests are written under.
type OutputConfig struct {
	Dir string `mapstructure:"dir" json:"dir"`
}

// PacingConfig spaces consecutive backend calls.
type PacingConfig struct {
	DelayMs int `mapstructure:"delayMs" json:"delayMs"`
}

// Delay returns the pause between consecutive backend calls.
func (p PacingConfig) Delay() time.Duration {
	return time.Duration(p.DelayMs) * time.Millisecond
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" json:"level"`
	Format      string `mapstructure:"format" json:"format"`
	ServiceName string `mapstructure:"serviceName" json:"serviceName"`
	// LogFile enables a rotating JSON log file when set.
	LogFile    string `mapstructure:"logFile" json:"logFile"`
	MaxSize    int    `mapstructure:"maxSize" json:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups" json:"maxBackups"`
	MaxAge     int    `mapstructure:"maxAge" json:"maxAge"`
	Compress   bool   `mapstructure:"compress" json:"compress"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes the default value of every recognized key.
func SetDefaults(v *viper.Viper) {
	// -- Coverage --
	v.SetDefault("coverage.execFile", "build/reports/jacoco/test/jacocoTestReport.xml")
	v.SetDefault("coverage.classDir", "build/classes/java/main")
	v.SetDefault("coverage.sourceDir", "src/main/java")
	v.SetDefault("coverage.threshold", 80)

	// -- AI Provider --
	v.SetDefault("aiProvider.type", string(ProviderOpenAI))
	v.SetDefault("aiProvider.model", "gpt-4")
	v.SetDefault("aiProvider.apiKey", PlaceholderAPIKey)
	v.SetDefault("aiProvider.awsAccessKeyId", "")
	v.SetDefault("aiProvider.awsSecretKey", "")
	v.SetDefault("aiProvider.region", "us-east-1")
	v.SetDefault("aiProvider.endpoint", "")
	v.SetDefault("aiProvider.timeoutSeconds", 120)

	// -- Output & Selection --
	v.SetDefault("output.dir", "src/test/java/generated")
	v.SetDefault("targetPackages", []string{})
	v.SetDefault("exclusions", []string{"**/*Application", "**/*Config", "**/*Exception"})

	// -- Pacing --
	v.SetDefault("pacing.delayMs", 1000)

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.serviceName", "testgen")
	v.SetDefault("logger.logFile", "")
	v.SetDefault("logger.maxSize", 10)
	v.SetDefault("logger.maxBackups", 3)
	v.SetDefault("logger.maxAge", 7)
	v.SetDefault("logger.compress", false)
}

// providerKeyEnv maps a provider to its conventional API key variable.
var providerKeyEnv = map[Provider]string{
	ProviderOpenAI: "OPENAI_API_KEY",
	ProviderGemini: "GEMINI_API_KEY",
}

// bindEnv wires TESTGEN_* overrides plus the conventional provider variables.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit bindings replace the automatic name, so it is listed first.
	// The conventional key variable depends on the provider already selected
	// by file or environment; another provider's key is never picked up.
	apiKeyVars := []string{"TESTGEN_AIPROVIDER_APIKEY"}
	if name, ok := providerKeyEnv[Provider(strings.ToLower(strings.TrimSpace(v.GetString("aiProvider.type"))))]; ok {
		apiKeyVars = append(apiKeyVars, name)
	}
	_ = v.BindEnv(append([]string{"aiProvider.apiKey"}, apiKeyVars...)...)
	_ = v.BindEnv("aiProvider.awsAccessKeyId", "TESTGEN_AIPROVIDER_AWSACCESSKEYID", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("aiProvider.awsSecretKey", "TESTGEN_AIPROVIDER_AWSSECRETKEY", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("aiProvider.region", "TESTGEN_AIPROVIDER_REGION", "AWS_REGION")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	bindEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.AIProvider.Type = Provider(strings.ToLower(strings.TrimSpace(string(cfg.AIProvider.Type))))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Load reads the JSON config at path. When the file does not exist a default
// one is written there first; created reports whether that happened.
func Load(v *viper.Viper, path string) (cfg *Config, created bool, err error) {
	SetDefaults(v)

	if _, statErr := os.Stat(path); statErr != nil {
		if !errors.Is(statErr, os.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to stat config file %s: %w", path, statErr)
		}
		if err := WriteDefault(path); err != nil {
			return nil, false, err
		}
		created = true
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, created, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err = NewConfigFromViper(v)
	return cfg, created, err
}

// WriteDefault writes the default configuration as indented JSON. The keys keep
// their documented camelCase spelling.
func WriteDefault(path string) error {
	data, err := json.MarshalIndent(NewDefaultConfig(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write default config %s: %w", path, err)
	}
	return nil
}

// ResolvePaths expands '~' and anchors relative paths at root.
func (c *Config) ResolvePaths(root string) error {
	for _, p := range []*string{
		&c.Coverage.ExecFile,
		&c.Coverage.ClassDir,
		&c.Coverage.SourceDir,
		&c.Output.Dir,
		&c.Logger.LogFile,
	} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		if !filepath.IsAbs(expanded) {
			expanded = filepath.Join(root, expanded)
		}
		*p = filepath.Clean(expanded)
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Coverage.Threshold < 0 || c.Coverage.Threshold > 100 {
		return fmt.Errorf("coverage.threshold must be between 0 and 100, got %d", c.Coverage.Threshold)
	}
	if c.Coverage.ExecFile == "" {
		return fmt.Errorf("coverage.execFile is a required configuration field")
	}
	if c.Coverage.SourceDir == "" {
		return fmt.Errorf("coverage.sourceDir is a required configuration field")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is a required configuration field")
	}
	if err := c.AIProvider.Validate(); err != nil {
		return fmt.Errorf("aiProvider configuration invalid: %w", err)
	}
	if c.Pacing.DelayMs < 0 {
		return fmt.Errorf("pacing.delayMs must not be negative")
	}
	return nil
}

// Validate checks the provider selection. Missing credentials are not an error
// here: the backend reports them per call.
func (a *AIProviderConfig) Validate() error {
	known := false
	for _, p := range Providers {
		if a.Type == p {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown provider %q, supported: %v", a.Type, Providers)
	}
	if a.Type == ProviderBedrock && a.Region == "" {
		return fmt.Errorf("region is required for the bedrock provider")
	}
	if a.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be a positive integer")
	}
	return nil
}
