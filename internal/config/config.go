package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration settings
type Config struct {
	// Completion provider credentials and endpoint
	API APIConfig `mapstructure:"api" yaml:"api"`

	// Template and artifact locations
	Paths PathsConfig `mapstructure:"paths" yaml:"paths"`

	// Retry/concurrency settings for the invoker
	Invoker InvokerConfig `mapstructure:"invoker" yaml:"invoker"`

	// Logging settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type APIConfig struct {
	OpenAIKey      string        `mapstructure:"openai_key" yaml:"openai_key"`
	OrganizationID string        `mapstructure:"organization_id" yaml:"organization_id"`
	Model          string        `mapstructure:"model" yaml:"model"`
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UseKeychain    bool          `mapstructure:"use_keychain" yaml:"use_keychain"` // Fall back to OS keychain for key/org
}

type PathsConfig struct {
	CodeTemplate string `mapstructure:"code_template" yaml:"code_template"`
	ExecMain     string `mapstructure:"exec_main" yaml:"exec_main"`
	APISchema    string `mapstructure:"api_schema" yaml:"api_schema"`
	Templates    string `mapstructure:"templates" yaml:"templates"` // Optional YAML template file
	Journal      string `mapstructure:"journal" yaml:"journal"`     // Invocation journal (bbolt); empty disables
}

type InvokerConfig struct {
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" yaml:"attempt_timeout"`
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
	File  string `mapstructure:"file" yaml:"file"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	workDir := filepath.Join(homeDir, ".autogippity")
	return &Config{
		API: APIConfig{
			Model:       "gpt-3.5-turbo",
			BaseURL:     "https://api.openai.com/v1",
			Timeout:     60 * time.Second,
			UseKeychain: true,
		},
		Paths: PathsConfig{
			CodeTemplate: filepath.Join(workDir, "web_template", "code_template.go"),
			ExecMain:     filepath.Join(workDir, "web_template", "main.go"),
			APISchema:    filepath.Join(workDir, "schemas", "api_schema.json"),
			Journal:      filepath.Join(workDir, "journal.db"),
		},
		Invoker: InvokerConfig{
			AttemptTimeout: 90 * time.Second,
			Concurrency:    4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from file, .env files and the environment.
// The returned value is treated as immutable by the rest of the program.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	setDefaults(v, cfg)

	v.SetEnvPrefix("AUTOGIPPITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".autogippity")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".autogippity"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg, NewKeyringManager())

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can bind AUTOGIPPITY_* variables
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.openai_key", cfg.API.OpenAIKey)
	v.SetDefault("api.organization_id", cfg.API.OrganizationID)
	v.SetDefault("api.model", cfg.API.Model)
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.use_keychain", cfg.API.UseKeychain)

	v.SetDefault("paths.code_template", cfg.Paths.CodeTemplate)
	v.SetDefault("paths.exec_main", cfg.Paths.ExecMain)
	v.SetDefault("paths.api_schema", cfg.Paths.APISchema)
	v.SetDefault("paths.templates", cfg.Paths.Templates)
	v.SetDefault("paths.journal", cfg.Paths.Journal)

	v.SetDefault("invoker.attempt_timeout", cfg.Invoker.AttemptTimeout)
	v.SetDefault("invoker.concurrency", cfg.Invoker.Concurrency)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.json", cfg.Logging.JSON)
	v.SetDefault("logging.file", cfg.Logging.File)
}

// applyEnvOverrides applies provider environment variables and the keychain fallback.
// Precedence: 1. Env var 2. Config file 3. Keychain
func applyEnvOverrides(cfg *Config, km *KeyringManager) {
	if key := firstEnv("OPEN_AI_KEY", "OPENAI_API_KEY"); key != "" {
		cfg.API.OpenAIKey = key
	}
	if org := firstEnv("OPEN_AI_ORG", "OPENAI_ORG_ID"); org != "" {
		cfg.API.OrganizationID = org
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.API.Model = model
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		cfg.API.BaseURL = url
	}

	if cfg.API.UseKeychain && (cfg.API.OpenAIKey == "" || cfg.API.OrganizationID == "") && km.IsAvailable() {
		if cfg.API.OpenAIKey == "" {
			if key, err := km.GetAPIKey(); err == nil && key != "" {
				cfg.API.OpenAIKey = key
			}
		}
		if cfg.API.OrganizationID == "" {
			if org, err := km.GetOrganizationID(); err == nil && org != "" {
				cfg.API.OrganizationID = org
			}
		}
	}

	cfg.Paths.CodeTemplate = expandPath(cfg.Paths.CodeTemplate)
	cfg.Paths.ExecMain = expandPath(cfg.Paths.ExecMain)
	cfg.Paths.APISchema = expandPath(cfg.Paths.APISchema)
	cfg.Paths.Templates = expandPath(cfg.Paths.Templates)
	cfg.Paths.Journal = expandPath(cfg.Paths.Journal)
	cfg.Logging.File = expandPath(cfg.Logging.File)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves configuration to file. Secrets are left out when the keychain holds them.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	api := c.API
	if api.UseKeychain {
		api.OpenAIKey = ""
		api.OrganizationID = ""
	}

	v.Set("api", api)
	v.Set("paths", c.Paths)
	v.Set("invoker", c.Invoker)
	v.Set("logging", c.Logging)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
