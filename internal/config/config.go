package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration for the AURA desktop agent.
// It is loaded from ~/.aura/config.yaml and can be overridden by environment
// variables.
type Config struct {
	Planner       PlannerConfig       `mapstructure:"planner" yaml:"planner"`
	Accessibility AccessibilityConfig `mapstructure:"accessibility" yaml:"accessibility"`
	Deferred      DeferredConfig      `mapstructure:"deferred" yaml:"deferred"`
	Intent        IntentConfig        `mapstructure:"intent" yaml:"intent"`
	Locks         LockConfig          `mapstructure:"locks" yaml:"locks"`
	Performance   PerformanceConfig   `mapstructure:"performance" yaml:"performance"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
}

// PlannerConfig controls the hybrid execution planner (fast accessibility
// path vs. slow vision fallback).
type PlannerConfig struct {
	// FastPathEnabled toggles the accessibility-first planning path. When
	// false every command falls through to the vision path.
	FastPathEnabled bool `mapstructure:"fast_path_enabled" yaml:"fast_path_enabled"`
}

// AccessibilityConfig controls element discovery and matching.
type AccessibilityConfig struct {
	// FuzzyThreshold is the minimum match score (0-100) accepted by the
	// target matcher.
	FuzzyThreshold int `mapstructure:"fuzzy_threshold" yaml:"fuzzy_threshold"`
	// FuzzyTimeoutMS bounds a single fuzzy-match pass.
	FuzzyTimeoutMS int `mapstructure:"fuzzy_timeout_ms" yaml:"fuzzy_timeout_ms"`
	// ClickableRoles lists the accessibility roles considered actionable.
	ClickableRoles []string `mapstructure:"clickable_roles" yaml:"clickable_roles"`
	// AccessibilityAttributes lists the attributes read off each element.
	// The connector's attribute set is fixed; it does not consult this field.
	AccessibilityAttributes []string `mapstructure:"accessibility_attributes" yaml:"accessibility_attributes"`
}

// DeferredConfig controls the deferred-action subsystem.
type DeferredConfig struct {
	// ActionTimeoutMS bounds how long a deferred action waits for a
	// placement trigger before it is abandoned.
	ActionTimeoutMS int `mapstructure:"action_timeout_ms" yaml:"action_timeout_ms"`
	// MouseListenerThreadTimeoutMS bounds the mouse-listener worker's
	// graceful shutdown window.
	MouseListenerThreadTimeoutMS int `mapstructure:"mouse_listener_thread_timeout_ms" yaml:"mouse_listener_thread_timeout_ms"`
}

// IntentConfig controls command classification.
type IntentConfig struct {
	// RecognitionTimeoutMS bounds the LLM-assisted recognizer call.
	RecognitionTimeoutMS int `mapstructure:"recognition_timeout_ms" yaml:"recognition_timeout_ms"`
	// ConfidenceThreshold is the minimum LLM confidence accepted before
	// falling back to the regex classifier.
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
	// ConversationContextSize is how many prior turns are kept for intent
	// disambiguation.
	ConversationContextSize int `mapstructure:"conversation_context_size" yaml:"conversation_context_size"`
}

// LockConfig holds lock acquisition budgets. ExecutionLockTimeoutMS bounds
// the orchestrator's wait for execution_lock, and a timeout fails the
// command; DeferredLockTimeoutMS bounds internal/deferred's deferred_lock.
// IntentLockTimeoutMS is not read by internal/intent, whose intent lock
// uses a fixed 10s budget and falls back to the regex classifier on timeout.
type LockConfig struct {
	ExecutionLockTimeoutMS int `mapstructure:"execution_lock_timeout_ms" yaml:"execution_lock_timeout_ms"`
	DeferredLockTimeoutMS  int `mapstructure:"deferred_lock_timeout_ms" yaml:"deferred_lock_timeout_ms"`
	IntentLockTimeoutMS    int `mapstructure:"intent_lock_timeout_ms" yaml:"intent_lock_timeout_ms"`
}

// PerformanceConfig controls the rolling metrics warn/critical thresholds.
type PerformanceConfig struct {
	WarnMS int `mapstructure:"warn_ms" yaml:"warn_ms"`
	CritMS int `mapstructure:"crit_ms" yaml:"crit_ms"`
}

// LoggingConfig contains configuration for application logging.
type LoggingConfig struct {
	// Level is the log level ("debug", "info", "warn", "error").
	Level string `mapstructure:"level" yaml:"level"`
	// File is the path to the log file.
	File string `mapstructure:"file" yaml:"file"`
}

// Default returns a Config with sensible default values drawn from the
// AURA configuration surface.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	auraDir := filepath.Join(homeDir, ".aura")

	return &Config{
		Planner: PlannerConfig{
			FastPathEnabled: true,
		},
		Accessibility: AccessibilityConfig{
			FuzzyThreshold: 70,
			FuzzyTimeoutMS: 500,
			ClickableRoles: []string{
				"AXButton", "AXLink", "AXMenuItem", "AXCheckBox",
				"AXRadioButton", "AXTextField", "AXTextArea", "AXPopUpButton",
			},
			AccessibilityAttributes: []string{
				"AXTitle", "AXDescription", "AXValue",
			},
		},
		Deferred: DeferredConfig{
			ActionTimeoutMS:              30000,
			MouseListenerThreadTimeoutMS: 15000,
		},
		Intent: IntentConfig{
			RecognitionTimeoutMS:    15000,
			ConfidenceThreshold:     0.7,
			ConversationContextSize: 5,
		},
		Locks: LockConfig{
			ExecutionLockTimeoutMS: 30000,
			DeferredLockTimeoutMS:  5000,
			IntentLockTimeoutMS:    15000,
		},
		Performance: PerformanceConfig{
			WarnMS: 1500,
			CritMS: 3000,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(auraDir, "logs", "aura.log"),
		},
	}
}

// Load reads configuration from the default location (~/.aura/config.yaml)
// and merges with environment variables. If no config file exists, it
// creates one with default values.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".aura", "config.yaml")
	return LoadFromPath(configPath)
}

// LoadFromPath reads configuration from a specific file path and merges
// with environment variables. If the file doesn't exist, it creates one
// with default values.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := writeConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Example override: AURA_INTENT_CONFIDENCE_THRESHOLD=0.8
	v.SetEnvPrefix("AURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Logging.File = expandPath(cfg.Logging.File)

	return &cfg, nil
}

// Save writes the current configuration to the default config file
// location.
func (c *Config) Save() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".aura", "config.yaml")
	return c.SaveToPath(configPath)
}

// SaveToPath writes the current configuration to a specific file path.
func (c *Config) SaveToPath(path string) error {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return writeConfigFile(path, c)
}

// GetDataDir returns the AURA data directory path (~/.aura).
func (c *Config) GetDataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".aura")
}

// GetConfigPath returns the full path to the config file.
func (c *Config) GetConfigPath() string {
	return filepath.Join(c.GetDataDir(), "config.yaml")
}

// EnsureDirectories creates all necessary directories for AURA operation.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.GetDataDir(),
		filepath.Dir(c.Logging.File),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Validate checks the configuration for common errors and inconsistencies.
func (c *Config) Validate() error {
	if c.Accessibility.FuzzyThreshold < 0 || c.Accessibility.FuzzyThreshold > 100 {
		return fmt.Errorf("accessibility.fuzzy_threshold must be between 0 and 100")
	}

	if len(c.Accessibility.ClickableRoles) == 0 {
		return fmt.Errorf("accessibility.clickable_roles cannot be empty")
	}

	if c.Intent.ConfidenceThreshold < 0 || c.Intent.ConfidenceThreshold > 1 {
		return fmt.Errorf("intent.confidence_threshold must be between 0 and 1")
	}

	if c.Intent.ConversationContextSize <= 0 {
		return fmt.Errorf("intent.conversation_context_size must be positive")
	}

	if c.Deferred.ActionTimeoutMS <= 0 {
		return fmt.Errorf("deferred.action_timeout_ms must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

// ExecutionLockTimeout returns the execution lock's acquisition budget.
func (c *Config) ExecutionLockTimeout() time.Duration {
	return time.Duration(c.Locks.ExecutionLockTimeoutMS) * time.Millisecond
}

// DeferredLockTimeout returns the deferred-state lock's acquisition budget.
func (c *Config) DeferredLockTimeout() time.Duration {
	return time.Duration(c.Locks.DeferredLockTimeoutMS) * time.Millisecond
}

// IntentLockTimeout returns the configured intent lock budget. internal/intent
// does not consult it.
func (c *Config) IntentLockTimeout() time.Duration {
	return time.Duration(c.Locks.IntentLockTimeoutMS) * time.Millisecond
}

// writeConfigFile writes a Config struct to a YAML file.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands ~ to the user's home directory in a path string.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
