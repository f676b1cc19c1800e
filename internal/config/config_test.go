package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Planner.FastPathEnabled {
		t.Error("expected fast path to be enabled by default")
	}

	if cfg.Accessibility.FuzzyThreshold != 70 {
		t.Errorf("expected default fuzzy threshold 70, got %d", cfg.Accessibility.FuzzyThreshold)
	}

	if cfg.Intent.ConversationContextSize != 5 {
		t.Errorf("expected default conversation context size 5, got %d", cfg.Intent.ConversationContextSize)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got '%s'", cfg.Logging.Level)
	}

	if len(cfg.Accessibility.ClickableRoles) == 0 {
		t.Error("expected default clickable roles to be populated")
	}

	found := false
	for _, role := range cfg.Accessibility.ClickableRoles {
		if role == "AXLink" {
			found = true
		}
	}
	if !found {
		t.Error("expected AXLink to be among the default clickable roles")
	}
}

func TestLoadFromPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".aura", "config.yaml")

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	if cfg.Accessibility.FuzzyThreshold != 70 {
		t.Errorf("expected default fuzzy threshold 70, got %d", cfg.Accessibility.FuzzyThreshold)
	}

	cfg2, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("failed to load existing config: %v", err)
	}

	if cfg2.Accessibility.FuzzyThreshold != cfg.Accessibility.FuzzyThreshold {
		t.Error("config values changed on reload")
	}
}

func TestSaveToPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".aura", "config.yaml")

	cfg := Default()
	cfg.Intent.ConfidenceThreshold = 0.85
	cfg.Logging.Level = "debug"

	if err := cfg.SaveToPath(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}

	if loaded.Intent.ConfidenceThreshold != 0.85 {
		t.Errorf("expected confidence threshold 0.85, got %v", loaded.Intent.ConfidenceThreshold)
	}

	if loaded.Logging.Level != "debug" {
		t.Error("expected log level 'debug'")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := Default()
	dataDir := cfg.GetDataDir()

	homeDir, _ := os.UserHomeDir()
	expected := filepath.Join(homeDir, ".aura")

	if dataDir != expected {
		t.Errorf("expected data dir '%s', got '%s'", expected, dataDir)
	}
}

func TestEnsureDirectories(t *testing.T) {
	tempDir := t.TempDir()

	cfg := &Config{
		Logging: LoggingConfig{
			File: filepath.Join(tempDir, ".aura", "logs", "aura.log"),
		},
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("failed to ensure directories: %v", err)
	}

	dirs := []string{
		filepath.Join(tempDir, ".aura"),
		filepath.Join(tempDir, ".aura", "logs"),
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			t.Errorf("directory '%s' was not created", dir)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			cfg:     Default(),
			wantErr: false,
		},
		{
			name: "fuzzy threshold out of range",
			cfg: &Config{
				Accessibility: AccessibilityConfig{
					FuzzyThreshold: 150,
					ClickableRoles: []string{"AXButton"},
				},
				Intent:  IntentConfig{ConfidenceThreshold: 0.7, ConversationContextSize: 5},
				Deferred: DeferredConfig{ActionTimeoutMS: 1000},
				Logging: LoggingConfig{Level: "info"},
			},
			wantErr: true,
		},
		{
			name: "empty clickable roles",
			cfg: &Config{
				Accessibility: AccessibilityConfig{
					FuzzyThreshold: 70,
					ClickableRoles: nil,
				},
				Intent:  IntentConfig{ConfidenceThreshold: 0.7, ConversationContextSize: 5},
				Deferred: DeferredConfig{ActionTimeoutMS: 1000},
				Logging: LoggingConfig{Level: "info"},
			},
			wantErr: true,
		},
		{
			name: "confidence threshold out of range",
			cfg: &Config{
				Accessibility: AccessibilityConfig{
					FuzzyThreshold: 70,
					ClickableRoles: []string{"AXButton"},
				},
				Intent:  IntentConfig{ConfidenceThreshold: 1.5, ConversationContextSize: 5},
				Deferred: DeferredConfig{ActionTimeoutMS: 1000},
				Logging: LoggingConfig{Level: "info"},
			},
			wantErr: true,
		},
		{
			name: "zero conversation context size",
			cfg: &Config{
				Accessibility: AccessibilityConfig{
					FuzzyThreshold: 70,
					ClickableRoles: []string{"AXButton"},
				},
				Intent:  IntentConfig{ConfidenceThreshold: 0.7, ConversationContextSize: 0},
				Deferred: DeferredConfig{ActionTimeoutMS: 1000},
				Logging: LoggingConfig{Level: "info"},
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			cfg: &Config{
				Accessibility: AccessibilityConfig{
					FuzzyThreshold: 70,
					ClickableRoles: []string{"AXButton"},
				},
				Intent:  IntentConfig{ConfidenceThreshold: 0.7, ConversationContextSize: 5},
				Deferred: DeferredConfig{ActionTimeoutMS: 1000},
				Logging: LoggingConfig{Level: "invalid"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "path with tilde",
			input:    "~/.aura/config.yaml",
			expected: filepath.Join(homeDir, ".aura", "config.yaml"),
		},
		{
			name:     "absolute path",
			input:    "/usr/local/bin/aurad",
			expected: "/usr/local/bin/aurad",
		},
		{
			name:     "relative path",
			input:    "./config.yaml",
			expected: "./config.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%s) = %s, expected %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestConfigSerialization(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	original := Default()
	original.Intent.ConfidenceThreshold = 0.9
	original.Accessibility.FuzzyThreshold = 80
	original.Deferred.ActionTimeoutMS = 45000
	original.Logging.Level = "debug"

	if err := original.SaveToPath(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.Intent.ConfidenceThreshold != 0.9 {
		t.Errorf("confidence threshold mismatch: got %v, want 0.9", loaded.Intent.ConfidenceThreshold)
	}

	if loaded.Accessibility.FuzzyThreshold != 80 {
		t.Errorf("fuzzy threshold mismatch: got %d, want 80", loaded.Accessibility.FuzzyThreshold)
	}

	if loaded.Deferred.ActionTimeoutMS != 45000 {
		t.Errorf("deferred timeout mismatch: got %d, want 45000", loaded.Deferred.ActionTimeoutMS)
	}

	if loaded.Logging.Level != "debug" {
		t.Errorf("log level mismatch: got %s, want debug", loaded.Logging.Level)
	}
}

func TestEnvironmentVariableOverride(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cfg := Default()
	if err := cfg.SaveToPath(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	os.Setenv("AURA_LOGGING_LEVEL", "debug")
	defer os.Unsetenv("AURA_LOGGING_LEVEL")

	loaded, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	t.Logf("log level from config: %s", loaded.Logging.Level)
	if loaded.Logging.Level != "debug" {
		t.Errorf("expected AURA_LOGGING_LEVEL to override log level: got %s, want debug", loaded.Logging.Level)
	}
}
