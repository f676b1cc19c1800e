package config_test

import (
	"fmt"
	"log"
	"os"

	"github.com/aura-agent/aura/internal/config"
)

// ExampleLoad demonstrates how to load configuration from the default location.
func ExampleLoad() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Fast path enabled: %v\n", cfg.Planner.FastPathEnabled)
	fmt.Printf("Fuzzy threshold: %d\n", cfg.Accessibility.FuzzyThreshold)
}

// ExampleLoadFromPath demonstrates loading config from a specific path.
func ExampleLoadFromPath() {
	cfg, err := config.LoadFromPath("/tmp/test-aura/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Loaded from custom path\n")
	fmt.Printf("Confidence threshold: %v\n", cfg.Intent.ConfidenceThreshold)
}

// ExampleConfig_Save demonstrates saving configuration changes.
func ExampleConfig_Save() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.Logging.Level = "debug"

	if err := cfg.Save(); err != nil {
		log.Fatalf("Failed to save config: %v", err)
	}

	fmt.Println("Configuration saved successfully")
}

// ExampleConfig_Validate demonstrates configuration validation.
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	fmt.Println("Configuration is valid")

	cfg.Accessibility.ClickableRoles = nil
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Validation error: %v\n", err)
	}
}

// ExampleConfig_EnsureDirectories demonstrates directory creation.
func ExampleConfig_EnsureDirectories() {
	cfg := config.Default()

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	fmt.Println("All directories created successfully")
}

// ExampleDefault demonstrates creating a config with default values.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Fuzzy threshold: %d\n", cfg.Accessibility.FuzzyThreshold)
	fmt.Printf("Conversation context size: %d\n", cfg.Intent.ConversationContextSize)
	fmt.Printf("Deferred timeout ms: %d\n", cfg.Deferred.ActionTimeoutMS)
}

// Example_environmentVariables demonstrates how environment variables
// override config.
func Example_environmentVariables() {
	os.Setenv("AURA_INTENT_CONFIDENCE_THRESHOLD", "0.85")
	os.Setenv("AURA_LOGGING_LEVEL", "debug")
	defer func() {
		os.Unsetenv("AURA_INTENT_CONFIDENCE_THRESHOLD")
		os.Unsetenv("AURA_LOGGING_LEVEL")
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Confidence threshold (from env): %v\n", cfg.Intent.ConfidenceThreshold)
	fmt.Printf("Log level (from env): %v\n", cfg.Logging.Level)
}

// Example_lockConfiguration demonstrates configuring the orchestrator's
// lock acquisition budgets.
func Example_lockConfiguration() {
	cfg := config.Default()

	cfg.Locks.ExecutionLockTimeoutMS = 5000

	fmt.Printf("Execution lock timeout: %v\n", cfg.ExecutionLockTimeout())
}

// Example_loggingConfiguration demonstrates logging setup.
func Example_loggingConfiguration() {
	cfg := config.Default()

	fmt.Printf("Log level: %s\n", cfg.Logging.Level)

	cfg.Logging.Level = "debug"

	fmt.Println("Log level set to debug")
}

// Example_fullWorkflow demonstrates a complete configuration workflow.
func Example_fullWorkflow() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("Failed to create directories: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Printf("Fuzzy threshold: %d\n", cfg.Accessibility.FuzzyThreshold)

	if err := cfg.Save(); err != nil {
		log.Fatalf("Failed to save config: %v", err)
	}

	fmt.Println("Configuration workflow complete")
}
