// Package config provides configuration management for the AURA desktop
// automation agent.
//
// # Overview
//
// The config package uses Viper to load configuration from YAML files and
// environment variables. It provides a type-safe configuration structure
// with validation, default values, and automatic file creation.
//
// # Configuration File
//
// The configuration is stored at ~/.aura/config.yaml and is automatically
// created with sensible defaults on first use.
//
// # Environment Variables
//
// All configuration values can be overridden using environment variables
// with the AURA_ prefix. Nested fields are separated by underscores.
//
// Examples:
//   - AURA_INTENT_CONFIDENCE_THRESHOLD=0.8
//   - AURA_ACCESSIBILITY_FUZZY_THRESHOLD=75
//   - AURA_LOGGING_LEVEL=debug
//
// # Configuration Sections
//
//   - Planner: hybrid execution planner behavior
//   - Accessibility: fuzzy matching thresholds, clickable roles, attributes
//   - Deferred: deferred-action and mouse-listener timeouts
//   - Intent: command classification timeouts and thresholds
//   - Locks: acquisition budgets for the orchestrator's three named locks
//   - Performance: rolling metrics warn/critical thresholds
//   - Logging: log level and output file configuration
//
// # Path Expansion
//
// The package automatically expands ~ to the user's home directory in
// all path configurations.
package config
