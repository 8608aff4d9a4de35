// Package config defines the application configuration structure and loads
// it from environment variables (EXAM_ prefix) and an optional YAML file,
// with validation of all required settings.
package config
