package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Dispatch DispatchConfig `mapstructure:"dispatch" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// LLMConfig contains the AI-provider settings used by exam generation and
// evaluation.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name"     validate:"required"`

	// TimeoutSeconds is the hard ceiling on a single provider call. A call
	// exceeding it fails the job; there is no retry.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// DispatchConfig controls how a worker invocation is triggered after a job
// is enqueued.
type DispatchConfig struct {
	// LaunchMode selects the worker launcher: "goroutine" runs one worker
	// invocation in-process per trigger; "none" relies on an external
	// scheduler invoking cmd/worker.
	LaunchMode string `mapstructure:"launch_mode" validate:"required,oneof=goroutine none"`
}
