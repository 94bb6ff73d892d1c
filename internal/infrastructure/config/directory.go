package config

import "time"

// DirectoryConfig holds the employee directory client configuration
type DirectoryConfig struct {
	// Enabled turns on worker id validation against the directory
	Enabled bool `mapstructure:"enabled"`

	// Base URL of the directory service
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	// Rate limiting settings
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// Retry configuration
	Retry RetryConfig `mapstructure:"retry"`

	// Consecutive failures before the circuit opens
	FailureThreshold int `mapstructure:"failure_threshold" validate:"min=1"`

	// Time the circuit stays open before a probe request
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig holds retry configuration for failed requests
type RetryConfig struct {
	// Maximum number of retry attempts
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Base duration for exponential backoff
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}
