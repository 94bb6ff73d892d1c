package config

import "time"

// ServerConfig holds the HTTP API server configuration
type ServerConfig struct {
	// Listen address (host:port)
	Address string `mapstructure:"address" validate:"required"`

	// Gin mode: debug, release, test
	Mode string `mapstructure:"mode" validate:"required,oneof=debug release test"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`

	// Command rate limit applied to mutating endpoints
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// GRPCConfig holds the health/reflection gRPC server configuration
type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address" validate:"required_if=Enabled true"`
}
