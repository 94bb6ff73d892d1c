package config

import "time"

// DefaultStages is the stage list used when none is configured
var DefaultStages = []string{"cutting", "stitching", "overlock", "finishing"}

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "garmentflow"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "garmentflow"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.RateLimit.Requests == 0 {
		cfg.Server.RateLimit.Requests = 50
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 100
	}

	// gRPC defaults
	if cfg.GRPC.Address == "" {
		cfg.GRPC.Address = "localhost:50061"
	}

	// Pipeline defaults
	if len(cfg.Pipeline.Stages) == 0 {
		cfg.Pipeline.Stages = append([]string(nil), DefaultStages...)
	}

	// Directory defaults
	if cfg.Directory.Timeout == 0 {
		cfg.Directory.Timeout = 10 * time.Second
	}
	if cfg.Directory.RateLimit.Requests == 0 {
		cfg.Directory.RateLimit.Requests = 5
	}
	if cfg.Directory.RateLimit.Burst == 0 {
		cfg.Directory.RateLimit.Burst = 10
	}
	if cfg.Directory.Retry.MaxAttempts == 0 {
		cfg.Directory.Retry.MaxAttempts = 3
	}
	if cfg.Directory.Retry.BackoffBase == 0 {
		cfg.Directory.Retry.BackoffBase = 500 * time.Millisecond
	}
	if cfg.Directory.FailureThreshold == 0 {
		cfg.Directory.FailureThreshold = 5
	}
	if cfg.Directory.ResetTimeout == 0 {
		cfg.Directory.ResetTimeout = 30 * time.Second
	}

	// Events defaults
	if cfg.Events.SubjectPrefix == "" {
		cfg.Events.SubjectPrefix = "payables"
	}
	if cfg.Events.ConnectTimeout == 0 {
		cfg.Events.ConnectTimeout = 5 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
