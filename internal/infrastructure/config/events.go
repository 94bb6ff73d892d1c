package config

import "time"

// EventsConfig holds the NATS payable publisher configuration
type EventsConfig struct {
	// Enabled turns on publishing; payables are always kept in the outbox
	Enabled bool `mapstructure:"enabled"`

	// NATS server URL, e.g. nats://localhost:4222
	URL string `mapstructure:"url" validate:"required_if=Enabled true"`

	// Subject prefix; events go to <prefix>.<subcontractor>
	SubjectPrefix string `mapstructure:"subject_prefix" validate:"required"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}
