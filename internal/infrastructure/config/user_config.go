package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfig represents operator preferences stored in ~/.garmentflow/config.json
// This file stores ONLY preferences, never credentials
type UserConfig struct {
	// Worker recorded on cutting jobs when --worker is not given
	DefaultWorkerID string `json:"default_worker_id,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a new user config handler
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".garmentflow"))
}

// NewUserConfigHandlerAt uses an explicit directory for the config file
func NewUserConfigHandlerAt(configDir string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &UserConfigHandler{
		configPath: filepath.Join(configDir, "config.json"),
	}, nil
}

// Load reads the user config from disk
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	if _, err := os.Stat(h.configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(h.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &config, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(config *UserConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

// SetDefaultWorker stores the worker used when --worker is omitted
func (h *UserConfigHandler) SetDefaultWorker(workerID string) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultWorkerID = workerID
	return h.Save(config)
}

// ClearDefaultWorker removes the default worker setting
func (h *UserConfigHandler) ClearDefaultWorker() error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultWorkerID = ""
	return h.Save(config)
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
