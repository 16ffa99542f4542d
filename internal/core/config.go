package core

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/parley/pkg/models"
)

// ConfigurationManager defines the interface for loading and validating the
// global .parleyconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for reading
// YAML configuration files.
type viperConfigManager struct {
	// basePath is the directory where .parleyconfig resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// configuration relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		DefaultModel:     "meta-llama/llama-3.1-8b-instruct",
		MaxRounds:        10,
		EventProbability: 0.15,
		InitialFunding:   100000,
		RequestedFunding: 150000,
		OfflineMode:      false,
	}
}

// LoadGlobalConfig reads the .parleyconfig file from the base path using
// Viper. If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".parleyconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("defaults.model", cfg.DefaultModel)
	v.SetDefault("defaults.max_rounds", cfg.MaxRounds)
	v.SetDefault("defaults.event_probability", cfg.EventProbability)
	v.SetDefault("defaults.initial_funding", cfg.InitialFunding)
	v.SetDefault("defaults.requested_funding", cfg.RequestedFunding)
	v.SetDefault("offline_mode", cfg.OfflineMode)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.slack.webhook_url", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .parleyconfig: %w", err)
	}

	// Map nested YAML keys to flat GlobalConfig fields.
	cfg.DefaultModel = v.GetString("defaults.model")
	cfg.MaxRounds = v.GetInt("defaults.max_rounds")
	cfg.EventProbability = v.GetFloat64("defaults.event_probability")
	cfg.InitialFunding = v.GetFloat64("defaults.initial_funding")
	cfg.RequestedFunding = v.GetFloat64("defaults.requested_funding")
	cfg.OfflineMode = v.GetBool("offline_mode")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")

	// Zero alert thresholds keep the engine's built-in defaults.
	cfg.Notifications.Alerts.WalkawayRate = v.GetFloat64("notifications.alerts.walkaway_rate")
	cfg.Notifications.Alerts.RoundLimitRate = v.GetFloat64("notifications.alerts.round_limit_rate")
	cfg.Notifications.Alerts.MinSessions = v.GetInt("notifications.alerts.min_sessions")
	cfg.Notifications.Alerts.QuietDays = v.GetInt("notifications.alerts.quiet_days")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.DefaultModel == "" {
		errs = append(errs, "defaults.model must not be empty")
	}

	if cfg.MaxRounds <= 0 {
		errs = append(errs, fmt.Sprintf("defaults.max_rounds must be positive, got %d", cfg.MaxRounds))
	}

	if cfg.EventProbability < 0 || cfg.EventProbability > 1 {
		errs = append(errs, fmt.Sprintf(
			"defaults.event_probability %.2f is invalid, must be between 0 and 1",
			cfg.EventProbability,
		))
	}

	if cfg.InitialFunding <= 0 {
		errs = append(errs, fmt.Sprintf("defaults.initial_funding must be positive, got %.2f", cfg.InitialFunding))
	}

	if cfg.RequestedFunding <= cfg.InitialFunding {
		errs = append(errs, fmt.Sprintf(
			"defaults.requested_funding %.2f must be greater than defaults.initial_funding %.2f",
			cfg.RequestedFunding, cfg.InitialFunding,
		))
	}

	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, "notifications.enabled requires notifications.slack.webhook_url")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
