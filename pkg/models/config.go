package models

// SlackConfig holds settings for the Slack webhook notifier.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// AlertConfig overrides the default alert thresholds. Zero values keep the
// built-in defaults.
type AlertConfig struct {
	WalkawayRate   float64 `yaml:"walkaway_rate" mapstructure:"walkaway_rate"`
	RoundLimitRate float64 `yaml:"round_limit_rate" mapstructure:"round_limit_rate"`
	MinSessions    int     `yaml:"min_sessions" mapstructure:"min_sessions"`
	QuietDays      int     `yaml:"quiet_days" mapstructure:"quiet_days"`
}

// NotificationConfig holds outcome notification settings.
type NotificationConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Slack   SlackConfig `yaml:"slack" mapstructure:"slack"`
	Alerts  AlertConfig `yaml:"alerts" mapstructure:"alerts"`
}

// GlobalConfig holds system-wide settings read from .parleyconfig via Viper.
type GlobalConfig struct {
	DefaultModel     string             `yaml:"default_model" mapstructure:"default_model"`
	MaxRounds        int                `yaml:"max_rounds" mapstructure:"max_rounds"`
	EventProbability float64            `yaml:"event_probability" mapstructure:"event_probability"`
	InitialFunding   float64            `yaml:"initial_funding" mapstructure:"initial_funding"`
	RequestedFunding float64            `yaml:"requested_funding" mapstructure:"requested_funding"`
	OfflineMode      bool               `yaml:"offline_mode" mapstructure:"offline_mode"`
	Notifications    NotificationConfig `yaml:"notifications" mapstructure:"notifications"`
}
