// Package internal provides the App struct that wires all components of the
// parley negotiation simulator together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/parley/internal/cli"
	"github.com/valter-silva-au/parley/internal/core"
	"github.com/valter-silva-au/parley/internal/llm"
	"github.com/valter-silva-au/parley/internal/observability"
	"github.com/valter-silva-au/parley/internal/storage"
)

// App holds all service dependencies for the parley system.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	Store storage.NegotiationStoreManager

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the parley system. basePath is
// the root directory where all data is stored (typically the directory
// containing .parleyconfig, or PARLEY_HOME).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		// Use defaults if the config file is unreadable.
		globalCfg = core.DefaultGlobalConfig()
	}

	// --- Storage layer ---
	app.Store = storage.NewNegotiationStoreManager(basePath)
	_ = app.Store.Load() // Non-fatal: empty store on first use.

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".parley_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)

		thresholds := observability.DefaultAlertThresholds()
		if globalCfg.Notifications.Alerts.WalkawayRate > 0 {
			thresholds.WalkawayRate = globalCfg.Notifications.Alerts.WalkawayRate
		}
		if globalCfg.Notifications.Alerts.RoundLimitRate > 0 {
			thresholds.RoundLimitRate = globalCfg.Notifications.Alerts.RoundLimitRate
		}
		if globalCfg.Notifications.Alerts.MinSessions > 0 {
			thresholds.MinSessions = globalCfg.Notifications.Alerts.MinSessions
		}
		if globalCfg.Notifications.Alerts.QuietDays > 0 {
			thresholds.QuietDays = globalCfg.Notifications.Alerts.QuietDays
		}
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, thresholds)
	}
	if globalCfg.Notifications.Enabled && globalCfg.Notifications.Slack.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(globalCfg.Notifications.Slack.WebhookURL)
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.GlobalCfg = globalCfg
	cli.Store = app.Store
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.AlertEngine = app.AlertEngine
	cli.Notifier = app.Notifier

	if app.EventLog != nil {
		cli.OrchestratorLogger = &eventLogAdapter{log: app.EventLog}
	}

	cli.NewCollaborator = func(model string, offline bool) (core.Collaborator, error) {
		if offline {
			return llm.NewScripted(), nil
		}
		if model == "" {
			model = globalCfg.DefaultModel
		}
		return llm.NewClient(os.Getenv("OPENROUTER_API_KEY"), model)
	}

	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle. It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the parley data directory.
// It checks the PARLEY_HOME env var, then walks up from the current directory
// looking for .parleyconfig, and falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("PARLEY_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".parleyconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
