package cli

import (
	"github.com/valter-silva-au/parley/internal/core"
	"github.com/valter-silva-au/parley/internal/observability"
	"github.com/valter-silva-au/parley/internal/storage"
	"github.com/valter-silva-au/parley/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string

	GlobalCfg *models.GlobalConfig

	Store storage.NegotiationStoreManager

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
	Notifier    observability.Notifier

	// OrchestratorLogger adapts the event log to the core loop; nil when
	// observability is disabled.
	OrchestratorLogger core.EventLogger

	// NewCollaborator builds the LLM collaborator for a session. offline
	// selects the deterministic scripted voice.
	NewCollaborator func(model string, offline bool) (core.Collaborator, error)
)
