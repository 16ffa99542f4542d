package observability

import (
	"fmt"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire. The rate thresholds
// only apply once at least MinSessions sessions have ended, so a single
// walkaway doesn't trip the alarm.
type AlertThresholds struct {
	WalkawayRate   float64 `yaml:"walkaway_rate" json:"walkaway_rate"`
	RoundLimitRate float64 `yaml:"round_limit_rate" json:"round_limit_rate"`
	MinSessions    int     `yaml:"min_sessions" json:"min_sessions"`
	MaxUnfinished  int     `yaml:"max_unfinished" json:"max_unfinished"`
	QuietDays      int     `yaml:"quiet_days" json:"quiet_days"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		WalkawayRate:   0.5,
		RoundLimitRate: 0.5,
		MinSessions:    5,
		MaxUnfinished:  0,
		QuietDays:      7,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by reading events and checking thresholds.
type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and thresholds.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
	}
}

// Evaluate reads events and checks all alert conditions, returning any
// triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := time.Now().UTC()
	var alerts []Alert

	rateAlerts, err := ae.checkOutcomeRates(now)
	if err != nil {
		return nil, fmt.Errorf("checking outcome rates: %w", err)
	}
	alerts = append(alerts, rateAlerts...)

	unfinishedAlerts, err := ae.checkUnfinishedSessions(now)
	if err != nil {
		return nil, fmt.Errorf("checking unfinished sessions: %w", err)
	}
	alerts = append(alerts, unfinishedAlerts...)

	quietAlerts, err := ae.checkQuietLog(now)
	if err != nil {
		return nil, fmt.Errorf("checking session recency: %w", err)
	}
	alerts = append(alerts, quietAlerts...)

	return alerts, nil
}

// checkOutcomeRates looks at how ended sessions concluded and alerts when the
// walkaway or round-limit share crosses its threshold.
func (ae *alertEngine) checkOutcomeRates(now time.Time) ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{Type: "negotiation.ended"})
	if err != nil {
		return nil, err
	}

	total := 0
	outcomes := make(map[string]int)
	for _, event := range events {
		outcome, _ := event.Data["outcome"].(string)
		if outcome == "" {
			continue
		}
		total++
		outcomes[outcome]++
	}

	if total < ae.thresholds.MinSessions {
		return nil, nil
	}

	var alerts []Alert
	walkawayRate := float64(outcomes["walked_away"]) / float64(total)
	if walkawayRate > ae.thresholds.WalkawayRate {
		alerts = append(alerts, Alert{
			ID:          "walkaway-rate",
			Condition:   "walkaway_rate_high",
			Severity:    SeverityHigh,
			Message:     fmt.Sprintf("%d of %d sessions ended in a walkaway, above the %.0f%% threshold", outcomes["walked_away"], total, ae.thresholds.WalkawayRate*100),
			TriggeredAt: now,
		})
	}

	roundLimitRate := float64(outcomes["round_limit"]) / float64(total)
	if roundLimitRate > ae.thresholds.RoundLimitRate {
		alerts = append(alerts, Alert{
			ID:          "round-limit-rate",
			Condition:   "round_limit_rate_high",
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("%d of %d sessions hit the round limit without resolution, above the %.0f%% threshold", outcomes["round_limit"], total, ae.thresholds.RoundLimitRate*100),
			TriggeredAt: now,
		})
	}

	return alerts, nil
}

// checkUnfinishedSessions counts sessions that started but never ended. A
// session that stops without a negotiation.ended event crashed or failed on a
// collaborator error.
func (ae *alertEngine) checkUnfinishedSessions(now time.Time) ([]Alert, error) {
	started, err := ae.eventLog.Read(EventFilter{Type: "negotiation.started"})
	if err != nil {
		return nil, err
	}
	ended, err := ae.eventLog.Read(EventFilter{Type: "negotiation.ended"})
	if err != nil {
		return nil, err
	}

	unfinished := len(started) - len(ended)
	if unfinished <= ae.thresholds.MaxUnfinished {
		return nil, nil
	}

	return []Alert{{
		ID:          "unfinished-sessions",
		Condition:   "sessions_unfinished",
		Severity:    SeverityHigh,
		Message:     fmt.Sprintf("%d session(s) started but never ended, likely a crash or collaborator failure", unfinished),
		TriggeredAt: now,
	}}, nil
}

// checkQuietLog alerts when sessions have been recorded before but none
// recently. A log with no sessions at all stays quiet.
func (ae *alertEngine) checkQuietLog(now time.Time) ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{Type: "negotiation.ended"})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	newest := events[0].Time
	for _, event := range events[1:] {
		if event.Time.After(newest) {
			newest = event.Time
		}
	}

	threshold := time.Duration(ae.thresholds.QuietDays) * 24 * time.Hour
	if now.Sub(newest) <= threshold {
		return nil, nil
	}

	return []Alert{{
		ID:          "quiet-log",
		Condition:   "no_recent_sessions",
		Severity:    SeverityLow,
		Message:     fmt.Sprintf("no sessions recorded for more than %d days", ae.thresholds.QuietDays),
		TriggeredAt: now,
	}}, nil
}
