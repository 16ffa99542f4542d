package observability

import (
	"fmt"
	"time"
)

// Metrics holds aggregates derived from the event log.
type Metrics struct {
	NegotiationsRun int            `json:"negotiations_run"`
	Outcomes        map[string]int `json:"outcomes"`
	TurnsRecorded   int            `json:"turns_recorded"`
	TacticsUsed     map[string]int `json:"tactics_used"`
	EventsInjected  map[string]int `json:"events_injected"`
	TotalRounds     int            `json:"total_rounds"`
	AverageRounds   float64        `json:"average_rounds"`
	EventCount      int            `json:"event_count"`
	OldestEvent     *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from the given
// EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		Outcomes:       make(map[string]int),
		TacticsUsed:    make(map[string]int),
		EventsInjected: make(map[string]int),
	}

	m.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "negotiation.ended":
			m.NegotiationsRun++
			if outcome, ok := event.Data["outcome"].(string); ok {
				m.Outcomes[outcome]++
			}
			if rounds, ok := event.Data["rounds"].(float64); ok {
				m.TotalRounds += int(rounds)
			}
		case "turn.recorded":
			m.TurnsRecorded++
			if tactic, ok := event.Data["tactic"].(string); ok {
				m.TacticsUsed[tactic]++
			}
		case "event.injected":
			if kind, ok := event.Data["kind"].(string); ok {
				m.EventsInjected[kind]++
			}
		}
	}

	if m.NegotiationsRun > 0 {
		m.AverageRounds = float64(m.TotalRounds) / float64(m.NegotiationsRun)
	}

	return m, nil
}
