package observability

import (
	"testing"
	"time"
)

func TestMetricsCalculator_Calculate(t *testing.T) {
	log, _ := newTestLog(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	writes := []Event{
		{Time: base, Level: "INFO", Type: "negotiation.started"},
		{Time: base.Add(time.Second), Level: "INFO", Type: "turn.recorded", Data: map[string]any{"tactic": "hold"}},
		{Time: base.Add(2 * time.Second), Level: "INFO", Type: "turn.recorded", Data: map[string]any{"tactic": "urgency_appeal"}},
		{Time: base.Add(3 * time.Second), Level: "INFO", Type: "event.injected", Data: map[string]any{"kind": "scandal"}},
		{Time: base.Add(4 * time.Second), Level: "INFO", Type: "negotiation.ended", Data: map[string]any{"outcome": "agreed", "rounds": float64(2)}},
		{Time: base.Add(time.Minute), Level: "INFO", Type: "negotiation.started"},
		{Time: base.Add(time.Minute + time.Second), Level: "INFO", Type: "turn.recorded", Data: map[string]any{"tactic": "hold"}},
		{Time: base.Add(time.Minute + 2*time.Second), Level: "INFO", Type: "negotiation.ended", Data: map[string]any{"outcome": "round_limit", "rounds": float64(4)}},
	}
	for _, ev := range writes {
		if err := log.Write(ev); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if m.NegotiationsRun != 2 {
		t.Errorf("negotiations run = %d, want 2", m.NegotiationsRun)
	}
	if m.TurnsRecorded != 3 {
		t.Errorf("turns recorded = %d, want 3", m.TurnsRecorded)
	}
	if m.Outcomes["agreed"] != 1 || m.Outcomes["round_limit"] != 1 {
		t.Errorf("outcomes = %v", m.Outcomes)
	}
	if m.TacticsUsed["hold"] != 2 || m.TacticsUsed["urgency_appeal"] != 1 {
		t.Errorf("tactics = %v", m.TacticsUsed)
	}
	if m.EventsInjected["scandal"] != 1 {
		t.Errorf("events injected = %v", m.EventsInjected)
	}
	if m.TotalRounds != 6 || m.AverageRounds != 3 {
		t.Errorf("rounds = %d avg %v, want 6 avg 3", m.TotalRounds, m.AverageRounds)
	}
	if m.EventCount != len(writes) {
		t.Errorf("event count = %d, want %d", m.EventCount, len(writes))
	}
	if m.OldestEvent == nil || !m.OldestEvent.Equal(base) {
		t.Errorf("oldest event = %v", m.OldestEvent)
	}
	if m.NewestEvent == nil || !m.NewestEvent.Equal(writes[len(writes)-1].Time) {
		t.Errorf("newest event = %v", m.NewestEvent)
	}
}

func TestMetricsCalculator_SinceWindow(t *testing.T) {
	log, _ := newTestLog(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	old := Event{Time: base, Level: "INFO", Type: "negotiation.ended", Data: map[string]any{"outcome": "agreed", "rounds": float64(2)}}
	recent := Event{Time: base.Add(time.Hour), Level: "INFO", Type: "negotiation.ended", Data: map[string]any{"outcome": "walked_away", "rounds": float64(3)}}
	for _, ev := range []Event{old, recent} {
		if err := log.Write(ev); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(base.Add(30 * time.Minute))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if m.NegotiationsRun != 1 {
		t.Errorf("negotiations run = %d, want 1", m.NegotiationsRun)
	}
	if m.Outcomes["agreed"] != 0 || m.Outcomes["walked_away"] != 1 {
		t.Errorf("outcomes = %v", m.Outcomes)
	}
}

func TestMetricsCalculator_EmptyLog(t *testing.T) {
	log, _ := newTestLog(t)

	calc := NewMetricsCalculator(log)
	m, err := calc.Calculate(time.Time{})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if m.NegotiationsRun != 0 || m.EventCount != 0 || m.AverageRounds != 0 {
		t.Errorf("metrics not empty: %+v", m)
	}
	if m.OldestEvent != nil || m.NewestEvent != nil {
		t.Error("timestamps set for empty log")
	}
}
