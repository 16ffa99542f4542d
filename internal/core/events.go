package core

import (
	"math/rand"
	"time"

	"github.com/valter-silva-au/parley/pkg/models"
)

// eventKinds is the pool the roller draws from, weighted uniformly.
var eventKinds = []models.EventKind{
	models.EventFundingCut,
	models.EventSurpriseDonor,
	models.EventTimePressure,
	models.EventScandal,
}

// EventRoller injects random exogenous events at turn boundaries.
type EventRoller struct {
	rng         *rand.Rand
	probability float64
	now         func() time.Time
}

// NewEventRoller creates a roller that fires with the given per-boundary
// probability. Probability is clamped to [0, 1].
func NewEventRoller(rng *rand.Rand, probability float64) *EventRoller {
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}
	return &EventRoller{rng: rng, probability: probability, now: time.Now}
}

// Roll draws at most one event for the boundary after the given round and
// applies its mutation to the state. It returns nil when no event fires.
func (r *EventRoller) Roll(s *State) *models.AppliedEvent {
	if r.probability == 0 || r.rng.Float64() >= r.probability {
		return nil
	}

	kind := eventKinds[r.rng.Intn(len(eventKinds))]
	ev := &models.AppliedEvent{
		Round:     s.Round,
		Kind:      kind,
		Timestamp: r.now().UTC(),
	}
	ev.Description = applyEvent(s, kind)
	return ev
}

// applyEvent mutates the session state for one event kind and returns a
// human-readable description of what changed.
func applyEvent(s *State, kind models.EventKind) string {
	switch kind {
	case models.EventFundingCut:
		s.FundingOffered *= 0.9
		return "A funding cut hits the sponsor's budget; the standing offer shrinks by 10%."

	case models.EventSurpriseDonor:
		s.MinAcceptable *= 1.05
		if s.Urgency > 2 {
			s.Urgency -= 2
		}
		return "A surprise donor appears; the nonprofit's floor rises and its urgency eases."

	case models.EventTimePressure:
		s.Urgency += 2
		s.RoundsRemaining--
		if s.RoundsRemaining <= 0 {
			s.SetOutcome(models.OutcomeEventTerminated)
			return "Time pressure cuts the negotiation short; no rounds remain."
		}
		return "Time pressure mounts; one fewer round remains and urgency climbs."

	case models.EventScandal:
		s.Reputation -= 10
		s.pendingScandalBoost = true
		return "A scandal dents the sponsor's reputation; its next offer sweetens."

	default:
		return ""
	}
}
