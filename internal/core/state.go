// Package core contains the business logic for parley: negotiation state,
// scripted tactic selection, random events, the turn loop orchestrator,
// and configuration management.
package core

import (
	"github.com/valter-silva-au/parley/pkg/models"
)

// minAcceptableFactor sets the nonprofit's floor relative to the opening offer.
const minAcceptableFactor = 1.2

// defaultUrgency is the nonprofit's starting urgency level on a 0-10 scale.
const defaultUrgency = 5

// State holds the live position of a negotiation session. It is owned
// exclusively by the orchestrator loop; there is no concurrent access.
type State struct {
	InitialFunding   float64
	FundingOffered   float64 // corporate's standing offer
	FundingRequested float64 // nonprofit's opening ask
	CurrentAsk       float64 // nonprofit's standing ask
	MinAcceptable    float64 // nonprofit will not settle below this

	Urgency    int // 0-10, drives the urgency_appeal tactic
	Reputation int // corporate reputation score, dented by scandals

	Round           int // last completed round; strictly increasing
	RoundsBudget    int // configured maximum number of rounds
	RoundsRemaining int // decremented each round, and by time pressure

	outcome models.Outcome

	// Tactic bookkeeping.
	baitOriginalOffer   float64
	pendingScandalBoost bool
	walkawayStreak      map[models.Speaker]int
}

// NewState validates the funding bounds and returns a fresh session state.
func NewState(initial, requested float64, maxRounds int) (*State, error) {
	if initial <= 0 {
		return nil, NewConfigError("initial funding must be positive, got %.2f", initial)
	}
	if requested <= initial {
		return nil, NewConfigError("requested funding (%.2f) must be greater than initial (%.2f)", requested, initial)
	}
	if maxRounds <= 0 {
		return nil, NewConfigError("max rounds must be positive, got %d", maxRounds)
	}

	return &State{
		InitialFunding:   initial,
		FundingOffered:   initial,
		FundingRequested: requested,
		CurrentAsk:       requested,
		MinAcceptable:    initial * minAcceptableFactor,
		Urgency:          defaultUrgency,
		Reputation:       100,
		RoundsBudget:     maxRounds,
		RoundsRemaining:  maxRounds,
		walkawayStreak:   make(map[models.Speaker]int),
	}, nil
}

// Outcome returns the session's current outcome flag.
func (s *State) Outcome() models.Outcome {
	if s.outcome == "" {
		return models.OutcomeOngoing
	}
	return s.outcome
}

// SetOutcome transitions the outcome flag. Transitions are one-directional:
// once terminal, further calls are ignored.
func (s *State) SetOutcome(o models.Outcome) {
	if s.Outcome().Terminal() {
		return
	}
	s.outcome = o
}

// AdvanceRound consumes one round from the budget and increments the strictly
// increasing round counter. It reports whether a round was available.
func (s *State) AdvanceRound() bool {
	if s.RoundsRemaining <= 0 {
		return false
	}
	s.Round++
	s.RoundsRemaining--
	return true
}

// Exchange returns the number of the completed or in-progress exchange, where
// one exchange is a corporate turn followed by a nonprofit turn.
func (s *State) Exchange() int {
	return (s.Round + 1) / 2
}

// Gap returns how far apart the parties currently are. Zero or negative
// means the corporate offer meets the nonprofit ask.
func (s *State) Gap() float64 {
	return s.CurrentAsk - s.FundingOffered
}

// RecordWalkaway tracks consecutive walkaway-class tactics per speaker and
// returns the speaker's current streak. Any other tactic resets the streak.
func (s *State) RecordWalkaway(speaker models.Speaker, tactic models.Tactic) int {
	if tactic.IsWalkawayClass() {
		s.walkawayStreak[speaker]++
	} else {
		s.walkawayStreak[speaker] = 0
	}
	return s.walkawayStreak[speaker]
}
