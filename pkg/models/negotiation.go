// Package models defines the shared data types for parley: turns, tactics,
// outcomes, random events, and the persisted negotiation records.
package models

import "time"

// Speaker identifies which negotiating party produced a turn.
type Speaker string

const (
	SpeakerCorporate Speaker = "corporate"
	SpeakerNonprofit Speaker = "nonprofit"
)

// Opponent returns the other party.
func (s Speaker) Opponent() Speaker {
	if s == SpeakerCorporate {
		return SpeakerNonprofit
	}
	return SpeakerCorporate
}

// Tactic is a scripted negotiation move attributed to a turn.
type Tactic string

const (
	// TacticHold is the neutral move: restate the current position.
	TacticHold Tactic = "hold"

	// Corporate tactics.
	TacticConditionalTerms Tactic = "conditional_terms"
	TacticBaitAndSwitch    Tactic = "bait_and_switch"
	TacticWalkaway         Tactic = "walkaway"

	// Nonprofit tactics.
	TacticUrgencyAppeal     Tactic = "urgency_appeal"
	TacticCompetitiveOffer  Tactic = "competitive_offer"
	TacticWalkawayThreat    Tactic = "walkaway_threat"
	TacticGradualCompromise Tactic = "gradual_compromise"
	TacticFinalAppeal       Tactic = "final_appeal"
)

// IsWalkawayClass reports whether the tactic signals an intent to abandon
// the negotiation.
func (t Tactic) IsWalkawayClass() bool {
	return t == TacticWalkaway || t == TacticWalkawayThreat
}

// Outcome is the terminal classification of a negotiation session.
// Transitions are one-directional: once a session leaves OutcomeOngoing it
// never returns.
type Outcome string

const (
	OutcomeOngoing         Outcome = "ongoing"
	OutcomeAgreed          Outcome = "agreed"
	OutcomeWalkedAway      Outcome = "walked_away"
	OutcomeRoundLimit      Outcome = "round_limit"
	OutcomeEventTerminated Outcome = "event_terminated"
)

// Terminal reports whether the outcome is a final state.
func (o Outcome) Terminal() bool {
	return o != OutcomeOngoing && o != ""
}

// EventKind is an exogenous perturbation applied at a turn boundary.
type EventKind string

const (
	EventFundingCut    EventKind = "funding_cut"
	EventSurpriseDonor EventKind = "surprise_donor"
	EventTimePressure  EventKind = "time_pressure"
	EventScandal       EventKind = "scandal"
)

// Turn is one message exchange attributed to a single speaker.
type Turn struct {
	Round     int       `yaml:"round" json:"round"`
	Speaker   Speaker   `yaml:"speaker" json:"speaker"`
	Tactic    Tactic    `yaml:"tactic" json:"tactic"`
	Message   string    `yaml:"message" json:"message"`
	Amount    float64   `yaml:"amount" json:"amount"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
}

// AppliedEvent records a random event that fired between turns and the round
// boundary it landed on.
type AppliedEvent struct {
	Round       int       `yaml:"round" json:"round"`
	Kind        EventKind `yaml:"kind" json:"kind"`
	Description string    `yaml:"description" json:"description"`
	Timestamp   time.Time `yaml:"timestamp" json:"timestamp"`
}

// RecordedNegotiation is the stored metadata for a completed session.
type RecordedNegotiation struct {
	ID               string    `yaml:"id"`
	StartedAt        time.Time `yaml:"started_at"`
	EndedAt          time.Time `yaml:"ended_at"`
	Rounds           int       `yaml:"rounds"`
	Outcome          Outcome   `yaml:"outcome"`
	InitialFunding   float64   `yaml:"initial_funding"`
	FinalOffered     float64   `yaml:"final_offered"`
	FundingRequested float64   `yaml:"funding_requested"`
	FinalAsk         float64   `yaml:"final_ask"`
	Model            string    `yaml:"model,omitempty"`
	Offline          bool      `yaml:"offline,omitempty"`
	EventCount       int       `yaml:"event_count"`
}

// NegotiationFilter specifies criteria for querying recorded negotiations.
type NegotiationFilter struct {
	Outcome   Outcome
	Since     *time.Time
	Until     *time.Time
	MinRounds int
}

// NegotiationIndex is the master index of all recorded negotiations.
type NegotiationIndex struct {
	Version      string                `yaml:"version"`
	Negotiations []RecordedNegotiation `yaml:"negotiations"`
}
