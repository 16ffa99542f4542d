package core

import (
	"context"
	"time"

	"github.com/valter-silva-au/parley/pkg/models"
)

// VoiceRequest carries everything the external collaborator needs to voice
// one scripted turn: who is speaking, what the script says, and the
// conversation so far.
type VoiceRequest struct {
	Speaker      models.Speaker
	Tactic       models.Tactic
	Round        int
	ScriptedLine string
	Amount       float64
	Offered      float64
	Ask          float64
	Transcript   []models.Turn
}

// Collaborator is the external LLM that turns a scripted line into the
// persona's actual message. Implementations must return a non-empty message
// or an error.
type Collaborator interface {
	Voice(ctx context.Context, req VoiceRequest) (string, error)
}

// EventLogger receives observability events from the orchestrator. It may be
// nil, in which case logging is skipped.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Config is the initial configuration for one negotiation session.
type Config struct {
	InitialFunding   float64
	RequestedFunding float64
	MaxRounds        int
}

// Result is the terminal summary of a completed session.
type Result struct {
	Outcome          models.Outcome
	RoundsCompleted  int
	InitialFunding   float64
	FinalOffered     float64
	FundingRequested float64
	FinalAsk         float64
	Turns            []models.Turn
	Events           []models.AppliedEvent
	StartedAt        time.Time
	EndedAt          time.Time
}

// Orchestrator runs the negotiation loop: strict speaker alternation, one
// turn per round, scripted proposals voiced by the collaborator, random
// events at round boundaries, and one-directional outcome transitions.
type Orchestrator struct {
	corporate Strategist
	nonprofit Strategist
	collab    Collaborator
	events    *EventRoller
	logger    EventLogger
	now       func() time.Time

	// OnTurn and OnEvent, when set, observe the session as it progresses.
	// They are called from the loop goroutine.
	OnTurn  func(models.Turn)
	OnEvent func(models.AppliedEvent)
}

// NewOrchestrator wires a negotiation loop from its parts. events and logger
// may be nil.
func NewOrchestrator(corporate, nonprofit Strategist, collab Collaborator, events *EventRoller, logger EventLogger) *Orchestrator {
	return &Orchestrator{
		corporate: corporate,
		nonprofit: nonprofit,
		collab:    collab,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes a full session and returns its terminal Result. It fails with
// a ConfigError for invalid bounds and a CollaboratorError when the external
// LLM is unavailable or returns malformed output; both abort the session.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (*Result, error) {
	state, err := NewState(cfg.InitialFunding, cfg.RequestedFunding, cfg.MaxRounds)
	if err != nil {
		return nil, err
	}

	res := &Result{
		InitialFunding:   cfg.InitialFunding,
		FundingRequested: cfg.RequestedFunding,
		StartedAt:        o.now().UTC(),
	}

	o.log("negotiation.started", map[string]any{
		"initial_funding":   cfg.InitialFunding,
		"requested_funding": cfg.RequestedFunding,
		"max_rounds":        cfg.MaxRounds,
	})

	// Corporate opens; every turn hands the floor to the other party.
	next := models.SpeakerCorporate
	for state.Outcome() == models.OutcomeOngoing && state.AdvanceRound() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		speaker := next
		next = speaker.Opponent()

		strategist := o.corporate
		if speaker == models.SpeakerNonprofit {
			strategist = o.nonprofit
		}

		prop := strategist.Propose(state)

		voiced, err := o.collab.Voice(ctx, VoiceRequest{
			Speaker:      speaker,
			Tactic:       prop.Tactic,
			Round:        state.Round,
			ScriptedLine: prop.Message,
			Amount:       prop.Amount,
			Offered:      state.FundingOffered,
			Ask:          state.CurrentAsk,
			Transcript:   res.Turns,
		})
		if err != nil {
			return nil, &CollaboratorError{Speaker: string(speaker), Err: err}
		}

		// The voiced message is what the party actually said; when it
		// restates a dollar figure, that figure wins over the script.
		amount := prop.Amount
		if extracted, ok := ExtractAmount(voiced); ok {
			amount = extracted
		}

		turn := models.Turn{
			Round:     state.Round,
			Speaker:   speaker,
			Tactic:    prop.Tactic,
			Message:   voiced,
			Amount:    amount,
			Timestamp: o.now().UTC(),
		}
		res.Turns = append(res.Turns, turn)

		if speaker == models.SpeakerCorporate {
			state.FundingOffered = amount
		} else {
			state.CurrentAsk = amount
		}

		o.log("turn.recorded", map[string]any{
			"round":   turn.Round,
			"speaker": string(turn.Speaker),
			"tactic":  string(turn.Tactic),
			"amount":  turn.Amount,
		})
		if o.OnTurn != nil {
			o.OnTurn(turn)
		}

		o.evaluate(state, turn)

		// Roll for a random event at the boundary, but not after the
		// session has ended or when no rounds remain anyway.
		if state.Outcome() == models.OutcomeOngoing && state.RoundsRemaining > 0 && o.events != nil {
			if ev := o.events.Roll(state); ev != nil {
				res.Events = append(res.Events, *ev)
				o.log("event.injected", map[string]any{
					"round":       ev.Round,
					"kind":        string(ev.Kind),
					"description": ev.Description,
				})
				if o.OnEvent != nil {
					o.OnEvent(*ev)
				}
			}
		}
	}

	if !state.Outcome().Terminal() {
		state.SetOutcome(models.OutcomeRoundLimit)
	}

	res.Outcome = state.Outcome()
	res.RoundsCompleted = state.Round
	res.FinalOffered = state.FundingOffered
	res.FinalAsk = state.CurrentAsk
	res.EndedAt = o.now().UTC()

	o.log("negotiation.ended", map[string]any{
		"outcome":       string(res.Outcome),
		"rounds":        res.RoundsCompleted,
		"final_offered": res.FinalOffered,
		"final_ask":     res.FinalAsk,
	})

	return res, nil
}

// evaluate applies the termination rules after a recorded turn.
func (o *Orchestrator) evaluate(state *State, turn models.Turn) {
	// Explicit acceptance in the voiced text.
	if DetectAcceptance(turn.Message) {
		state.SetOutcome(models.OutcomeAgreed)
		return
	}

	// Offer crossing, once both parties have spoken at least once.
	if state.Round >= 2 && state.FundingOffered >= state.CurrentAsk {
		state.SetOutcome(models.OutcomeAgreed)
		return
	}

	// Two consecutive walkaway-class tactics from the same party with the
	// gap still open means the party follows through.
	if streak := state.RecordWalkaway(turn.Speaker, turn.Tactic); streak >= 2 && state.Gap() > 0 {
		state.SetOutcome(models.OutcomeWalkedAway)
	}
}

func (o *Orchestrator) log(eventType string, data map[string]any) {
	if o.logger == nil {
		return
	}
	_ = o.logger.LogEvent(eventType, data)
}
