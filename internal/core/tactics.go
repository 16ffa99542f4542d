package core

import (
	"fmt"
	"math/rand"

	"github.com/valter-silva-au/parley/pkg/models"
)

// Proposal is a scripted line produced by a strategist for one turn.
type Proposal struct {
	Tactic  models.Tactic
	Amount  float64
	Message string
}

// Strategist selects a tactic and produces the scripted offer for a speaker's
// turn, given the current session state.
type Strategist interface {
	Speaker() models.Speaker
	Propose(s *State) Proposal
}

// formatAmount renders a dollar amount with thousands separators, matching
// the style the personas use in their scripted lines.
func formatAmount(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	// Round to cents once so a carry propagates into the whole dollars.
	total := int64(v*100 + 0.5)
	whole, cents := total/100, total%100

	digits := fmt.Sprintf("%d", whole)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, string(out), cents)
}

// --- Corporate ---

type corporateStrategist struct {
	rng *rand.Rand
}

// NewCorporateStrategist creates the corporate sponsor's scripted strategist.
// The rng drives tactic selection; pass a seeded source for determinism.
func NewCorporateStrategist(rng *rand.Rand) Strategist {
	return &corporateStrategist{rng: rng}
}

func (c *corporateStrategist) Speaker() models.Speaker {
	return models.SpeakerCorporate
}

// chooseTactic mirrors the corporate playbook: bait early, threaten to walk
// when the gap stays wide late, occasionally attach conditions.
func (c *corporateStrategist) chooseTactic(s *State) models.Tactic {
	switch {
	case s.Exchange() < 3 && c.rng.Float64() < 0.3:
		return models.TacticBaitAndSwitch
	case s.Exchange() > 4 && s.FundingOffered < s.FundingRequested*0.8:
		return models.TacticWalkaway
	case c.rng.Float64() < 0.2:
		return models.TacticConditionalTerms
	default:
		return models.TacticHold
	}
}

func (c *corporateStrategist) Propose(s *State) Proposal {
	p := corporateOffer(s, c.chooseTactic(s))

	// A recent scandal makes the sponsor anxious to look generous.
	if s.pendingScandalBoost {
		s.pendingScandalBoost = false
		p.Amount *= 1.05
	}
	return p
}

// corporateOffer computes the scripted offer for a given corporate tactic.
// It mutates tactic bookkeeping on the state (the bait-and-switch anchor).
func corporateOffer(s *State, tactic models.Tactic) Proposal {
	base := s.FundingOffered

	switch tactic {
	case models.TacticBaitAndSwitch:
		if s.baitOriginalOffer == 0 {
			s.baitOriginalOffer = s.FundingRequested * 0.9
			return Proposal{
				Tactic:  tactic,
				Amount:  s.baitOriginalOffer,
				Message: fmt.Sprintf("We are offering a generous %s!", formatAmount(s.baitOriginalOffer)),
			}
		}
		reduced := s.baitOriginalOffer * 0.75
		return Proposal{
			Tactic:  tactic,
			Amount:  reduced,
			Message: fmt.Sprintf("Due to budget constraints, we must lower our offer to %s.", formatAmount(reduced)),
		}

	case models.TacticWalkaway:
		return Proposal{
			Tactic:  tactic,
			Amount:  base,
			Message: "If we can't reach an agreement, we may need to walk away.",
		}

	case models.TacticConditionalTerms:
		increased := base * 1.1
		return Proposal{
			Tactic:  tactic,
			Amount:  increased,
			Message: fmt.Sprintf("We can increase funding to %s if you match 10%%.", formatAmount(increased)),
		}

	default:
		return Proposal{
			Tactic:  models.TacticHold,
			Amount:  base,
			Message: fmt.Sprintf("We maintain our offer of %s.", formatAmount(base)),
		}
	}
}

// --- Nonprofit ---

// concessionStep is how much the nonprofit shaves off its ask per exchange
// when compromising.
const concessionStep = 0.05

type nonprofitStrategist struct {
	rng *rand.Rand
}

// NewNonprofitStrategist creates the nonprofit's scripted strategist.
func NewNonprofitStrategist(rng *rand.Rand) Strategist {
	return &nonprofitStrategist{rng: rng}
}

func (n *nonprofitStrategist) Speaker() models.Speaker {
	return models.SpeakerNonprofit
}

// chooseTactic mirrors the nonprofit playbook: lean on urgency when it is
// high, invoke a competing sponsor mid-game, and compromise or make a final
// appeal as the round budget runs out.
func (n *nonprofitStrategist) chooseTactic(s *State) models.Tactic {
	switch {
	case s.Urgency > 7 && n.rng.Float64() < 0.4:
		return models.TacticUrgencyAppeal
	case s.Exchange() > 3 && n.rng.Float64() < 0.3:
		return models.TacticCompetitiveOffer
	case s.Exchange() > 5 && n.rng.Float64() < 0.2:
		return models.TacticWalkawayThreat
	case s.Exchange() > 7:
		return models.TacticGradualCompromise
	case s.RoundsRemaining <= 1:
		return models.TacticFinalAppeal
	default:
		return models.TacticHold
	}
}

func (n *nonprofitStrategist) Propose(s *State) Proposal {
	return nonprofitCounter(s, n.chooseTactic(s))
}

// nonprofitCounter computes the scripted counter-ask for a given tactic.
func nonprofitCounter(s *State, tactic models.Tactic) Proposal {
	switch tactic {
	case models.TacticUrgencyAppeal:
		ask := max(s.FundingOffered*1.15, s.MinAcceptable)
		return Proposal{
			Tactic:  tactic,
			Amount:  ask,
			Message: fmt.Sprintf("Without additional funding, we may have to cut critical programs. We urgently request %s.", formatAmount(ask)),
		}

	case models.TacticCompetitiveOffer:
		ask := max(s.FundingOffered*1.10, s.MinAcceptable)
		return Proposal{
			Tactic:  tactic,
			Amount:  ask,
			Message: fmt.Sprintf("Another sponsor has shown interest in funding us at %s. Can you match this?", formatAmount(ask)),
		}

	case models.TacticWalkawayThreat:
		return Proposal{
			Tactic:  tactic,
			Amount:  s.CurrentAsk,
			Message: "If we cannot secure the necessary funding, we may need to seek alternative donors. We hope you can reconsider.",
		}

	case models.TacticGradualCompromise:
		ask := max(s.FundingRequested*(1-concessionStep*float64(s.Exchange())), s.FundingOffered*1.05)
		return Proposal{
			Tactic:  tactic,
			Amount:  ask,
			Message: fmt.Sprintf("We are willing to adjust our request to %s to find a middle ground.", formatAmount(ask)),
		}

	case models.TacticFinalAppeal:
		return Proposal{
			Tactic:  tactic,
			Amount:  s.CurrentAsk,
			Message: "This is our final appeal. We need your support to continue our mission.",
		}

	default:
		return Proposal{
			Tactic:  models.TacticHold,
			Amount:  s.CurrentAsk,
			Message: fmt.Sprintf("We maintain our request for %s.", formatAmount(s.CurrentAsk)),
		}
	}
}
