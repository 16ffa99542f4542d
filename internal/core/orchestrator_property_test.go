package core

import (
	"context"
	"math/rand"
	"testing"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/parley/pkg/models"
)

func runSeededSession(t *testing.T, seed int64, maxRounds int, eventProb float64) *Result {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	o := NewOrchestrator(
		NewCorporateStrategist(rng),
		NewNonprofitStrategist(rng),
		echoCollaborator{},
		NewEventRoller(rng, eventProb),
		nil,
	)

	res, err := o.Run(context.Background(), Config{
		InitialFunding:   100000,
		RequestedFunding: 150000,
		MaxRounds:        maxRounds,
	})
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	return res
}

// Feature: parley, Property 1: Strict Speaker Alternation
// The corporate sponsor speaks on every odd round and the nonprofit on every
// even round, with round numbers strictly increasing by one.
func TestProperty_SpeakerAlternation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		maxRounds := rapid.IntRange(1, 30).Draw(rt, "maxRounds")
		eventProb := rapid.Float64Range(0, 1).Draw(rt, "eventProb")

		res := runSeededSession(t, seed, maxRounds, eventProb)

		for i, turn := range res.Turns {
			if turn.Round != i+1 {
				t.Fatalf("turn %d has round %d, want %d", i, turn.Round, i+1)
			}
			want := models.SpeakerNonprofit
			if turn.Round%2 == 1 {
				want = models.SpeakerCorporate
			}
			if turn.Speaker != want {
				t.Fatalf("round %d spoken by %s, want %s", turn.Round, turn.Speaker, want)
			}
			if i > 0 && turn.Speaker != res.Turns[i-1].Speaker.Opponent() {
				t.Fatalf("round %d did not hand the floor to the other party", turn.Round)
			}
		}
	})
}

// Feature: parley, Property 2: Bounded Rounds
// A session never records more turns than the configured maximum, and the
// recorded turn count always equals the completed round count.
func TestProperty_BoundedRounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		maxRounds := rapid.IntRange(1, 30).Draw(rt, "maxRounds")
		eventProb := rapid.Float64Range(0, 1).Draw(rt, "eventProb")

		res := runSeededSession(t, seed, maxRounds, eventProb)

		if len(res.Turns) > maxRounds {
			t.Fatalf("recorded %d turns with a budget of %d", len(res.Turns), maxRounds)
		}
		if len(res.Turns) != res.RoundsCompleted {
			t.Fatalf("turns (%d) != rounds completed (%d)", len(res.Turns), res.RoundsCompleted)
		}
	})
}

// Feature: parley, Property 3: Terminal Outcome
// Every session ends in exactly one terminal outcome; ongoing is never
// returned, and an agreed outcome with no acceptance phrase implies the
// standing offer met the ask.
func TestProperty_TerminalOutcome(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		maxRounds := rapid.IntRange(1, 30).Draw(rt, "maxRounds")
		eventProb := rapid.Float64Range(0, 1).Draw(rt, "eventProb")

		res := runSeededSession(t, seed, maxRounds, eventProb)

		if !res.Outcome.Terminal() {
			t.Fatalf("session ended with non-terminal outcome %s", res.Outcome)
		}

		if res.Outcome == models.OutcomeAgreed {
			accepted := false
			for _, turn := range res.Turns {
				if DetectAcceptance(turn.Message) {
					accepted = true
					break
				}
			}
			if !accepted && res.FinalOffered < res.FinalAsk {
				t.Fatalf("agreed with offer %v below ask %v and no acceptance phrase",
					res.FinalOffered, res.FinalAsk)
			}
		}
	})
}

// Feature: parley, Property 4: Determinism Under a Fixed Seed
// Two sessions with the same seed and configuration produce identical
// transcripts and outcomes.
func TestProperty_DeterministicReplay(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		maxRounds := rapid.IntRange(1, 20).Draw(rt, "maxRounds")
		eventProb := rapid.Float64Range(0, 1).Draw(rt, "eventProb")

		a := runSeededSession(t, seed, maxRounds, eventProb)
		b := runSeededSession(t, seed, maxRounds, eventProb)

		if a.Outcome != b.Outcome {
			t.Fatalf("outcomes diverge: %s vs %s", a.Outcome, b.Outcome)
		}
		if len(a.Turns) != len(b.Turns) {
			t.Fatalf("turn counts diverge: %d vs %d", len(a.Turns), len(b.Turns))
		}
		for i := range a.Turns {
			if a.Turns[i].Message != b.Turns[i].Message || a.Turns[i].Tactic != b.Turns[i].Tactic {
				t.Fatalf("turn %d diverges: %+v vs %+v", i, a.Turns[i], b.Turns[i])
			}
		}
	})
}
