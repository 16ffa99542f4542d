package core

import (
	"testing"

	"github.com/valter-silva-au/parley/pkg/models"
)

func TestNewState_Validation(t *testing.T) {
	tests := []struct {
		name      string
		initial   float64
		requested float64
		maxRounds int
		wantErr   bool
	}{
		{"valid bounds", 100000, 150000, 10, false},
		{"zero initial", 0, 150000, 10, true},
		{"negative initial", -5, 150000, 10, true},
		{"requested equals initial", 100000, 100000, 10, true},
		{"requested below initial", 100000, 90000, 10, true},
		{"zero max rounds", 100000, 150000, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewState(tt.initial, tt.requested, tt.maxRounds)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got state %+v", s)
				}
				if !IsConfigError(err) {
					t.Errorf("expected ConfigError, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.FundingOffered != tt.initial {
				t.Errorf("FundingOffered = %.2f, want %.2f", s.FundingOffered, tt.initial)
			}
			if s.CurrentAsk != tt.requested {
				t.Errorf("CurrentAsk = %.2f, want %.2f", s.CurrentAsk, tt.requested)
			}
			if s.MinAcceptable != tt.initial*1.2 {
				t.Errorf("MinAcceptable = %.2f, want %.2f", s.MinAcceptable, tt.initial*1.2)
			}
		})
	}
}

func TestState_OutcomeTransitionsAreTerminal(t *testing.T) {
	s, err := NewState(100000, 150000, 10)
	if err != nil {
		t.Fatalf("creating state: %v", err)
	}

	if got := s.Outcome(); got != models.OutcomeOngoing {
		t.Fatalf("fresh state outcome = %s, want ongoing", got)
	}

	s.SetOutcome(models.OutcomeAgreed)
	if got := s.Outcome(); got != models.OutcomeAgreed {
		t.Fatalf("outcome = %s, want agreed", got)
	}

	// Further transitions must be ignored.
	s.SetOutcome(models.OutcomeWalkedAway)
	if got := s.Outcome(); got != models.OutcomeAgreed {
		t.Errorf("outcome changed after terminal state: got %s", got)
	}
	s.SetOutcome(models.OutcomeOngoing)
	if got := s.Outcome(); got != models.OutcomeAgreed {
		t.Errorf("outcome reverted to ongoing: got %s", got)
	}
}

func TestState_AdvanceRound(t *testing.T) {
	s, err := NewState(100000, 150000, 3)
	if err != nil {
		t.Fatalf("creating state: %v", err)
	}

	for want := 1; want <= 3; want++ {
		if !s.AdvanceRound() {
			t.Fatalf("AdvanceRound returned false at round %d", want)
		}
		if s.Round != want {
			t.Errorf("Round = %d, want %d", s.Round, want)
		}
	}

	if s.AdvanceRound() {
		t.Error("AdvanceRound succeeded past the budget")
	}
	if s.Round != 3 {
		t.Errorf("Round = %d after exhausted budget, want 3", s.Round)
	}
}

func TestState_RecordWalkaway(t *testing.T) {
	s, err := NewState(100000, 150000, 10)
	if err != nil {
		t.Fatalf("creating state: %v", err)
	}

	if got := s.RecordWalkaway(models.SpeakerCorporate, models.TacticWalkaway); got != 1 {
		t.Errorf("first walkaway streak = %d, want 1", got)
	}
	if got := s.RecordWalkaway(models.SpeakerCorporate, models.TacticWalkaway); got != 2 {
		t.Errorf("second walkaway streak = %d, want 2", got)
	}

	// A non-walkaway tactic resets the streak.
	if got := s.RecordWalkaway(models.SpeakerCorporate, models.TacticHold); got != 0 {
		t.Errorf("streak after hold = %d, want 0", got)
	}

	// Streaks are tracked per speaker.
	s.RecordWalkaway(models.SpeakerNonprofit, models.TacticWalkawayThreat)
	if got := s.RecordWalkaway(models.SpeakerCorporate, models.TacticWalkaway); got != 1 {
		t.Errorf("corporate streak = %d after nonprofit threat, want 1", got)
	}
}

func TestState_Exchange(t *testing.T) {
	s, err := NewState(100000, 150000, 10)
	if err != nil {
		t.Fatalf("creating state: %v", err)
	}

	wants := []int{1, 1, 2, 2, 3, 3}
	for i, want := range wants {
		s.AdvanceRound()
		if got := s.Exchange(); got != want {
			t.Errorf("round %d: Exchange() = %d, want %d", i+1, got, want)
		}
	}
}
