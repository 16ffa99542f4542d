package core

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/valter-silva-au/parley/pkg/models"
)

func mustState(t *testing.T, initial, requested float64, maxRounds int) *State {
	t.Helper()
	s, err := NewState(initial, requested, maxRounds)
	if err != nil {
		t.Fatalf("creating state: %v", err)
	}
	return s
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestCorporateOffer_BaitAndSwitch(t *testing.T) {
	s := mustState(t, 100000, 150000, 10)

	// First bait anchors high: 90% of the ask.
	first := corporateOffer(s, models.TacticBaitAndSwitch)
	if !almostEqual(first.Amount, 135000) {
		t.Errorf("first bait amount = %.2f, want 135000", first.Amount)
	}
	if !strings.Contains(first.Message, "$135,000.00") {
		t.Errorf("first bait message %q missing formatted amount", first.Message)
	}

	// The switch pulls the anchor down to 75% of itself.
	second := corporateOffer(s, models.TacticBaitAndSwitch)
	if !almostEqual(second.Amount, 101250) {
		t.Errorf("switch amount = %.2f, want 101250", second.Amount)
	}
	if !strings.Contains(second.Message, "budget constraints") {
		t.Errorf("switch message %q missing the budget excuse", second.Message)
	}
}

func TestCorporateOffer_ConditionalTerms(t *testing.T) {
	s := mustState(t, 100000, 150000, 10)

	p := corporateOffer(s, models.TacticConditionalTerms)
	if !almostEqual(p.Amount, 110000) {
		t.Errorf("conditional amount = %.2f, want 110000", p.Amount)
	}
}

func TestCorporateOffer_WalkawayAndHold(t *testing.T) {
	s := mustState(t, 100000, 150000, 10)

	walk := corporateOffer(s, models.TacticWalkaway)
	if !almostEqual(walk.Amount, 100000) {
		t.Errorf("walkaway amount = %.2f, want standing offer 100000", walk.Amount)
	}

	hold := corporateOffer(s, models.TacticHold)
	if !almostEqual(hold.Amount, 100000) {
		t.Errorf("hold amount = %.2f, want 100000", hold.Amount)
	}
	if !strings.Contains(hold.Message, "maintain") {
		t.Errorf("hold message %q should restate the position", hold.Message)
	}
}

func TestNonprofitCounter_UrgencyAppealRespectsFloor(t *testing.T) {
	s := mustState(t, 100000, 150000, 10)

	// offered*1.15 = 115000 is below the 120000 floor, so the floor wins.
	p := nonprofitCounter(s, models.TacticUrgencyAppeal)
	if !almostEqual(p.Amount, 120000) {
		t.Errorf("urgency ask = %.2f, want floor 120000", p.Amount)
	}

	// With a higher standing offer the multiple wins.
	s.FundingOffered = 130000
	p = nonprofitCounter(s, models.TacticUrgencyAppeal)
	if !almostEqual(p.Amount, 149500) {
		t.Errorf("urgency ask = %.2f, want 149500", p.Amount)
	}
}

func TestNonprofitCounter_CompetitiveOffer(t *testing.T) {
	s := mustState(t, 100000, 150000, 10)
	s.FundingOffered = 125000

	p := nonprofitCounter(s, models.TacticCompetitiveOffer)
	if !almostEqual(p.Amount, 137500) {
		t.Errorf("competitive ask = %.2f, want 137500", p.Amount)
	}
	if !strings.Contains(p.Message, "Another sponsor") {
		t.Errorf("competitive message %q missing the rival sponsor", p.Message)
	}
}

func TestNonprofitCounter_GradualCompromise(t *testing.T) {
	s := mustState(t, 100000, 150000, 20)
	// Eight completed rounds puts us in exchange 4.
	for i := 0; i < 8; i++ {
		s.AdvanceRound()
	}

	// requested*(1 - 0.05*4) = 120000 beats offered*1.05 = 105000.
	p := nonprofitCounter(s, models.TacticGradualCompromise)
	if !almostEqual(p.Amount, 120000) {
		t.Errorf("compromise ask = %.2f, want 120000", p.Amount)
	}
}

func TestNonprofitCounter_HoldRestatesAsk(t *testing.T) {
	s := mustState(t, 100000, 150000, 10)
	s.CurrentAsk = 140000

	p := nonprofitCounter(s, models.TacticHold)
	if !almostEqual(p.Amount, 140000) {
		t.Errorf("hold ask = %.2f, want 140000", p.Amount)
	}
}

func TestStrategists_ProposalsCarrySpeakerTactics(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	corp := NewCorporateStrategist(rng)
	np := NewNonprofitStrategist(rng)

	if corp.Speaker() != models.SpeakerCorporate {
		t.Errorf("corporate strategist speaker = %s", corp.Speaker())
	}
	if np.Speaker() != models.SpeakerNonprofit {
		t.Errorf("nonprofit strategist speaker = %s", np.Speaker())
	}

	corporateTactics := map[models.Tactic]bool{
		models.TacticHold:             true,
		models.TacticBaitAndSwitch:    true,
		models.TacticConditionalTerms: true,
		models.TacticWalkaway:         true,
	}
	nonprofitTactics := map[models.Tactic]bool{
		models.TacticHold:              true,
		models.TacticUrgencyAppeal:     true,
		models.TacticCompetitiveOffer:  true,
		models.TacticWalkawayThreat:    true,
		models.TacticGradualCompromise: true,
		models.TacticFinalAppeal:       true,
	}

	for i := 0; i < 50; i++ {
		s := mustState(t, 100000, 150000, 10)
		s.AdvanceRound()

		cp := corp.Propose(s)
		if !corporateTactics[cp.Tactic] {
			t.Fatalf("corporate proposed foreign tactic %s", cp.Tactic)
		}
		if cp.Message == "" || cp.Amount <= 0 {
			t.Fatalf("corporate proposal incomplete: %+v", cp)
		}

		np2 := np.Propose(s)
		if !nonprofitTactics[np2.Tactic] {
			t.Fatalf("nonprofit proposed foreign tactic %s", np2.Tactic)
		}
		if np2.Message == "" || np2.Amount <= 0 {
			t.Fatalf("nonprofit proposal incomplete: %+v", np2)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100000, "$100,000.00"},
		{1250000.5, "$1,250,000.50"},
		{999.99, "$999.99"},
		{0, "$0.00"},
		// Fractional cents that round up must carry into the dollars.
		{9.9999, "$10.00"},
		{999.999, "$1,000.00"},
	}

	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
