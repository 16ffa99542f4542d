package core

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/parley/pkg/models"
)

// outcomeLabels maps outcomes to the labels used in the final report.
var outcomeLabels = map[models.Outcome]string{
	models.OutcomeAgreed:          "Agreement reached",
	models.OutcomeWalkedAway:      "A party walked away",
	models.OutcomeRoundLimit:      "Round limit reached",
	models.OutcomeEventTerminated: "Terminated by external event",
}

// OutcomeLabel returns a human-readable label for an outcome.
func OutcomeLabel(o models.Outcome) string {
	if label, ok := outcomeLabels[o]; ok {
		return label
	}
	return string(o)
}

// RenderReport produces the final negotiation report as plain text.
func RenderReport(res *Result) string {
	var b strings.Builder

	b.WriteString("Negotiation Final Report\n")
	fmt.Fprintf(&b, "  %-18s %s (%s)\n", "Outcome:", res.Outcome, OutcomeLabel(res.Outcome))
	fmt.Fprintf(&b, "  %-18s %s\n", "Initial offer:", formatAmount(res.InitialFunding))
	fmt.Fprintf(&b, "  %-18s %s\n", "Final offer:", formatAmount(res.FinalOffered))
	fmt.Fprintf(&b, "  %-18s %s\n", "Requested:", formatAmount(res.FundingRequested))
	fmt.Fprintf(&b, "  %-18s %s\n", "Final ask:", formatAmount(res.FinalAsk))
	fmt.Fprintf(&b, "  %-18s %d\n", "Rounds completed:", res.RoundsCompleted)
	if len(res.Events) > 0 {
		b.WriteString("  Events:\n")
		for _, ev := range res.Events {
			fmt.Fprintf(&b, "    round %d: %s: %s\n", ev.Round, ev.Kind, ev.Description)
		}
	}

	return b.String()
}

// RenderTranscript produces the full transcript as plain text, one line per
// turn, in the order the turns were recorded.
func RenderTranscript(turns []models.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "[%02d] %-10s (%s) %s\n", t.Round, t.Speaker, t.Tactic, t.Message)
	}
	return b.String()
}
