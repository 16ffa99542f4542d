package llm

import (
	"fmt"
	"strings"

	"github.com/valter-silva-au/parley/internal/core"
	"github.com/valter-silva-au/parley/pkg/models"
)

// transcriptTail limits how many prior turns are sent as context.
const transcriptTail = 8

const corporatePersona = `You are the head of corporate giving at a large sponsor,
negotiating a funding commitment with a nonprofit. You are polished, a little
smug, and always protecting the budget. Stay in character.

Rules:
- Deliver the scripted position you are given, in your own voice.
- Keep every dollar figure from the script exactly as written.
- Reply with the message only, two or three sentences, no stage directions.`

const nonprofitPersona = `You are the development director of a small nonprofit,
negotiating a funding commitment with a corporate sponsor. You are earnest,
mission-driven, and quietly desperate. Stay in character.

Rules:
- Deliver the scripted position you are given, in your own voice.
- Keep every dollar figure from the script exactly as written.
- Reply with the message only, two or three sentences, no stage directions.`

// systemPrompt returns the persona prompt for the given speaker.
func systemPrompt(speaker models.Speaker) string {
	if speaker == models.SpeakerCorporate {
		return corporatePersona
	}
	return nonprofitPersona
}

// userPrompt assembles the per-turn request: recent transcript, the current
// positions, and the scripted line to deliver.
func userPrompt(req core.VoiceRequest) string {
	var b strings.Builder

	if len(req.Transcript) > 0 {
		b.WriteString("Conversation so far:\n")
		turns := req.Transcript
		if len(turns) > transcriptTail {
			turns = turns[len(turns)-transcriptTail:]
		}
		for _, t := range turns {
			fmt.Fprintf(&b, "  %s: %s\n", t.Speaker, t.Message)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "It is round %d. The sponsor's standing offer is $%.2f and the nonprofit's ask is $%.2f.\n\n",
		req.Round, req.Offered, req.Ask)
	fmt.Fprintf(&b, "Your scripted position (tactic: %s):\n%s\n", req.Tactic, req.ScriptedLine)

	return b.String()
}
