package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/valter-silva-au/parley/pkg/models"
)

// OutcomeSummary is the shape of a completed session as sent to notifiers.
type OutcomeSummary struct {
	ID           string
	Outcome      models.Outcome
	Rounds       int
	FinalOffered float64
	FinalAsk     float64
	Events       int
}

// Notifier sends outcome notifications to external channels.
type Notifier interface {
	Notify(summary OutcomeSummary) error
}

// slackNotifier posts outcome summaries to a Slack webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that posts to the given Slack webhook URL.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type slackMessage struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify posts the outcome summary to the configured Slack webhook.
func (s *slackNotifier) Notify(summary OutcomeSummary) error {
	msg := s.buildMessage(summary)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func (s *slackNotifier) buildMessage(summary OutcomeSummary) slackMessage {
	header := "parley: negotiation finished"
	if summary.ID != "" {
		header = fmt.Sprintf("parley: negotiation %s finished", summary.ID)
	}

	text := fmt.Sprintf("%s *%s* after %d rounds\nFinal offer $%.2f against an ask of $%.2f (%d external events)",
		outcomeEmoji(summary.Outcome),
		summary.Outcome,
		summary.Rounds,
		summary.FinalOffered,
		summary.FinalAsk,
		summary.Events,
	)

	return slackMessage{Blocks: []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: header}},
		{Type: "section", Text: &slackText{Type: "mrkdwn", Text: text}},
	}}
}

func outcomeEmoji(o models.Outcome) string {
	switch o {
	case models.OutcomeAgreed:
		return "\U0001f91d"
	case models.OutcomeWalkedAway:
		return "\U0001f6aa"
	case models.OutcomeEventTerminated:
		return "⚡"
	default:
		return "⏱"
	}
}
