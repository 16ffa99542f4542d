// Package llm provides Collaborator implementations: an OpenRouter-compatible
// chat-completions client that voices scripted lines in persona, and a
// deterministic scripted fallback for offline use.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valter-silva-au/parley/internal/core"
)

// DefaultBaseURL is the OpenRouter API root. Any OpenAI-compatible endpoint
// works.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const requestTimeout = 30 * time.Second

// chatMessage is one message in an OpenAI-compatible chat request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	FinishReason string      `json:"finish_reason"`
	Message      chatMessage `json:"message"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Client voices negotiation turns through an OpenRouter-compatible
// chat-completions API. It implements core.Collaborator.
type Client struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, e.g. for a local proxy or tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates a collaborator backed by the chat-completions API.
// token is the bearer credential (OPENROUTER_API_KEY); it must not be empty.
func NewClient(token, model string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, core.NewConfigError("API credential is required (set OPENROUTER_API_KEY or use --offline)")
	}
	if model == "" {
		return nil, core.NewConfigError("model must not be empty")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Voice asks the LLM to deliver the scripted line in the speaker's persona,
// given the transcript so far. The numeric terms of the scripted line must be
// preserved; the persona only changes the delivery.
func (c *Client) Voice(ctx context.Context, req core.VoiceRequest) (string, error) {
	body := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req.Speaker)},
			{Role: "user", Content: userPrompt(req)},
		},
		MaxTokens:   256,
		Temperature: 0.7,
	}

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", buf)
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("chat completions returned status %d: %s", res.StatusCode, string(b))
	}

	var parsed chatCompletionResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completions returned no usable choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
