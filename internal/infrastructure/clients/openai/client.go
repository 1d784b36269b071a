package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/noamgl/basketcompare/backend/internal/domain/entities"
	"github.com/noamgl/basketcompare/backend/pkg/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client is a minimal chat-completions client used for candidate
// consolidation. Responses are requested in strict JSON mode.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OpenAI client.
func NewClient(cfg *config.OpenAIConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}, nil
}

// WithBaseURL overrides the API endpoint (used for tests).
func (c *Client) WithBaseURL(baseURL string) *Client {
	if strings.TrimSpace(baseURL) != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompleteJSON sends a system+user prompt pair and unmarshals the JSON
// object the model returns into out.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
	}
	reqBody.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var envelope chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return errors.New("openai response missing message content")
	}

	cleaned := stripCodeFence(envelope.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("failed to parse openai response: %w", err)
	}
	return nil
}

// SelectCandidate asks the model to pick the best-matching offer from the
// pool. Index -1 is the model's deliberate no-match answer; any other index
// outside the pool is a malformed response and reported as an error so the
// caller can fall back to its deterministic selector.
func (c *Client) SelectCandidate(ctx context.Context, item, chainID string, pool []entities.Candidate) (*Choice, error) {
	if len(pool) == 0 {
		return &Choice{Index: -1}, nil
	}

	var choice Choice
	userPrompt := buildConsolidationUserPrompt(item, chainID, pool)
	if err := c.CompleteJSON(ctx, consolidationSystemPrompt, userPrompt, &choice); err != nil {
		return nil, err
	}

	if choice.Index < -1 || choice.Index >= len(pool) {
		return nil, fmt.Errorf("model returned index %d outside pool of %d candidates", choice.Index, len(pool))
	}
	if choice.Confidence < 0 {
		choice.Confidence = 0
	}
	if choice.Confidence > 99 {
		choice.Confidence = 99
	}
	return &choice, nil
}

// stripCodeFence removes a Markdown code block wrapper if the model added one.
func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}
