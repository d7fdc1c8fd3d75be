package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

// openAIClient is a thin wrapper over the OpenAI chat completions API shared
// by the generation and chat services.
type openAIClient struct {
	apiKey string
	model  string
	client *http.Client
}

func newOpenAIClient(apiKey, model string) *openAIClient {
	if model == "" {
		model = "gpt-4o"
	}
	return &openAIClient{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type oaMessage struct {
	Role       string       `json:"role"`
	Content    string       `json:"content"`
	ToolCalls  []oaToolCall `json:"tool_calls,omitempty"`
	ToolCallID string       `json:"tool_call_id,omitempty"`
}

type oaToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type oaTool struct {
	Type     string         `json:"type"`
	Function oaToolFunction `json:"function"`
}

type oaToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type oaRequest struct {
	Model          string         `json:"model"`
	Messages       []oaMessage    `json:"messages"`
	Tools          []oaTool       `json:"tools,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	Temperature    float64        `json:"temperature"`
}

type oaResponse struct {
	Choices []struct {
		Message oaMessage `json:"message"`
	} `json:"choices"`
}

// chat performs one chat completion round trip.
func (c *openAIClient) chat(ctx context.Context, req oaRequest) (oaMessage, error) {
	if c.apiKey == "" {
		return oaMessage{}, errors.New("OpenAI API key not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return oaMessage{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(body))
	if err != nil {
		return oaMessage{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return oaMessage{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return oaMessage{}, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed oaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return oaMessage{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return oaMessage{}, errors.New("no choices in response")
	}
	return parsed.Choices[0].Message, nil
}

// completeJSON runs one instruction+input exchange in JSON mode and decodes
// the reply into out.
func (c *openAIClient) completeJSON(ctx context.Context, instructions, input string, out any) error {
	msg, err := c.chat(ctx, oaRequest{
		Model: c.model,
		Messages: []oaMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: input},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
		Temperature:    0.2,
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(msg.Content), out); err != nil {
		return fmt.Errorf("failed to parse model output: %w", err)
	}
	return nil
}
