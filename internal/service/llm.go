package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com"
	DefaultChatModel     = "gpt-4o-mini"
)

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completions endpoint
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// ChatResponse is the subset of the chat completions response that is used
type ChatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// OpenAIChatClient generates recipe text with the OpenAI chat completions API
type OpenAIChatClient struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	logger *zap.Logger
}

// NewOpenAIChatClient creates a chat client. Empty baseURL and model fall back to the
// public API and gpt-4o-mini.
func NewOpenAIChatClient(apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) (*OpenAIChatClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set")
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultChatModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIChatClient{
		apiKey: apiKey,
		apiURL: strings.TrimRight(baseURL, "/") + "/v1/chat/completions",
		model:  model,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// GenerateText sends the system and user prompts and returns the first choice's content.
// A response without choices yields an empty string.
func (c *OpenAIChatClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	jsonData, err := json.Marshal(ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &TransportError{Op: "chat", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Op: "chat", Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("chat completion failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", &TransportError{Op: "chat", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result ChatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &TransportError{Op: "chat", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(result.Choices) == 0 {
		return "", nil
	}
	return result.Choices[0].Message.Content, nil
}
