package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GenAITextClient generates recipe text with Google's Gemini API
type GenAITextClient struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewGenAITextClient creates a Gemini text client. baseURL is only set to point the client
// at a different endpoint.
func NewGenAITextClient(ctx context.Context, apiKey, baseURL, model string, timeout time.Duration, logger *zap.Logger) (*GenAITextClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAITextClient{client: client, model: model, logger: logger}, nil
}

// GenerateText sends the user prompt with the system prompt as system instruction and
// returns the concatenated text of the first candidate
func (c *GenAITextClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.User), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			c.logger.Error("gemini generation failed",
				zap.Int("status", apiErr.Code),
				zap.String("message", apiErr.Message))
			return "", &TransportError{Op: "chat", StatusCode: apiErr.Code, Body: apiErr.Message, Err: err}
		}
		return "", &TransportError{Op: "chat", Err: err}
	}

	return resp.Text(), nil
}
