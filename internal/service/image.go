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

	"github.com/google/uuid"
	"github.com/pageza/chefai/backend/config"
	"go.uber.org/zap"
)

const (
	DefaultImageModel = "dall-e-2"
	DefaultImageSize  = "1024x1024"
)

// ImageGenerationRequest represents a request to the image generations endpoint
type ImageGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// ImageGenerationResponse represents the response from the image generations endpoint
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL string `json:"url,omitempty"`
	} `json:"data"`
}

// OpenAIImageClient generates dish pictures and optionally re-hosts them on S3
type OpenAIImageClient struct {
	apiKey   string
	apiURL   string
	model    string
	s3Config *config.S3Config
	client   *http.Client
	logger   *zap.Logger
}

// NewOpenAIImageClient creates an image client. s3Config may be nil, in which case the
// provider URL is returned as is.
func NewOpenAIImageClient(apiKey, baseURL, model string, timeout time.Duration, s3Config *config.S3Config, logger *zap.Logger) (*OpenAIImageClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set")
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultImageModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIImageClient{
		apiKey:   apiKey,
		apiURL:   strings.TrimRight(baseURL, "/") + "/v1/images/generations",
		model:    model,
		s3Config: s3Config,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}, nil
}

// GenerateImage requests one 1024x1024 image for prompt and returns its URL
func (c *OpenAIImageClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	jsonData, err := json.Marshal(ImageGenerationRequest{
		Model:  c.model,
		Prompt: prompt,
		N:      1,
		Size:   DefaultImageSize,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TransportError{Op: "image", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Op: "image", Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &TransportError{Op: "image", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &TransportError{Op: "image", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(result.Data) == 0 || strings.TrimSpace(result.Data[0].URL) == "" {
		return "", fmt.Errorf("empty image URL in API response")
	}
	imageURL := result.Data[0].URL

	if c.s3Config == nil {
		return imageURL, nil
	}

	s3URL, err := c.downloadAndUploadToS3(ctx, imageURL)
	if err != nil {
		c.logger.Warn("failed to re-host image on S3, returning provider URL", zap.Error(err))
		return imageURL, nil
	}
	return s3URL, nil
}

// downloadAndUploadToS3 downloads an image from URL and uploads it to S3
func (c *OpenAIImageClient) downloadAndUploadToS3(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	key := fmt.Sprintf("recipe-images/%s.png", uuid.New().String())
	url, err := c.s3Config.Upload(ctx, key, imageData, "image/png")
	if err != nil {
		return "", err
	}

	c.logger.Info("uploaded recipe image", zap.String("url", url))
	return url, nil
}
