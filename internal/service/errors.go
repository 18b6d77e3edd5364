package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse is returned when the text model answers successfully with a blank payload
	ErrEmptyResponse = errors.New("recipe response was empty")

	// ErrParseFailure is returned when no recognizable recipe structure is found in a response
	ErrParseFailure = errors.New("failed to parse recipe from response")

	// ErrGenerationInProgress is returned when a session is asked to generate while already loading
	ErrGenerationInProgress = errors.New("a recipe generation is already in progress")
)

// TransportError describes a failed call to one of the generation APIs
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: API request failed with status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: request failed", e.Op)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ImageGenerationError wraps a failed image generation. It never fails a recipe generation.
type ImageGenerationError struct {
	Prompt string
	Err    error
}

func (e *ImageGenerationError) Error() string {
	return fmt.Sprintf("image generation failed: %v", e.Err)
}

func (e *ImageGenerationError) Unwrap() error {
	return e.Err
}

// UserMessage converts a generation error into a non-empty message suitable for display
func UserMessage(err error) string {
	if err == nil {
		return "an unexpected error occurred"
	}

	var transportErr *TransportError
	switch {
	case errors.Is(err, ErrParseFailure):
		return ErrParseFailure.Error()
	case errors.Is(err, ErrEmptyResponse):
		return ErrEmptyResponse.Error()
	case errors.As(err, &transportErr):
		if transportErr.StatusCode != 0 {
			return fmt.Sprintf("API error %d: check logs (%s)", transportErr.StatusCode, transportErr.Op)
		}
		if transportErr.Err != nil && transportErr.Err.Error() != "" {
			return transportErr.Err.Error()
		}
		return transportErr.Error()
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return "an unexpected error occurred"
}
