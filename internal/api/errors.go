package api

import (
	"errors"
	"net/http"

	"github.com/pageza/chefai/backend/internal/repository"
	"github.com/pageza/chefai/backend/internal/service"
)

var (
	errMissingInput = errors.New("please fill in the recipe idea and ingredients")
	errInvalidBody  = errors.New("invalid request body")
	errInvalidID    = errors.New("invalid recipe id")
)

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	var transportErr *service.TransportError
	switch {
	case errors.Is(err, service.ErrParseFailure), errors.Is(err, service.ErrEmptyResponse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrGenerationInProgress):
		return http.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrInvalidRecipe),
		errors.Is(err, errMissingInput),
		errors.Is(err, errInvalidBody),
		errors.Is(err, errInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
