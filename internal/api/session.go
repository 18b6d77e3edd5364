package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/chefai/backend/internal/service"
	"go.uber.org/zap"
)

// SessionHandler exposes the single-flight generation session
type SessionHandler struct {
	ctx     context.Context
	session *service.GenerationSession
	logger  *zap.Logger
}

// NewSessionHandler creates a handler whose background generations run under ctx
func NewSessionHandler(ctx context.Context, session *service.GenerationSession, logger *zap.Logger) *SessionHandler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SessionHandler{ctx: ctx, session: session, logger: logger}
}

// Generate starts a generation in the background and answers with the Loading state
func (h *SessionHandler) Generate(c *gin.Context) {
	var req GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	done, err := h.session.Start(h.ctx, req.toService())
	if errors.Is(err, service.ErrGenerationInProgress) {
		c.JSON(http.StatusConflict, newStateResponse(service.StateLoading{}))
		return
	}
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	go func() {
		if state, ok := (<-done).(service.StateError); ok {
			h.logger.Warn("session generation failed", zap.String("message", state.Message))
		}
	}()

	c.JSON(http.StatusAccepted, newStateResponse(service.StateLoading{}))
}

func (h *SessionHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(h.session.State()))
}

// Reset returns a finished session to the initial state
func (h *SessionHandler) Reset(c *gin.Context) {
	h.session.Reset()
	c.JSON(http.StatusOK, newStateResponse(h.session.State()))
}

// StreamState pushes every session state change
func (h *SessionHandler) StreamState(c *gin.Context) {
	states := h.session.Watch(c.Request.Context())
	streamEvents(c, states, func(state service.State) (string, any, bool) {
		return "state", newStateResponse(state), false
	})
}
