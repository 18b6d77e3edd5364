package service

import (
	"context"
	"sync"

	"github.com/pageza/chefai/backend/internal/live"
	"github.com/pageza/chefai/backend/internal/model"
)

// State is the observable state of a generation session. It is one of StateInitial,
// StateLoading, StateSuccess or StateError.
type State interface {
	Name() string
}

type StateInitial struct{}

type StateLoading struct{}

type StateSuccess struct {
	Recipe *model.Recipe
}

type StateError struct {
	Message string
}

func (StateInitial) Name() string { return "initial" }
func (StateLoading) Name() string { return "loading" }
func (StateSuccess) Name() string { return "success" }
func (StateError) Name() string   { return "error" }

// GenerationSession runs at most one generation at a time and publishes every state change
type GenerationSession struct {
	generator RecipeGenerator

	mu    sync.Mutex
	state State
	topic live.Topic[State]
}

// NewGenerationSession creates a session in the initial state
func NewGenerationSession(generator RecipeGenerator) *GenerationSession {
	s := &GenerationSession{generator: generator}
	s.set(StateInitial{})
	return s
}

// State returns the current state
func (s *GenerationSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Watch delivers the current state followed by every transition until ctx is done.
// Slow watchers skip to the newest state.
func (s *GenerationSession) Watch(ctx context.Context) <-chan State {
	return s.topic.Subscribe(ctx)
}

// Generate moves to Loading, runs the generation and ends in Success or Error, which is
// returned. ErrGenerationInProgress is returned without any state change while loading.
func (s *GenerationSession) Generate(ctx context.Context, req GenerateRequest) (State, error) {
	if !s.begin() {
		return StateLoading{}, ErrGenerationInProgress
	}
	return s.run(ctx, req), nil
}

// Start claims the session like Generate but runs the generation in the background.
// The returned channel receives the terminal state and is then closed.
func (s *GenerationSession) Start(ctx context.Context, req GenerateRequest) (<-chan State, error) {
	if !s.begin() {
		return nil, ErrGenerationInProgress
	}
	done := make(chan State, 1)
	go func() {
		defer close(done)
		done <- s.run(ctx, req)
	}()
	return done, nil
}

func (s *GenerationSession) run(ctx context.Context, req GenerateRequest) State {
	var next State
	recipe, err := s.generator.Generate(ctx, req)
	switch {
	case err != nil:
		next = StateError{Message: UserMessage(err)}
	case recipe == nil:
		next = StateError{Message: UserMessage(nil)}
	default:
		next = StateSuccess{Recipe: recipe}
	}

	s.set(next)
	return next
}

// Reset returns a finished session to Initial. A session that is loading is left alone.
func (s *GenerationSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state.(type) {
	case StateSuccess, StateError:
		s.state = StateInitial{}
		s.topic.Publish(s.state)
	}
}

// begin claims the session for a generation
func (s *GenerationSession) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, loading := s.state.(StateLoading); loading {
		return false
	}
	s.state = StateLoading{}
	s.topic.Publish(s.state)
	return true
}

func (s *GenerationSession) set(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.topic.Publish(state)
}
