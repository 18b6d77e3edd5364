package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/chefai/backend/internal/mocks"
	"github.com/pageza/chefai/backend/internal/repository"
	"github.com/pageza/chefai/backend/internal/service"
	"github.com/pageza/chefai/backend/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router    *gin.Engine
	repo      *repository.RecipeRepository
	generator *mocks.MockRecipeGenerator
	session   *service.GenerationSession
}

func setupTestAPI(t *testing.T, auth *service.TokenService) *testAPI {
	t.Helper()

	repo := repository.NewRecipeRepository(testhelpers.SetupSQLiteDB(t), repository.NewMemoryNotifier(), zap.NewNop(), 50*time.Millisecond)
	t.Cleanup(repo.Close)

	generator := new(mocks.MockRecipeGenerator)
	session := service.NewGenerationSession(generator)

	deps := Dependencies{
		Recipes:   repo,
		Generator: generator,
		Session:   session,
		Logger:    zap.NewNop(),
	}
	if auth != nil {
		deps.Auth = auth
	}

	router := gin.New()
	RegisterRoutes(router, deps)

	return &testAPI{router: router, repo: repo, generator: generator, session: session}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type sseEvent struct {
	Name string
	Data string
}

// openStream starts a server-sent event request against a real listener
func openStream(t *testing.T, router *gin.Engine, path string) <-chan sseEvent {
	t.Helper()

	server := httptest.NewServer(router)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		server.Close()
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+path, nil)
	require.NoError(t, err)
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := make(chan sseEvent, 16)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		var ev sseEvent
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				if ev.Name != "" || ev.Data != "" {
					select {
					case events <- ev:
					case <-ctx.Done():
						return
					}
				}
				ev = sseEvent{}
			case strings.HasPrefix(line, "event:"):
				ev.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				ev.Data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
	}()
	return events
}

// waitForEvent reads events until one satisfies match
func waitForEvent(t *testing.T, events <-chan sseEvent, match func(sseEvent) bool) sseEvent {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream ended")
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
			return sseEvent{}
		}
	}
}
