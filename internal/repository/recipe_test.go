package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pageza/chefai/backend/internal/model"
	"github.com/pageza/chefai/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func newTestRepository(t *testing.T, grace time.Duration) (*RecipeRepository, *MemoryNotifier) {
	t.Helper()
	db := testhelpers.SetupSQLiteDB(t)
	notifier := NewMemoryNotifier()
	repo := NewRecipeRepository(db, notifier, zap.NewNop(), grace)
	t.Cleanup(func() {
		repo.Close()
		notifier.Close()
	})
	return repo, notifier
}

// waitForSnapshot reads snapshots until one satisfies match
func waitForSnapshot(t *testing.T, ch <-chan Snapshot, match func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-ch:
			require.True(t, ok, "snapshot channel closed")
			if match(snap) {
				return snap
			}
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
			return Snapshot{}
		}
	}
}

func withCount(n int) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.Err == nil && len(s.Recipes) == n }
}

func titles(recipes []model.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}

func expectClosed(t *testing.T, ch <-chan Snapshot) {
	t.Helper()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected channel to be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel to close")
	}
}

func TestInsertOrReplace(t *testing.T) {
	repo, _ := newTestRepository(t, 0)
	ctx := context.Background()

	t.Run("should assign a fresh id on insert", func(t *testing.T) {
		first, err := repo.InsertOrReplace(ctx, testhelpers.NewTestRecipe("Pancakes"))
		require.NoError(t, err)
		second, err := repo.InsertOrReplace(ctx, testhelpers.NewTestRecipe("Waffles"))
		require.NoError(t, err)

		assert.NotZero(t, first.ID)
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("should replace an existing row without changing the count", func(t *testing.T) {
		saved, err := repo.InsertOrReplace(ctx, testhelpers.NewTestRecipe("Omelette"))
		require.NoError(t, err)
		before, err := repo.ListAll().Fetch(ctx)
		require.NoError(t, err)

		replacement := testhelpers.NewTestRecipe("Spanish Omelette")
		replacement.ID = saved.ID
		replacement.Ingredients = model.StringList{"eggs", "potatoes"}
		replacement = ptr(replacement.WithImageURL("https://img.test/omelette.png"))
		_, err = repo.InsertOrReplace(ctx, replacement)
		require.NoError(t, err)

		after, err := repo.ListAll().Fetch(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))

		stored, err := repo.Get(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "Spanish Omelette", stored.Title)
		assert.Equal(t, model.StringList{"eggs", "potatoes"}, stored.Ingredients)
		require.NotNil(t, stored.ImageURL)
		assert.Equal(t, "https://img.test/omelette.png", *stored.ImageURL)
	})

	t.Run("should keep the creation time when the replacement has none", func(t *testing.T) {
		original := testhelpers.NewTestRecipe("Risotto")
		original.CreatedAt = time.Now().Add(-48 * time.Hour)
		saved, err := repo.InsertOrReplace(ctx, original)
		require.NoError(t, err)

		replacement := testhelpers.NewTestRecipe("Mushroom Risotto")
		replacement.ID = saved.ID
		replaced, err := repo.InsertOrReplace(ctx, replacement)
		require.NoError(t, err)
		assert.WithinDuration(t, original.CreatedAt, replaced.CreatedAt, time.Second)

		stored, err := repo.Get(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mushroom Risotto", stored.Title)
		assert.WithinDuration(t, original.CreatedAt, stored.CreatedAt, time.Second)
	})

	t.Run("should insert a row with an unknown id", func(t *testing.T) {
		recipe := testhelpers.NewTestRecipe("Crepes")
		recipe.ID = 4242

		saved, err := repo.InsertOrReplace(ctx, recipe)
		require.NoError(t, err)
		assert.Equal(t, uint(4242), saved.ID)

		stored, err := repo.Get(ctx, 4242)
		require.NoError(t, err)
		assert.Equal(t, "Crepes", stored.Title)
	})

	t.Run("should reject a recipe without a title", func(t *testing.T) {
		_, err := repo.InsertOrReplace(ctx, &model.Recipe{Title: "  "})

		var perr *PersistenceError
		require.True(t, errors.As(err, &perr))
		assert.ErrorIs(t, err, ErrInvalidRecipe)
	})

	t.Run("should round-trip empty lists as empty", func(t *testing.T) {
		saved, err := repo.InsertOrReplace(ctx, &model.Recipe{Title: "Plain Water", ImagePrompt: "a glass"})
		require.NoError(t, err)

		stored, err := repo.Get(ctx, saved.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.Ingredients)
		assert.Empty(t, stored.Ingredients)
		assert.Nil(t, stored.ImageURL)
	})
}

func ptr(r model.Recipe) *model.Recipe {
	return &r
}

func TestInsertOrReplaceWrapsStoreFailures(t *testing.T) {
	repo, _ := newTestRepository(t, 0)
	require.NoError(t, repo.db.Migrator().DropTable(&model.Recipe{}))

	_, err := repo.InsertOrReplace(context.Background(), testhelpers.NewTestRecipe("Soup"))

	var perr *PersistenceError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "insert", perr.Op)
}

func TestGetMissingRecipe(t *testing.T) {
	repo, _ := newTestRepository(t, 0)

	_, err := repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAllPushesSnapshotsNewestFirst(t *testing.T) {
	repo, _ := newTestRepository(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.ListAll().Subscribe(ctx)

	initial := waitForSnapshot(t, ch, withCount(0))
	assert.NotNil(t, initial.Recipes)

	for i, title := range []string{"A", "B", "C"} {
		_, err := repo.InsertOrReplace(ctx, testhelpers.NewTestRecipe(title))
		require.NoError(t, err)
		waitForSnapshot(t, ch, withCount(i+1))
	}

	_, err := repo.InsertOrReplace(ctx, testhelpers.NewTestRecipe("D"))
	require.NoError(t, err)
	snap := waitForSnapshot(t, ch, withCount(4))
	assert.Equal(t, []string{"D", "C", "B", "A"}, titles(snap.Recipes))
	for i := 1; i < len(snap.Recipes); i++ {
		assert.Greater(t, snap.Recipes[i-1].ID, snap.Recipes[i].ID)
	}
}

func TestLateSubscriberReceivesLatestSnapshot(t *testing.T) {
	repo, _ := newTestRepository(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := repo.InsertOrReplace(ctx, testhelpers.NewTestRecipe("Risotto"))
	require.NoError(t, err)

	first := repo.ListAll().Subscribe(ctx)
	waitForSnapshot(t, first, withCount(1))

	second := repo.ListAll().Subscribe(ctx)
	snap := waitForSnapshot(t, second, withCount(1))
	assert.Equal(t, "Risotto", snap.Recipes[0].Title)
}

func TestSearch(t *testing.T) {
	repo, _ := newTestRepository(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, title := range []string{"Basil Chicken", "Lemon Chicken", "Beef Stew", "100% Rye", "Rye_Bread"} {
		_, err := repo.InsertOrReplace(ctx, testhelpers.NewTestRecipe(title))
		require.NoError(t, err)
	}

	t.Run("should match substrings ignoring case newest first", func(t *testing.T) {
		snap := waitForSnapshot(t, repo.Search("CHICKEN").Subscribe(ctx), withCount(2))
		assert.Equal(t, []string{"Lemon Chicken", "Basil Chicken"}, titles(snap.Recipes))
	})

	t.Run("should return an empty list when nothing matches", func(t *testing.T) {
		snap := waitForSnapshot(t, repo.Search("zz-no-match").Subscribe(ctx), withCount(0))
		assert.NotNil(t, snap.Recipes)
	})

	t.Run("should treat wildcard characters literally", func(t *testing.T) {
		recipes, err := repo.Search("%").Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"100% Rye"}, titles(recipes))

		recipes, err = repo.Search("_").Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Rye_Bread"}, titles(recipes))
	})

	t.Run("should list everything for a blank term", func(t *testing.T) {
		assert.Same(t, repo.ListAll(), repo.Search("   "))
	})

	t.Run("should refresh results after a matching insert", func(t *testing.T) {
		ch := repo.Search("stew").Subscribe(ctx)
		waitForSnapshot(t, ch, withCount(1))

		_, err := repo.InsertOrReplace(ctx, testhelpers.NewTestRecipe("Lamb Stew"))
		require.NoError(t, err)

		snap := waitForSnapshot(t, ch, withCount(2))
		assert.Equal(t, []string{"Lamb Stew", "Beef Stew"}, titles(snap.Recipes))
	})
}

func TestLiveQueriesAreShared(t *testing.T) {
	repo, _ := newTestRepository(t, 0)

	assert.Same(t, repo.ListAll(), repo.ListAll())
	assert.Same(t, repo.Search("soup"), repo.Search("soup"))
	assert.NotSame(t, repo.Search("soup"), repo.Search("Soup"))
}

func TestLiveQueryStopsAfterGracePeriod(t *testing.T) {
	repo, _ := newTestRepository(t, 30*time.Millisecond)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer repo.Close()

	query := repo.ListAll()
	ctx, cancel := context.WithCancel(context.Background())
	ch := query.Subscribe(ctx)
	waitForSnapshot(t, ch, withCount(0))
	require.True(t, query.Running())

	cancel()
	expectClosed(t, ch)

	assert.Eventually(t, func() bool {
		return !query.Running() && repo.ListAll() != query
	}, time.Second, 5*time.Millisecond, "stopped query should be released")
}

func TestLiveQuerySurvivesResubscribeWithinGrace(t *testing.T) {
	repo, _ := newTestRepository(t, 200*time.Millisecond)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	defer repo.Close()

	query := repo.ListAll()
	ctx1, cancel1 := context.WithCancel(context.Background())
	waitForSnapshot(t, query.Subscribe(ctx1), withCount(0))
	cancel1()

	time.Sleep(50 * time.Millisecond)
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	ch := query.Subscribe(ctx2)
	waitForSnapshot(t, ch, withCount(0))

	time.Sleep(300 * time.Millisecond)
	assert.True(t, query.Running())
	assert.Same(t, query, repo.ListAll())
}

func stopQuery(t *testing.T, query *LiveQuery) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ch := query.Subscribe(ctx)
	waitForSnapshot(t, ch, withCount(0))
	cancel()
	expectClosed(t, ch)
	require.Eventually(t, func() bool { return !query.Running() }, time.Second, 5*time.Millisecond)
}

func closeWithin(t *testing.T, repo *RecipeRepository) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		repo.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("repository close did not return")
	}
}

func expectFinalError(t *testing.T, ch <-chan Snapshot, target error) {
	t.Helper()
	snap := waitForSnapshot(t, ch, func(s Snapshot) bool { return s.Err != nil })
	assert.ErrorIs(t, snap.Err, target)
	expectClosed(t, ch)
}

func TestReleasedLiveQueryRestarts(t *testing.T) {
	t.Run("should rejoin the shared queries when resubscribed", func(t *testing.T) {
		repo, _ := newTestRepository(t, 30*time.Millisecond)
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		query := repo.ListAll()
		stopQuery(t, query)

		ch := query.Subscribe(context.Background())
		waitForSnapshot(t, ch, withCount(0))
		assert.True(t, query.Running())
		assert.Same(t, query, repo.ListAll())

		closeWithin(t, repo)
		expectFinalError(t, ch, ErrClosed)
	})

	t.Run("should still stop on close when its key was taken over", func(t *testing.T) {
		repo, _ := newTestRepository(t, 30*time.Millisecond)
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		stale := repo.Search("stew")
		stopQuery(t, stale)

		current := repo.Search("stew")
		require.NotSame(t, stale, current)
		currentCh := current.Subscribe(context.Background())
		waitForSnapshot(t, currentCh, withCount(0))

		staleCh := stale.Subscribe(context.Background())
		waitForSnapshot(t, staleCh, withCount(0))
		assert.Same(t, current, repo.Search("stew"))

		closeWithin(t, repo)
		expectFinalError(t, currentCh, ErrClosed)
		expectFinalError(t, staleCh, ErrClosed)
	})

	t.Run("should refuse to restart after close", func(t *testing.T) {
		repo, _ := newTestRepository(t, 30*time.Millisecond)

		query := repo.ListAll()
		stopQuery(t, query)
		closeWithin(t, repo)

		ch := query.Subscribe(context.Background())
		expectFinalError(t, ch, ErrClosed)
		assert.False(t, query.Running())
	})
}

func TestLiveQueryDeliversQueryFailure(t *testing.T) {
	repo, notifier := newTestRepository(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.ListAll().Subscribe(ctx)
	waitForSnapshot(t, ch, withCount(0))

	require.NoError(t, repo.db.Migrator().DropTable(&model.Recipe{}))
	require.NoError(t, notifier.Publish(ctx))

	snap := waitForSnapshot(t, ch, func(s Snapshot) bool { return s.Err != nil })
	assert.Contains(t, snap.Err.Error(), "listAll")
	expectClosed(t, ch)
}

func TestLiveQueryDeliversNotifierShutdown(t *testing.T) {
	repo, notifier := newTestRepository(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.ListAll().Subscribe(ctx)
	waitForSnapshot(t, ch, withCount(0))

	require.NoError(t, notifier.Close())

	snap := waitForSnapshot(t, ch, func(s Snapshot) bool { return s.Err != nil })
	assert.ErrorIs(t, snap.Err, ErrNotifierClosed)
	expectClosed(t, ch)
}

type failingNotifier struct{ err error }

func (n failingNotifier) Publish(context.Context) error { return n.err }
func (n failingNotifier) Subscribe(context.Context) (<-chan struct{}, error) {
	return nil, n.err
}
func (n failingNotifier) Close() error { return nil }

func TestLiveQueryDeliversSubscribeFailure(t *testing.T) {
	db := testhelpers.SetupSQLiteDB(t)
	boom := errors.New("broker unavailable")
	repo := NewRecipeRepository(db, failingNotifier{err: boom}, zap.NewNop(), 0)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.ListAll().Subscribe(ctx)
	snap := waitForSnapshot(t, ch, func(s Snapshot) bool { return s.Err != nil })
	assert.ErrorIs(t, snap.Err, boom)
	expectClosed(t, ch)

	t.Run("should still save when announcing fails", func(t *testing.T) {
		saved, err := repo.InsertOrReplace(ctx, testhelpers.NewTestRecipe("Tacos"))
		require.NoError(t, err)
		assert.NotZero(t, saved.ID)
	})
}

func TestCloseEndsSubscriptions(t *testing.T) {
	repo, _ := newTestRepository(t, 0)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.ListAll().Subscribe(ctx)
	waitForSnapshot(t, ch, withCount(0))

	repo.Close()
	snap := waitForSnapshot(t, ch, func(s Snapshot) bool { return s.Err != nil })
	assert.ErrorIs(t, snap.Err, ErrClosed)
	expectClosed(t, ch)

	late := repo.Search("anything").Subscribe(ctx)
	snap = waitForSnapshot(t, late, func(s Snapshot) bool { return s.Err != nil })
	assert.ErrorIs(t, snap.Err, ErrClosed)
	expectClosed(t, late)
}
