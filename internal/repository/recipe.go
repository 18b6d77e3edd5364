// Package repository stores generated recipes and publishes live list and search results.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pageza/chefai/backend/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const listAllKey = "listAll"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// RecipeRepository persists recipes and serves live queries over them
type RecipeRepository struct {
	db       *gorm.DB
	notifier Notifier
	grace    time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	queries map[string]*LiveQuery
	running map[*LiveQuery]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewRecipeRepository creates a repository over db. Changes are announced through notifier;
// a non-positive grace uses DefaultGracePeriod.
func NewRecipeRepository(db *gorm.DB, notifier Notifier, logger *zap.Logger, grace time.Duration) *RecipeRepository {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeRepository{
		db:       db,
		notifier: notifier,
		grace:    grace,
		logger:   logger,
		queries:  make(map[string]*LiveQuery),
		running:  make(map[*LiveQuery]struct{}),
	}
}

// InsertOrReplace stores recipe. A zero ID inserts a new row with a fresh ID; any other ID
// replaces that row completely, inserting it if it does not exist. A replacement without a
// creation time keeps the stored one. The stored record is returned.
func (r *RecipeRepository) InsertOrReplace(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	if recipe == nil || strings.TrimSpace(recipe.Title) == "" {
		return nil, &PersistenceError{Op: "save", Err: ErrInvalidRecipe}
	}

	row := *recipe
	op := "insert"
	if row.ID != 0 {
		op = "replace"
	}
	if row.CreatedAt.IsZero() {
		created, err := r.createdAt(ctx, row.ID)
		if err != nil {
			return nil, &PersistenceError{Op: op, ID: row.ID, Err: err}
		}
		row.CreatedAt = created
	}

	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, &PersistenceError{Op: op, ID: row.ID, Err: err}
	}

	r.logger.Debug("recipe saved", zap.String("op", op), zap.Uint("id", row.ID))

	if err := r.notifier.Publish(ctx); err != nil {
		r.logger.Warn("failed to announce recipe change", zap.Uint("id", row.ID), zap.Error(err))
	}

	return &row, nil
}

// Get returns the recipe with the given ID
func (r *RecipeRepository) Get(ctx context.Context, id uint) (*model.Recipe, error) {
	var recipe model.Recipe
	err := r.db.WithContext(ctx).First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	return &recipe, nil
}

// ListAll returns the live query of every recipe, newest first
func (r *RecipeRepository) ListAll() *LiveQuery {
	return r.liveQuery(listAllKey, r.listAll)
}

// Search returns the live query of recipes whose title contains title, ignoring case,
// newest first. A blank term lists every recipe.
func (r *RecipeRepository) Search(title string) *LiveQuery {
	if strings.TrimSpace(title) == "" {
		return r.ListAll()
	}
	return r.liveQuery("search:"+title, func(ctx context.Context) ([]model.Recipe, error) {
		return r.search(ctx, title)
	})
}

// Close stops every live query and ends their subscriptions with ErrClosed
func (r *RecipeRepository) Close() {
	r.mu.Lock()
	r.closed = true
	queries := make(map[*LiveQuery]struct{}, len(r.queries)+len(r.running))
	for key, q := range r.queries {
		queries[q] = struct{}{}
		delete(r.queries, key)
	}
	for q := range r.running {
		queries[q] = struct{}{}
		delete(r.running, q)
	}
	r.mu.Unlock()

	for q := range queries {
		q.shutdown()
	}
	r.wg.Wait()
}

func (r *RecipeRepository) liveQuery(key string, run queryFunc) *LiveQuery {
	r.mu.Lock()
	defer r.mu.Unlock()

	if q, ok := r.queries[key]; ok {
		return q
	}
	q := newLiveQuery(key, run, r)
	if r.closed {
		q.closed = true
		return q
	}
	r.queries[key] = q
	return q
}

// register records q as running so Close can stop it. q takes over its key unless another
// running query owns it. It fails once the repository is closed.
// Called with q.mu held.
func (r *RecipeRepository) register(q *LiveQuery) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.running[q] = struct{}{}
	if owner, ok := r.queries[q.key]; !ok {
		r.queries[q.key] = q
	} else if _, busy := r.running[owner]; !busy {
		r.queries[q.key] = q
	}
	return true
}

// release marks q as stopped. With forget set it also drops q from the shared queries
// so an idle search term does not linger. Called with q.mu held.
func (r *RecipeRepository) release(q *LiveQuery, forget bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, q)
	if forget && r.queries[q.key] == q {
		delete(r.queries, q.key)
	}
}

// createdAt returns the creation time of row id, or now when there is no such row
func (r *RecipeRepository) createdAt(ctx context.Context, id uint) (time.Time, error) {
	if id == 0 {
		return time.Now(), nil
	}
	var stored model.Recipe
	err := r.db.WithContext(ctx).Select("created_at").First(&stored, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Now(), nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return stored.CreatedAt, nil
}

func (r *RecipeRepository) listAll(ctx context.Context) ([]model.Recipe, error) {
	recipes := []model.Recipe{}
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&recipes).Error; err != nil {
		return nil, err
	}
	return normalize(recipes), nil
}

func (r *RecipeRepository) search(ctx context.Context, title string) ([]model.Recipe, error) {
	recipes := []model.Recipe{}
	pattern := "%" + likeEscaper.Replace(title) + "%"
	err := r.db.WithContext(ctx).
		Where(`LOWER(recipe_title) LIKE LOWER(?) ESCAPE '\'`, pattern).
		Order("id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}
	return normalize(recipes), nil
}

func normalize(recipes []model.Recipe) []model.Recipe {
	if recipes == nil {
		return []model.Recipe{}
	}
	for i := range recipes {
		if recipes[i].Ingredients == nil {
			recipes[i].Ingredients = model.StringList{}
		}
		if recipes[i].Instructions == nil {
			recipes[i].Instructions = model.StringList{}
		}
	}
	return recipes
}
