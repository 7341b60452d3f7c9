package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/ak/flavorfusion/internal/domain/models"
	"github.com/ak/flavorfusion/internal/domain/repositories"
)

// MemoryRecipeRepository keeps recipes in process memory. Ratings written to it
// are lost on restart.
type MemoryRecipeRepository struct {
	mu      sync.RWMutex
	recipes map[int64]*models.Recipe
}

// NewMemoryRecipeRepository creates a repository holding copies of recipes
func NewMemoryRecipeRepository(recipes []*models.Recipe) *MemoryRecipeRepository {
	r := &MemoryRecipeRepository{recipes: make(map[int64]*models.Recipe, len(recipes))}
	for _, recipe := range recipes {
		c := recipe.Clone()
		r.recipes[c.ID] = &c
	}
	return r
}

func (r *MemoryRecipeRepository) List(_ context.Context) ([]*models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recipes := make([]*models.Recipe, 0, len(r.recipes))
	for _, recipe := range r.recipes {
		c := recipe.Clone()
		recipes = append(recipes, &c)
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID < recipes[j].ID })
	return recipes, nil
}

func (r *MemoryRecipeRepository) GetByID(_ context.Context, id int64) (*models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recipe, ok := r.recipes[id]
	if !ok {
		return nil, repositories.ErrRecipeNotFound
	}
	c := recipe.Clone()
	return &c, nil
}

func (r *MemoryRecipeRepository) UpdateRating(_ context.Context, id int64, rating float64, ratingCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recipe, ok := r.recipes[id]
	if !ok {
		return repositories.ErrRecipeNotFound
	}
	recipe.Rating = rating
	recipe.RatingCount = ratingCount
	return nil
}

// Upsert stores recipes by id. Existing recipes keep their rating fields.
func (r *MemoryRecipeRepository) Upsert(_ context.Context, recipes []*models.Recipe) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, recipe := range recipes {
		c := recipe.Clone()
		if existing, ok := r.recipes[c.ID]; ok {
			c.Rating = existing.Rating
			c.RatingCount = existing.RatingCount
		} else {
			inserted++
		}
		r.recipes[c.ID] = &c
	}
	return inserted, nil
}

func (r *MemoryRecipeRepository) Health(_ context.Context) error {
	return nil
}

var _ repositories.RecipeRepository = (*MemoryRecipeRepository)(nil)
