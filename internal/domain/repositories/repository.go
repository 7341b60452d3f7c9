package repositories

import (
	"context"
	"errors"

	"github.com/ak/flavorfusion/internal/domain/models"
)

var (
	// ErrRecipeNotFound is returned by RecipeRepository lookups for unknown ids
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrSessionNotFound is returned by SessionRepository lookups for unknown ids
	ErrSessionNotFound = errors.New("session not found")
)

// RecipeRepository is the persistent source of the catalog. The catalog reads
// it once at startup and writes rating updates back through it.
type RecipeRepository interface {
	List(ctx context.Context) ([]*models.Recipe, error)
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	UpdateRating(ctx context.Context, id int64, rating float64, ratingCount int) error
	// Upsert inserts or refreshes recipes by id without touching the rating
	// fields of recipes that already exist.
	Upsert(ctx context.Context, recipes []*models.Recipe) (int, error)
	Health(ctx context.Context) error
}

// SessionRepository stores per-session favorites and rating history
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	AddFavorite(ctx context.Context, id string, recipeID int64) error
	RemoveFavorite(ctx context.Context, id string, recipeID int64) error
	AppendRating(ctx context.Context, id string, entry models.RatingEntry) error
	Health(ctx context.Context) error
}
