package repositories

import (
	"context"
	"fmt"

	"github.com/ak/flavorfusion/internal/domain/repositories"
	"github.com/ak/flavorfusion/internal/infrastructure/config"
	"github.com/ak/flavorfusion/internal/infrastructure/database"
	"github.com/ak/flavorfusion/internal/infrastructure/seed"
	"github.com/ak/flavorfusion/internal/pkg/logger"
	"go.uber.org/zap"
)

// Provider holds all repository instances and the connections behind them
type Provider struct {
	Recipe  repositories.RecipeRepository
	Session repositories.SessionRepository

	mongo *database.MongoDB
	redis *database.Redis
}

// NewProvider connects the configured backends and creates the repositories.
// A MongoDB recipe store that is empty gets the built-in catalog.
func NewProvider(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Provider, error) {
	p := &Provider{}

	switch cfg.Storage.Recipes {
	case "mongodb":
		db := database.NewMongoDB(cfg.MongoDB, log)
		if err := db.Connect(ctx); err != nil {
			return nil, err
		}
		p.mongo = db
		p.Recipe = NewRecipeRepository(db)
		if err := seedIfEmpty(ctx, p.Recipe, log); err != nil {
			_ = p.Close(ctx)
			return nil, err
		}
	default:
		recipes, err := seed.Recipes()
		if err != nil {
			return nil, err
		}
		p.Recipe = NewMemoryRecipeRepository(recipes)
	}

	switch cfg.Storage.Sessions {
	case "redis":
		rdb := database.NewRedis(cfg.Redis, log)
		if err := rdb.Connect(ctx); err != nil {
			_ = p.Close(ctx)
			return nil, err
		}
		p.redis = rdb
		p.Session = NewSessionRepository(rdb.Client(), cfg.Redis.KeyPrefix, cfg.Redis.TTL)
	default:
		p.Session = NewMemorySessionRepository()
	}

	return p, nil
}

func seedIfEmpty(ctx context.Context, repo repositories.RecipeRepository, log *logger.Logger) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list recipes: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	inserted, err := Seed(ctx, repo)
	if err != nil {
		return err
	}
	log.Info("Seeded empty recipe store", zap.Int("recipes", inserted))
	return nil
}

// Seed writes the built-in catalog into repo. Recipes already present keep
// their ratings. It returns the number of newly inserted recipes.
func Seed(ctx context.Context, repo repositories.RecipeRepository) (int, error) {
	recipes, err := seed.Recipes()
	if err != nil {
		return 0, err
	}
	inserted, err := repo.Upsert(ctx, recipes)
	if err != nil {
		return 0, fmt.Errorf("failed to seed recipes: %w", err)
	}
	return inserted, nil
}

// Health checks every backend in use
func (p *Provider) Health(ctx context.Context) map[string]error {
	return map[string]error{
		"recipes":  p.Recipe.Health(ctx),
		"sessions": p.Session.Health(ctx),
	}
}

// Close releases backend connections
func (p *Provider) Close(ctx context.Context) error {
	var firstErr error
	if p.redis != nil {
		if err := p.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if p.mongo != nil {
		if err := p.mongo.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
