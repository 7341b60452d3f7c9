package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ak/flavorfusion/internal/domain/models"
	"github.com/ak/flavorfusion/internal/domain/repositories"
	apperrors "github.com/ak/flavorfusion/internal/pkg/errors"
	"github.com/ak/flavorfusion/internal/pkg/logger"
	"go.uber.org/zap"
)

// CatalogService owns the in-memory recipe catalog
type CatalogService interface {
	Load(ctx context.Context) error
	Size() int
	List() []models.Recipe
	Get(id int64) (models.Recipe, error)
	Scaled(id int64, servings int) (models.Recipe, float64, error)
	Search(req SearchRequest) (models.SearchOutcome, error)
	QuickSearch(term string) ([]models.Recipe, error)
	SubmitRating(ctx context.Context, id int64, value int) (RatingResult, error)
	GetSubstitutions(id int64) (map[string]string, error)
}

// SearchRequest is one pantry search
type SearchRequest struct {
	Ingredients []string
	Filter      models.SearchFilter
	Limit       int
}

// RatingResult is the aggregate echoed back after a rating
type RatingResult struct {
	RecipeID    int64   `json:"recipe_id"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

// CatalogOptions tunes search behaviour
type CatalogOptions struct {
	DefaultLimit   int
	QuickSearchMin int
}

// catalogEntry guards one recipe. Ratings for different recipes take
// different locks.
type catalogEntry struct {
	mu     sync.RWMutex
	recipe models.Recipe
}

type catalogService struct {
	repo    repositories.RecipeRepository
	matcher *Matcher
	opts    CatalogOptions
	logger  *logger.Logger

	// mu guards the index itself; it is only write-locked by Load.
	mu      sync.RWMutex
	entries map[int64]*catalogEntry
	order   []int64
}

// NewCatalogService creates a catalog backed by repo. Call Load before use.
func NewCatalogService(repo repositories.RecipeRepository, matcher *Matcher, opts CatalogOptions, log *logger.Logger) CatalogService {
	if opts.QuickSearchMin <= 0 {
		opts.QuickSearchMin = 2
	}
	return &catalogService{
		repo:    repo,
		matcher: matcher,
		opts:    opts,
		logger:  log.WithComponent("catalog"),
		entries: make(map[int64]*catalogEntry),
	}
}

func (s *catalogService) Load(ctx context.Context) error {
	recipes, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load recipes: %w", err)
	}

	entries := make(map[int64]*catalogEntry, len(recipes))
	order := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			s.logger.Warn("Skipping invalid recipe", zap.Int64("recipe_id", r.ID), zap.Error(err))
			continue
		}
		if _, dup := entries[r.ID]; dup {
			return fmt.Errorf("duplicate recipe id %d", r.ID)
		}
		rec := r.Clone()
		rec.Dietary = strings.ToLower(strings.TrimSpace(rec.Dietary))
		entries[r.ID] = &catalogEntry{recipe: rec}
		order = append(order, r.ID)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	s.mu.Lock()
	s.entries = entries
	s.order = order
	s.mu.Unlock()

	s.logger.Info("Catalog loaded", zap.Int("recipes", len(order)))
	return nil
}

func (s *catalogService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// snapshot copies every recipe in id order
func (s *catalogService) snapshot() []models.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recipes := make([]models.Recipe, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		e.mu.RLock()
		recipes = append(recipes, e.recipe.Clone())
		e.mu.RUnlock()
	}
	return recipes
}

func (s *catalogService) entry(id int64) (*catalogEntry, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("recipe")
	}
	return e, nil
}

func (s *catalogService) List() []models.Recipe {
	return s.snapshot()
}

func (s *catalogService) Get(id int64) (models.Recipe, error) {
	e, err := s.entry(id)
	if err != nil {
		return models.Recipe{}, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.recipe.Clone(), nil
}

func (s *catalogService) Scaled(id int64, servings int) (models.Recipe, float64, error) {
	if servings < 0 {
		return models.Recipe{}, 0, apperrors.Validation("servings must not be negative")
	}
	e, err := s.entry(id)
	if err != nil {
		return models.Recipe{}, 0, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	scaled, ratio := e.recipe.ScaleTo(servings)
	return scaled, ratio, nil
}

func (s *catalogService) Search(req SearchRequest) (models.SearchOutcome, error) {
	pantry := NormalizePantry(req.Ingredients)
	if len(pantry) == 0 {
		return models.SearchOutcome{}, apperrors.Validation("please enter at least one ingredient")
	}
	filter, err := normalizeFilter(req.Filter)
	if err != nil {
		return models.SearchOutcome{}, err
	}
	if req.Limit < 0 {
		return models.SearchOutcome{}, apperrors.Validation("limit must not be negative")
	}
	limit := req.Limit
	if limit == 0 {
		limit = s.opts.DefaultLimit
	}

	outcome := s.matcher.Match(s.snapshot(), pantry, filter, limit)

	s.logger.Debug("Search completed",
		zap.Strings("pantry", pantry),
		zap.Int("total_filtered", outcome.TotalFiltered),
		zap.Int("total_scored", outcome.TotalScored),
		zap.Int("returned", len(outcome.Results)),
	)
	return outcome, nil
}

// normalizeFilter validates a filter set and canonicalizes its string values
func normalizeFilter(f models.SearchFilter) (models.SearchFilter, error) {
	f.Dietary = strings.ToLower(strings.TrimSpace(f.Dietary))
	f.Difficulty = strings.ToLower(strings.TrimSpace(f.Difficulty))

	if active(f.Difficulty) && !models.Difficulty(f.Difficulty).Valid() {
		return f, apperrors.Validation("difficulty must be one of easy, medium, hard or any").
			WithDetails(map[string]string{"difficulty": f.Difficulty})
	}
	if f.MaxTime < 0 {
		return f, apperrors.Validation("max_time must not be negative")
	}
	if f.Servings < 0 {
		return f, apperrors.Validation("servings must not be negative")
	}
	return f, nil
}

func (s *catalogService) QuickSearch(term string) ([]models.Recipe, error) {
	term = Normalize(term)
	if len([]rune(term)) < s.opts.QuickSearchMin {
		return nil, apperrors.Validation(fmt.Sprintf("search term must be at least %d characters", s.opts.QuickSearchMin))
	}

	found := []models.Recipe{}
	for _, r := range s.snapshot() {
		if quickMatch(&r, term) {
			found = append(found, r)
		}
	}
	return found, nil
}

func quickMatch(r *models.Recipe, term string) bool {
	if strings.Contains(strings.ToLower(r.Name), term) ||
		strings.Contains(strings.ToLower(r.Description), term) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing), term) {
			return true
		}
	}
	return false
}

func (s *catalogService) SubmitRating(ctx context.Context, id int64, value int) (RatingResult, error) {
	if value < models.MinRating || value > models.MaxRating {
		return RatingResult{}, apperrors.InvalidRating(value)
	}
	e, err := s.entry(id)
	if err != nil {
		return RatingResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	updated := e.recipe
	updated.ApplyRating(value)

	if err := s.repo.UpdateRating(ctx, id, updated.Rating, updated.RatingCount); err != nil {
		s.logger.WithRecipe(id).Error("Failed to persist rating", zap.Error(err))
		return RatingResult{}, apperrors.Upstream("recipe store", err)
	}

	e.recipe.Rating = updated.Rating
	e.recipe.RatingCount = updated.RatingCount

	return RatingResult{
		RecipeID:    id,
		Rating:      updated.Rating,
		RatingCount: updated.RatingCount,
	}, nil
}

func (s *catalogService) GetSubstitutions(id int64) (map[string]string, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	subs := make(map[string]string, len(e.recipe.Substitutions))
	for k, v := range e.recipe.Substitutions {
		subs[k] = v
	}
	return subs, nil
}
