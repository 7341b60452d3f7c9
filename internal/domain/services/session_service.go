package services

import (
	"context"
	"errors"
	"time"

	"github.com/ak/flavorfusion/internal/domain/models"
	"github.com/ak/flavorfusion/internal/domain/repositories"
	apperrors "github.com/ak/flavorfusion/internal/pkg/errors"
	"github.com/ak/flavorfusion/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionService manages anonymous client sessions: favorites and the rating
// history that feeds suggestions.
type SessionService interface {
	Create(ctx context.Context) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	AddFavorite(ctx context.Context, id string, recipeID int64) ([]models.Recipe, error)
	RemoveFavorite(ctx context.Context, id string, recipeID int64) ([]models.Recipe, error)
	Favorites(ctx context.Context, id string) ([]models.Recipe, error)
	RecordRating(ctx context.Context, id string, recipeID int64, value int) error
	Suggestions(ctx context.Context, id string) ([]models.Recipe, error)
}

type sessionService struct {
	repo    repositories.SessionRepository
	catalog CatalogService
	logger  *logger.Logger
	now     func() time.Time
}

// NewSessionService creates a session service
func NewSessionService(repo repositories.SessionRepository, catalog CatalogService, log *logger.Logger) SessionService {
	return &sessionService{
		repo:    repo,
		catalog: catalog,
		logger:  log.WithComponent("sessions"),
		now:     time.Now,
	}
}

func (s *sessionService) Create(ctx context.Context) (*models.Session, error) {
	session := &models.Session{
		ID:        uuid.NewString(),
		Favorites: []int64{},
		Ratings:   []models.RatingEntry{},
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, apperrors.Upstream("session store", err)
	}
	s.logger.WithSession(session.ID).Debug("Session created")
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.translate(err)
	}
	return session, nil
}

func (s *sessionService) AddFavorite(ctx context.Context, id string, recipeID int64) ([]models.Recipe, error) {
	if _, err := s.catalog.Get(recipeID); err != nil {
		return nil, err
	}
	if err := s.repo.AddFavorite(ctx, id, recipeID); err != nil {
		return nil, s.translate(err)
	}
	return s.Favorites(ctx, id)
}

func (s *sessionService) RemoveFavorite(ctx context.Context, id string, recipeID int64) ([]models.Recipe, error) {
	if err := s.repo.RemoveFavorite(ctx, id, recipeID); err != nil {
		return nil, s.translate(err)
	}
	return s.Favorites(ctx, id)
}

// Favorites resolves favorite ids against the catalog, skipping ids that no
// longer exist.
func (s *sessionService) Favorites(ctx context.Context, id string) ([]models.Recipe, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	recipes := make([]models.Recipe, 0, len(session.Favorites))
	for _, recipeID := range session.Favorites {
		r, err := s.catalog.Get(recipeID)
		if err != nil {
			continue
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func (s *sessionService) RecordRating(ctx context.Context, id string, recipeID int64, value int) error {
	entry := models.RatingEntry{RecipeID: recipeID, Rating: value, RatedAt: s.now().UTC()}
	if err := s.repo.AppendRating(ctx, id, entry); err != nil {
		return s.translate(err)
	}
	return nil
}

func (s *sessionService) Suggestions(ctx context.Context, id string) ([]models.Recipe, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return Suggest(s.catalog.List(), session.Ratings), nil
}

func (s *sessionService) translate(err error) error {
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return apperrors.NotFound("session")
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	s.logger.Error("Session store failure", zap.Error(err))
	return apperrors.Upstream("session store", err)
}
