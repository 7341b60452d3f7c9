package repositories

import (
	"context"
	"sync"

	"github.com/ak/flavorfusion/internal/domain/models"
	"github.com/ak/flavorfusion/internal/domain/repositories"
)

// MemorySessionRepository keeps sessions in process memory
type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

// NewMemorySessionRepository creates an empty session repository
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]*models.Session)}
}

func (r *MemorySessionRepository) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *MemorySessionRepository) Get(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return copySession(session), nil
}

func (r *MemorySessionRepository) AddFavorite(_ context.Context, id string, recipeID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	if !session.HasFavorite(recipeID) {
		session.Favorites = append(session.Favorites, recipeID)
	}
	return nil
}

func (r *MemorySessionRepository) RemoveFavorite(_ context.Context, id string, recipeID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	kept := session.Favorites[:0]
	for _, fav := range session.Favorites {
		if fav != recipeID {
			kept = append(kept, fav)
		}
	}
	session.Favorites = kept
	return nil
}

func (r *MemorySessionRepository) AppendRating(_ context.Context, id string, entry models.RatingEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	session.Ratings = append(session.Ratings, entry)
	return nil
}

func (r *MemorySessionRepository) Health(_ context.Context) error {
	return nil
}

func copySession(s *models.Session) *models.Session {
	c := *s
	c.Favorites = append([]int64{}, s.Favorites...)
	c.Ratings = append([]models.RatingEntry{}, s.Ratings...)
	return &c
}

var _ repositories.SessionRepository = (*MemorySessionRepository)(nil)
