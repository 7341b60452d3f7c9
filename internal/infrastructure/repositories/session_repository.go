package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ak/flavorfusion/internal/domain/models"
	"github.com/ak/flavorfusion/internal/domain/repositories"
	"github.com/go-redis/redis/v8"
)

const maxWatchRetries = 3

// sessionRecord is the stored session header; favorites and ratings live in
// their own lists so appends never rewrite the whole session.
type sessionRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository. Every key of
// a session shares the same TTL, refreshed on each write.
func NewSessionRepository(client *redis.Client, prefix string, ttl time.Duration) repositories.SessionRepository {
	return &sessionRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *sessionRepository) sessionKey(id string) string   { return r.prefix + id }
func (r *sessionRepository) favoritesKey(id string) string { return r.prefix + id + ":favorites" }
func (r *sessionRepository) ratingsKey(id string) string   { return r.prefix + id + ":ratings" }

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(sessionRecord{ID: session.ID, CreatedAt: session.CreatedAt})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.sessionKey(session.ID), data, r.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	pipe := r.client.Pipeline()
	headerCmd := pipe.Get(ctx, r.sessionKey(id))
	favCmd := pipe.LRange(ctx, r.favoritesKey(id), 0, -1)
	ratingsCmd := pipe.LRange(ctx, r.ratingsKey(id), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	data, err := headerCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repositories.ErrSessionNotFound
		}
		return nil, err
	}
	var header sessionRecord
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	session := &models.Session{
		ID:        header.ID,
		CreatedAt: header.CreatedAt,
		Favorites: []int64{},
		Ratings:   []models.RatingEntry{},
	}
	for _, raw := range favCmd.Val() {
		recipeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		session.Favorites = append(session.Favorites, recipeID)
	}
	for _, raw := range ratingsCmd.Val() {
		var entry models.RatingEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		session.Ratings = append(session.Ratings, entry)
	}
	return session, nil
}

func (r *sessionRepository) exists(ctx context.Context, id string) error {
	n, err := r.client.Exists(ctx, r.sessionKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrSessionNotFound
	}
	return nil
}

// touch refreshes the TTL of every key of the session
func (r *sessionRepository) touch(ctx context.Context, pipe redis.Pipeliner, id string) {
	pipe.Expire(ctx, r.sessionKey(id), r.ttl)
	pipe.Expire(ctx, r.favoritesKey(id), r.ttl)
	pipe.Expire(ctx, r.ratingsKey(id), r.ttl)
}

// AddFavorite appends recipeID unless it is already present. The check and
// the push run in one optimistic transaction on the favorites list.
func (r *sessionRepository) AddFavorite(ctx context.Context, id string, recipeID int64) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}

	key := r.favoritesKey(id)
	member := strconv.FormatInt(recipeID, 10)
	txf := func(tx *redis.Tx) error {
		current, err := tx.LRange(ctx, key, 0, -1).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		for _, v := range current {
			if v == member {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, member)
			r.touch(ctx, pipe, id)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxWatchRetries; i++ {
		err = r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (r *sessionRepository) RemoveFavorite(ctx context.Context, id string, recipeID int64) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, r.favoritesKey(id), 0, strconv.FormatInt(recipeID, 10))
		r.touch(ctx, pipe, id)
		return nil
	})
	return err
}

func (r *sessionRepository) AppendRating(ctx context.Context, id string, entry models.RatingEntry) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal rating: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.ratingsKey(id), data)
		r.touch(ctx, pipe, id)
		return nil
	})
	return err
}

func (r *sessionRepository) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
